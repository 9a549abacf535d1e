// Package bootstrap builds the client's dependency graph from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	authusecases "github.com/mataroo/mataroo/internal/application/auth/usecases"
	connusecases "github.com/mataroo/mataroo/internal/application/connection/usecases"
	contentusecases "github.com/mataroo/mataroo/internal/application/content/usecases"
	payusecases "github.com/mataroo/mataroo/internal/application/payment/usecases"
	subusecases "github.com/mataroo/mataroo/internal/application/subscription/usecases"
	"github.com/mataroo/mataroo/internal/domain/connection"
	"github.com/mataroo/mataroo/internal/domain/subscription"
	"github.com/mataroo/mataroo/internal/infrastructure/api"
	"github.com/mataroo/mataroo/internal/infrastructure/auth"
	"github.com/mataroo/mataroo/internal/infrastructure/browser"
	"github.com/mataroo/mataroo/internal/infrastructure/cache"
	"github.com/mataroo/mataroo/internal/infrastructure/checkout"
	"github.com/mataroo/mataroo/internal/infrastructure/config"
	httpRouter "github.com/mataroo/mataroo/internal/interfaces/http"
	"github.com/mataroo/mataroo/internal/interfaces/http/handlers"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

// Cache keys. The two queries never share a key, so invalidating one
// leaves the other alone.
const (
	SubscriptionKey = "subscription"
	ConnectionsKey  = "connections"
)

// App is the wired client: every use case the CLI and the dashboard server
// call, plus the infrastructure they share.
type App struct {
	Config *config.Config
	Logger logger.Interface

	Sessions auth.SessionStore
	Identity *auth.SupabaseClient
	API      *api.Client
	Store    cache.Store
	Checkout *checkout.BrowserAdapter

	Subscription *cache.Query[*subscription.Subscription]
	Connections  *cache.Query[connection.List]

	Login  *authusecases.LoginUseCase
	Logout *authusecases.LogoutUseCase

	GetUsage        *subusecases.GetUsageUseCase
	ListConnections *connusecases.ListConnectionsUseCase
	Connect         *connusecases.ConnectUseCase
	Disconnect      *connusecases.DisconnectUseCase
	OAuthReturn     *connusecases.HandleOAuthReturnUseCase
	Upgrade         *payusecases.UpgradeFlow
	Generate        *contentusecases.GenerateUseCase
	Publish         *contentusecases.PublishUseCase
	History         *contentusecases.HistoryUseCase

	redis *redis.Client
}

type options struct {
	sessions   auth.SessionStore
	store      cache.Store
	opener     checkout.Opener
	showURL    func(url string)
	httpClient *http.Client
}

// Option overrides a piece of the default wiring.
type Option func(*options)

// WithSessionStore replaces the session file.
func WithSessionStore(s auth.SessionStore) Option {
	return func(o *options) { o.sessions = s }
}

// WithCacheStore replaces the store selected by cache.driver.
func WithCacheStore(s cache.Store) Option {
	return func(o *options) { o.store = s }
}

// WithOpener replaces the desktop browser launcher.
func WithOpener(open checkout.Opener) Option {
	return func(o *options) { o.opener = open }
}

// WithURLPrinter is called with every URL the user has to visit.
func WithURLPrinter(show func(url string)) Option {
	return func(o *options) { o.showURL = show }
}

// WithHTTPClient is used for backend calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// New wires the client. The caller owns the returned App and must Close it.
func New(ctx context.Context, cfg *config.Config, log logger.Interface, opts ...Option) (*App, error) {
	o := &options{opener: browser.Open}
	for _, opt := range opts {
		opt(o)
	}

	app := &App{Config: cfg, Logger: log}

	sessions := o.sessions
	if sessions == nil {
		sessions = auth.NewFileSessionStore(cfg.Auth.SessionFile)
	}
	app.Sessions = sessions

	app.Identity = auth.NewSupabaseClient(auth.SupabaseConfig{
		URL:     cfg.Auth.SupabaseURL,
		AnonKey: cfg.Auth.SupabaseAnonKey,
		Timeout: cfg.API.Timeout(),
	}, log.Named("supabase"))

	tokens := auth.NewTokenSource(ctx, sessions, app.Identity, cfg.Auth.RefreshLeeway(), log.Named("session"))

	apiOpts := []api.Option{api.WithTimeout(cfg.API.Timeout())}
	if o.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(o.httpClient))
	}
	app.API = api.NewClient(cfg.API.BaseURL, tokens, log.Named("api"), apiOpts...)

	store := o.store
	if store == nil {
		var err error
		store, err = app.newStore(ctx)
		if err != nil {
			return nil, err
		}
	}
	app.Store = store

	app.Subscription = cache.NewQuery(store, SubscriptionKey, app.API.GetSubscription,
		cfg.Cache.SubscriptionStaleTime(), log.Named("query.subscription"))
	app.Connections = cache.NewQuery(store, ConnectionsKey, app.API.ListConnections,
		cfg.Cache.ConnectionsStaleTime(), log.Named("query.connections"))

	defaultPlatform := connection.Platform(strings.ToLower(cfg.Content.DefaultPlatform))

	app.Login = authusecases.NewLoginUseCase(app.Identity, sessions, log)
	app.Logout = authusecases.NewLogoutUseCase(app.Identity, sessions, log)

	redirector := browser.NewRedirector(o.opener, o.showURL, log)

	app.GetUsage = subusecases.NewGetUsageUseCase(app.Subscription, log)
	app.ListConnections = connusecases.NewListConnectionsUseCase(app.Connections, log)
	app.Connect = connusecases.NewConnectUseCase(app.API, redirector, log)
	app.Disconnect = connusecases.NewDisconnectUseCase(app.Connections, app.API, log)
	app.OAuthReturn = connusecases.NewHandleOAuthReturnUseCase(app.Connections, log)

	opener := o.opener
	if o.showURL != nil {
		opener = showThenOpen(o.showURL, o.opener)
	}
	app.Checkout = checkout.NewBrowserAdapter(checkout.BrowserConfig{
		BaseURL:   cfg.Server.GetBaseURL(),
		ScriptURL: cfg.Payment.CheckoutScriptURL,
	}, opener, log.Named("checkout"))

	app.Upgrade = payusecases.NewUpgradeFlow(app.API, app.Checkout, app.Subscription, payusecases.CheckoutSettings{
		MerchantName: cfg.Payment.MerchantName,
		Description:  cfg.Payment.Description,
		ThemeColor:   cfg.Payment.ThemeColor,
		Prefill:      prefill(sessions),
	}, log.Named("upgrade"))

	app.Generate = contentusecases.NewGenerateUseCase(app.API, defaultPlatform, log)
	app.Publish = contentusecases.NewPublishUseCase(app.API, app.Connections, app.Subscription, defaultPlatform, log)
	app.History = contentusecases.NewHistoryUseCase(app.API, cfg.Content.HistoryLimit, log)

	return app, nil
}

func (a *App) newStore(ctx context.Context) (cache.Store, error) {
	switch strings.ToLower(a.Config.Cache.Driver) {
	case "", "memory":
		return cache.NewMemoryStore(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     a.Config.Redis.GetAddr(),
			Password: a.Config.Redis.Password,
			DB:       a.Config.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.Logger.Infow("redis connection established", "address", a.Config.Redis.GetAddr())

		a.redis = client
		return cache.NewRedisStore(client, a.Config.Cache.KeyPrefix, 0, a.Logger.Named("cache")), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", a.Config.Cache.Driver)
	}
}

// Router builds the local dashboard's HTTP routes.
func (a *App) Router() *httpRouter.Router {
	dashboard := handlers.NewDashboardHandler(
		a.GetUsage,
		a.ListConnections,
		a.Connect,
		a.Disconnect,
		a.Upgrade,
		a.Checkout.CheckoutURL,
		a.Logger,
	)
	checkoutHandler := handlers.NewCheckoutHandler(a.Checkout, a.Logger)
	settings := handlers.NewSettingsHandler(a.OAuthReturn, a.Logger)

	gin.SetMode(a.Config.Server.Mode)
	router := httpRouter.NewRouter(dashboard, checkoutHandler, settings, a.Logger.Named("http"))
	router.SetupRoutes(a.Config)
	return router
}

// Close tears down the checkout page and the redis connection.
func (a *App) Close() error {
	if a.Checkout != nil {
		_ = a.Checkout.Close()
	}
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

func prefill(sessions auth.SessionStore) checkout.Prefill {
	sess, err := sessions.Load()
	if err != nil || sess == nil {
		return checkout.Prefill{}
	}
	return checkout.Prefill{Email: sess.Email}
}

func showThenOpen(show func(string), open checkout.Opener) checkout.Opener {
	return func(url string) error {
		show(url)
		if open == nil {
			return nil
		}
		return open(url)
	}
}
