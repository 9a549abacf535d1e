package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	connusecases "github.com/mataroo/mataroo/internal/application/connection/usecases"
	"github.com/mataroo/mataroo/internal/shared/logger"
	"github.com/mataroo/mataroo/internal/shared/utils"
)

// SettingsHandler is where the backend sends the browser after a provider
// OAuth flow: /settings?connected=<platform> or /settings?error=<message>.
type SettingsHandler struct {
	oauthReturnUC oauthReturnUseCase
	logger        logger.Interface
}

func NewSettingsHandler(oauthReturnUC oauthReturnUseCase, logger logger.Interface) *SettingsHandler {
	return &SettingsHandler{oauthReturnUC: oauthReturnUC, logger: logger}
}

var settingsPage = template.Must(template.New("settings").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Mataroo settings</title></head>
<body style="font-family: system-ui, sans-serif; text-align: center; padding-top: 4rem">
<h1>{{if .Success}}Connected{{else}}Connection failed{{end}}</h1>
<p>{{.Message}}</p>
<p>You can close this window.</p>
</body>
</html>`))

// OAuthReturn handles GET /settings
func (h *SettingsHandler) OAuthReturn(c *gin.Context) {
	result := h.oauthReturnUC.Execute(c.Request.Context(), connusecases.OAuthReturnCommand{
		Connected: c.Query("connected"),
		Error:     c.Query("error"),
	})

	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		utils.SuccessResponse(c, http.StatusOK, result.Message, result)
		return
	}

	var buf bytes.Buffer
	if err := settingsPage.Execute(&buf, result); err != nil {
		h.logger.Errorw("failed to render settings page", "error", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error occurred")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
