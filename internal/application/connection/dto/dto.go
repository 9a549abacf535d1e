package dto

import (
	"time"

	"github.com/mataroo/mataroo/internal/domain/connection"
	"github.com/mataroo/mataroo/internal/shared/biztime"
)

type ConnectionDTO struct {
	Platform    string  `json:"platform"`
	DisplayName string  `json:"display_name"`
	Username    string  `json:"platform_username,omitempty"`
	IsActive    bool    `json:"is_active"`
	ConnectedAt *string `json:"connected_at,omitempty"`
}

// ConnectionsDTO is the connections card: the cached list plus a connected
// flag for every supported platform.
type ConnectionsDTO struct {
	Connections []ConnectionDTO `json:"connections"`
	Connected   map[string]bool `json:"connected"`
}

type ConnectResultDTO struct {
	Platform string `json:"platform"`
	AuthURL  string `json:"auth_url"`
}

type DisconnectResultDTO struct {
	Platform string `json:"platform"`
	Message  string `json:"message"`
}

type OAuthReturnDTO struct {
	Platform string `json:"platform,omitempty"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
}

func ToConnectionDTO(c connection.Connection) ConnectionDTO {
	d := ConnectionDTO{
		Platform:    c.Platform.String(),
		DisplayName: c.Platform.DisplayName(),
		Username:    c.Username(),
		IsActive:    c.IsActive,
	}
	if c.ConnectedAt != nil {
		formatted := biztime.FormatInBizTimezone(*c.ConnectedAt, time.DateTime)
		d.ConnectedAt = &formatted
	}
	return d
}

func ToConnectionsDTO(l connection.List) *ConnectionsDTO {
	d := &ConnectionsDTO{
		Connections: make([]ConnectionDTO, 0, len(l)),
		Connected:   make(map[string]bool, len(connection.SupportedPlatforms)),
	}
	for _, c := range l {
		d.Connections = append(d.Connections, ToConnectionDTO(c))
	}
	for p, ok := range l.Status() {
		d.Connected[p.String()] = ok
	}
	return d
}
