package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/spotiverse/internal/shared"
)

// ClientConfigPath serves the login settings to the browser client.
const ClientConfigPath = "/config.js"

type clientConfig struct {
	ClientID    string   `json:"clientId"`
	RedirectURI string   `json:"redirectUri"`
	AuthURL     string   `json:"authUrl"`
	Scopes      []string `json:"scopes"`
}

// ClientConfigHandler publishes the public half of the Spotify credentials as window.SPOTIVERSE.
type ClientConfigHandler struct {
	body []byte
}

// NewClientConfigHandler renders the script once from cfg.
func NewClientConfigHandler(cfg shared.SpotifyConfig) (*ClientConfigHandler, error) {
	data, err := json.Marshal(clientConfig{
		ClientID:    cfg.ClientID,
		RedirectURI: cfg.RedirectURI,
		AuthURL:     cfg.AuthURL,
		Scopes:      cfg.Scopes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode client config: %w", err)
	}
	return &ClientConfigHandler{body: fmt.Appendf(nil, "window.SPOTIVERSE = %s;\n", data)}, nil
}

// Routes returns the HTTP routes this handler serves.
func (h *ClientConfigHandler) Routes() []string {
	return []string{ClientConfigPath}
}

func (h *ClientConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(h.body)
}
