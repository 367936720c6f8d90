package gateway

import (
	"context"
	"encoding/json"
	"net/http"
)

// SetCookieRequest é o payload de sincronização de sessão com o backend.
// Session e User são os objetos do identity provider, repassados como vieram.
type SetCookieRequest struct {
	Session     interface{} `json:"session"`
	AccessToken string      `json:"access_token"`
	User        interface{} `json:"user,omitempty"`
}

// SetCookie notifica o backend de uma nova sessão (POST /set-cookie).
func (c *Client) SetCookie(ctx context.Context, req SetCookieRequest) error {
	return c.executeJSON(ctx, http.MethodPost, "/set-cookie", req, nil)
}

// AnalyzeResume envia o currículo como multipart (campo "file") e retorna
// o objeto de análise cru. O backend responde ora o objeto direto, ora
// envelopado em {"analysis": ...}; quem decide é o workflow.
func (c *Client) AnalyzeResume(ctx context.Context, fileName string, content []byte) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.executeMultipart(ctx, "/analyze-resume", "file", fileName, content, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// GetSummaries busca análises anteriores (GET /summaries), mais recente primeiro.
func (c *Client) GetSummaries(ctx context.Context) ([]json.RawMessage, error) {
	var resp struct {
		Summaries []json.RawMessage `json:"summaries"`
	}
	if err := c.executeJSON(ctx, http.MethodGet, "/summaries", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Summaries, nil
}

// SendChatMessage envia uma mensagem ao assistente (POST /chat) e retorna a resposta.
func (c *Client) SendChatMessage(ctx context.Context, message string) (string, error) {
	payload := struct {
		Message string `json:"message"`
	}{Message: message}

	var resp struct {
		Reply string `json:"reply"`
	}
	if err := c.executeJSON(ctx, http.MethodPost, "/chat", payload, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// Logout encerra a sessão de cookie no backend (POST /logout).
func (c *Client) Logout(ctx context.Context) error {
	return c.executeJSON(ctx, http.MethodPost, "/logout", nil, nil)
}
