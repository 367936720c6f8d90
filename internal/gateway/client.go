package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"cvia/internal/config"

	"github.com/google/uuid"
)

// TokenSource retorna o access token da sessão atual do identity provider,
// ou "" quando não há sessão. Usado como canal de fallback de autenticação.
type TokenSource func(ctx context.Context) string

// Client executa chamadas autenticadas ao backend.
// Canal primário: cookies gerenciados pelo cookie jar (credentials: include).
// Canal de fallback: Authorization Bearer com o token da sessão atual.
// Sem estado além do jar; sem cache; sem retries.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	tokenSource TokenSource
}

// NewClient cria o gateway de requisições.
// tokenSource pode ser nil (chamadas seguem apenas pelo canal de cookies).
func NewClient(baseURL string, tokenSource TokenSource) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar: jar,
		},
		timeout:     config.RequestTimeout,
		tokenSource: tokenSource,
	}
}

// do executa a chamada com timeout fixo e normaliza a resposta.
// Retorna o corpo cru + content-type; 204 retorna corpo nil.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request %s %s: %w", method, path, err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	// Bearer fallback para clientes onde cookies são bloqueados.
	if c.tokenSource != nil {
		if token := c.tokenSource(ctx); token != "" && req.Header.Get("Authorization") == "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Printf("[GATEWAY] %s %s timed out after %s", method, path, c.timeout)
			return nil, "", fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return nil, "", fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, "", nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Printf("[GATEWAY] %s %s timed out reading body", method, path)
			return nil, "", fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return nil, "", fmt.Errorf("failed to read response of %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", newAPIError(resp.StatusCode, respBody)
	}

	return respBody, resp.Header.Get("Content-Type"), nil
}

// executeJSON serializa o payload (se houver), executa e decodifica a
// resposta JSON em out (se houver corpo e out != nil).
func (c *Client) executeJSON(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	contentType := ""

	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload for %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	respBody, respContentType, err := c.do(ctx, method, path, contentType, body)
	if err != nil {
		return err
	}
	if respBody == nil || out == nil {
		return nil
	}

	if !strings.Contains(respContentType, "application/json") {
		// Resposta texto: só aceitamos destino *string.
		if target, ok := out.(*string); ok {
			*target = string(respBody)
			return nil
		}
		return fmt.Errorf("unexpected content type %q for %s %s", respContentType, method, path)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
	}
	return nil
}

// executeMultipart envia um arquivo como multipart/form-data.
// O content-type vem do writer (boundary derivado automaticamente).
func (c *Client) executeMultipart(ctx context.Context, path, fieldName, fileName string, content []byte, out interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		return fmt.Errorf("failed to create multipart field %q: %w", fieldName, err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("failed to write multipart content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	respBody, respContentType, err := c.do(ctx, http.MethodPost, path, writer.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	if respBody == nil || out == nil {
		return nil
	}

	if strings.Contains(respContentType, "application/json") {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response of POST %s: %w", path, err)
		}
		return nil
	}

	if target, ok := out.(*string); ok {
		*target = string(respBody)
		return nil
	}
	return fmt.Errorf("unexpected content type %q for POST %s", respContentType, path)
}
