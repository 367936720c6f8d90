package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrTimeout indica que a chamada estourou o timeout fixo de 30s.
// Distinto de falhas genéricas de rede para o frontend poder diferenciar.
var ErrTimeout = errors.New("request timed out, please try again")

// APIError representa uma resposta não-2xx do backend.
// Carrega status e corpo para o caller poder ramificar por código.
type APIError struct {
	Status  int
	Body    []byte
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// newAPIError extrai a mensagem do corpo seguindo a convenção do backend:
// campos "detail" ou "message" em JSON, senão o texto cru.
func newAPIError(status int, body []byte) *APIError {
	message := "API Error"

	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			message = payload.Detail
		} else if payload.Message != "" {
			message = payload.Message
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		message = text
	}

	return &APIError{
		Status:  status,
		Body:    append([]byte(nil), body...),
		Message: message,
	}
}
