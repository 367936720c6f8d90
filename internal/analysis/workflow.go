package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"cvia/internal/config"
)

// pdfMagic são os quatro primeiros bytes de todo PDF (%PDF)
var pdfMagic = []byte("%PDF")

// ErrUploadInFlight indica tentativa de upload com outro ainda em andamento.
// O workflow assume no máximo um upload em voo.
var ErrUploadInFlight = fmt.Errorf("another resume upload is already in progress")

// Backend é o mínimo do gateway usado pelo workflow de análise.
type Backend interface {
	AnalyzeResume(ctx context.Context, fileName string, content []byte) (json.RawMessage, error)
	GetSummaries(ctx context.Context) ([]json.RawMessage, error)
}

// Workflow orquestra validação local, upload e armazenamento da análise.
// Estados: idle → validating → uploading → ready | error (error é recuperável).
type Workflow struct {
	backend Backend
	emit    func(eventName string, data interface{})

	mu      sync.Mutex
	state   WorkflowState
	result  *Result
	lastErr string
}

// NewWorkflow cria o workflow no estado idle.
// emit (opcional) recebe eventos de transição para o frontend.
func NewWorkflow(backend Backend, emit func(eventName string, data interface{})) *Workflow {
	return &Workflow{
		backend: backend,
		emit:    emit,
		state:   StateIdle,
	}
}

// UploadAndAnalyze valida o arquivo localmente e, só então, envia ao backend.
// Rejeições de validação acontecem com zero chamadas de rede.
func (w *Workflow) UploadAndAnalyze(ctx context.Context, up Upload) (*Result, error) {
	w.mu.Lock()
	if w.state == StateUploading {
		w.mu.Unlock()
		return nil, ErrUploadInFlight
	}
	w.state = StateValidating
	w.lastErr = ""
	w.mu.Unlock()
	w.emitState(StateValidating)

	if err := validateResume(up); err != nil {
		w.setError(err.Error())
		return nil, err
	}

	w.setState(StateUploading)

	raw, err := w.backend.AnalyzeResume(ctx, up.Name, up.Content)
	if err != nil {
		w.setError(err.Error())
		return nil, err
	}

	result, err := decodeResult(raw)
	if err != nil {
		w.setError(err.Error())
		return nil, err
	}

	w.mu.Lock()
	w.result = result
	w.state = StateReady
	w.mu.Unlock()
	w.emitState(StateReady)
	log.Printf("[ANALYSIS] Resume analyzed: %s", result.ResumeTitle)

	// Refresh best-effort da lista de análises; nunca altera o estado
	// do workflow em caso de falha.
	go func() {
		if _, err := w.backend.GetSummaries(context.Background()); err != nil {
			log.Printf("[ANALYSIS] Warning: failed to refresh summaries: %v", err)
		}
	}()

	return result, nil
}

// LoadExisting busca análises anteriores e adota a mais recente, pulando
// direto para ready. Lista vazia mantém o estado atual.
func (w *Workflow) LoadExisting(ctx context.Context) (*Result, error) {
	summaries, err := w.backend.GetSummaries(ctx)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, nil
	}

	result, err := decodeResult(summaries[0])
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.result = result
	w.state = StateReady
	w.mu.Unlock()
	w.emitState(StateReady)
	log.Printf("[ANALYSIS] Loaded existing analysis: %s", result.ResumeTitle)

	return result, nil
}

// State retorna o estado atual do workflow
func (w *Workflow) State() WorkflowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Result retorna a análise atual (nil se nenhuma)
func (w *Workflow) Result() *Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// LastError retorna a última mensagem de erro do workflow
func (w *Workflow) LastError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

func (w *Workflow) setState(state WorkflowState) {
	w.mu.Lock()
	w.state = state
	w.mu.Unlock()
	w.emitState(state)
}

func (w *Workflow) setError(message string) {
	w.mu.Lock()
	w.state = StateError
	w.lastErr = message
	w.mu.Unlock()
	w.emitState(StateError)
}

func (w *Workflow) emitState(state WorkflowState) {
	if w.emit == nil {
		return
	}
	payload := map[string]string{"state": string(state)}
	if state == StateError {
		w.mu.Lock()
		payload["error"] = w.lastErr
		w.mu.Unlock()
	}
	w.emit("analysis:state_changed", payload)
}

// validateResume aplica as checagens locais, na ordem:
// 1. MIME type declarado é PDF, OU
// 2. nome termina em .pdf, OU
// 3. os quatro primeiros bytes são a assinatura %PDF.
// Depois, tamanho ≤ 10MB.
func validateResume(up Upload) error {
	looksLikePdf := up.MIMEType == "application/pdf" ||
		strings.HasSuffix(strings.ToLower(up.Name), ".pdf") ||
		bytes.HasPrefix(up.Content, pdfMagic)

	if !looksLikePdf {
		return &ValidationError{Reason: "Please upload a valid PDF file"}
	}

	if len(up.Content) > config.MaxResumeSize {
		return &ValidationError{Reason: "File size must be less than 10MB"}
	}

	return nil
}

// decodeResult aceita tanto o objeto de análise direto quanto o envelope
// {"analysis": {...}} que algumas rotas do backend devolvem.
func decodeResult(raw json.RawMessage) (*Result, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("backend returned an empty analysis")
	}

	var envelope struct {
		Analysis json.RawMessage `json:"analysis"`
	}
	payload := raw
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Analysis) > 0 {
		payload = envelope.Analysis
	}

	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	result.Raw = append(json.RawMessage(nil), payload...)
	return &result, nil
}
