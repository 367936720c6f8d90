package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"sync"

	"cvia/internal/analysis"
	"cvia/internal/auth"
	"cvia/internal/chat"
	"cvia/internal/config"
	"cvia/internal/gateway"
	"cvia/internal/history"
	"cvia/internal/identity"
	"cvia/internal/inbox"
	"cvia/internal/security"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// App é o orquestrador central: conecta o identity provider, o gateway do
// backend, o workflow de análise, o chat e o inbox, e expõe os bindings
// consumidos pelo frontend.
type App struct {
	ctx context.Context

	gateway  *gateway.Client
	provider *identity.Client
	auth     *auth.Manager
	analysis *analysis.Workflow
	inbox    *inbox.Service
	history  *history.Service

	sanitizer *security.LogSanitizer

	chatMu sync.Mutex
	chat   *chat.Simulator

	// emit é injetável para testes; em produção vai para runtime.EventsEmit
	emit func(eventName string, data interface{})
}

// HydrationPayload é o snapshot inicial enviado ao frontend no DomReady
type HydrationPayload struct {
	Version       string         `json:"version"`
	Authenticated bool           `json:"authenticated"`
	User          *identity.User `json:"user,omitempty"`
	AnalysisState string         `json:"analysisState"`
	HasAnalysis   bool           `json:"hasAnalysis"`
	InboxDir      string         `json:"inboxDir"`
}

// NewApp cria a aplicação com os serviços ainda não inicializados
func NewApp() *App {
	return &App{
		sanitizer: security.NewLogSanitizer(),
	}
}

// Startup monta o grafo de serviços e dispara a restauração de sessão.
// Chamado pelo runtime do Wails antes do frontend carregar.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	log.Printf("[CVIA] Starting %s v%s", config.AppName, config.AppVersion)

	if err := config.EnsureDataDirs(); err != nil {
		log.Printf("[CVIA] Warning: could not create data directories: %v", err)
	}

	a.provider = identity.NewClient()
	a.gateway = gateway.NewClient(config.APIBaseURL(), a.provider.AccessToken)
	a.auth = auth.NewManager(a.provider, a.gateway, func(state auth.State) {
		a.emitEvent("auth:state_changed", state)
	})
	a.analysis = analysis.NewWorkflow(a.gateway, a.emitEvent)

	historySvc, err := history.NewService()
	if err != nil {
		log.Printf("[CVIA] Warning: session history unavailable: %v", err)
	} else {
		a.history = historySvc
	}

	inboxSvc, err := inbox.NewService(a, a.emitEvent)
	if err != nil {
		log.Printf("[CVIA] Warning: inbox watcher unavailable: %v", err)
	} else {
		a.inbox = inboxSvc
		if err := a.inbox.Watch(config.InboxDir()); err != nil {
			log.Printf("[CVIA] Warning: could not watch inbox: %v", err)
		}
	}

	// A restauração de sessão faz rede; não segura o boot da janela
	go func() {
		if err := a.auth.Initialize(ctx); err != nil {
			log.Printf("[AUTH] Session restore failed: %s", a.sanitizer.Sanitize(err.Error()))
		}
	}()
}

// DomReady envia o snapshot de hidratação assim que o frontend está pronto
func (a *App) DomReady(ctx context.Context) {
	a.emitEvent("app:hydrate", a.Hydrate())
}

// Shutdown encerra serviços com tasks recorrentes ou recursos abertos
func (a *App) Shutdown(ctx context.Context) {
	log.Println("[CVIA] Shutting down...")

	a.CloseChat()

	if a.inbox != nil {
		if err := a.inbox.Close(); err != nil {
			log.Printf("[CVIA] Warning: inbox close failed: %v", err)
		}
	}
	if a.auth != nil {
		a.auth.Close()
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			log.Printf("[CVIA] Warning: history close failed: %v", err)
		}
	}
}

// Hydrate retorna o snapshot atual do app para o frontend
func (a *App) Hydrate() HydrationPayload {
	payload := HydrationPayload{
		Version:  config.AppVersion,
		InboxDir: config.InboxDir(),
	}
	if a.auth != nil {
		payload.Authenticated = a.auth.IsAuthenticated()
		payload.User = a.auth.CurrentUser()
	}
	if a.analysis != nil {
		payload.AnalysisState = string(a.analysis.State())
		payload.HasAnalysis = a.analysis.Result() != nil
	}
	return payload
}

// GetVersion retorna a versão do app
func (a *App) GetVersion() string {
	return config.AppVersion
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

// GetAuthState retorna o estado de autenticação observável
func (a *App) GetAuthState() auth.State {
	return a.auth.CurrentState()
}

// SignIn autentica com email e senha
func (a *App) SignIn(email, password string) (*identity.Session, error) {
	return a.auth.SignIn(a.ctx, email, password)
}

// SignUp cria uma conta nova. Sessão nil sem erro significa confirmação
// de email pendente.
func (a *App) SignUp(email, password string) (*identity.Session, error) {
	return a.auth.SignUp(a.ctx, email, password)
}

// SignInWithGoogle abre o fluxo OAuth no navegador do sistema.
// A sessão chega depois, pelo canal push do identity provider.
func (a *App) SignInWithGoogle() error {
	authURL, err := a.auth.SignInWithGoogle(a.ctx)
	if err != nil {
		return err
	}
	if a.ctx != nil {
		runtime.BrowserOpenURL(a.ctx, authURL)
	}
	return nil
}

// SignOut encerra a sessão atual
func (a *App) SignOut() error {
	return a.auth.SignOut(a.ctx)
}

// ClearAuthError limpa a última mensagem de erro de autenticação
func (a *App) ClearAuthError() {
	a.auth.ClearError()
}

// ---------------------------------------------------------------------------
// Análise de currículo
// ---------------------------------------------------------------------------

// UploadResume lê um PDF do disco e o submete para análise
func (a *App) UploadResume(path string) (*analysis.Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	up := analysis.Upload{
		Name:     filepath.Base(path),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		Content:  content,
	}
	return a.UploadAndAnalyze(a.ctx, up)
}

// UploadResumeContent recebe o arquivo direto do frontend (drag & drop),
// com o conteúdo codificado em base64
func (a *App) UploadResumeContent(name, mimeType, encoded string) (*analysis.Result, error) {
	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid file payload: %w", err)
	}

	up := analysis.Upload{
		Name:     name,
		MIMEType: mimeType,
		Content:  content,
	}
	return a.UploadAndAnalyze(a.ctx, up)
}

// UploadAndAnalyze roda o workflow e registra o resultado no histórico da
// sessão. Também é o ponto de entrada do inbox watcher.
func (a *App) UploadAndAnalyze(ctx context.Context, up analysis.Upload) (*analysis.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := a.analysis.UploadAndAnalyze(ctx, up)
	if err != nil {
		return nil, err
	}

	a.recordAnalysis(result)
	return result, nil
}

// LoadExistingAnalysis tenta adotar a análise mais recente do backend
func (a *App) LoadExistingAnalysis() (*analysis.Result, error) {
	result, err := a.analysis.LoadExisting(a.ctx)
	if err != nil {
		return nil, err
	}
	if result != nil {
		a.recordAnalysis(result)
	}
	return result, nil
}

// GetAnalysis retorna a análise adotada atual (nil se nenhuma)
func (a *App) GetAnalysis() *analysis.Result {
	return a.analysis.Result()
}

// GetAnalysisState retorna o estado atual do workflow
func (a *App) GetAnalysisState() string {
	return string(a.analysis.State())
}

// GetSessionAnalyses retorna as análises registradas nesta sessão
func (a *App) GetSessionAnalyses() ([]history.AnalysisRecord, error) {
	if a.history == nil {
		return nil, nil
	}
	return a.history.ListAnalyses()
}

func (a *App) recordAnalysis(result *analysis.Result) {
	if a.history == nil || result == nil {
		return
	}
	if _, err := a.history.RecordAnalysis(result); err != nil {
		log.Printf("[DB] Warning: could not record analysis: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Chat
// ---------------------------------------------------------------------------

// StartChat abre uma conversa nova contextualizada pela análise atual.
// Um chat anterior é fechado e seu transcript descartado.
func (a *App) StartChat() error {
	result := a.analysis.Result()
	if result == nil {
		return fmt.Errorf("please upload and analyze a resume first")
	}

	a.chatMu.Lock()
	defer a.chatMu.Unlock()

	if a.chat != nil {
		a.chat.Close()
		if a.history != nil {
			if err := a.history.ClearChat(); err != nil {
				log.Printf("[DB] Warning: could not clear chat transcript: %v", err)
			}
		}
	}

	a.chat = chat.NewSimulator(chat.SimulatorDeps{
		Backend:  a.gateway,
		JobRoles: result.JobRoles,
		Emit:     a.chatEmit,
	})
	return nil
}

// SendChatMessage envia uma mensagem do usuário para o assistente
func (a *App) SendChatMessage(text string) error {
	a.chatMu.Lock()
	simulator := a.chat
	a.chatMu.Unlock()

	if simulator == nil {
		return fmt.Errorf("chat is not open")
	}
	return simulator.SendMessage(a.ctx, text)
}

// GetChatMessages retorna a sequência atual de mensagens do chat
func (a *App) GetChatMessages() []chat.Message {
	a.chatMu.Lock()
	simulator := a.chat
	a.chatMu.Unlock()

	if simulator == nil {
		return nil
	}
	return simulator.Messages()
}

// GetChatTranscript retorna o transcript persistido da sessão
func (a *App) GetChatTranscript() ([]history.ChatRecord, error) {
	if a.history == nil {
		return nil, nil
	}
	return a.history.ListChatMessages()
}

// CloseChat encerra a conversa e cancela reveals pendentes
func (a *App) CloseChat() {
	a.chatMu.Lock()
	simulator := a.chat
	a.chat = nil
	a.chatMu.Unlock()

	if simulator != nil {
		simulator.Close()
	}
}

// chatEmit espelha os eventos do chat no transcript antes de repassar
// ao frontend
func (a *App) chatEmit(eventName string, data interface{}) {
	if a.history != nil {
		switch eventName {
		case "chat:message_appended":
			if message, ok := data.(chat.Message); ok {
				if err := a.history.AppendChatMessage(message); err != nil {
					log.Printf("[DB] Warning: could not append chat message: %v", err)
				}
			}
		case "chat:message_updated":
			if fields, ok := data.(map[string]interface{}); ok {
				id, _ := fields["id"].(int64)
				content, _ := fields["content"].(string)
				if err := a.history.UpdateChatMessage(id, content); err != nil {
					log.Printf("[DB] Warning: could not update chat message: %v", err)
				}
			}
		}
	}
	a.emitEvent(eventName, data)
}

// ---------------------------------------------------------------------------
// Inbox
// ---------------------------------------------------------------------------

// GetInboxDir retorna o diretório monitorado atual
func (a *App) GetInboxDir() string {
	if a.inbox == nil {
		return ""
	}
	return a.inbox.Dir()
}

// WatchInbox muda o diretório monitorado de currículos
func (a *App) WatchInbox(dir string) error {
	if a.inbox == nil {
		return fmt.Errorf("inbox watcher is unavailable")
	}
	return a.inbox.Watch(dir)
}

// emitEvent repassa um evento ao frontend via runtime do Wails.
// Em testes, a.emit é substituído e a.ctx pode ser nil.
func (a *App) emitEvent(eventName string, data interface{}) {
	if a.emit != nil {
		a.emit(eventName, data)
		return
	}
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventName, data)
}
