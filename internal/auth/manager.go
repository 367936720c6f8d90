package auth

import (
	"context"
	"log"
	"sync"

	"cvia/internal/gateway"
	"cvia/internal/identity"
)

// Provider é a superfície do identity provider consumida pelo manager.
type Provider interface {
	GetSession(ctx context.Context) (*identity.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error)
	SignUp(ctx context.Context, email, password string) (*identity.Session, error)
	SignInWithOAuth(ctx context.Context, provider string) (string, error)
	SignOut(ctx context.Context) error
	OnAuthStateChange(handler identity.AuthChangeHandler) func()
}

// BackendNotifier é o mínimo do gateway usado para sincronização best-effort
// (set-cookie / logout). Falhas aqui nunca bloqueiam transições de auth.
type BackendNotifier interface {
	SetCookie(ctx context.Context, req gateway.SetCookieRequest) error
	Logout(ctx context.Context) error
}

// State é o estado de autenticação observável pelo frontend.
// Invariante: User e Session são sempre setados/limpos juntos.
type State struct {
	User    *identity.User    `json:"user,omitempty"`
	Session *identity.Session `json:"session,omitempty"`
	Loading bool              `json:"loading"`
	Err     string            `json:"error,omitempty"`
}

// Manager é a máquina de estados de autenticação do app.
// Reconcilia a sessão do identity provider com a sessão de cookie do backend.
type Manager struct {
	provider Provider
	backend  BackendNotifier
	onChange func(State)

	mu          sync.Mutex
	state       State
	initialized bool
	unsubscribe func()
}

// NewManager cria o manager com estado inicial {loading: true}.
// onChange (opcional) é chamado a cada transição, fora do lock.
func NewManager(provider Provider, backend BackendNotifier, onChange func(State)) *Manager {
	return &Manager{
		provider: provider,
		backend:  backend,
		onChange: onChange,
		state:    State{Loading: true},
	}
}

// Initialize restaura a sessão do provider (ex: retorno de redirect OAuth),
// sincroniza o cookie do backend e inscreve o canal push de auth.
// Single-flight estrito: o primeiro caller executa, os demais no-op.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	if m.initialized || !m.state.Loading {
		m.mu.Unlock()
		return nil
	}
	m.initialized = true
	m.mu.Unlock()

	session, err := m.provider.GetSession(ctx)
	if err != nil {
		m.mutate(func(s *State) {
			s.Err = err.Error()
			s.Loading = false
		})
		return err
	}

	m.mutate(func(s *State) {
		s.Session = session
		s.User = userOf(session)
		s.Loading = false
	})

	if session != nil {
		m.notifySetCookie(ctx, session, "init")
	}

	// Exatamente uma inscrição por processo
	m.mu.Lock()
	if m.unsubscribe == nil {
		m.unsubscribe = m.provider.OnAuthStateChange(m.handleAuthEvent)
	}
	m.mu.Unlock()

	return nil
}

// SignIn autentica com email+senha. Falhas do provider são erros duros:
// ficam registradas no estado e são devolvidas ao caller.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	m.mutate(func(s *State) {
		s.Loading = true
		s.Err = ""
	})

	session, err := m.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		m.mutate(func(s *State) {
			s.Err = err.Error()
			s.Loading = false
		})
		return nil, err
	}

	m.mutate(func(s *State) {
		s.Session = session
		s.User = userOf(session)
		s.Loading = false
	})

	if session != nil {
		m.notifySetCookie(ctx, session, "signIn")
	}
	return session, nil
}

// SignUp cria uma conta nova. Mesma semântica de erro do SignIn.
func (m *Manager) SignUp(ctx context.Context, email, password string) (*identity.Session, error) {
	m.mutate(func(s *State) {
		s.Loading = true
		s.Err = ""
	})

	session, err := m.provider.SignUp(ctx, email, password)
	if err != nil {
		m.mutate(func(s *State) {
			s.Err = err.Error()
			s.Loading = false
		})
		return nil, err
	}

	m.mutate(func(s *State) {
		s.Session = session
		s.User = userOf(session)
		s.Loading = false
	})

	if session != nil {
		m.notifySetCookie(ctx, session, "signUp")
	}
	return session, nil
}

// SignInWithGoogle inicia o fluxo OAuth por redirect e retorna a URL de
// autorização. A sessão chega depois, pelo canal push.
func (m *Manager) SignInWithGoogle(ctx context.Context) (string, error) {
	m.mutate(func(s *State) {
		s.Loading = true
		s.Err = ""
	})

	authURL, err := m.provider.SignInWithOAuth(ctx, "google")
	if err != nil {
		m.mutate(func(s *State) {
			s.Err = err.Error()
			s.Loading = false
		})
		return "", err
	}

	m.mutate(func(s *State) {
		s.Loading = false
	})
	return authURL, nil
}

// SignOut encerra a sessão. O estado local é limpo incondicionalmente,
// mesmo que o provider ou o backend falhem.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mutate(func(s *State) {
		s.Loading = true
		s.Err = ""
	})

	if err := m.provider.SignOut(ctx); err != nil {
		log.Printf("[AUTH] Warning: provider sign-out failed: %v", err)
	}
	if err := m.backend.Logout(ctx); err != nil {
		log.Printf("[AUTH] Warning: backend logout failed: %v", err)
	}

	m.mutate(func(s *State) {
		s.User = nil
		s.Session = nil
		s.Loading = false
	})
	return nil
}

// IsAuthenticated vale user≠nil ∧ session≠nil, nunca com só um dos dois
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.User != nil && m.state.Session != nil
}

// CurrentState retorna uma cópia do estado atual
func (m *Manager) CurrentState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser retorna o usuário autenticado atual (nil se não autenticado)
func (m *Manager) CurrentUser() *identity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.User
}

// ClearError limpa a última mensagem de erro
func (m *Manager) ClearError() {
	m.mutate(func(s *State) {
		s.Err = ""
	})
}

// Close libera a inscrição no canal push de auth
func (m *Manager) Close() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// handleAuthEvent processa o canal push do provider (ex: retorno de OAuth,
// sign-out em outra janela). Sincronizações com o backend são best-effort.
func (m *Manager) handleAuthEvent(event identity.AuthEvent, session *identity.Session) {
	ctx := context.Background()

	switch event {
	case identity.EventSignedIn:
		if session == nil {
			return
		}
		m.mutate(func(s *State) {
			s.Session = session
			s.User = userOf(session)
		})
		m.notifySetCookie(ctx, session, "push")

	case identity.EventSignedOut:
		m.mutate(func(s *State) {
			s.User = nil
			s.Session = nil
		})
		if err := m.backend.Logout(ctx); err != nil {
			log.Printf("[AUTH] Warning: backend logout failed: %v", err)
		}
	}
}

// notifySetCookie sincroniza a sessão com o backend: notifica, descarta o
// resultado e registra diagnóstico em caso de falha.
func (m *Manager) notifySetCookie(ctx context.Context, session *identity.Session, origin string) {
	err := m.backend.SetCookie(ctx, gateway.SetCookieRequest{
		Session:     session,
		AccessToken: session.AccessToken,
		User:        session.User,
	})
	if err != nil {
		log.Printf("[AUTH] Warning: set-cookie sync failed (%s): %v", origin, err)
	}
}

// mutate aplica a transição sob lock e notifica o observer fora do lock
func (m *Manager) mutate(apply func(*State)) {
	m.mu.Lock()
	apply(&m.state)
	snapshot := m.state
	m.mu.Unlock()

	if m.onChange != nil {
		m.onChange(snapshot)
	}
}

func userOf(session *identity.Session) *identity.User {
	if session == nil {
		return nil
	}
	return session.User
}
