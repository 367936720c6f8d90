package identity

import "time"

// User representa um usuário autenticado no provider
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Provider  string `json:"provider,omitempty"` // "email" | "google"
}

// Session é o bundle de credenciais emitido pelo provider.
// Nunca é criado pelo app; só o provider emite sessões.
type Session struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         *User     `json:"user,omitempty"`
}

// Expired informa se o access token já passou da validade
func (s *Session) Expired() bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// AuthEvent identifica o tipo de mudança de estado de autenticação
type AuthEvent string

const (
	EventSignedIn  AuthEvent = "SIGNED_IN"
	EventSignedOut AuthEvent = "SIGNED_OUT"
)

// AuthChangeHandler recebe eventos do canal push de mudança de auth
type AuthChangeHandler func(event AuthEvent, session *Session)

// PKCEChallenge representa os dados do PKCE flow
type PKCEChallenge struct {
	CodeVerifier  string `json:"codeVerifier"`
	CodeChallenge string `json:"codeChallenge"`
	State         string `json:"state"`
}
