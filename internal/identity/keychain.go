package identity

import (
	"fmt"
	"log"
	"time"

	"cvia/internal/config"

	"github.com/zalando/go-keyring"
)

const (
	keychainAccessToken  = "access_token"
	keychainRefreshToken = "refresh_token"
	keychainExpiresAt    = "token_expires_at"
)

// storeSessionTokens persiste os tokens da sessão no Keychain do sistema.
// Equivalente desktop do localStorage do supabase-js: GetSession() continua
// funcionando após reiniciar o app.
func storeSessionTokens(session *Session) error {
	if err := keyring.Set(config.AppBundleID, keychainAccessToken, session.AccessToken); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	if err := keyring.Set(config.AppBundleID, keychainRefreshToken, session.RefreshToken); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	if err := keyring.Set(config.AppBundleID, keychainExpiresAt, session.ExpiresAt.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to store expiration: %w", err)
	}
	return nil
}

// loadSessionTokens recupera os tokens persistidos, se existirem.
func loadSessionTokens() *Session {
	accessToken, err := keyring.Get(config.AppBundleID, keychainAccessToken)
	if err != nil || accessToken == "" {
		return nil
	}

	refreshToken, _ := keyring.Get(config.AppBundleID, keychainRefreshToken)

	session := &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}

	if expiresStr, err := keyring.Get(config.AppBundleID, keychainExpiresAt); err == nil {
		if expiresAt, err := time.Parse(time.RFC3339, expiresStr); err == nil {
			session.ExpiresAt = expiresAt
		}
	}

	return session
}

// clearSessionTokens remove todos os tokens do Keychain (best-effort).
func clearSessionTokens() {
	keys := []string{keychainAccessToken, keychainRefreshToken, keychainExpiresAt}
	for _, key := range keys {
		if err := keyring.Delete(config.AppBundleID, key); err != nil && err != keyring.ErrNotFound {
			log.Printf("[AUTH] Warning: failed to delete keychain key %s: %v", key, err)
		}
	}
}
