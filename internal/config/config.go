package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// AppName é o nome do aplicativo
	AppName = "CVIA"

	// AppVersion é a versão atual
	AppVersion = "1.0.0"

	// AppBundleID é o bundle identifier macOS
	AppBundleID = "com.cvia.app"

	// DefaultAPIBaseURL é a URL do backend de análise de currículos
	DefaultAPIBaseURL = "https://resume-matcher-backend-zpt3.onrender.com"

	// RequestTimeout é o timeout fixo de cada chamada ao backend (30s)
	RequestTimeout = 30 * time.Second

	// MaxResumeSize é o tamanho máximo aceito para um currículo (10MB)
	MaxResumeSize = 10 * 1024 * 1024

	// RevealInterval é a cadência do efeito de digitação das respostas do chat
	RevealInterval = 20 * time.Millisecond

	// InboxDirName é o nome da pasta monitorada de currículos
	InboxDirName = "CVIA Inbox"
)

// APIBaseURL retorna a URL do backend, com override por env
func APIBaseURL() string {
	if override := strings.TrimSpace(os.Getenv("CVIA_API_URL")); override != "" {
		return strings.TrimRight(override, "/")
	}
	return DefaultAPIBaseURL
}

// DataDir retorna o diretório raiz de dados do app
// ~/Library/Application Support/CVIA/
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "Application Support", "CVIA")
}

// LogDir retorna o diretório de logs
func LogDir() string {
	return filepath.Join(DataDir(), "logs")
}

// InboxDir retorna a pasta monitorada de currículos, com override por env
func InboxDir() string {
	if override := strings.TrimSpace(os.Getenv("CVIA_INBOX_DIR")); override != "" {
		return filepath.Clean(override)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Documents", InboxDirName)
}

// EnsureDataDirs cria os diretórios necessários se não existirem
func EnsureDataDirs() error {
	dirs := []string{
		DataDir(),
		LogDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return nil
}
