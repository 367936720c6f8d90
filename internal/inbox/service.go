package inbox

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"cvia/internal/analysis"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow absorve a rajada de writes enquanto o arquivo é copiado
const debounceWindow = 500 * time.Millisecond

// Analyzer é o mínimo do workflow de análise usado pelo inbox.
type Analyzer interface {
	UploadAndAnalyze(ctx context.Context, up analysis.Upload) (*analysis.Result, error)
}

// Service monitora a pasta de inbox com fsnotify: um PDF solto lá é
// debounced e enviado automaticamente para análise.
type Service struct {
	watcher  *fsnotify.Watcher
	analyzer Analyzer
	emit     func(eventName string, data interface{})

	mu       sync.Mutex
	debounce map[string]*time.Timer
	dir      string
	loopOn   bool
	done     chan struct{}
	closed   bool
}

// NewService cria o watcher do inbox de currículos
func NewService(analyzer Analyzer, emit func(eventName string, data interface{})) (*Service, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Service{
		watcher:  watcher,
		analyzer: analyzer,
		emit:     emit,
		debounce: make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}, nil
}

// Watch inicia o monitoramento do diretório, criando-o se necessário
func (s *Service) Watch(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("inbox watcher is closed")
	}

	dir = filepath.Clean(dir)
	if s.dir == dir {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create inbox directory: %w", err)
	}
	if err := s.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch inbox directory: %w", err)
	}

	if s.dir != "" {
		_ = s.watcher.Remove(s.dir)
	}
	s.dir = dir
	log.Printf("[INBOX] Watching %s", dir)

	if !s.loopOn {
		s.loopOn = true
		go s.eventLoop()
	}
	return nil
}

// Dir retorna o diretório monitorado atual
func (s *Service) Dir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

// Close encerra o watcher e cancela debounces pendentes
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, timer := range s.debounce {
		timer.Stop()
	}

	close(s.done)
	return s.watcher.Close()
}

func (s *Service) eventLoop() {
	for {
		select {
		case <-s.done:
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if shouldIgnore(event.Name) {
				continue
			}

			// Debounce por arquivo: cópias grandes geram vários writes
			s.mu.Lock()
			if s.closed {
				s.mu.Unlock()
				return
			}
			if timer, exists := s.debounce[event.Name]; exists {
				timer.Stop()
			}
			path := event.Name
			s.debounce[path] = time.AfterFunc(debounceWindow, func() {
				s.handleDetectedFile(path)
			})
			s.mu.Unlock()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[INBOX] Error: %v", err)
		}
	}
}

// handleDetectedFile lê o arquivo estabilizado e o submete à análise.
// A validação de PDF é do workflow; aqui só rejeitamos o que sumiu.
func (s *Service) handleDetectedFile(path string) {
	s.mu.Lock()
	delete(s.debounce, path)
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	s.emitEvent(Event{
		Type:      "detected",
		Path:      path,
		Timestamp: time.Now(),
	})
	log.Printf("[INBOX] Resume detected: %s", filepath.Base(path))

	content, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[INBOX] Could not read %s: %v", path, err)
		return
	}

	up := analysis.Upload{
		Name:     filepath.Base(path),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		Content:  content,
	}

	result, err := s.analyzer.UploadAndAnalyze(context.Background(), up)
	if err != nil {
		if errors.Is(err, analysis.ErrUploadInFlight) {
			log.Printf("[INBOX] Skipping %s: upload already in progress", up.Name)
			return
		}
		s.emitEvent(Event{
			Type:      "rejected",
			Path:      path,
			Timestamp: time.Now(),
			Details:   map[string]string{"reason": err.Error()},
		})
		return
	}

	s.emitEvent(Event{
		Type:      "analyzed",
		Path:      path,
		Timestamp: time.Now(),
		Details:   map[string]string{"resumeTitle": result.ResumeTitle},
	})
}

func (s *Service) emitEvent(event Event) {
	if s.emit != nil {
		s.emit("inbox:"+event.Type, event)
	}
}

// shouldIgnore filtra arquivos temporários e ocultos de ferramentas de cópia
func shouldIgnore(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") ||
		strings.HasPrefix(name, "~") ||
		strings.HasSuffix(name, ".crdownload") ||
		strings.HasSuffix(name, ".part") ||
		strings.HasSuffix(name, ".tmp")
}
