package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"cvia/internal/config"
)

// fallbackReply é a resposta estática usada quando o backend falha
const fallbackReply = "⚠️ I apologize, but I'm having trouble processing your request. Please try again later."

// ErrAssistantBusy indica envio com resposta anterior ainda pendente
var ErrAssistantBusy = fmt.Errorf("assistant is still answering the previous message")

// Backend é o mínimo do gateway usado pelo chat.
type Backend interface {
	SendChatMessage(ctx context.Context, message string) (string, error)
}

// Simulator transforma a resposta completa do backend em um stream visual:
// a mensagem do bot entra vazia na sequência e um task agendado avança um
// cursor pelo texto, mutando a mesma mensagem a cada tick.
type Simulator struct {
	backend  Backend
	emit     func(eventName string, data interface{})
	interval time.Duration

	mu       sync.Mutex
	messages []Message
	nextID   int64
	typing   bool
	lastErr  string
	reveals  map[int64]context.CancelFunc
}

// SimulatorDeps encapsula dependências do simulador de chat.
type SimulatorDeps struct {
	Backend Backend
	// JobRoles da análise atual, usados na mensagem de abertura
	JobRoles []string
	// Emit (opcional) recebe eventos de mensagem para o frontend
	Emit func(eventName string, data interface{})
	// RevealInterval sobrescreve a cadência do efeito de digitação
	RevealInterval time.Duration
}

// NewSimulator cria o chat já com a mensagem de boas-vindas do bot,
// contextualizada pela análise de currículo atual.
func NewSimulator(deps SimulatorDeps) *Simulator {
	interval := deps.RevealInterval
	if interval <= 0 {
		interval = config.RevealInterval
	}

	s := &Simulator{
		backend:  deps.Backend,
		emit:     deps.Emit,
		interval: interval,
		reveals:  make(map[int64]context.CancelFunc),
	}

	greeting := fmt.Sprintf(
		"👋 Hello! I've analyzed your resume and I'm here to help. Based on your background in **%s**, what would you like to discuss?",
		strings.Join(deps.JobRoles, ", "),
	)
	s.appendMessage(RoleBot, greeting)

	return s
}

// SendMessage envia a mensagem do usuário e inicia o reveal da resposta.
// A mensagem do usuário entra na sequência antes de qualquer I/O; a do bot
// entra (vazia) antes do reveal começar, garantindo a ordenação.
func (s *Simulator) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	if s.typing {
		s.mu.Unlock()
		return ErrAssistantBusy
	}
	s.typing = true
	s.lastErr = ""
	s.mu.Unlock()

	s.appendMessage(RoleUser, text)
	s.emitEvent("chat:typing", map[string]bool{"typing": true})

	reply, err := s.backend.SendChatMessage(ctx, text)

	// O flag de digitação é limpo exatamente uma vez, na conclusão do
	// caminho de rede; o reveal continua depois disso.
	s.mu.Lock()
	s.typing = false
	if err != nil {
		s.lastErr = err.Error()
	}
	s.mu.Unlock()
	s.emitEvent("chat:typing", map[string]bool{"typing": false})

	if err != nil {
		log.Printf("[CHAT] Backend reply failed: %v", err)
		s.appendMessage(RoleBot, fallbackReply)
		return err
	}

	if reply == "" {
		reply = "I'm sorry, I couldn't process that."
	}

	botMessage := s.appendMessage(RoleBot, "")
	s.startReveal(botMessage.ID, reply)
	return nil
}

// Messages retorna uma cópia da sequência atual
func (s *Simulator) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Typing informa se há resposta do backend pendente
func (s *Simulator) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// LastError retorna a última falha de envio registrada
func (s *Simulator) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Revealing informa se algum reveal ainda está em andamento
func (s *Simulator) Revealing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reveals) > 0
}

// Close cancela todos os reveals pendentes. Obrigatório no teardown da view
// para nenhum task recorrente seguir mutando estado descartado.
func (s *Simulator) Close() {
	s.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(s.reveals))
	for id, cancel := range s.reveals {
		cancels = append(cancels, cancel)
		delete(s.reveals, id)
	}
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// appendMessage cria e anexa uma mensagem com o próximo ID monotônico
func (s *Simulator) appendMessage(role Role, content string) Message {
	s.mu.Lock()
	s.nextID++
	message := Message{
		ID:        s.nextID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	s.messages = append(s.messages, message)
	s.mu.Unlock()

	s.emitEvent("chat:message_appended", message)
	return message
}

// startReveal agenda o task que avança o cursor pelo texto da resposta,
// mutando a mensagem do bot a cada tick até o fim (ou cancelamento).
func (s *Simulator) startReveal(messageID int64, fullText string) {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.reveals[messageID] = cancel
	s.mu.Unlock()

	go func() {
		defer s.clearReveal(messageID)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		runes := []rune(fullText)
		cursor := 0

		for cursor < len(runes) {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cursor++
				s.updateContent(messageID, string(runes[:cursor]))
			}
		}
	}()
}

// updateContent muta o conteúdo da mensagem identificada e notifica o frontend
func (s *Simulator) updateContent(messageID int64, content string) {
	s.mu.Lock()
	for i := range s.messages {
		if s.messages[i].ID == messageID {
			s.messages[i].Content = content
			break
		}
	}
	s.mu.Unlock()

	s.emitEvent("chat:message_updated", map[string]interface{}{
		"id":      messageID,
		"content": content,
	})
}

func (s *Simulator) clearReveal(messageID int64) {
	s.mu.Lock()
	cancel, ok := s.reveals[messageID]
	delete(s.reveals, messageID)
	s.mu.Unlock()

	if ok {
		cancel()
	}
}

func (s *Simulator) emitEvent(eventName string, data interface{}) {
	if s.emit != nil {
		s.emit(eventName, data)
	}
}
