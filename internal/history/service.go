package history

import (
	"fmt"
	"log"
	"time"

	"cvia/internal/analysis"
	"cvia/internal/chat"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Service guarda o transcript do chat e as análises da sessão atual em um
// SQLite em memória: morre com o processo, nada sobrevive ao fechamento.
type Service struct {
	db *gorm.DB
}

// NewService abre o banco em memória e aplica as migrações
func NewService() (*Service, error) {
	db, err := gorm.Open(sqlite.Open("file:cvia_history?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.AutoMigrate(&ChatRecord{}, &AnalysisRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}

	log.Println("[DB] In-memory history initialized")
	return &Service{db: db}, nil
}

// AppendChatMessage registra uma mensagem do chat no transcript
func (s *Service) AppendChatMessage(message chat.Message) error {
	record := ChatRecord{
		MessageID: message.ID,
		Role:      string(message.Role),
		Content:   message.Content,
		CreatedAt: message.Timestamp,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	return nil
}

// UpdateChatMessage sincroniza o conteúdo final de uma mensagem revelada
func (s *Service) UpdateChatMessage(messageID int64, content string) error {
	err := s.db.Model(&ChatRecord{}).
		Where("message_id = ?", messageID).
		Update("content", content).Error
	if err != nil {
		return fmt.Errorf("failed to update chat message: %w", err)
	}
	return nil
}

// ListChatMessages retorna o transcript em ordem de chegada
func (s *Service) ListChatMessages() ([]ChatRecord, error) {
	var records []ChatRecord
	if err := s.db.Order("message_id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return records, nil
}

// ClearChat descarta o transcript (ex: chat fechado e reaberto)
func (s *Service) ClearChat() error {
	if err := s.db.Where("1 = 1").Delete(&ChatRecord{}).Error; err != nil {
		return fmt.Errorf("failed to clear chat transcript: %w", err)
	}
	return nil
}

// RecordAnalysis registra a análise adotada e retorna o ID gerado
func (s *Service) RecordAnalysis(result *analysis.Result) (string, error) {
	record := AnalysisRecord{
		ID:              uuid.NewString(),
		ResumeTitle:     result.ResumeTitle,
		ExperienceLevel: result.ExperienceLevel,
		Sentiment:       result.Sentiment,
		Payload:         string(result.Raw),
		CreatedAt:       time.Now(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to record analysis: %w", err)
	}
	return record.ID, nil
}

// ListAnalyses retorna as análises da sessão, mais recente primeiro
func (s *Service) ListAnalyses() ([]AnalysisRecord, error) {
	var records []AnalysisRecord
	if err := s.db.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return records, nil
}

// Close fecha a conexão com o banco
func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
