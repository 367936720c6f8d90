package history

import "time"

// ChatRecord armazena uma mensagem do transcript do chat
type ChatRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MessageID int64     `gorm:"index;not null" json:"messageId"`
	Role      string    `gorm:"not null" json:"role"` // "user" | "bot"
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// AnalysisRecord armazena uma análise de currículo adotada nesta sessão
type AnalysisRecord struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	ResumeTitle     string    `json:"resumeTitle"`
	ExperienceLevel string    `json:"experienceLevel"`
	Sentiment       string    `json:"sentiment"`
	Payload         string    `gorm:"type:text" json:"payload,omitempty"` // JSON cru da análise
	CreatedAt       time.Time `gorm:"index" json:"createdAt"`
}
