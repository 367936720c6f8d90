package chat

import "time"

// Role identifica o autor de uma mensagem
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message é uma mensagem do chat. IDs são inteiros monotônicos: a resposta
// do bot sempre tem ID estritamente maior que a mensagem que a provocou.
type Message struct {
	ID        int64     `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
