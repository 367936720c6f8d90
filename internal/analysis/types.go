package analysis

import "encoding/json"

// Result é a análise de currículo devolvida pelo backend.
// Substituída por inteiro a cada nova análise, nunca mesclada.
type Result struct {
	ResumeTitle     string   `json:"resume_title"`
	ExperienceLevel string   `json:"experience_level"`
	Sentiment       string   `json:"sentiment"`
	Tone            string   `json:"tone,omitempty"`
	SummaryText     string   `json:"summary_text,omitempty"`
	TechnicalSkills []string `json:"technical_skills,omitempty"`
	SoftSkills      []string `json:"soft_skills,omitempty"`
	JobRoles        []string `json:"job_roles,omitempty"`

	// Raw preserva o payload original para campos que o backend
	// adicionar sem o app conhecer.
	Raw json.RawMessage `json:"-"`
}

// WorkflowState é o estado da máquina de upload/análise
type WorkflowState string

const (
	StateIdle       WorkflowState = "idle"
	StateValidating WorkflowState = "validating"
	StateUploading  WorkflowState = "uploading"
	StateReady      WorkflowState = "ready"
	StateError      WorkflowState = "error"
)

// Upload é um currículo candidato a análise, já carregado em memória
type Upload struct {
	Name     string
	MIMEType string
	Content  []byte
}

// ValidationError indica arquivo rejeitado localmente, antes de qualquer
// chamada de rede. Sempre recuperável pelo usuário.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
