package history

import (
	"encoding/json"
	"testing"
	"time"

	"cvia/internal/analysis"
	"cvia/internal/chat"
)

// Um único teste de ciclo de vida: o banco em memória usa cache
// compartilhado, então instâncias paralelas enxergariam os mesmos dados.
func TestSessionHistoryLifecycle(t *testing.T) {
	service, err := NewService()
	if err != nil {
		t.Fatalf("service creation failed: %v", err)
	}
	defer service.Close()

	if err := service.ClearChat(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	messages := []chat.Message{
		{ID: 1, Role: chat.RoleBot, Content: "👋 Hello!", Timestamp: time.Now()},
		{ID: 2, Role: chat.RoleUser, Content: "hi", Timestamp: time.Now()},
		{ID: 3, Role: chat.RoleBot, Content: "", Timestamp: time.Now()},
	}
	for _, message := range messages {
		if err := service.AppendChatMessage(message); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	// O reveal atualiza a mesma mensagem até o conteúdo final
	if err := service.UpdateChatMessage(3, "full reply"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	records, err := service.ListChatMessages()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("unexpected transcript size %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].MessageID <= records[i-1].MessageID {
			t.Fatalf("transcript must preserve arrival order")
		}
	}
	if records[2].Content != "full reply" {
		t.Fatalf("updated content not persisted: %q", records[2].Content)
	}

	result := &analysis.Result{
		ResumeTitle:     "Backend Engineer",
		ExperienceLevel: "Senior",
		Sentiment:       "positive",
		Raw:             json.RawMessage(`{"resume_title":"Backend Engineer"}`),
	}
	id, err := service.RecordAnalysis(result)
	if err != nil {
		t.Fatalf("record analysis failed: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a generated id")
	}

	analyses, err := service.ListAnalyses()
	if err != nil {
		t.Fatalf("list analyses failed: %v", err)
	}
	if len(analyses) == 0 {
		t.Fatalf("expected at least one analysis")
	}
	if analyses[0].ResumeTitle != "Backend Engineer" {
		t.Fatalf("unexpected analysis record: %+v", analyses[0])
	}

	if err := service.ClearChat(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	records, err = service.ListChatMessages()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("transcript should be empty after clear, got %d", len(records))
	}
}
