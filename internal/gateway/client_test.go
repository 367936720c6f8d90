package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(serverURL string, tokenSource TokenSource) *Client {
	return NewClient(serverURL, tokenSource)
}

func TestBearerFallbackAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server.URL, func(ctx context.Context) string {
		return "token-abc"
	})

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if gotAuth != "Bearer token-abc" {
		t.Fatalf("unexpected authorization header. got=%q", gotAuth)
	}
	if gotRequestID == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}

func TestNoTokenMeansNoAuthorizationHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server.URL, func(ctx context.Context) string {
		return ""
	})

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no authorization header, got=%q", gotAuth)
	}
}

func TestAPIErrorCarriesStatusAndDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"Invalid PDF file"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	_, err := client.AnalyzeResume(context.Background(), "resume.pdf", []byte("%PDF-1.4"))
	if err == nil {
		t.Fatalf("expected an error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status. got=%d want=%d", apiErr.Status, http.StatusUnprocessableEntity)
	}
	if apiErr.Message != "Invalid PDF file" {
		t.Fatalf("unexpected message. got=%q", apiErr.Message)
	}
}

func TestNewAPIErrorMessageExtraction(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"detail field", `{"detail":"Not authenticated"}`, "Not authenticated"},
		{"message field", `{"message":"Something broke"}`, "Something broke"},
		{"detail wins over message", `{"detail":"a","message":"b"}`, "a"},
		{"raw text body", `upstream unavailable`, "upstream unavailable"},
		{"empty json", `{}`, "API Error"},
		{"empty body", ``, "API Error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apiErr := newAPIError(500, []byte(tc.body))
			if apiErr.Message != tc.want {
				t.Fatalf("unexpected message. got=%q want=%q", apiErr.Message, tc.want)
			}
		})
	}
}

func TestTimeoutIsDistinguishable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	client.timeout = 20 * time.Millisecond

	err := client.Logout(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestAnalyzeResumeSendsMultipart(t *testing.T) {
	content := []byte("%PDF-1.4 fake resume")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze-resume" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing multipart field 'file': %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Filename != "resume.pdf" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		got, _ := io.ReadAll(file)
		if string(got) != string(content) {
			t.Errorf("multipart content mismatch")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"analysis":{"resume_title":"Backend Engineer"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	raw, err := client.AnalyzeResume(context.Background(), "resume.pdf", content)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("expected a raw analysis payload")
	}
}

func TestSendChatMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var payload struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("invalid chat payload: %v", err)
		}
		if payload.Message != "What roles fit me?" {
			t.Errorf("unexpected message %q", payload.Message)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reply":"You would fit backend roles."}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	reply, err := client.SendChatMessage(context.Background(), "What roles fit me?")
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if reply != "You would fit backend roles." {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestGetSummariesUnwrapsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"summaries":[{"resume_title":"A"},{"resume_title":"B"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	summaries, err := client.GetSummaries(context.Background())
	if err != nil {
		t.Fatalf("get summaries failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("unexpected summary count. got=%d want=2", len(summaries))
	}
}

func TestSetCookieForwardsSessionObjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("invalid set-cookie payload: %v", err)
		}
		if payload["access_token"] != "tok" {
			t.Errorf("unexpected access_token %v", payload["access_token"])
		}
		if _, ok := payload["session"]; !ok {
			t.Errorf("expected session field in payload")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	err := client.SetCookie(context.Background(), SetCookieRequest{
		Session:     map[string]string{"access_token": "tok"},
		AccessToken: "tok",
	})
	if err != nil {
		t.Fatalf("set-cookie failed: %v", err)
	}
}
