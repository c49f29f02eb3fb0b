// Package mockupstream serves a fake reader proxy and a fake OpenAI-compatible
// chat-completions endpoint from one handler.
//
// Reader requests are any GET whose path is "/<target-url>". Completion
// requests are POSTs to a path ending in "/chat/completions".
package mockupstream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Call records a request made to the mock service.
type Call struct {
	Method string
	Path   string
}

// Completion records one chat-completion request body.
type Completion struct {
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Server is safe for concurrent use; configure it before serving.
type Server struct {
	mu    sync.Mutex
	calls []Call

	pages       map[string]string
	defaultPage *string
	readerDelay time.Duration
	readerFail  int

	expectedAuthorization string
	completions           []Completion
	replies               []string
	replyFunc             func(prompt string) string
	completionFail        int
	completionFailBody    string
}

func New() *Server {
	return &Server{pages: make(map[string]string)}
}

// SetPage registers the text returned by the reader for target.
func (s *Server) SetPage(target, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[target] = text
}

// SetDefaultPage sets the text served for targets without a registered page.
func (s *Server) SetDefaultPage(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultPage = &text
}

// SetReaderDelay delays every reader response, for timeout tests.
func (s *Server) SetReaderDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readerDelay = d
}

// FailReader makes every reader request answer with status.
func (s *Server) FailReader(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readerFail = status
}

// RequireBearerToken enforces the Authorization header on completion calls.
// If token is empty, authorization is not enforced.
func (s *Server) RequireBearerToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token = strings.TrimSpace(token)
	if token == "" {
		s.expectedAuthorization = ""
		return
	}
	s.expectedAuthorization = "Bearer " + token
}

// QueueReplies appends assistant replies served in FIFO order.
func (s *Server) QueueReplies(replies ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}

// ReplyWith sets a fallback used once the reply queue is empty.
func (s *Server) ReplyWith(fn func(prompt string) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replyFunc = fn
}

// FailCompletions makes every completion request answer with status and body.
func (s *Server) FailCompletions(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completionFail = status
	s.completionFailBody = body
}

// Handler returns an http.Handler that serves the mock API.
//
// ServeMux is not used: it would clean the "//" inside proxied target URLs.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.recordCall(r)
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/chat/completions"):
			s.handleCompletion(w, r)
		case r.Method == http.MethodGet:
			s.handleReader(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// Calls returns a snapshot of calls made to the server.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Completions returns a snapshot of completion requests.
func (s *Server) Completions() []Completion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Completion, len(s.completions))
	copy(out, s.completions)
	return out
}

func (s *Server) recordCall(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: r.Method, Path: r.RequestURI})
}

func (s *Server) handleReader(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimPrefix(r.RequestURI, "/")

	s.mu.Lock()
	delay := s.readerDelay
	fail := s.readerFail
	text, ok := s.pages[target]
	if !ok && s.defaultPage != nil {
		text, ok = *s.defaultPage, true
	}
	s.mu.Unlock()

	if delay > 0 {
		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-r.Context().Done():
			t.Stop()
			return
		}
	}
	if fail != 0 {
		http.Error(w, "reader failure", fail)
		return
	}
	if !ok {
		http.Error(w, fmt.Sprintf("no page for %q", target), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, text)
}

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	expected := s.expectedAuthorization
	fail, failBody := s.completionFail, s.completionFailBody
	s.mu.Unlock()

	if expected != "" && r.Header.Get("Authorization") != expected {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": map[string]any{"message": "invalid api key", "type": "invalid_request_error"},
		})
		return
	}
	if fail != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(fail)
		_, _ = io.WriteString(w, failBody)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	var prompt string
	for _, m := range req.Messages {
		if m.Role == "user" {
			prompt = m.Content
		}
	}

	s.mu.Lock()
	s.completions = append(s.completions, Completion{
		Model:       req.Model,
		Prompt:      prompt,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	var reply string
	switch {
	case len(s.replies) > 0:
		reply = s.replies[0]
		s.replies = s.replies[1:]
	case s.replyFunc != nil:
		reply = s.replyFunc(prompt)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"id":      "chatcmpl-mock",
		"object":  "chat.completion",
		"created": 0,
		"model":   req.Model,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": reply},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 0, "completion_tokens": 0, "total_tokens": 0},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// CannedReply answers extraction prompts with a fixed profile and scoring
// prompts with a fixed score.
func CannedReply(prompt string) string {
	if strings.Contains(prompt, `"score"`) {
		return `{"score": 72, "reasoning": "Technical founders building developer tooling; stage unknown."}`
	}
	return "```json\n" + `{
  "summary": "Builds developer tooling for AI infrastructure teams.",
  "whatTheyDo": ["Hosted CI for model training", "GPU cost dashboards"],
  "keywords": ["devtools", "ai infrastructure", "b2b saas"],
  "signals": [
    {"text": "Public pricing page with self-serve plans", "type": "positive", "reasoning": "Indicates product-led traction."},
    {"text": "No customer logos shown", "type": "risk", "reasoning": "Early or undisclosed customer base."}
  ]
}` + "\n```"
}
