package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/scenewatch/vision-backend/internal/automation"
)

var errSentinel = errors.New("boom")

// chatRequest mirrors the fields of an OpenAI chat completion request the
// tests need to inspect.
type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

type fakeCompletionServer struct {
	mu       sync.Mutex
	requests []chatRequest
	// replies holds one response body content per call, in order.
	replies []string
	// failAt makes the nth call (0-based) answer 500.
	failAt int

	srv *httptest.Server
}

func newFakeCompletionServer(t *testing.T, replies ...string) *fakeCompletionServer {
	t.Helper()

	f := &fakeCompletionServer{replies: replies, failAt: -1}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)

		var req chatRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		call := len(f.requests)
		f.requests = append(f.requests, req)
		f.mu.Unlock()

		if call == f.failAt {
			http.Error(w, "model crashed", http.StatusInternalServerError)
			return
		}

		reply := "default reply"
		if call < len(f.replies) {
			reply = f.replies[call]
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeCompletionServer) client() *Client {
	return NewClient(Config{
		BaseURL: f.srv.URL + "/v1",
		APIKey:  "test-key",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (f *fakeCompletionServer) request(t *testing.T, i int) chatRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if i >= len(f.requests) {
		t.Fatalf("request %d never arrived (%d total)", i, len(f.requests))
	}
	return f.requests[i]
}

func (f *fakeCompletionServer) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func testRules() []automation.Rule {
	return []automation.Rule{
		{ID: "rule_a", ConditionText: "a person enters the room", ActionID: "turn_on_lights"},
	}
}

func TestInvoke_TwoStages(t *testing.T) {
	f := newFakeCompletionServer(t,
		"a person walks into the kitchen",
		`{"triggered_rule_ids": ["rule_a"], "reasoning": "person entered"}`,
	)

	dec, err := f.client().Invoke(context.Background(), [][]byte{[]byte("f0"), []byte("f1")}, 0, 1, testRules())
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	if dec.Summary != "a person walks into the kitchen" {
		t.Errorf("Summary = %q", dec.Summary)
	}
	if len(dec.TriggeredRuleIDs) != 1 || dec.TriggeredRuleIDs[0] != "rule_a" {
		t.Errorf("TriggeredRuleIDs = %v, want [rule_a]", dec.TriggeredRuleIDs)
	}
	if dec.Reasoning != "person entered" {
		t.Errorf("Reasoning = %q", dec.Reasoning)
	}
	if got := f.requestCount(); got != 2 {
		t.Fatalf("requests = %d, want 2 (summary then policy)", got)
	}

	// The vision stage carries the frames as multi-part content and never
	// mentions the rules.
	visionReq := f.request(t, 0)
	if len(visionReq.Messages) != 1 {
		t.Fatalf("vision messages = %d, want 1", len(visionReq.Messages))
	}
	visionContent := string(visionReq.Messages[0].Content)
	if !strings.Contains(visionContent, "image_url") {
		t.Error("vision request has no image parts")
	}
	if strings.Contains(visionContent, "rule_a") {
		t.Error("vision request leaks rules")
	}

	// The policy stage is text-only and carries rule ids and conditions but
	// never frames or actions.
	policyReq := f.request(t, 1)
	policyContent := string(policyReq.Messages[len(policyReq.Messages)-1].Content)
	if !strings.Contains(policyContent, "rule_a") {
		t.Error("policy request is missing the rule id")
	}
	if strings.Contains(policyContent, "image_url") {
		t.Error("policy request carries frames")
	}
	if strings.Contains(policyContent, "turn_on_lights") {
		t.Error("policy request leaks action ids")
	}
}

func TestInvoke_NoRulesSkipsPolicyStage(t *testing.T) {
	f := newFakeCompletionServer(t, "an empty room")

	dec, err := f.client().Invoke(context.Background(), [][]byte{[]byte("f0")}, 0, 0.5, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if dec.Summary != "an empty room" {
		t.Errorf("Summary = %q", dec.Summary)
	}
	if len(dec.TriggeredRuleIDs) != 0 {
		t.Errorf("TriggeredRuleIDs = %v, want empty", dec.TriggeredRuleIDs)
	}
	if got := f.requestCount(); got != 1 {
		t.Errorf("requests = %d, want 1 (policy stage skipped)", got)
	}
}

func TestInvoke_EmptyWindowFails(t *testing.T) {
	f := newFakeCompletionServer(t)

	_, err := f.client().Invoke(context.Background(), nil, 0, 0, testRules())
	var invokeErr *InvokeError
	if !errors.As(err, &invokeErr) {
		t.Fatalf("err = %v, want *InvokeError", err)
	}
	if invokeErr.Stage != "summarize" {
		t.Errorf("Stage = %q, want summarize", invokeErr.Stage)
	}
	if got := f.requestCount(); got != 0 {
		t.Errorf("requests = %d, want 0", got)
	}
}

func TestInvoke_SummaryFailure(t *testing.T) {
	f := newFakeCompletionServer(t)
	f.failAt = 0

	_, err := f.client().Invoke(context.Background(), [][]byte{[]byte("f0")}, 0, 0.5, testRules())
	var invokeErr *InvokeError
	if !errors.As(err, &invokeErr) {
		t.Fatalf("err = %v, want *InvokeError", err)
	}
	if invokeErr.Stage != "summarize" {
		t.Errorf("Stage = %q, want summarize", invokeErr.Stage)
	}
}

func TestInvoke_PolicyFailure(t *testing.T) {
	f := newFakeCompletionServer(t, "a person walks in")
	f.failAt = 1

	_, err := f.client().Invoke(context.Background(), [][]byte{[]byte("f0")}, 0, 0.5, testRules())
	var invokeErr *InvokeError
	if !errors.As(err, &invokeErr) {
		t.Fatalf("err = %v, want *InvokeError", err)
	}
	if invokeErr.Stage != "evaluate" {
		t.Errorf("Stage = %q, want evaluate", invokeErr.Stage)
	}
}

func TestInvoke_UnparseablePolicyResponseDegrades(t *testing.T) {
	f := newFakeCompletionServer(t,
		"a person walks in",
		"I don't think any rules apply here.",
	)

	dec, err := f.client().Invoke(context.Background(), [][]byte{[]byte("f0")}, 0, 0.5, testRules())
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if len(dec.TriggeredRuleIDs) != 0 {
		t.Errorf("TriggeredRuleIDs = %v, want empty on unparseable response", dec.TriggeredRuleIDs)
	}
	if dec.RawText == "" {
		t.Error("RawText not preserved for diagnostics")
	}
}

func TestNewClient_ModelDefaults(t *testing.T) {
	c := NewClient(Config{}, nil)
	if c.visionModel != defaultVisionModel {
		t.Errorf("visionModel = %q, want %q", c.visionModel, defaultVisionModel)
	}
	if c.policyModel != defaultVisionModel {
		t.Errorf("policyModel = %q, want the vision model", c.policyModel)
	}

	c = NewClient(Config{VisionModel: "v", PolicyModel: "p"}, nil)
	if c.visionModel != "v" || c.policyModel != "p" {
		t.Errorf("models = %q/%q, want v/p", c.visionModel, c.policyModel)
	}
}
