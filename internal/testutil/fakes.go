package testutil

import (
	"context"
	"sync"

	"github.com/bryanwahyu/lexilens/internal/domain/ai"
)

// RiskReply is the default reply of Model to the risk-analysis call.
const RiskReply = `{
  "overall_risk_score": 0.78,
  "clauses": [
    {"clause": "Either party may terminate this agreement at any time without notice.", "risk": "High", "confidence": 0.92, "reason": "Immediate termination without notice or cure period."},
    {"clause": "Invoices are payable within 30 days.", "risk": "Low", "confidence": 0.8, "reason": "Standard payment terms."}
  ]
}`

var defaultReplies = map[string]string{
	"analyze_risk":        RiskReply,
	"simplify":            "**Summary:** Either side can end the deal at any moment.",
	"answer_question":     "The agreement can be terminated without notice.",
	"analyze_scenario":    "Summary: the other party terminates early. Risk: no notice period.",
	"suggest_negotiation": `{"suggestions": ["Require 30 days written notice", "Add a cure period"]}`,
	"suggest_questions":   `{"qa_suggestions": ["Can I terminate early?"], "scenario_suggestions": ["What if payment is late?"]}`,
}

// Model is a scripted ai.Model. Replies and Errors are keyed by Request.Operation;
// operations with neither get a canned default.
type Model struct {
	mu      sync.Mutex
	Replies map[string]string
	Errors  map[string]error
	// Gate blocks every call until it is closed or the call's context ends.
	Gate  chan struct{}
	calls []ai.Request
}

func (m *Model) Complete(ctx context.Context, req ai.Request) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	gate := m.Gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.Errors[req.Operation]; ok {
		return "", err
	}
	if r, ok := m.Replies[req.Operation]; ok {
		return r, nil
	}
	return defaultReplies[req.Operation], nil
}

func (m *Model) SetReply(op, reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Replies == nil {
		m.Replies = map[string]string{}
	}
	m.Replies[op] = reply
}

func (m *Model) Calls() []ai.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ai.Request(nil), m.calls...)
}

func (m *Model) CallCount(op string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Operation == op {
			n++
		}
	}
	return n
}

// Extractor returns fixed text for every file and records the paths it saw.
type Extractor struct {
	mu    sync.Mutex
	Text  string
	Err   error
	paths []string
}

func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paths = append(e.paths, path)
	if e.Err != nil {
		return "", e.Err
	}
	return e.Text, nil
}

func (e *Extractor) Paths() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.paths...)
}
