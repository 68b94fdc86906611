package ai

import "context"

// Request is a single prompt/response round trip to the language model.
type Request struct {
	// Operation names the call for logs and metrics (analyze_risk, answer_question, ...).
	Operation string
	System    string
	User      string
	// JSON asks the provider for a JSON object response when it supports it.
	JSON bool
}

// Model is the text-in/text-out capability every AI feature is built on.
type Model interface {
	Complete(ctx context.Context, req Request) (string, error)
}
