package ai

import (
	"context"
	"fmt"
)

// Unavailable stands in for a model client that failed to initialize
// (missing or malformed credential). Every call fails with ErrUnavailable.
type Unavailable struct {
	Reason string
}

func (u Unavailable) Complete(ctx context.Context, req Request) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrUnavailable, u.Reason)
}

// Available reports whether m can actually reach a model.
func Available(m Model) bool {
	switch m.(type) {
	case nil, Unavailable, *Unavailable:
		return false
	}
	return true
}

// UnavailableReason returns why m is unavailable, or "" when it is available.
func UnavailableReason(m Model) string {
	switch v := m.(type) {
	case nil:
		return "model not configured"
	case Unavailable:
		return v.Reason
	case *Unavailable:
		return v.Reason
	}
	return ""
}
