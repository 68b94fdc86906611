package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrUnavailable is returned by every call made while the model client could not be initialized.
var ErrUnavailable = errors.New("ai model unavailable")

// ErrUpstream wraps any other provider failure (network, 5xx, empty completion).
var ErrUpstream = errors.New("ai provider error")
