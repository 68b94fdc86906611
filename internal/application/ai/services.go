package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bryanwahyu/lexilens/internal/application"
	"github.com/bryanwahyu/lexilens/internal/domain/ai"
	"github.com/bryanwahyu/lexilens/internal/domain/analysis"
	"github.com/bryanwahyu/lexilens/internal/infra/ai/prompt"
)

// Operation names used in logs and metrics.
const (
	OpAnalyzeRisk      = "analyze_risk"
	OpSimplify         = "simplify"
	OpAnswerQuestion   = "answer_question"
	OpAnalyzeScenario  = "analyze_scenario"
	OpSuggestNegotiate = "suggest_negotiation"
	OpSuggestQuestions = "suggest_questions"
)

// UnavailableSummary is stored as the summary of a degraded analysis.
const UnavailableSummary = "AI analysis is currently unavailable due to API key configuration issues. Please contact the administrator."

// Result is the outcome of one document analysis.
type Result struct {
	OverallRiskScore  float64
	HighRiskClauses   []analysis.ClauseFinding
	SimplifiedSummary string
	ProcessingTime    float64 // seconds
	// Error is set on a degraded result produced without calling the model.
	Error string
}

// Degraded reports whether the result is the placeholder for an unavailable model.
func (r Result) Degraded() bool { return r.Error != "" }

type Suggestions = prompt.Suggestions

// Recorder receives one event per model call.
type Recorder interface {
	LLMCall(operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) LLMCall(string, string) {}

type Service struct {
	Model ai.Model
	// MaxContextChars bounds the document text sent per call, in runes. 0 disables it.
	MaxContextChars int
	Clock           application.Clock
	Logger          *slog.Logger
	Metrics         Recorder
}

func NewService(model ai.Model, maxContextChars int) *Service {
	return &Service{Model: model, MaxContextChars: maxContextChars}
}

// Available reports whether calls can reach a model.
func (s *Service) Available() bool { return ai.Available(s.Model) }

// Analyze runs the risk call and the simplification call. An unavailable model
// yields a degraded result, never an error; any model error is returned as is.
func (s *Service) Analyze(ctx context.Context, text string) (Result, error) {
	if !s.Available() {
		return Result{
			OverallRiskScore:  prompt.NeutralRiskScore,
			HighRiskClauses:   []analysis.ClauseFinding{},
			SimplifiedSummary: UnavailableSummary,
			ProcessingTime:    0,
			Error:             ai.UnavailableReason(s.Model),
		}, nil
	}

	start := s.clock().Now()
	text = prompt.Truncate(text, s.MaxContextChars)

	reply, err := s.call(ctx, ai.Request{
		Operation: OpAnalyzeRisk,
		System:    prompt.RiskSystem(),
		User:      prompt.RiskUser(text),
		JSON:      true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("risk analysis: %w", err)
	}
	report := prompt.DecodeRisk(reply)
	if !report.Decoded {
		s.log().Warn("risk reply was not valid json, using neutral score", "reply_len", len(reply))
	}

	summary, err := s.call(ctx, ai.Request{
		Operation: OpSimplify,
		System:    prompt.SimplifySystem(),
		User:      prompt.SimplifyUser(text),
	})
	if err != nil {
		return Result{}, fmt.Errorf("simplification: %w", err)
	}

	return Result{
		OverallRiskScore:  report.OverallRiskScore,
		HighRiskClauses:   report.Clauses,
		SimplifiedSummary: prompt.CleanText(summary),
		ProcessingTime:    s.clock().Now().Sub(start).Seconds(),
	}, nil
}

func (s *Service) AnswerQuestion(ctx context.Context, documentText, question string) (string, error) {
	return s.text(ctx, ai.Request{
		Operation: OpAnswerQuestion,
		System:    prompt.SimplifySystem(),
		User:      prompt.AnswerUser(prompt.Truncate(documentText, s.MaxContextChars), question),
	})
}

func (s *Service) AnalyzeScenario(ctx context.Context, documentText, scenario string) (string, error) {
	return s.text(ctx, ai.Request{
		Operation: OpAnalyzeScenario,
		System:    prompt.SimplifySystem(),
		User:      prompt.ScenarioUser(prompt.Truncate(documentText, s.MaxContextChars), scenario),
	})
}

func (s *Service) SuggestNegotiation(ctx context.Context, clauseText string, risk analysis.RiskLevel) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	reply, err := s.call(ctx, ai.Request{
		Operation: OpSuggestNegotiate,
		System:    prompt.NegotiateSystem(),
		User:      prompt.NegotiateUser(clauseText, string(risk)),
		JSON:      true,
	})
	if err != nil {
		return nil, upstream(err)
	}
	return prompt.DecodeList(reply), nil
}

func (s *Service) SuggestQuestions(ctx context.Context, documentText string) (Suggestions, error) {
	if err := s.ready(); err != nil {
		return Suggestions{}, err
	}
	reply, err := s.call(ctx, ai.Request{
		Operation: OpSuggestQuestions,
		System:    prompt.SuggestionsSystem(),
		User:      prompt.SuggestionsUser(prompt.Truncate(documentText, s.MaxContextChars)),
		JSON:      true,
	})
	if err != nil {
		return Suggestions{}, upstream(err)
	}
	return prompt.DecodeSuggestions(reply), nil
}

// text is a free-form on-demand call; an empty reply counts as a provider failure.
func (s *Service) text(ctx context.Context, req ai.Request) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	reply, err := s.call(ctx, req)
	if err != nil {
		return "", upstream(err)
	}
	out := prompt.CleanText(reply)
	if out == "" {
		return "", fmt.Errorf("%w: empty reply to %s", ai.ErrUpstream, req.Operation)
	}
	return out, nil
}

func (s *Service) ready() error {
	if s.Available() {
		return nil
	}
	return fmt.Errorf("%w: %s", ai.ErrUnavailable, ai.UnavailableReason(s.Model))
}

func (s *Service) call(ctx context.Context, req ai.Request) (string, error) {
	reply, err := s.Model.Complete(ctx, req)
	outcome := "ok"
	switch {
	case errors.Is(err, ai.ErrQuotaExceeded):
		outcome = "quota"
	case err != nil:
		outcome = "error"
	}
	s.metrics().LLMCall(req.Operation, outcome)
	if err != nil {
		s.log().Warn("llm call failed", "operation", req.Operation, "error", err)
	}
	return reply, err
}

// upstream keeps the ai sentinels and wraps anything else as ErrUpstream.
func upstream(err error) error {
	switch {
	case errors.Is(err, ai.ErrUnavailable), errors.Is(err, ai.ErrQuotaExceeded), errors.Is(err, ai.ErrUpstream),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("%w: %v", ai.ErrUpstream, err)
}

func (s *Service) clock() application.Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return application.SystemClock{}
}

func (s *Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Service) metrics() Recorder {
	if s.Metrics != nil {
		return s.Metrics
	}
	return nopRecorder{}
}
