package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/lexilens/internal/application"
	domainai "github.com/bryanwahyu/lexilens/internal/domain/ai"
	"github.com/bryanwahyu/lexilens/internal/domain/analysis"
	"github.com/bryanwahyu/lexilens/internal/logger"
	"github.com/bryanwahyu/lexilens/internal/testutil"
)

type countingRecorder struct{ calls map[string]int }

func (r *countingRecorder) LLMCall(op, outcome string) {
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[op+"/"+outcome]++
}

// clockModel advances the clock on every call so processing time is measurable.
type clockModel struct {
	*testutil.Model
	clock *application.ManualClock
}

func (m clockModel) Complete(ctx context.Context, req domainai.Request) (string, error) {
	m.clock.Advance(1500 * time.Millisecond)
	return m.Model.Complete(ctx, req)
}

func newService(m domainai.Model) *Service {
	s := NewService(m, 12000)
	s.Logger = logger.Discard()
	return s
}

func TestAnalyze_UnavailableModelDegrades(t *testing.T) {
	s := newService(domainai.Unavailable{Reason: "API key not configured"})

	res, err := s.Analyze(context.Background(), "contract text")
	require.NoError(t, err)

	assert.True(t, res.Degraded())
	assert.Equal(t, 0.5, res.OverallRiskScore)
	assert.Empty(t, res.HighRiskClauses)
	assert.NotNil(t, res.HighRiskClauses)
	assert.Equal(t, UnavailableSummary, res.SimplifiedSummary)
	assert.Zero(t, res.ProcessingTime)
	assert.Equal(t, "API key not configured", res.Error)
}

func TestAnalyze_TwoIndependentCalls(t *testing.T) {
	clock := application.NewManualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	fake := &testutil.Model{}
	rec := &countingRecorder{}
	s := newService(clockModel{Model: fake, clock: clock})
	s.Clock = clock
	s.Metrics = rec

	res, err := s.Analyze(context.Background(), "TERMINATION. Either party may terminate this agreement at any time without notice.")
	require.NoError(t, err)

	assert.False(t, res.Degraded())
	assert.InDelta(t, 0.78, res.OverallRiskScore, 1e-9)
	require.Len(t, res.HighRiskClauses, 2)
	assert.Equal(t, analysis.RiskHigh, res.HighRiskClauses[0].Risk)
	assert.Equal(t, "Summary: Either side can end the deal at any moment.", res.SimplifiedSummary)
	assert.InDelta(t, 3.0, res.ProcessingTime, 1e-9)

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, OpAnalyzeRisk, calls[0].Operation)
	assert.True(t, calls[0].JSON)
	assert.Equal(t, OpSimplify, calls[1].Operation)
	assert.False(t, calls[1].JSON)
	assert.Equal(t, 1, rec.calls["analyze_risk/ok"])
	assert.Equal(t, 1, rec.calls["simplify/ok"])
}

func TestAnalyze_MalformedRiskReplyIsNeutral(t *testing.T) {
	fake := &testutil.Model{Replies: map[string]string{OpAnalyzeRisk: "Sure! Here's my analysis: high risk overall."}}

	res, err := newService(fake).Analyze(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 0.5, res.OverallRiskScore)
	assert.Empty(t, res.HighRiskClauses)
	assert.NotEmpty(t, res.SimplifiedSummary)
}

func TestAnalyze_TransportErrorIsReturned(t *testing.T) {
	for _, op := range []string{OpAnalyzeRisk, OpSimplify} {
		t.Run(op, func(t *testing.T) {
			fake := &testutil.Model{Errors: map[string]error{op: errors.New("connection reset")}}

			_, err := newService(fake).Analyze(context.Background(), "text")
			require.Error(t, err)
			assert.ErrorContains(t, err, "connection reset")
		})
	}
}

func TestAnalyze_TruncatesDocumentText(t *testing.T) {
	fake := &testutil.Model{}
	s := newService(fake)
	s.MaxContextChars = 10

	_, err := s.Analyze(context.Background(), strings.Repeat("a", 10)+"SECRET-TAIL")
	require.NoError(t, err)
	for _, c := range fake.Calls() {
		assert.NotContains(t, c.User, "SECRET-TAIL")
	}
}

func TestOnDemand_UnavailableModel(t *testing.T) {
	s := newService(domainai.Unavailable{Reason: "bad key"})
	ctx := context.Background()

	_, err := s.AnswerQuestion(ctx, "doc", "q?")
	assert.ErrorIs(t, err, domainai.ErrUnavailable)
	_, err = s.AnalyzeScenario(ctx, "doc", "what if")
	assert.ErrorIs(t, err, domainai.ErrUnavailable)
	_, err = s.SuggestNegotiation(ctx, "clause", analysis.RiskHigh)
	assert.ErrorIs(t, err, domainai.ErrUnavailable)
	_, err = s.SuggestQuestions(ctx, "doc")
	assert.ErrorIs(t, err, domainai.ErrUnavailable)
}

func TestOnDemand_Replies(t *testing.T) {
	fake := &testutil.Model{}
	s := newService(fake)
	ctx := context.Background()

	answer, err := s.AnswerQuestion(ctx, "doc text", "Can I terminate?")
	require.NoError(t, err)
	assert.Equal(t, "The agreement can be terminated without notice.", answer)
	assert.Contains(t, fake.Calls()[0].User, "Can I terminate?")
	assert.Contains(t, fake.Calls()[0].User, "doc text")

	scenario, err := s.AnalyzeScenario(ctx, "doc text", "They end it tomorrow")
	require.NoError(t, err)
	assert.Contains(t, scenario, "no notice period")

	suggestions, err := s.SuggestNegotiation(ctx, "Either party may terminate.", analysis.RiskHigh)
	require.NoError(t, err)
	assert.Equal(t, []string{"Require 30 days written notice", "Add a cure period"}, suggestions)

	qs, err := s.SuggestQuestions(ctx, "doc text")
	require.NoError(t, err)
	assert.Equal(t, []string{"Can I terminate early?"}, qs.QA)
	assert.Equal(t, []string{"What if payment is late?"}, qs.Scenario)
}

func TestOnDemand_ErrorMapping(t *testing.T) {
	fake := &testutil.Model{Errors: map[string]error{
		OpAnswerQuestion:  errors.New("dial tcp: timeout"),
		OpAnalyzeScenario: domainai.ErrQuotaExceeded,
	}}
	s := newService(fake)

	_, err := s.AnswerQuestion(context.Background(), "doc", "q")
	assert.ErrorIs(t, err, domainai.ErrUpstream)

	_, err = s.AnalyzeScenario(context.Background(), "doc", "s")
	assert.ErrorIs(t, err, domainai.ErrQuotaExceeded)
}

func TestOnDemand_EmptyAnswerIsUpstreamError(t *testing.T) {
	fake := &testutil.Model{Replies: map[string]string{OpAnswerQuestion: "  ** ** "}}

	_, err := newService(fake).AnswerQuestion(context.Background(), "doc", "q")
	assert.ErrorIs(t, err, domainai.ErrUpstream)
}
