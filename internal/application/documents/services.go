package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/lexilens/internal/application"
	appai "github.com/bryanwahyu/lexilens/internal/application/ai"
	"github.com/bryanwahyu/lexilens/internal/application/tasks"
	"github.com/bryanwahyu/lexilens/internal/domain/analysis"
	domain "github.com/bryanwahyu/lexilens/internal/domain/documents"
	"github.com/bryanwahyu/lexilens/internal/domain/failures"
)

// TextExtractor is implemented by extract.Extractor.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Analyzer is implemented by the ai application service.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (appai.Result, error)
	AnswerQuestion(ctx context.Context, documentText, question string) (string, error)
	AnalyzeScenario(ctx context.Context, documentText, scenario string) (string, error)
	SuggestNegotiation(ctx context.Context, clauseText string, risk analysis.RiskLevel) ([]string, error)
	SuggestQuestions(ctx context.Context, documentText string) (appai.Suggestions, error)
}

// Recorder receives pipeline events.
type Recorder interface {
	Upload(result string)
	Analysis(outcome string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) Upload(string)                  {}
func (nopRecorder) Analysis(string, time.Duration) {}

// Service implements use-cases untuk Document: the upload pipeline and every
// read or on-demand query scoped to one owner.
type Service struct {
	Docs      domain.Repository
	Analyses  analysis.Repository
	Failures  failures.Repository
	Extractor TextExtractor
	AI        Analyzer
	Tasks     tasks.Submitter
	// Archive is optional; nil skips archiving the original upload.
	Archive   domain.ArchiveStore
	UploadDir string
	Clock     application.Clock
	Logger    *slog.Logger
	Metrics   Recorder
}

//
// ==== PIPELINE ====
//

// Command untuk upload dokumen
type IngestCommand struct {
	OwnerID  int64
	Filename string
	Title    string
	Body     io.Reader
}

type IngestResult struct {
	DocumentID int64  `json:"document_id"`
	Filename   string `json:"filename"`
	// Task finishes when the background analysis committed or failed.
	Task tasks.Handle `json:"-"`
}

// Ingest stores the upload in a temp file, extracts its text and commits the
// document row. It returns as soon as the row exists; analysis runs detached.
func (s *Service) Ingest(ctx context.Context, cmd IngestCommand) (IngestResult, error) {
	filename := filepath.Base(strings.TrimSpace(cmd.Filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return IngestResult{}, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if cmd.Body == nil {
		return IngestResult{}, fmt.Errorf("%w: file is required", domain.ErrInvalidInput)
	}

	// RECEIVED
	tmp, err := os.CreateTemp(s.UploadDir, "lexilens-upload-*"+filepath.Ext(filename))
	if err != nil {
		return IngestResult{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, err = io.Copy(tmp, cmd.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return IngestResult{}, fmt.Errorf("store upload: %w", err)
	}

	text, err := s.Extractor.Extract(ctx, tmpPath)
	if err != nil {
		s.metrics().Upload("rejected")
		s.log().Info("upload rejected", "owner_id", cmd.OwnerID, "filename", filename, "error", err)
		return IngestResult{}, fmt.Errorf("%w: %v", domain.ErrBadDocument, err)
	}

	doc := &domain.Document{
		OwnerID:    cmd.OwnerID,
		Title:      domain.DeriveTitle(cmd.Title, filename),
		Filename:   filename,
		Content:    text,
		UploadedAt: s.clock().Now(),
	}
	if s.Archive != nil {
		key, err := s.Archive.Upload(ctx, tmpPath, archiveKey(cmd.OwnerID, filename))
		if err != nil {
			s.log().Warn("archive upload failed, storing document without original", "filename", filename, "error", err)
		} else {
			doc.ArchiveKey = key
		}
	}

	// STORED
	if err := s.Docs.Create(ctx, doc); err != nil {
		s.removeArchived(doc.ArchiveKey)
		return IngestResult{}, err
	}
	s.metrics().Upload("stored")
	s.log().Info("document stored", "document_id", doc.ID, "owner_id", doc.OwnerID, "chars", len(text))

	// ANALYZING
	docID := doc.ID
	h := s.Tasks.Submit(fmt.Sprintf("analyze-document-%d", docID), func(ctx context.Context) error {
		return s.analyzeDocument(ctx, docID, text)
	})
	select {
	case <-h.Done():
		if err := h.Wait(); errors.Is(err, tasks.ErrStopped) {
			s.fail(ctx, docID, failures.PhaseAnalyze, err, s.clock().Now())
		}
	default:
	}
	return IngestResult{DocumentID: docID, Filename: filename, Task: h}, nil
}

// analyzeDocument runs in the background with its own context; it ends in
// DONE (analysis row) or FAILED (failure row, no analysis, no retry).
func (s *Service) analyzeDocument(ctx context.Context, docID int64, text string) error {
	start := s.clock().Now()
	res, err := s.AI.Analyze(ctx, text)
	if err != nil {
		s.fail(ctx, docID, failures.PhaseAnalyze, err, start)
		return fmt.Errorf("analyze document %d: %w", docID, err)
	}

	a := &analysis.Analysis{
		DocumentID:        docID,
		OverallRiskScore:  analysis.ClampScore(res.OverallRiskScore),
		HighRiskClauses:   res.HighRiskClauses,
		SimplifiedSummary: res.SimplifiedSummary,
		ProcessingTime:    res.ProcessingTime,
		CreatedAt:         s.clock().Now(),
	}
	if err := s.Analyses.Create(ctx, a); err != nil {
		s.fail(ctx, docID, failures.PhasePersist, err, start)
		return fmt.Errorf("store analysis of document %d: %w", docID, err)
	}

	outcome := "done"
	if res.Degraded() {
		outcome = "degraded"
	}
	s.metrics().Analysis(outcome, s.clock().Now().Sub(start))
	s.log().Info("analysis stored", "document_id", docID, "analysis_id", a.ID,
		"outcome", outcome, "risk_score", a.OverallRiskScore, "clauses", len(a.HighRiskClauses))
	return nil
}

func (s *Service) fail(ctx context.Context, docID int64, phase string, cause error, start time.Time) {
	s.metrics().Analysis("failed", s.clock().Now().Sub(start))
	s.log().Error("analysis failed", "document_id", docID, "phase", phase, "error", cause)

	details, _ := json.Marshal(map[string]string{"error": cause.Error()})
	f := &failures.Failure{
		DocumentID:  docID,
		Phase:       phase,
		Message:     "analysis failed",
		DetailsJSON: string(details),
		CreatedAt:   s.clock().Now(),
	}
	if err := s.Failures.Save(ctx, f); err != nil {
		s.log().Warn("could not record analysis failure", "document_id", docID, "error", err)
	}
}

//
// ==== QUERIES ====
//

// Analysis states reported on a DocumentView.
const (
	StatusPending = "pending"
	StatusFailed  = "failed"
	StatusDone    = "done"
)

// DocumentView is a document with its latest analysis, nil when none exists yet.
// AnalysisStatus tells a running analysis (pending) from one that ended
// without a result (failed).
type DocumentView struct {
	ID             int64              `json:"id"`
	Title          string             `json:"title"`
	Filename       string             `json:"filename"`
	Content        string             `json:"content"`
	UploadedAt     time.Time          `json:"uploaded_at"`
	Analysis       *analysis.Analysis `json:"analysis"`
	AnalysisStatus string             `json:"analysis_status"`
}

func (s *Service) List(ctx context.Context, ownerID int64) ([]*domain.Summary, error) {
	return s.Docs.ListByOwner(ctx, ownerID)
}

func (s *Service) Get(ctx context.Context, ownerID, id int64) (*DocumentView, error) {
	doc, err := s.Docs.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	view := &DocumentView{
		ID:         doc.ID,
		Title:      doc.Title,
		Filename:   doc.Filename,
		Content:    doc.Content,
		UploadedAt: doc.UploadedAt,
	}
	latest, err := s.Analyses.Latest(ctx, doc.ID)
	switch {
	case err == nil:
		view.Analysis = latest
		view.AnalysisStatus = StatusDone
	case errors.Is(err, analysis.ErrNotFound):
		failed, err := s.Failures.ListByDocument(ctx, doc.ID, 1)
		if err != nil {
			return nil, err
		}
		view.AnalysisStatus = StatusPending
		if len(failed) > 0 {
			view.AnalysisStatus = StatusFailed
		}
	default:
		return nil, err
	}
	return view, nil
}

// History returns every analysis of the document, newest first.
func (s *Service) History(ctx context.Context, ownerID, id int64) ([]*analysis.Analysis, error) {
	if _, err := s.Docs.Get(ctx, id, ownerID); err != nil {
		return nil, err
	}
	return s.Analyses.ListByDocument(ctx, id)
}

// Delete removes the document with its analyses; a second delete is ErrNotFound.
func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	doc, err := s.Docs.Get(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if err := s.Docs.Delete(ctx, id, ownerID); err != nil {
		return err
	}
	s.removeArchived(doc.ArchiveKey)
	s.log().Info("document deleted", "document_id", id, "owner_id", ownerID)
	return nil
}

func (s *Service) Ask(ctx context.Context, ownerID, id int64, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	doc, err := s.Docs.Get(ctx, id, ownerID)
	if err != nil {
		return "", err
	}
	return s.AI.AnswerQuestion(ctx, doc.Content, question)
}

func (s *Service) Scenario(ctx context.Context, ownerID, id int64, scenario string) (string, error) {
	scenario = strings.TrimSpace(scenario)
	if scenario == "" {
		return "", fmt.Errorf("%w: scenario_text is required", domain.ErrInvalidInput)
	}
	doc, err := s.Docs.Get(ctx, id, ownerID)
	if err != nil {
		return "", err
	}
	return s.AI.AnalyzeScenario(ctx, doc.Content, scenario)
}

func (s *Service) Suggestions(ctx context.Context, ownerID, id int64) (appai.Suggestions, error) {
	doc, err := s.Docs.Get(ctx, id, ownerID)
	if err != nil {
		return appai.Suggestions{}, err
	}
	return s.AI.SuggestQuestions(ctx, doc.Content)
}

// Negotiate is not tied to a stored document; risk must be Low, Medium or High.
func (s *Service) Negotiate(ctx context.Context, clause, risk string) ([]string, error) {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return nil, fmt.Errorf("%w: clause_text is required", domain.ErrInvalidInput)
	}
	level, ok := analysis.ParseRiskLevel(risk)
	if !ok {
		return nil, fmt.Errorf("%w: risk_level must be Low, Medium or High", domain.ErrInvalidInput)
	}
	return s.AI.SuggestNegotiation(ctx, clause, level)
}

// helper

func archiveKey(ownerID int64, filename string) string {
	return fmt.Sprintf("%d/%s-%s", ownerID, uuid.NewString(), filename)
}

// removeArchived is best-effort and detached from the request context.
func (s *Service) removeArchived(key string) {
	if s.Archive == nil || key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Archive.Remove(ctx, key); err != nil {
		s.log().Warn("archive remove failed", "key", key, "error", err)
	}
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
