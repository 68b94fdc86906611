package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	appdocs "github.com/bryanwahyu/lexilens/internal/application/documents"
	"github.com/bryanwahyu/lexilens/internal/middleware"
)

const (
	maxQuestionRunes = 2000
	maxScenarioRunes = 8000
	maxClauseRunes   = 8000
	maxJSONBody      = 1 << 20
	multipartMemory  = 8 << 20
)

// POST /analyze  multipart: file, title (optional)
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	owner := ownerID(req)
	if max := r.d.Upload.MaxBytes; max > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, max)
	}
	if err := req.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: expected multipart form with a file field", middleware.ErrInvalid)
	}
	defer req.MultipartForm.RemoveAll()

	file, header, err := req.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: file is required", middleware.ErrInvalid)
	}
	defer file.Close()

	filename, err := middleware.CleanFilename(header.Filename)
	if err != nil {
		return err
	}

	res, err := r.d.Documents.Ingest(req.Context(), appdocs.IngestCommand{
		OwnerID:  owner,
		Filename: filename,
		Title:    middleware.SanitizeString(req.FormValue("title")),
		Body:     file,
	})
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"message":     "Document uploaded. Analysis is running in the background.",
		"document_id": res.DocumentID,
		"filename":    res.Filename,
	})
}

// GET /user/documents
func (r *Router) handleListDocuments(w http.ResponseWriter, req *http.Request) error {
	list, err := r.d.Documents.List(req.Context(), ownerID(req))
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, list)
}

// GET /documents/{id}
func (r *Router) handleGetDocument(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.ParseID(chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	view, err := r.d.Documents.Get(req.Context(), ownerID(req), id)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, view)
}

// GET /documents/{id}/analyses
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.ParseID(chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	list, err := r.d.Documents.History(req.Context(), ownerID(req), id)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, list)
}

// DELETE /documents/{id}
func (r *Router) handleDeleteDocument(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.ParseID(chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	if err := r.d.Documents.Delete(req.Context(), ownerID(req), id); err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
}

// POST /document/{id}/query  {"question": "..."}
func (r *Router) handleQuery(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.ParseID(chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	var body struct {
		Question string `json:"question"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	question, err := middleware.RequireText("question", body.Question, maxQuestionRunes)
	if err != nil {
		return err
	}

	answer, err := r.d.Documents.Ask(req.Context(), ownerID(req), id, question)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"question":    question,
		"answer":      answer,
		"document_id": id,
	})
}

// POST /scenario/{id}  {"scenario_text": "..."}
func (r *Router) handleScenario(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.ParseID(chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	var body struct {
		ScenarioText string `json:"scenario_text"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	scenario, err := middleware.RequireText("scenario_text", body.ScenarioText, maxScenarioRunes)
	if err != nil {
		return err
	}

	out, err := r.d.Documents.Scenario(req.Context(), ownerID(req), id, scenario)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"scenario": scenario,
		"analysis": out,
	})
}

// POST /negotiate-clause  {"clause_text": "...", "risk_level": "High"}
func (r *Router) handleNegotiate(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ClauseText string `json:"clause_text"`
		RiskLevel  string `json:"risk_level"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	clause, err := middleware.RequireText("clause_text", body.ClauseText, maxClauseRunes)
	if err != nil {
		return err
	}

	suggestions, err := r.d.Documents.Negotiate(req.Context(), clause, body.RiskLevel)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"original_clause": clause,
		"suggestions":     suggestions,
	})
}

// GET /documents/{id}/suggestions
func (r *Router) handleSuggestions(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.ParseID(chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	s, err := r.d.Documents.Suggestions(req.Context(), ownerID(req), id)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, s)
}

// helper

func ownerID(req *http.Request) int64 {
	id, _ := middleware.UserIDFromContext(req.Context())
	return id
}

func decodeJSON(w http.ResponseWriter, req *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", middleware.ErrInvalid)
		}
		return fmt.Errorf("%w: malformed JSON body", middleware.ErrInvalid)
	}
	return nil
}
