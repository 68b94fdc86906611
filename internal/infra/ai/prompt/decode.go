package prompt

import (
	"encoding/json"
	"errors"
	"html"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"

	"github.com/bryanwahyu/lexilens/internal/domain/analysis"
)

// NeutralRiskScore is used whenever the model gives no usable score.
const NeutralRiskScore = 0.5

var (
	fenceRe      = regexp.MustCompile("(?s)^```[a-zA-Z0-9_-]*\\s*\n?(.*?)\\s*```$")
	boldRe       = regexp.MustCompile(`\*{1,2}`)
	underlineRe  = regexp.MustCompile(`__`)
	italicUndRe  = regexp.MustCompile(`(^|[^\w])_([^_\n]+)_([^\w]|$)`)
	bulletRe     = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)
	tagRe        = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(?:\s+[a-zA-Z-]+\s*=\s*(?:"[^"]*"|'[^']*'|[^\s"'<>]+))*\s*/?>`)
	scriptRe     = regexp.MustCompile(`(?is)<(?:script|style)\b[^>]*>.*?</(?:script|style)\s*>`)
	stripHTML    = bluemonday.StrictPolicy()
	errNoJSONObj = errors.New("no json object in reply")
)

// StripCodeFence removes a surrounding ``` or ```json fence.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// DecodeJSON unmarshals a model reply into v. It strips code fences and, if the
// reply still does not parse, retries on the span between the first '{' and the last '}'.
func DecodeJSON(reply string, v any) error {
	s := StripCodeFence(reply)
	err := json.Unmarshal([]byte(s), v)
	if err == nil {
		return nil
	}
	start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return errors.Join(err, errNoJSONObj)
	}
	return json.Unmarshal([]byte(s[start:end+1]), v)
}

// RiskReport is the decoded risk-analysis reply.
type RiskReport struct {
	OverallRiskScore float64
	Clauses          []analysis.ClauseFinding
	// Decoded is false when the reply was unusable and the neutral fallback was returned.
	Decoded bool
}

// flexFloat accepts 0.7, "0.7" and "70%".
type flexFloat struct {
	v  float64
	ok bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.v, f.ok = n, true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	pct := strings.HasSuffix(s, "%")
	n, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return nil
	}
	if pct {
		n /= 100
	}
	f.v, f.ok = n, true
	return nil
}

type rawClause struct {
	Clause     string    `json:"clause"`
	Text       string    `json:"clause_text"`
	Risk       string    `json:"risk"`
	RiskLevel  string    `json:"risk_level"`
	Confidence flexFloat `json:"confidence"`
	Reason     string    `json:"reason"`
}

type rawRisk struct {
	Score           flexFloat   `json:"overall_risk_score"`
	Clauses         []rawClause `json:"clauses"`
	HighRiskClauses []rawClause `json:"high_risk_clauses"`
}

// DecodeRisk never fails: an unusable reply yields {0.5, []}.
// Scores are clamped to 0..1, clauses without text are dropped and an
// unrecognized risk level is recorded as Medium.
func DecodeRisk(reply string) RiskReport {
	var raw rawRisk
	if err := DecodeJSON(reply, &raw); err != nil {
		return RiskReport{OverallRiskScore: NeutralRiskScore, Clauses: []analysis.ClauseFinding{}}
	}

	out := RiskReport{OverallRiskScore: NeutralRiskScore, Clauses: []analysis.ClauseFinding{}, Decoded: true}
	if raw.Score.ok {
		out.OverallRiskScore = analysis.ClampScore(raw.Score.v)
	}
	clauses := raw.Clauses
	if len(clauses) == 0 {
		clauses = raw.HighRiskClauses
	}
	for _, c := range clauses {
		text := strings.TrimSpace(c.Clause)
		if text == "" {
			text = strings.TrimSpace(c.Text)
		}
		if text == "" {
			continue
		}
		level, ok := riskLabel(c.Risk)
		if !ok {
			level, ok = riskLabel(c.RiskLevel)
		}
		if !ok {
			level = analysis.RiskMedium
		}
		conf := NeutralRiskScore
		if c.Confidence.ok {
			conf = analysis.ClampScore(c.Confidence.v)
		}
		out.Clauses = append(out.Clauses, analysis.ClauseFinding{
			Clause:     text,
			Risk:       level,
			Confidence: conf,
			Reason:     strings.TrimSpace(c.Reason),
		})
	}
	return out
}

// riskLabel also reads labels the model decorates, such as "High Risk",
// "high-risk" or "Risk: HIGH".
func riskLabel(s string) (analysis.RiskLevel, bool) {
	if level, ok := analysis.ParseRiskLevel(s); ok {
		return level, true
	}
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return !unicode.IsLetter(r) })
	for _, w := range words {
		if w == "risk" || w == "level" {
			continue
		}
		return analysis.ParseRiskLevel(w)
	}
	return "", false
}

// DecodeList reads a JSON array of strings, or an object holding one: the
// "suggestions" key first, then the first other key (by name) with a non-empty
// string array. Otherwise every non-empty line of the reply, minus bullet
// markers, is an item.
func DecodeList(reply string) []string {
	s := StripCodeFence(reply)

	var arr []string
	if err := json.Unmarshal([]byte(s), &arr); err == nil {
		return compact(arr)
	}
	var obj map[string]json.RawMessage
	if err := DecodeJSON(s, &obj); err == nil {
		keys := slices.Sorted(maps.Keys(obj))
		if i := slices.Index(keys, "suggestions"); i > 0 {
			keys = append([]string{"suggestions"}, slices.Delete(keys, i, i+1)...)
		}
		for _, k := range keys {
			var items []string
			if json.Unmarshal(obj[k], &items) != nil {
				continue
			}
			if items = compact(items); len(items) > 0 {
				return items
			}
		}
	}

	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		line = CleanText(bulletRe.ReplaceAllString(line, ""))
		if line != "" && line != "{" && line != "}" && line != "[" && line != "]" {
			out = append(out, line)
		}
	}
	return out
}

// Suggestions are follow-up prompts offered to the user for one document.
type Suggestions struct {
	QA       []string `json:"qa_suggestions"`
	Scenario []string `json:"scenario_suggestions"`
}

// DecodeSuggestions falls back to two empty lists.
func DecodeSuggestions(reply string) Suggestions {
	var s Suggestions
	if err := DecodeJSON(reply, &s); err != nil {
		return Suggestions{QA: []string{}, Scenario: []string{}}
	}
	return Suggestions{QA: compact(s.QA), Scenario: compact(s.Scenario)}
}

// CleanText trims the reply and removes markdown emphasis. HTML is stripped
// tag by tag, so a bare '<' in prose ("x<y") is left alone.
func CleanText(s string) string {
	s = boldRe.ReplaceAllString(s, "")
	s = underlineRe.ReplaceAllString(s, "")
	s = italicUndRe.ReplaceAllString(s, "$1$2$3")
	if tagRe.MatchString(s) {
		s = scriptRe.ReplaceAllString(s, "")
		s = tagRe.ReplaceAllStringFunc(s, stripHTML.Sanitize)
	}
	return strings.TrimSpace(html.UnescapeString(s))
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = CleanText(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
