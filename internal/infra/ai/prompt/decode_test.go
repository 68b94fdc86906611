package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/lexilens/internal/domain/analysis"
)

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":       `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
		"no fence here":           "no fence here",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripCodeFence(in), in)
	}
}

func TestDecodeRisk_WellFormed(t *testing.T) {
	reply := "```json\n" + `{
  "overall_risk_score": 0.82,
  "clauses": [
    {"clause": "Either party may terminate without notice.", "risk": "high", "confidence": 0.9, "reason": "No notice period."},
    {"clause": "Payment within 30 days.", "risk": "Low", "confidence": "0.6", "reason": "Standard."}
  ]
}` + "\n```"

	r := DecodeRisk(reply)
	require.True(t, r.Decoded)
	assert.InDelta(t, 0.82, r.OverallRiskScore, 1e-9)
	require.Len(t, r.Clauses, 2)
	assert.Equal(t, analysis.RiskHigh, r.Clauses[0].Risk)
	assert.Equal(t, "Either party may terminate without notice.", r.Clauses[0].Clause)
	assert.InDelta(t, 0.6, r.Clauses[1].Confidence, 1e-9)
}

func TestDecodeRisk_MalformedFallsBackToNeutral(t *testing.T) {
	for _, reply := range []string{"", "I cannot help with that.", "{\"overall_risk_score\": ", "```json\n[1,2]\n```"} {
		r := DecodeRisk(reply)
		assert.False(t, r.Decoded, reply)
		assert.Equal(t, 0.5, r.OverallRiskScore, reply)
		assert.NotNil(t, r.Clauses, reply)
		assert.Empty(t, r.Clauses, reply)
	}
}

func TestDecodeRisk_ProseAroundObject(t *testing.T) {
	r := DecodeRisk(`Here is the analysis: {"overall_risk_score": 0.4, "clauses": []} Let me know if you need more.`)
	require.True(t, r.Decoded)
	assert.InDelta(t, 0.4, r.OverallRiskScore, 1e-9)
}

func TestDecodeRisk_ClampsAndNormalizes(t *testing.T) {
	r := DecodeRisk(`{
  "overall_risk_score": 7,
  "high_risk_clauses": [
    {"clause": "  ", "risk": "High"},
    {"clause_text": "Licensee owns all IP.", "risk_level": "HIGH", "confidence": "85%"},
    {"clause": "Disputes go to arbitration.", "risk": "severe", "confidence": -2}
  ]
}`)
	require.True(t, r.Decoded)
	assert.Equal(t, 1.0, r.OverallRiskScore)
	require.Len(t, r.Clauses, 2)
	assert.Equal(t, analysis.RiskHigh, r.Clauses[0].Risk)
	assert.InDelta(t, 0.85, r.Clauses[0].Confidence, 1e-9)
	assert.Equal(t, analysis.RiskMedium, r.Clauses[1].Risk)
	assert.Equal(t, 0.0, r.Clauses[1].Confidence)
}

func TestDecodeRisk_DecoratedRiskLabels(t *testing.T) {
	for _, label := range []string{"High Risk", "high-risk", "HIGH RISK", "Risk: high", "high_risk"} {
		r := DecodeRisk(`{"clauses": [{"clause": "Either party may terminate", "risk": "` + label + `", "confidence": 0.9}]}`)
		require.Len(t, r.Clauses, 1, label)
		assert.Equal(t, analysis.RiskHigh, r.Clauses[0].Risk, label)
	}

	r := DecodeRisk(`{"clauses": [{"clause": "Fees", "risk_level": "low risk"}, {"clause": "Venue", "risk": "Moderate-Risk"}]}`)
	require.Len(t, r.Clauses, 2)
	assert.Equal(t, analysis.RiskLow, r.Clauses[0].Risk)
	assert.Equal(t, analysis.RiskMedium, r.Clauses[1].Risk)
}

func TestDecodeRisk_MissingScoreIsNeutral(t *testing.T) {
	r := DecodeRisk(`{"clauses": [{"clause": "x", "risk": "Low", "confidence": null}]}`)
	require.True(t, r.Decoded)
	assert.Equal(t, 0.5, r.OverallRiskScore)
	assert.Equal(t, 0.5, r.Clauses[0].Confidence)
}

func TestDecodeList(t *testing.T) {
	assert.Equal(t, []string{"Add a cap", "Mutual notice"}, DecodeList(`["Add a cap", " ", "Mutual notice"]`))
	assert.Equal(t, []string{"Limit liability"}, DecodeList("```json\n{\"suggestions\": [\"**Limit** liability\"]}\n```"))
	assert.Equal(t,
		[]string{"Ask for 30 days notice", "Cap damages at fees paid", "Add a cure period"},
		DecodeList("- Ask for 30 days notice\n\n* Cap damages at fees paid\n3. Add a cure period\n"),
	)
	assert.Empty(t, DecodeList("   "))
}

func TestDecodeList_AnyArrayField(t *testing.T) {
	assert.Equal(t,
		[]string{"Cap liability", "Add notice period"},
		DecodeList(`{"negotiation_points": ["Cap liability", "Add notice period"]}`),
	)
	assert.Equal(t,
		[]string{"Prefer this"},
		DecodeList(`{"alternatives": ["Not this"], "suggestions": ["Prefer this"]}`),
	)
	assert.Equal(t,
		[]string{"Mutual indemnity"},
		DecodeList(`{"count": 1, "empty": [], "rewrites": ["Mutual indemnity"]}`),
	)
}

func TestDecodeSuggestions(t *testing.T) {
	s := DecodeSuggestions(`{"qa_suggestions": ["Can I terminate early?"], "scenario_suggestions": ["What if I pay late?", ""]}`)
	assert.Equal(t, []string{"Can I terminate early?"}, s.QA)
	assert.Equal(t, []string{"What if I pay late?"}, s.Scenario)

	empty := DecodeSuggestions("sorry")
	assert.NotNil(t, empty.QA)
	assert.NotNil(t, empty.Scenario)
	assert.Empty(t, empty.QA)
	assert.Empty(t, empty.Scenario)
}

func TestCleanText(t *testing.T) {
	tests := map[string]string{
		"  **Summary:** the *tenant* pays rent.  ":                    "Summary: the tenant pays rent.",
		"__Important__ see _clause 4_ now":                            "Important see clause 4 now",
		"keeps snake_case_names":                                      "keeps snake_case_names",
		"<p>Rent &amp; deposit</p><script>x()</script>":               "Rent & deposit",
		"fees < 5% & costs":                                           "fees < 5% & costs",
		"Payment is due if x<y and the fee is <b>waived</b>, a<b c>d": "Payment is due if x<y and the fee is waived, a<b c>d",
		"Notice<br/>period of <span class=\"x\">30 days</span>":       "Noticeperiod of 30 days",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanText(in), in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "abcdef", Truncate("abcdef", 0))
	assert.Equal(t, "héé", Truncate("hééllo", 3))
	assert.Equal(t, "short", Truncate("short", 100))
}

func TestRiskUserNamesEveryCategory(t *testing.T) {
	p := RiskUser("DOC")
	for _, c := range []string{"Termination", "Payment terms", "Liability", "Intellectual property", "Confidentiality", "Dispute resolution"} {
		assert.Contains(t, p, c)
	}
	assert.Contains(t, p, "DOC")
}
