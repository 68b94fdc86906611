package prompt

import (
	"fmt"
	"unicode/utf8"
)

const systemLegal = `You are an experienced contracts attorney who explains legal documents to non-lawyers. Be precise, quote the document when you rely on it, and never invent clauses that are not in the text.`

// RiskSystem asks for a single JSON object, no markdown.
func RiskSystem() string {
	return systemLegal + `

You must produce one valid JSON object only (no markdown, no commentary, no code fences) following this schema:
{
  "overall_risk_score": <number between 0 and 1>,
  "clauses": [
    {
      "clause": "<exact quote from the document>",
      "risk": "<High|Medium|Low>",
      "confidence": <number between 0 and 1>,
      "reason": "<why this risk level>"
    }
  ]
}`
}

// RiskUser lists the clause categories the risk report must cover.
func RiskUser(text string) string {
	return fmt.Sprintf(`Analyze the following legal document for risk. Identify clauses related to:
- Termination
- Payment terms
- Liability
- Intellectual property
- Confidentiality
- Dispute resolution

For each identified clause, provide:
- Clause text (quote directly)
- Risk level (High, Medium, Low) based on potential impact
- Confidence score (0-1)
- Reason for risk level

Also calculate an overall risk score (0-1) for the document.

Document text:
%s`, text)
}

func SimplifySystem() string { return systemLegal }

func SimplifyUser(text string) string {
	return fmt.Sprintf(`Simplify the following legal document into plain English. Focus on key obligations, rights, and risks.
Use simple language and explain any legal terms. Do not use markdown formatting.

Document text:
%s

Provide a concise simplified summary.`, text)
}

func AnswerUser(text, question string) string {
	return fmt.Sprintf(`Answer the question using only the legal document below. If the document does not address it, say so plainly.

Question: %s

Document text:
%s`, question, text)
}

func ScenarioUser(text, scenario string) string {
	return fmt.Sprintf(`Analyze this legal scenario: %q

Based on the following document content, provide actionable advice and potential risks.
Structure your response as:
- Summary of the scenario
- Potential risks
- Recommended actions
- Relevant clauses from the document

Document text:
%s`, scenario, text)
}

func NegotiateSystem() string {
	return systemLegal + `

Respond with one JSON object only: {"suggestions": ["<suggestion>", ...]}`
}

func NegotiateUser(clause, risk string) string {
	return fmt.Sprintf(`The following contract clause was rated %s risk for the party receiving this contract.
Suggest 3 to 5 concrete negotiation points or alternative wordings that would reduce that risk.

Clause:
%s`, risk, clause)
}

func SuggestionsSystem() string {
	return systemLegal + `

Respond with one JSON object only:
{"qa_suggestions": ["<question>", ...], "scenario_suggestions": ["<what-if scenario>", ...]}`
}

func SuggestionsUser(text string) string {
	return fmt.Sprintf(`Read the legal document below and propose up to 5 questions a non-lawyer would want answered about it,
and up to 5 realistic what-if scenarios worth analyzing against it.

Document text:
%s`, text)
}

// Truncate cuts s to at most max runes on a rune boundary. max <= 0 disables it.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
