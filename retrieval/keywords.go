package retrieval

import (
	"regexp"
	"strings"
)

// titleCasePhrase matches sequences of Title-Case words, e.g. "Blood Pressure"
// or "Chronic Kidney Disease". In an uploaded medical report these tend to be
// diagnoses, drug names, and organ systems.
var titleCasePhrase = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s[A-Z][a-z]+)*\b`)

const maxReportKeywords = 30

// ReportKeywords extracts salient capitalized phrases from report text.
// Phrases of 3 characters or fewer are dropped; duplicates are removed
// keeping first-occurrence order so the result is deterministic for
// identical input. At most maxReportKeywords phrases are returned.
//
// A full report is too long to embed meaningfully as a query; its salient
// phrases approximate the report's topic much better.
func ReportKeywords(text string) []string {
	matches := titleCasePhrase.FindAllString(text, -1)

	seen := make(map[string]bool, len(matches))
	keywords := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) <= 3 || seen[m] {
			continue
		}
		seen[m] = true
		keywords = append(keywords, m)
		if len(keywords) == maxReportKeywords {
			break
		}
	}
	return keywords
}

// enrichQuery replaces the query with the report's keyword summary when the
// report yields any keywords; otherwise the query is returned unchanged.
func enrichQuery(query, reportText string) string {
	if strings.TrimSpace(reportText) == "" {
		return query
	}
	keywords := ReportKeywords(reportText)
	if len(keywords) == 0 {
		return query
	}
	return strings.Join(keywords, " ")
}
