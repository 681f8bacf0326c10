package assistant

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var numberedListPattern = regexp.MustCompile(`\d+\.`)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// spanishDate renders a date as "02 de enero de 2026".
func spanishDate(t time.Time) string {
	return fmt.Sprintf("%02d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// formatAnswer lightly reformats generated text for chat delivery:
// collapse blank paragraphs, prefix a domain emoji based on keyword
// sniffing, and rewrite comma-separated enumerations as bullet lines
// when the text doesn't already carry a numbered list.
func formatAnswer(text string) string {
	text = strings.ReplaceAll(text, "\n\n", "\n")

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "vacaciones"):
		text = "🏖️ " + text
	case strings.Contains(lower, "licencia"):
		text = "📋 " + text
	case strings.Contains(lower, "pago"):
		text = "💰 " + text
	}

	if strings.Contains(text, ",") && !numberedListPattern.MatchString(text) {
		parts := strings.Split(text, ",")
		items := make([]string, 0, len(parts))
		for _, part := range parts {
			items = append(items, strings.TrimSpace(part))
		}
		if len(items) > 1 {
			lines := make([]string, len(items))
			for i, item := range items {
				lines[i] = "- " + item
			}
			text = strings.Join(lines, "\n")
		}
	}

	return text
}
