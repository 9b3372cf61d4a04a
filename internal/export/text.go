package export

import (
	"fmt"
	"strings"

	"supersoniq-insights/internal/types"
)

const maxExportThemes = 10

var (
	banner = strings.Repeat("=", 50)
	rule   = strings.Repeat("-", 30)
)

// Text renders the plain-text download. The layout is fixed so that files
// produced by earlier versions compare byte for byte.
func Text(res *types.InsightResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "SUPERSONIQ INSIGHTS\n%s\n\n", banner)
	section(&b, "SUMMARY", res.SummaryParagraph)
	b.WriteString("\n\n")
	section(&b, "BULLET POINTS", joinMap(res.SummaryBullets, "\n", func(i int, s string) string { return "• " + s }))
	b.WriteString("\n\n")
	section(&b, "KEY INSIGHTS", joinMap(res.Takeaways, "\n", func(i int, s string) string { return fmt.Sprintf("%d. %s", i+1, s) }))
	b.WriteString("\n")

	if len(res.Themes) > 0 {
		themes := res.Themes
		if len(themes) > maxExportThemes {
			themes = themes[:maxExportThemes]
		}
		lines := make([]string, len(themes))
		for i, t := range themes {
			lines[i] = "• " + t.Text
			if t.Count > 1 {
				lines[i] += fmt.Sprintf(" (mentioned %dx)", t.Count)
			}
		}
		b.WriteString("\n")
		section(&b, "THEMES & TOPICS", strings.Join(lines, "\n"))
		b.WriteString("\n")
	}

	if res.OverallSentiment != "" {
		b.WriteString("\n")
		section(&b, "SENTIMENT ANALYSIS", "Overall Sentiment: "+res.OverallSentiment)
		b.WriteString("\n")
		if len(res.SpeakerSentiments) > 0 {
			lines := make([]string, len(res.SpeakerSentiments))
			for i, s := range res.SpeakerSentiments {
				lines[i] = fmt.Sprintf("• %s: %s", s.Speaker, s.Description)
			}
			b.WriteString("\nSpeaker Sentiments:\n")
			b.WriteString(strings.Join(lines, "\n"))
		}
	}

	quoteSection(&b, "POSITIVE QUOTES", quoteTexts(res.PositiveQuotes), false)
	quoteSection(&b, "NEGATIVE QUOTES", quoteTexts(res.NegativeQuotes), false)
	quoteSection(&b, "KEY QUOTES", res.Quotes, true)

	b.WriteString("\n\n")
	section(&b, "FULL TRANSCRIPT", "")
	if len(res.Utterances) > 0 {
		lines := make([]string, len(res.Utterances))
		for i, u := range res.Utterances {
			lines[i] = fmt.Sprintf("[%s]: %s", u.Speaker, u.Text)
		}
		b.WriteString(strings.Join(lines, "\n\n"))
	} else {
		b.WriteString(res.FullTranscript)
	}

	fmt.Fprintf(&b, "\n\n%s\nGenerated by Supersoniq Insights\n", banner)
	return b.String()
}

func section(b *strings.Builder, title, body string) {
	fmt.Fprintf(b, "%s\n%s\n%s", title, rule, body)
}

// quoteSection writes quotes wrapped in double quotes; optional sections are
// skipped when empty.
func quoteSection(b *strings.Builder, title string, quotes []string, always bool) {
	if len(quotes) == 0 && !always {
		return
	}
	b.WriteString("\n\n")
	section(b, title, joinMap(quotes, "\n\n", func(_ int, q string) string { return `"` + q + `"` }))
	b.WriteString("\n")
}

func quoteTexts(qs []types.SentimentQuote) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.Text
	}
	return out
}

func joinMap(items []string, sep string, f func(int, string) string) string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = f(i, s)
	}
	return strings.Join(out, sep)
}
