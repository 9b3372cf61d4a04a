package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"supersoniq-insights/internal/types"
)

const (
	fontName = "Times New Roman"
	fontSize = 12
)

// DOCX renders the same sections as Text into a Word document.
func DOCX(res *types.InsightResult) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("new document: %w", err)
	}

	styled(doc.AddParagraph(""), "Supersoniq Insights", true, 18)

	heading(doc, "Summary")
	plain(doc, res.SummaryParagraph)

	heading(doc, "Bullet Points")
	for _, b := range res.SummaryBullets {
		plain(doc, "• "+b)
	}

	heading(doc, "Key Insights")
	for i, t := range res.Takeaways {
		plain(doc, fmt.Sprintf("%d. %s", i+1, t))
	}

	if len(res.Themes) > 0 {
		heading(doc, "Themes & Topics")
		for i, t := range res.Themes {
			if i == maxExportThemes {
				break
			}
			line := "• " + t.Text
			if t.Count > 1 {
				line += fmt.Sprintf(" (mentioned %dx)", t.Count)
			}
			plain(doc, line)
		}
	}

	if res.OverallSentiment != "" {
		heading(doc, "Sentiment Analysis")
		p := doc.AddParagraph("")
		run(p, "Overall Sentiment: ").Bold(true)
		run(p, res.OverallSentiment)
		for _, s := range res.SpeakerSentiments {
			plain(doc, fmt.Sprintf("• %s: %s", s.Speaker, s.Description))
		}
	}

	quotes(doc, "Positive Quotes", quoteTexts(res.PositiveQuotes))
	quotes(doc, "Negative Quotes", quoteTexts(res.NegativeQuotes))
	quotes(doc, "Key Quotes", res.Quotes)

	heading(doc, "Full Transcript")
	if len(res.Utterances) > 0 {
		for _, u := range res.Utterances {
			p := doc.AddParagraph("")
			run(p, "["+u.Speaker+"]: ").Bold(true)
			run(p, u.Text)
		}
	} else {
		for _, para := range strings.Split(res.FullTranscript, "\n") {
			plain(doc, para)
		}
	}

	// godocx only saves to a path.
	dir, err := os.MkdirTemp("", "supersoniq-docx-")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "insights.docx")
	if err := doc.SaveTo(path); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return os.ReadFile(path)
}

func quotes(doc *docx.RootDoc, title string, qs []string) {
	if len(qs) == 0 {
		return
	}
	heading(doc, title)
	for _, q := range qs {
		plain(doc, `"`+q+`"`)
	}
}

func heading(doc *docx.RootDoc, text string) {
	styled(doc.AddParagraph(""), text, true, 14)
}

func plain(doc *docx.RootDoc, text string) {
	run(doc.AddParagraph(""), text)
}

func run(p *docx.Paragraph, text string) *docx.Run {
	return p.AddText(text).Font(fontName).Size(fontSize).Color("000000")
}

func styled(p *docx.Paragraph, text string, bold bool, size uint64) {
	r := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		r.Bold(true)
	}
}
