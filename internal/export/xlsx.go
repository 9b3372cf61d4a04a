package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"supersoniq-insights/internal/types"
)

const (
	sheetSummary    = "Summary"
	sheetThemes     = "Themes"
	sheetSpeakers   = "Speakers"
	sheetQuotes     = "Quotes"
	sheetTranscript = "Transcript"
)

// XLSX renders the result as a workbook with one sheet per section.
func XLSX(res *types.InsightResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{sheetThemes, sheetSpeakers, sheetQuotes, sheetTranscript} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", name, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("style: %w", err)
	}

	w := &sheetWriter{f: f, bold: bold}

	w.row(sheetSummary, true, "Section", "Text")
	w.row(sheetSummary, false, "Summary", res.SummaryParagraph)
	w.row(sheetSummary, false, "Overall Sentiment", res.OverallSentiment)
	for _, b := range res.SummaryBullets {
		w.row(sheetSummary, false, "Bullet", b)
	}
	for _, t := range res.Takeaways {
		w.row(sheetSummary, false, "Key Insight", t)
	}

	w.row(sheetThemes, true, "Theme", "Mentions", "First Mention (ms)")
	for _, t := range res.Themes {
		var ts interface{}
		if t.Timestamp != nil {
			ts = *t.Timestamp
		}
		w.row(sheetThemes, false, t.Text, t.Count, ts)
	}

	w.row(sheetSpeakers, true, "Speaker", "Sentiment", "Percentage", "Description")
	for _, s := range res.SpeakerSentiments {
		w.row(sheetSpeakers, false, s.Speaker, s.PredominantSentiment, s.Percentage, s.Description)
	}

	w.row(sheetQuotes, true, "Type", "Quote", "Confidence")
	for _, q := range res.PositiveQuotes {
		w.row(sheetQuotes, false, "Positive", q.Text, q.Confidence)
	}
	for _, q := range res.NegativeQuotes {
		w.row(sheetQuotes, false, "Negative", q.Text, q.Confidence)
	}
	for _, q := range res.Quotes {
		w.row(sheetQuotes, false, "Key", q, nil)
	}

	w.row(sheetTranscript, true, "Speaker", "Start (ms)", "End (ms)", "Sentiment", "Text")
	if len(res.Utterances) == 0 {
		w.row(sheetTranscript, false, "", nil, nil, "", res.FullTranscript)
	}
	for _, u := range res.Utterances {
		w.row(sheetTranscript, false, u.Speaker, u.Start, u.End, u.Sentiment, u.Text)
	}
	if w.err != nil {
		return nil, w.err
	}

	for sheet, width := range map[string]float64{sheetSummary: 80, sheetQuotes: 80, sheetTranscript: 80, sheetThemes: 30} {
		col := "B"
		if sheet == sheetTranscript {
			col = "E"
		} else if sheet == sheetThemes {
			col = "A"
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter appends rows per sheet and keeps the first error.
type sheetWriter struct {
	f    *excelize.File
	bold int
	next map[string]int
	err  error
}

func (w *sheetWriter) row(sheet string, header bool, values ...interface{}) {
	if w.err != nil {
		return
	}
	if w.next == nil {
		w.next = map[string]int{}
	}
	w.next[sheet]++
	n := w.next[sheet]
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		w.err = fmt.Errorf("write %s row %d: %w", sheet, n, err)
		return
	}
	if header {
		last, _ := excelize.CoordinatesToCellName(len(values), n)
		if err := w.f.SetCellStyle(sheet, cell, last, w.bold); err != nil {
			w.err = fmt.Errorf("style %s header: %w", sheet, err)
		}
	}
}
