package aggregator

import (
	"math"
	"sort"
	"strings"

	"supersoniq-insights/internal/types"
)

const (
	maxHighlightThemes = 8
	maxBackfillQuotes  = 3
	minQuoteWords      = 10 // backfilled quotes need more than this many words
	aiQuoteConfidence  = 0.9
)

// Build derives the view model from a completed transcript and, when an
// insights vendor was used, its parsed reply. It is pure: identical inputs
// give identical results.
func Build(tr *types.Transcript, ins *types.Insights) types.InsightResult {
	if tr == nil {
		tr = &types.Transcript{}
	}
	segments := SentimentSegments(tr.SentimentAnalysisResults)
	utterances, speakers := SpeakerSentiments(tr.Utterances, segments)
	pos, neg := SelectQuotes(ins, tr.SentimentAnalysisResults)

	res := types.InsightResult{
		SummaryBullets:    []string{},
		Takeaways:         []string{},
		Quotes:            []string{},
		FullTranscript:    tr.Text,
		Utterances:        utterances,
		Themes:            ExtractThemes(tr),
		OverallSentiment:  OverallSentiment(segments),
		SentimentSegments: segments,
		SpeakerSentiments: speakers,
		PositiveQuotes:    pos,
		NegativeQuotes:    neg,
	}
	if ins != nil {
		res.SummaryParagraph = ins.Summary
		res.SummaryBullets = append(res.SummaryBullets, ins.Bullets...)
		res.Takeaways = append(res.Takeaways, ins.KeyInsights...)
		res.Quotes = append(res.Quotes, ins.KeyQuotes...)
	}
	return res
}

// ExtractThemes deduplicates vendor entities case-insensitively, keeping the
// first spelling and timestamp. Without entities it falls back to the first
// eight vendor highlights. Order is first occurrence.
func ExtractThemes(tr *types.Transcript) []types.Theme {
	themes := []types.Theme{}
	index := map[string]int{}
	for _, e := range tr.Entities {
		key := strings.ToLower(e.Text)
		if i, ok := index[key]; ok {
			themes[i].Count++
			continue
		}
		start := e.Start
		index[key] = len(themes)
		themes = append(themes, types.Theme{Text: e.Text, Timestamp: &start, Count: 1})
	}
	if len(themes) > 0 || tr.AutoHighlightsResult == nil {
		return themes
	}

	for i, h := range tr.AutoHighlightsResult.Results {
		if i == maxHighlightThemes {
			break
		}
		t := types.Theme{Text: h.Text, Count: h.Count}
		if len(h.Timestamps) > 0 {
			start := h.Timestamps[0].Start
			t.Timestamp = &start
		}
		themes = append(themes, t)
	}
	return themes
}

// TierThemes orders themes by count (missing counts weigh 1) and splits them
// into the strongest 30%, the next 40% and the rest.
func TierThemes(themes []types.Theme) (strong, medium, weak []types.Theme) {
	sorted := append([]types.Theme(nil), themes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return weight(sorted[i]) > weight(sorted[j])
	})
	n := len(sorted)
	t1 := int(math.Ceil(float64(n) * 0.3))
	t2 := int(math.Ceil(float64(n) * 0.4))
	if t1+t2 > n {
		t2 = n - t1
	}
	return sorted[:t1], sorted[t1 : t1+t2], sorted[t1+t2:]
}

func weight(t types.Theme) int {
	if t.Count == 0 {
		return 1
	}
	return t.Count
}

// SentimentSegments normalises vendor sentiment results to upper-case labels.
func SentimentSegments(results []types.SentimentResult) []types.SentimentSegment {
	out := make([]types.SentimentSegment, 0, len(results))
	for _, r := range results {
		out = append(out, types.SentimentSegment{
			Start:     r.Start,
			End:       r.End,
			Sentiment: strings.ToUpper(r.Sentiment),
			Text:      r.Text,
		})
	}
	return out
}

// OverallSentiment is the most frequent label, MIXED when two or more labels
// share the top count, NEUTRAL when there are no segments.
func OverallSentiment(segments []types.SentimentSegment) string {
	if len(segments) == 0 {
		return types.SentimentNeutral
	}
	counts := map[string]int{}
	for _, s := range segments {
		counts[s.Sentiment]++
	}
	best, top, tied := "", 0, 0
	for label, c := range counts {
		switch {
		case c > top:
			best, top, tied = label, c, 1
		case c == top:
			tied++
		}
	}
	if tied > 1 {
		return types.SentimentMixed
	}
	return best
}
