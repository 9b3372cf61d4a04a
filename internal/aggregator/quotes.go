package aggregator

import (
	"sort"
	"strings"

	"supersoniq-insights/internal/types"
)

// SelectQuotes prefers the insights vendor's quotes. When either polarity
// came back empty, both lists are topped up to three from the transcription
// vendor's segments, highest confidence first, skipping segments of ten words
// or fewer.
func SelectQuotes(ins *types.Insights, results []types.SentimentResult) (pos, neg []types.SentimentQuote) {
	pos, neg = []types.SentimentQuote{}, []types.SentimentQuote{}
	if ins != nil {
		for _, q := range ins.PositiveQuotes {
			pos = append(pos, types.SentimentQuote{Text: q, Sentiment: types.SentimentPositive, Confidence: aiQuoteConfidence})
		}
		for _, q := range ins.NegativeQuotes {
			neg = append(neg, types.SentimentQuote{Text: q, Sentiment: types.SentimentNegative, Confidence: aiQuoteConfidence})
		}
	}
	if len(pos) > 0 && len(neg) > 0 {
		return pos, neg
	}

	sorted := append([]types.SentimentResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Confidence > sorted[j].Confidence })

	for _, r := range sorted {
		if len(strings.Split(r.Text, " ")) <= minQuoteWords {
			continue
		}
		label := strings.ToUpper(r.Sentiment)
		q := types.SentimentQuote{Text: r.Text, Sentiment: label, Confidence: r.Confidence}
		switch {
		case label == types.SentimentPositive && len(pos) < maxBackfillQuotes:
			pos = append(pos, q)
		case label == types.SentimentNegative && len(neg) < maxBackfillQuotes:
			neg = append(neg, q)
		}
	}
	return pos, neg
}
