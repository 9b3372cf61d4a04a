package aggregator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"supersoniq-insights/internal/types"
)

// SpeakerSentiments attributes to each utterance the first sentiment segment
// lying entirely inside it, then summarises each speaker's labels. Both inputs
// are chronological, so one merge pass over start-sorted copies finds every
// match. The returned utterances carry their matched label; speakers appear in
// order of first utterance and speakers with no matched segment are omitted.
func SpeakerSentiments(utterances []types.Utterance, segments []types.SentimentSegment) ([]types.Utterance, []types.SpeakerSentiment) {
	labels := matchSegments(utterances, segments)

	out := make([]types.Utterance, len(utterances))
	order := []string{}
	perSpeaker := map[string][]string{}
	for i, u := range utterances {
		out[i] = u
		if _, seen := perSpeaker[u.Speaker]; !seen {
			order = append(order, u.Speaker)
			perSpeaker[u.Speaker] = nil
		}
		if labels[i] != "" {
			out[i].Sentiment = labels[i]
			perSpeaker[u.Speaker] = append(perSpeaker[u.Speaker], labels[i])
		}
	}

	speakers := []types.SpeakerSentiment{}
	for _, sp := range order {
		if s, ok := summarise(sp, perSpeaker[sp]); ok {
			speakers = append(speakers, s)
		}
	}
	return out, speakers
}

// matchSegments returns, per utterance index, the label of the earliest
// segment with start >= utterance start and end <= utterance end.
func matchSegments(utterances []types.Utterance, segments []types.SentimentSegment) []string {
	labels := make([]string, len(utterances))
	if len(segments) == 0 {
		return labels
	}

	segs := append([]types.SentimentSegment(nil), segments...)
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })

	idx := make([]int, len(utterances))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return utterances[idx[a]].Start < utterances[idx[b]].Start })

	j := 0
	for _, ui := range idx {
		u := utterances[ui]
		for j < len(segs) && segs[j].Start < u.Start {
			j++
		}
		if j == len(segs) {
			break
		}
		for k := j; k < len(segs) && segs[k].Start <= u.End; k++ {
			if segs[k].End <= u.End {
				labels[ui] = segs[k].Sentiment
				break
			}
		}
	}
	return labels
}

func summarise(speaker string, labels []string) (types.SpeakerSentiment, bool) {
	if len(labels) == 0 {
		return types.SpeakerSentiment{}, false
	}
	counts := map[string]int{}
	var firstSeen []string
	for _, l := range labels {
		if counts[l] == 0 {
			firstSeen = append(firstSeen, l)
		}
		counts[l]++
	}
	// On a tie the label seen last wins.
	predominant := firstSeen[0]
	for _, l := range firstSeen[1:] {
		if counts[l] >= counts[predominant] {
			predominant = l
		}
	}

	pct := int(math.Round(float64(counts[predominant]) / float64(len(labels)) * 100))
	return types.SpeakerSentiment{
		Speaker:              speaker,
		PredominantSentiment: predominant,
		Percentage:           pct,
		Description:          Describe(predominant, pct),
	}, true
}

// Describe renders a speaker's dominant label and its share.
func Describe(label string, pct int) string {
	l := strings.ToLower(label)
	switch {
	case pct > 80:
		return "Mostly " + l
	case pct > 60:
		return "Predominantly " + l
	default:
		return fmt.Sprintf("Mixed (%d%% %s)", pct, l)
	}
}
