package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"supersoniq-insights/internal/aggregator"
	"supersoniq-insights/internal/types"
)

// Transcriber uploads audio and waits for the finished transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, apiKey string, audio io.Reader, features types.Features) (*types.Transcript, error)
}

// Extractor turns transcript text into structured insights.
type Extractor interface {
	Extract(ctx context.Context, provider, apiKey, transcript string) (*types.Insights, error)
}

// Keys is the read side of the key store.
type Keys interface {
	Retrieve(ctx context.Context, provider string) (string, error)
	RetrieveProvider(ctx context.Context) (string, error)
}

// Input is one uploaded audio file.
type Input struct {
	Audio    io.Reader
	Filename string
	Size     int64
}

type Pipeline struct {
	transcriber Transcriber
	extractor   Extractor
	keys        Keys
	log         *logrus.Entry
}

func New(t Transcriber, e Extractor, k Keys, log *logrus.Entry) *Pipeline {
	return &Pipeline{transcriber: t, extractor: e, keys: k, log: log.WithField("component", "pipeline")}
}

// Run executes one transcription run: validate, transcribe, optionally ask
// the selected insights vendor, then derive the view model. Any failure
// aborts the run and no partial result is returned.
func (p *Pipeline) Run(ctx context.Context, in Input) (types.InsightResult, error) {
	if in.Audio == nil {
		return types.InsightResult{}, &types.ValidationError{Field: "file", Reason: "Please upload an audio file"}
	}
	apiKey, err := p.keys.Retrieve(ctx, types.ProviderTranscription)
	if err != nil {
		return types.InsightResult{}, err
	}
	if apiKey == "" {
		return types.InsightResult{}, &types.ValidationError{Field: "key", Reason: "Please add your AssemblyAI API key first"}
	}

	provider, err := p.keys.RetrieveProvider(ctx)
	if err != nil {
		return types.InsightResult{}, err
	}
	insightsKey, err := p.keys.Retrieve(ctx, provider)
	if err != nil {
		return types.InsightResult{}, err
	}

	log := p.log.WithFields(logrus.Fields{"file": in.Filename, "size": in.Size, "provider": provider})
	start := time.Now()

	tr, err := p.transcriber.Transcribe(ctx, apiKey, in.Audio, types.DefaultFeatures())
	if err != nil {
		return types.InsightResult{}, err
	}
	log.WithFields(logrus.Fields{
		"duration_ms": time.Since(start).Milliseconds(),
		"utterances":  len(tr.Utterances),
		"entities":    len(tr.Entities),
	}).Info("transcription completed")

	var ins *types.Insights
	if insightsKey != "" {
		ins, err = p.extractor.Extract(ctx, provider, insightsKey, tr.Text)
		if err != nil {
			return types.InsightResult{}, err
		}
	} else {
		log.Info("no insights key stored; skipping insights")
	}

	res := aggregator.Build(tr, ins)
	log.WithFields(logrus.Fields{
		"duration_ms": time.Since(start).Milliseconds(),
		"sentiment":   res.OverallSentiment,
		"themes":      len(res.Themes),
	}).Info("run finished")
	return res, nil
}
