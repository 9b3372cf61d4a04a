package transcription

import (
	"context"
	"io"

	"supersoniq-insights/internal/types"
)

// Transcribe uploads audio, submits a job with the given features and waits
// for it to finish.
func (c *Client) Transcribe(ctx context.Context, apiKey string, audio io.Reader, features types.Features) (*types.Transcript, error) {
	log := c.log
	uploadURL, err := c.Upload(ctx, apiKey, audio)
	if err != nil {
		log.WithError(err).Error("audio upload failed")
		return nil, err
	}
	log.Info("audio uploaded")

	job, err := c.Submit(ctx, apiKey, uploadURL, features)
	if err != nil {
		log.WithError(err).Error("transcription submit failed")
		return nil, err
	}
	log.WithField("job_id", job.ID).Info("transcription job submitted")

	tr, err := c.Poll(ctx, apiKey, job.ID)
	if err != nil {
		log.WithError(err).WithField("job_id", job.ID).Error("transcription did not complete")
		return nil, err
	}
	return tr, nil
}
