package transcription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"supersoniq-insights/internal/metrics"
	"supersoniq-insights/internal/types"
)

var errStillPending = errors.New("transcription still pending")

// Poll checks the job status until it completes or fails. The first check is
// immediate; later checks wait one poll interval each. Unless MaxAttempts or
// Timeout were set it never gives up on a job that stays queued, so callers
// that need a bound must pass a context with a deadline.
func (c *Client) Poll(ctx context.Context, apiKey, id string) (*types.Transcript, error) {
	parent := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var b backoff.BackOff = backoff.NewConstantBackOff(c.pollInterval)
	if c.maxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(c.maxAttempts-1))
	}
	b = backoff.WithContext(b, ctx)

	log := c.log.WithField("job_id", id)
	attempts := 0
	var result *types.Transcript

	op := func() error {
		attempts++
		tr, err := c.Get(ctx, apiKey, id)
		if err != nil {
			return backoff.Permanent(err)
		}
		metrics.RecordPollCheck(string(tr.Status))
		log.WithFields(logrus.Fields{"attempt": attempts, "status": tr.Status}).Debug("polling transcription")

		if !tr.Status.Terminal() {
			return fmt.Errorf("%w: %s", errStillPending, tr.Status)
		}
		if tr.Status == types.StatusError {
			return backoff.Permanent(&types.JobFailedError{JobID: id, Message: tr.Error})
		}
		result = tr
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.WithField("wait_ms", wait.Milliseconds()).Debug("transcription not ready")
	}

	var timer backoff.Timer
	if c.newTimer != nil {
		timer = c.newTimer()
	}
	err := backoff.RetryNotifyWithTimer(op, b, notify, timer)
	if err == nil {
		log.WithField("attempts", attempts).Info("transcription completed")
		return result, nil
	}

	if errors.Is(err, errStillPending) {
		return nil, &types.TimeoutError{JobID: id, Attempts: attempts}
	}
	if ctx.Err() != nil {
		if parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &types.TimeoutError{JobID: id, Attempts: attempts}
		}
		return nil, parent.Err()
	}
	return nil, err
}
