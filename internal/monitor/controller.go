package monitor

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/pricewatch/pricewatch-guard/internal/detect"
	"github.com/pricewatch/pricewatch-guard/internal/models"
	"github.com/pricewatch/pricewatch-guard/internal/repo"
	"github.com/pricewatch/pricewatch-guard/internal/utils"
)

// Fetcher issues one page fetch. Implementations must honour ctx.
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string) (repo.PageResult, error)
}

// Classifier turns a raw response into a detection verdict.
type Classifier interface {
	Classify(resp detect.Response) models.DetectionResult
}

// DetectionLogger receives every classified attempt. Advisory only.
type DetectionLogger interface {
	LogDetection(det models.DetectionResult, platform, url string)
}

// Config tunes the bounded-retry state machine.
type Config struct {
	MaxAttempts        int
	BaseDelay          time.Duration
	PlatformBaseDelays map[string]time.Duration
	MaxJitter          time.Duration
	NetworkRetryDelay  time.Duration
	AttemptTimeout     time.Duration
}

func (c *Config) applyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
	if c.MaxJitter < 0 {
		c.MaxJitter = 0
	}
	if c.NetworkRetryDelay <= 0 {
		c.NetworkRetryDelay = 250 * time.Millisecond
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 30 * time.Second
	}
}

// Controller drives fetch+classify cycles for one target, backing off
// exponentially between blocked attempts. Safe for concurrent use; each
// Watch call runs an independent sequence.
type Controller struct {
	logger     *slog.Logger
	fetcher    Fetcher
	classifier Classifier
	detLog     DetectionLogger
	cfg        Config
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewController constructs a retry controller.
func NewController(logger *slog.Logger, fetcher Fetcher, classifier Classifier, detLog DetectionLogger, cfg Config) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()
	return &Controller{
		logger:     logger,
		fetcher:    fetcher,
		classifier: classifier,
		detLog:     detLog,
		cfg:        cfg,
		sleep:      sleepCtx,
	}
}

// Watch runs one bounded retry sequence for the target. Cancellation
// takes effect before the next attempt or during a backoff wait, never
// mid-fetch in a state-corrupting way (the fetch sees a child context).
func (c *Controller) Watch(ctx context.Context, target models.Target) models.WatchOutcome {
	outcome := models.WatchOutcome{
		WatchID: uuid.NewString(),
		State:   models.StateAttempting,
		Detection: models.DetectionResult{
			DetectionType: models.DetectionNone,
			Platform:      target.Platform,
		},
	}
	var lastErr error
	classified := false

	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			outcome.Err = err
			return outcome
		}
		outcome.State = models.StateAttempting
		outcome.Attempts++

		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
		page, err := c.fetcher.Fetch(attemptCtx, target.URL, target.Headers)
		cancel()

		if err != nil {
			// Timeouts and connection errors retry on a short fixed
			// delay, counted against the same attempt budget.
			outcome.NetworkFailures++
			lastErr = &utils.NetworkError{URL: target.URL, Err: err}
			c.logger.Debug("fetch attempt failed",
				slog.String("platform", target.Platform),
				slog.Int("attempt", attempt+1),
				slog.Any("error", err))
			if attempt+1 < c.cfg.MaxAttempts {
				if serr := c.sleep(ctx, c.cfg.NetworkRetryDelay); serr != nil {
					outcome.Err = serr
					return outcome
				}
			}
			continue
		}

		outcome.State = models.StateClassifying
		det := c.classifier.Classify(detect.Response{
			StatusCode: page.StatusCode,
			Body:       page.Body,
			Elapsed:    page.Elapsed,
			Platform:   target.Platform,
			Redirects:  page.Redirects,
			FinalURL:   page.FinalURL,
		})
		outcome.Detection = det
		classified = true
		if c.detLog != nil {
			c.detLog.LogDetection(det, target.Platform, target.URL)
		}

		if !det.IsBlocked {
			outcome.State = models.StateSucceeded
			outcome.Payload = page.Body
			return outcome
		}

		c.logger.Info("blocked attempt",
			slog.String("platform", target.Platform),
			slog.String("type", string(det.DetectionType)),
			slog.Int("attempt", attempt+1))

		if attempt+1 < c.cfg.MaxAttempts {
			outcome.State = models.StateBackoff
			if serr := c.sleep(ctx, c.backoffDelay(target.Platform, attempt)); serr != nil {
				outcome.Err = serr
				return outcome
			}
		}
	}

	outcome.State = models.StateExhausted
	if classified {
		outcome.Err = utils.ErrRetriesExhausted
	} else {
		outcome.Err = lastErr
	}
	return outcome
}

// backoffDelay computes base*2^attempt plus bounded random jitter. The
// base is configurable per platform.
func (c *Controller) backoffDelay(platform string, attempt int) time.Duration {
	base := c.cfg.BaseDelay
	if d, ok := c.cfg.PlatformBaseDelays[platform]; ok && d > 0 {
		base = d
	}
	delay := base << uint(attempt)
	if c.cfg.MaxJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(c.cfg.MaxJitter) + 1))
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
