package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/studiojuai/studio-agent/internal/cloud"
	"github.com/studiojuai/studio-agent/internal/timeline"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusPreparing Status = "preparing"
	StatusRendering Status = "rendering"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxAttempts  = 150

	defaultClipDurationMs = 5000
)

var ErrTimeout = errors.New("generation timed out")

// Job is the client-side view of one outstanding generation request.
// Timeout marks an attempt-budget exhaustion, distinct from a backend
// reported failure.
type Job struct {
	ProjectID string `json:"project_id"`
	Status    Status `json:"status"`
	Progress  int    `json:"progress"`
	Message   string `json:"message,omitempty"`
	ResultURL string `json:"result_url,omitempty"`
	Error     string `json:"error,omitempty"`
	Model     string `json:"model,omitempty"`
	Timeout   bool   `json:"timeout,omitempty"`
}

func (j Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

func (j Job) Active() bool {
	return j.Status == StatusPreparing || j.Status == StatusRendering
}

// Params describes one generation request.
type Params struct {
	Prompt      string
	Model       string
	AspectRatio string
	Duration    int
	StylePreset string
	ImageURL    string
}

type ControllerConfig struct {
	ProjectID    string
	Client       cloud.GenerationService
	Store        *timeline.Store
	Logger       *slog.Logger
	PollInterval time.Duration
	MaxAttempts  int
}

// Controller owns the render job of one project: submission, the progress
// poll loop, and reconciliation of the terminal result into the timeline.
// At most one poll loop is alive per controller; a new Submit or a Reset
// supersedes the previous loop, and results from a superseded loop are
// discarded by an epoch check rather than applied late.
type Controller struct {
	projectID    string
	client       cloud.GenerationService
	store        *timeline.Store
	logger       *slog.Logger
	pollInterval time.Duration
	maxAttempts  int

	mu      sync.Mutex
	job     Job
	epoch   int
	lastSeq int
	cancel  context.CancelFunc
}

func NewController(cfg ControllerConfig) *Controller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{
		projectID:    cfg.ProjectID,
		client:       cfg.Client,
		store:        cfg.Store,
		logger:       cfg.Logger,
		pollInterval: cfg.PollInterval,
		maxAttempts:  cfg.MaxAttempts,
		job:          Job{ProjectID: cfg.ProjectID, Status: StatusIdle},
	}
}

// Snapshot returns a copy of the current job state.
func (c *Controller) Snapshot() Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.job
}

// Submit issues one generation request and starts the poll loop. A job
// already in flight for this project is superseded: its poller is cancelled
// before the new one starts.
func (c *Controller) Submit(ctx context.Context, params Params) error {
	c.mu.Lock()
	c.stopPollerLocked()
	c.epoch++
	epoch := c.epoch
	c.lastSeq = 0
	c.job = Job{
		ProjectID: c.projectID,
		Status:    StatusPreparing,
		Message:   "generation requested",
		Model:     params.Model,
	}
	c.mu.Unlock()

	c.logger.Info("submitting generation",
		"project_id", c.projectID,
		"model", params.Model,
		"style", params.StylePreset,
	)

	ack, err := c.client.Generate(ctx, cloud.GenerateRequest{
		ProjectID:   c.projectID,
		Prompt:      params.Prompt,
		Model:       params.Model,
		AspectRatio: params.AspectRatio,
		Duration:    params.Duration,
		StylePreset: params.StylePreset,
		ImageURL:    params.ImageURL,
	})
	if err != nil {
		c.failIfCurrent(epoch, fmt.Sprintf("generation request failed: %v", err), false)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		// Superseded while the request was in flight.
		return nil
	}

	if ack.Message != "" {
		c.job.Message = ack.Message
	}
	if ack.Progress > 0 {
		c.job.Progress = ack.Progress
	}
	if ack.Model != "" {
		c.job.Model = ack.Model
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.poll(pollCtx, epoch)
	return nil
}

// Reset returns the job to idle, cancelling any live poller first so a late
// tick cannot resurrect stale state.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopPollerLocked()
	c.epoch++
	c.lastSeq = 0
	c.job = Job{ProjectID: c.projectID, Status: StatusIdle}

	c.logger.Info("render job reset", "project_id", c.projectID)
}

func (c *Controller) poll(ctx context.Context, epoch int) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		report, err := c.client.Progress(ctx, c.projectID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Transient poll failure; the attempt budget still bounds the loop.
			c.logger.Warn("progress poll failed",
				"project_id", c.projectID,
				"attempt", attempt,
				"error", err,
			)
			continue
		}

		if done := c.apply(epoch, attempt, report); done {
			return
		}
	}

	c.failIfCurrent(epoch, fmt.Sprintf("time exceeded: no result after %d checks", c.maxAttempts), true)
}

// apply folds one poll tick into the job. It returns true when the loop
// should stop. Ticks from a superseded epoch, ticks older than the last
// applied one, and ticks arriving after a terminal state are discarded.
func (c *Controller) apply(epoch, seq int, report *cloud.ProgressReport) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return true
	}
	if c.job.Terminal() {
		return true
	}
	if seq <= c.lastSeq {
		return false
	}
	c.lastSeq = seq

	switch report.State {
	case cloud.StateCompleted:
		if report.VideoURL == "" {
			// Success without a result URL is not terminal yet.
			c.logger.Warn("completed status without video url, continuing to poll",
				"project_id", c.projectID)
			return false
		}
		c.stopPollerLocked()
		c.job.Status = StatusCompleted
		c.job.Progress = 100
		c.job.ResultURL = report.VideoURL
		c.job.Message = report.Message
		if c.job.Message == "" {
			c.job.Message = "generation complete"
		}
		c.materializeClip(report)
		c.logger.Info("generation completed",
			"project_id", c.projectID,
			"video_url", report.VideoURL,
		)
		return true

	case cloud.StateFailed:
		c.stopPollerLocked()
		c.job.Status = StatusFailed
		c.job.Error = report.Message
		if c.job.Error == "" {
			c.job.Error = "generation failed"
		}
		c.job.Message = c.job.Error
		c.logger.Warn("generation failed",
			"project_id", c.projectID,
			"error", c.job.Error,
		)
		return true

	default:
		if report.Progress > c.job.Progress {
			c.job.Progress = report.Progress
		}
		if report.Message != "" {
			c.job.Message = report.Message
		}
		if report.State == cloud.StateRendering || c.job.Progress > 0 {
			c.job.Status = StatusRendering
		}
		return false
	}
}

func (c *Controller) materializeClip(report *cloud.ProgressReport) {
	durationMs := int(report.DurationSec * 1000)
	if durationMs <= 0 {
		durationMs = defaultClipDurationMs
	}

	_, err := c.store.Add(timeline.Clip{
		Kind:      timeline.KindVideo,
		Start:     0,
		Duration:  durationMs,
		Track:     timeline.TrackVideo,
		Label:     "Generated video",
		SourceURL: report.VideoURL,
	})
	if err != nil {
		if errors.Is(err, timeline.ErrDuplicateSource) {
			c.logger.Debug("result already on the timeline", "video_url", report.VideoURL)
			return
		}
		c.logger.Error("failed to place generated clip", "error", err)
	}
}

func (c *Controller) failIfCurrent(epoch int, message string, timedOut bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch || c.job.Terminal() {
		return
	}
	c.stopPollerLocked()
	c.job.Status = StatusFailed
	c.job.Error = message
	c.job.Message = message
	c.job.Timeout = timedOut

	if timedOut {
		c.logger.Warn("generation timed out",
			"project_id", c.projectID,
			"attempts", c.maxAttempts,
		)
	}
}

func (c *Controller) stopPollerLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
