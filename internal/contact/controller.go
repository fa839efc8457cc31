package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/designa/internal/apperr"
	"github.com/starford/designa/internal/models"
)

// Status of the form lifecycle.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Default timings.
const (
	DefaultSuccessTTL      = 5 * time.Minute
	DefaultErrorResetDelay = 3 * time.Second
)

// SubmissionLog records delivery attempts.
type SubmissionLog interface {
	RecordSubmission(ctx context.Context, s models.Submission) error
}

// State is a snapshot of the controller.
type State struct {
	Status   Status            `json:"status"`
	Message  string            `json:"message,omitempty"`
	Category string            `json:"category,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Form     Form              `json:"form"`
}

// Options configures a Controller. Sender is required.
type Options struct {
	VisitorID       string
	Rules           Rules
	Credentials     Credentials
	Sender          Sender
	Markers         MarkerStore
	Log             SubmissionLog
	SuccessTTL      time.Duration
	ErrorResetDelay time.Duration
	Logger          *slog.Logger
	Now             func() time.Time
	NewID           func() string
}

// Controller runs one visitor's contact form. It is safe for concurrent use;
// a second Submit while one is in flight is rejected with apperr.ErrBusy.
type Controller struct {
	opts Options

	mu       sync.Mutex
	status   Status
	form     Form
	message  string
	category string
	fields   map[string]string
	gen      uint64
	timer    *time.Timer
}

// NewController creates an idle controller.
func NewController(opts Options) *Controller {
	if opts.Rules == (Rules{}) {
		opts.Rules = DefaultRules()
	}
	if opts.SuccessTTL <= 0 {
		opts.SuccessTTL = DefaultSuccessTTL
	}
	if opts.ErrorResetDelay <= 0 {
		opts.ErrorResetDelay = DefaultErrorResetDelay
	}
	if opts.Markers == nil {
		opts.Markers = NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{opts: opts, status: StatusIdle}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Submit validates f and delivers it. The returned State is the outcome;
// the error classifies failures with apperr sentinels.
func (c *Controller) Submit(ctx context.Context, f Form) (State, error) {
	c.mu.Lock()
	if c.status == StatusLoading {
		st := c.stateLocked()
		c.mu.Unlock()
		return st, fmt.Errorf("contact: submission in flight: %w", apperr.ErrBusy)
	}
	c.resetLocked()

	f = f.Normalize()
	c.form = f

	if err := f.Validate(c.opts.Rules); err != nil {
		fields, msg := fieldMessages(err)
		c.failLocked(CategoryValidation, msg, fields)
		st := c.stateLocked()
		c.mu.Unlock()
		return st, fmt.Errorf("contact: %w: %w", apperr.ErrValidation, err)
	}

	if missing := c.opts.Credentials.Missing(); len(missing) > 0 {
		msg := "Email service configuration is incomplete. Missing: " + strings.Join(missing, ", ")
		c.failLocked(CategoryConfiguration, msg, nil)
		st := c.stateLocked()
		c.mu.Unlock()
		c.opts.Logger.Error("contact: email credentials missing", slog.Any("missing", missing))
		return st, fmt.Errorf("contact: %s: %w", msg, apperr.ErrConfiguration)
	}

	c.status = StatusLoading
	c.mu.Unlock()

	now := c.opts.Now()
	status, sendErr := c.opts.Sender.Send(ctx, Message{
		Name:    f.Name,
		Email:   f.Email,
		Message: f.Message,
		SentAt:  now,
	})
	delivered := sendErr == nil && status == 200

	if delivered {
		if err := c.opts.Markers.PutMarker(ctx, c.opts.VisitorID, now, c.opts.SuccessTTL); err != nil {
			c.opts.Logger.Warn("contact: store success marker", slog.String("visitor", c.opts.VisitorID), slog.String("error", err.Error()))
		}
	}
	c.record(ctx, f, now, status, sendErr, delivered)

	c.mu.Lock()
	defer c.mu.Unlock()

	if delivered {
		c.status = StatusSuccess
		c.form = Form{}
		c.opts.Logger.Info("contact: message delivered", slog.String("visitor", c.opts.VisitorID))
		return c.stateLocked(), nil
	}

	category, msg := Classify(status, sendErr)
	c.failLocked(category, msg, nil)
	cause := sendErr
	if cause == nil {
		cause = fmt.Errorf("status %d", status)
	}
	c.opts.Logger.Warn("contact: delivery failed",
		slog.String("visitor", c.opts.VisitorID),
		slog.Int("status", status),
		slog.String("category", category),
		slog.String("error", cause.Error()))
	return c.stateLocked(), fmt.Errorf("contact: %w: %w", apperr.ErrDelivery, cause)
}

// Reset returns to idle from success or error. It has no effect while a
// submission is in flight.
func (c *Controller) Reset() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusLoading {
		c.resetLocked()
	}
	return c.stateLocked()
}

// Restore enters success when the visitor submitted successfully within
// the success TTL, so a reload keeps showing the confirmation.
func (c *Controller) Restore(ctx context.Context) State {
	c.mu.Lock()
	idle := c.status == StatusIdle
	c.mu.Unlock()
	if !idle {
		return c.State()
	}

	ok, err := c.opts.Markers.ValidMarker(ctx, c.opts.VisitorID, c.opts.Now())
	if err != nil {
		c.opts.Logger.Warn("contact: read success marker", slog.String("visitor", c.opts.VisitorID), slog.String("error", err.Error()))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ok && c.status == StatusIdle {
		c.status = StatusSuccess
	}
	return c.stateLocked()
}

// Close stops the pending auto-reset timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
}

func (c *Controller) record(ctx context.Context, f Form, at time.Time, status int, sendErr error, delivered bool) {
	if c.opts.Log == nil {
		return
	}
	s := models.Submission{
		VisitorID: c.opts.VisitorID,
		Name:      f.Name,
		Email:     f.Email,
		Message:   f.Message,
		Status:    models.SubmissionSuccess,
		CreatedAt: at,
	}
	if c.opts.NewID != nil {
		s.ID = c.opts.NewID()
	}
	if !delivered {
		s.Status = models.SubmissionError
		if sendErr != nil {
			s.Error = sendErr.Error()
		} else {
			s.Error = fmt.Sprintf("status %d", status)
		}
	}
	if err := c.opts.Log.RecordSubmission(ctx, s); err != nil {
		c.opts.Logger.Warn("contact: record submission", slog.String("error", err.Error()))
	}
}

func (c *Controller) failLocked(category, msg string, fields map[string]string) {
	c.status = StatusError
	c.category = category
	c.message = msg
	c.fields = fields

	c.gen++
	gen := c.gen
	c.stopTimerLocked()
	c.timer = time.AfterFunc(c.opts.ErrorResetDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen == gen && c.status == StatusError {
			c.resetLocked()
		}
	})
}

func (c *Controller) resetLocked() {
	c.stopTimerLocked()
	c.status = StatusIdle
	c.message = ""
	c.category = ""
	c.fields = nil
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) stateLocked() State {
	st := State{
		Status:   c.status,
		Message:  c.message,
		Category: c.category,
		Form:     c.form,
	}
	if len(c.fields) > 0 {
		st.Fields = make(map[string]string, len(c.fields))
		for k, v := range c.fields {
			st.Fields[k] = v
		}
	}
	return st
}
