// Package session tracks how a trainee performs during one evacuation drill:
// when they first found the extinguisher, put the fire out, raised the alarm
// and reached an exit. Reaching an exit ends the drill and sends one report.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a drill milestone.
type Event string

const (
	EventExtinguisherFound Event = "extinguisher_found"
	EventFireExtinguished  Event = "fire_extinguished"
	EventAlarmTriggered    Event = "alarm_triggered"
	EventExitReached       Event = "exit_reached"
)

var events = []Event{EventExtinguisherFound, EventFireExtinguished, EventAlarmTriggered, EventExitReached}

// ErrAlreadyReported is returned by ReachExit after the drill has been
// reported.
var ErrAlreadyReported = errors.New("session already reported")

// Profile identifies the trainee and the drill.
type Profile struct {
	Email      string `json:"email" yaml:"email"`
	Age        string `json:"age" yaml:"age"`
	SceneType  string `json:"sceneType" yaml:"scene_type"`
	Difficulty string `json:"difficulty" yaml:"difficulty"`
}

// DefaultProfile is used for fields a caller leaves blank.
func DefaultProfile() Profile {
	return Profile{
		Email:      "unknown@example.com",
		Age:        "69",
		SceneType:  "Default-scene",
		Difficulty: "Easy",
	}
}

func (p Profile) withDefaults() Profile {
	def := DefaultProfile()
	if p.Email == "" {
		p.Email = def.Email
	}
	if p.Age == "" {
		p.Age = def.Age
	}
	if p.SceneType == "" {
		p.SceneType = def.SceneType
	}
	if p.Difficulty == "" {
		p.Difficulty = def.Difficulty
	}
	return p
}

// Report is the summary sent when the trainee reaches an exit. Milestones
// that never happened are reported as 0.
type Report struct {
	SessionID string `json:"sessionId"`
	Profile
	TimeToFindExtinguisher float64 `json:"timeToFindExtinguisher"`
	TimeToExtinguishFire   float64 `json:"timeToExtinguishFire"`
	TimeToTriggerAlarm     float64 `json:"timeToTriggerAlarm"`
	TimeToFindExit         float64 `json:"timeToFindExit"`
}

// Tracker latches the first occurrence of each milestone. It is safe for
// concurrent use.
type Tracker struct {
	mu       sync.Mutex
	id       string
	profile  Profile
	now      func() time.Time
	start    time.Time
	elapsed  map[Event]float64
	reported bool
	reporter Reporter
	logger   *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

func WithReporter(r Reporter) Option {
	return func(t *Tracker) {
		if r != nil {
			t.reporter = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) Option {
	return func(t *Tracker) { t.id = id }
}

// NewTracker starts a drill now.
func NewTracker(profile Profile, opts ...Option) *Tracker {
	t := &Tracker{
		id:      uuid.NewString(),
		profile: profile.withDefaults(),
		now:     time.Now,
		elapsed: make(map[Event]float64, len(events)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.reporter == nil {
		t.reporter = LogReporter{Logger: t.logger}
	}
	t.start = t.now()
	t.logger = t.logger.With("session", t.id)
	return t
}

func (t *Tracker) ID() string {
	return t.id
}

// mark latches ev and reports whether this was its first occurrence. Caller
// holds the lock.
func (t *Tracker) mark(ev Event) bool {
	if _, ok := t.elapsed[ev]; ok {
		return false
	}
	secs := t.now().Sub(t.start).Seconds()
	t.elapsed[ev] = secs
	milestonesTotal.WithLabelValues(string(ev)).Inc()
	t.logger.Info("milestone reached", "event", ev, "elapsed", secs)
	return true
}

func (t *Tracker) ExtinguisherFound() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mark(EventExtinguisherFound)
}

func (t *Tracker) FireExtinguished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mark(EventFireExtinguished)
}

func (t *Tracker) AlarmTriggered() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mark(EventAlarmTriggered)
}

// ReachExit latches the exit milestone and sends the report. Only the first
// call reports; later calls return ErrAlreadyReported.
func (t *Tracker) ReachExit(ctx context.Context) error {
	t.mu.Lock()
	t.mark(EventExitReached)
	if t.reported {
		t.mu.Unlock()
		return ErrAlreadyReported
	}
	t.reported = true
	report := t.reportLocked()
	t.mu.Unlock()

	if err := t.reporter.Report(ctx, report); err != nil {
		reportsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("sending report for session %s: %w", t.id, err)
	}
	reportsTotal.WithLabelValues("sent").Inc()
	return nil
}

// Elapsed returns the seconds from the start to ev, and whether ev happened.
func (t *Tracker) Elapsed(ev Event) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	secs, ok := t.elapsed[ev]
	return secs, ok
}

// Finished reports whether the exit has been reached.
func (t *Tracker) Finished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reported
}

// Report builds the current summary without sending it.
func (t *Tracker) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reportLocked()
}

func (t *Tracker) reportLocked() Report {
	return Report{
		SessionID:              t.id,
		Profile:                t.profile,
		TimeToFindExtinguisher: round(t.elapsed[EventExtinguisherFound]),
		TimeToExtinguishFire:   round(t.elapsed[EventFireExtinguished]),
		TimeToTriggerAlarm:     round(t.elapsed[EventAlarmTriggered]),
		TimeToFindExit:         round(t.elapsed[EventExitReached]),
	}
}

// round keeps millisecond precision.
func round(secs float64) float64 {
	return math.Round(secs*1000) / 1000
}
