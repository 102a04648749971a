// Package session holds the state of one live evaluation interview: the
// append-only protocol event log, the tool observation history, and the
// final report once the session has been scored. All entities are owned
// by the session; nothing survives it.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"glossa/internal/domain"
	"glossa/internal/domain/models"
	"glossa/internal/realtime"
)

// Status is the session lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusActive     Status = "active"
	StatusEvaluating Status = "evaluating"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
)

// Stats are running counters over the event stream.
type Stats struct {
	EventsReceived  int64 `json:"events_received"`
	EventsIgnored   int64 `json:"events_ignored"`
	SendsDropped    int64 `json:"sends_dropped"`
	ToolCallsSeen   int64 `json:"tool_calls_seen"`
	MalformedEvents int64 `json:"malformed_events"`
}

// Session is the explicit handle for one interview. The event log is
// most-recent-first: new events are prepended, and consumers that need
// chronological order must reverse it. The mutex guards the log and
// history against concurrent access from the WebSocket reader and the
// HTTP handlers.
type Session struct {
	ID              string
	Language        string
	DurationMinutes int
	CreatedAt       time.Time

	mu           sync.RWMutex
	events       []models.ProtocolEvent
	observations []models.EvaluationToolObservation
	status       Status
	stats        Stats
	report       *models.FinalEvaluation
	reportErr    string
	transport    realtime.Transport
	startedAt    time.Time
	stoppedAt    time.Time
	lastActivity time.Time
}

// New creates a pending session for the given target language.
func New(language string, durationMinutes int) *Session {
	now := time.Now()
	return &Session{
		ID:              uuid.NewString(),
		Language:        language,
		DurationMinutes: durationMinutes,
		CreatedAt:       now,
		status:          StatusPending,
		lastActivity:    now,
	}
}

// RecordEvent prepends one inbound event to the log, keeping the
// most-recent-first ordering invariant.
func (s *Session) RecordEvent(ev models.ProtocolEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append([]models.ProtocolEvent{ev}, s.events...)
	s.stats.EventsReceived++
	s.lastActivity = time.Now()

	if s.status == StatusPending {
		s.status = StatusActive
		s.startedAt = time.Now()
	}
}

// Events returns a snapshot copy of the log, most-recent-first.
func (s *Session) Events() []models.ProtocolEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]models.ProtocolEvent, len(s.events))
	copy(snapshot, s.events)
	return snapshot
}

// AddObservation appends one validated tool observation to the history.
func (s *Session) AddObservation(obs models.EvaluationToolObservation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observations = append(s.observations, obs)
	s.stats.ToolCallsSeen++
	s.lastActivity = time.Now()
}

// Observations returns a snapshot copy of the observation history in
// arrival order.
func (s *Session) Observations() []models.EvaluationToolObservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]models.EvaluationToolObservation, len(s.observations))
	copy(snapshot, s.observations)
	return snapshot
}

// AttachTransport binds the browser mirror connection. A previously
// attached transport is closed first.
func (s *Session) AttachTransport(t realtime.Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transport != nil {
		s.transport.Close()
	}
	s.transport = t
}

// DetachTransport clears the transport if it is the given one.
func (s *Session) DetachTransport(t realtime.Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transport == t {
		s.transport = nil
	}
}

// Send writes one outbound event through the attached transport. Sends
// while no transport is open are dropped by contract, counted but never
// surfaced as failures.
func (s *Session) Send(payload []byte) error {
	s.mu.RLock()
	t := s.transport
	s.mu.RUnlock()

	if t == nil {
		s.countDroppedSend()
		return domain.ErrTransportClosed
	}

	if err := t.Send(payload); err != nil {
		s.countDroppedSend()
		return err
	}
	return nil
}

func (s *Session) countDroppedSend() {
	s.mu.Lock()
	s.stats.SendsDropped++
	s.mu.Unlock()
}

// CountIgnored records an inbound payload that could not be parsed as a
// protocol event.
func (s *Session) CountIgnored() {
	s.mu.Lock()
	s.stats.MalformedEvents++
	s.mu.Unlock()
}

// Status returns the lifecycle state.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetStatus moves the session to the given lifecycle state.
func (s *Session) SetStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.lastActivity = time.Now()
}

// Stop marks the session stopped and returns the elapsed active duration.
func (s *Session) Stop() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stoppedAt.IsZero() {
		s.stoppedAt = time.Now()
	}
	s.status = StatusEvaluating
	s.lastActivity = time.Now()

	start := s.startedAt
	if start.IsZero() {
		start = s.CreatedAt
	}
	return s.stoppedAt.Sub(start)
}

// SetReport stores the terminal evaluation. A non-empty errMessage marks
// the report as a fallback produced after an upstream failure.
func (s *Session) SetReport(report *models.FinalEvaluation, errMessage string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report = report
	s.reportErr = errMessage
	if errMessage == "" {
		s.status = StatusComplete
	} else {
		s.status = StatusFailed
	}
	s.lastActivity = time.Now()
}

// Report returns the stored evaluation, the upstream error message (empty
// on success) and whether a report exists at all.
func (s *Session) Report() (*models.FinalEvaluation, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report, s.reportErr, s.report != nil
}

// Snapshot returns a copy of the running counters.
func (s *Session) Snapshot() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// LastActivity reports the most recent touch, used for TTL expiry.
func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// Close releases the transport if one is still attached.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transport != nil {
		s.transport.Close()
		s.transport = nil
	}
}
