// Package engine implements the live attendance session: a single
// Idle/Active state machine that owns the camera for the duration of a
// session, credits each recognized person at most once, computes lateness
// against the expected start and persists every mark to a CSV log whose name
// is deterministic in (subject, faculty, slot, date). Restarting the same
// logical session on the same day resumes the existing log.
package engine

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/vijaychouhan26/Face-recognition-attendence/app/capture"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/gallery"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/models"
	"github.com/vijaychouhan26/Face-recognition-attendence/app/schedule"
)

// ErrSessionActive is returned by Start while a session is running.
var ErrSessionActive = errors.New("a session is already active")

// NoSlot is the slot identifier recorded when a session runs outside the
// lecture timetable.
const NoSlot = "NA"

// MarkResult classifies the outcome of a mark attempt.
type MarkResult int

const (
	// MarkNew: the identity was credited and a log record written.
	MarkNew MarkResult = iota
	// MarkDuplicate: already credited this session; nothing written.
	MarkDuplicate
	// MarkUnknown: not a markable identity (Unknown, empty, or not enrolled).
	MarkUnknown
	// MarkInactive: no session is running.
	MarkInactive
)

// StartOptions are the parameters of a session start request.
type StartOptions struct {
	Faculty      string
	Subject      string
	CameraSource string
	SlotID       string // optional explicit slot
	ManualStart  string // optional HH:MM override
}

// StartResult reports how the session was resolved.
type StartResult struct {
	SlotID        string
	ExpectedStart time.Time
	LogID         string
	Resumed       bool
	Restored      int // attendees restored from an existing log
}

// Engine is the attendance session state machine. One Engine is created at
// process start and shared by the frame processor, the request handlers and
// the background services; all mutable state is guarded by mu.
type Engine struct {
	dir     string
	gallery *gallery.Gallery
	open    capture.Opener
	clock   func() time.Time
	onMark  func(models.AttendanceRecord)

	mu            sync.RWMutex
	active        bool
	faculty       string
	subject       string
	slotID        string
	expectedStart time.Time
	logPath       string
	marked        map[string]struct{}
	cam           capture.Source
}

// New creates an idle engine writing logs under dir. open is how the engine
// acquires a camera; pass capture.Open outside tests.
func New(dir string, g *gallery.Gallery, open capture.Opener) *Engine {
	return &Engine{
		dir:     dir,
		gallery: g,
		open:    open,
		clock:   time.Now,
		marked:  make(map[string]struct{}),
	}
}

// OnMark registers a hook invoked after every successful mark, outside the
// engine lock. Used for the MQTT notifier.
func (e *Engine) OnMark(fn func(models.AttendanceRecord)) {
	e.mu.Lock()
	e.onMark = fn
	e.mu.Unlock()
}

// Start transitions Idle -> Active. Slot resolution precedence: explicit slot
// id, then the slot containing the current time, then none. Expected-start
// precedence: manual HH:MM override, then the resolved slot's start, then now.
// A camera that cannot be opened aborts the transition with
// capture.ErrCameraUnavailable and leaves the engine idle with no resource
// held.
func (e *Engine) Start(opts StartOptions) (*StartResult, error) {
	if opts.Faculty == "" || opts.Subject == "" {
		return nil, fmt.Errorf("faculty and subject are required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		return nil, ErrSessionActive
	}

	now := e.clock()

	var slot *models.Slot
	if opts.SlotID != "" {
		slot = schedule.SlotByID(opts.SlotID)
	}
	if slot == nil {
		slot = schedule.CurrentSlot(now)
	}

	expected := now
	switch {
	case opts.ManualStart != "":
		parsed, err := schedule.ParseManualStart(opts.ManualStart, now)
		if err != nil {
			log.Printf("WARNING: %v; using current time as expected start", err)
		} else {
			expected = parsed
		}
	case slot != nil:
		expected = slot.Start.On(now)
	}

	slotID := NoSlot
	if slot != nil {
		slotID = slot.ID
	}

	cam, err := e.open(opts.CameraSource)
	if err != nil {
		return nil, err
	}

	logID := LogName(opts.Subject, opts.Faculty, slotID, now)
	logPath := filepath.Join(e.dir, logID)

	result := &StartResult{SlotID: slotID, ExpectedStart: expected, LogID: logID}

	marked := make(map[string]struct{})
	if logExists(logPath) {
		restored, err := readMarked(logPath)
		if err != nil {
			cam.Release()
			return nil, fmt.Errorf("restore session log %s: %w", logID, err)
		}
		marked = restored
		result.Resumed = true
		result.Restored = len(restored)
		log.Printf("Resuming session from %s (%d attendees restored)", logID, len(restored))
	} else {
		if err := createLog(logPath); err != nil {
			cam.Release()
			return nil, err
		}
		log.Printf("New session started, attendance log: %s", logID)
	}

	e.active = true
	e.faculty = opts.Faculty
	e.subject = opts.Subject
	e.slotID = slotID
	e.expectedStart = expected
	e.logPath = logPath
	e.marked = marked
	e.cam = cam
	return result, nil
}

// Stop transitions Active -> Idle, releasing the camera before returning so
// the device is free for the next session. Stop on an idle engine is a no-op
// returning an empty list. The returned attendee list is sorted.
func (e *Engine) Stop() ([]string, string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return nil, ""
	}

	final := make([]string, 0, len(e.marked))
	for name := range e.marked {
		final = append(final, name)
	}
	sort.Strings(final)

	logID := filepath.Base(e.logPath)

	e.active = false
	if e.cam != nil {
		if err := e.cam.Release(); err != nil {
			log.Printf("Camera release error: %v", err)
		}
		e.cam = nil
	}
	log.Printf("Session stopped, %d attendees in %s", len(final), logID)
	return final, logID
}

// Mark credits name for the current session at most once. The membership
// check, the log append and the set insert happen under one critical section,
// and the append happens first: a failed write leaves the identity unmarked
// both on disk and in memory.
func (e *Engine) Mark(name string) (MarkResult, error) {
	if name == "" || name == gallery.Unknown {
		return MarkUnknown, nil
	}

	e.mu.Lock()

	if !e.active {
		e.mu.Unlock()
		return MarkInactive, nil
	}
	if !e.gallery.Contains(name) {
		e.mu.Unlock()
		return MarkUnknown, nil
	}
	if _, dup := e.marked[name]; dup {
		e.mu.Unlock()
		return MarkDuplicate, nil
	}

	now := e.clock()
	late := 0
	if !e.expectedStart.IsZero() {
		late = int(now.Sub(e.expectedStart).Minutes())
		if late < 0 {
			late = 0
		}
	}

	rec := models.AttendanceRecord{
		Faculty:     e.faculty,
		Subject:     e.subject,
		Name:        name,
		Time:        now.Format("15:04:05"),
		LateMinutes: late,
		SlotID:      e.slotID,
	}

	if err := appendRecord(e.logPath, rec); err != nil {
		e.mu.Unlock()
		log.Printf("Mark attendance error for %s: %v", name, err)
		return MarkUnknown, err
	}
	e.marked[name] = struct{}{}
	hook := e.onMark
	e.mu.Unlock()

	log.Printf("ATTENDANCE MARKED: %s for %s (late %d min, slot %s)", name, rec.Subject, late, rec.SlotID)
	if hook != nil {
		hook(rec)
	}
	return MarkNew, nil
}

// MarkRoll is the QR/roll-number fallback: it resolves an external roll
// number to a gallery label and marks it with the same idempotency semantics
// as camera recognition.
func (e *Engine) MarkRoll(roll string) (string, MarkResult, error) {
	name, ok := e.gallery.ResolveRoll(roll)
	if !ok {
		return "", MarkUnknown, nil
	}
	res, err := e.Mark(name)
	return name, res, err
}

// Marked returns a snapshot of the names credited this session.
func (e *Engine) Marked() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.marked))
	for name := range e.marked {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsMarked reports whether name has been credited this session.
func (e *Engine) IsMarked(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.marked[name]
	return ok
}

// Detailed returns every record of the current (or most recent) session log
// in append order.
func (e *Engine) Detailed() ([]models.AttendanceRecord, error) {
	e.mu.RLock()
	path := e.logPath
	e.mu.RUnlock()

	if path == "" || !logExists(path) {
		return []models.AttendanceRecord{}, nil
	}
	return readRecords(path)
}

// Active reports whether a session is running.
func (e *Engine) Active() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// LogID returns the identifier of the current (or most recent) session log.
func (e *Engine) LogID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.logPath == "" {
		return ""
	}
	return filepath.Base(e.logPath)
}

// Status returns the live session view for clients.
func (e *Engine) Status() models.SessionStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	st := models.SessionStatus{Active: e.active, MarkedCount: len(e.marked)}
	if e.logPath != "" {
		st.LogID = filepath.Base(e.logPath)
	}
	if e.active {
		st.Faculty = e.faculty
		st.Subject = e.subject
		st.SlotID = e.slotID
		st.ExpectedStart = e.expectedStart.Format("15:04")
	}
	return st
}

// SlotID returns the slot of the running session, or "" when idle.
func (e *Engine) SlotID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.active {
		return ""
	}
	return e.slotID
}

// currentFrame hands the processor the newest camera frame. The caller must
// Close the returned Mat when ok is true.
func (e *Engine) currentFrame() (gocv.Mat, bool) {
	e.mu.RLock()
	cam := e.cam
	active := e.active
	e.mu.RUnlock()

	if !active || cam == nil {
		return gocv.Mat{}, false
	}
	m, ok := cam.Read()
	if !ok {
		m.Close()
		return gocv.Mat{}, false
	}
	return m, true
}
