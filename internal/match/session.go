// Package match ties the score and appearance controllers into one session.
//
// The session is the only mutator of match state. Every operation runs under a
// single lock so concurrent taps are applied one at a time, and subscribers are
// told about each operation after the lock is released.
package match

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/preston-bernstein/scorekeeper-service/internal/appearance"
	"github.com/preston-bernstein/scorekeeper-service/internal/logging"
	"github.com/preston-bernstein/scorekeeper-service/internal/palette"
	"github.com/preston-bernstein/scorekeeper-service/internal/scoring"
)

// State is a point-in-time copy of everything a renderer needs.
type State struct {
	SessionID    string `json:"sessionId"`
	Revision     uint64 `json:"revision"`
	SettingsOpen bool   `json:"settingsOpen"`
	scoring.MatchScore
	appearance.MatchAppearance
}

// Listener receives a state copy after each operation.
type Listener func(State, Change)

// Config controls how a session starts.
type Config struct {
	Catalogue    palette.Catalogue
	HomeTeamName string
	AwayTeamName string
	Logger       *slog.Logger
}

// Session owns one match.
type Session struct {
	id     string
	logger *slog.Logger

	mu           sync.Mutex
	revision     uint64
	settingsOpen bool
	score        *scoring.Controller
	look         *appearance.Controller

	listenersMu sync.RWMutex
	listeners   map[uint64]Listener
	nextID      uint64
}

// NewSession builds a session with zero scores and the catalogue's default colors.
func NewSession(cfg Config) *Session {
	return &Session{
		id:        uuid.NewString(),
		logger:    cfg.Logger,
		score:     scoring.NewController(),
		look:      appearance.NewController(cfg.Catalogue, appearance.WithTeamNames(cfg.HomeTeamName, cfg.AwayTeamName)),
		listeners: make(map[uint64]Listener),
	}
}

// ID identifies the session for the lifetime of the process.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state for polling clients.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Palettes returns the catalogue colors are selected from.
func (s *Session) Palettes() palette.Catalogue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.look.Palettes()
}

// Subscribe registers l and returns a function that removes it.
func (s *Session) Subscribe(l Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

// Increment adds a point to side.
func (s *Session) Increment(side scoring.Side) State {
	return s.apply(Change{Op: OpIncrement, Side: side.String()}, func() bool {
		s.score.Increment(side)
		return true
	})
}

// Decrement removes a point from side unless it is already zero. The returned
// Change reports whether the score moved.
func (s *Session) Decrement(side scoring.Side) (State, Change) {
	return s.applyChange(Change{Op: OpDecrement, Side: side.String()}, func() bool {
		return s.score.Decrement(side)
	})
}

// ResetSide zeroes one side's score.
func (s *Session) ResetSide(side scoring.Side) State {
	return s.apply(Change{Op: OpResetSide, Side: side.String()}, func() bool {
		s.score.ResetSide(side)
		return true
	})
}

// ResetAll starts a new match: scores and quick-set values go to zero.
func (s *Session) ResetAll() State {
	return s.apply(Change{Op: OpResetAll}, func() bool {
		s.score.ResetAll()
		return true
	})
}

// SetQuickSetValue records the picker selection for side.
// Out-of-range values return scoring.ErrQuickSetRange and leave the state as it was.
func (s *Session) SetQuickSetValue(side scoring.Side, value int) (State, error) {
	var err error
	state := s.apply(Change{Op: OpQuickSet, Side: side.String()}, func() bool {
		err = s.score.SetQuickSetValue(side, value)
		return err == nil
	})
	return state, err
}

// SelectPalette applies a catalogue entry. Unknown keys are reported through the
// returned Change and leave colors as they were.
func (s *Session) SelectPalette(key string) (State, Change) {
	return s.applyChange(Change{Op: OpSelectPalette, Key: key}, func() bool {
		return s.look.SelectPalette(key)
	})
}

// SetTeamName replaces side's display name verbatim.
func (s *Session) SetTeamName(side scoring.Side, name string) State {
	return s.apply(Change{Op: OpTeamName, Side: side.String()}, func() bool {
		s.look.SetTeamName(side, name)
		return true
	})
}

// ToggleSettings flips the settings overlay flag.
func (s *Session) ToggleSettings() State {
	return s.apply(Change{Op: OpToggleSettings}, func() bool {
		s.settingsOpen = !s.settingsOpen
		return true
	})
}

func (s *Session) apply(change Change, mutate func() bool) State {
	state, _ := s.applyChange(change, mutate)
	return state
}

func (s *Session) applyChange(change Change, mutate func() bool) (State, Change) {
	s.mu.Lock()
	change.Applied = mutate()
	if change.Applied {
		s.revision++
	}
	state := s.stateLocked()
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("match operation",
			slog.String(logging.FieldOp, string(change.Op)),
			slog.String(logging.FieldSide, change.Side),
			slog.Bool(logging.FieldApplied, change.Applied),
			slog.Uint64(logging.FieldRevision, state.Revision),
		)
	}

	s.notify(state, change)
	return state, change
}

func (s *Session) notify(state State, change Change) {
	s.listenersMu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		l(state, change)
	}
}

func (s *Session) stateLocked() State {
	return State{
		SessionID:       s.id,
		Revision:        s.revision,
		SettingsOpen:    s.settingsOpen,
		MatchScore:      s.score.Snapshot(),
		MatchAppearance: s.look.Snapshot(),
	}
}
