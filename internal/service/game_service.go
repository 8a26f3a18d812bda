package service

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"minesweeper/internal/game"
	"minesweeper/internal/logger"
)

// Event types published to subscribers.
const (
	EventState = "state"
	EventTick  = "tick"
)

// Event is a change to the live session. Tick events carry only the
// display; every other event carries the full session. Seq increases by one
// per event and subscribers see events in Seq order.
type Event struct {
	Type      string
	Seq       uint64
	SessionID string
	Display   game.DisplayState
	Session   *SessionView
}

// SessionView is everything a client needs to render the live session. Seq
// is the sequence number of the last event the view includes.
type SessionView struct {
	Seq        uint64            `json:"seq"`
	ID         string            `json:"id"`
	Token      string            `json:"token"`
	Difficulty game.Difficulty   `json:"difficulty"`
	Display    game.DisplayState `json:"display"`
	Board      game.BoardView    `json:"board"`
}

type RevealOutcome struct {
	game.MoveResult
	Display game.DisplayState `json:"display"`
}

type FlagOutcome struct {
	game.FlagResult
	Display game.DisplayState `json:"display"`
}

type Option func(*GameService)

// WithPlacer overrides how each new session arms its board.
func WithPlacer(newPlacer func() game.MinePlacer) Option {
	return func(s *GameService) { s.newPlacer = newPlacer }
}

// WithTickInterval sets the server clock period. Zero disables the clock.
func WithTickInterval(d time.Duration) Option {
	return func(s *GameService) { s.tickInterval = d }
}

// GameService owns the one live session and serialises every action on it.
type GameService struct {
	catalog      *game.Catalog
	tokens       *TokenIssuer
	tickInterval time.Duration
	newPlacer    func() game.MinePlacer
	log          *slog.Logger

	mu        sync.Mutex
	session   *game.Session
	token     string
	stopClock context.CancelFunc
	seq       uint64

	// pubMu is taken before mu is released and held through delivery
	pubMu sync.Mutex

	subMu       sync.RWMutex
	subscribers map[int]func(Event)
	nextSub     int
}

// NewGameService starts with a ready session at difficulty.
func NewGameService(catalog *game.Catalog, tokens *TokenIssuer, difficulty string, opts ...Option) (*GameService, error) {
	s := &GameService{
		catalog:      catalog,
		tokens:       tokens,
		tickInterval: time.Second,
		newPlacer:    randomPlacer,
		log:          logger.Component("game"),
		subscribers:  make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := s.NewGame(difficulty); err != nil {
		return nil, err
	}
	return s, nil
}

func randomPlacer() game.MinePlacer {
	return game.RandomPlacer(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// Subscribe registers fn for every event. fn runs outside the service lock
// but inside the delivery lock: it must not block for long or call back into
// the service.
func (s *GameService) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

// unlockAndPublish stamps ev with the next sequence number, releases mu and
// delivers ev. The caller must hold mu. Holding pubMu across the handover
// keeps delivery in the order the state changes happened.
func (s *GameService) unlockAndPublish(ev Event) {
	s.seq++
	ev.Seq = s.seq
	ev.SessionID = s.session.ID
	if ev.Session != nil {
		ev.Session.Seq = ev.Seq
	}

	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()
	s.publish(ev)
}

func (s *GameService) publish(ev Event) {
	s.subMu.RLock()
	subs := make([]func(Event), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

func (s *GameService) Difficulties() []game.Difficulty {
	return s.catalog.List()
}

// NewGame discards the live session and starts a ready one.
func (s *GameService) NewGame(difficulty string) (SessionView, error) {
	sess, err := s.catalog.NewSession(difficulty, s.newPlacer())
	if err != nil {
		return SessionView{}, err
	}
	token, err := s.tokens.Issue(sess.ID)
	if err != nil {
		return SessionView{}, err
	}

	GamesCreated.WithLabelValues(sess.Difficulty.Name).Inc()
	s.log.Info("new game", "session", sess.ID, "difficulty", sess.Difficulty.Name)

	s.mu.Lock()
	s.stopClockLocked()
	s.session = sess
	s.token = token
	view := s.snapshotLocked()
	s.unlockAndPublish(Event{Type: EventState, Display: view.Display, Session: &view})
	return view, nil
}

// Restart starts a new game at the current difficulty.
func (s *GameService) Restart() (SessionView, error) {
	s.mu.Lock()
	name := s.session.Difficulty.Name
	s.mu.Unlock()
	return s.NewGame(name)
}

// Reveal opens a cell on the live session. Moves the rules don't allow are
// ignored and reported as an empty outcome.
func (s *GameService) Reveal(token string, row, col int) (RevealOutcome, error) {
	s.mu.Lock()
	if err := s.checkLocked(token, row, col); err != nil {
		s.mu.Unlock()
		return RevealOutcome{}, err
	}

	sess := s.session
	wasReady := sess.State == game.StateReady
	res := sess.Reveal(row, col)
	out := RevealOutcome{MoveResult: res, Display: sess.Display()}
	if len(res.Revealed) == 0 {
		s.mu.Unlock()
		return out, nil
	}

	if wasReady {
		GamesStarted.WithLabelValues(sess.Difficulty.Name).Inc()
		if sess.State == game.StatePlaying {
			s.startClockLocked()
		}
	}
	if sess.State.Terminal() {
		s.finishLocked()
	}
	CellsRevealed.Add(float64(len(res.Revealed)))
	s.log.Debug("reveal", "session", sess.ID, "row", row, "col", col,
		"revealed", len(res.Revealed), "hit_mine", res.HitMine, "won", res.Won)

	view := s.snapshotLocked()
	s.unlockAndPublish(Event{Type: EventState, Display: view.Display, Session: &view})
	return out, nil
}

// ToggleFlag flags or unflags a hidden cell on the live session.
func (s *GameService) ToggleFlag(token string, row, col int) (FlagOutcome, error) {
	s.mu.Lock()
	if err := s.checkLocked(token, row, col); err != nil {
		s.mu.Unlock()
		return FlagOutcome{}, err
	}

	res := s.session.ToggleFlag(row, col)
	out := FlagOutcome{FlagResult: res, Display: s.session.Display()}
	if !res.Changed {
		s.mu.Unlock()
		return out, nil
	}
	FlagToggles.Inc()
	view := s.snapshotLocked()
	s.unlockAndPublish(Event{Type: EventState, Display: view.Display, Session: &view})
	return out, nil
}

// Tick advances the live session's clock by one second and returns the
// elapsed time. It does nothing unless the game is being played, and fails
// with ErrClockManaged while the server clock is running.
func (s *GameService) Tick() (int, error) {
	if s.tickInterval > 0 {
		return 0, ErrClockManaged
	}

	s.mu.Lock()
	sess := s.session
	if sess.State != game.StatePlaying {
		elapsed := sess.ElapsedSeconds
		s.mu.Unlock()
		return elapsed, nil
	}
	elapsed := sess.Tick()
	s.unlockAndPublish(Event{Type: EventTick, Display: sess.Display()})
	return elapsed, nil
}

func (s *GameService) Display() game.DisplayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Display()
}

func (s *GameService) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close stops the clock. The service stays usable.
func (s *GameService) Close() {
	s.mu.Lock()
	s.stopClockLocked()
	s.mu.Unlock()
}

func (s *GameService) checkLocked(token string, row, col int) error {
	if token != "" {
		sid, err := s.tokens.SessionID(token)
		if err != nil {
			return err
		}
		if sid != s.session.ID {
			return ErrStaleSession
		}
	}
	if !s.session.Board.In(row, col) {
		return ErrCellOutOfRange
	}
	return nil
}

func (s *GameService) snapshotLocked() SessionView {
	return SessionView{
		Seq:        s.seq,
		ID:         s.session.ID,
		Token:      s.token,
		Difficulty: s.session.Difficulty,
		Display:    s.session.Display(),
		Board:      s.session.View(),
	}
}

func (s *GameService) finishLocked() {
	s.stopClockLocked()

	sess := s.session
	GamesFinished.WithLabelValues(sess.Difficulty.Name, string(sess.State)).Inc()
	GameDuration.WithLabelValues(sess.Difficulty.Name).Observe(float64(sess.ElapsedSeconds))
	s.log.Info("game finished", "session", sess.ID, "difficulty", sess.Difficulty.Name,
		"result", sess.State, "elapsed", sess.ElapsedSeconds, "flags", sess.FlagsPlaced)
}

func (s *GameService) startClockLocked() {
	if s.tickInterval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.stopClock = cancel

	sess := s.session
	interval := s.tickInterval
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !s.clockTick(sess) {
					return
				}
			}
		}
	}()
}

func (s *GameService) stopClockLocked() {
	if s.stopClock != nil {
		s.stopClock()
		s.stopClock = nil
	}
}

// clockTick advances sess if it is still the live, playing session.
func (s *GameService) clockTick(sess *game.Session) bool {
	s.mu.Lock()
	if s.session != sess || sess.State != game.StatePlaying {
		s.mu.Unlock()
		return false
	}
	sess.Tick()
	s.unlockAndPublish(Event{Type: EventTick, Display: sess.Display()})
	return true
}
