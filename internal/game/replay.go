package game

import (
	"fmt"
	"io"
	"sync"

	"github.com/magefree/mage-rules-go/internal/game/rules"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Replay is a recorded match: a sequence of views with a playback cursor.
type Replay struct {
	GameID       string
	States       []GameView
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay.
func NewReplay(gameID string) *Replay {
	return &Replay{GameID: gameID}
}

// RecordState appends a snapshot.
func (r *Replay) RecordState(view GameView) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.States = append(r.States, view)
}

// Start rewinds playback to the first snapshot.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the snapshot under the cursor and advances it.
func (r *Replay) Next() (GameView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.States) {
		view := r.States[r.CurrentIndex]
		r.CurrentIndex++
		return view, true
	}
	return GameView{}, false
}

// Previous moves the cursor back one snapshot and returns it.
func (r *Replay) Previous() (GameView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.States[r.CurrentIndex], true
	}
	return GameView{}, false
}

// Skip moves the cursor by count, clamped to the recorded range.
func (r *Replay) Skip(count int) (GameView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.States) == 0 {
		return GameView{}, false
	}
	r.CurrentIndex = min(max(r.CurrentIndex+count, 0), len(r.States)-1)
	return r.States[r.CurrentIndex], true
}

// Size returns the number of recorded snapshots.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.States)
}

// At returns the snapshot at index.
func (r *Replay) At(index int) (GameView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index >= 0 && index < len(r.States) {
		return r.States[index], true
	}
	return GameView{}, false
}

// WriteYAML encodes every snapshot to w as a YAML document stream.
func (r *Replay) WriteYAML(w io.Writer) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for i, view := range r.States {
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("encode state %d: %w", i, err)
		}
	}
	return enc.Close()
}

// ReplayRecorder snapshots matches at every step change and at game over.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay // gameID -> Replay
	handles map[string]func()  // gameID -> unsubscribe
}

// NewReplayRecorder creates a recorder. A nil logger discards output.
func NewReplayRecorder(logger *zap.Logger) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		handles: make(map[string]func()),
	}
}

// StartRecording records g's current view and every later step change. A
// match that is already being recorded keeps its replay.
func (rr *ReplayRecorder) StartRecording(g *Game) *Replay {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if replay, ok := rr.replays[g.ID()]; ok && rr.handles[g.ID()] != nil {
		return replay
	}
	replay, ok := rr.replays[g.ID()]
	if !ok {
		replay = NewReplay(g.ID())
		rr.replays[g.ID()] = replay
	}
	replay.RecordState(g.View())

	handle := g.Subscribe(func(ev rules.Event) {
		if ev.Type != rules.EventStepChanged && ev.Type != rules.EventGameOver {
			return
		}
		replay.RecordState(g.View())
		rr.logger.Debug("recorded replay state",
			zap.String("game_id", g.ID()),
			zap.Int("state_count", replay.Size()),
		)
	})
	rr.handles[g.ID()] = func() { g.Unsubscribe(handle) }

	rr.logger.Info("started replay recording", zap.String("game_id", g.ID()))
	return replay
}

// StopRecording stops recording a match. Its replay is kept.
func (rr *ReplayRecorder) StopRecording(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if stop := rr.handles[gameID]; stop != nil {
		stop()
		delete(rr.handles, gameID)
		rr.logger.Info("stopped replay recording", zap.String("game_id", gameID))
	}
}

// GetReplay returns the replay for a match.
func (rr *ReplayRecorder) GetReplay(gameID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	replay, exists := rr.replays[gameID]
	return replay, exists
}

// ClearReplay stops recording and forgets the replay.
func (rr *ReplayRecorder) ClearReplay(gameID string) {
	rr.StopRecording(gameID)

	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, gameID)
	rr.logger.Debug("cleared replay from memory", zap.String("game_id", gameID))
}

// IsRecording returns whether a match is being recorded.
func (rr *ReplayRecorder) IsRecording(gameID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	return rr.handles[gameID] != nil
}
