package game

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropfour/server/internal/domain"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []domain.GameEvent
}

func (r *eventRecorder) Publish(event domain.GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *eventRecorder) count(t domain.EventType) int {
	n := 0
	for _, et := range r.types() {
		if et == t {
			n++
		}
	}
	return n
}

type fakeRepo struct {
	mu    sync.Mutex
	saved []domain.Game
}

func (f *fakeRepo) SaveGame(_ context.Context, g *domain.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, *g)
	return nil
}

func (f *fakeRepo) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

type fakeCache struct {
	mu            sync.Mutex
	invalidations int
}

func (f *fakeCache) InvalidateLeaderboard(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidations++
	return nil
}

func (f *fakeCache) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invalidations
}

// stateRecorder counts notifier callbacks. It runs with the session lock
// held, so it only records and returns.
type stateRecorder struct {
	mu    sync.Mutex
	calls int
}

func (r *stateRecorder) GameStateChanged(*domain.Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
}

func (r *stateRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestCreateAndGetGame(t *testing.T) {
	s := NewService(nil, nil, nil, time.Millisecond)

	g := s.CreateGame("alice", "bob", false)
	require.NotEmpty(t, g.ID)
	assert.Equal(t, 1, s.Count())

	got, ok := s.GetGame(g.ID)
	require.True(t, ok)
	assert.Equal(t, g.ID, got.ID)

	_, ok = s.GetGame("missing")
	assert.False(t, ok)
}

func TestApplyMoveUnknownGame(t *testing.T) {
	s := NewService(nil, nil, nil, time.Millisecond)
	err := s.ApplyMove("missing", domain.Player1, 3)
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestApplyMoveNotifiesAndPublishes(t *testing.T) {
	events := &eventRecorder{}
	states := &stateRecorder{}
	s := NewService(nil, nil, events, time.Millisecond)
	s.SetNotifier(states)

	g := s.CreateGame("alice", "bob", false)
	require.NoError(t, s.ApplyMove(g.ID, domain.Player1, 3))
	require.NoError(t, s.ApplyMove(g.ID, domain.Player2, 4))

	assert.Equal(t, 2, states.count())
	assert.Equal(t, 2, events.count(domain.EventMovePlayed))
}

func TestApplyMoveRejectionsPropagate(t *testing.T) {
	states := &stateRecorder{}
	s := NewService(nil, nil, nil, time.Millisecond)
	s.SetNotifier(states)

	g := s.CreateGame("alice", "bob", false)
	err := s.ApplyMove(g.ID, domain.Player2, 3)
	assert.ErrorIs(t, err, domain.ErrNotYourTurn)
	assert.Equal(t, 0, states.count())
}

func TestFinishedGamePersistsAndInvalidates(t *testing.T) {
	events := &eventRecorder{}
	repo := &fakeRepo{}
	cache := &fakeCache{}
	s := NewService(repo, cache, events, time.Millisecond)

	g := s.CreateGame("alice", "bob", false)
	moves := []struct {
		disc domain.Disc
		col  int
	}{
		{domain.Player1, 0}, {domain.Player2, 6},
		{domain.Player1, 1}, {domain.Player2, 6},
		{domain.Player1, 2}, {domain.Player2, 6},
		{domain.Player1, 3},
	}
	for _, m := range moves {
		require.NoError(t, s.ApplyMove(g.ID, m.disc, m.col))
	}

	assert.Equal(t, 1, events.count(domain.EventGameEnded))
	// The winning move publishes GAME_ENDED instead of MOVE_PLAYED.
	assert.Equal(t, 6, events.count(domain.EventMovePlayed))

	assert.Eventually(t, func() bool {
		return repo.saveCount() == 1 && cache.count() == 1
	}, time.Second, 5*time.Millisecond)

	repo.mu.Lock()
	saved := repo.saved[0]
	repo.mu.Unlock()
	assert.Equal(t, "alice", saved.WinnerUsername())
	assert.Equal(t, domain.StatusFinished, saved.Status)
}

func TestBotGameLifecycle(t *testing.T) {
	events := &eventRecorder{}
	states := &stateRecorder{}
	s := NewService(nil, nil, events, time.Millisecond)
	s.SetNotifier(states)

	g := s.CreateGame("alice", "", true)
	assert.Equal(t, domain.StatusWaiting, g.Status)

	_, err := s.ActivateBotGame(g.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, g.Status)
	assert.Equal(t, 1, events.count(domain.EventBotGameStarted))

	require.NoError(t, s.ApplyMove(g.ID, domain.Player1, 0))

	// The paced bot reply lands and hands the turn back.
	assert.Eventually(t, func() bool {
		got, ok := s.GetGame(g.ID)
		return ok && got.Status == domain.StatusActive && got.CurrentTurn == domain.Player1 && states.count() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestActivateBotGameErrors(t *testing.T) {
	s := NewService(nil, nil, nil, time.Millisecond)

	_, err := s.ActivateBotGame("missing")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)

	pvp := s.CreateGame("alice", "bob", false)
	_, err = s.ActivateBotGame(pvp.ID)
	assert.ErrorIs(t, err, domain.ErrNotBotGame)

	botGame := s.CreateGame("carol", "", true)
	_, err = s.ActivateBotGame(botGame.ID)
	require.NoError(t, err)
	_, err = s.ActivateBotGame(botGame.ID)
	assert.ErrorIs(t, err, domain.ErrGameNotActive)
}

func TestFindActiveGameByUsername(t *testing.T) {
	s := NewService(nil, nil, nil, time.Millisecond)

	older := s.CreateGame("alice", "bob", false)
	older.StartedAt = time.Now().Add(-time.Hour)
	newer := s.CreateGame("alice", "carol", false)

	found, ok := s.FindActiveGameByUsername("alice")
	require.True(t, ok)
	assert.Equal(t, newer.ID, found.ID)

	_, ok = s.FindActiveGameByUsername("nobody")
	assert.False(t, ok)
}

func TestStateFrameAccessors(t *testing.T) {
	s := NewService(nil, nil, nil, time.Millisecond)

	_, err := s.GameStateFrame("missing")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
	_, _, err = s.GameStartFrames("missing")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
	_, ok := s.GameFinished("missing")
	assert.False(t, ok)

	g := s.CreateGame("alice", "bob", false)

	state, err := s.GameStateFrame(g.ID)
	require.NoError(t, err)
	var env domain.Envelope
	require.NoError(t, json.Unmarshal(state, &env))
	assert.Equal(t, domain.MsgGameStateUpdate, env.Type)

	started, state, err := s.GameStartFrames(g.ID)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(started, &env))
	assert.Equal(t, domain.MsgGameStarted, env.Type)
	require.NoError(t, json.Unmarshal(state, &env))
	assert.Equal(t, domain.MsgGameStateUpdate, env.Type)

	finished, ok := s.GameFinished(g.ID)
	require.True(t, ok)
	assert.False(t, finished)
}

// Frame builders and lookups must serialize against live moves; run them
// while a game plays out so the race detector can see any unlocked read.
func TestStateFramesDuringLiveMoves(t *testing.T) {
	s := NewService(nil, nil, nil, time.Millisecond)
	g := s.CreateGame("alice", "bob", false)

	done := make(chan struct{})
	go func() {
		defer close(done)
		moves := []struct {
			disc domain.Disc
			col  int
		}{
			{domain.Player1, 0}, {domain.Player2, 1},
			{domain.Player1, 0}, {domain.Player2, 1},
			{domain.Player1, 0}, {domain.Player2, 1},
			{domain.Player1, 2}, {domain.Player2, 1},
		}
		for _, m := range moves {
			_ = s.ApplyMove(g.ID, m.disc, m.col)
		}
	}()

	for i := 0; i < 200; i++ {
		_, err := s.GameStateFrame(g.ID)
		require.NoError(t, err)
		_, _, err = s.GameStartFrames(g.ID)
		require.NoError(t, err)
		_, ok := s.GameFinished(g.ID)
		require.True(t, ok)
		s.FindActiveGameByUsername("alice")
	}
	<-done

	finished, ok := s.GameFinished(g.ID)
	require.True(t, ok)
	assert.True(t, finished)
}

func TestCleanupStale(t *testing.T) {
	s := NewService(nil, nil, nil, time.Millisecond)

	finished := s.CreateGame("alice", "bob", false)
	finished.Status = domain.StatusFinished
	ended := time.Now().Add(-2 * time.Hour)
	finished.EndedAt = &ended

	idle := s.CreateGame("carol", "dave", false)
	idle.LastMoveAt = time.Now().Add(-48 * time.Hour)

	fresh := s.CreateGame("erin", "frank", false)

	removed := s.CleanupStale(time.Hour, 24*time.Hour)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, s.Count())

	_, ok := s.GetGame(fresh.ID)
	assert.True(t, ok)
	_, ok = s.GetGame(finished.ID)
	assert.False(t, ok)
	_, ok = s.GetGame(idle.ID)
	assert.False(t, ok)
}
