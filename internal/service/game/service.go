package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropfour/server/internal/domain"
	"github.com/dropfour/server/internal/metrics"
	"github.com/dropfour/server/internal/service/bot"
)

// Repository persists finished games. Failures never roll back in-memory
// state.
type Repository interface {
	SaveGame(ctx context.Context, g *domain.Game) error
}

// Cache invalidates derived read models after a game is recorded.
type Cache interface {
	InvalidateLeaderboard(ctx context.Context) error
}

// Publisher receives analytics events, fire-and-forget.
type Publisher interface {
	Publish(event domain.GameEvent)
}

// Notifier is told after every successful state change so the transport
// can fan the new state out. It is invoked with the session lock held;
// implementations must not block and must not call back into the service.
type Notifier interface {
	GameStateChanged(g *domain.Game)
}

// session pairs a game with the mutex that serializes its mutations.
type session struct {
	mu   sync.Mutex
	game *domain.Game
}

// Service owns the table of live games.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session

	repo      Repository
	cache     Cache
	publisher Publisher
	notifier  Notifier
	botDelay  time.Duration
}

func NewService(repo Repository, cache Cache, publisher Publisher, botDelay time.Duration) *Service {
	return &Service{
		sessions:  make(map[string]*session),
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		botDelay:  botDelay,
	}
}

// SetNotifier wires the transport in after construction; the transport
// needs the service too, so this breaks the cycle.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) CreateGame(player1, player2 string, isBotGame bool) *domain.Game {
	g := domain.NewGame(uuid.NewString(), player1, player2, isBotGame)

	s.mu.Lock()
	s.sessions[g.ID] = &session{game: g}
	s.mu.Unlock()

	mode := "pvp"
	if isBotGame {
		mode = "bot"
	}
	metrics.GamesStarted.WithLabelValues(mode).Inc()
	metrics.ActiveGames.Set(float64(s.Count()))

	log.Printf("[GAME] Created game %s: %s vs %s (bot=%v)", g.ID, g.Player1.Username, g.Player2.Username, isBotGame)
	return g
}

func (s *Service) GetGame(id string) (*domain.Game, bool) {
	sess, ok := s.session(id)
	if !ok {
		return nil, false
	}
	return sess.game, true
}

// FindActiveGameByUsername locates the most recent active game a user is
// part of, for reconnects that lost their game id. Status is read under
// each session's lock; the participant and start-time fields never change
// after creation.
func (s *Service) FindActiveGameByUsername(username string) (*domain.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *domain.Game
	for _, sess := range s.sessions {
		g := sess.game
		if !g.HasParticipant(username) {
			continue
		}
		sess.mu.Lock()
		active := g.Status == domain.StatusActive
		sess.mu.Unlock()
		if active && (found == nil || g.StartedAt.After(found.StartedAt)) {
			found = g
		}
	}
	return found, found != nil
}

// GameStateFrame encodes the GAME_STATE_UPDATE frame under the session
// lock so transports never serialize a board mid-move.
func (s *Service) GameStateFrame(gameID string) ([]byte, error) {
	sess, ok := s.session(gameID)
	if !ok {
		return nil, domain.ErrGameNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return domain.GameStateMessage(sess.game)
}

// GameStartFrames encodes the GAME_STARTED frame and the state snapshot
// that follows it, both from the same locked view of the game.
func (s *Service) GameStartFrames(gameID string) (started, state []byte, err error) {
	sess, ok := s.session(gameID)
	if !ok {
		return nil, nil, domain.ErrGameNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	started, err = domain.GameStartedMessage(sess.game)
	if err != nil {
		return nil, nil, err
	}
	state, err = domain.GameStateMessage(sess.game)
	if err != nil {
		return nil, nil, err
	}
	return started, state, nil
}

// GameFinished reports whether a game has ended. ok is false when the
// game is gone from the table.
func (s *Service) GameFinished(gameID string) (finished, ok bool) {
	sess, ok := s.session(gameID)
	if !ok {
		return false, false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.game.IsFinished(), true
}

func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ApplyMove runs one placement through the rules engine and, on success,
// fans out to the notifier, analytics, and persistence. If the move hands
// the turn to the bot, a paced bot move is scheduled.
func (s *Service) ApplyMove(gameID string, disc domain.Disc, column int) error {
	sess, ok := s.session(gameID)
	if !ok {
		return domain.ErrGameNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return s.applyLocked(sess, disc, column)
}

// applyLocked applies one move with sess.mu held.
func (s *Service) applyLocked(sess *session, disc domain.Disc, column int) error {
	g := sess.game

	row, err := g.ApplyMove(disc, column)
	if err != nil {
		return err
	}

	metrics.MovesPlayed.Inc()
	move := domain.Move{GameID: g.ID, Disc: disc, Column: column, Row: row}

	if g.IsFinished() {
		s.finishLocked(g)
	} else if s.publisher != nil {
		s.publisher.Publish(domain.NewMovePlayedEvent(g.ID, move))
	}

	if s.notifier != nil {
		s.notifier.GameStateChanged(g)
	}

	if g.IsBotGame && g.Status == domain.StatusActive && g.CurrentTurn == domain.Player2 {
		gameID := g.ID
		time.AfterFunc(s.botDelay, func() {
			if err := s.playBotMove(gameID); err != nil {
				log.Printf("[GAME] Bot move failed for game %s: %v", gameID, err)
			}
		})
	}

	return nil
}

// playBotMove runs after the pacing delay; the game may have finished in
// the meantime, so every precondition is re-checked under the lock.
func (s *Service) playBotMove(gameID string) error {
	sess, ok := s.session(gameID)
	if !ok {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	g := sess.game
	if !g.IsBotGame {
		return domain.ErrNotBotGame
	}
	if g.Status != domain.StatusActive || g.CurrentTurn != domain.Player2 {
		return nil
	}

	column := bot.BestMove(g.Board, domain.Player2)
	if column == bot.NoMove {
		return nil
	}

	return s.applyLocked(sess, domain.Player2, column)
}

// ActivateBotGame flips a WAITING bot game to ACTIVE once the matchmaking
// deadline has passed with no human opponent.
func (s *Service) ActivateBotGame(gameID string) (*domain.Game, error) {
	sess, ok := s.session(gameID)
	if !ok {
		return nil, domain.ErrGameNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	g := sess.game
	if !g.IsBotGame {
		return nil, domain.ErrNotBotGame
	}
	if g.Status != domain.StatusWaiting {
		return nil, domain.ErrGameNotActive
	}

	g.Status = domain.StatusActive
	log.Printf("[GAME] Bot game %s activated for %s", g.ID, g.Player1.Username)

	if s.publisher != nil {
		s.publisher.Publish(domain.NewBotGameStartedEvent(g))
	}

	return g, nil
}

// CleanupStale evicts finished games older than finishedTTL and unfinished
// games idle longer than activeTTL. Returns the number removed.
func (s *Service) CleanupStale(finishedTTL, activeTTL time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	now := time.Now()
	for id, sess := range s.sessions {
		g := sess.game
		if g.IsFinished() {
			if g.EndedAt != nil && now.Sub(*g.EndedAt) > finishedTTL {
				delete(s.sessions, id)
				count++
			}
		} else if now.Sub(g.LastMoveAt) > activeTTL {
			delete(s.sessions, id)
			count++
		}
	}

	metrics.ActiveGames.Set(float64(len(s.sessions)))
	return count
}

func (s *Service) session(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// finishLocked records a finished game with collaborators. Persistence and
// cache failures are logged and absorbed.
func (s *Service) finishLocked(g *domain.Game) {
	outcome := "win"
	if g.IsDraw {
		outcome = "draw"
	}
	metrics.GamesFinished.WithLabelValues(outcome).Inc()

	if s.publisher != nil {
		s.publisher.Publish(domain.NewGameEndedEvent(g))
	}

	if s.repo == nil {
		return
	}

	// Snapshot before leaving the lock; the save runs in the background.
	saved := *g
	saved.Board = domain.CopyBoard(g.Board)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.repo.SaveGame(ctx, &saved); err != nil {
			log.Printf("[GAME] Error saving game %s: %v", saved.ID, err)
			return
		}
		log.Printf("[GAME] Game %s saved", saved.ID)

		if s.cache != nil {
			if err := s.cache.InvalidateLeaderboard(ctx); err != nil {
				log.Printf("[GAME] Leaderboard cache invalidation failed: %v", err)
			}
		}
	}()
}
