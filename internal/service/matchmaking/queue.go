package matchmaking

import (
	"log"
	"sync"
	"time"

	"github.com/dropfour/server/internal/domain"
	"github.com/dropfour/server/internal/metrics"
)

// GameService is the slice of the session manager the queue needs.
type GameService interface {
	CreateGame(player1, player2 string, isBotGame bool) *domain.Game
	GetGame(id string) (*domain.Game, bool)
	ActivateBotGame(id string) (*domain.Game, error)
}

// entry is one waiting player. The timer fires the bot fallback and is
// stopped on pairing, re-join, or removal.
type entry struct {
	Username string
	GameID   string
	JoinedAt time.Time
	timer    *time.Timer
}

// Queue pairs waiting players FIFO, falling back to a bot opponent when
// the deadline passes.
type Queue struct {
	mu      sync.Mutex
	entries []*entry
	games   GameService
	timeout time.Duration

	onBotGameActivated func(username string, g *domain.Game)
}

func NewQueue(games GameService, timeout time.Duration) *Queue {
	return &Queue{
		games:   games,
		timeout: timeout,
	}
}

// SetBotGameActivatedCallback registers the notification invoked when a
// solo player's deadline passes and their bot game goes ACTIVE.
func (q *Queue) SetBotGameActivatedCallback(fn func(username string, g *domain.Game)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onBotGameActivated = fn
}

// Join enters a player into matchmaking. started reports whether the
// returned game is already ACTIVE. A player already waiting gets their
// existing game back; the self re-join check runs before pairing so a user
// can never be matched with themselves.
func (q *Queue) Join(username string) (*domain.Game, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if i := q.indexOf(username); i >= 0 {
		e := q.removeAt(i)
		if g, ok := q.games.GetGame(e.GameID); ok {
			return g, g.Status == domain.StatusActive, nil
		}
		// Game was evicted; fall through to a fresh join.
	}

	if len(q.entries) == 0 {
		g := q.games.CreateGame(username, "", true)
		e := &entry{
			Username: username,
			GameID:   g.ID,
			JoinedAt: time.Now(),
		}
		e.timer = time.AfterFunc(q.timeout, func() {
			q.handleDeadline(username)
		})
		q.entries = append(q.entries, e)
		metrics.PlayersWaiting.Set(float64(len(q.entries)))

		log.Printf("[MATCH] %s queued, bot fallback in %s", username, q.timeout)
		return g, false, nil
	}

	head := q.removeAt(0)
	g := q.games.CreateGame(head.Username, username, false)

	log.Printf("[MATCH] Paired %s vs %s in game %s", head.Username, username, g.ID)
	return g, true, nil
}

// Remove drops a player from the queue and cancels their deadline timer.
// Removing an absent player is a no-op.
func (q *Queue) Remove(username string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if i := q.indexOf(username); i >= 0 {
		q.removeAt(i)
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// handleDeadline fires when a player waited out the matchmaking deadline.
// The entry may already be gone if they were paired or re-joined.
func (q *Queue) handleDeadline(username string) {
	q.mu.Lock()

	i := q.indexOf(username)
	if i < 0 {
		q.mu.Unlock()
		return
	}
	e := q.removeAt(i)
	cb := q.onBotGameActivated
	q.mu.Unlock()

	g, err := q.games.ActivateBotGame(e.GameID)
	if err != nil {
		log.Printf("[MATCH] Bot fallback for %s failed: %v", username, err)
		return
	}

	log.Printf("[MATCH] %s matched with bot after deadline (game %s)", username, g.ID)
	if cb != nil {
		cb(username, g)
	}
}

// indexOf and removeAt are called with q.mu held.
func (q *Queue) indexOf(username string) int {
	for i, e := range q.entries {
		if e.Username == username {
			return i
		}
	}
	return -1
}

func (q *Queue) removeAt(i int) *entry {
	e := q.entries[i]
	if e.timer != nil {
		e.timer.Stop()
	}
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
	metrics.PlayersWaiting.Set(float64(len(q.entries)))
	return e
}
