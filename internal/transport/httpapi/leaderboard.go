package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dropfour/server/internal/domain"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// LeaderboardRepository is the read side of the persistence boundary.
type LeaderboardRepository interface {
	TopPlayers(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// LeaderboardCache is an optional read-through cache over TopPlayers.
type LeaderboardCache interface {
	GetLeaderboard(ctx context.Context, limit int) ([]byte, bool)
	SetLeaderboard(ctx context.Context, limit int, data []byte)
}

type LeaderboardHandler struct {
	repo  LeaderboardRepository
	cache LeaderboardCache
}

func NewLeaderboardHandler(repo LeaderboardRepository, cache LeaderboardCache) *LeaderboardHandler {
	return &LeaderboardHandler{repo: repo, cache: cache}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limit := defaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard unavailable"})
		return
	}

	ctx := c.Request.Context()

	if h.cache != nil {
		if data, ok := h.cache.GetLeaderboard(ctx, limit); ok {
			c.Data(http.StatusOK, "application/json", data)
			return
		}
	}

	entries, err := h.repo.TopPlayers(ctx, limit)
	if err != nil {
		log.Printf("[HTTP] Leaderboard query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
		return
	}

	body, err := json.Marshal(gin.H{"leaderboard": entries})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
		return
	}

	if h.cache != nil {
		h.cache.SetLeaderboard(ctx, limit, body)
	}

	c.Data(http.StatusOK, "application/json", body)
}
