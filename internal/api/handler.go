package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/config"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
)

// readyTimeout bounds the store ping of /readyz
const readyTimeout = 3 * time.Second

// redactedName replaces the name of premium listings in the public view
const redactedName = "hidden"

// Backend is what the API reads from
type Backend interface {
	Ping(ctx context.Context) error
	ListInvestments(ctx context.Context) ([]*domain.Investment, error)
}

// Investment is the public view of an open listing
type Investment struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Rating       string    `json:"rating,omitempty"`
	Card         string    `json:"card,omitempty"`
	Risk         string    `json:"risk,omitempty"`
	ConsolePrice string    `json:"console_price,omitempty"`
	PCPrice      string    `json:"pc_price,omitempty"`
	VIP          bool      `json:"vip"`
	CreatedAt    time.Time `json:"created_at"`
}

// Handler serves the health and read endpoints
type Handler struct {
	backend Backend
}

func NewHandler(backend Backend) *Handler {
	return &Handler{backend: backend}
}

// Health reports the process is up
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": config.ServiceName,
	})
}

// Ready reports whether the record store answers
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := h.backend.Ping(ctx); err != nil {
		logger.WarnCtx(ctx, "Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// ListInvestments returns open listings with premium ones redacted
func (h *Handler) ListInvestments(c *gin.Context) {
	invs, err := h.backend.ListInvestments(c.Request.Context())
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), err, zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list investments"})
		return
	}

	out := make([]Investment, 0, len(invs))
	for _, inv := range invs {
		out = append(out, PublicView(inv))
	}
	c.JSON(http.StatusOK, gin.H{"investments": out})
}

// PublicView maps inv to its public form. Premium listings keep only id, flag and time.
func PublicView(inv *domain.Investment) Investment {
	if inv.VIP {
		return Investment{ID: inv.ID, Name: redactedName, VIP: true, CreatedAt: inv.CreatedAt}
	}
	return Investment{
		ID:           inv.ID,
		Name:         inv.Name,
		Rating:       inv.Rating,
		Card:         inv.Card,
		Risk:         inv.Risk,
		ConsolePrice: inv.ConsolePrice.String(),
		PCPrice:      inv.PCPrice.String(),
		CreatedAt:    inv.CreatedAt,
	}
}
