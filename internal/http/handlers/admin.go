package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/talentforge/authhub/internal/config"
)

type UserCounter interface {
	CountByRole(ctx context.Context) (map[string]int, error)
}

// AdminHandler serves platform_admin-only views.
type AdminHandler struct {
	users UserCounter
}

func NewAdminHandler(users UserCounter) *AdminHandler {
	return &AdminHandler{users: users}
}

func (h *AdminHandler) UserStats(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	counts, err := h.users.CountByRole(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not load user stats")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"usersByRole": counts})
}
