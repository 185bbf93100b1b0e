package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talentforge/authhub/internal/http/middlewares"
)

// Page endpoints. The real UI lives in the frontend; these exist so the route
// gate has public and protected paths to guard.

type PagesHandler struct{}

func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

func (h *PagesHandler) Login(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"page": "login",
		"from": ctx.Query("from"),
	})
}

func (h *PagesHandler) Signup(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"page": "signup"})
}

func (h *PagesHandler) Dashboard(ctx *gin.Context) {
	email, _ := middlewares.EmailFromContext(ctx)
	role, _ := middlewares.RoleFromContext(ctx)

	ctx.JSON(http.StatusOK, gin.H{
		"page":  "dashboard",
		"email": email,
		"role":  role,
	})
}
