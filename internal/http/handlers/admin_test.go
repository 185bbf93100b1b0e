package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/talentforge/authhub/internal/http/handlers"
)

type fakeUserCounter struct {
	countFn func(ctx context.Context) (map[string]int, error)
}

func (f *fakeUserCounter) CountByRole(ctx context.Context) (map[string]int, error) {
	return f.countFn(ctx)
}

func TestUserStatsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns counts per role", func(t *testing.T) {
		counter := &fakeUserCounter{
			countFn: func(ctx context.Context) (map[string]int, error) {
				return map[string]int{"candidate": 7, "platform_admin": 1}, nil
			},
		}

		router := gin.New()
		router.GET("/api/admin/users/stats", handlers.NewAdminHandler(counter).UserStats)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/users/stats", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
		}

		var body struct {
			UsersByRole map[string]int `json:"usersByRole"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.UsersByRole["candidate"] != 7 {
			t.Fatalf("candidate count = %d", body.UsersByRole["candidate"])
		}
	})

	t.Run("store failure is a 500", func(t *testing.T) {
		counter := &fakeUserCounter{
			countFn: func(ctx context.Context) (map[string]int, error) {
				return nil, context.DeadlineExceeded
			},
		}

		router := gin.New()
		router.GET("/api/admin/users/stats", handlers.NewAdminHandler(counter).UserStats)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/users/stats", nil))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d", w.Code)
		}
	})
}
