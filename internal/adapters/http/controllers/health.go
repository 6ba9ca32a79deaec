package controllers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status   string            `json:"status" example:"ok"`
	Services map[string]string `json:"services" example:"postgres:ok,redis:ok,rabbitmq:ok"`
}

type HealthChecker struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthController struct {
	checkers []HealthChecker
	timeout  time.Duration
}

// NewHealthController runs every checker concurrently on each request, all
// sharing one deadline.
func NewHealthController(checkers []HealthChecker) *HealthController {
	return &HealthController{checkers: checkers, timeout: 2 * time.Second}
}

// Health godoc
// @Summary     Health check
// @Description Checks the health of postgres, redis and rabbitmq
// @Tags        health
// @Produce     json
// @Success     200 {object} HealthResponse
// @Failure     503 {object} HealthResponse
// @Router      /health [get]
func (h *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		status   = "ok"
		services = make(map[string]string, len(h.checkers))
	)
	for _, checker := range h.checkers {
		wg.Add(1)
		go func(checker HealthChecker) {
			defer wg.Done()
			err := checker.Check(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				services[checker.Name] = err.Error()
				status = "degraded"
				return
			}
			services[checker.Name] = "ok"
		}(checker)
	}
	wg.Wait()

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{Status: status, Services: services})
}
