package app

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// HandleReadiness reports the database connection status.
func (a *App) HandleReadiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	c.Request = c.Request.WithContext(ctx)

	c.JSON(http.StatusOK, a.db.Health())
}

// HandleLiveness reports that the process itself is up.
func (a *App) HandleLiveness(c *gin.Context) {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	c.JSON(http.StatusOK, LivenessResponse{
		Status:     "ok",
		Host:       host,
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	})
}
