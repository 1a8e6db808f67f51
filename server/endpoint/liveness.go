package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// LivenessResponse is the /livez body.
type LivenessResponse struct {
	Status        string  `json:"status"`
	Service       string  `json:"service"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
}

// Liveness answers as long as the process can serve HTTP. It never consults
// components, so a stuck script provider does not get the process restarted.
func Liveness(serviceName string, started time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, LivenessResponse{
			Status:        "alive",
			Service:       serviceName,
			UptimeSeconds: time.Since(started).Seconds(),
			Goroutines:    runtime.NumGoroutine(),
		})
	}
}
