package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/fasttrack/internal/models"
)

const keepAliveInterval = 25 * time.Second

// StreamChanges holds a server-sent event stream open and emits a "change" event whenever a
// booking or service row changes. Clients re-fetch the named table on each event. The stream
// ends when the client leaves or when done is closed at server shutdown.
func StreamChanges(feed ChangeSubscriber, done <-chan struct{}, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		// The server's write timeout applies to ordinary responses only.
		if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
			logger.Debug("Could not clear write deadline for change stream", "error", err)
		}

		changes, unsubscribe, err := feed.Subscribe(ctx)
		if err != nil {
			logger.Error("Failed to subscribe to change feed", "error", err)
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse("change feed unavailable"))
			return
		}
		defer unsubscribe()

		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		c.SSEvent("ready", gin.H{"tables": []string{models.BookingsTable, models.ServicesTable}})
		c.Writer.Flush()
		c.Stream(func(w io.Writer) bool {
			select {
			case <-ctx.Done():
				return false
			case <-done:
				return false
			case change, ok := <-changes:
				if !ok {
					return false
				}
				c.SSEvent("change", change)
				return true
			case <-ticker.C:
				c.SSEvent("ping", time.Now().UTC().Unix())
				return true
			}
		})
	}
}
