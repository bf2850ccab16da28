package middleware

import (
	"github.com/gin-gonic/gin"

	"backend_resto/services"
)

// TrackingMiddleware dispara el seguimiento de uso después de que el
// handler protegido respondió con éxito. Es un paso explícito posterior
// al handler: corre cuando c.Next() retorna, con la transacción de la
// mutación ya confirmada, y nunca bloquea ni afecta la respuesta.
type TrackingMiddleware struct {
	tracker *services.UsageTracker
}

// NewTrackingMiddleware crea una nueva instancia de TrackingMiddleware
func NewTrackingMiddleware(tracker *services.UsageTracker) *TrackingMiddleware {
	return &TrackingMiddleware{tracker: tracker}
}

// TrackUsage recuenta contadores y evalúa alertas tras cada mutación 2xx
func (tm *TrackingMiddleware) TrackUsage() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		idRestaurante := GetRestauranteID(c)
		if idRestaurante == 0 {
			return
		}

		// Track absorbe sus propios errores y pánicos
		go tm.tracker.Track(idRestaurante)
	}
}
