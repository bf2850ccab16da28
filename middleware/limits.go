package middleware

import (
	"log"
	"net/http"
	"time"

	"backend_resto/models"
	"backend_resto/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Códigos de denegación de los gates
const (
	CodigoSinSuscripcion        = "NO_ACTIVE_SUBSCRIPTION"
	CodigoSuscripcionExpirada   = "SUBSCRIPTION_EXPIRED"
	CodigoSuscripcionSuspendida = "SUBSCRIPTION_SUSPENDED"
	CodigoSuscripcionCancelada  = "SUBSCRIPTION_CANCELLED"
	CodigoFuncionNoDisponible   = "FEATURE_NOT_AVAILABLE"
	CodigoLimiteExcedido        = "LIMIT_EXCEEDED"
)

// Días de anticipación para la advertencia de vencimiento
const diasAvisoVencimiento = 7

// LimitGate es la cadena de predicados que protege los endpoints
// mutadores: verifica suscripción vigente, funcionalidad contratada y
// capacidad de recursos antes de que corra el handler. Los gates son solo
// lecturas y nunca dejan escapar un error interno: toda falla se convierte
// en una respuesta JSON estructurada.
type LimitGate struct {
	suscripciones *services.SuscripcionService
	catalogo      *services.PlanCatalogService
	contadores    *services.ContadorUsoService
}

// NewLimitGate crea una nueva instancia de LimitGate
func NewLimitGate(db *gorm.DB) *LimitGate {
	return &LimitGate{
		suscripciones: services.NewSuscripcionService(db),
		catalogo:      services.NewPlanCatalogService(db),
		contadores:    services.NewContadorUsoService(db),
	}
}

// denegar corta la cadena con la respuesta estructurada de denegación
func denegar(c *gin.Context, status int, codigo, mensaje string, data gin.H) {
	body := gin.H{
		"success": false,
		"error":   codigo,
		"message": mensaje,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
	c.Abort()
}

// errorInterno responde 500 genérico y registra el detalle solo en el log
func errorInterno(c *gin.Context, contexto string, err error) {
	log.Printf("❌ Error interno en gate (%s): %v", contexto, err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "INTERNAL_ERROR",
		"message": "Error interno al verificar el plan",
	})
	c.Abort()
}

// RequireActiveSubscription exige una suscripción activa y vigente. Deja
// la suscripción y el plan en el contexto para los gates siguientes y
// agrega una advertencia no bloqueante cuando vence en 7 días o menos.
func (lg *LimitGate) RequireActiveSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		idRestaurante := GetRestauranteID(c)
		if idRestaurante == 0 {
			denegar(c, http.StatusBadRequest, "MISSING_TENANT", "No se pudo determinar el restaurante de la petición", nil)
			return
		}

		suscripcion, err := lg.suscripciones.GetActiveSubscription(idRestaurante)
		if err != nil {
			errorInterno(c, "suscripción activa", err)
			return
		}

		if suscripcion == nil {
			// Distinguimos "nunca tuvo plan" de "su plan venció"
			ultima, err := lg.suscripciones.GetLatestSubscription(idRestaurante)
			if err != nil {
				errorInterno(c, "última suscripción", err)
				return
			}

			if ultima != nil && ultima.Estado == models.EstadoSuscripcionActiva && ultima.EstaVencida(time.Now()) {
				dias, _ := ultima.DiasRestantes(time.Now())
				denegar(c, http.StatusForbidden, CodigoSuscripcionExpirada,
					"La suscripción del restaurante está vencida", gin.H{
						"endDate":     ultima.FechaFin,
						"daysOverdue": -dias,
					})
				return
			}
			if ultima != nil && ultima.Estado == models.EstadoSuscripcionExpirada {
				dias := 0
				if ultima.FechaFin != nil {
					d, _ := ultima.DiasRestantes(time.Now())
					dias = -d
				}
				denegar(c, http.StatusForbidden, CodigoSuscripcionExpirada,
					"La suscripción del restaurante está vencida", gin.H{
						"endDate":     ultima.FechaFin,
						"daysOverdue": dias,
					})
				return
			}

			denegar(c, http.StatusForbidden, CodigoSinSuscripcion,
				"El restaurante no tiene una suscripción activa", nil)
			return
		}

		// Advertencia no bloqueante de vencimiento próximo
		if dias, tieneFin := suscripcion.DiasRestantes(time.Now()); tieneFin && dias >= 0 && dias <= diasAvisoVencimiento {
			c.Set("advertencia_vencimiento", dias)
			c.Header("X-Suscripcion-Vence", time.Now().AddDate(0, 0, dias).Format("2006-01-02"))
		}

		c.Set("suscripcion", suscripcion)
		c.Set("plan", &suscripcion.Plan)

		c.Next()
	}
}

// RequireNotSuspended bloquea cuando la última suscripción del
// restaurante está suspendida
func (lg *LimitGate) RequireNotSuspended() gin.HandlerFunc {
	return func(c *gin.Context) {
		idRestaurante := GetRestauranteID(c)
		if idRestaurante == 0 {
			denegar(c, http.StatusBadRequest, "MISSING_TENANT", "No se pudo determinar el restaurante de la petición", nil)
			return
		}

		ultima, err := lg.suscripciones.GetLatestSubscription(idRestaurante)
		if err != nil {
			errorInterno(c, "verificación de suspensión", err)
			return
		}

		if ultima != nil && ultima.Estado == models.EstadoSuscripcionSuspendida {
			denegar(c, http.StatusForbidden, CodigoSuscripcionSuspendida,
				"La suscripción del restaurante está suspendida", gin.H{
					"reason":      ultima.MotivoSuspension,
					"suspendedAt": ultima.FechaSuspension,
				})
			return
		}

		c.Next()
	}
}

// RequireNotCancelled bloquea cuando la última suscripción del
// restaurante está cancelada
func (lg *LimitGate) RequireNotCancelled() gin.HandlerFunc {
	return func(c *gin.Context) {
		idRestaurante := GetRestauranteID(c)
		if idRestaurante == 0 {
			denegar(c, http.StatusBadRequest, "MISSING_TENANT", "No se pudo determinar el restaurante de la petición", nil)
			return
		}

		ultima, err := lg.suscripciones.GetLatestSubscription(idRestaurante)
		if err != nil {
			errorInterno(c, "verificación de cancelación", err)
			return
		}

		if ultima != nil && ultima.Estado == models.EstadoSuscripcionCancelada {
			denegar(c, http.StatusForbidden, CodigoSuscripcionCancelada,
				"La suscripción del restaurante está cancelada", gin.H{
					"reason":      ultima.MotivoCancelacion,
					"cancelledAt": ultima.FechaCancelacion,
				})
			return
		}

		c.Next()
	}
}

// RequireFeature exige que el plan activo incluya la funcionalidad. Debe
// correr después de RequireActiveSubscription.
func (lg *LimitGate) RequireFeature(f models.Feature) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !models.IsValidFeature(f) {
			denegar(c, http.StatusBadRequest, "INVALID_FEATURE", "Funcionalidad desconocida: "+string(f), nil)
			return
		}

		plan := GetPlanActivo(c)
		if plan == nil {
			denegar(c, http.StatusForbidden, CodigoSinSuscripcion,
				"El restaurante no tiene una suscripción activa", nil)
			return
		}

		if !plan.HasFeature(f) {
			disponibles, err := lg.catalogo.GetPlansWithFeature(f)
			if err != nil {
				errorInterno(c, "planes con funcionalidad", err)
				return
			}

			nombres := make([]string, 0, len(disponibles))
			for _, p := range disponibles {
				nombres = append(nombres, p.Nombre)
			}

			denegar(c, http.StatusForbidden, CodigoFuncionNoDisponible,
				"Tu plan actual no incluye esta funcionalidad", gin.H{
					"feature":        string(f),
					"plan":           plan.Nombre,
					"availablePlans": nombres,
				})
			return
		}

		c.Next()
	}
}

// RequireResourceCapacity exige capacidad disponible para agregar cantidad
// unidades del recurso. Debe correr después de RequireActiveSubscription.
// La verificación y la inserción posterior no están serializadas: dos
// peticiones concurrentes pueden pasar ambas y exceder el techo por un
// margen pequeño, que el siguiente reconteo refleja como alerta crítica.
func (lg *LimitGate) RequireResourceCapacity(recurso models.Recurso, cantidad int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !models.IsValidRecurso(recurso) {
			denegar(c, http.StatusBadRequest, "INVALID_RESOURCE", "Recurso desconocido: "+string(recurso), nil)
			return
		}
		if cantidad <= 0 {
			cantidad = 1
		}

		idRestaurante := GetRestauranteID(c)
		if idRestaurante == 0 {
			denegar(c, http.StatusBadRequest, "MISSING_TENANT", "No se pudo determinar el restaurante de la petición", nil)
			return
		}

		plan := GetPlanActivo(c)
		if plan == nil {
			denegar(c, http.StatusForbidden, CodigoSinSuscripcion,
				"El restaurante no tiene una suscripción activa", nil)
			return
		}

		permitido, err := lg.contadores.CanAdd(idRestaurante, recurso, cantidad)
		if err != nil {
			errorInterno(c, "capacidad de recurso", err)
			return
		}

		if !permitido {
			uso, err := lg.contadores.GetCurrent(idRestaurante)
			if err != nil {
				errorInterno(c, "uso actual", err)
				return
			}

			denegar(c, http.StatusForbidden, CodigoLimiteExcedido,
				"Has alcanzado el límite de "+string(recurso)+" de tu plan", gin.H{
					"resource":     string(recurso),
					"ceiling":      plan.Limite(recurso),
					"currentUsage": uso[recurso].UsoActual,
					"plan":         plan.Nombre,
				})
			return
		}

		c.Next()
	}
}

// GetSuscripcionActiva devuelve la suscripción dejada en el contexto por
// RequireActiveSubscription, nil si no hay
func GetSuscripcionActiva(c *gin.Context) *models.Suscripcion {
	if s, exists := c.Get("suscripcion"); exists {
		if suscripcion, ok := s.(*models.Suscripcion); ok {
			return suscripcion
		}
	}
	return nil
}

// GetPlanActivo devuelve el plan dejado en el contexto por
// RequireActiveSubscription, nil si no hay
func GetPlanActivo(c *gin.Context) *models.Plan {
	if p, exists := c.Get("plan"); exists {
		if plan, ok := p.(*models.Plan); ok {
			return plan
		}
	}
	return nil
}
