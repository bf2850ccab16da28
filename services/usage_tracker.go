package services

import (
	"log"

	"backend_resto/models"

	"gorm.io/gorm"
)

// UsageTracker corre después de que una operación protegida termina con
// éxito: recuenta los contadores del restaurante y evalúa las alertas.
// Ningún fallo de este camino debe afectar la operación que lo disparó:
// todo error se registra y se absorbe.
type UsageTracker struct {
	contadores *ContadorUsoService
	alertas    *AlertaService
}

// NewUsageTracker crea una nueva instancia de UsageTracker
func NewUsageTracker(db *gorm.DB) *UsageTracker {
	return &UsageTracker{
		contadores: NewContadorUsoService(db),
		alertas:    NewAlertaService(db),
	}
}

// NewUsageTrackerCon permite inyectar servicios ya construidos
func NewUsageTrackerCon(contadores *ContadorUsoService, alertas *AlertaService) *UsageTracker {
	return &UsageTracker{contadores: contadores, alertas: alertas}
}

// Track recuenta el consumo del restaurante y crea las alertas que
// correspondan. Seguro para llamar en una goroutine tras responder.
func (ut *UsageTracker) Track(idRestaurante uint) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Pánico en seguimiento de uso del restaurante %d: %v", idRestaurante, r)
		}
	}()

	contadores, err := ut.contadores.RecomputeAll(idRestaurante)
	if err != nil {
		log.Printf("❌ Error al recontar uso del restaurante %d: %v", idRestaurante, err)
		return
	}
	if len(contadores) == 0 {
		return
	}

	// Proyectamos directamente los contadores recién medidos
	idPlan := contadores[0].IDPlan
	uso := make(map[models.Recurso]UsoRecurso, len(contadores))
	for _, c := range contadores {
		uso[c.Recurso] = UsoRecurso{
			UsoActual:  c.UsoActual,
			LimitePlan: c.LimitePlan,
			Porcentaje: redondear2(c.Porcentaje()),
			Ilimitado:  c.Ilimitado(),
		}
	}

	if _, err := ut.alertas.EvaluateUsage(idRestaurante, idPlan, uso); err != nil {
		log.Printf("❌ Error al evaluar alertas del restaurante %d: %v", idRestaurante, err)
	}
}
