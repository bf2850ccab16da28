package services

import (
	"fmt"
	"log"

	"backend_resto/config"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// SchedulerService corre las tareas de mantenimiento del motor de cuotas:
// expiración de suscripciones, purga de alertas, despacho de
// notificaciones y reconteo mensual.
type SchedulerService struct {
	cron           *cron.Cron
	suscripciones  *SuscripcionService
	contadores     *ContadorUsoService
	alertas        *AlertaService
	notificaciones *NotificacionService
	cfg            *config.Config
}

// NewSchedulerService crea una nueva instancia de SchedulerService
func NewSchedulerService(db *gorm.DB, cfg *config.Config) *SchedulerService {
	return &SchedulerService{
		cron:           cron.New(cron.WithSeconds()),
		suscripciones:  NewSuscripcionService(db),
		contadores:     NewContadorUsoService(db),
		alertas:        NewAlertaServiceConVentana(db, cfg.Limites.VentanaDedupAlertas),
		notificaciones: NewNotificacionService(db, cfg),
		cfg:            cfg,
	}
}

// Start registra y arranca las tareas programadas
func (sch *SchedulerService) Start() error {
	// Barrido diario de suscripciones vencidas (00:30)
	if _, err := sch.cron.AddFunc("0 30 0 * * *", sch.expireSubscriptions); err != nil {
		return fmt.Errorf("failed to add expiry job: %w", err)
	}

	// Purga diaria de alertas antiguas (02:00)
	if _, err := sch.cron.AddFunc("0 0 2 * * *", sch.purgeOldAlerts); err != nil {
		return fmt.Errorf("failed to add purge job: %w", err)
	}

	// Despacho de alertas pendientes cada 15 minutos
	if _, err := sch.cron.AddFunc("0 */15 * * * *", sch.dispatchAlerts); err != nil {
		return fmt.Errorf("failed to add dispatch job: %w", err)
	}

	// Aviso diario de suscripciones por vencer (09:00)
	if _, err := sch.cron.AddFunc("0 0 9 * * *", sch.notifyExpiring); err != nil {
		return fmt.Errorf("failed to add expiring-notice job: %w", err)
	}

	// Reconteo masivo al abrir cada mes (día 1, 00:15)
	if _, err := sch.cron.AddFunc("0 15 0 1 * *", sch.monthlyRecompute); err != nil {
		return fmt.Errorf("failed to add monthly recompute job: %w", err)
	}

	sch.cron.Start()
	log.Println("✅ Planificador de tareas iniciado")
	return nil
}

// Stop detiene el planificador
func (sch *SchedulerService) Stop() {
	sch.cron.Stop()
	log.Println("Planificador de tareas detenido")
}

func (sch *SchedulerService) expireSubscriptions() {
	if _, err := sch.suscripciones.MarkExpired(); err != nil {
		log.Printf("❌ Error en el barrido de suscripciones vencidas: %v", err)
	}
}

func (sch *SchedulerService) purgeOldAlerts() {
	if _, err := sch.alertas.DeleteOld(sch.cfg.Limites.RetencionAlertasDias); err != nil {
		log.Printf("❌ Error en la purga de alertas antiguas: %v", err)
	}
}

func (sch *SchedulerService) dispatchAlerts() {
	if _, err := sch.notificaciones.DispatchPendingAlerts(); err != nil {
		log.Printf("❌ Error en el despacho de alertas: %v", err)
	}
}

func (sch *SchedulerService) notifyExpiring() {
	if _, err := sch.notificaciones.NotifyExpiringSubscriptions(sch.cfg.Limites.DiasAvisoVencimiento); err != nil {
		log.Printf("❌ Error en el aviso de vencimientos: %v", err)
	}
}

func (sch *SchedulerService) monthlyRecompute() {
	if _, err := sch.contadores.RecomputeAllActive(); err != nil {
		log.Printf("❌ Error en el reconteo mensual: %v", err)
	}
}
