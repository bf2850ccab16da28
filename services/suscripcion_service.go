package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"backend_resto/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Errores del registro de suscripciones
var (
	ErrSuscripcionNoEncontrada    = errors.New("suscripción no encontrada")
	ErrSuscripcionActivaExistente = errors.New("el restaurante ya tiene una suscripción activa")
	ErrTransicionInvalida         = errors.New("transición de estado no permitida")
)

// SuscripcionService administra el ciclo de vida de las suscripciones:
//
//	(ninguna) --crear--> activa
//	activa --suspender--> suspendida
//	suspendida --reactivar--> activa
//	activa|suspendida --cancelar--> cancelada (terminal)
//	activa --[fecha_fin < hoy]--> se trata como expirada en las lecturas
type SuscripcionService struct {
	db      *gorm.DB
	catalog *PlanCatalogService
}

// NewSuscripcionService crea una nueva instancia de SuscripcionService
func NewSuscripcionService(db *gorm.DB) *SuscripcionService {
	return &SuscripcionService{
		db:      db,
		catalog: NewPlanCatalogService(db),
	}
}

// CreateSubscriptionRequest contiene los datos para crear una suscripción
type CreateSubscriptionRequest struct {
	IDRestaurante  uint       `json:"id_restaurante" binding:"required"`
	IDPlan         uint       `json:"id_plan" binding:"required"`
	FechaInicio    *time.Time `json:"fecha_inicio"`
	FechaFin       *time.Time `json:"fecha_fin"`
	AutoRenovacion bool       `json:"auto_renovacion"`
	MetodoPago     string     `json:"metodo_pago"`
}

// GetActiveSubscription devuelve la suscripción activa y vigente del
// restaurante, o nil si no tiene. Una fila con estado "activa" pero con
// fecha_fin vencida no cuenta como activa (expiración perezosa).
func (ss *SuscripcionService) GetActiveSubscription(idRestaurante uint) (*models.Suscripcion, error) {
	var suscripcion models.Suscripcion
	hoy := truncarHoy()

	err := ss.db.Preload("Plan").
		Where("id_restaurante = ? AND estado = ?", idRestaurante, models.EstadoSuscripcionActiva).
		Where("fecha_fin IS NULL OR fecha_fin >= ?", hoy).
		Order("created_at DESC").
		First(&suscripcion).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error al obtener suscripción activa: %w", err)
	}

	return &suscripcion, nil
}

// GetLatestSubscription devuelve la última suscripción del restaurante sin
// importar su estado. La usan los gates para distinguir "nunca tuvo plan"
// de "su plan venció, está suspendido o cancelado".
func (ss *SuscripcionService) GetLatestSubscription(idRestaurante uint) (*models.Suscripcion, error) {
	var suscripcion models.Suscripcion
	err := ss.db.Preload("Plan").
		Where("id_restaurante = ?", idRestaurante).
		Order("created_at DESC").
		First(&suscripcion).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error al obtener última suscripción: %w", err)
	}

	return &suscripcion, nil
}

// GetSubscription obtiene una suscripción por ID
func (ss *SuscripcionService) GetSubscription(id uint) (*models.Suscripcion, error) {
	var suscripcion models.Suscripcion
	if err := ss.db.Preload("Plan").First(&suscripcion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSuscripcionNoEncontrada
		}
		return nil, fmt.Errorf("error al obtener suscripción: %w", err)
	}
	return &suscripcion, nil
}

// Create da de alta una suscripción nueva. Falla si el plan no existe o
// está inactivo, o si el restaurante ya tiene una suscripción activa y
// vigente. Una suscripción "activa" pero vencida se marca expirada antes
// de proceder.
func (ss *SuscripcionService) Create(req CreateSubscriptionRequest) (*models.Suscripcion, error) {
	plan, err := ss.catalog.ValidateActivePlan(req.IDPlan)
	if err != nil {
		return nil, err
	}

	// Invariante: como máximo una suscripción activa por restaurante
	var existente models.Suscripcion
	err = ss.db.Where("id_restaurante = ? AND estado = ?", req.IDRestaurante, models.EstadoSuscripcionActiva).
		Order("created_at DESC").
		First(&existente).Error
	if err == nil {
		if !existente.EstaVencida(time.Now()) {
			return nil, ErrSuscripcionActivaExistente
		}
		// Expiración perezosa: la fila activa ya venció, la marcamos
		if err := ss.db.Model(&existente).Update("estado", models.EstadoSuscripcionExpirada).Error; err != nil {
			return nil, fmt.Errorf("error al expirar suscripción vencida: %w", err)
		}
		log.Printf("ℹ️ Suscripción %d del restaurante %d marcada como expirada", existente.ID, req.IDRestaurante)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error al verificar suscripciones existentes: %w", err)
	}

	inicio := time.Now()
	if req.FechaInicio != nil {
		inicio = *req.FechaInicio
	}

	suscripcion := models.Suscripcion{
		IDRestaurante:  req.IDRestaurante,
		IDPlan:         req.IDPlan,
		FechaInicio:    inicio,
		FechaFin:       req.FechaFin,
		Estado:         models.EstadoSuscripcionActiva,
		AutoRenovacion: req.AutoRenovacion,
		MetodoPago:     req.MetodoPago,
		ReferenciaPago: uuid.NewString(),
	}

	if err := ss.db.Create(&suscripcion).Error; err != nil {
		return nil, fmt.Errorf("error al crear suscripción: %w", err)
	}

	suscripcion.Plan = *plan
	log.Printf("✅ Suscripción %d creada para restaurante %d (plan %s)", suscripcion.ID, req.IDRestaurante, plan.Nombre)
	return &suscripcion, nil
}

// ChangePlan cambia el plan de una suscripción activa y estampa la fecha
// de renovación. Solo se permite sobre suscripciones activas.
func (ss *SuscripcionService) ChangePlan(id uint, idPlan uint) (*models.Suscripcion, error) {
	suscripcion, err := ss.GetSubscription(id)
	if err != nil {
		return nil, err
	}

	if suscripcion.Estado != models.EstadoSuscripcionActiva {
		return nil, ErrTransicionInvalida
	}

	plan, err := ss.catalog.ValidateActivePlan(idPlan)
	if err != nil {
		return nil, err
	}

	ahora := time.Now()
	updates := map[string]interface{}{
		"id_plan":          idPlan,
		"fecha_renovacion": ahora,
	}
	if err := ss.db.Model(suscripcion).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("error al cambiar plan: %w", err)
	}

	suscripcion.IDPlan = idPlan
	suscripcion.Plan = *plan
	suscripcion.FechaRenovacion = &ahora
	log.Printf("✅ Suscripción %d cambiada al plan %s", id, plan.Nombre)
	return suscripcion, nil
}

// Suspend suspende una suscripción activa y registra el motivo
func (ss *SuscripcionService) Suspend(id uint, motivo string) (*models.Suscripcion, error) {
	suscripcion, err := ss.GetSubscription(id)
	if err != nil {
		return nil, err
	}

	if suscripcion.Estado != models.EstadoSuscripcionActiva {
		return nil, ErrTransicionInvalida
	}

	ahora := time.Now()
	updates := map[string]interface{}{
		"estado":            models.EstadoSuscripcionSuspendida,
		"fecha_suspension":  ahora,
		"motivo_suspension": motivo,
	}
	if err := ss.db.Model(suscripcion).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("error al suspender suscripción: %w", err)
	}

	suscripcion.Estado = models.EstadoSuscripcionSuspendida
	suscripcion.FechaSuspension = &ahora
	suscripcion.MotivoSuspension = motivo
	log.Printf("⚠️ Suscripción %d suspendida: %s", id, motivo)
	return suscripcion, nil
}

// Reactivate reactiva una suscripción suspendida y limpia los campos de
// suspensión. El motivo queda solo en el log.
func (ss *SuscripcionService) Reactivate(id uint, motivo string) (*models.Suscripcion, error) {
	suscripcion, err := ss.GetSubscription(id)
	if err != nil {
		return nil, err
	}

	if suscripcion.Estado != models.EstadoSuscripcionSuspendida {
		return nil, ErrTransicionInvalida
	}

	updates := map[string]interface{}{
		"estado":            models.EstadoSuscripcionActiva,
		"fecha_suspension":  nil,
		"motivo_suspension": "",
	}
	if err := ss.db.Model(suscripcion).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("error al reactivar suscripción: %w", err)
	}

	suscripcion.Estado = models.EstadoSuscripcionActiva
	suscripcion.FechaSuspension = nil
	suscripcion.MotivoSuspension = ""
	log.Printf("✅ Suscripción %d reactivada: %s", id, motivo)
	return suscripcion, nil
}

// Cancel cancela una suscripción activa o suspendida. La cancelación es
// terminal y fuerza auto_renovacion en falso.
func (ss *SuscripcionService) Cancel(id uint, motivo string) (*models.Suscripcion, error) {
	suscripcion, err := ss.GetSubscription(id)
	if err != nil {
		return nil, err
	}

	if suscripcion.Estado != models.EstadoSuscripcionActiva &&
		suscripcion.Estado != models.EstadoSuscripcionSuspendida {
		return nil, ErrTransicionInvalida
	}

	ahora := time.Now()
	updates := map[string]interface{}{
		"estado":             models.EstadoSuscripcionCancelada,
		"fecha_cancelacion":  ahora,
		"motivo_cancelacion": motivo,
		"auto_renovacion":    false,
	}
	if err := ss.db.Model(suscripcion).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("error al cancelar suscripción: %w", err)
	}

	suscripcion.Estado = models.EstadoSuscripcionCancelada
	suscripcion.FechaCancelacion = &ahora
	suscripcion.MotivoCancelacion = motivo
	suscripcion.AutoRenovacion = false
	log.Printf("⚠️ Suscripción %d cancelada: %s", id, motivo)
	return suscripcion, nil
}

// IsExpiringSoon indica si la suscripción vence dentro de los próximos días
func (ss *SuscripcionService) IsExpiringSoon(id uint, dias int) (bool, error) {
	suscripcion, err := ss.GetSubscription(id)
	if err != nil {
		return false, err
	}

	restantes, tieneFin := suscripcion.DiasRestantes(time.Now())
	if !tieneFin {
		return false, nil
	}
	return restantes >= 0 && restantes <= dias, nil
}

// IsExpired indica si la suscripción ya pasó su fecha de fin
func (ss *SuscripcionService) IsExpired(id uint) (bool, error) {
	suscripcion, err := ss.GetSubscription(id)
	if err != nil {
		return false, err
	}
	return suscripcion.EstaVencida(time.Now()), nil
}

// GetByRestaurante devuelve el historial de suscripciones de un restaurante
func (ss *SuscripcionService) GetByRestaurante(idRestaurante uint) ([]models.Suscripcion, error) {
	var suscripciones []models.Suscripcion
	err := ss.db.Preload("Plan").
		Where("id_restaurante = ?", idRestaurante).
		Order("created_at DESC").
		Find(&suscripciones).Error
	if err != nil {
		return nil, fmt.Errorf("error al listar suscripciones: %w", err)
	}
	return suscripciones, nil
}

// GetExpiringSoon devuelve las suscripciones activas que vencen dentro de
// los próximos días. La usa la tarea diaria de avisos.
func (ss *SuscripcionService) GetExpiringSoon(dias int) ([]models.Suscripcion, error) {
	hoy := truncarHoy()
	limite := hoy.AddDate(0, 0, dias)

	var suscripciones []models.Suscripcion
	err := ss.db.Preload("Plan").
		Where("estado = ?", models.EstadoSuscripcionActiva).
		Where("fecha_fin IS NOT NULL AND fecha_fin >= ? AND fecha_fin <= ?", hoy, limite).
		Order("fecha_fin ASC").
		Find(&suscripciones).Error
	if err != nil {
		return nil, fmt.Errorf("error al listar suscripciones por vencer: %w", err)
	}
	return suscripciones, nil
}

// MarkExpired marca como expiradas todas las suscripciones activas cuya
// fecha de fin ya pasó. Devuelve cuántas filas se actualizaron. La ejecuta
// la tarea diaria; entre corridas la expiración se detecta perezosamente.
func (ss *SuscripcionService) MarkExpired() (int64, error) {
	hoy := truncarHoy()

	result := ss.db.Model(&models.Suscripcion{}).
		Where("estado = ? AND fecha_fin IS NOT NULL AND fecha_fin < ?", models.EstadoSuscripcionActiva, hoy).
		Update("estado", models.EstadoSuscripcionExpirada)

	if result.Error != nil {
		return 0, fmt.Errorf("error al marcar suscripciones expiradas: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		log.Printf("ℹ️ %d suscripciones marcadas como expiradas", result.RowsAffected)
	}
	return result.RowsAffected, nil
}

// SubscriptionStats resume las suscripciones por estado
type SubscriptionStats struct {
	Total       int64 `json:"total"`
	Activas     int64 `json:"activas"`
	Suspendidas int64 `json:"suspendidas"`
	Canceladas  int64 `json:"canceladas"`
	Expiradas   int64 `json:"expiradas"`
	PorVencer   int64 `json:"por_vencer"`
}

// GetStats devuelve estadísticas agregadas de suscripciones
func (ss *SuscripcionService) GetStats(diasAviso int) (*SubscriptionStats, error) {
	stats := &SubscriptionStats{}

	counts := map[string]*int64{
		models.EstadoSuscripcionActiva:     &stats.Activas,
		models.EstadoSuscripcionSuspendida: &stats.Suspendidas,
		models.EstadoSuscripcionCancelada:  &stats.Canceladas,
		models.EstadoSuscripcionExpirada:   &stats.Expiradas,
	}
	for estado, dest := range counts {
		if err := ss.db.Model(&models.Suscripcion{}).Where("estado = ?", estado).Count(dest).Error; err != nil {
			return nil, fmt.Errorf("error al contar suscripciones %s: %w", estado, err)
		}
	}
	stats.Total = stats.Activas + stats.Suspendidas + stats.Canceladas + stats.Expiradas

	porVencer, err := ss.GetExpiringSoon(diasAviso)
	if err != nil {
		return nil, err
	}
	stats.PorVencer = int64(len(porVencer))

	return stats, nil
}

func truncarHoy() time.Time {
	ahora := time.Now()
	return time.Date(ahora.Year(), ahora.Month(), ahora.Day(), 0, 0, 0, 0, ahora.Location())
}
