package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"backend_resto/models"

	"gorm.io/gorm"
)

// Errores del motor de alertas
var (
	ErrAlertaNoEncontrada = errors.New("alerta no encontrada")
)

// Umbral mínimo para generar una alerta (porcentaje de uso)
const UmbralCreacionAlerta = 80.0

// Ventana por defecto de deduplicación de alertas del mismo tipo
const VentanaDedupDefault = 24 * time.Hour

// AlertaService evalúa los contadores contra los techos del plan y
// administra el ciclo de vida de las alertas de límites:
// pendiente -> enviada -> resuelta | ignorada.
type AlertaService struct {
	db           *gorm.DB
	ventanaDedup time.Duration
}

// NewAlertaService crea una nueva instancia de AlertaService
func NewAlertaService(db *gorm.DB) *AlertaService {
	return &AlertaService{db: db, ventanaDedup: VentanaDedupDefault}
}

// NewAlertaServiceConVentana permite ajustar la ventana de deduplicación
func NewAlertaServiceConVentana(db *gorm.DB, ventana time.Duration) *AlertaService {
	return &AlertaService{db: db, ventanaDedup: ventana}
}

// UrgenciaParaPorcentaje mapea el porcentaje de uso al nivel de urgencia:
// >=100 critico, >=90 alto, >=80 medio, resto bajo.
func UrgenciaParaPorcentaje(pct float64) string {
	switch {
	case pct >= 100:
		return models.UrgenciaCritica
	case pct >= 90:
		return models.UrgenciaAlta
	case pct >= 80:
		return models.UrgenciaMedia
	default:
		return models.UrgenciaBaja
	}
}

// ShouldCreate decide si corresponde crear una alerta: falso por debajo
// del umbral de 80%, y falso si ya existe una alerta no terminal del mismo
// tipo para el restaurante dentro de la ventana de deduplicación.
func (as *AlertaService) ShouldCreate(idRestaurante uint, tipoAlerta string, pct float64) (bool, error) {
	if pct < UmbralCreacionAlerta {
		return false, nil
	}

	corte := time.Now().Add(-as.ventanaDedup)

	var count int64
	err := as.db.Model(&models.AlertaLimite{}).
		Where("id_restaurante = ? AND tipo_alerta = ?", idRestaurante, tipoAlerta).
		Where("estado IN ?", []string{models.EstadoAlertaPendiente, models.EstadoAlertaEnviada}).
		Where("fecha_alerta >= ?", corte).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("error al verificar alertas recientes: %w", err)
	}

	return count == 0, nil
}

// CreateAlertRequest contiene los datos para crear una alerta
type CreateAlertRequest struct {
	IDRestaurante uint
	IDPlan        uint
	Recurso       models.Recurso
	ValorActual   int
	ValorLimite   int
	Porcentaje    float64
	Mensaje       string
}

// Create registra una alerta nueva en estado pendiente
func (as *AlertaService) Create(req CreateAlertRequest) (*models.AlertaLimite, error) {
	mensaje := req.Mensaje
	if mensaje == "" {
		mensaje = MensajeAlerta(req.Recurso, req.ValorActual, req.ValorLimite, req.Porcentaje)
	}

	alerta := models.AlertaLimite{
		IDRestaurante: req.IDRestaurante,
		IDPlan:        req.IDPlan,
		TipoAlerta:    models.TipoAlertaParaRecurso(req.Recurso),
		Recurso:       req.Recurso,
		ValorActual:   req.ValorActual,
		ValorLimite:   req.ValorLimite,
		PorcentajeUso: req.Porcentaje,
		Estado:        models.EstadoAlertaPendiente,
		NivelUrgencia: UrgenciaParaPorcentaje(req.Porcentaje),
		Mensaje:       mensaje,
		FechaAlerta:   time.Now(),
	}

	if err := as.db.Create(&alerta).Error; err != nil {
		return nil, fmt.Errorf("error al crear alerta: %w", err)
	}

	log.Printf("⚠️ Alerta de límite creada para restaurante %d: %s", req.IDRestaurante, mensaje)
	return &alerta, nil
}

// MensajeAlerta genera el texto de la alerta según la banda de urgencia
func MensajeAlerta(recurso models.Recurso, actual, limite int, pct float64) string {
	nombre := nombreRecurso(recurso)
	switch {
	case pct >= 100:
		return fmt.Sprintf("Has excedido el límite de %s (%d/%d). Actualiza tu plan para continuar usando esta funcionalidad.", nombre, actual, limite)
	case pct >= 90:
		return fmt.Sprintf("Límite crítico de %s alcanzado (%d/%d, %.0f%%). Actualización de plan requerida.", nombre, actual, limite, pct)
	default:
		return fmt.Sprintf("Has alcanzado el %.0f%% del límite de %s (%d/%d). Considera actualizar tu plan.", pct, nombre, actual, limite)
	}
}

func nombreRecurso(r models.Recurso) string {
	switch r {
	case models.RecursoTransacciones:
		return "transacciones mensuales"
	case models.RecursoAlmacenamiento:
		return "almacenamiento"
	default:
		return string(r)
	}
}

// EvaluateUsage aplica la política de umbrales sobre los contadores del
// restaurante y crea las alertas que correspondan. Devuelve las creadas.
func (as *AlertaService) EvaluateUsage(idRestaurante uint, idPlan uint, uso map[models.Recurso]UsoRecurso) ([]models.AlertaLimite, error) {
	creadas := make([]models.AlertaLimite, 0)

	for recurso, u := range uso {
		// Solo techos finitos generan alertas
		if u.Ilimitado {
			continue
		}

		tipo := models.TipoAlertaParaRecurso(recurso)
		ok, err := as.ShouldCreate(idRestaurante, tipo, u.Porcentaje)
		if err != nil {
			return creadas, err
		}
		if !ok {
			continue
		}

		alerta, err := as.Create(CreateAlertRequest{
			IDRestaurante: idRestaurante,
			IDPlan:        idPlan,
			Recurso:       recurso,
			ValorActual:   u.UsoActual,
			ValorLimite:   u.LimitePlan,
			Porcentaje:    u.Porcentaje,
		})
		if err != nil {
			return creadas, err
		}
		creadas = append(creadas, *alerta)
	}

	return creadas, nil
}

// Get obtiene una alerta por ID
func (as *AlertaService) Get(id uint) (*models.AlertaLimite, error) {
	var alerta models.AlertaLimite
	if err := as.db.First(&alerta, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertaNoEncontrada
		}
		return nil, fmt.Errorf("error al obtener alerta: %w", err)
	}
	return &alerta, nil
}

// MarkSent marca la alerta como enviada e incrementa el contador de
// notificaciones despachadas
func (as *AlertaService) MarkSent(id uint) (*models.AlertaLimite, error) {
	alerta, err := as.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"estado":                  models.EstadoAlertaEnviada,
		"notificaciones_enviadas": gorm.Expr("notificaciones_enviadas + 1"),
	}
	if err := as.db.Model(alerta).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("error al marcar alerta enviada: %w", err)
	}

	alerta.Estado = models.EstadoAlertaEnviada
	alerta.NotificacionesEnviadas++
	return alerta, nil
}

// Resolve cierra la alerta con un mensaje de resolución
func (as *AlertaService) Resolve(id uint, mensaje string) (*models.AlertaLimite, error) {
	alerta, err := as.Get(id)
	if err != nil {
		return nil, err
	}

	ahora := time.Now()
	updates := map[string]interface{}{
		"estado":             models.EstadoAlertaResuelta,
		"mensaje_resolucion": mensaje,
		"fecha_resolucion":   ahora,
	}
	if err := as.db.Model(alerta).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("error al resolver alerta: %w", err)
	}

	alerta.Estado = models.EstadoAlertaResuelta
	alerta.MensajeResolucion = mensaje
	alerta.FechaResolucion = &ahora
	return alerta, nil
}

// Ignore descarta la alerta registrando el motivo
func (as *AlertaService) Ignore(id uint, motivo string) (*models.AlertaLimite, error) {
	alerta, err := as.Get(id)
	if err != nil {
		return nil, err
	}

	ahora := time.Now()
	updates := map[string]interface{}{
		"estado":             models.EstadoAlertaIgnorada,
		"mensaje_resolucion": motivo,
		"fecha_resolucion":   ahora,
	}
	if err := as.db.Model(alerta).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("error al ignorar alerta: %w", err)
	}

	alerta.Estado = models.EstadoAlertaIgnorada
	alerta.MensajeResolucion = motivo
	alerta.FechaResolucion = &ahora
	return alerta, nil
}

// Update actualiza campos sueltos de una alerta (uso administrativo)
func (as *AlertaService) Update(id uint, updates map[string]interface{}) (*models.AlertaLimite, error) {
	alerta, err := as.Get(id)
	if err != nil {
		return nil, err
	}

	if err := as.db.Model(alerta).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("error al actualizar alerta: %w", err)
	}
	return as.Get(id)
}

// GetByRestaurante lista las alertas de un restaurante, opcionalmente
// filtradas por estado, más recientes primero
func (as *AlertaService) GetByRestaurante(idRestaurante uint, estado string) ([]models.AlertaLimite, error) {
	query := as.db.Where("id_restaurante = ?", idRestaurante)
	if estado != "" {
		query = query.Where("estado = ?", estado)
	}

	var alertas []models.AlertaLimite
	if err := query.Order("fecha_alerta DESC").Find(&alertas).Error; err != nil {
		return nil, fmt.Errorf("error al listar alertas: %w", err)
	}
	return alertas, nil
}

// GetByUrgencia lista alertas por nivel de urgencia
func (as *AlertaService) GetByUrgencia(urgencia string) ([]models.AlertaLimite, error) {
	var alertas []models.AlertaLimite
	err := as.db.Where("nivel_urgencia = ?", urgencia).
		Order("fecha_alerta DESC").
		Find(&alertas).Error
	if err != nil {
		return nil, fmt.Errorf("error al listar alertas por urgencia: %w", err)
	}
	return alertas, nil
}

// GetByRecurso lista alertas por tipo de recurso
func (as *AlertaService) GetByRecurso(recurso models.Recurso) ([]models.AlertaLimite, error) {
	var alertas []models.AlertaLimite
	err := as.db.Where("recurso = ?", recurso).
		Order("fecha_alerta DESC").
		Find(&alertas).Error
	if err != nil {
		return nil, fmt.Errorf("error al listar alertas por recurso: %w", err)
	}
	return alertas, nil
}

// GetCriticalUnresolved lista las alertas críticas que siguen abiertas
func (as *AlertaService) GetCriticalUnresolved() ([]models.AlertaLimite, error) {
	var alertas []models.AlertaLimite
	err := as.db.Where("nivel_urgencia = ?", models.UrgenciaCritica).
		Where("estado IN ?", []string{models.EstadoAlertaPendiente, models.EstadoAlertaEnviada}).
		Order("fecha_alerta DESC").
		Find(&alertas).Error
	if err != nil {
		return nil, fmt.Errorf("error al listar alertas críticas: %w", err)
	}
	return alertas, nil
}

// GetPendingNotification lista las alertas pendientes de notificar con
// hasta 7 días de antigüedad; las más viejas se consideran caducas para
// el despacho
func (as *AlertaService) GetPendingNotification() ([]models.AlertaLimite, error) {
	corte := time.Now().AddDate(0, 0, -7)

	var alertas []models.AlertaLimite
	err := as.db.Where("estado = ? AND fecha_alerta >= ?", models.EstadoAlertaPendiente, corte).
		Order("fecha_alerta ASC").
		Find(&alertas).Error
	if err != nil {
		return nil, fmt.Errorf("error al listar alertas pendientes: %w", err)
	}
	return alertas, nil
}

// DeleteOld purga las alertas resueltas o ignoradas más viejas que el
// corte. Devuelve cuántas se eliminaron.
func (as *AlertaService) DeleteOld(dias int) (int64, error) {
	corte := time.Now().AddDate(0, 0, -dias)

	result := as.db.Where("estado IN ?", []string{models.EstadoAlertaResuelta, models.EstadoAlertaIgnorada}).
		Where("fecha_alerta < ?", corte).
		Delete(&models.AlertaLimite{})
	if result.Error != nil {
		return 0, fmt.Errorf("error al purgar alertas antiguas: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		log.Printf("🗑️ %d alertas antiguas eliminadas (más de %d días)", result.RowsAffected, dias)
	}
	return result.RowsAffected, nil
}

// AlertStats resume las alertas por estado y urgencia
type AlertStats struct {
	Total         int64 `json:"total"`
	Pendientes    int64 `json:"pendientes"`
	Enviadas      int64 `json:"enviadas"`
	Resueltas     int64 `json:"resueltas"`
	Ignoradas     int64 `json:"ignoradas"`
	Criticas      int64 `json:"criticas"`
	Altas         int64 `json:"altas"`
	Medias        int64 `json:"medias"`
	Ultimos7Dias  int64 `json:"ultimos_7_dias"`
	Ultimos30Dias int64 `json:"ultimos_30_dias"`
}

// GetStats devuelve estadísticas agregadas de alertas
func (as *AlertaService) GetStats() (*AlertStats, error) {
	stats := &AlertStats{}

	porEstado := map[string]*int64{
		models.EstadoAlertaPendiente: &stats.Pendientes,
		models.EstadoAlertaEnviada:   &stats.Enviadas,
		models.EstadoAlertaResuelta:  &stats.Resueltas,
		models.EstadoAlertaIgnorada:  &stats.Ignoradas,
	}
	for estado, dest := range porEstado {
		if err := as.db.Model(&models.AlertaLimite{}).Where("estado = ?", estado).Count(dest).Error; err != nil {
			return nil, fmt.Errorf("error al contar alertas %s: %w", estado, err)
		}
	}
	stats.Total = stats.Pendientes + stats.Enviadas + stats.Resueltas + stats.Ignoradas

	porUrgencia := map[string]*int64{
		models.UrgenciaCritica: &stats.Criticas,
		models.UrgenciaAlta:    &stats.Altas,
		models.UrgenciaMedia:   &stats.Medias,
	}
	for urgencia, dest := range porUrgencia {
		if err := as.db.Model(&models.AlertaLimite{}).Where("nivel_urgencia = ?", urgencia).Count(dest).Error; err != nil {
			return nil, fmt.Errorf("error al contar alertas %s: %w", urgencia, err)
		}
	}

	ahora := time.Now()
	if err := as.db.Model(&models.AlertaLimite{}).
		Where("fecha_alerta >= ?", ahora.AddDate(0, 0, -7)).
		Count(&stats.Ultimos7Dias).Error; err != nil {
		return nil, fmt.Errorf("error al contar alertas de 7 días: %w", err)
	}
	if err := as.db.Model(&models.AlertaLimite{}).
		Where("fecha_alerta >= ?", ahora.AddDate(0, 0, -30)).
		Count(&stats.Ultimos30Dias).Error; err != nil {
		return nil, fmt.Errorf("error al contar alertas de 30 días: %w", err)
	}

	return stats, nil
}

// AlertCountByKey es un conteo agrupado genérico
type AlertCountByKey struct {
	Clave string `json:"clave"`
	Total int64  `json:"total"`
}

// GetStatsByTipo devuelve el total de alertas agrupado por tipo
func (as *AlertaService) GetStatsByTipo() ([]AlertCountByKey, error) {
	var result []AlertCountByKey
	err := as.db.Model(&models.AlertaLimite{}).
		Select("tipo_alerta AS clave, COUNT(*) AS total").
		Group("tipo_alerta").
		Order("total DESC").
		Scan(&result).Error
	if err != nil {
		return nil, fmt.Errorf("error al agrupar alertas por tipo: %w", err)
	}
	return result, nil
}

// GetStatsByRestaurante devuelve el total de alertas abiertas por restaurante
func (as *AlertaService) GetStatsByRestaurante() ([]AlertCountByKey, error) {
	var result []AlertCountByKey
	err := as.db.Model(&models.AlertaLimite{}).
		Select("CAST(id_restaurante AS TEXT) AS clave, COUNT(*) AS total").
		Where("estado IN ?", []string{models.EstadoAlertaPendiente, models.EstadoAlertaEnviada}).
		Group("id_restaurante").
		Order("total DESC").
		Scan(&result).Error
	if err != nil {
		return nil, fmt.Errorf("error al agrupar alertas por restaurante: %w", err)
	}
	return result, nil
}
