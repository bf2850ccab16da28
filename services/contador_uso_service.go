package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"backend_resto/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Errores del almacén de contadores de uso
var (
	ErrSinSuscripcionActiva = errors.New("el restaurante no tiene suscripción activa")
)

// ContadorUsoService mantiene los contadores de consumo por restaurante y
// recurso. Cada medición es un reconteo completo contra las tablas de
// origen, nunca un incremento, para evitar deriva por eventos perdidos.
// Los contadores reflejan el estado de la última medición y pueden quedar
// desactualizados entre mediciones.
type ContadorUsoService struct {
	db            *gorm.DB
	suscripciones *SuscripcionService
}

// NewContadorUsoService crea una nueva instancia de ContadorUsoService
func NewContadorUsoService(db *gorm.DB) *ContadorUsoService {
	return &ContadorUsoService{
		db:            db,
		suscripciones: NewSuscripcionService(db),
	}
}

// UsoRecurso es la proyección de un contador para lecturas rápidas
type UsoRecurso struct {
	UsoActual  int     `json:"uso_actual"`
	LimitePlan int     `json:"limite_plan"`
	Porcentaje float64 `json:"porcentaje"`
	Ilimitado  bool    `json:"ilimitado"`
}

// RecomputeAll recuenta todos los recursos del restaurante contra sus
// tablas de origen y actualiza los contadores del periodo actual con el
// techo vigente del plan. Devuelve los contadores recién medidos.
func (cs *ContadorUsoService) RecomputeAll(idRestaurante uint) ([]models.ContadorUso, error) {
	suscripcion, err := cs.suscripciones.GetActiveSubscription(idRestaurante)
	if err != nil {
		return nil, err
	}
	if suscripcion == nil {
		return nil, ErrSinSuscripcionActiva
	}
	plan := suscripcion.Plan

	ahora := time.Now()
	mes := int(ahora.Month())
	anio := ahora.Year()

	contadores := make([]models.ContadorUso, 0, len(models.AllRecursos))
	for _, recurso := range models.AllRecursos {
		uso, err := cs.contarRecurso(idRestaurante, recurso, ahora)
		if err != nil {
			return nil, fmt.Errorf("error al contar %s: %w", recurso, err)
		}

		contador := models.ContadorUso{
			IDRestaurante: idRestaurante,
			IDPlan:        plan.ID,
			Recurso:       recurso,
			UsoActual:     uso,
			LimitePlan:    plan.Limite(recurso),
			MesMedicion:   mes,
			AnioMedicion:  anio,
			FechaMedicion: ahora,
		}

		// Upsert sobre (restaurante, recurso, mes, año): la medición
		// reemplaza el valor anterior del periodo
		err = cs.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "id_restaurante"},
				{Name: "recurso"},
				{Name: "mes_medicion"},
				{Name: "anio_medicion"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"id_plan", "uso_actual", "limite_plan", "fecha_medicion", "updated_at",
			}),
		}).Create(&contador).Error
		if err != nil {
			return nil, fmt.Errorf("error al guardar contador de %s: %w", recurso, err)
		}

		contadores = append(contadores, contador)
	}

	return contadores, nil
}

// contarRecurso ejecuta la consulta autoritativa del recurso contra su
// tabla de origen
func (cs *ContadorUsoService) contarRecurso(idRestaurante uint, recurso models.Recurso, ahora time.Time) (int, error) {
	var count int64

	switch recurso {
	case models.RecursoSucursales:
		err := cs.db.Model(&models.Sucursal{}).
			Where("id_restaurante = ? AND activo = ?", idRestaurante, true).
			Count(&count).Error
		return int(count), err

	case models.RecursoUsuarios:
		err := cs.db.Model(&models.Vendedor{}).
			Where("id_restaurante = ? AND activo = ?", idRestaurante, true).
			Count(&count).Error
		return int(count), err

	case models.RecursoProductos:
		err := cs.db.Model(&models.Producto{}).
			Where("id_restaurante = ? AND activo = ?", idRestaurante, true).
			Count(&count).Error
		return int(count), err

	case models.RecursoTransacciones:
		inicioMes := time.Date(ahora.Year(), ahora.Month(), 1, 0, 0, 0, 0, ahora.Location())
		finMes := inicioMes.AddDate(0, 1, 0)
		err := cs.db.Model(&models.Venta{}).
			Where("id_restaurante = ? AND estado <> ?", idRestaurante, models.EstadoVentaCancelado).
			Where("fecha_venta >= ? AND fecha_venta < ?", inicioMes, finMes).
			Count(&count).Error
		return int(count), err

	case models.RecursoAlmacenamiento:
		return cs.medirAlmacenamiento(idRestaurante)

	default:
		return 0, fmt.Errorf("recurso desconocido: %s", recurso)
	}
}

// medirAlmacenamiento devuelve el almacenamiento usado en MB.
// TODO: medir el peso real de las imágenes de productos en el bucket;
// mientras tanto se reporta 0 y el techo del plan queda sin efecto.
func (cs *ContadorUsoService) medirAlmacenamiento(idRestaurante uint) (int, error) {
	return 0, nil
}

// GetCurrent devuelve los contadores del periodo actual proyectados para
// lecturas rápidas de los gates. Si el restaurante aún no tiene mediciones
// ejecuta un reconteo primero.
func (cs *ContadorUsoService) GetCurrent(idRestaurante uint) (map[models.Recurso]UsoRecurso, error) {
	contadores, err := cs.contadoresDelPeriodo(idRestaurante)
	if err != nil {
		return nil, err
	}

	if len(contadores) == 0 {
		if contadores, err = cs.RecomputeAll(idRestaurante); err != nil {
			return nil, err
		}
	}

	result := make(map[models.Recurso]UsoRecurso, len(contadores))
	for _, c := range contadores {
		result[c.Recurso] = UsoRecurso{
			UsoActual:  c.UsoActual,
			LimitePlan: c.LimitePlan,
			Porcentaje: redondear2(c.Porcentaje()),
			Ilimitado:  c.Ilimitado(),
		}
	}
	return result, nil
}

// CanAdd indica si el restaurante puede agregar cantidad unidades del
// recurso sin superar el techo del plan. Techos <= 0 son ilimitados y
// siempre permiten.
func (cs *ContadorUsoService) CanAdd(idRestaurante uint, recurso models.Recurso, cantidad int) (bool, error) {
	contador, err := cs.contadorActual(idRestaurante, recurso)
	if err != nil {
		return false, err
	}

	if contador.Ilimitado() {
		return true, nil
	}
	return contador.UsoActual+cantidad <= contador.LimitePlan, nil
}

// contadorActual devuelve el contador del periodo para un recurso,
// recontando si aún no existe medición
func (cs *ContadorUsoService) contadorActual(idRestaurante uint, recurso models.Recurso) (*models.ContadorUso, error) {
	ahora := time.Now()

	var contador models.ContadorUso
	err := cs.db.Where("id_restaurante = ? AND recurso = ? AND mes_medicion = ? AND anio_medicion = ?",
		idRestaurante, recurso, int(ahora.Month()), ahora.Year()).
		First(&contador).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		contadores, rerr := cs.RecomputeAll(idRestaurante)
		if rerr != nil {
			return nil, rerr
		}
		for i := range contadores {
			if contadores[i].Recurso == recurso {
				return &contadores[i], nil
			}
		}
		return nil, fmt.Errorf("recurso desconocido: %s", recurso)
	}
	if err != nil {
		return nil, fmt.Errorf("error al obtener contador de %s: %w", recurso, err)
	}

	return &contador, nil
}

// contadoresDelPeriodo lista los contadores del mes en curso
func (cs *ContadorUsoService) contadoresDelPeriodo(idRestaurante uint) ([]models.ContadorUso, error) {
	ahora := time.Now()

	var contadores []models.ContadorUso
	err := cs.db.Where("id_restaurante = ? AND mes_medicion = ? AND anio_medicion = ?",
		idRestaurante, int(ahora.Month()), ahora.Year()).
		Find(&contadores).Error
	if err != nil {
		return nil, fmt.Errorf("error al listar contadores: %w", err)
	}
	return contadores, nil
}

// RecomputeAllActive recuenta el consumo de todos los restaurantes con
// suscripción activa. La ejecuta la tarea mensual al abrir el periodo.
func (cs *ContadorUsoService) RecomputeAllActive() (int, error) {
	var ids []uint
	err := cs.db.Model(&models.Suscripcion{}).
		Where("estado = ?", models.EstadoSuscripcionActiva).
		Distinct().
		Pluck("id_restaurante", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("error al listar restaurantes activos: %w", err)
	}

	ok := 0
	for _, id := range ids {
		if _, err := cs.RecomputeAll(id); err != nil {
			log.Printf("❌ Error al recontar restaurante %d: %v", id, err)
			continue
		}
		ok++
	}

	log.Printf("✅ Reconteo masivo completado: %d/%d restaurantes", ok, len(ids))
	return ok, nil
}

// GlobalUsageStats resume el consumo agregado por recurso
type GlobalUsageStats struct {
	Recurso       models.Recurso `json:"recurso"`
	Restaurantes  int64          `json:"restaurantes"`
	UsoTotal      int64          `json:"uso_total"`
	EnLimite      int64          `json:"en_limite"`
	SobreOchenta  int64          `json:"sobre_ochenta"`
}

// GetGlobalStats devuelve estadísticas agregadas de uso por recurso para
// los tableros administrativos
func (cs *ContadorUsoService) GetGlobalStats() ([]GlobalUsageStats, error) {
	ahora := time.Now()
	stats := make([]GlobalUsageStats, 0, len(models.AllRecursos))

	periodo := func(recurso models.Recurso) *gorm.DB {
		return cs.db.Model(&models.ContadorUso{}).
			Where("recurso = ? AND mes_medicion = ? AND anio_medicion = ?",
				recurso, int(ahora.Month()), ahora.Year())
	}

	for _, recurso := range models.AllRecursos {
		s := GlobalUsageStats{Recurso: recurso}
		if err := periodo(recurso).Count(&s.Restaurantes).Error; err != nil {
			return nil, fmt.Errorf("error al contar restaurantes medidos: %w", err)
		}

		var usoTotal *int64
		if err := periodo(recurso).Select("SUM(uso_actual)").Scan(&usoTotal).Error; err != nil {
			return nil, fmt.Errorf("error al sumar uso: %w", err)
		}
		if usoTotal != nil {
			s.UsoTotal = *usoTotal
		}

		if err := periodo(recurso).
			Where("limite_plan > 0 AND uso_actual >= limite_plan").
			Count(&s.EnLimite).Error; err != nil {
			return nil, fmt.Errorf("error al contar restaurantes en límite: %w", err)
		}

		if err := periodo(recurso).
			Where("limite_plan > 0 AND uso_actual * 100 >= limite_plan * 80").
			Count(&s.SobreOchenta).Error; err != nil {
			return nil, fmt.Errorf("error al contar restaurantes sobre el 80%%: %w", err)
		}

		stats = append(stats, s)
	}

	return stats, nil
}

func redondear2(v float64) float64 {
	return math.Round(v*100) / 100
}
