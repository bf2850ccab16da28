package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"backend_resto/database"
	"backend_resto/models"

	"gorm.io/gorm"
)

// Errores del catálogo de planes
var (
	ErrPlanNoEncontrado = errors.New("plan no encontrado")
	ErrPlanInactivo     = errors.New("plan inactivo")
)

const planCacheTTL = 15 * time.Minute

// PlanCatalogService expone el catálogo de planes: techos de recursos y
// funcionalidades incluidas. Solo lecturas para el tráfico de los
// restaurantes; la administración puede crear y editar planes.
type PlanCatalogService struct {
	db *gorm.DB
}

// NewPlanCatalogService crea una nueva instancia de PlanCatalogService
func NewPlanCatalogService(db *gorm.DB) *PlanCatalogService {
	return &PlanCatalogService{db: db}
}

// GetPlan obtiene un plan por ID, pasando por el caché cuando está disponible
func (ps *PlanCatalogService) GetPlan(idPlan uint) (*models.Plan, error) {
	// Intentamos primero el caché del catálogo
	if database.Redis != nil {
		var cached models.Plan
		cacheKey := database.GeneratePlanCacheKey(idPlan)
		if err := database.CacheGetJSON(cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	var plan models.Plan
	if err := ps.db.First(&plan, idPlan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNoEncontrado
		}
		return nil, fmt.Errorf("error al obtener plan: %w", err)
	}

	if database.Redis != nil {
		cacheKey := database.GeneratePlanCacheKey(idPlan)
		if err := database.CacheSetJSON(cacheKey, plan, planCacheTTL); err != nil {
			log.Printf("⚠️ No se pudo cachear el plan %d: %v", idPlan, err)
		}
	}

	return &plan, nil
}

// GetPlanByName obtiene un plan por su nombre
func (ps *PlanCatalogService) GetPlanByName(nombre string) (*models.Plan, error) {
	var plan models.Plan
	if err := ps.db.Where("nombre = ?", nombre).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNoEncontrado
		}
		return nil, fmt.Errorf("error al obtener plan por nombre: %w", err)
	}
	return &plan, nil
}

// GetActivePlans devuelve los planes activos ordenados para presentación
func (ps *PlanCatalogService) GetActivePlans() ([]models.Plan, error) {
	var planes []models.Plan
	if err := ps.db.Where("activo = ?", true).Order("orden_display ASC").Find(&planes).Error; err != nil {
		return nil, fmt.Errorf("error al listar planes: %w", err)
	}
	return planes, nil
}

// HasFeature indica si un plan incluye la funcionalidad dada
func (ps *PlanCatalogService) HasFeature(idPlan uint, f models.Feature) (bool, error) {
	plan, err := ps.GetPlan(idPlan)
	if err != nil {
		return false, err
	}
	return plan.HasFeature(f), nil
}

// GetCeiling devuelve el techo del plan para un recurso.
// Un valor <= 0 significa ilimitado.
func (ps *PlanCatalogService) GetCeiling(idPlan uint, r models.Recurso) (int, error) {
	plan, err := ps.GetPlan(idPlan)
	if err != nil {
		return 0, err
	}
	return plan.Limite(r), nil
}

// GetPlansWithFeature devuelve los planes activos que incluyen la
// funcionalidad, para armar el mensaje de actualización de plan.
func (ps *PlanCatalogService) GetPlansWithFeature(f models.Feature) ([]models.Plan, error) {
	planes, err := ps.GetActivePlans()
	if err != nil {
		return nil, err
	}

	result := make([]models.Plan, 0, len(planes))
	for _, plan := range planes {
		if plan.HasFeature(f) {
			result = append(result, plan)
		}
	}
	return result, nil
}

// ValidateActivePlan verifica que el plan exista y esté activo.
// Se usa antes de crear o cambiar suscripciones.
func (ps *PlanCatalogService) ValidateActivePlan(idPlan uint) (*models.Plan, error) {
	plan, err := ps.GetPlan(idPlan)
	if err != nil {
		return nil, err
	}
	if !plan.Activo {
		return nil, ErrPlanInactivo
	}
	return plan, nil
}

// CreatePlan crea un nuevo plan del catálogo (uso administrativo)
func (ps *PlanCatalogService) CreatePlan(plan *models.Plan) error {
	if err := ps.db.Create(plan).Error; err != nil {
		return fmt.Errorf("error al crear plan: %w", err)
	}
	ps.invalidateCache()
	return nil
}

// UpdatePlan actualiza un plan existente (uso administrativo)
func (ps *PlanCatalogService) UpdatePlan(idPlan uint, updates map[string]interface{}) (*models.Plan, error) {
	var plan models.Plan
	if err := ps.db.First(&plan, idPlan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNoEncontrado
		}
		return nil, fmt.Errorf("error al obtener plan: %w", err)
	}

	if err := ps.db.Model(&plan).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("error al actualizar plan: %w", err)
	}

	ps.invalidateCache()
	return &plan, nil
}

// DeactivatePlan retira un plan del catálogo sin borrarlo. Las
// suscripciones existentes sobre el plan siguen vigentes.
func (ps *PlanCatalogService) DeactivatePlan(idPlan uint) error {
	result := ps.db.Model(&models.Plan{}).Where("id = ?", idPlan).Update("activo", false)
	if result.Error != nil {
		return fmt.Errorf("error al desactivar plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPlanNoEncontrado
	}
	ps.invalidateCache()
	return nil
}

func (ps *PlanCatalogService) invalidateCache() {
	if database.Redis == nil {
		return
	}
	if err := database.ClearPlanCache(); err != nil {
		log.Printf("⚠️ No se pudo invalidar el caché del catálogo: %v", err)
	}
}
