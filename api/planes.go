package api

import (
	"errors"
	"net/http"
	"strconv"

	"backend_resto/database"
	"backend_resto/models"
	"backend_resto/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// GetPlanes lista los planes activos del catálogo
func GetPlanes(c *gin.Context) {
	catalogo := services.NewPlanCatalogService(database.DB)

	planes, err := catalogo.GetActivePlans()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al obtener el catálogo de planes",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   planes,
		"count":  len(planes),
	})
}

// GetPlan obtiene un plan concreto por ID
func GetPlan(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de plan inválido",
		})
		return
	}

	catalogo := services.NewPlanCatalogService(database.DB)
	plan, err := catalogo.GetPlan(id)
	if err != nil {
		if errors.Is(err, services.ErrPlanNoEncontrado) {
			c.JSON(http.StatusNotFound, gin.H{
				"status": "error",
				"error":  "Plan no encontrado",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al obtener el plan",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   plan,
	})
}

// GetPlanLimites devuelve los techos y funcionalidades de un plan
func GetPlanLimites(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de plan inválido",
		})
		return
	}

	catalogo := services.NewPlanCatalogService(database.DB)
	plan, err := catalogo.GetPlan(id)
	if err != nil {
		if errors.Is(err, services.ErrPlanNoEncontrado) {
			c.JSON(http.StatusNotFound, gin.H{
				"status": "error",
				"error":  "Plan no encontrado",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al obtener el plan",
		})
		return
	}

	limites := make(map[string]int, len(models.AllRecursos))
	for _, recurso := range models.AllRecursos {
		limites[string(recurso)] = plan.Limite(recurso)
	}

	funcionalidades := make(map[string]bool, len(models.AllFeatures))
	for _, f := range models.AllFeatures {
		funcionalidades[string(f)] = plan.HasFeature(f)
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"plan":            plan.Nombre,
			"limites":         limites,
			"funcionalidades": funcionalidades,
		},
	})
}

// CreatePlan crea un plan nuevo del catálogo (uso administrativo)
func CreatePlan(c *gin.Context) {
	var plan models.Plan

	if err := c.ShouldBindJSON(&plan); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "Formato de datos inválido",
		})
		return
	}

	if plan.Nombre == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "El nombre del plan es obligatorio",
		})
		return
	}

	if plan.PrecioMensual.LessThan(decimal.Zero) {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "El precio no puede ser negativo",
		})
		return
	}

	catalogo := services.NewPlanCatalogService(database.DB)
	if err := catalogo.CreatePlan(&plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al crear el plan",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   plan,
	})
}

// UpdatePlan actualiza un plan existente (uso administrativo)
func UpdatePlan(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de plan inválido",
		})
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "Formato de datos inválido",
		})
		return
	}

	catalogo := services.NewPlanCatalogService(database.DB)
	plan, err := catalogo.UpdatePlan(id, updates)
	if err != nil {
		if errors.Is(err, services.ErrPlanNoEncontrado) {
			c.JSON(http.StatusNotFound, gin.H{
				"status": "error",
				"error":  "Plan no encontrado",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al actualizar el plan",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   plan,
	})
}

// DeactivatePlan retira un plan del catálogo (uso administrativo)
func DeactivatePlan(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de plan inválido",
		})
		return
	}

	catalogo := services.NewPlanCatalogService(database.DB)
	if err := catalogo.DeactivatePlan(id); err != nil {
		if errors.Is(err, services.ErrPlanNoEncontrado) {
			c.JSON(http.StatusNotFound, gin.H{
				"status": "error",
				"error":  "Plan no encontrado",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al desactivar el plan",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Plan desactivado",
	})
}

// parseUintParam lee un parámetro de ruta numérico
func parseUintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
