package api

import (
	"errors"
	"net/http"
	"strconv"

	"backend_resto/database"
	"backend_resto/services"

	"github.com/gin-gonic/gin"
)

// manejarErrorSuscripcion traduce los errores del registro de
// suscripciones a respuestas HTTP
func manejarErrorSuscripcion(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSuscripcionNoEncontrada):
		c.JSON(http.StatusNotFound, gin.H{
			"status": "error",
			"error":  "Suscripción no encontrada",
		})
	case errors.Is(err, services.ErrTransicionInvalida):
		c.JSON(http.StatusConflict, gin.H{
			"status": "error",
			"error":  "La transición de estado no está permitida",
		})
	case errors.Is(err, services.ErrSuscripcionActivaExistente):
		c.JSON(http.StatusConflict, gin.H{
			"status": "error",
			"error":  "El restaurante ya tiene una suscripción activa",
		})
	case errors.Is(err, services.ErrPlanNoEncontrado):
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "El plan indicado no existe",
		})
	case errors.Is(err, services.ErrPlanInactivo):
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "El plan indicado no está disponible",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error interno al procesar la suscripción",
		})
	}
}

// GetSuscripciones lista el historial de suscripciones de un restaurante
func GetSuscripciones(c *gin.Context) {
	idRestaurante, err := parseUintParam(c, "id_restaurante")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de restaurante inválido",
		})
		return
	}

	servicio := services.NewSuscripcionService(database.DB)
	suscripciones, err := servicio.GetByRestaurante(idRestaurante)
	if err != nil {
		manejarErrorSuscripcion(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   suscripciones,
		"count":  len(suscripciones),
	})
}

// GetSuscripcionActiva devuelve la suscripción activa de un restaurante
func GetSuscripcionActiva(c *gin.Context) {
	idRestaurante, err := parseUintParam(c, "id_restaurante")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de restaurante inválido",
		})
		return
	}

	servicio := services.NewSuscripcionService(database.DB)
	suscripcion, err := servicio.GetActiveSubscription(idRestaurante)
	if err != nil {
		manejarErrorSuscripcion(c, err)
		return
	}

	if suscripcion == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"status": "error",
			"error":  "El restaurante no tiene una suscripción activa",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   suscripcion,
	})
}

// CreateSuscripcion da de alta una suscripción nueva
func CreateSuscripcion(c *gin.Context) {
	var req services.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "Formato de datos inválido",
		})
		return
	}

	servicio := services.NewSuscripcionService(database.DB)
	suscripcion, err := servicio.Create(req)
	if err != nil {
		manejarErrorSuscripcion(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   suscripcion,
	})
}

// motivoRequest es el cuerpo común de las transiciones con motivo
type motivoRequest struct {
	Motivo string `json:"motivo" binding:"required"`
}

// ChangePlanSuscripcion cambia el plan de una suscripción activa
func ChangePlanSuscripcion(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de suscripción inválido",
		})
		return
	}

	var req struct {
		IDPlan uint `json:"id_plan" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "Se requiere el id del plan nuevo",
		})
		return
	}

	servicio := services.NewSuscripcionService(database.DB)
	suscripcion, err := servicio.ChangePlan(id, req.IDPlan)
	if err != nil {
		manejarErrorSuscripcion(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   suscripcion,
	})
}

// SuspenderSuscripcion suspende una suscripción activa
func SuspenderSuscripcion(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de suscripción inválido",
		})
		return
	}

	var req motivoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "Se requiere el motivo de la suspensión",
		})
		return
	}

	servicio := services.NewSuscripcionService(database.DB)
	suscripcion, err := servicio.Suspend(id, req.Motivo)
	if err != nil {
		manejarErrorSuscripcion(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   suscripcion,
	})
}

// ReactivarSuscripcion reactiva una suscripción suspendida
func ReactivarSuscripcion(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de suscripción inválido",
		})
		return
	}

	var req motivoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "Se requiere el motivo de la reactivación",
		})
		return
	}

	servicio := services.NewSuscripcionService(database.DB)
	suscripcion, err := servicio.Reactivate(id, req.Motivo)
	if err != nil {
		manejarErrorSuscripcion(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   suscripcion,
	})
}

// CancelarSuscripcion cancela una suscripción (terminal)
func CancelarSuscripcion(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de suscripción inválido",
		})
		return
	}

	var req motivoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "Se requiere el motivo de la cancelación",
		})
		return
	}

	servicio := services.NewSuscripcionService(database.DB)
	suscripcion, err := servicio.Cancel(id, req.Motivo)
	if err != nil {
		manejarErrorSuscripcion(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   suscripcion,
	})
}

// GetSuscripcionesPorVencer lista las suscripciones que vencen pronto
func GetSuscripcionesPorVencer(c *gin.Context) {
	dias := 7
	if diasStr := c.Query("dias"); diasStr != "" {
		if parsed, err := strconv.Atoi(diasStr); err == nil && parsed > 0 {
			dias = parsed
		}
	}

	servicio := services.NewSuscripcionService(database.DB)
	suscripciones, err := servicio.GetExpiringSoon(dias)
	if err != nil {
		manejarErrorSuscripcion(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   suscripciones,
		"count":  len(suscripciones),
	})
}

// GetEstadisticasSuscripciones devuelve estadísticas agregadas
func GetEstadisticasSuscripciones(c *gin.Context) {
	servicio := services.NewSuscripcionService(database.DB)
	stats, err := servicio.GetStats(7)
	if err != nil {
		manejarErrorSuscripcion(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   stats,
	})
}
