package api

import (
	"errors"
	"net/http"

	"backend_resto/database"
	"backend_resto/services"

	"github.com/gin-gonic/gin"
)

// GetUsoActual devuelve los contadores del periodo actual de un restaurante
func GetUsoActual(c *gin.Context) {
	idRestaurante, err := parseUintParam(c, "id_restaurante")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de restaurante inválido",
		})
		return
	}

	contadores := services.NewContadorUsoService(database.DB)
	uso, err := contadores.GetCurrent(idRestaurante)
	if err != nil {
		if errors.Is(err, services.ErrSinSuscripcionActiva) {
			c.JSON(http.StatusNotFound, gin.H{
				"status": "error",
				"error":  "El restaurante no tiene una suscripción activa",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al obtener el uso actual",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   uso,
	})
}

// RecalcularUso fuerza un reconteo completo de los contadores
func RecalcularUso(c *gin.Context) {
	idRestaurante, err := parseUintParam(c, "id_restaurante")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de restaurante inválido",
		})
		return
	}

	contadores := services.NewContadorUsoService(database.DB)
	medidos, err := contadores.RecomputeAll(idRestaurante)
	if err != nil {
		if errors.Is(err, services.ErrSinSuscripcionActiva) {
			c.JSON(http.StatusNotFound, gin.H{
				"status": "error",
				"error":  "El restaurante no tiene una suscripción activa",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al recontar el uso",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   medidos,
		"count":  len(medidos),
	})
}

// GetEstadisticasUso devuelve el consumo agregado por recurso (admin)
func GetEstadisticasUso(c *gin.Context) {
	contadores := services.NewContadorUsoService(database.DB)
	stats, err := contadores.GetGlobalStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al obtener las estadísticas de uso",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   stats,
	})
}
