package api

import (
	"errors"
	"net/http"
	"strconv"

	"backend_resto/database"
	"backend_resto/models"
	"backend_resto/services"

	"github.com/gin-gonic/gin"
)

// manejarErrorAlerta traduce los errores del motor de alertas a HTTP
func manejarErrorAlerta(c *gin.Context, err error) {
	if errors.Is(err, services.ErrAlertaNoEncontrada) {
		c.JSON(http.StatusNotFound, gin.H{
			"status": "error",
			"error":  "Alerta no encontrada",
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"status": "error",
		"error":  "Error interno al procesar la alerta",
	})
}

// GetAlertas lista las alertas de un restaurante, con filtro opcional
// por estado (?estado=pendiente)
func GetAlertas(c *gin.Context) {
	idRestaurante, err := parseUintParam(c, "id_restaurante")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de restaurante inválido",
		})
		return
	}

	estado := c.Query("estado")

	servicio := services.NewAlertaService(database.DB)
	alertas, err := servicio.GetByRestaurante(idRestaurante, estado)
	if err != nil {
		manejarErrorAlerta(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   alertas,
		"count":  len(alertas),
	})
}

// GetAlertasCriticas lista las alertas críticas sin resolver (admin)
func GetAlertasCriticas(c *gin.Context) {
	servicio := services.NewAlertaService(database.DB)
	alertas, err := servicio.GetCriticalUnresolved()
	if err != nil {
		manejarErrorAlerta(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   alertas,
		"count":  len(alertas),
	})
}

// GetAlertasPendientes lista las alertas pendientes de notificación
func GetAlertasPendientes(c *gin.Context) {
	servicio := services.NewAlertaService(database.DB)
	alertas, err := servicio.GetPendingNotification()
	if err != nil {
		manejarErrorAlerta(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   alertas,
		"count":  len(alertas),
	})
}

// GetAlertasPorRecurso lista alertas por tipo de recurso
func GetAlertasPorRecurso(c *gin.Context) {
	recurso := models.Recurso(c.Param("recurso"))
	if !models.IsValidRecurso(recurso) {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "Recurso desconocido: " + string(recurso),
		})
		return
	}

	servicio := services.NewAlertaService(database.DB)
	alertas, err := servicio.GetByRecurso(recurso)
	if err != nil {
		manejarErrorAlerta(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   alertas,
		"count":  len(alertas),
	})
}

// MarcarAlertaEnviada marca una alerta como notificada
func MarcarAlertaEnviada(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de alerta inválido",
		})
		return
	}

	servicio := services.NewAlertaService(database.DB)
	alerta, err := servicio.MarkSent(id)
	if err != nil {
		manejarErrorAlerta(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   alerta,
	})
}

// ResolverAlerta cierra una alerta con mensaje de resolución
func ResolverAlerta(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de alerta inválido",
		})
		return
	}

	var req struct {
		Mensaje string `json:"mensaje" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "Se requiere el mensaje de resolución",
		})
		return
	}

	servicio := services.NewAlertaService(database.DB)
	alerta, err := servicio.Resolve(id, req.Mensaje)
	if err != nil {
		manejarErrorAlerta(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   alerta,
	})
}

// IgnorarAlerta descarta una alerta con motivo
func IgnorarAlerta(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de alerta inválido",
		})
		return
	}

	var req struct {
		Motivo string `json:"motivo" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "Se requiere el motivo",
		})
		return
	}

	servicio := services.NewAlertaService(database.DB)
	alerta, err := servicio.Ignore(id, req.Motivo)
	if err != nil {
		manejarErrorAlerta(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   alerta,
	})
}

// PurgarAlertasAntiguas elimina alertas resueltas o ignoradas viejas
// (?dias=90)
func PurgarAlertasAntiguas(c *gin.Context) {
	dias := 90
	if diasStr := c.Query("dias"); diasStr != "" {
		parsed, err := strconv.Atoi(diasStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"status": "error",
				"error":  "El parámetro dias debe ser un entero positivo",
			})
			return
		}
		dias = parsed
	}

	servicio := services.NewAlertaService(database.DB)
	eliminadas, err := servicio.DeleteOld(dias)
	if err != nil {
		manejarErrorAlerta(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"count":  eliminadas,
	})
}

// GetEstadisticasAlertas devuelve estadísticas agregadas de alertas
func GetEstadisticasAlertas(c *gin.Context) {
	servicio := services.NewAlertaService(database.DB)
	stats, err := servicio.GetStats()
	if err != nil {
		manejarErrorAlerta(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   stats,
	})
}

// GetEstadisticasAlertasPorTipo agrupa el total de alertas por tipo
func GetEstadisticasAlertasPorTipo(c *gin.Context) {
	servicio := services.NewAlertaService(database.DB)
	stats, err := servicio.GetStatsByTipo()
	if err != nil {
		manejarErrorAlerta(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   stats,
	})
}

// GetEstadisticasAlertasPorRestaurante agrupa las alertas abiertas por
// restaurante
func GetEstadisticasAlertasPorRestaurante(c *gin.Context) {
	servicio := services.NewAlertaService(database.DB)
	stats, err := servicio.GetStatsByRestaurante()
	if err != nil {
		manejarErrorAlerta(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   stats,
	})
}
