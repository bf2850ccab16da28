package api

import (
	"net/http"

	"backend_resto/database"
	"backend_resto/middleware"
	"backend_resto/models"

	"github.com/gin-gonic/gin"
)

// GetSucursales lista las sucursales del restaurante autenticado
func GetSucursales(c *gin.Context) {
	idRestaurante := middleware.GetRestauranteID(c)

	var sucursales []models.Sucursal
	if err := database.DB.Where("id_restaurante = ?", idRestaurante).Find(&sucursales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al obtener las sucursales",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   sucursales,
		"count":  len(sucursales),
	})
}

// CreateSucursal crea una sucursal nueva. Protegido por el gate de
// capacidad de sucursales.
func CreateSucursal(c *gin.Context) {
	var sucursal models.Sucursal
	if err := c.ShouldBindJSON(&sucursal); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "Formato de datos inválido",
		})
		return
	}

	if sucursal.Nombre == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "El nombre de la sucursal es obligatorio",
		})
		return
	}

	// El tenant siempre viene del token, no del cuerpo
	sucursal.IDRestaurante = middleware.GetRestauranteID(c)
	sucursal.Activo = true

	if err := database.DB.Create(&sucursal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al crear la sucursal",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   sucursal,
	})
}

// DeactivateSucursal da de baja una sucursal. El siguiente reconteo
// libera el cupo.
func DeactivateSucursal(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de sucursal inválido",
		})
		return
	}

	idRestaurante := middleware.GetRestauranteID(c)

	result := database.DB.Model(&models.Sucursal{}).
		Where("id = ? AND id_restaurante = ?", id, idRestaurante).
		Update("activo", false)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al dar de baja la sucursal",
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"status": "error",
			"error":  "Sucursal no encontrada",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Sucursal dada de baja",
	})
}
