package api

import (
	"net/http"

	"backend_resto/database"
	"backend_resto/middleware"
	"backend_resto/models"

	"github.com/gin-gonic/gin"
)

// GetProductos lista los productos del restaurante autenticado
func GetProductos(c *gin.Context) {
	idRestaurante := middleware.GetRestauranteID(c)

	query := database.DB.Where("id_restaurante = ?", idRestaurante)
	if categoria := c.Query("categoria"); categoria != "" {
		query = query.Where("categoria = ?", categoria)
	}

	var productos []models.Producto
	if err := query.Find(&productos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al obtener los productos",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   productos,
		"count":  len(productos),
	})
}

// CreateProducto crea un producto nuevo. Protegido por el gate de
// capacidad de productos.
func CreateProducto(c *gin.Context) {
	var producto models.Producto
	if err := c.ShouldBindJSON(&producto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "Formato de datos inválido",
		})
		return
	}

	if producto.Nombre == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "El nombre del producto es obligatorio",
		})
		return
	}

	producto.IDRestaurante = middleware.GetRestauranteID(c)
	producto.Activo = true

	if err := database.DB.Create(&producto).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al crear el producto",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   producto,
	})
}

// UpdateProducto actualiza un producto existente
func UpdateProducto(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de producto inválido",
		})
		return
	}

	idRestaurante := middleware.GetRestauranteID(c)

	var producto models.Producto
	if err := database.DB.Where("id = ? AND id_restaurante = ?", id, idRestaurante).First(&producto).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"status": "error",
			"error":  "Producto no encontrado",
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

	// El tenant no se reasigna por API
	delete(updates, "id_restaurante")

	if err := database.DB.Model(&producto).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al actualizar el producto",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   producto,
	})
}

// DeactivateProducto da de baja un producto del menú
func DeactivateProducto(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de producto inválido",
		})
		return
	}

	idRestaurante := middleware.GetRestauranteID(c)

	result := database.DB.Model(&models.Producto{}).
		Where("id = ? AND id_restaurante = ?", id, idRestaurante).
		Update("activo", false)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al dar de baja el producto",
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"status": "error",
			"error":  "Producto no encontrado",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Producto dado de baja",
	})
}
