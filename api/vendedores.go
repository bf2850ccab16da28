package api

import (
	"net/http"

	"backend_resto/database"
	"backend_resto/middleware"
	"backend_resto/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// GetVendedores lista el personal del restaurante autenticado
func GetVendedores(c *gin.Context) {
	idRestaurante := middleware.GetRestauranteID(c)

	var vendedores []models.Vendedor
	if err := database.DB.Where("id_restaurante = ?", idRestaurante).Find(&vendedores).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al obtener el personal",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   vendedores,
		"count":  len(vendedores),
	})
}

// CreateVendedorRequest contiene los datos de alta de un vendedor
type CreateVendedorRequest struct {
	Nombre     string `json:"nombre" binding:"required"`
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email"`
	Password   string `json:"password" binding:"required,min=8"`
	Rol        string `json:"rol"`
	IDSucursal uint   `json:"id_sucursal"`
}

// CreateVendedor da de alta una cuenta de personal. Protegido por el
// gate de capacidad de usuarios.
func CreateVendedor(c *gin.Context) {
	var req CreateVendedorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "Formato de datos inválido",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al procesar la contraseña",
		})
		return
	}

	rol := req.Rol
	if rol == "" {
		rol = "cajero"
	}

	vendedor := models.Vendedor{
		IDRestaurante: middleware.GetRestauranteID(c),
		IDSucursal:    req.IDSucursal,
		Nombre:        req.Nombre,
		Username:      req.Username,
		Email:         req.Email,
		Password:      string(hash),
		Rol:           rol,
		Activo:        true,
	}

	if err := database.DB.Create(&vendedor).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al crear la cuenta",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   vendedor,
	})
}

// DeactivateVendedor da de baja una cuenta de personal
func DeactivateVendedor(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de vendedor inválido",
		})
		return
	}

	idRestaurante := middleware.GetRestauranteID(c)

	result := database.DB.Model(&models.Vendedor{}).
		Where("id = ? AND id_restaurante = ?", id, idRestaurante).
		Update("activo", false)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al dar de baja la cuenta",
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"status": "error",
			"error":  "Vendedor no encontrado",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Cuenta dada de baja",
	})
}
