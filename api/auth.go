package api

import (
	"net/http"

	"backend_resto/config"
	"backend_resto/database"
	"backend_resto/middleware"
	"backend_resto/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// LoginRequest contiene las credenciales de inicio de sesión
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login valida las credenciales de un vendedor y emite el token de sesión
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "Se requieren usuario y contraseña",
		})
		return
	}

	var vendedor models.Vendedor
	if err := database.DB.Where("username = ? AND activo = ?", req.Username, true).First(&vendedor).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status": "error",
			"error":  "Credenciales inválidas",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(vendedor.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status": "error",
			"error":  "Credenciales inválidas",
		})
		return
	}

	cfg := config.GetConfig()
	auth := middleware.NewAuthMiddleware(cfg)
	token, err := auth.GenerateToken(vendedor.ID, vendedor.IDRestaurante, vendedor.Rol, cfg.JWT.ExpiresIn)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al emitir el token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"token":          token,
			"id_vendedor":    vendedor.ID,
			"id_restaurante": vendedor.IDRestaurante,
			"nombre":         vendedor.Nombre,
			"rol":            vendedor.Rol,
		},
	})
}
