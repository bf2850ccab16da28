package api

import (
	"net/http"
	"time"

	"backend_resto/database"
	"backend_resto/middleware"
	"backend_resto/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GetVentas lista las ventas del restaurante autenticado, más recientes
// primero
func GetVentas(c *gin.Context) {
	idRestaurante := middleware.GetRestauranteID(c)

	query := database.DB.Where("id_restaurante = ?", idRestaurante)
	if estado := c.Query("estado"); estado != "" {
		query = query.Where("estado = ?", estado)
	}

	var ventas []models.Venta
	if err := query.Order("fecha_venta DESC").Limit(200).Find(&ventas).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al obtener las ventas",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   ventas,
		"count":  len(ventas),
	})
}

// CreateVentaRequest contiene los datos de registro de una venta
type CreateVentaRequest struct {
	IDSucursal uint            `json:"id_sucursal"`
	Total      decimal.Decimal `json:"total" binding:"required"`
	MetodoPago string          `json:"metodo_pago"`
}

// CreateVenta registra una transacción de punto de venta. Protegido por
// los gates de funcionalidad POS y capacidad de transacciones mensuales.
func CreateVenta(c *gin.Context) {
	var req CreateVentaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "Formato de datos inválido",
		})
		return
	}

	if req.Total.LessThan(decimal.Zero) {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "El total no puede ser negativo",
		})
		return
	}

	venta := models.Venta{
		IDRestaurante: middleware.GetRestauranteID(c),
		IDSucursal:    req.IDSucursal,
		IDVendedor:    middleware.GetVendedorID(c),
		Folio:         uuid.NewString(),
		Total:         req.Total,
		MetodoPago:    req.MetodoPago,
		Estado:        models.EstadoVentaCompletada,
		FechaVenta:    time.Now(),
	}

	if err := database.DB.Create(&venta).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al registrar la venta",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   venta,
	})
}

// CancelarVenta anula una venta. Las ventas canceladas no cuentan contra
// el techo de transacciones del mes.
func CancelarVenta(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "ID de venta inválido",
		})
		return
	}

	idRestaurante := middleware.GetRestauranteID(c)

	result := database.DB.Model(&models.Venta{}).
		Where("id = ? AND id_restaurante = ? AND estado <> ?", id, idRestaurante, models.EstadoVentaCancelado).
		Update("estado", models.EstadoVentaCancelado)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al anular la venta",
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"status": "error",
			"error":  "Venta no encontrada o ya anulada",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Venta anulada",
	})
}
