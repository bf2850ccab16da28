package api

import (
	"net/http"

	"backend_resto/database"
	"backend_resto/middleware"
	"backend_resto/services"

	"github.com/gin-gonic/gin"
)

// DownloadReporteUsoExcel descarga el reporte de consumo en Excel.
// Protegido por el gate de reportes avanzados.
func DownloadReporteUsoExcel(c *gin.Context) {
	idRestaurante := middleware.GetRestauranteID(c)

	reportes := services.NewReporteService(database.DB)
	data, filename, err := reportes.GenerateUsageExcel(idRestaurante)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al generar el reporte",
		})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// DownloadReporteUsoPDF descarga el reporte de consumo en PDF.
// Protegido por el gate de reportes avanzados.
func DownloadReporteUsoPDF(c *gin.Context) {
	idRestaurante := middleware.GetRestauranteID(c)

	reportes := services.NewReporteService(database.DB)
	data, filename, err := reportes.GenerateUsagePDF(idRestaurante)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Error al generar el reporte",
		})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}
