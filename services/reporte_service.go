package services

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"backend_resto/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ReporteService genera los reportes de consumo y alertas de un
// restaurante en Excel y PDF
type ReporteService struct {
	db         *gorm.DB
	contadores *ContadorUsoService
	alertas    *AlertaService
}

// NewReporteService crea una nueva instancia de ReporteService
func NewReporteService(db *gorm.DB) *ReporteService {
	return &ReporteService{
		db:         db,
		contadores: NewContadorUsoService(db),
		alertas:    NewAlertaService(db),
	}
}

// GenerateUsageExcel genera el reporte de consumo en Excel y lo devuelve
// como bytes listos para descargar
func (rs *ReporteService) GenerateUsageExcel(idRestaurante uint) ([]byte, string, error) {
	uso, err := rs.contadores.GetCurrent(idRestaurante)
	if err != nil {
		return nil, "", err
	}

	alertas, err := rs.alertas.GetByRestaurante(idRestaurante, "")
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("⚠️ No se pudo cerrar el archivo Excel: %v", err)
		}
	}()

	sheetUso := "Consumo"
	f.SetSheetName("Sheet1", sheetUso)

	headers := []string{"Recurso", "Uso actual", "Límite del plan", "Porcentaje", "Ilimitado"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetUso, cell, header)
	}

	row := 2
	for _, recurso := range models.AllRecursos {
		u, ok := uso[recurso]
		if !ok {
			continue
		}
		values := []interface{}{string(recurso), u.UsoActual, u.LimitePlan, u.Porcentaje, u.Ilimitado}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheetUso, cell, value)
		}
		row++
	}

	// Hoja de alertas
	sheetAlertas := "Alertas"
	if _, err := f.NewSheet(sheetAlertas); err != nil {
		return nil, "", fmt.Errorf("error al crear hoja de alertas: %w", err)
	}

	alertaHeaders := []string{"Fecha", "Recurso", "Uso", "Límite", "Porcentaje", "Urgencia", "Estado", "Mensaje"}
	for i, header := range alertaHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetAlertas, cell, header)
	}

	for idx, alerta := range alertas {
		values := []interface{}{
			alerta.FechaAlerta.Format("2006-01-02 15:04"),
			string(alerta.Recurso),
			alerta.ValorActual,
			alerta.ValorLimite,
			alerta.PorcentajeUso,
			alerta.NivelUrgencia,
			alerta.Estado,
			alerta.Mensaje,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, idx+2)
			f.SetCellValue(sheetAlertas, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("error al escribir Excel: %w", err)
	}

	filename := fmt.Sprintf("consumo_restaurante_%d_%s.xlsx", idRestaurante, time.Now().Format("20060102"))
	return buf.Bytes(), filename, nil
}

// GenerateUsagePDF genera el reporte de consumo en PDF
func (rs *ReporteService) GenerateUsagePDF(idRestaurante uint) ([]byte, string, error) {
	uso, err := rs.contadores.GetCurrent(idRestaurante)
	if err != nil {
		return nil, "", err
	}

	var restaurante models.Restaurante
	if err := rs.db.First(&restaurante, idRestaurante).Error; err != nil {
		return nil, "", fmt.Errorf("restaurante no encontrado: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(120, 10, "Reporte de consumo")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(120, 8, restaurante.Nombre)
	pdf.Ln(6)
	pdf.Cell(120, 8, time.Now().Format("02/01/2006"))
	pdf.Ln(12)

	// Encabezados de la tabla
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(45, 8, "Recurso")
	pdf.Cell(30, 8, "Uso")
	pdf.Cell(30, 8, "Limite")
	pdf.Cell(30, 8, "Porcentaje")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	for _, recurso := range models.AllRecursos {
		u, ok := uso[recurso]
		if !ok {
			continue
		}

		limite := fmt.Sprintf("%d", u.LimitePlan)
		pct := fmt.Sprintf("%.1f%%", u.Porcentaje)
		if u.Ilimitado {
			limite = "ilimitado"
			pct = "-"
		}

		pdf.Cell(45, 7, string(recurso))
		pdf.Cell(30, 7, fmt.Sprintf("%d", u.UsoActual))
		pdf.Cell(30, 7, limite)
		pdf.Cell(30, 7, pct)
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("error al generar PDF: %w", err)
	}

	filename := fmt.Sprintf("consumo_restaurante_%d_%s.pdf", idRestaurante, time.Now().Format("20060102"))
	return buf.Bytes(), filename, nil
}
