package models

import (
	"time"
)

// ContadorUso es la foto del consumo de un recurso para un restaurante en
// un periodo de medición. No es un log de eventos: cada escritura reemplaza
// el valor con un reconteo completo desde las tablas de origen, por lo que
// uso_actual coincide con el conteo vivo en el momento de la última medición.
type ContadorUso struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	IDRestaurante uint    `json:"id_restaurante" gorm:"not null;uniqueIndex:uq_contador_periodo"`
	IDPlan        uint    `json:"id_plan" gorm:"not null"`
	Recurso       Recurso `json:"recurso" gorm:"type:varchar(30);not null;uniqueIndex:uq_contador_periodo"`

	// Valores medidos. limite_plan conserva el techo vigente al momento de
	// la medición; <= 0 significa ilimitado.
	UsoActual  int `json:"uso_actual" gorm:"default:0"`
	LimitePlan int `json:"limite_plan" gorm:"default:0"`

	// Periodo de medición (mes calendario)
	MesMedicion  int `json:"mes_medicion" gorm:"not null;uniqueIndex:uq_contador_periodo"`
	AnioMedicion int `json:"anio_medicion" gorm:"not null;uniqueIndex:uq_contador_periodo"`

	FechaMedicion time.Time `json:"fecha_medicion"`
}

// TableName define el nombre de la tabla para el modelo ContadorUso
func (ContadorUso) TableName() string {
	return "contadores_uso"
}

// Porcentaje devuelve el uso como porcentaje del límite, 0 si es ilimitado.
func (c *ContadorUso) Porcentaje() float64 {
	if c.LimitePlan <= 0 {
		return 0
	}
	return float64(c.UsoActual) / float64(c.LimitePlan) * 100
}

// Ilimitado indica si el recurso no tiene techo en el plan medido.
func (c *ContadorUso) Ilimitado() bool {
	return c.LimitePlan <= 0
}
