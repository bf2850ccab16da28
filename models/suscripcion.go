package models

import (
	"time"

	"gorm.io/gorm"
)

// Estados posibles de una suscripción
const (
	EstadoSuscripcionActiva     = "activa"
	EstadoSuscripcionSuspendida = "suspendida"
	EstadoSuscripcionCancelada  = "cancelada"
	EstadoSuscripcionExpirada   = "expirada"
)

// Suscripcion representa la asignación de un plan a un restaurante.
// Invariante: como máximo una suscripción con estado "activa" por restaurante.
type Suscripcion struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Relaciones
	IDRestaurante uint `json:"id_restaurante" gorm:"not null;index"`
	IDPlan        uint `json:"id_plan" gorm:"not null"`
	Plan          Plan `json:"plan" gorm:"foreignKey:IDPlan"`

	// Vigencia
	FechaInicio     time.Time  `json:"fecha_inicio" gorm:"not null"`
	FechaFin        *time.Time `json:"fecha_fin"`
	FechaRenovacion *time.Time `json:"fecha_renovacion"`

	// Estado: activa, suspendida, cancelada, expirada
	Estado         string `json:"estado" gorm:"default:'activa';type:varchar(20);index"`
	AutoRenovacion bool   `json:"auto_renovacion" gorm:"default:true"`

	// Suspensión y cancelación
	FechaSuspension   *time.Time `json:"fecha_suspension"`
	MotivoSuspension  string     `json:"motivo_suspension" gorm:"type:text"`
	FechaCancelacion  *time.Time `json:"fecha_cancelacion"`
	MotivoCancelacion string     `json:"motivo_cancelacion" gorm:"type:text"`

	// Datos de pago
	MetodoPago     string     `json:"metodo_pago" gorm:"type:varchar(50)"`
	ReferenciaPago string     `json:"referencia_pago" gorm:"type:varchar(64)"`
	UltimoPago     *time.Time `json:"ultimo_pago"`
	ProximoPago    *time.Time `json:"proximo_pago"`
}

// TableName define el nombre de la tabla para el modelo Suscripcion
func (Suscripcion) TableName() string {
	return "suscripciones"
}

// EstaVencida indica si la fecha de fin ya pasó. Una suscripción con
// estado "activa" pero vencida se trata como expirada en las lecturas.
func (s *Suscripcion) EstaVencida(ahora time.Time) bool {
	if s.FechaFin == nil {
		return false
	}
	return s.FechaFin.Before(truncarDia(ahora))
}

// DiasRestantes devuelve los días que faltan hasta la fecha de fin.
// Negativo si ya venció; el segundo valor es false si no hay fecha de fin.
func (s *Suscripcion) DiasRestantes(ahora time.Time) (int, bool) {
	if s.FechaFin == nil {
		return 0, false
	}
	dias := int(truncarDia(*s.FechaFin).Sub(truncarDia(ahora)).Hours() / 24)
	return dias, true
}

func truncarDia(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
