package models

import (
	"time"
)

// Estados posibles de una alerta de límite
const (
	EstadoAlertaPendiente = "pendiente"
	EstadoAlertaEnviada   = "enviada"
	EstadoAlertaResuelta  = "resuelta"
	EstadoAlertaIgnorada  = "ignorada"
)

// Niveles de urgencia de una alerta
const (
	UrgenciaBaja    = "bajo"
	UrgenciaMedia   = "medio"
	UrgenciaAlta    = "alto"
	UrgenciaCritica = "critico"
)

// AlertaLimite registra un cruce de umbral de consumo para un restaurante.
// Invariante: un restaurante no puede tener dos alertas del mismo tipo en
// estado pendiente o enviada creadas dentro de la misma ventana de 24 horas.
type AlertaLimite struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	IDRestaurante uint `json:"id_restaurante" gorm:"not null;index"`
	IDPlan        uint `json:"id_plan" gorm:"not null"`

	// Tipo de alerta (uno por recurso, p. ej. "limite_productos") y recurso
	TipoAlerta string  `json:"tipo_alerta" gorm:"type:varchar(50);not null;index"`
	Recurso    Recurso `json:"recurso" gorm:"type:varchar(30);not null"`

	// Valores en el momento del cruce
	ValorActual   int     `json:"valor_actual" gorm:"default:0"`
	ValorLimite   int     `json:"valor_limite" gorm:"default:0"`
	PorcentajeUso float64 `json:"porcentaje_uso" gorm:"type:decimal(5,2)"`

	// Estado: pendiente, enviada, resuelta, ignorada
	Estado string `json:"estado" gorm:"default:'pendiente';type:varchar(20);index"`
	// Urgencia: bajo, medio, alto, critico
	NivelUrgencia string `json:"nivel_urgencia" gorm:"default:'medio';type:varchar(20)"`

	Mensaje           string `json:"mensaje" gorm:"type:text"`
	MensajeResolucion string `json:"mensaje_resolucion" gorm:"type:text"`

	FechaAlerta     time.Time  `json:"fecha_alerta"`
	FechaResolucion *time.Time `json:"fecha_resolucion"`

	NotificacionesEnviadas int `json:"notificaciones_enviadas" gorm:"default:0"`
}

// TableName define el nombre de la tabla para el modelo AlertaLimite
func (AlertaLimite) TableName() string {
	return "alertas_limites"
}

// TipoAlertaParaRecurso devuelve el tipo de alerta asociado a un recurso.
func TipoAlertaParaRecurso(r Recurso) string {
	return "limite_" + string(r)
}

// EsTerminal indica si la alerta ya fue resuelta o ignorada.
func (a *AlertaLimite) EsTerminal() bool {
	return a.Estado == EstadoAlertaResuelta || a.Estado == EstadoAlertaIgnorada
}
