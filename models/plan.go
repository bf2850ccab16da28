package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Plan representa un plan comercial del catálogo. Las filas del catálogo
// son de solo lectura para el tráfico de los restaurantes; únicamente la
// administración las crea o edita.
type Plan struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Datos comerciales
	Nombre        string          `json:"nombre" gorm:"uniqueIndex;not null;type:varchar(100)"`
	Descripcion   string          `json:"descripcion" gorm:"type:text"`
	PrecioMensual decimal.Decimal `json:"precio_mensual" gorm:"type:decimal(10,2);not null"`
	PrecioAnual   decimal.Decimal `json:"precio_anual" gorm:"type:decimal(10,2)"`

	// Techos de recursos (0 = ilimitado)
	MaxSucursales       int `json:"max_sucursales" gorm:"default:0"`
	MaxUsuarios         int `json:"max_usuarios" gorm:"default:0"`
	MaxProductos        int `json:"max_productos" gorm:"default:0"`
	MaxTransaccionesMes int `json:"max_transacciones_mes" gorm:"default:0"`
	AlmacenamientoGB    int `json:"almacenamiento_gb" gorm:"default:0"`

	// Funcionalidades incluidas
	IncluyePOS                bool `json:"incluye_pos" gorm:"default:true"`
	IncluyeInventarioBasico   bool `json:"incluye_inventario_basico" gorm:"default:true"`
	IncluyeInventarioAvanzado bool `json:"incluye_inventario_avanzado" gorm:"default:false"`
	IncluyePromociones        bool `json:"incluye_promociones" gorm:"default:false"`
	IncluyeReservas           bool `json:"incluye_reservas" gorm:"default:false"`
	IncluyeArqueoCaja         bool `json:"incluye_arqueo_caja" gorm:"default:false"`
	IncluyeEgresos            bool `json:"incluye_egresos" gorm:"default:false"`
	IncluyeEgresosAvanzados   bool `json:"incluye_egresos_avanzados" gorm:"default:false"`
	IncluyeReportesAvanzados  bool `json:"incluye_reportes_avanzados" gorm:"default:false"`
	IncluyeAnalytics          bool `json:"incluye_analytics" gorm:"default:false"`
	IncluyeDelivery           bool `json:"incluye_delivery" gorm:"default:false"`
	IncluyeImpresionTickets   bool `json:"incluye_impresion_tickets" gorm:"default:true"`
	IncluyeSoporte24h         bool `json:"incluye_soporte_24h" gorm:"default:false"`
	IncluyeAPI                bool `json:"incluye_api" gorm:"default:false"`
	IncluyeWhiteLabel         bool `json:"incluye_white_label" gorm:"default:false"`

	// Presentación y disponibilidad
	OrdenDisplay int  `json:"orden_display" gorm:"default:0"`
	Activo       bool `json:"activo" gorm:"default:true"`
}

// TableName define el nombre de la tabla para el modelo Plan
func (Plan) TableName() string {
	return "planes"
}

// Feature identifica una funcionalidad contratable de un plan.
type Feature string

const (
	FeaturePOS                Feature = "pos"
	FeatureInventarioBasico   Feature = "inventario_basico"
	FeatureInventarioAvanzado Feature = "inventario_avanzado"
	FeaturePromociones        Feature = "promociones"
	FeatureReservas           Feature = "reservas"
	FeatureArqueoCaja         Feature = "arqueo_caja"
	FeatureEgresos            Feature = "egresos"
	FeatureEgresosAvanzados   Feature = "egresos_avanzados"
	FeatureReportesAvanzados  Feature = "reportes_avanzados"
	FeatureAnalytics          Feature = "analytics"
	FeatureDelivery           Feature = "delivery"
	FeatureImpresionTickets   Feature = "impresion_tickets"
	FeatureSoporte24h         Feature = "soporte_24h"
	FeatureAPI                Feature = "api"
	FeatureWhiteLabel         Feature = "white_label"
)

// AllFeatures lista todas las funcionalidades conocidas.
var AllFeatures = []Feature{
	FeaturePOS,
	FeatureInventarioBasico,
	FeatureInventarioAvanzado,
	FeaturePromociones,
	FeatureReservas,
	FeatureArqueoCaja,
	FeatureEgresos,
	FeatureEgresosAvanzados,
	FeatureReportesAvanzados,
	FeatureAnalytics,
	FeatureDelivery,
	FeatureImpresionTickets,
	FeatureSoporte24h,
	FeatureAPI,
	FeatureWhiteLabel,
}

// IsValidFeature indica si el nombre corresponde a una funcionalidad conocida.
func IsValidFeature(f Feature) bool {
	for _, known := range AllFeatures {
		if f == known {
			return true
		}
	}
	return false
}

// HasFeature indica si el plan incluye la funcionalidad dada.
func (p *Plan) HasFeature(f Feature) bool {
	switch f {
	case FeaturePOS:
		return p.IncluyePOS
	case FeatureInventarioBasico:
		return p.IncluyeInventarioBasico
	case FeatureInventarioAvanzado:
		return p.IncluyeInventarioAvanzado
	case FeaturePromociones:
		return p.IncluyePromociones
	case FeatureReservas:
		return p.IncluyeReservas
	case FeatureArqueoCaja:
		return p.IncluyeArqueoCaja
	case FeatureEgresos:
		return p.IncluyeEgresos
	case FeatureEgresosAvanzados:
		return p.IncluyeEgresosAvanzados
	case FeatureReportesAvanzados:
		return p.IncluyeReportesAvanzados
	case FeatureAnalytics:
		return p.IncluyeAnalytics
	case FeatureDelivery:
		return p.IncluyeDelivery
	case FeatureImpresionTickets:
		return p.IncluyeImpresionTickets
	case FeatureSoporte24h:
		return p.IncluyeSoporte24h
	case FeatureAPI:
		return p.IncluyeAPI
	case FeatureWhiteLabel:
		return p.IncluyeWhiteLabel
	default:
		return false
	}
}

// Recurso identifica un tipo de recurso limitado por plan.
type Recurso string

const (
	RecursoSucursales     Recurso = "sucursales"
	RecursoUsuarios       Recurso = "usuarios"
	RecursoProductos      Recurso = "productos"
	RecursoTransacciones  Recurso = "transacciones"
	RecursoAlmacenamiento Recurso = "almacenamiento"
)

// AllRecursos lista todos los tipos de recurso contabilizados.
var AllRecursos = []Recurso{
	RecursoSucursales,
	RecursoUsuarios,
	RecursoProductos,
	RecursoTransacciones,
	RecursoAlmacenamiento,
}

// IsValidRecurso indica si el nombre corresponde a un recurso conocido.
func IsValidRecurso(r Recurso) bool {
	for _, known := range AllRecursos {
		if r == known {
			return true
		}
	}
	return false
}

// Limite devuelve el techo del plan para el recurso dado.
// El almacenamiento se expresa en MB (la columna guarda GB).
// Un valor <= 0 significa ilimitado.
func (p *Plan) Limite(r Recurso) int {
	switch r {
	case RecursoSucursales:
		return p.MaxSucursales
	case RecursoUsuarios:
		return p.MaxUsuarios
	case RecursoProductos:
		return p.MaxProductos
	case RecursoTransacciones:
		return p.MaxTransaccionesMes
	case RecursoAlmacenamiento:
		if p.AlmacenamientoGB <= 0 {
			return 0
		}
		return p.AlmacenamientoGB * 1024
	default:
		return 0
	}
}
