package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Restaurante es el tenant del sistema: la unidad de aislamiento de
// suscripciones y cuotas.
type Restaurante struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Nombre    string `json:"nombre" gorm:"not null;type:varchar(150)"`
	Direccion string `json:"direccion" gorm:"type:text"`
	Telefono  string `json:"telefono" gorm:"type:varchar(30)"`
	Email     string `json:"email" gorm:"type:varchar(150)"`
	Activo    bool   `json:"activo" gorm:"default:true"`

	// Contacto para notificaciones de alertas de límites
	TelegramChatID int64 `json:"telegram_chat_id" gorm:"default:0"`
}

// TableName define el nombre de la tabla para el modelo Restaurante
func (Restaurante) TableName() string {
	return "restaurantes"
}

// Sucursal es una sede física de un restaurante. Las sucursales activas
// cuentan contra el techo max_sucursales del plan.
type Sucursal struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	IDRestaurante uint   `json:"id_restaurante" gorm:"not null;index"`
	Nombre        string `json:"nombre" gorm:"not null;type:varchar(150)"`
	Ciudad        string `json:"ciudad" gorm:"type:varchar(100)"`
	Direccion     string `json:"direccion" gorm:"type:text"`
	Activo        bool   `json:"activo" gorm:"default:true"`
}

// TableName define el nombre de la tabla para el modelo Sucursal
func (Sucursal) TableName() string {
	return "sucursales"
}

// Vendedor es una cuenta de personal de un restaurante. Los vendedores
// activos cuentan contra el techo max_usuarios del plan.
type Vendedor struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	IDRestaurante uint   `json:"id_restaurante" gorm:"not null;index"`
	IDSucursal    uint   `json:"id_sucursal" gorm:"index"`
	Nombre        string `json:"nombre" gorm:"not null;type:varchar(150)"`
	Username      string `json:"username" gorm:"uniqueIndex;not null;type:varchar(80)"`
	Email         string `json:"email" gorm:"type:varchar(150)"`
	Password      string `json:"-" gorm:"not null;type:varchar(100)"`
	Rol           string `json:"rol" gorm:"default:'cajero';type:varchar(30)"`
	Activo        bool   `json:"activo" gorm:"default:true"`
}

// TableName define el nombre de la tabla para el modelo Vendedor
func (Vendedor) TableName() string {
	return "vendedores"
}

// Producto es un artículo del menú. Los productos activos cuentan contra
// el techo max_productos del plan.
type Producto struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	IDRestaurante uint            `json:"id_restaurante" gorm:"not null;index"`
	Nombre        string          `json:"nombre" gorm:"not null;type:varchar(150)"`
	Categoria     string          `json:"categoria" gorm:"type:varchar(100)"`
	Precio        decimal.Decimal `json:"precio" gorm:"type:decimal(10,2)"`
	ImagenURL     string          `json:"imagen_url" gorm:"type:text"`
	Activo        bool            `json:"activo" gorm:"default:true"`
}

// TableName define el nombre de la tabla para el modelo Producto
func (Producto) TableName() string {
	return "productos"
}

// Estados posibles de una venta
const (
	EstadoVentaCompletada = "completada"
	EstadoVentaPendiente  = "pendiente"
	EstadoVentaCancelado  = "cancelado"
)

// Venta es una transacción de punto de venta. Las ventas del mes en curso
// con estado distinto de "cancelado" cuentan contra max_transacciones_mes.
type Venta struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	IDRestaurante uint   `json:"id_restaurante" gorm:"not null;index"`
	IDSucursal    uint   `json:"id_sucursal" gorm:"index"`
	IDVendedor    uint   `json:"id_vendedor" gorm:"index"`
	Folio         string `json:"folio" gorm:"uniqueIndex;type:varchar(40)"`

	Total      decimal.Decimal `json:"total" gorm:"type:decimal(10,2)"`
	MetodoPago string          `json:"metodo_pago" gorm:"type:varchar(30)"`
	// Estado: completada, pendiente, cancelado
	Estado     string    `json:"estado" gorm:"default:'completada';type:varchar(20);index"`
	FechaVenta time.Time `json:"fecha_venta" gorm:"index"`
}

// TableName define el nombre de la tabla para el modelo Venta
func (Venta) TableName() string {
	return "ventas"
}
