package testutils

import (
	"log"
	"time"

	"backend_resto/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB crea la base de datos de pruebas en memoria.
// Todas las pruebas deben usarla para mantener consistencia.
func SetupTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		// Catálogo y facturación
		&models.Plan{},
		&models.Suscripcion{},
		&models.ContadorUso{},
		&models.AlertaLimite{},

		// Tenant y tablas de origen
		&models.Restaurante{},
		&models.Sucursal{},
		&models.Vendedor{},
		&models.Producto{},
		&models.Venta{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// CleanupTestDB cierra la base de datos de pruebas
func CleanupTestDB(db *gorm.DB) {
	if db != nil {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
}

// CreateTestRestaurante crea un restaurante de prueba
func CreateTestRestaurante(db *gorm.DB) *models.Restaurante {
	restaurante := &models.Restaurante{
		Nombre: "Restaurante de Prueba",
		Email:  "prueba@example.com",
		Activo: true,
	}

	if err := db.Create(restaurante).Error; err != nil {
		log.Printf("Failed to create test restaurante: %v", err)
		return nil
	}

	return restaurante
}

// CreateTestPlan crea un plan de prueba con los techos indicados
func CreateTestPlan(db *gorm.DB, nombre string, maxSucursales, maxUsuarios, maxProductos, maxTransacciones int) *models.Plan {
	plan := &models.Plan{
		Nombre:              nombre,
		PrecioMensual:       decimal.NewFromInt(299),
		MaxSucursales:       maxSucursales,
		MaxUsuarios:         maxUsuarios,
		MaxProductos:        maxProductos,
		MaxTransaccionesMes: maxTransacciones,
		AlmacenamientoGB:    1,
		Activo:              true,
	}

	if err := db.Create(plan).Error; err != nil {
		log.Printf("Failed to create test plan: %v", err)
		return nil
	}

	return plan
}

// CreateTestSuscripcion crea una suscripción activa sin fecha de fin
func CreateTestSuscripcion(db *gorm.DB, idRestaurante, idPlan uint) *models.Suscripcion {
	suscripcion := &models.Suscripcion{
		IDRestaurante: idRestaurante,
		IDPlan:        idPlan,
		FechaInicio:   time.Now().AddDate(0, -1, 0),
		Estado:        models.EstadoSuscripcionActiva,
	}

	if err := db.Create(suscripcion).Error; err != nil {
		log.Printf("Failed to create test suscripcion: %v", err)
		return nil
	}

	return suscripcion
}

// CreateTestProducto crea un producto activo de prueba
func CreateTestProducto(db *gorm.DB, idRestaurante uint, nombre string) *models.Producto {
	producto := &models.Producto{
		IDRestaurante: idRestaurante,
		Nombre:        nombre,
		Precio:        decimal.NewFromInt(50),
		Activo:        true,
	}

	if err := db.Create(producto).Error; err != nil {
		log.Printf("Failed to create test producto: %v", err)
		return nil
	}

	return producto
}

// CreateTestVenta registra una venta de prueba en la fecha indicada
func CreateTestVenta(db *gorm.DB, idRestaurante uint, estado string, fecha time.Time) *models.Venta {
	venta := &models.Venta{
		IDRestaurante: idRestaurante,
		Folio:         uuid.NewString(),
		Total:         decimal.NewFromInt(120),
		Estado:        estado,
		FechaVenta:    fecha,
	}

	if err := db.Create(venta).Error; err != nil {
		log.Printf("Failed to create test venta: %v", err)
		return nil
	}

	return venta
}
