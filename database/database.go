package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"backend_resto/models"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// CreateDatabaseIfNotExists crea la base de datos si no existe
func CreateDatabaseIfNotExists() error {
	// Configuración de conexión
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "")
	dbname := getEnv("DB_NAME", "resto_db")
	sslmode := getEnv("DB_SSLMODE", "disable")

	// Nos conectamos a PostgreSQL sin indicar la BD concreta (a postgres por defecto)
	adminDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=%s",
		host, port, user, password, sslmode)

	db, err := sql.Open("postgres", adminDSN)
	if err != nil {
		return fmt.Errorf("no se pudo conectar a PostgreSQL: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("no se pudo verificar la conexión a PostgreSQL: %w", err)
	}

	// Verificamos si la base de datos ya existe
	var exists bool
	query := "SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = $1);"
	err = db.QueryRow(query, dbname).Scan(&exists)
	if err != nil {
		return fmt.Errorf("error al verificar la existencia de la base de datos: %w", err)
	}

	if exists {
		log.Printf("✅ La base de datos '%s' ya existe", dbname)
		return nil
	}

	createQuery := fmt.Sprintf("CREATE DATABASE %s;", dbname)
	_, err = db.Exec(createQuery)
	if err != nil {
		return fmt.Errorf("no se pudo crear la base de datos '%s': %w", dbname, err)
	}

	log.Printf("✅ Base de datos '%s' creada correctamente", dbname)
	return nil
}

// ConnectDatabase inicializa la conexión a PostgreSQL
func ConnectDatabase() error {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "")
	dbname := getEnv("DB_NAME", "resto_db")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return fmt.Errorf("no se pudo conectar a la base de datos: %w", err)
	}

	log.Println("✅ Conectado a PostgreSQL correctamente")

	// Automigración de modelos
	if err := autoMigrate(); err != nil {
		return fmt.Errorf("error de automigración: %w", err)
	}

	// Planes por defecto para instalaciones nuevas
	if err := seedDefaultPlans(); err != nil {
		return fmt.Errorf("error al sembrar planes por defecto: %w", err)
	}

	return nil
}

// getEnv obtiene una variable de entorno o devuelve el valor por defecto
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetDB devuelve la instancia de la base de datos
func GetDB() *gorm.DB {
	return DB
}

// autoMigrate ejecuta la automigración de todos los modelos
func autoMigrate() error {
	err := DB.AutoMigrate(
		// Catálogo y facturación
		&models.Plan{},
		&models.Suscripcion{},
		&models.ContadorUso{},
		&models.AlertaLimite{},

		// Tenant y tablas de origen contabilizadas
		&models.Restaurante{},
		&models.Sucursal{},
		&models.Vendedor{},
		&models.Producto{},
		&models.Venta{},
	)

	if err != nil {
		return err
	}

	log.Println("✅ Automigración de modelos ejecutada correctamente")
	return nil
}

// seedDefaultPlans inserta el catálogo inicial de planes si la tabla está vacía
func seedDefaultPlans() error {
	var count int64
	if err := DB.Model(&models.Plan{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	planes := []models.Plan{
		{
			Nombre:              "basico",
			Descripcion:         "Plan básico para un local con operación simple",
			PrecioMensual:       decimal.NewFromInt(299),
			PrecioAnual:         decimal.NewFromInt(2990),
			MaxSucursales:       1,
			MaxUsuarios:         3,
			MaxProductos:        50,
			MaxTransaccionesMes: 500,
			AlmacenamientoGB:    1,
			OrdenDisplay:        1,
			Activo:              true,
		},
		{
			Nombre:                    "profesional",
			Descripcion:               "Plan profesional con inventario avanzado y promociones",
			PrecioMensual:             decimal.NewFromInt(599),
			PrecioAnual:               decimal.NewFromInt(5990),
			MaxSucursales:             3,
			MaxUsuarios:               10,
			MaxProductos:              200,
			MaxTransaccionesMes:       2000,
			AlmacenamientoGB:          5,
			IncluyeInventarioAvanzado: true,
			IncluyePromociones:        true,
			IncluyeArqueoCaja:         true,
			IncluyeEgresos:            true,
			OrdenDisplay:              2,
			Activo:                    true,
		},
		{
			Nombre:                    "avanzado",
			Descripcion:               "Plan avanzado con reportes, analytics y delivery",
			PrecioMensual:             decimal.NewFromInt(999),
			PrecioAnual:               decimal.NewFromInt(9990),
			MaxSucursales:             10,
			MaxUsuarios:               30,
			MaxProductos:              1000,
			MaxTransaccionesMes:       10000,
			AlmacenamientoGB:          20,
			IncluyeInventarioAvanzado: true,
			IncluyePromociones:        true,
			IncluyeReservas:           true,
			IncluyeArqueoCaja:         true,
			IncluyeEgresos:            true,
			IncluyeEgresosAvanzados:   true,
			IncluyeReportesAvanzados:  true,
			IncluyeAnalytics:          true,
			IncluyeDelivery:           true,
			OrdenDisplay:              3,
			Activo:                    true,
		},
		{
			Nombre:        "enterprise",
			Descripcion:   "Plan enterprise sin límites y con soporte dedicado",
			PrecioMensual: decimal.NewFromInt(1999),
			PrecioAnual:   decimal.NewFromInt(19990),
			// Techos en 0 = ilimitado
			IncluyeInventarioAvanzado: true,
			IncluyePromociones:        true,
			IncluyeReservas:           true,
			IncluyeArqueoCaja:         true,
			IncluyeEgresos:            true,
			IncluyeEgresosAvanzados:   true,
			IncluyeReportesAvanzados:  true,
			IncluyeAnalytics:          true,
			IncluyeDelivery:           true,
			IncluyeSoporte24h:         true,
			IncluyeAPI:                true,
			IncluyeWhiteLabel:         true,
			OrdenDisplay:              4,
			Activo:                    true,
		},
	}

	if err := DB.Create(&planes).Error; err != nil {
		return err
	}

	log.Printf("✅ Catálogo inicial de planes creado (%d planes)", len(planes))
	return nil
}
