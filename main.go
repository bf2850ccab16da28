package main

import (
	"log"

	"backend_resto/api"
	"backend_resto/config"
	"backend_resto/database"
	"backend_resto/middleware"
	"backend_resto/models"
	"backend_resto/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// initDB inicializa la conexión a la base de datos
func initDB() {
	log.Println("🔧 Inicializando base de datos...")

	// Creamos la base de datos si no existe
	if err := database.CreateDatabaseIfNotExists(); err != nil {
		log.Fatal("❌ Error al crear la base de datos:", err)
	}

	if err := database.ConnectDatabase(); err != nil {
		log.Fatal("❌ Error de conexión a la base de datos:", err)
	}

	log.Println("✅ Base de datos inicializada correctamente")
}

func main() {
	// LoadConfig ya carga el archivo .env si existe
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("❌ Error de configuración:", err)
	}
	cfg.LogConfig()

	initDB()

	// Redis es opcional: sin él, el catálogo consulta siempre la BD
	if err := database.InitRedis(); err != nil {
		log.Printf("⚠️ Redis no disponible, se trabaja sin caché: %v", err)
		database.Redis = nil
	}

	// Middleware compartido
	auth := middleware.NewAuthMiddleware(cfg)
	gate := middleware.NewLimitGate(database.DB)
	tracking := middleware.NewTrackingMiddleware(services.NewUsageTracker(database.DB))

	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "success",
			"message":  "pong",
			"database": "connected",
		})
	})

	// Autenticación
	r.POST("/api/auth/login", api.Login)

	// Catálogo de planes (lectura pública, administración protegida)
	r.GET("/api/planes", api.GetPlanes)
	r.GET("/api/planes/:id", api.GetPlan)
	r.GET("/api/planes/:id/limites", api.GetPlanLimites)

	admin := r.Group("/api/admin", auth.RequireAuth())
	{
		admin.POST("/planes", api.CreatePlan)
		admin.PUT("/planes/:id", api.UpdatePlan)
		admin.DELETE("/planes/:id", api.DeactivatePlan)

		// Suscripciones (gestión administrativa y de facturación)
		admin.GET("/restaurantes/:id_restaurante/suscripciones", api.GetSuscripciones)
		admin.GET("/restaurantes/:id_restaurante/suscripciones/activa", api.GetSuscripcionActiva)
		admin.POST("/suscripciones", api.CreateSuscripcion)
		admin.PUT("/suscripciones/:id/plan", api.ChangePlanSuscripcion)
		admin.POST("/suscripciones/:id/suspender", api.SuspenderSuscripcion)
		admin.POST("/suscripciones/:id/reactivar", api.ReactivarSuscripcion)
		admin.POST("/suscripciones/:id/cancelar", api.CancelarSuscripcion)
		admin.GET("/suscripciones/por-vencer", api.GetSuscripcionesPorVencer)
		admin.GET("/suscripciones/estadisticas", api.GetEstadisticasSuscripciones)

		// Contadores de uso
		admin.GET("/restaurantes/:id_restaurante/uso", api.GetUsoActual)
		admin.POST("/restaurantes/:id_restaurante/uso/recalcular", api.RecalcularUso)
		admin.GET("/uso/estadisticas", api.GetEstadisticasUso)

		// Alertas de límites
		admin.GET("/restaurantes/:id_restaurante/alertas", api.GetAlertas)
		admin.GET("/alertas/criticas", api.GetAlertasCriticas)
		admin.GET("/alertas/pendientes", api.GetAlertasPendientes)
		admin.GET("/alertas/recurso/:recurso", api.GetAlertasPorRecurso)
		admin.POST("/alertas/:id/enviada", api.MarcarAlertaEnviada)
		admin.POST("/alertas/:id/resolver", api.ResolverAlerta)
		admin.POST("/alertas/:id/ignorar", api.IgnorarAlerta)
		admin.DELETE("/alertas/antiguas", api.PurgarAlertasAntiguas)
		admin.GET("/alertas/estadisticas", api.GetEstadisticasAlertas)
		admin.GET("/alertas/estadisticas/por-tipo", api.GetEstadisticasAlertasPorTipo)
		admin.GET("/alertas/estadisticas/por-restaurante", api.GetEstadisticasAlertasPorRestaurante)
	}

	// Operación del restaurante: toda mutación pasa por la cadena de
	// gates y dispara el seguimiento de uso al terminar con éxito
	app := r.Group("/api", auth.RequireAuth(), gate.RequireNotCancelled(), gate.RequireNotSuspended())
	{
		app.GET("/sucursales", api.GetSucursales)
		app.GET("/vendedores", api.GetVendedores)
		app.GET("/productos", api.GetProductos)
		app.GET("/ventas", api.GetVentas)

		mutaciones := app.Group("", gate.RequireActiveSubscription(), tracking.TrackUsage())
		{
			mutaciones.POST("/sucursales",
				gate.RequireResourceCapacity(models.RecursoSucursales, 1), api.CreateSucursal)
			mutaciones.PUT("/sucursales/:id/baja", api.DeactivateSucursal)

			mutaciones.POST("/vendedores",
				gate.RequireResourceCapacity(models.RecursoUsuarios, 1), api.CreateVendedor)
			mutaciones.PUT("/vendedores/:id/baja", api.DeactivateVendedor)

			mutaciones.POST("/productos",
				gate.RequireResourceCapacity(models.RecursoProductos, 1), api.CreateProducto)
			mutaciones.PUT("/productos/:id", api.UpdateProducto)
			mutaciones.PUT("/productos/:id/baja", api.DeactivateProducto)

			mutaciones.POST("/ventas",
				gate.RequireFeature(models.FeaturePOS),
				gate.RequireResourceCapacity(models.RecursoTransacciones, 1), api.CreateVenta)
			mutaciones.POST("/ventas/:id/cancelar", api.CancelarVenta)
		}

		reportes := app.Group("/reportes", gate.RequireActiveSubscription(),
			gate.RequireFeature(models.FeatureReportesAvanzados))
		{
			reportes.GET("/uso/excel", api.DownloadReporteUsoExcel)
			reportes.GET("/uso/pdf", api.DownloadReporteUsoPDF)
		}
	}

	// Tareas programadas de mantenimiento
	if cfg.Scheduler.Enabled {
		scheduler := services.NewSchedulerService(database.DB, cfg)
		if err := scheduler.Start(); err != nil {
			log.Printf("⚠️ No se pudo iniciar el planificador: %v", err)
		} else {
			defer scheduler.Stop()
		}
	}

	log.Printf("🚀 Servidor iniciado en el puerto %s", cfg.App.Port)
	r.Run(":" + cfg.App.Port)
}
