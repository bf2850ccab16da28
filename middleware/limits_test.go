package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend_resto/models"
	"backend_resto/services"
	"backend_resto/testutils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupGateTest(t *testing.T) (*gorm.DB, *LimitGate) {
	gin.SetMode(gin.TestMode)

	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testutils.CleanupTestDB(db) })

	return db, NewLimitGate(db)
}

// conTenant simula la identidad que RequireAuth deja en el contexto
func conTenant(idRestaurante uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		if idRestaurante != 0 {
			c.Set("id_restaurante", idRestaurante)
		}
		c.Next()
	}
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func ejecutar(router *gin.Engine, metodo, ruta string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(metodo, ruta, nil)
	router.ServeHTTP(w, req)
	return w
}

func cuerpoDenegacion(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestGateSinTenant(t *testing.T) {
	_, gate := setupGateTest(t)

	router := gin.New()
	router.POST("/recurso", conTenant(0), gate.RequireActiveSubscription(), okHandler)

	w := ejecutar(router, http.MethodPost, "/recurso")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := cuerpoDenegacion(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "MISSING_TENANT", body["error"])
}

func TestGateSinSuscripcion(t *testing.T) {
	db, gate := setupGateTest(t)

	restaurante := testutils.CreateTestRestaurante(db)

	router := gin.New()
	router.POST("/recurso", conTenant(restaurante.ID), gate.RequireActiveSubscription(), okHandler)

	w := ejecutar(router, http.MethodPost, "/recurso")
	assert.Equal(t, http.StatusForbidden, w.Code)

	body := cuerpoDenegacion(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, CodigoSinSuscripcion, body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestGateSuscripcionVencida(t *testing.T) {
	db, gate := setupGateTest(t)

	restaurante := testutils.CreateTestRestaurante(db)
	plan := testutils.CreateTestPlan(db, "basico", 1, 3, 50, 500)

	// Estado todavía "activa" pero con fecha de fin superada
	haceCinco := time.Now().AddDate(0, 0, -5)
	require.NoError(t, db.Create(&models.Suscripcion{
		IDRestaurante: restaurante.ID,
		IDPlan:        plan.ID,
		FechaInicio:   time.Now().AddDate(0, -2, 0),
		FechaFin:      &haceCinco,
		Estado:        models.EstadoSuscripcionActiva,
	}).Error)

	router := gin.New()
	router.POST("/recurso", conTenant(restaurante.ID), gate.RequireActiveSubscription(), okHandler)

	w := ejecutar(router, http.MethodPost, "/recurso")
	assert.Equal(t, http.StatusForbidden, w.Code)

	body := cuerpoDenegacion(t, w)
	assert.Equal(t, CodigoSuscripcionExpirada, body["error"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.NotNil(t, data["endDate"])
	assert.Equal(t, float64(5), data["daysOverdue"])
}

func TestGateSuscripcionSuspendida(t *testing.T) {
	db, gate := setupGateTest(t)

	restaurante := testutils.CreateTestRestaurante(db)
	plan := testutils.CreateTestPlan(db, "basico", 1, 3, 50, 500)
	suscripcion := testutils.CreateTestSuscripcion(db, restaurante.ID, plan.ID)

	suscripciones := services.NewSuscripcionService(db)
	_, err := suscripciones.Suspend(suscripcion.ID, "falta de pago")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/recurso", conTenant(restaurante.ID), gate.RequireNotSuspended(), okHandler)

	w := ejecutar(router, http.MethodGet, "/recurso")
	assert.Equal(t, http.StatusForbidden, w.Code)

	body := cuerpoDenegacion(t, w)
	assert.Equal(t, CodigoSuscripcionSuspendida, body["error"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "falta de pago", data["reason"])
	assert.NotNil(t, data["suspendedAt"])
}

func TestGateSuscripcionCancelada(t *testing.T) {
	db, gate := setupGateTest(t)

	restaurante := testutils.CreateTestRestaurante(db)
	plan := testutils.CreateTestPlan(db, "basico", 1, 3, 50, 500)
	suscripcion := testutils.CreateTestSuscripcion(db, restaurante.ID, plan.ID)

	suscripciones := services.NewSuscripcionService(db)
	_, err := suscripciones.Cancel(suscripcion.ID, "cierre del negocio")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/recurso", conTenant(restaurante.ID), gate.RequireNotCancelled(), okHandler)

	w := ejecutar(router, http.MethodGet, "/recurso")
	assert.Equal(t, http.StatusForbidden, w.Code)

	body := cuerpoDenegacion(t, w)
	assert.Equal(t, CodigoSuscripcionCancelada, body["error"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "cierre del negocio", data["reason"])
	assert.NotNil(t, data["cancelledAt"])
}

func TestGateAdvertenciaDeVencimientoNoBloquea(t *testing.T) {
	db, gate := setupGateTest(t)

	restaurante := testutils.CreateTestRestaurante(db)
	plan := testutils.CreateTestPlan(db, "basico", 1, 3, 50, 500)

	// Vence en 5 días: pasa, pero con la advertencia en la respuesta
	enCinco := time.Now().AddDate(0, 0, 5)
	require.NoError(t, db.Create(&models.Suscripcion{
		IDRestaurante: restaurante.ID,
		IDPlan:        plan.ID,
		FechaInicio:   time.Now().AddDate(0, -1, 0),
		FechaFin:      &enCinco,
		Estado:        models.EstadoSuscripcionActiva,
	}).Error)

	router := gin.New()
	router.POST("/recurso", conTenant(restaurante.ID), gate.RequireActiveSubscription(), okHandler)

	w := ejecutar(router, http.MethodPost, "/recurso")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Suscripcion-Vence"))
}

func TestGateFuncionalidadNoContratada(t *testing.T) {
	db, gate := setupGateTest(t)

	restaurante := testutils.CreateTestRestaurante(db)

	// El plan contratado no incluye reportes avanzados; otro del catálogo sí
	basico := testutils.CreateTestPlan(db, "basico", 1, 3, 50, 500)
	require.NoError(t, db.Create(&models.Plan{
		Nombre: "avanzado", IncluyeReportesAvanzados: true, OrdenDisplay: 2, Activo: true,
	}).Error)
	testutils.CreateTestSuscripcion(db, restaurante.ID, basico.ID)

	router := gin.New()
	router.GET("/reportes", conTenant(restaurante.ID),
		gate.RequireActiveSubscription(),
		gate.RequireFeature(models.FeatureReportesAvanzados), okHandler)

	w := ejecutar(router, http.MethodGet, "/reportes")
	assert.Equal(t, http.StatusForbidden, w.Code)

	body := cuerpoDenegacion(t, w)
	assert.Equal(t, CodigoFuncionNoDisponible, body["error"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(models.FeatureReportesAvanzados), data["feature"])
	assert.Equal(t, "basico", data["plan"])
	assert.Contains(t, data["availablePlans"], "avanzado")
}

func TestGateFuncionalidadContratadaPasa(t *testing.T) {
	db, gate := setupGateTest(t)

	restaurante := testutils.CreateTestRestaurante(db)
	plan := testutils.CreateTestPlan(db, "basico", 1, 3, 50, 500)
	testutils.CreateTestSuscripcion(db, restaurante.ID, plan.ID)

	// IncluyePOS viene activado por defecto en el catálogo
	router := gin.New()
	router.POST("/ventas", conTenant(restaurante.ID),
		gate.RequireActiveSubscription(),
		gate.RequireFeature(models.FeaturePOS), okHandler)

	w := ejecutar(router, http.MethodPost, "/ventas")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGateLimiteExcedido(t *testing.T) {
	db, gate := setupGateTest(t)

	restaurante := testutils.CreateTestRestaurante(db)
	plan := testutils.CreateTestPlan(db, "basico", 1, 3, 1, 500)
	testutils.CreateTestSuscripcion(db, restaurante.ID, plan.ID)

	router := gin.New()
	router.POST("/productos", conTenant(restaurante.ID),
		gate.RequireActiveSubscription(),
		gate.RequireResourceCapacity(models.RecursoProductos, 1), okHandler)

	// Con 0 de 1 productos la petición pasa
	w := ejecutar(router, http.MethodPost, "/productos")
	assert.Equal(t, http.StatusOK, w.Code)

	// Con el techo lleno se deniega con el detalle del límite
	testutils.CreateTestProducto(db, restaurante.ID, "Tacos")
	contadores := services.NewContadorUsoService(db)
	_, err := contadores.RecomputeAll(restaurante.ID)
	require.NoError(t, err)

	w = ejecutar(router, http.MethodPost, "/productos")
	assert.Equal(t, http.StatusForbidden, w.Code)

	body := cuerpoDenegacion(t, w)
	assert.Equal(t, CodigoLimiteExcedido, body["error"])

	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(models.RecursoProductos), data["resource"])
	assert.Equal(t, float64(1), data["ceiling"])
	assert.Equal(t, float64(1), data["currentUsage"])
	assert.Equal(t, "basico", data["plan"])
}
