package services

import (
	"testing"
	"time"

	"backend_resto/models"
	"backend_resto/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSuscripcionTest(t *testing.T) (*gorm.DB, *SuscripcionService, *models.Restaurante, *models.Plan) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testutils.CleanupTestDB(db) })

	restaurante := testutils.CreateTestRestaurante(db)
	require.NotNil(t, restaurante)

	plan := testutils.CreateTestPlan(db, "basico", 1, 3, 50, 500)
	require.NotNil(t, plan)

	return db, NewSuscripcionService(db), restaurante, plan
}

func TestSuscripcionCreate(t *testing.T) {
	_, servicio, restaurante, plan := setupSuscripcionTest(t)

	suscripcion, err := servicio.Create(CreateSubscriptionRequest{
		IDRestaurante: restaurante.ID,
		IDPlan:        plan.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.EstadoSuscripcionActiva, suscripcion.Estado)
	assert.NotEmpty(t, suscripcion.ReferenciaPago)

	activa, err := servicio.GetActiveSubscription(restaurante.ID)
	require.NoError(t, err)
	require.NotNil(t, activa)
	assert.Equal(t, suscripcion.ID, activa.ID)
	assert.Equal(t, plan.Nombre, activa.Plan.Nombre)
}

func TestSuscripcionCreatePlanInvalido(t *testing.T) {
	_, servicio, restaurante, _ := setupSuscripcionTest(t)

	_, err := servicio.Create(CreateSubscriptionRequest{
		IDRestaurante: restaurante.ID,
		IDPlan:        999,
	})
	assert.ErrorIs(t, err, ErrPlanNoEncontrado)
}

func TestSuscripcionExactamenteUnaActiva(t *testing.T) {
	_, servicio, restaurante, plan := setupSuscripcionTest(t)

	_, err := servicio.Create(CreateSubscriptionRequest{IDRestaurante: restaurante.ID, IDPlan: plan.ID})
	require.NoError(t, err)

	_, err = servicio.Create(CreateSubscriptionRequest{IDRestaurante: restaurante.ID, IDPlan: plan.ID})
	assert.ErrorIs(t, err, ErrSuscripcionActivaExistente)
}

func TestSuscripcionExpiracionPerezosa(t *testing.T) {
	db, servicio, restaurante, plan := setupSuscripcionTest(t)

	// Estado todavía "activa" pero la fecha de fin fue ayer
	ayer := time.Now().AddDate(0, 0, -1)
	vencida := models.Suscripcion{
		IDRestaurante: restaurante.ID,
		IDPlan:        plan.ID,
		FechaInicio:   time.Now().AddDate(0, -2, 0),
		FechaFin:      &ayer,
		Estado:        models.EstadoSuscripcionActiva,
	}
	require.NoError(t, db.Create(&vencida).Error)

	// Las lecturas la tratan como no activa
	activa, err := servicio.GetActiveSubscription(restaurante.ID)
	require.NoError(t, err)
	assert.Nil(t, activa)

	// Crear una nueva marca la vieja como expirada y procede
	nueva, err := servicio.Create(CreateSubscriptionRequest{IDRestaurante: restaurante.ID, IDPlan: plan.ID})
	require.NoError(t, err)
	assert.Equal(t, models.EstadoSuscripcionActiva, nueva.Estado)

	var vieja models.Suscripcion
	require.NoError(t, db.First(&vieja, vencida.ID).Error)
	assert.Equal(t, models.EstadoSuscripcionExpirada, vieja.Estado)
}

func TestSuscripcionSuspenderYReactivar(t *testing.T) {
	_, servicio, restaurante, plan := setupSuscripcionTest(t)

	suscripcion, err := servicio.Create(CreateSubscriptionRequest{IDRestaurante: restaurante.ID, IDPlan: plan.ID})
	require.NoError(t, err)

	suspendida, err := servicio.Suspend(suscripcion.ID, "falta de pago")
	require.NoError(t, err)
	assert.Equal(t, models.EstadoSuscripcionSuspendida, suspendida.Estado)
	assert.Equal(t, "falta de pago", suspendida.MotivoSuspension)
	assert.NotNil(t, suspendida.FechaSuspension)

	// Suspender dos veces no está permitido
	_, err = servicio.Suspend(suscripcion.ID, "otra vez")
	assert.ErrorIs(t, err, ErrTransicionInvalida)

	// La reactivación limpia los campos de suspensión
	reactivada, err := servicio.Reactivate(suscripcion.ID, "pago recibido")
	require.NoError(t, err)
	assert.Equal(t, models.EstadoSuscripcionActiva, reactivada.Estado)
	assert.Empty(t, reactivada.MotivoSuspension)
	assert.Nil(t, reactivada.FechaSuspension)
}

func TestSuscripcionCancelarEsTerminal(t *testing.T) {
	_, servicio, restaurante, plan := setupSuscripcionTest(t)

	suscripcion, err := servicio.Create(CreateSubscriptionRequest{
		IDRestaurante:  restaurante.ID,
		IDPlan:         plan.ID,
		AutoRenovacion: true,
	})
	require.NoError(t, err)

	cancelada, err := servicio.Cancel(suscripcion.ID, "cierre del negocio")
	require.NoError(t, err)
	assert.Equal(t, models.EstadoSuscripcionCancelada, cancelada.Estado)
	assert.False(t, cancelada.AutoRenovacion)
	assert.NotNil(t, cancelada.FechaCancelacion)

	// Ninguna transición sale de cancelada
	_, err = servicio.Cancel(suscripcion.ID, "de nuevo")
	assert.ErrorIs(t, err, ErrTransicionInvalida)
	_, err = servicio.Suspend(suscripcion.ID, "tarde")
	assert.ErrorIs(t, err, ErrTransicionInvalida)
	_, err = servicio.Reactivate(suscripcion.ID, "tarde")
	assert.ErrorIs(t, err, ErrTransicionInvalida)
	_, err = servicio.ChangePlan(suscripcion.ID, plan.ID)
	assert.ErrorIs(t, err, ErrTransicionInvalida)
}

func TestSuscripcionCancelarDesdeSuspendida(t *testing.T) {
	_, servicio, restaurante, plan := setupSuscripcionTest(t)

	suscripcion, err := servicio.Create(CreateSubscriptionRequest{IDRestaurante: restaurante.ID, IDPlan: plan.ID})
	require.NoError(t, err)

	_, err = servicio.Suspend(suscripcion.ID, "falta de pago")
	require.NoError(t, err)

	cancelada, err := servicio.Cancel(suscripcion.ID, "sin respuesta")
	require.NoError(t, err)
	assert.Equal(t, models.EstadoSuscripcionCancelada, cancelada.Estado)
}

func TestSuscripcionNoEncontrada(t *testing.T) {
	_, servicio, _, _ := setupSuscripcionTest(t)

	_, err := servicio.GetSubscription(12345)
	assert.ErrorIs(t, err, ErrSuscripcionNoEncontrada)

	_, err = servicio.Suspend(12345, "x")
	assert.ErrorIs(t, err, ErrSuscripcionNoEncontrada)
}

func TestSuscripcionPorVencerYMarkExpired(t *testing.T) {
	db, servicio, restaurante, plan := setupSuscripcionTest(t)

	enTresDias := time.Now().AddDate(0, 0, 3)
	porVencer := models.Suscripcion{
		IDRestaurante: restaurante.ID,
		IDPlan:        plan.ID,
		FechaInicio:   time.Now().AddDate(0, -1, 0),
		FechaFin:      &enTresDias,
		Estado:        models.EstadoSuscripcionActiva,
	}
	require.NoError(t, db.Create(&porVencer).Error)

	pronto, err := servicio.IsExpiringSoon(porVencer.ID, 7)
	require.NoError(t, err)
	assert.True(t, pronto)

	expirada, err := servicio.IsExpired(porVencer.ID)
	require.NoError(t, err)
	assert.False(t, expirada)

	lista, err := servicio.GetExpiringSoon(7)
	require.NoError(t, err)
	assert.Len(t, lista, 1)

	// El barrido no toca las que siguen vigentes
	n, err := servicio.MarkExpired()
	require.NoError(t, err)
	assert.Zero(t, n)

	ayer := time.Now().AddDate(0, 0, -1)
	require.NoError(t, db.Model(&porVencer).Update("fecha_fin", ayer).Error)

	n, err = servicio.MarkExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSuscripcionChangePlan(t *testing.T) {
	db, servicio, restaurante, plan := setupSuscripcionTest(t)

	mejor := testutils.CreateTestPlan(db, "profesional", 3, 10, 200, 2000)
	require.NotNil(t, mejor)

	suscripcion, err := servicio.Create(CreateSubscriptionRequest{IDRestaurante: restaurante.ID, IDPlan: plan.ID})
	require.NoError(t, err)

	cambiada, err := servicio.ChangePlan(suscripcion.ID, mejor.ID)
	require.NoError(t, err)
	assert.Equal(t, mejor.ID, cambiada.IDPlan)
	assert.NotNil(t, cambiada.FechaRenovacion)
}
