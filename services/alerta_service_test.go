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

func setupAlertaTest(t *testing.T) (*gorm.DB, *AlertaService, *models.Restaurante, *models.Plan) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testutils.CleanupTestDB(db) })

	restaurante := testutils.CreateTestRestaurante(db)
	require.NotNil(t, restaurante)

	plan := testutils.CreateTestPlan(db, "basico", 1, 3, 50, 500)
	require.NotNil(t, plan)

	return db, NewAlertaService(db), restaurante, plan
}

func TestUrgenciaParaPorcentaje(t *testing.T) {
	casos := []struct {
		pct      float64
		urgencia string
	}{
		{79.9, models.UrgenciaBaja},
		{80, models.UrgenciaMedia},
		{85, models.UrgenciaMedia},
		{89.9, models.UrgenciaMedia},
		{90, models.UrgenciaAlta},
		{99.9, models.UrgenciaAlta},
		{100, models.UrgenciaCritica},
		{120, models.UrgenciaCritica},
	}

	for _, caso := range casos {
		assert.Equal(t, caso.urgencia, UrgenciaParaPorcentaje(caso.pct),
			"porcentaje %.1f", caso.pct)
	}
}

func TestShouldCreateBajoElUmbral(t *testing.T) {
	_, servicio, restaurante, _ := setupAlertaTest(t)

	tipo := models.TipoAlertaParaRecurso(models.RecursoProductos)
	ok, err := servicio.ShouldCreate(restaurante.ID, tipo, 79.9)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = servicio.ShouldCreate(restaurante.ID, tipo, 80)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestShouldCreateDeduplicaEnVentana(t *testing.T) {
	_, servicio, restaurante, plan := setupAlertaTest(t)

	// Primera alerta al 82%: urgencia media
	alerta, err := servicio.Create(CreateAlertRequest{
		IDRestaurante: restaurante.ID,
		IDPlan:        plan.ID,
		Recurso:       models.RecursoProductos,
		ValorActual:   41,
		ValorLimite:   50,
		Porcentaje:    82,
	})
	require.NoError(t, err)
	assert.Equal(t, models.UrgenciaMedia, alerta.NivelUrgencia)
	assert.Equal(t, models.EstadoAlertaPendiente, alerta.Estado)
	assert.NotEmpty(t, alerta.Mensaje)

	// Minutos después al 85%: mismo tipo dentro de la ventana, se omite
	tipo := models.TipoAlertaParaRecurso(models.RecursoProductos)
	ok, err := servicio.ShouldCreate(restaurante.ID, tipo, 85)
	require.NoError(t, err)
	assert.False(t, ok)

	// Otro recurso no se ve afectado
	otroTipo := models.TipoAlertaParaRecurso(models.RecursoUsuarios)
	ok, err = servicio.ShouldCreate(restaurante.ID, otroTipo, 85)
	require.NoError(t, err)
	assert.True(t, ok)

	// Otro restaurante tampoco
	ok, err = servicio.ShouldCreate(restaurante.ID+100, tipo, 85)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestShouldCreateFueraDeVentana(t *testing.T) {
	db, _, restaurante, plan := setupAlertaTest(t)

	// Ventana corta para no depender del reloj en la prueba
	servicio := NewAlertaServiceConVentana(db, time.Hour)

	alerta, err := servicio.Create(CreateAlertRequest{
		IDRestaurante: restaurante.ID,
		IDPlan:        plan.ID,
		Recurso:       models.RecursoProductos,
		ValorActual:   41,
		ValorLimite:   50,
		Porcentaje:    82,
	})
	require.NoError(t, err)

	// Envejecemos la alerta más allá de la ventana
	vieja := time.Now().Add(-2 * time.Hour)
	require.NoError(t, db.Model(alerta).Update("fecha_alerta", vieja).Error)

	tipo := models.TipoAlertaParaRecurso(models.RecursoProductos)
	ok, err := servicio.ShouldCreate(restaurante.ID, tipo, 85)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestShouldCreateIgnoraAlertasTerminales(t *testing.T) {
	_, servicio, restaurante, plan := setupAlertaTest(t)

	alerta, err := servicio.Create(CreateAlertRequest{
		IDRestaurante: restaurante.ID,
		IDPlan:        plan.ID,
		Recurso:       models.RecursoProductos,
		ValorActual:   41,
		ValorLimite:   50,
		Porcentaje:    82,
	})
	require.NoError(t, err)

	_, err = servicio.Resolve(alerta.ID, "plan actualizado")
	require.NoError(t, err)

	// Resuelta dentro de la ventana ya no bloquea una nueva
	tipo := models.TipoAlertaParaRecurso(models.RecursoProductos)
	ok, err := servicio.ShouldCreate(restaurante.ID, tipo, 85)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateUsage(t *testing.T) {
	_, servicio, restaurante, plan := setupAlertaTest(t)

	uso := map[models.Recurso]UsoRecurso{
		models.RecursoProductos:      {UsoActual: 50, LimitePlan: 50, Porcentaje: 100},
		models.RecursoUsuarios:       {UsoActual: 1, LimitePlan: 3, Porcentaje: 33.33},
		models.RecursoSucursales:     {UsoActual: 0, LimitePlan: 0, Porcentaje: 0, Ilimitado: true},
		models.RecursoTransacciones:  {UsoActual: 460, LimitePlan: 500, Porcentaje: 92},
		models.RecursoAlmacenamiento: {UsoActual: 0, LimitePlan: 1024, Porcentaje: 0},
	}

	creadas, err := servicio.EvaluateUsage(restaurante.ID, plan.ID, uso)
	require.NoError(t, err)
	require.Len(t, creadas, 2)

	porRecurso := make(map[models.Recurso]models.AlertaLimite)
	for _, a := range creadas {
		porRecurso[a.Recurso] = a
	}

	assert.Equal(t, models.UrgenciaCritica, porRecurso[models.RecursoProductos].NivelUrgencia)
	assert.Equal(t, models.UrgenciaAlta, porRecurso[models.RecursoTransacciones].NivelUrgencia)

	// Segunda evaluación inmediata: la deduplicación no crea nada
	creadas, err = servicio.EvaluateUsage(restaurante.ID, plan.ID, uso)
	require.NoError(t, err)
	assert.Empty(t, creadas)
}

func TestMarkSentIncrementaNotificaciones(t *testing.T) {
	_, servicio, restaurante, plan := setupAlertaTest(t)

	alerta, err := servicio.Create(CreateAlertRequest{
		IDRestaurante: restaurante.ID,
		IDPlan:        plan.ID,
		Recurso:       models.RecursoProductos,
		ValorActual:   45,
		ValorLimite:   50,
		Porcentaje:    90,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, alerta.NotificacionesEnviadas)

	enviada, err := servicio.MarkSent(alerta.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EstadoAlertaEnviada, enviada.Estado)
	assert.Equal(t, 1, enviada.NotificacionesEnviadas)

	// Reenviar vuelve a incrementar
	enviada, err = servicio.MarkSent(alerta.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, enviada.NotificacionesEnviadas)
}

func TestResolverEIgnorarAlertas(t *testing.T) {
	_, servicio, restaurante, plan := setupAlertaTest(t)

	crear := func(recurso models.Recurso) *models.AlertaLimite {
		alerta, err := servicio.Create(CreateAlertRequest{
			IDRestaurante: restaurante.ID,
			IDPlan:        plan.ID,
			Recurso:       recurso,
			ValorActual:   45,
			ValorLimite:   50,
			Porcentaje:    90,
		})
		require.NoError(t, err)
		return alerta
	}

	resuelta, err := servicio.Resolve(crear(models.RecursoProductos).ID, "plan actualizado")
	require.NoError(t, err)
	assert.Equal(t, models.EstadoAlertaResuelta, resuelta.Estado)
	assert.Equal(t, "plan actualizado", resuelta.MensajeResolucion)
	assert.NotNil(t, resuelta.FechaResolucion)

	ignorada, err := servicio.Ignore(crear(models.RecursoUsuarios).ID, "falso positivo")
	require.NoError(t, err)
	assert.Equal(t, models.EstadoAlertaIgnorada, ignorada.Estado)

	_, err = servicio.Resolve(99999, "no existe")
	assert.ErrorIs(t, err, ErrAlertaNoEncontrada)
}

func TestDeleteOldSoloPurgaTerminalesViejas(t *testing.T) {
	db, servicio, restaurante, plan := setupAlertaTest(t)

	crear := func(recurso models.Recurso) *models.AlertaLimite {
		alerta, err := servicio.Create(CreateAlertRequest{
			IDRestaurante: restaurante.ID,
			IDPlan:        plan.ID,
			Recurso:       recurso,
			ValorActual:   45,
			ValorLimite:   50,
			Porcentaje:    90,
		})
		require.NoError(t, err)
		return alerta
	}

	envejecer := func(a *models.AlertaLimite, dias int) {
		fecha := time.Now().AddDate(0, 0, -dias)
		require.NoError(t, db.Model(a).Update("fecha_alerta", fecha).Error)
	}

	// Resuelta vieja: se purga
	resuelta := crear(models.RecursoProductos)
	_, err := servicio.Resolve(resuelta.ID, "ok")
	require.NoError(t, err)
	envejecer(resuelta, 120)

	// Ignorada vieja: se purga
	ignorada := crear(models.RecursoUsuarios)
	_, err = servicio.Ignore(ignorada.ID, "ruido")
	require.NoError(t, err)
	envejecer(ignorada, 120)

	// Pendiente vieja: se conserva aunque supere el corte
	pendiente := crear(models.RecursoSucursales)
	envejecer(pendiente, 120)

	// Resuelta reciente: se conserva
	reciente := crear(models.RecursoTransacciones)
	_, err = servicio.Resolve(reciente.ID, "ok")
	require.NoError(t, err)

	n, err := servicio.DeleteOld(90)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var restantes int64
	require.NoError(t, db.Model(&models.AlertaLimite{}).Count(&restantes).Error)
	assert.Equal(t, int64(2), restantes)
}

func TestGetPendingNotification(t *testing.T) {
	db, servicio, restaurante, plan := setupAlertaTest(t)

	alerta, err := servicio.Create(CreateAlertRequest{
		IDRestaurante: restaurante.ID,
		IDPlan:        plan.ID,
		Recurso:       models.RecursoProductos,
		ValorActual:   45,
		ValorLimite:   50,
		Porcentaje:    90,
	})
	require.NoError(t, err)

	pendientes, err := servicio.GetPendingNotification()
	require.NoError(t, err)
	assert.Len(t, pendientes, 1)

	// Pendiente de más de 7 días: caduca para el despacho
	vieja := time.Now().AddDate(0, 0, -10)
	require.NoError(t, db.Model(alerta).Update("fecha_alerta", vieja).Error)

	pendientes, err = servicio.GetPendingNotification()
	require.NoError(t, err)
	assert.Empty(t, pendientes)
}

func TestGetStats(t *testing.T) {
	_, servicio, restaurante, plan := setupAlertaTest(t)

	recursos := []models.Recurso{
		models.RecursoProductos,
		models.RecursoUsuarios,
		models.RecursoTransacciones,
	}
	porcentajes := []float64{100, 90, 82}

	var ids []uint
	for i, recurso := range recursos {
		alerta, err := servicio.Create(CreateAlertRequest{
			IDRestaurante: restaurante.ID,
			IDPlan:        plan.ID,
			Recurso:       recurso,
			ValorActual:   1,
			ValorLimite:   1,
			Porcentaje:    porcentajes[i],
		})
		require.NoError(t, err)
		ids = append(ids, alerta.ID)
	}

	_, err := servicio.Resolve(ids[2], "listo")
	require.NoError(t, err)

	stats, err := servicio.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Pendientes)
	assert.Equal(t, int64(1), stats.Resueltas)
	assert.Equal(t, int64(1), stats.Criticas)
	assert.Equal(t, int64(1), stats.Altas)
	assert.Equal(t, int64(1), stats.Medias)
	assert.Equal(t, int64(3), stats.Ultimos7Dias)
}
