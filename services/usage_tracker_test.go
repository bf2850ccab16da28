package services

import (
	"fmt"
	"testing"

	"backend_resto/models"
	"backend_resto/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackRecuentaYGeneraAlertas(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testutils.CleanupTestDB(db) })

	restaurante := testutils.CreateTestRestaurante(db)
	plan := testutils.CreateTestPlan(db, "basico", 1, 3, 50, 500)
	testutils.CreateTestSuscripcion(db, restaurante.ID, plan.ID)

	// 50 de 50 productos: el seguimiento debe dejar una alerta crítica
	for i := 0; i < 50; i++ {
		testutils.CreateTestProducto(db, restaurante.ID, fmt.Sprintf("Producto %d", i))
	}

	tracker := NewUsageTracker(db)
	tracker.Track(restaurante.ID)

	var contador models.ContadorUso
	require.NoError(t, db.Where("id_restaurante = ? AND recurso = ?",
		restaurante.ID, models.RecursoProductos).First(&contador).Error)
	assert.Equal(t, 50, contador.UsoActual)
	assert.Equal(t, 50, contador.LimitePlan)

	var alertas []models.AlertaLimite
	require.NoError(t, db.Where("id_restaurante = ? AND recurso = ?",
		restaurante.ID, models.RecursoProductos).Find(&alertas).Error)
	require.Len(t, alertas, 1)
	assert.Equal(t, models.UrgenciaCritica, alertas[0].NivelUrgencia)
	assert.Equal(t, models.EstadoAlertaPendiente, alertas[0].Estado)

	// Un segundo seguimiento inmediato deduplica
	tracker.Track(restaurante.ID)

	var total int64
	require.NoError(t, db.Model(&models.AlertaLimite{}).
		Where("id_restaurante = ?", restaurante.ID).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}

func TestTrackAbsorbeFallos(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testutils.CleanupTestDB(db) })

	// Restaurante sin suscripción: el seguimiento no debe propagar el error
	restaurante := testutils.CreateTestRestaurante(db)

	tracker := NewUsageTracker(db)
	assert.NotPanics(t, func() { tracker.Track(restaurante.ID) })

	var total int64
	require.NoError(t, db.Model(&models.ContadorUso{}).Count(&total).Error)
	assert.Zero(t, total)
}

func TestTrackBajoDelUmbralNoAlerta(t *testing.T) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testutils.CleanupTestDB(db) })

	restaurante := testutils.CreateTestRestaurante(db)
	plan := testutils.CreateTestPlan(db, "basico", 1, 3, 50, 500)
	testutils.CreateTestSuscripcion(db, restaurante.ID, plan.ID)

	// 10 de 50 productos: 20%, muy lejos del umbral
	for i := 0; i < 10; i++ {
		testutils.CreateTestProducto(db, restaurante.ID, fmt.Sprintf("Producto %d", i))
	}

	tracker := NewUsageTracker(db)
	tracker.Track(restaurante.ID)

	var total int64
	require.NoError(t, db.Model(&models.AlertaLimite{}).Count(&total).Error)
	assert.Zero(t, total)
}
