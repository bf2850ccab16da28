package services

import (
	"testing"

	"backend_resto/models"
	"backend_resto/testutils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCatalogoTest(t *testing.T) (*gorm.DB, *PlanCatalogService) {
	db, err := testutils.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { testutils.CleanupTestDB(db) })

	return db, NewPlanCatalogService(db)
}

func TestGetPlanNoEncontrado(t *testing.T) {
	_, catalogo := setupCatalogoTest(t)

	_, err := catalogo.GetPlan(999)
	assert.ErrorIs(t, err, ErrPlanNoEncontrado)

	_, err = catalogo.GetPlanByName("inexistente")
	assert.ErrorIs(t, err, ErrPlanNoEncontrado)
}

func TestGetActivePlansOrdenados(t *testing.T) {
	db, catalogo := setupCatalogoTest(t)

	planes := []models.Plan{
		{Nombre: "avanzado", PrecioMensual: decimal.NewFromInt(999), OrdenDisplay: 3, Activo: true},
		{Nombre: "basico", PrecioMensual: decimal.NewFromInt(299), OrdenDisplay: 1, Activo: true},
		{Nombre: "retirado", PrecioMensual: decimal.NewFromInt(100), OrdenDisplay: 2, Activo: false},
		{Nombre: "profesional", PrecioMensual: decimal.NewFromInt(599), OrdenDisplay: 2, Activo: true},
	}
	for i := range planes {
		require.NoError(t, db.Create(&planes[i]).Error)
	}

	activos, err := catalogo.GetActivePlans()
	require.NoError(t, err)
	require.Len(t, activos, 3)
	assert.Equal(t, "basico", activos[0].Nombre)
	assert.Equal(t, "profesional", activos[1].Nombre)
	assert.Equal(t, "avanzado", activos[2].Nombre)
}

func TestHasFeatureYCeilings(t *testing.T) {
	db, catalogo := setupCatalogoTest(t)

	plan := models.Plan{
		Nombre:              "profesional",
		MaxSucursales:       3,
		MaxUsuarios:         10,
		MaxProductos:        200,
		MaxTransaccionesMes: 2000,
		AlmacenamientoGB:    5,
		IncluyePOS:          true,
		Activo:              true,
	}
	require.NoError(t, db.Create(&plan).Error)

	tiene, err := catalogo.HasFeature(plan.ID, models.FeaturePOS)
	require.NoError(t, err)
	assert.True(t, tiene)

	tiene, err = catalogo.HasFeature(plan.ID, models.FeatureReportesAvanzados)
	require.NoError(t, err)
	assert.False(t, tiene)

	techo, err := catalogo.GetCeiling(plan.ID, models.RecursoProductos)
	require.NoError(t, err)
	assert.Equal(t, 200, techo)

	// El almacenamiento se expone en MB
	techo, err = catalogo.GetCeiling(plan.ID, models.RecursoAlmacenamiento)
	require.NoError(t, err)
	assert.Equal(t, 5*1024, techo)
}

func TestGetPlansWithFeature(t *testing.T) {
	db, catalogo := setupCatalogoTest(t)

	require.NoError(t, db.Create(&models.Plan{
		Nombre: "basico", OrdenDisplay: 1, Activo: true,
	}).Error)
	require.NoError(t, db.Create(&models.Plan{
		Nombre: "avanzado", OrdenDisplay: 2, IncluyeReportesAvanzados: true, Activo: true,
	}).Error)
	require.NoError(t, db.Create(&models.Plan{
		Nombre: "retirado", OrdenDisplay: 3, IncluyeReportesAvanzados: true, Activo: false,
	}).Error)

	planes, err := catalogo.GetPlansWithFeature(models.FeatureReportesAvanzados)
	require.NoError(t, err)
	require.Len(t, planes, 1)
	assert.Equal(t, "avanzado", planes[0].Nombre)
}

func TestValidateActivePlan(t *testing.T) {
	db, catalogo := setupCatalogoTest(t)

	inactivo := models.Plan{Nombre: "retirado", Activo: false}
	require.NoError(t, db.Create(&inactivo).Error)

	_, err := catalogo.ValidateActivePlan(inactivo.ID)
	assert.ErrorIs(t, err, ErrPlanInactivo)

	_, err = catalogo.ValidateActivePlan(999)
	assert.ErrorIs(t, err, ErrPlanNoEncontrado)
}

func TestDeactivatePlan(t *testing.T) {
	db, catalogo := setupCatalogoTest(t)

	plan := models.Plan{Nombre: "basico", Activo: true}
	require.NoError(t, db.Create(&plan).Error)

	require.NoError(t, catalogo.DeactivatePlan(plan.ID))

	var actualizado models.Plan
	require.NoError(t, db.First(&actualizado, plan.ID).Error)
	assert.False(t, actualizado.Activo)

	assert.ErrorIs(t, catalogo.DeactivatePlan(999), ErrPlanNoEncontrado)
}
