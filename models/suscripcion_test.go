package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSuscripcionEstaVencida(t *testing.T) {
	ahora := time.Date(2026, 8, 15, 12, 30, 0, 0, time.UTC)

	sinFin := Suscripcion{}
	assert.False(t, sinFin.EstaVencida(ahora))

	ayer := ahora.AddDate(0, 0, -1)
	vencida := Suscripcion{FechaFin: &ayer}
	assert.True(t, vencida.EstaVencida(ahora))

	// El mismo día todavía cuenta como vigente
	hoyTemprano := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	vigente := Suscripcion{FechaFin: &hoyTemprano}
	assert.False(t, vigente.EstaVencida(ahora))
}

func TestSuscripcionDiasRestantes(t *testing.T) {
	ahora := time.Date(2026, 8, 15, 12, 30, 0, 0, time.UTC)

	sinFin := Suscripcion{}
	_, tieneFin := sinFin.DiasRestantes(ahora)
	assert.False(t, tieneFin)

	enCinco := ahora.AddDate(0, 0, 5)
	s := Suscripcion{FechaFin: &enCinco}
	dias, tieneFin := s.DiasRestantes(ahora)
	assert.True(t, tieneFin)
	assert.Equal(t, 5, dias)

	haceTres := ahora.AddDate(0, 0, -3)
	s = Suscripcion{FechaFin: &haceTres}
	dias, _ = s.DiasRestantes(ahora)
	assert.Equal(t, -3, dias)
}

func TestContadorUsoPorcentaje(t *testing.T) {
	c := ContadorUso{UsoActual: 45, LimitePlan: 50}
	assert.InDelta(t, 90.0, c.Porcentaje(), 0.001)
	assert.False(t, c.Ilimitado())

	sobre := ContadorUso{UsoActual: 60, LimitePlan: 50}
	assert.InDelta(t, 120.0, sobre.Porcentaje(), 0.001)

	ilimitado := ContadorUso{UsoActual: 1000, LimitePlan: 0}
	assert.Zero(t, ilimitado.Porcentaje())
	assert.True(t, ilimitado.Ilimitado())
}
