package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mazyad-entrepreneur/sync-vault/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// ClassifyStock — el umbral bajo es reorder_point*1.5 calculado en enteros
// (2q < 3rp), de modo que el límite es exacto: con rp=10, q=15 ya es "good".
// ──────────────────────────────────────────────────────────────────────────────

func TestClassifyStock_UmbralExacto(t *testing.T) {
	cases := []struct {
		name     string
		quantity int
		reorder  int
		want     domain.StockStatus
	}{
		{"por debajo del punto de reorden es crítico", 9, 10, domain.StockCritical},
		{"cero con reorden positivo es crítico", 0, 10, domain.StockCritical},
		{"igual al punto de reorden es bajo", 10, 10, domain.StockLow},
		{"justo debajo de 1.5x es bajo", 14, 10, domain.StockLow},
		{"exactamente 1.5x es good", 15, 10, domain.StockGood},
		{"por encima de 1.5x es good", 16, 10, domain.StockGood},
		{"reorden impar: 2q == 3rp es good", 15, 9, domain.StockGood}, // 2*15=30, 3*9=27
		{"reorden impar: justo debajo es bajo", 13, 9, domain.StockLow},
		{"reorden cero nunca es bajo", 0, 0, domain.StockGood},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.ClassifyStock(tc.quantity, tc.reorder)
			assert.Equal(t, tc.want, got,
				"q=%d rp=%d debe clasificar como %s", tc.quantity, tc.reorder, tc.want)
		})
	}
}

func TestIsLowStock_IncluyeCriticos(t *testing.T) {
	assert.True(t, domain.IsLowStock(5, 10), "un producto crítico también cuenta como stock bajo")
	assert.True(t, domain.IsLowStock(14, 10))
	assert.False(t, domain.IsLowStock(15, 10), "exactamente 1.5x ya no es stock bajo")
}
