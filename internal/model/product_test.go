package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStockStatus(t *testing.T) {
	tests := []struct {
		name     string
		stock    int
		minStock int
		want     string
	}{
		{"zero stock is out of stock", 0, 5, ProductOutOfStock},
		{"zero stock with zero threshold", 0, 0, ProductOutOfStock},
		{"at threshold is low", 5, 5, ProductLowStock},
		{"below threshold is low", 3, 5, ProductLowStock},
		{"above threshold is available", 6, 5, ProductAvailable},
		{"no threshold, any stock available", 1, 0, ProductAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StockStatus(tt.stock, tt.minStock))
		})
	}
}

func TestProduct_RecalcStatus(t *testing.T) {
	p := Product{Stock: 10, MinStock: 3, Status: ProductAvailable}

	p.Stock = 3
	p.RecalcStatus()
	assert.Equal(t, ProductLowStock, p.Status)

	p.Stock = 0
	p.RecalcStatus()
	assert.Equal(t, ProductOutOfStock, p.Status)

	p.Stock = 20
	p.RecalcStatus()
	assert.Equal(t, ProductAvailable, p.Status)
}
