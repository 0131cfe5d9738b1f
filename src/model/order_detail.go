package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderDetail is one ticker/quantity/price line belonging to an order.
// Precio is meaningful only when EsOrdenMercado is false; market-order lines
// are persisted with a zero price and never contribute a computed total.
type OrderDetail struct {
	ID             string          `gorm:"type:uuid;primaryKey" json:"id"`
	OrdenID        string          `gorm:"type:uuid;not null;index" json:"orden_id"`
	Ticker         string          `gorm:"size:20;not null" json:"ticker"`
	Cantidad       int64           `gorm:"not null" json:"cantidad"`
	Precio         decimal.Decimal `gorm:"type:numeric(18,4)" json:"precio"`
	EsOrdenMercado bool            `json:"es_orden_mercado"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrderDetail) TableName() string {
	return "orden_detalles"
}

func (d *OrderDetail) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// Total returns precio*cantidad. ok is false for market-order lines, whose
// total is not applicable regardless of any price value stored.
func (d *OrderDetail) Total() (total decimal.Decimal, ok bool) {
	if d.EsOrdenMercado {
		return decimal.Zero, false
	}
	return d.Precio.Mul(decimal.NewFromInt(d.Cantidad)), true
}
