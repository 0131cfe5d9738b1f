package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderObservation is an append-only free-text note attached to an order,
// optionally authored. There is no edit or retraction operation anywhere in
// the codebase.
type OrderObservation struct {
	ID            string `gorm:"type:uuid;primaryKey" json:"id"`
	OrdenID       string `gorm:"type:uuid;not null;index" json:"orden_id"`
	Texto         string `gorm:"not null" json:"texto"`
	UsuarioID     string `gorm:"size:60" json:"usuario_id,omitempty"`
	UsuarioNombre string `gorm:"size:255" json:"usuario_nombre,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (OrderObservation) TableName() string {
	return "orden_observaciones"
}

func (ob *OrderObservation) BeforeCreate(_ *gorm.DB) error {
	if ob.ID == "" {
		ob.ID = uuid.NewString()
	}
	return nil
}
