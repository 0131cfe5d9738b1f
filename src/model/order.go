package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OperationBuy  = "Compra"
	OperationSell = "Venta"
)

// Recognized status labels. The backend does not enforce transitions between
// them: the status update path accepts any string, and transition legality is
// a dashboard-side convention (the UI only suggests moves via which buttons it
// renders).
const (
	StatusPendiente  = "pendiente"
	StatusTomada     = "tomada"
	StatusEnProceso  = "En Proceso"
	StatusEjecutada  = "ejecutada"
	StatusCompletada = "completada"
	StatusCancelada  = "cancelada"
	StatusRechazada  = "rechazada"
)

// KnownStatuses lists the labels the dashboard knows how to render.
// Matching against them is always case-insensitive.
var KnownStatuses = []string{
	StatusPendiente,
	StatusTomada,
	StatusEnProceso,
	StatusEjecutada,
	StatusCompletada,
	StatusCancelada,
	StatusRechazada,
}

// Order is a client's buy/sell instruction tracked through a status lifecycle.
// ClienteNombre and ClienteCuenta are snapshots taken at creation time and are
// never re-synced against the client directory.
type Order struct {
	ID            string `gorm:"type:uuid;primaryKey" json:"id"`
	ClienteID     string `gorm:"size:60;index" json:"cliente_id"`
	ClienteNombre string `gorm:"size:255" json:"cliente_nombre"`
	ClienteCuenta string `gorm:"size:60" json:"cliente_cuenta"`
	TipoOperacion string `gorm:"size:20;not null" json:"tipo_operacion"`
	Estado        string `gorm:"size:50;not null;default:pendiente;index" json:"estado"`
	Mercado       string `gorm:"size:60" json:"mercado,omitempty"`
	Plazo         string `gorm:"size:60" json:"plazo,omitempty"`
	Notas         string `json:"notas,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// FK constraints cascade, so deleting an order removes its details and
	// observations in the same statement.
	Detalles      []OrderDetail      `gorm:"foreignKey:OrdenID;constraint:OnDelete:CASCADE" json:"detalles,omitempty"`
	Observaciones []OrderObservation `gorm:"foreignKey:OrdenID;constraint:OnDelete:CASCADE" json:"observaciones,omitempty"`
}

// TableName keeps the table name the dashboard schema uses.
func (Order) TableName() string {
	return "ordenes"
}

// BeforeCreate assigns an opaque uuid identifier when none was supplied.
func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
