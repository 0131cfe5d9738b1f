package repository

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"ordersapi/src/database"
	"ordersapi/src/model"
)

// ErrOrderNotFound is returned by write paths that require an existing order.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository handles read/write operations for orders, their line-item
// details and their observations.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new repository instance using the main read/write database.
func NewOrderRepository() *OrderRepository {
	logger.WithField("component", "OrderRepository").
		Info("Creating new OrderRepository with MainDB")

	return &OrderRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *OrderRepository) WithDB(db *gorm.DB) *OrderRepository {
	logger.WithField("component", "OrderRepository").
		Debug("Creating OrderRepository with custom DB instance")

	return &OrderRepository{db: db}
}

// ---------------------------------------------------
// Order methods
// ---------------------------------------------------

// Create inserts a new order together with its line-item details inside one
// transaction. Details are stamped with the generated order ID before insert,
// so either the order and every detail land or nothing does.
func (r *OrderRepository) Create(
	ctx context.Context,
	order *model.Order,
	detalles []model.OrderDetail,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":     "OrderRepository",
		"op":       "Create",
		"cliente":  order.ClienteID,
		"tipo":     order.TipoOperacion,
		"detalles": len(detalles),
	}).Debug("Creating new order")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for i := range detalles {
			detalles[i].OrdenID = order.ID
		}

		if len(detalles) > 0 {
			if err := tx.Create(&detalles).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "OrderRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create order")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "OrderRepository",
		"op":       "Create",
		"order_id": order.ID,
	}).Info("Order created successfully")

	return nil
}

// FindByID fetches a single order by its primary ID, including its details
// and observations (observations newest first).
// Returns (nil, nil) if the order is not found.
func (r *OrderRepository) FindByID(
	ctx context.Context,
	id string,
) (*model.Order, error) {

	logger.WithFields(map[string]interface{}{
		"repo": "OrderRepository",
		"op":   "FindByID",
		"id":   id,
	}).Debug("Fetching order by ID")

	var order model.Order

	err := r.db.WithContext(ctx).
		Preload("Detalles").
		Preload("Observaciones", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&order, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo": "OrderRepository",
				"op":   "FindByID",
				"id":   id,
			}).Info("Order not found")

			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "OrderRepository",
			"op":   "FindByID",
			"id":   id,
		}).WithError(err).Error("Failed to fetch order by ID")

		return nil, err
	}

	return &order, nil
}

// FindAll returns every order, newest first.
func (r *OrderRepository) FindAll(ctx context.Context) ([]model.Order, error) {

	logger.WithFields(map[string]interface{}{
		"repo": "OrderRepository",
		"op":   "FindAll",
	}).Debug("Fetching all orders")

	var orders []model.Order

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "OrderRepository",
			"op":   "FindAll",
		}).WithError(err).Error("Failed to fetch orders")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "OrderRepository",
		"op":          "FindAll",
		"rows_return": len(orders),
	}).Info("Orders fetched")

	return orders, nil
}

// FindByCliente returns every order belonging to the given client, newest first.
func (r *OrderRepository) FindByCliente(
	ctx context.Context,
	clienteID string,
) ([]model.Order, error) {

	logger.WithFields(map[string]interface{}{
		"repo":    "OrderRepository",
		"op":      "FindByCliente",
		"cliente": clienteID,
	}).Debug("Fetching orders by client")

	var orders []model.Order

	err := r.db.WithContext(ctx).
		Where("cliente_id = ?", clienteID).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "OrderRepository",
			"op":      "FindByCliente",
			"cliente": clienteID,
		}).WithError(err).Error("Failed to fetch orders by client")

		return nil, err
	}

	return orders, nil
}

// FindByEstado returns every order with the given status, newest first.
// Matching is case-insensitive: "Ejecutada" and "ejecutada" return the same set.
func (r *OrderRepository) FindByEstado(
	ctx context.Context,
	estado string,
) ([]model.Order, error) {

	logger.WithFields(map[string]interface{}{
		"repo":   "OrderRepository",
		"op":     "FindByEstado",
		"estado": estado,
	}).Debug("Fetching orders by status")

	var orders []model.Order

	err := r.db.WithContext(ctx).
		Where("LOWER(estado) = LOWER(?)", estado).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "OrderRepository",
			"op":     "FindByEstado",
			"estado": estado,
		}).WithError(err).Error("Failed to fetch orders by status")

		return nil, err
	}

	return orders, nil
}

// FindEnviadas returns the orders already sent to the market ("En Proceso" or
// executed), most recently updated first.
func (r *OrderRepository) FindEnviadas(ctx context.Context) ([]model.Order, error) {

	logger.WithFields(map[string]interface{}{
		"repo": "OrderRepository",
		"op":   "FindEnviadas",
	}).Debug("Fetching orders sent to market")

	var orders []model.Order

	err := r.db.WithContext(ctx).
		Where("LOWER(estado) IN ?", []string{"en proceso", "ejecutada"}).
		Order("updated_at DESC").
		Find(&orders).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "OrderRepository",
			"op":   "FindEnviadas",
		}).WithError(err).Error("Failed to fetch sent orders")

		return nil, err
	}

	return orders, nil
}

// CountByEstado returns the number of orders with the given status,
// case-insensitively.
func (r *OrderRepository) CountByEstado(
	ctx context.Context,
	estado string,
) (int64, error) {

	logger.WithFields(map[string]interface{}{
		"repo":   "OrderRepository",
		"op":     "CountByEstado",
		"estado": estado,
	}).Debug("Counting orders by status")

	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("LOWER(estado) = LOWER(?)", estado).
		Count(&count).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "OrderRepository",
			"op":     "CountByEstado",
			"estado": estado,
		}).WithError(err).Error("Failed to count orders by status")

		return 0, err
	}

	return count, nil
}

// UpdateFields applies a partial update to the given order. The updated_at
// column is touched by gorm on every update.
func (r *OrderRepository) UpdateFields(
	ctx context.Context,
	id string,
	fields map[string]interface{},
) error {

	logger.WithFields(map[string]interface{}{
		"repo":   "OrderRepository",
		"op":     "UpdateFields",
		"id":     id,
		"fields": len(fields),
	}).Debug("Updating order fields")

	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Updates(fields).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "OrderRepository",
			"op":   "UpdateFields",
			"id":   id,
		}).WithError(err).Error("Failed to update order")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo": "OrderRepository",
		"op":   "UpdateFields",
		"id":   id,
	}).Info("Order updated successfully")

	return nil
}

// UpdateStatusWithObservation sets the status of the given order and, when
// observation text is supplied, appends one observation recording the change.
// Both writes run inside one transaction: the order never ends up with a new
// status and a missing observation. Fails with ErrOrderNotFound when the id
// does not resolve.
func (r *OrderRepository) UpdateStatusWithObservation(
	ctx context.Context,
	id string,
	estado string,
	observacion string,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":   "OrderRepository",
		"op":     "UpdateStatusWithObservation",
		"id":     id,
		"estado": estado,
	}).Debug("Updating order status")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order

		if err := tx.First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if err := tx.
			Model(&model.Order{}).
			Where("id = ?", id).
			Update("estado", estado).Error; err != nil {
			return err
		}

		if observacion != "" {
			entry := &model.OrderObservation{
				OrdenID: id,
				Texto:   fmt.Sprintf("Cambio de estado a %q: %s", estado, observacion),
			}
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "OrderRepository",
			"op":     "UpdateStatusWithObservation",
			"id":     id,
			"estado": estado,
		}).WithError(err).Error("Failed to update order status")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":   "OrderRepository",
		"op":     "UpdateStatusWithObservation",
		"id":     id,
		"estado": estado,
	}).Info("Order status updated successfully")

	return nil
}

// Delete removes the order row. The FK constraints cascade the delete to the
// order's details and observations.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {

	logger.WithFields(map[string]interface{}{
		"repo": "OrderRepository",
		"op":   "Delete",
		"id":   id,
	}).Debug("Deleting order")

	err := r.db.WithContext(ctx).
		Delete(&model.Order{}, "id = ?", id).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "OrderRepository",
			"op":   "Delete",
			"id":   id,
		}).WithError(err).Error("Failed to delete order")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo": "OrderRepository",
		"op":   "Delete",
		"id":   id,
	}).Info("Order deleted successfully")

	return nil
}

// ---------------------------------------------------
// OrderObservation methods
// ---------------------------------------------------

// CreateObservation appends an observation to an order. Observations are
// append-only; no update or delete path exists.
func (r *OrderRepository) CreateObservation(
	ctx context.Context,
	entry *model.OrderObservation,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":     "OrderRepository",
		"op":       "CreateObservation",
		"order_id": entry.OrdenID,
	}).Debug("Creating observation")

	err := r.db.WithContext(ctx).Create(entry).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "OrderRepository",
			"op":       "CreateObservation",
			"order_id": entry.OrdenID,
		}).WithError(err).Error("Failed to create observation")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "OrderRepository",
		"op":       "CreateObservation",
		"order_id": entry.OrdenID,
	}).Info("Observation created")

	return nil
}

// FindObservationsByOrdenID returns the observations of an order, newest first.
func (r *OrderRepository) FindObservationsByOrdenID(
	ctx context.Context,
	ordenID string,
) ([]model.OrderObservation, error) {

	logger.WithFields(map[string]interface{}{
		"repo":     "OrderRepository",
		"op":       "FindObservationsByOrdenID",
		"order_id": ordenID,
	}).Debug("Fetching observations for order")

	var entries []model.OrderObservation

	err := r.db.WithContext(ctx).
		Where("orden_id = ?", ordenID).
		Order("created_at DESC").
		Find(&entries).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "OrderRepository",
			"op":       "FindObservationsByOrdenID",
			"order_id": ordenID,
		}).WithError(err).Error("Failed to fetch observations")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "OrderRepository",
		"op":          "FindObservationsByOrdenID",
		"order_id":    ordenID,
		"rows_return": len(entries),
	}).Info("Observations fetched")

	return entries, nil
}

// MarkEnviada flips the order to "En Proceso" and appends the fixed
// sent-to-market observation, both inside one transaction. Used by the bulk
// send-to-market flow, one call per order.
func (r *OrderRepository) MarkEnviada(ctx context.Context, id string) error {

	logger.WithFields(map[string]interface{}{
		"repo": "OrderRepository",
		"op":   "MarkEnviada",
		"id":   id,
	}).Debug("Marking order as sent to market")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Model(&model.Order{}).
			Where("id = ?", id).
			Update("estado", model.StatusEnProceso)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOrderNotFound
		}

		entry := &model.OrderObservation{
			OrdenID: id,
			Texto:   "Orden enviada al mercado",
		}
		return tx.Create(entry).Error
	})

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "OrderRepository",
			"op":   "MarkEnviada",
			"id":   id,
		}).WithError(err).Error("Failed to mark order as sent")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo": "OrderRepository",
		"op":   "MarkEnviada",
		"id":   id,
	}).Info("Order sent to market")

	return nil
}
