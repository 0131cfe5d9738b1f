package controller

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"ordersapi/src/connectors"
	"ordersapi/src/metrics"
	"ordersapi/src/model"
)

// orderStore is the slice of the order repository the controller writes
// through.
type orderStore interface {
	Create(ctx context.Context, order *model.Order, detalles []model.OrderDetail) error
	UpdateStatusWithObservation(ctx context.Context, id, estado, observacion string) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	CreateObservation(ctx context.Context, entry *model.OrderObservation) error
	MarkEnviada(ctx context.Context, id string) error
}

// lookupDirectory is the slice of the lookup connector the controller needs.
type lookupDirectory interface {
	GetClientByID(ctx context.Context, id string) (*connectors.Client, error)
	GetAssetByID(ctx context.Context, id string) (*connectors.Asset, error)
}

// invalidator receives the dashboard paths made stale by a successful write.
type invalidator interface {
	Invalidate(paths ...string)
}

// Result mirrors the {success, id?, message?, error?} envelope the dashboard
// expects from every order operation.
type Result struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SentItem reports one order handled by the send-to-market loop.
type SentItem struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SendResult is the envelope of the bulk send-to-market flow.
type SendResult struct {
	Success bool       `json:"success"`
	Results []SentItem `json:"results,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// IndividualOrderRequest carries the individual order form.
type IndividualOrderRequest struct {
	ClientID      string          `json:"clientId"`
	AssetID       string          `json:"assetId"`
	OperationType string          `json:"operationType"`
	Quantity      int64           `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	IsMarketOrder bool            `json:"isMarketOrder"`
	Market        string          `json:"market"`
	Notes         string          `json:"notes,omitempty"`
}

// BulkOrderLine is one line of the bulk order form.
type BulkOrderLine struct {
	AssetID       string          `json:"assetId"`
	OperationType string          `json:"operationType"`
	Quantity      int64           `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Market        string          `json:"market"`
	Term          string          `json:"term"`
}

// BulkOrderRequest carries the bulk order form.
type BulkOrderRequest struct {
	ClientID string          `json:"clientId"`
	Orders   []BulkOrderLine `json:"orders"`
	Notes    string          `json:"notes,omitempty"`
}

// SwapLeg is one side of a swap operation.
type SwapLeg struct {
	AssetID  string          `json:"assetId"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Market   string          `json:"market"`
	Term     string          `json:"term"`
}

// SwapOrderRequest carries the swap form: a sell leg funding a buy leg.
type SwapOrderRequest struct {
	ClientID  string  `json:"clientId"`
	SellOrder SwapLeg `json:"sellOrder"`
	BuyOrder  SwapLeg `json:"buyOrder"`
	Notes     string  `json:"notes,omitempty"`
}

// OrderController composes repository calls, external lookups and view
// invalidation for the higher-level order use cases.
type OrderController struct {
	repo     orderStore
	lookup   lookupDirectory
	notifier invalidator
}

func NewOrderController(
	repo orderStore,
	lookup lookupDirectory,
	notifier invalidator,
) *OrderController {
	return &OrderController{
		repo:     repo,
		lookup:   lookup,
		notifier: notifier,
	}
}

// CreateOrder persists a pre-built order with its details (the raw POST /orders
// path, where the caller supplies the full record).
func (c *OrderController) CreateOrder(
	ctx context.Context,
	order *model.Order,
	detalles []model.OrderDetail,
) Result {

	if order.Estado == "" {
		order.Estado = model.StatusPendiente
	}

	if err := c.repo.Create(ctx, order, detalles); err != nil {
		metrics.OperationFailures.WithLabelValues("create").Inc()
		return Result{Success: false, Error: "Error al crear la orden"}
	}

	metrics.OrdersCreated.Inc()
	c.notifier.Invalidate("/", "/ordenes")

	return Result{Success: true, ID: order.ID}
}

// CreateIndividual resolves the client and asset, builds one pending order
// with a single detail line and persists both. Market orders are stored with
// a zero price.
func (c *OrderController) CreateIndividual(
	ctx context.Context,
	req IndividualOrderRequest,
) Result {

	logger.WithFields(map[string]interface{}{
		"controller": "OrderController",
		"op":         "CreateIndividual",
		"client":     req.ClientID,
		"asset":      req.AssetID,
	}).Info("creating individual order")

	cliente, err := c.lookup.GetClientByID(ctx, req.ClientID)
	if err != nil {
		metrics.OperationFailures.WithLabelValues("create_individual").Inc()
		return Result{Success: false, Error: "Error al crear la orden"}
	}
	if cliente == nil {
		return Result{Success: false, Error: "Cliente no encontrado"}
	}

	activo, err := c.lookup.GetAssetByID(ctx, req.AssetID)
	if err != nil {
		metrics.OperationFailures.WithLabelValues("create_individual").Inc()
		return Result{Success: false, Error: "Error al crear la orden"}
	}
	if activo == nil {
		return Result{Success: false, Error: "Activo no encontrado"}
	}

	order := &model.Order{
		ClienteID:     req.ClientID,
		ClienteNombre: cliente.DisplayName(),
		ClienteCuenta: cliente.Account(),
		TipoOperacion: operationLabel(req.OperationType),
		Estado:        model.StatusPendiente,
		Mercado:       req.Market,
		Notas:         req.Notes,
	}

	precio := req.Price
	if req.IsMarketOrder {
		precio = decimal.Zero
	}

	detalle := model.OrderDetail{
		Ticker:         activo.Ticker,
		Cantidad:       req.Quantity,
		Precio:         precio,
		EsOrdenMercado: req.IsMarketOrder,
	}

	if err := c.repo.Create(ctx, order, []model.OrderDetail{detalle}); err != nil {
		metrics.OperationFailures.WithLabelValues("create_individual").Inc()
		return Result{Success: false, Error: "Error al crear la orden"}
	}

	metrics.OrdersCreated.Inc()
	c.notifier.Invalidate("/", "/ordenes")

	return Result{Success: true, ID: order.ID}
}

// CreateBulk creates one order per line of the form. Lines whose asset does
// not resolve are skipped silently; the aggregate reports success only when
// every attempted line succeeded, yet orders already created stay persisted
// either way. Re-running a partially failed batch duplicates the lines that
// had already succeeded.
func (c *OrderController) CreateBulk(
	ctx context.Context,
	req BulkOrderRequest,
) Result {

	logger.WithFields(map[string]interface{}{
		"controller": "OrderController",
		"op":         "CreateBulk",
		"client":     req.ClientID,
		"lines":      len(req.Orders),
	}).Info("creating bulk orders")

	cliente, err := c.lookup.GetClientByID(ctx, req.ClientID)
	if err != nil {
		metrics.OperationFailures.WithLabelValues("create_bulk").Inc()
		return Result{Success: false, Error: "Error al crear las órdenes"}
	}
	if cliente == nil {
		return Result{Success: false, Error: "Cliente no encontrado"}
	}

	attempted := 0
	created := 0

	for _, line := range req.Orders {
		activo, err := c.lookup.GetAssetByID(ctx, line.AssetID)
		if err != nil {
			metrics.OperationFailures.WithLabelValues("create_bulk").Inc()
			return Result{Success: false, Error: "Error al crear las órdenes"}
		}
		if activo == nil {
			// Unknown asset: skip the line without surfacing an error.
			logger.WithFields(map[string]interface{}{
				"controller": "OrderController",
				"op":         "CreateBulk",
				"asset":      line.AssetID,
			}).Warn("asset not found, skipping bulk line")
			continue
		}

		attempted++

		order := &model.Order{
			ClienteID:     req.ClientID,
			ClienteNombre: cliente.DisplayName(),
			ClienteCuenta: cliente.Account(),
			TipoOperacion: operationLabel(line.OperationType),
			Estado:        model.StatusPendiente,
			Mercado:       line.Market,
			Plazo:         line.Term,
			Notas:         req.Notes,
		}

		detalle := model.OrderDetail{
			Ticker:   activo.Ticker,
			Cantidad: line.Quantity,
			Precio:   line.Price,
		}

		if err := c.repo.Create(ctx, order, []model.OrderDetail{detalle}); err != nil {
			continue
		}

		metrics.OrdersCreated.Inc()
		created++
	}

	// The dashboard refetches after every bulk submission, even one whose
	// lines were all skipped.
	c.notifier.Invalidate("/", "/ordenes")

	result := Result{
		Success: created == attempted,
		Message: fmt.Sprintf("%d órdenes creadas exitosamente", created),
	}
	if !result.Success {
		result.Error = "Algunas órdenes no pudieron ser creadas"
	}
	return result
}

// CreateSwap creates a sell order and a buy order correlated only by a
// generated token embedded in both legs' notes; there is no structured link
// between the two rows. The sell leg goes first and its failure aborts the
// flow. The returned ID is always the sell leg's while Success mirrors the
// buy leg's outcome, so a half-created swap reports failure yet still names
// the persisted sell order.
func (c *OrderController) CreateSwap(
	ctx context.Context,
	req SwapOrderRequest,
) Result {

	logger.WithFields(map[string]interface{}{
		"controller": "OrderController",
		"op":         "CreateSwap",
		"client":     req.ClientID,
	}).Info("creating swap operation")

	cliente, err := c.lookup.GetClientByID(ctx, req.ClientID)
	if err != nil {
		metrics.OperationFailures.WithLabelValues("create_swap").Inc()
		return Result{Success: false, Error: "Error al crear la operación swap"}
	}
	if cliente == nil {
		return Result{Success: false, Error: "Cliente no encontrado"}
	}

	activoVenta, err := c.lookup.GetAssetByID(ctx, req.SellOrder.AssetID)
	if err != nil {
		metrics.OperationFailures.WithLabelValues("create_swap").Inc()
		return Result{Success: false, Error: "Error al crear la operación swap"}
	}
	if activoVenta == nil {
		return Result{Success: false, Error: "Activo de venta no encontrado"}
	}

	activoCompra, err := c.lookup.GetAssetByID(ctx, req.BuyOrder.AssetID)
	if err != nil {
		metrics.OperationFailures.WithLabelValues("create_swap").Inc()
		return Result{Success: false, Error: "Error al crear la operación swap"}
	}
	if activoCompra == nil {
		return Result{Success: false, Error: "Activo de compra no encontrado"}
	}

	swapID := fmt.Sprintf("SWAP-%d-%d", time.Now().UnixMilli(), rand.Intn(1000))

	ordenVenta := &model.Order{
		ClienteID:     req.ClientID,
		ClienteNombre: cliente.DisplayName(),
		ClienteCuenta: cliente.Account(),
		TipoOperacion: model.OperationSell,
		Estado:        model.StatusPendiente,
		Mercado:       req.SellOrder.Market,
		Plazo:         req.SellOrder.Term,
		Notas:         fmt.Sprintf("Parte de operación swap (%s). %s", swapID, req.Notes),
	}
	detalleVenta := model.OrderDetail{
		Ticker:   activoVenta.Ticker,
		Cantidad: req.SellOrder.Quantity,
		Precio:   req.SellOrder.Price,
	}

	if err := c.repo.Create(ctx, ordenVenta, []model.OrderDetail{detalleVenta}); err != nil {
		metrics.OperationFailures.WithLabelValues("create_swap").Inc()
		return Result{Success: false, Error: "Error al crear la orden"}
	}
	metrics.OrdersCreated.Inc()

	ordenCompra := &model.Order{
		ClienteID:     req.ClientID,
		ClienteNombre: cliente.DisplayName(),
		ClienteCuenta: cliente.Account(),
		TipoOperacion: model.OperationBuy,
		Estado:        model.StatusPendiente,
		Mercado:       req.BuyOrder.Market,
		Plazo:         req.BuyOrder.Term,
		Notas: fmt.Sprintf(
			"Parte de operación swap (%s). Fondos provenientes de venta de %s. %s",
			swapID, activoVenta.Ticker, req.Notes,
		),
	}
	detalleCompra := model.OrderDetail{
		Ticker:   activoCompra.Ticker,
		Cantidad: req.BuyOrder.Quantity,
		Precio:   req.BuyOrder.Price,
	}

	buyErr := c.repo.Create(ctx, ordenCompra, []model.OrderDetail{detalleCompra})
	if buyErr != nil {
		metrics.OperationFailures.WithLabelValues("create_swap").Inc()
	} else {
		metrics.OrdersCreated.Inc()
	}

	c.notifier.Invalidate("/", "/ordenes")

	result := Result{
		Success: buyErr == nil,
		ID:      ordenVenta.ID,
		Message: "Operación swap creada exitosamente",
	}
	if buyErr != nil {
		result.Error = "Error al crear la orden de compra"
	}
	return result
}

// UpdateEstado sets the order's status, appending an observation when text is
// supplied. Any status string is accepted; transition legality is not checked
// server-side.
func (c *OrderController) UpdateEstado(
	ctx context.Context,
	id string,
	estado string,
	observacion string,
) Result {

	if err := c.repo.UpdateStatusWithObservation(ctx, id, estado, observacion); err != nil {
		metrics.OperationFailures.WithLabelValues("update_estado").Inc()
		return Result{Success: false, Error: "Error al actualizar el estado de la orden"}
	}

	metrics.StatusUpdates.Inc()
	c.notifier.Invalidate("/", "/ordenes", "/ordenes/"+id)

	return Result{Success: true}
}

// UpdateOrder applies a partial field update to the order.
func (c *OrderController) UpdateOrder(
	ctx context.Context,
	id string,
	fields map[string]interface{},
) Result {

	if err := c.repo.UpdateFields(ctx, id, fields); err != nil {
		metrics.OperationFailures.WithLabelValues("update").Inc()
		return Result{Success: false, Error: "Error al actualizar la orden"}
	}

	c.notifier.Invalidate("/", "/ordenes", "/ordenes/"+id)

	return Result{Success: true}
}

// DeleteOrder removes the order; the schema's cascade constraints remove its
// details and observations with it.
func (c *OrderController) DeleteOrder(ctx context.Context, id string) Result {

	if err := c.repo.Delete(ctx, id); err != nil {
		metrics.OperationFailures.WithLabelValues("delete").Inc()
		return Result{Success: false, Error: "Error al eliminar la orden"}
	}

	metrics.OrdersDeleted.Inc()
	c.notifier.Invalidate("/", "/ordenes")

	return Result{Success: true}
}

// AddObservation appends a free-text observation to the order.
func (c *OrderController) AddObservation(
	ctx context.Context,
	entry *model.OrderObservation,
) Result {

	if err := c.repo.CreateObservation(ctx, entry); err != nil {
		metrics.OperationFailures.WithLabelValues("add_observation").Inc()
		return Result{Success: false, Error: "Error al agregar la observación"}
	}

	c.notifier.Invalidate("/", "/ordenes", "/ordenes/"+entry.OrdenID)

	return Result{Success: true, ID: entry.ID}
}

// SendToMarket walks the given order ids strictly in sequence, flipping each
// to "En Proceso" with the fixed sent-to-market observation. The first
// failure aborts the loop and reports failure; writes already applied stay in
// place.
func (c *OrderController) SendToMarket(
	ctx context.Context,
	ordenIDs []string,
) SendResult {

	logger.WithFields(map[string]interface{}{
		"controller": "OrderController",
		"op":         "SendToMarket",
		"count":      len(ordenIDs),
	}).Info("sending orders to market")

	results := make([]SentItem, 0, len(ordenIDs))

	for _, id := range ordenIDs {
		if err := c.repo.MarkEnviada(ctx, id); err != nil {
			metrics.OperationFailures.WithLabelValues("send_to_market").Inc()

			logger.WithFields(map[string]interface{}{
				"controller": "OrderController",
				"op":         "SendToMarket",
				"id":         id,
			}).WithError(err).Error("aborting send-to-market loop")

			return SendResult{
				Success: false,
				Error:   "Error al enviar las órdenes al mercado",
			}
		}

		metrics.MarketSends.Inc()
		results = append(results, SentItem{ID: id, Status: "sent"})
	}

	c.notifier.Invalidate("/", "/ordenes", "/trading")

	return SendResult{Success: true, Results: results}
}

// operationLabel maps the form's operation flag to the localized label stored
// on the order.
func operationLabel(operationType string) string {
	if operationType == "buy" {
		return model.OperationBuy
	}
	return model.OperationSell
}
