package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"ordersapi/src/controller"
	"ordersapi/src/model"
	"ordersapi/src/view"
)

// orderCommander is the slice of the order controller the write handlers need.
type orderCommander interface {
	CreateOrder(ctx context.Context, order *model.Order, detalles []model.OrderDetail) controller.Result
	CreateIndividual(ctx context.Context, req controller.IndividualOrderRequest) controller.Result
	CreateBulk(ctx context.Context, req controller.BulkOrderRequest) controller.Result
	CreateSwap(ctx context.Context, req controller.SwapOrderRequest) controller.Result
	UpdateEstado(ctx context.Context, id, estado, observacion string) controller.Result
	UpdateOrder(ctx context.Context, id string, fields map[string]interface{}) controller.Result
	DeleteOrder(ctx context.Context, id string) controller.Result
	AddObservation(ctx context.Context, entry *model.OrderObservation) controller.Result
	SendToMarket(ctx context.Context, ordenIDs []string) controller.SendResult
}

// orderReader is the slice of the repository the read handlers need.
type orderReader interface {
	FindAll(ctx context.Context) ([]model.Order, error)
	FindByCliente(ctx context.Context, clienteID string) ([]model.Order, error)
	FindByEstado(ctx context.Context, estado string) ([]model.Order, error)
	FindEnviadas(ctx context.Context) ([]model.Order, error)
	FindByID(ctx context.Context, id string) (*model.Order, error)
	CountByEstado(ctx context.Context, estado string) (int64, error)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// CreateOrderHandler handles POST /orders: a pre-built order record plus its
// detail lines.
func CreateOrderHandler(cmd orderCommander) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Orden    model.Order         `json:"orden"`
			Detalles []model.OrderDetail `json:"detalles"`
		}

		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			logger.WithError(err).Error("failed to decode create order body")
			writeError(w, http.StatusInternalServerError, "Error interno del servidor")
			return
		}

		result := cmd.CreateOrder(r.Context(), &body.Orden, body.Detalles)
		if !result.Success {
			writeError(w, http.StatusBadRequest, result.Error)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// ListOrdersHandler handles GET /orders. The collection is optionally
// pre-filtered at the data-access layer by ?cliente or ?estado, then the
// in-memory view query (?q, ?sortBy, ?dir) is applied. Storage failures
// degrade to an empty list.
func ListOrdersHandler(repo orderReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			orders []model.Order
			err    error
		)

		switch {
		case r.URL.Query().Get("cliente") != "":
			orders, err = repo.FindByCliente(r.Context(), r.URL.Query().Get("cliente"))
		case r.URL.Query().Get("estado") != "":
			orders, err = repo.FindByEstado(r.Context(), r.URL.Query().Get("estado"))
		default:
			orders, err = repo.FindAll(r.Context())
		}

		if err != nil {
			logger.WithError(err).Error("failed to list orders, degrading to empty list")
			orders = nil
		}

		query := view.Query{
			Term:       r.URL.Query().Get("q"),
			SortKey:    r.URL.Query().Get("sortBy"),
			Descending: r.URL.Query().Get("dir") == "desc",
		}
		orders = view.Apply(orders, query)

		writeJSON(w, http.StatusOK, orders)
	}
}

// SentOrdersHandler handles GET /orders/enviadas: orders already sent to the
// market. Failures degrade to an empty list.
func SentOrdersHandler(repo orderReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := repo.FindEnviadas(r.Context())
		if err != nil {
			logger.WithError(err).Error("failed to list sent orders, degrading to empty list")
			orders = nil
		}
		if orders == nil {
			orders = []model.Order{}
		}

		writeJSON(w, http.StatusOK, orders)
	}
}

// CountOrdersHandler handles GET /orders/count?estado=. Failures degrade to
// a zero count.
func CountOrdersHandler(repo orderReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		estado := r.URL.Query().Get("estado")

		count, err := repo.CountByEstado(r.Context(), estado)
		if err != nil {
			logger.WithError(err).WithField("estado", estado).
				Error("failed to count orders, degrading to zero")
			count = 0
		}

		writeJSON(w, http.StatusOK, map[string]int64{"count": count})
	}
}

// GetOrderHandler handles GET /orders/{id}, returning the order with its
// details and observations.
func GetOrderHandler(repo orderReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		order, err := repo.FindByID(r.Context(), id)
		if err != nil {
			logger.WithError(err).WithField("id", id).Error("failed to fetch order")
			writeError(w, http.StatusInternalServerError, "Error interno del servidor")
			return
		}
		if order == nil {
			writeError(w, http.StatusNotFound, "Orden no encontrada")
			return
		}

		writeJSON(w, http.StatusOK, order)
	}
}

// UpdateOrderHandler handles PUT /orders/{id} with a partial field map.
func UpdateOrderHandler(cmd orderCommander) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var fields map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			logger.WithError(err).WithField("id", id).Error("failed to decode update body")
			writeError(w, http.StatusInternalServerError, "Error interno del servidor")
			return
		}

		result := cmd.UpdateOrder(r.Context(), id, fields)
		if !result.Success {
			writeError(w, http.StatusBadRequest, result.Error)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// DeleteOrderHandler handles DELETE /orders/{id}. The cascade constraints
// remove the order's details and observations.
func DeleteOrderHandler(cmd orderCommander) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		result := cmd.DeleteOrder(r.Context(), id)
		if !result.Success {
			writeError(w, http.StatusBadRequest, result.Error)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// UpdateEstadoHandler handles PUT /orders/{id}/status. Any status string is
// accepted; transition legality is a dashboard convention only.
func UpdateEstadoHandler(cmd orderCommander) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var body struct {
			Estado      string `json:"estado"`
			Observacion string `json:"observacion,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			logger.WithError(err).WithField("id", id).Error("failed to decode status body")
			writeError(w, http.StatusInternalServerError, "Error interno del servidor")
			return
		}

		result := cmd.UpdateEstado(r.Context(), id, body.Estado, body.Observacion)
		if !result.Success {
			writeError(w, http.StatusBadRequest, result.Error)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// AddObservationHandler handles POST /orders/{id}/observations. The order id
// always comes from the path, overriding anything in the body.
func AddObservationHandler(cmd orderCommander) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var entry model.OrderObservation
		if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
			logger.WithError(err).WithField("id", id).Error("failed to decode observation body")
			writeError(w, http.StatusInternalServerError, "Error interno del servidor")
			return
		}
		entry.OrdenID = id

		result := cmd.AddObservation(r.Context(), &entry)
		if !result.Success {
			writeError(w, http.StatusBadRequest, result.Error)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// CreateIndividualHandler handles POST /orders/individual: the individual
// order form, resolved against the client and asset directories.
func CreateIndividualHandler(cmd orderCommander) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req controller.IndividualOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.WithError(err).Error("failed to decode individual order body")
			writeError(w, http.StatusInternalServerError, "Error interno del servidor")
			return
		}

		result := cmd.CreateIndividual(r.Context(), req)
		if !result.Success {
			writeError(w, http.StatusBadRequest, result.Error)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// CreateBulkHandler handles POST /orders/bulk.
func CreateBulkHandler(cmd orderCommander) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req controller.BulkOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.WithError(err).Error("failed to decode bulk order body")
			writeError(w, http.StatusInternalServerError, "Error interno del servidor")
			return
		}

		result := cmd.CreateBulk(r.Context(), req)
		if !result.Success {
			writeError(w, http.StatusBadRequest, result.Error)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// CreateSwapHandler handles POST /orders/swap.
func CreateSwapHandler(cmd orderCommander) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req controller.SwapOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.WithError(err).Error("failed to decode swap order body")
			writeError(w, http.StatusInternalServerError, "Error interno del servidor")
			return
		}

		result := cmd.CreateSwap(r.Context(), req)
		if !result.Success {
			writeError(w, http.StatusBadRequest, result.Error)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// SendToMarketHandler handles POST /orders/send: bulk transition of the
// selected orders to "En Proceso".
func SendToMarketHandler(cmd orderCommander) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			OrdenIDs []string `json:"ordenIds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			logger.WithError(err).Error("failed to decode send body")
			writeError(w, http.StatusInternalServerError, "Error interno del servidor")
			return
		}

		result := cmd.SendToMarket(r.Context(), body.OrdenIDs)
		if !result.Success {
			writeError(w, http.StatusBadRequest, result.Error)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
