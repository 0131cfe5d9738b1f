package view

// Pure in-memory filtering and sorting over an already-fetched order
// collection. This is the server-side rendition of the dashboard table's
// search box, status filter and column sort: read-only, side-effect-free,
// no pagination.

import (
	"sort"
	"strings"

	"ordersapi/src/model"
)

// Sortable column keys.
const (
	SortByClienteNombre = "cliente_nombre"
	SortByTipoOperacion = "tipo_operacion"
	SortByEstado        = "estado"
	SortByCreatedAt     = "created_at"
)

// Query captures the dashboard's current filter state.
type Query struct {
	// Term is matched case-insensitively as a substring against the client
	// name, the order id and every detail ticker.
	Term string
	// Estado filters to one status label, case-insensitively. Empty means all.
	Estado string
	// SortKey is one of the SortBy constants. Empty leaves the input order.
	SortKey    string
	Descending bool
}

// Apply filters and sorts the collection according to the query, returning a
// new slice. The input is never mutated.
func Apply(orders []model.Order, q Query) []model.Order {
	result := make([]model.Order, 0, len(orders))

	term := strings.ToLower(q.Term)
	estado := strings.ToLower(q.Estado)

	for _, order := range orders {
		if term != "" && !matchesTerm(&order, term) {
			continue
		}
		if estado != "" && strings.ToLower(order.Estado) != estado {
			continue
		}
		result = append(result, order)
	}

	if q.SortKey != "" {
		less := comparator(q.SortKey)
		sort.SliceStable(result, func(i, j int) bool {
			if q.Descending {
				return less(&result[j], &result[i])
			}
			return less(&result[i], &result[j])
		})
	}

	return result
}

// VisibleIDs returns the ids of the filtered set, in order. Backs the
// dashboard's select-all-visible toggle, which is scoped to the current
// filter, not the full collection.
func VisibleIDs(orders []model.Order) []string {
	ids := make([]string, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
	}
	return ids
}

func matchesTerm(order *model.Order, term string) bool {
	if strings.Contains(strings.ToLower(order.ClienteNombre), term) {
		return true
	}
	if strings.Contains(strings.ToLower(order.ID), term) {
		return true
	}
	for _, detalle := range order.Detalles {
		if strings.Contains(strings.ToLower(detalle.Ticker), term) {
			return true
		}
	}
	return false
}

func comparator(key string) func(a, b *model.Order) bool {
	switch key {
	case SortByClienteNombre:
		return func(a, b *model.Order) bool { return a.ClienteNombre < b.ClienteNombre }
	case SortByTipoOperacion:
		return func(a, b *model.Order) bool { return a.TipoOperacion < b.TipoOperacion }
	case SortByEstado:
		return func(a, b *model.Order) bool { return a.Estado < b.Estado }
	case SortByCreatedAt:
		return func(a, b *model.Order) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return func(a, b *model.Order) bool { return false }
	}
}
