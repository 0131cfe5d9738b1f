package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"

	"ordersapi/src/connectors"
	"ordersapi/src/controller"
	"ordersapi/src/handler"
	"ordersapi/src/notifier"
	"ordersapi/src/repository"
)

// NewRouter wires the full HTTP surface. Split from StartServer so tests can
// mount the router without binding a port.
func NewRouter() *chi.Mux {
	repo := repository.NewOrderRepository()
	lookup := connectors.NewLookupConnector()
	hub := notifier.NewHub()
	orders := controller.NewOrderController(repo, lookup, hub)

	r := chi.NewRouter()

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("\"/healthcheck\" error")
		}
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/ws", hub)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", handler.CreateOrderHandler(orders))
		r.Get("/", handler.ListOrdersHandler(repo))
		r.Get("/enviadas", handler.SentOrdersHandler(repo))
		r.Get("/count", handler.CountOrdersHandler(repo))

		r.Post("/individual", handler.CreateIndividualHandler(orders))
		r.Post("/bulk", handler.CreateBulkHandler(orders))
		r.Post("/swap", handler.CreateSwapHandler(orders))
		r.Post("/send", handler.SendToMarketHandler(orders))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handler.GetOrderHandler(repo))
			r.Put("/", handler.UpdateOrderHandler(orders))
			r.Delete("/", handler.DeleteOrderHandler(orders))
			r.Put("/status", handler.UpdateEstadoHandler(orders))
			r.Post("/observations", handler.AddObservationHandler(orders))
		})
	})

	return r
}

// StartServer runs the HTTP server until SIGINT/SIGTERM, then shuts down
// within the configured grace period.
func StartServer(config *Config) {
	addr := ":" + config.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: NewRouter(),
	}

	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
