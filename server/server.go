package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gitshopapp/orderreceipt/internal/config"
	"github.com/gitshopapp/orderreceipt/internal/handlers"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return buildRouter(s.handlers)
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func buildRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"Not Found"}` + "\n"))
	})

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.RequireSameOrigin)
	api.HandleFunc("/parse", h.ParseOrder).Methods("POST").Name("api.parse")

	// export.csv must be registered before {orderId}
	api.HandleFunc("/orders/export.csv", h.ExportOrders).Methods("GET").Name("api.orders.export")
	api.HandleFunc("/orders", h.ListOrders).Methods("GET").Name("api.orders.list")
	api.HandleFunc("/orders", h.SaveOrder).Methods("POST").Name("api.orders.save")
	api.HandleFunc("/orders", h.ClearOrders).Methods("DELETE").Name("api.orders.clear")
	api.HandleFunc("/orders/{orderId}", h.GetOrder).Methods("GET").Name("api.orders.get")
	api.HandleFunc("/orders/{orderId}/receipt", h.OrderReceipt).Methods("GET").Name("api.orders.receipt")
	api.HandleFunc("/orders/{orderId}/items/{index:[0-9]+}", h.UpdateItem).Methods("PATCH").Name("api.orders.items.update")
	api.HandleFunc("/orders/{orderId}/shipping", h.SetShipping).Methods("PUT").Name("api.orders.shipping")
	api.HandleFunc("/orders/{orderId}/vat", h.SetVATRate).Methods("PUT").Name("api.orders.vat")
	api.HandleFunc("/orders/{orderId}/customer", h.UpdateCustomer).Methods("PATCH").Name("api.orders.customer")
	api.HandleFunc("/orders/{orderId}/shipping-details", h.UpdateShippingDetails).Methods("PATCH").Name("api.orders.shipping_details")

	api.HandleFunc("/company", h.GetCompany).Methods("GET").Name("api.company.get")
	api.HandleFunc("/company", h.UpdateCompany).Methods("PUT").Name("api.company.update")

	api.HandleFunc("/templates", h.ListTemplates).Methods("GET").Name("api.templates.list")
	api.HandleFunc("/templates", h.SaveTemplate).Methods("POST").Name("api.templates.save")
	api.HandleFunc("/templates/{id}", h.DeleteTemplate).Methods("DELETE").Name("api.templates.delete")

	return r
}
