package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"pricing-service/internal/pricing"
	"pricing-service/internal/resolver"
	"pricing-service/internal/service"

	"github.com/gorilla/mux"
)

// HTTPHandler handles HTTP requests for the pricing service
type HTTPHandler struct {
	quoteService *service.QuoteService
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(quoteService *service.QuoteService) *HTTPHandler {
	return &HTTPHandler{
		quoteService: quoteService,
	}
}

// RegisterRoutes sets up HTTP routes
func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.HandleFunc("/quotes", h.CreateQuote).Methods("POST")
	router.HandleFunc("/quotes/preview", h.PreviewQuote).Methods("POST")
	router.HandleFunc("/services", h.GetServices).Methods("GET")
	router.HandleFunc("/pricing", h.GetPricing).Methods("GET")
	router.HandleFunc("/pricing/refresh", h.RefreshPricing).Methods("POST")
	router.HandleFunc("/pricing/cache", h.InvalidateCache).Methods("DELETE")
}

// PricingResponse mirrors the {success, prices} payload the website reads
type PricingResponse struct {
	Success bool                   `json:"success"`
	Prices  *pricing.PricingConfig `json:"prices"`
	Cache   *resolver.Status       `json:"cache,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// Health returns service health status
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// CreateQuote prices a request against fresh pricing data
func (h *HTTPHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req service.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	quote, err := h.quoteService.Quote(r.Context(), req)
	if err != nil {
		writeQuoteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, quote)
}

// PreviewQuote prices a request from cached pricing data without waiting on a fetch
func (h *HTTPHandler) PreviewQuote(w http.ResponseWriter, r *http.Request) {
	var req service.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	quote, err := h.quoteService.Preview(req)
	if err != nil {
		writeQuoteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// GetServices returns the service catalog
func (h *HTTPHandler) GetServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.quoteService.Services())
}

// GetPricing returns the pricing document quotes are currently built from
func (h *HTTPHandler) GetPricing(w http.ResponseWriter, r *http.Request) {
	cfg, status := h.quoteService.Pricing()
	writeJSON(w, http.StatusOK, PricingResponse{
		Success: true,
		Prices:  cfg,
		Cache:   &status,
	})
}

// RefreshPricing forces a fetch from the pricing source
func (h *HTTPHandler) RefreshPricing(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.quoteService.RefreshPricing(r.Context())
	_, status := h.quoteService.Pricing()
	if err != nil {
		writeJSON(w, http.StatusBadGateway, PricingResponse{
			Success: false,
			Prices:  cfg,
			Cache:   &status,
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, PricingResponse{
		Success: true,
		Prices:  cfg,
		Cache:   &status,
	})
}

// InvalidateCache drops the cached pricing document
func (h *HTTPHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.quoteService.InvalidatePricing()
	w.WriteHeader(http.StatusNoContent)
}

func writeQuoteError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrInvalidRequest) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
