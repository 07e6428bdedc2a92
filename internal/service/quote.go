package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pricing-service/internal/distance"
	"pricing-service/internal/kinesis"
	"pricing-service/internal/pricing"
	"pricing-service/internal/resolver"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrInvalidRequest is returned for quote requests that fail validation
var ErrInvalidRequest = errors.New("invalid quote request")

var validate = validator.New()

// QuoteRequest represents a quote request
type QuoteRequest struct {
	Service     string             `json:"service" validate:"required,max=100"`
	Miles       *float64           `json:"miles,omitempty" validate:"omitempty,lte=10000"`
	TravelMiles *float64           `json:"travel_miles,omitempty" validate:"omitempty,lte=10000"`
	Pickup      *distance.Location `json:"pickup,omitempty"`
	Dropoff     *distance.Location `json:"dropoff,omitempty"`
	At          *time.Time         `json:"at,omitempty"`
	Online      bool               `json:"online"`
}

// QuoteResponse is a priced quote plus request metadata
type QuoteResponse struct {
	ID string `json:"id"`
	pricing.Quote
	QuotedAt             time.Time `json:"quoted_at"`
	EstimatedMiles       *float64  `json:"estimated_miles,omitempty"`
	EstimatedTravelMiles *float64  `json:"estimated_travel_miles,omitempty"`
	ConfigSource         string    `json:"config_source"`
}

// QuoteService handles quote operations
type QuoteService struct {
	resolver *resolver.Resolver
	distance *distance.Calculator
	dispatch *distance.Location
	streamer *kinesis.Streamer
	now      func() time.Time
}

// NewQuoteService creates a new quote service instance
func NewQuoteService(r *resolver.Resolver) *QuoteService {
	return &QuoteService{
		resolver: r,
		distance: distance.NewCalculator(nil),
		now:      time.Now,
	}
}

// SetDistanceCalculator enables mileage estimation. dispatch is the yard
// travel miles are measured from and may be nil.
func (s *QuoteService) SetDistanceCalculator(calc *distance.Calculator, dispatch *distance.Location) {
	s.distance = calc
	s.dispatch = dispatch
}

// SetKinesisStreamer sets the Kinesis streamer for quote events
func (s *QuoteService) SetKinesisStreamer(streamer *kinesis.Streamer) {
	s.streamer = streamer
}

// Preview prices a request from the cached or fallback config without any
// network calls. Missing mileage is only estimated from coordinates.
func (s *QuoteService) Preview(req QuoteRequest) (*QuoteResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	cfg := s.resolver.Current()
	return s.price(context.Background(), cfg, req, distance.NewCalculator(nil)), nil
}

// Quote prices a request against a fresh config, estimating missing mileage
func (s *QuoteService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	cfg := s.resolver.Resolve(ctx)
	resp := s.price(ctx, cfg, req, s.distance)

	if s.streamer != nil {
		event := kinesis.NewQuoteEvent("quoted", resp.ID, resp.ConfigSource, &resp.Quote)
		go s.streamer.StreamQuoteEvent(event)
	}

	return resp, nil
}

// Services returns the catalog of the current config
func (s *QuoteService) Services() []pricing.Service {
	return pricing.Catalog(s.resolver.Current())
}

// Pricing returns the current config and where it came from
func (s *QuoteService) Pricing() (*pricing.PricingConfig, resolver.Status) {
	return s.resolver.Current(), s.resolver.Status()
}

// RefreshPricing forces a fetch. On failure the returned config is the one
// quotes will keep using.
func (s *QuoteService) RefreshPricing(ctx context.Context) (*pricing.PricingConfig, error) {
	return s.resolver.Refresh(ctx)
}

// InvalidatePricing drops the cached config
func (s *QuoteService) InvalidatePricing() {
	s.resolver.Invalidate()
}

func (s *QuoteService) price(ctx context.Context, cfg *pricing.PricingConfig, req QuoteRequest, calc *distance.Calculator) *QuoteResponse {
	svc := pricing.Lookup(cfg, req.Service)

	resp := &QuoteResponse{
		ID:           uuid.New().String(),
		QuotedAt:     s.now().UTC(),
		ConfigSource: s.configSource(),
	}

	miles := req.Miles
	if miles == nil && svc.Kind == pricing.KindTowing && req.Pickup != nil && req.Dropoff != nil &&
		calc.CanEstimate(*req.Pickup, *req.Dropoff) {
		if est, err := calc.Miles(ctx, *req.Pickup, *req.Dropoff); err == nil {
			miles = &est
			resp.EstimatedMiles = &est
		} else {
			slog.Warn("Failed to estimate tow miles, billing minimum", "service", req.Service, "error", err)
		}
	}

	travelMiles := req.TravelMiles
	if travelMiles == nil && svc.TravelEligible && s.dispatch != nil && req.Pickup != nil &&
		calc.CanEstimate(*s.dispatch, *req.Pickup) {
		if est, err := calc.Miles(ctx, *s.dispatch, *req.Pickup); err == nil {
			travelMiles = &est
			resp.EstimatedTravelMiles = &est
		} else {
			slog.Warn("Failed to estimate travel miles, skipping travel charge", "service", req.Service, "error", err)
		}
	}

	at := s.now()
	if req.At != nil {
		at = *req.At
	}

	resp.Quote = pricing.BuildQuote(cfg, pricing.QuoteInput{
		Service:     req.Service,
		Miles:       miles,
		TravelMiles: travelMiles,
		At:          at,
		Online:      req.Online,
	})
	return resp
}

func (s *QuoteService) configSource() string {
	status := s.resolver.Status()
	if status.UsingFallback {
		return "fallback"
	}
	return status.Source
}

func validateRequest(req QuoteRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}
