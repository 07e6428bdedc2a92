package pricing

import "time"

// QuoteInput describes one quote request
type QuoteInput struct {
	Service     string
	Miles       *float64
	TravelMiles *float64
	At          time.Time
	Online      bool
}

// Quote is a fully priced request
type Quote struct {
	Service      string    `json:"service"`
	Kind         Kind      `json:"kind"`
	Breakdown    Breakdown `json:"breakdown"`
	Subtotal     float64   `json:"subtotal"`
	Multiplier   Match     `json:"multiplier"`
	DiscountRate float64   `json:"discount_rate"`
	Discount     float64   `json:"discount"`
	Total        float64   `json:"total"`
	CallForQuote bool      `json:"call_for_quote"`
}

// BuildQuote runs the pipeline: base breakdown, travel, time-of-day
// multiplier, then the online discount
func BuildQuote(cfg *PricingConfig, in QuoteInput) Quote {
	if cfg == nil {
		cfg = DefaultPricingConfig()
	}
	svc := Lookup(cfg, in.Service)

	b := computeFor(svc, in.Miles)
	b = AddTravel(b, svc, cfg.Rates.TravelRate, in.TravelMiles)

	match := NoMultiplier
	if svc.AfterHoursEligible && !in.At.IsZero() {
		match = ResolveMultiplier(cfg.TimeMultipliers, in.At)
	}
	// only surcharges are applied, so a discounting period is not reported
	if match.Multiplier <= 1 {
		match = NoMultiplier
	}
	b = ApplyMultiplier(b, match)

	rate := 0.0
	if in.Online && svc.DiscountEligible {
		rate = ClampRate(cfg.Rates.OnlineDiscountRate)
	}
	total := ApplyOnlineDiscount(b.Base, rate)

	return Quote{
		Service:      in.Service,
		Kind:         svc.Kind,
		Breakdown:    b,
		Subtotal:     b.Base,
		Multiplier:   match,
		DiscountRate: rate,
		Discount:     b.Base - total,
		Total:        total,
		CallForQuote: svc.CallForQuote,
	}
}
