package pricing

import "sort"

// Service names used by the website
const (
	LocalTowing        = "Local Towing"
	LongDistanceTowing = "Long Distance Towing"
	JumpStart          = "Jump Start"
	Lockout            = "Lockout"
	TireChange         = "Tire Change"
	FuelDelivery       = "Fuel Delivery"
	RoadsideAssistance = "Roadside Assistance"
	CollisionRecovery  = "Collision Recovery"
	Impound            = "Impound"
)

// Kind is the billing model a service name resolves to
type Kind string

const (
	KindTowing   Kind = "towing"
	KindFlatRate Kind = "flat_rate"
	KindUnrated  Kind = "unrated"
)

// billing rules that do not come from the pricing document
type billingRule struct {
	noTravel     bool
	callForQuote bool
}

var billingRules = map[string]billingRule{
	// billed hourly on scene, pickup distance does not apply
	CollisionRecovery: {noTravel: true},
	Impound:           {noTravel: true, callForQuote: true},
}

// Service is a service name resolved against a PricingConfig
type Service struct {
	Name               string       `json:"name"`
	Kind               Kind         `json:"kind"`
	Label              string       `json:"label"`
	TravelEligible     bool         `json:"travel_eligible"`
	AfterHoursEligible bool         `json:"after_hours_eligible"`
	DiscountEligible   bool         `json:"discount_eligible"`
	CallForQuote       bool         `json:"call_for_quote"`
	Towing             *TowingRate  `json:"-"`
	Flat               *ServiceRate `json:"-"`
}

// Lookup resolves name to a Service. Towing rates win over flat rates;
// names found in neither are Unrated.
func Lookup(cfg *PricingConfig, name string) Service {
	rule := billingRules[name]
	svc := Service{
		Name:             name,
		TravelEligible:   !rule.noTravel,
		DiscountEligible: !rule.callForQuote,
		CallForQuote:     rule.callForQuote,
	}

	if cfg != nil {
		if rate, ok := cfg.Towing[name]; ok {
			svc.Kind = KindTowing
			svc.Label = name
			svc.AfterHoursEligible = rate.AfterHoursEligible && !rule.callForQuote
			svc.Towing = &rate
			return svc
		}
		if rate, ok := cfg.Services[name]; ok {
			svc.Kind = KindFlatRate
			svc.Label = rate.Label
			if svc.Label == "" {
				svc.Label = name
			}
			svc.AfterHoursEligible = rate.AfterHoursEligible && !rule.callForQuote
			svc.Flat = &rate
			return svc
		}
	}

	svc.Kind = KindUnrated
	svc.Label = UnratedLabel
	return svc
}

// Catalog resolves every configured service, sorted by kind then name
func Catalog(cfg *PricingConfig) []Service {
	if cfg == nil {
		return nil
	}
	names := make([]string, 0, len(cfg.Towing)+len(cfg.Services))
	for name := range cfg.Towing {
		names = append(names, name)
	}
	for name := range cfg.Services {
		if _, dup := cfg.Towing[name]; !dup {
			names = append(names, name)
		}
	}

	services := make([]Service, 0, len(names))
	for _, name := range names {
		services = append(services, Lookup(cfg, name))
	}
	sort.Slice(services, func(i, j int) bool {
		if services[i].Kind != services[j].Kind {
			return services[i].Kind > services[j].Kind
		}
		return services[i].Name < services[j].Name
	})
	return services
}
