package pricing

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// HookupLabel labels the fixed towing fee line
const HookupLabel = "Hook-up"

// MaxMiles caps any tow or travel distance that gets billed
const MaxMiles = 10000

// ComputeBreakdown prices service before travel, surcharge and discount.
// It is deterministic: equal inputs always produce equal breakdowns.
func ComputeBreakdown(cfg *PricingConfig, service string, milesRounded *float64) Breakdown {
	return computeFor(Lookup(cfg, service), milesRounded)
}

func computeFor(svc Service, milesRounded *float64) Breakdown {
	// call-for-quote services are never priced, whatever the config lists
	if svc.CallForQuote {
		return Breakdown{Base: 0, Items: []BreakdownItem{}}
	}

	switch svc.Kind {
	case KindTowing:
		return towingBreakdown(*svc.Towing, milesRounded)
	case KindFlatRate:
		return Breakdown{
			Base:  svc.Flat.BasePrice,
			Items: []BreakdownItem{{Label: svc.Label, Amount: svc.Flat.BasePrice}},
		}
	default:
		return Breakdown{
			Base:  UnratedAmount,
			Items: []BreakdownItem{{Label: UnratedLabel, Amount: UnratedAmount}},
		}
	}
}

func towingBreakdown(rate TowingRate, milesRounded *float64) Breakdown {
	minimum := sanitizeMiles(rate.MinimumMiles)
	billed := minimum

	var rounded *int
	if milesRounded != nil {
		miles := math.Ceil(sanitizeMiles(*milesRounded))
		r := int(miles)
		rounded = &r
		billed = math.Max(miles, minimum)
	}

	mileage := money(decimal.NewFromFloat(billed).Mul(decimal.NewFromFloat(rate.PerMileRate)))
	items := []BreakdownItem{
		{Label: HookupLabel, Amount: rate.HookupFee},
		{
			Label:  fmt.Sprintf("%s mi × $%s (%s mi min)", formatNumber(billed), formatNumber(rate.PerMileRate), formatNumber(minimum)),
			Amount: mileage,
		},
	}

	return Breakdown{
		Base:         sumItems(items),
		MilesRounded: rounded,
		Items:        items,
	}
}

// AddTravel appends the dispatch-to-pickup charge when travelMiles is a
// finite positive number and the service bills travel. Otherwise it returns
// an equal copy of b.
func AddTravel(b Breakdown, svc Service, travelRate float64, travelMiles *float64) Breakdown {
	if travelMiles == nil || !svc.TravelEligible {
		return b.clone()
	}
	miles := *travelMiles
	if math.IsNaN(miles) || math.IsInf(miles, 0) || miles <= 0 {
		return b.clone()
	}

	billed := math.Ceil(math.Min(miles, MaxMiles))
	amount := money(decimal.NewFromFloat(billed).Mul(decimal.NewFromFloat(travelRate)))
	return b.with(BreakdownItem{
		Label:  fmt.Sprintf("Travel %s mi × $%s", formatNumber(billed), formatNumber(travelRate)),
		Amount: amount,
	})
}

// ApplyMultiplier appends a surcharge line for m when its multiplier is above 1
func ApplyMultiplier(b Breakdown, m Match) Breakdown {
	if !m.Matched() || m.Multiplier <= 1 {
		return b.clone()
	}

	surcharge := decimal.NewFromFloat(b.Base).Mul(decimal.NewFromFloat(m.Multiplier).Sub(decimal.NewFromInt(1))).Round(0)
	name := m.Badge
	if name == "" {
		name = m.Period
	}
	return b.with(BreakdownItem{
		Label:  fmt.Sprintf("%s surcharge (×%s)", name, formatNumber(m.Multiplier)),
		Amount: surcharge.InexactFloat64(),
	})
}

// ApplyOnlineDiscount returns amount × (1 − rate) rounded half-up to whole
// dollars. rate is not validated; see ClampRate.
func ApplyOnlineDiscount(amount, rate float64) float64 {
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(rate))
	return decimal.NewFromFloat(amount).Mul(factor).Round(0).InexactFloat64()
}

// ClampRate limits a discount rate to [0, 1]. NaN becomes 0.
func ClampRate(rate float64) float64 {
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}

// sanitizeMiles maps negative and non-finite distances to 0 and caps the
// rest at MaxMiles
func sanitizeMiles(miles float64) float64 {
	if math.IsNaN(miles) || math.IsInf(miles, 0) || miles < 0 {
		return 0
	}
	return math.Min(miles, MaxMiles)
}

// money keeps line amounts at cent precision
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func sumItems(items []BreakdownItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Amount))
	}
	return total.InexactFloat64()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
