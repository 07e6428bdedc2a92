package pricing

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is returned when a pricing payload fails validation
var ErrInvalidConfig = errors.New("invalid pricing config")

var validate = validator.New()

// PricingConfig holds the pricing document used to build quotes
type PricingConfig struct {
	Services        map[string]ServiceRate `json:"services" dynamodbav:"services" validate:"dive"`
	Towing          map[string]TowingRate  `json:"towing" dynamodbav:"towing" validate:"dive"`
	Rates           Rates                  `json:"rates" dynamodbav:"rates"`
	TimeMultipliers TimeMultiplierConfig   `json:"timeMultipliers" dynamodbav:"timeMultipliers"`
}

// Rates holds the config-wide charges
type Rates struct {
	TravelRate         float64 `json:"travelRate" dynamodbav:"travelRate" validate:"gte=0"`
	OnlineDiscountRate float64 `json:"onlineDiscountRate" dynamodbav:"onlineDiscountRate" validate:"gte=0,lte=1"`
}

// ServiceRate is a flat-rate service entry
type ServiceRate struct {
	BasePrice float64 `json:"basePrice" dynamodbav:"basePrice" validate:"gte=0"`
	Label     string  `json:"label" dynamodbav:"label"`
	// DiscountRate is carried for the admin console; checkout uses Rates.OnlineDiscountRate.
	DiscountRate       float64 `json:"discountRate" dynamodbav:"discountRate" validate:"gte=0,lte=1"`
	AfterHoursEligible bool    `json:"afterHoursEligible" dynamodbav:"afterHoursEligible"`
}

// TowingRate is a distance-based service entry
type TowingRate struct {
	HookupFee          float64 `json:"hookupFee" dynamodbav:"hookupFee" validate:"gte=0"`
	PerMileRate        float64 `json:"perMileRate" dynamodbav:"perMileRate" validate:"gte=0"`
	MinimumMiles       float64 `json:"minimumMiles" dynamodbav:"minimumMiles" validate:"gte=0"`
	DiscountRate       float64 `json:"discountRate" dynamodbav:"discountRate" validate:"gte=0,lte=1"`
	AfterHoursEligible bool    `json:"afterHoursEligible" dynamodbav:"afterHoursEligible"`
}

// TimeMultiplierConfig is the after-hours surcharge schedule
type TimeMultiplierConfig struct {
	Enabled  bool         `json:"enabled" dynamodbav:"enabled"`
	Timezone string       `json:"timezone" dynamodbav:"timezone"`
	Periods  []TimePeriod `json:"periods" dynamodbav:"periods"`
}

// TimePeriod is one surcharge window. Periods with StartTime > EndTime wrap midnight.
type TimePeriod struct {
	Name       string  `json:"name" dynamodbav:"name"`
	Active     bool    `json:"active" dynamodbav:"active"`
	DaysOfWeek []int   `json:"daysOfWeek" dynamodbav:"daysOfWeek"`
	StartTime  string  `json:"startTime" dynamodbav:"startTime"`
	EndTime    string  `json:"endTime" dynamodbav:"endTime"`
	Multiplier float64 `json:"multiplier" dynamodbav:"multiplier"`
	Badge      string  `json:"badge" dynamodbav:"badge"`
}

// BreakdownItem is a single charged line
type BreakdownItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Breakdown is an itemized price. Base always equals the sum of Items.
type Breakdown struct {
	Base         float64         `json:"base"`
	MilesRounded *int            `json:"milesRounded,omitempty"`
	Items        []BreakdownItem `json:"items"`
}

// Validate checks a pricing payload before it replaces the cached config.
// Time periods are not checked here; a malformed period only disables itself.
func (c *PricingConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: empty payload", ErrInvalidConfig)
	}
	if len(c.Services) == 0 && len(c.Towing) == 0 {
		return fmt.Errorf("%w: no services or towing rates", ErrInvalidConfig)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// with returns a copy of b with one more item appended
func (b Breakdown) with(item BreakdownItem) Breakdown {
	items := make([]BreakdownItem, 0, len(b.Items)+1)
	items = append(items, b.Items...)
	items = append(items, item)
	return Breakdown{
		Base:         b.Base + item.Amount,
		MilesRounded: b.MilesRounded,
		Items:        items,
	}
}

// clone returns an equal Breakdown that shares nothing mutable with b
func (b Breakdown) clone() Breakdown {
	items := make([]BreakdownItem, len(b.Items))
	copy(items, b.Items)
	return Breakdown{Base: b.Base, MilesRounded: b.MilesRounded, Items: items}
}
