package pricing

// UnratedLabel and UnratedAmount price any service missing from the config.
// They are engine constants so a bad config can never remove them.
const (
	UnratedLabel  = "Service"
	UnratedAmount = 65.0
)

// DefaultPricingConfig returns the built-in fallback used when no remote
// config has ever been fetched successfully
func DefaultPricingConfig() *PricingConfig {
	return &PricingConfig{
		Services: map[string]ServiceRate{
			JumpStart:          {BasePrice: 75, Label: "Jump Start", DiscountRate: 0.15, AfterHoursEligible: true},
			Lockout:            {BasePrice: 75, Label: "Lockout Service", DiscountRate: 0.15, AfterHoursEligible: true},
			TireChange:         {BasePrice: 85, Label: "Tire Change", DiscountRate: 0.15, AfterHoursEligible: true},
			FuelDelivery:       {BasePrice: 85, Label: "Fuel Delivery", DiscountRate: 0.15, AfterHoursEligible: true},
			RoadsideAssistance: {BasePrice: 85, Label: "Roadside Assistance", DiscountRate: 0.15, AfterHoursEligible: true},
			CollisionRecovery:  {BasePrice: 150, Label: "Collision Recovery (first hour)", DiscountRate: 0, AfterHoursEligible: false},
			Impound:            {BasePrice: 0, Label: "Impound Release", DiscountRate: 0, AfterHoursEligible: false},
		},
		Towing: map[string]TowingRate{
			LocalTowing:        {HookupFee: 65, PerMileRate: 8, MinimumMiles: 5, DiscountRate: 0.15, AfterHoursEligible: true},
			LongDistanceTowing: {HookupFee: 95, PerMileRate: 5, MinimumMiles: 25, DiscountRate: 0.15, AfterHoursEligible: true},
		},
		Rates: Rates{
			TravelRate:         2,
			OnlineDiscountRate: 0.15,
		},
		TimeMultipliers: TimeMultiplierConfig{
			Enabled:  false,
			Timezone: "America/Los_Angeles",
			Periods: []TimePeriod{
				{
					Name:       "Night",
					Active:     true,
					DaysOfWeek: []int{0, 1, 2, 3, 4, 5, 6},
					StartTime:  "22:00",
					EndTime:    "06:00",
					Multiplier: 1.25,
					Badge:      "After Hours",
				},
				{
					Name:       "Weekend",
					Active:     true,
					DaysOfWeek: []int{0, 6},
					StartTime:  "00:00",
					EndTime:    "23:59",
					Multiplier: 1.1,
					Badge:      "Weekend",
				},
			},
		},
	}
}
