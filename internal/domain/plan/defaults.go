package plan

import (
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/shopspring/decimal"
)

// FreePlanID is the catalog entry trials are anchored to.
const FreePlanID = "free"

// DefaultPlans is the seed catalog. The seeding process upserts these;
// the engine also falls back to them in tests.
func DefaultPlans() []*Plan {
	return []*Plan{
		{
			ID:                  FreePlanID,
			Name:                "free",
			DisplayName:         "Free Trial",
			Price:               decimal.Zero,
			Currency:            "usd",
			IncludedMinutes:     50,
			IncludedSMS:         50,
			IncludedNumbers:     1,
			PricePerExtraMinute: decimal.NewFromFloat(0.025),
			PricePerExtraSMS:    decimal.NewFromFloat(0.01),
			SortOrder:           0,
			BaseModel:           types.BaseModel{TenantID: types.DefaultTenantID, Status: types.StatusPublished},
		},
		{
			ID:                  "starter",
			Name:                "starter",
			DisplayName:         "Starter",
			Price:               decimal.NewFromFloat(19.99),
			Currency:            "usd",
			IncludedMinutes:     300,
			IncludedSMS:         500,
			IncludedNumbers:     1,
			PricePerExtraMinute: decimal.NewFromFloat(0.02),
			PricePerExtraSMS:    decimal.NewFromFloat(0.008),
			SortOrder:           1,
			BaseModel:           types.BaseModel{TenantID: types.DefaultTenantID, Status: types.StatusPublished},
		},
		{
			ID:                  "professional",
			Name:                "professional",
			DisplayName:         "Professional",
			Price:               decimal.NewFromFloat(39),
			Currency:            "usd",
			IncludedMinutes:     1000,
			IncludedSMS:         1000,
			IncludedNumbers:     1,
			PricePerExtraMinute: decimal.NewFromFloat(0.02),
			PricePerExtraSMS:    decimal.NewFromFloat(0.008),
			SortOrder:           2,
			BaseModel:           types.BaseModel{TenantID: types.DefaultTenantID, Status: types.StatusPublished},
		},
		{
			ID:                  "business",
			Name:                "business",
			DisplayName:         "Business",
			Price:               decimal.NewFromFloat(79),
			Currency:            "usd",
			IncludedMinutes:     2500,
			IncludedSMS:         2000,
			IncludedNumbers:     3,
			PricePerExtraMinute: decimal.NewFromFloat(0.015),
			PricePerExtraSMS:    decimal.NewFromFloat(0.006),
			SortOrder:           3,
			BaseModel:           types.BaseModel{TenantID: types.DefaultTenantID, Status: types.StatusPublished},
		},
		{
			ID:                  "enterprise",
			Name:                "enterprise",
			DisplayName:         "Enterprise",
			Price:               decimal.NewFromFloat(149),
			Currency:            "usd",
			IncludedMinutes:     999999,
			IncludedSMS:         999999,
			IncludedNumbers:     10,
			PricePerExtraMinute: decimal.Zero,
			PricePerExtraSMS:    decimal.Zero,
			SortOrder:           4,
			BaseModel:           types.BaseModel{TenantID: types.DefaultTenantID, Status: types.StatusPublished},
		},
	}
}
