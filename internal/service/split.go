package service

import (
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"

	"github.com/shopspring/decimal"
)

// ResolvedFeeSchedule is the fee configuration effective for one order,
// after any brand tier override has been applied.
type ResolvedFeeSchedule struct {
	PlatformFeePercent  models.Money `json:"platform_fee_percent"`
	ProcessorFeePercent models.Money `json:"processor_fee_percent"`
	DoctorConsultFee    models.Money `json:"doctor_consult_fee"`
	AffiliatePercent    models.Money `json:"affiliate_percent"`
	RefundDelayDays     int          `json:"refund_delay_days"`
}

// SplitLineItem is one priced line for the calculator. WholesaleCost
// is per unit.
type SplitLineItem struct {
	ProductID     uint
	Quantity      int
	WholesaleCost decimal.Decimal
}

// SplitResult is the five-way division of one order total. Shortfall
// records how far the fixed shares exceeded the total when the brand
// remainder floors at zero; it is zero on a balanced split.
type SplitResult struct {
	PlatformFeePercent models.Money `json:"platform_fee_percent"`
	PlatformFee        models.Money `json:"platform_fee"`
	ProcessorFee       models.Money `json:"processor_fee"`
	DoctorFee          models.Money `json:"doctor_fee"`
	PharmacyCost       models.Money `json:"pharmacy_cost"`
	BrandAmount        models.Money `json:"brand_amount"`
	Shortfall          models.Money `json:"shortfall"`
}

// Balanced reports whether the five shares add back up to the total.
func (s SplitResult) Balanced() bool {
	return s.Shortfall.IsZero()
}

// ComputeSplit divides an order total among platform, processor,
// doctor, pharmacy and brand. Percent shares round to 2 decimals; the
// brand takes the remainder, floored at zero. Line items with zero
// quantity are skipped rather than rejected.
func ComputeSplit(total decimal.Decimal, fees ResolvedFeeSchedule, items []SplitLineItem) (SplitResult, error) {
	if total.IsNegative() {
		return SplitResult{}, ErrSplitInputInvalid
	}
	if fees.PlatformFeePercent.IsNegative() || fees.ProcessorFeePercent.IsNegative() || fees.DoctorConsultFee.IsNegative() {
		return SplitResult{}, ErrFeePercentInvalid
	}

	hundred := decimal.NewFromInt(100)
	platformFee := total.Mul(fees.PlatformFeePercent.Decimal).Div(hundred).Round(2)
	processorFee := total.Mul(fees.ProcessorFeePercent.Decimal).Div(hundred).Round(2)
	doctorFee := fees.DoctorConsultFee.Decimal.Round(2)

	pharmacyCost := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		pharmacyCost = pharmacyCost.Add(item.WholesaleCost.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	pharmacyCost = pharmacyCost.Round(2)

	brand := total.Sub(platformFee).Sub(processorFee).Sub(doctorFee).Sub(pharmacyCost).Round(2)
	shortfall := decimal.Zero
	if brand.IsNegative() {
		shortfall = brand.Neg()
		brand = decimal.Zero
	}

	return SplitResult{
		PlatformFeePercent: fees.PlatformFeePercent,
		PlatformFee:        models.NewMoneyFromDecimal(platformFee),
		ProcessorFee:       models.NewMoneyFromDecimal(processorFee),
		DoctorFee:          models.NewMoneyFromDecimal(doctorFee),
		PharmacyCost:       models.NewMoneyFromDecimal(pharmacyCost),
		BrandAmount:        models.NewMoneyFromDecimal(brand),
		Shortfall:          models.NewMoneyFromDecimal(shortfall),
	}, nil
}
