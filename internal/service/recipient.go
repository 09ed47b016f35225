package service

import (
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/constants"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/models"
)

// ClassifyPaymentRecipient is the canonical recipient classification
// shared by charge issuance and payout aggregation, so the two paths
// cannot silently disagree. The brand remainder payment is tagged
// brand; a payment carrying no order context classifies by its stored
// tag alone.
func ClassifyPaymentRecipient(payment *models.Payment, order *models.Order) string {
	if payment == nil {
		return ""
	}
	switch payment.GoesTo {
	case constants.RecipientBrand, constants.RecipientDoctor, constants.RecipientPharmacy:
		return payment.GoesTo
	}
	if order == nil {
		return ""
	}
	if order.BrandID != 0 || payment.DestinationAccount != "" {
		return constants.RecipientBrand
	}
	return ""
}

// RecipientShare returns the persisted split share an order owes to a
// recipient class. A payment carrying no class keeps the full charge
// amount. Using the split columns here keeps the payment amount in
// lockstep with the ledger that later sums it.
func RecipientShare(class string, order *models.Order) models.Money {
	if order == nil {
		return models.Money{}
	}
	switch class {
	case constants.RecipientBrand:
		return order.BrandAmount
	case constants.RecipientDoctor:
		return order.DoctorFeeAmount
	case constants.RecipientPharmacy:
		return order.PharmacyCostAmount
	}
	return order.TotalAmount
}

// ValidRecipientClass reports whether the class names a payout ledger.
func ValidRecipientClass(class string) bool {
	switch class {
	case constants.RecipientBrand, constants.RecipientDoctor, constants.RecipientPharmacy, constants.RecipientAffiliate:
		return true
	}
	return false
}
