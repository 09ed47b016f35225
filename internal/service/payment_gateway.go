package service

import (
	"context"

	"github.com/shopspring/decimal"
)

// ChargeRequest describes one charge to place with the payment
// provider. TransferTo routes the brand remainder to a connected
// account when set.
type ChargeRequest struct {
	OrderNo        string
	Amount         decimal.Decimal
	Currency       string
	Description    string
	TransferTo     string
	TransferAmount decimal.Decimal
	Metadata       map[string]string
}

// ChargeResult is the provider's answer to a charge request.
type ChargeResult struct {
	ChargeID     string
	ClientSecret string
	Raw          map[string]interface{}
}

// ChargeStatus is the provider state of one charge, queried at
// settlement time.
type ChargeStatus struct {
	ChargeID string
	Status   string
	Amount   string
	Currency string
	Raw      map[string]interface{}
}

// Charge states the settlement flow acts on. Anything else is treated
// as still in flight.
const (
	ChargeStatusSucceeded = "succeeded"
	ChargeStatusCanceled  = "canceled"
)

// Gateway is the payment provider surface the order flow depends on.
type Gateway interface {
	Name() string
	CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	GetCharge(ctx context.Context, chargeID string) (*ChargeStatus, error)
}
