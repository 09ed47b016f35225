package public

import (
	"errors"

	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/http/response"
	"github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError maps a business error onto an API error response.
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

// orderCreateErrorRules distinguishes caller mistakes, configuration
// faults and declined charges. A declined charge gets its own code so
// clients can tell "your payment failed" from "system misconfigured".
var orderCreateErrorRules = []mappedHandlerError{
	{target: service.ErrOrderItemsRequired, code: response.CodeBadRequest, msg: "order items required"},
	{target: service.ErrOrderQuantityInvalid, code: response.CodeBadRequest, msg: "order quantity invalid"},
	{target: service.ErrProductNotFound, code: response.CodeBadRequest, msg: "product not found"},
	{target: service.ErrProductInactive, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrBrandNotFound, code: response.CodeBadRequest, msg: "brand not found"},
	{target: service.ErrBrandInactive, code: response.CodeBadRequest, msg: "brand not available"},
	{target: service.ErrCurrencyMismatch, code: response.CodeBadRequest, msg: "currency not supported"},
	{target: service.ErrSplitInputInvalid, code: response.CodeBadRequest, msg: "order amount invalid"},
	{target: service.ErrFeeScheduleMissing, code: response.CodeInternal, msg: "fee schedule not configured"},
	{target: service.ErrFeePercentInvalid, code: response.CodeInternal, msg: "fee schedule invalid"},
	{target: service.ErrGatewayChargeFailed, code: response.CodePaymentFail, msg: "payment failed"},
}

var orderReadErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
}

// paymentNotifyErrorRules covers the settlement callback. An
// in-flight charge is the caller's cue to retry later, not a fault.
var paymentNotifyErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentNotFound, code: response.CodeNotFound, msg: "payment not found"},
	{target: service.ErrPaymentNotSettled, code: response.CodeBadRequest, msg: "payment not settled yet"},
	{target: service.ErrGatewayChargeFailed, code: response.CodePaymentFail, msg: "payment failed"},
}
