package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with struct-level rules registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(createPaymentStructValidation, CreatePaymentRequest{})
	return v
}

// createPaymentStructValidation enforces the method-specific required
// fields: UPI payments need a VPA, card payments need the full card tuple.
func createPaymentStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreatePaymentRequest)

	switch req.Method {
	case "upi":
		if req.VPA == "" {
			sl.ReportError(req.VPA, "vpa", "VPA", "required_for_upi", "")
		}
	case "card":
		if req.CardNumber == "" {
			sl.ReportError(req.CardNumber, "card_number", "CardNumber", "required_for_card", "")
		}
		if req.CardExpiry == "" {
			sl.ReportError(req.CardExpiry, "card_expiry", "CardExpiry", "required_for_card", "")
		}
		if req.CardCVV == "" {
			sl.ReportError(req.CardCVV, "card_cvv", "CardCVV", "required_for_card", "")
		}
	}
}
