package validation

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// BindAndValidate binds the JSON body into out and validates it. On failure
// it writes a 400 error envelope and returns an error so the handler can
// short-circuit.
func BindAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate) error {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":        "BAD_REQUEST_ERROR",
				"description": "invalid request body",
			},
		})
		return err
	}
	if err := v.Struct(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":        "BAD_REQUEST_ERROR",
				"description": validationDescription(err),
			},
		})
		return err
	}
	return nil
}

func validationDescription(err error) string {
	ve, ok := err.(validatorv10.ValidationErrors)
	if !ok || len(ve) == 0 {
		return err.Error()
	}
	fe := ve[0]
	switch fe.Tag() {
	case "required_for_upi":
		return "vpa is required for upi payments"
	case "required_for_card":
		return "card details are required for card payments"
	default:
		return "invalid value for " + fe.Field()
	}
}
