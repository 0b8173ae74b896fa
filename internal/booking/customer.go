package booking

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

// Customer is the contact and payment information entered on the booking
// page.
type Customer struct {
	Name          string              `json:"customer_name" validate:"required"`
	Phone         string              `json:"customer_phone" validate:"required"`
	Email         string              `json:"customer_email" validate:"required"`
	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"oneof=cash card banking"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so messages match the request payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize trims every field and defaults the payment method to cash.
func (c Customer) Normalize() Customer {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.PaymentMethod = model.PaymentMethod(strings.ToLower(strings.TrimSpace(string(c.PaymentMethod))))
	if c.PaymentMethod == "" {
		c.PaymentMethod = model.PaymentCash
	}
	return c
}

// Validate checks an already normalized Customer.
func (c Customer) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = validationErrorMessage(fe)
	}
	return out
}

func validationErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "invalid value"
}
