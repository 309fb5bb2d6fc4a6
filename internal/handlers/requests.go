package handlers

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/chat"
)

// Validator plugs go-playground/validator into echo.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a Validator using the json tag names in its errors.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i any) error {
	return cv.v.Struct(i)
}

// BindAndValidate decodes the request into req and validates it. Both
// failures wrap chat.ErrInvalidParameter.
func BindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: malformed request body", chat.ErrInvalidParameter)
	}
	if err := c.Validate(req); err != nil {
		return fmt.Errorf("%w: %v", chat.ErrInvalidParameter, err)
	}
	return nil
}
