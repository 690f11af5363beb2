// Package validator registers the storefront's custom binding tags with gin.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"royalfootwear/internal/models"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// tags maps each binding tag to its check.
var tags = map[string]validator.Func{
	"hex_color": func(fl validator.FieldLevel) bool {
		return hexColorRegex.MatchString(fl.Field().String())
	},
	"product_category": enum(models.ProductCategory.IsValid),
	"payment_method":   enum(models.PaymentMethod.IsValid),
	"order_status":     enum(models.OrderStatus.IsValid),
	"payment_status":   enum(models.PaymentStatus.IsValid),
}

// enum adapts the IsValid method of a string enum to a validator.Func.
func enum[T ~string](isValid func(T) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return isValid(T(fl.Field().String()))
	}
}

// Register adds the custom tags to gin's default validator.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn adds the custom tags to v.
func RegisterOn(v *validator.Validate) {
	for tag, fn := range tags {
		_ = v.RegisterValidation(tag, fn)
	}
}
