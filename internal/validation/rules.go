package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var skuRegex = regexp.MustCompile(`^\S+$`)

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func NewProductValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("sku", skuValidator),
		},
	}
}

func skuValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return skuRegex.MatchString(val)
}
