package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)
	pinRe        = regexp.MustCompile(`^[0-9]{4,6}$`)
	moneyRe      = regexp.MustCompile(`^[0-9]{1,16}(\.[0-9]{1,2})?$`)
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("safe_id", validateSafeID)
		_ = v.RegisterValidation("wallet_pin", validateWalletPin)
		_ = v.RegisterValidation("money", validateMoney)
	}
}

// validateSafeID allows alphanumeric, underscore, dash, and dot.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

// validateWalletPin accepts 4 to 6 digits.
func validateWalletPin(fl validator.FieldLevel) bool {
	return pinRe.MatchString(fl.Field().String())
}

// validateMoney accepts a positive decimal amount with at most two
// fractional digits.
func validateMoney(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if !moneyRe.MatchString(raw) {
		return false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// ParseAmount converts a validated money string into a decimal.
func ParseAmount(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(raw)
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				s := sanitize(elem.String())
				elem.SetString(s)
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
