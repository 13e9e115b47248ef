package models

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Precision of persisted monetary columns: NUMERIC(15,2) for amounts and
// balances, NUMERIC(15,6) for exchange rates.
const (
	MoneyScale = 2
	RateScale  = 6
)

// MaxMoney is the exclusive upper bound of a NUMERIC(15,2) column.
var MaxMoney = decimal.New(1, 13)

// Text limits, matching the VARCHAR columns in schema.sql.
const (
	MaxDescription = 255
	MaxNotes       = 1000
)

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	colorPattern    = regexp.MustCompile(`^#[0-9A-F]{6}$`)
)

// FieldError reports a single invalid input field.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func fieldErr(field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// hasMaxPlaces reports whether d has at most places significant fractional digits.
func hasMaxPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// ValidateAmount checks a strictly positive monetary amount.
func ValidateAmount(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return fieldErr(field, "must be positive, got %s", d.String())
	}
	return validateMoney(field, d)
}

// ValidateFee checks a non-negative monetary amount.
func ValidateFee(d decimal.Decimal) error {
	if d.IsNegative() {
		return fieldErr("fee", "cannot be negative, got %s", d.String())
	}
	return validateMoney("fee", d)
}

// ValidateInitialBalance accepts any sign; credit cards and loans start negative.
func ValidateInitialBalance(d decimal.Decimal) error {
	return validateMoney("initial_balance", d)
}

// ValidateExchangeRate checks a positive multiplier with at most six decimals.
func ValidateExchangeRate(d decimal.Decimal) error {
	if !d.IsPositive() {
		return fieldErr("exchange_rate", "must be positive, got %s", d.String())
	}
	if !hasMaxPlaces(d, RateScale) {
		return fieldErr("exchange_rate", "cannot have more than %d decimal places", RateScale)
	}
	if d.GreaterThanOrEqual(decimal.New(1, 9)) {
		return fieldErr("exchange_rate", "is too large")
	}
	return nil
}

func validateMoney(field string, d decimal.Decimal) error {
	if !hasMaxPlaces(d, MoneyScale) {
		return fieldErr(field, "cannot have more than %d decimal places", MoneyScale)
	}
	if d.Abs().GreaterThanOrEqual(MaxMoney) {
		return fieldErr(field, "exceeds the maximum of 13 integer digits")
	}
	return nil
}

// NormalizeCurrency upper-cases an ISO 4217 code and checks its shape.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !currencyPattern.MatchString(code) {
		return "", fieldErr("currency", "must be a 3-letter ISO 4217 code, got %q", code)
	}
	return code, nil
}

// NormalizeColor upper-cases a #RRGGBB color. A nil color stays nil.
func NormalizeColor(color *string) (*string, error) {
	if color == nil {
		return nil, nil
	}
	c := strings.ToUpper(strings.TrimSpace(*color))
	if !colorPattern.MatchString(c) {
		return nil, fieldErr("color", "must be in hex format (#RRGGBB), got %q", *color)
	}
	return &c, nil
}

// NormalizeTags trims, lower-cases, de-duplicates and sorts tags.
// It returns nil when nothing is left.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

// normalizeText trims an optional free-text field and enforces a length limit.
// Blank text becomes nil.
func normalizeText(field string, s *string, max int) (*string, error) {
	if s == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil, nil
	}
	if len([]rune(v)) > max {
		return nil, fieldErr(field, "cannot exceed %d characters", max)
	}
	return &v, nil
}

// normalizeUpdateText is normalizeText for partial updates: blank text becomes
// a pointer to "" so ApplyTo can tell "clear" from "leave unchanged".
func normalizeUpdateText(field string, s *string, max int) (*string, error) {
	if s == nil {
		return nil, nil
	}
	v, err := normalizeText(field, s, max)
	if err != nil {
		return nil, err
	}
	if v == nil {
		blank := ""
		return &blank, nil
	}
	return v, nil
}

// applyText sets *dst from an update field produced by normalizeUpdateText.
func applyText(dst **string, v *string) {
	switch {
	case v == nil:
	case *v == "":
		*dst = nil
	default:
		s := *v
		*dst = &s
	}
}

func normalizeName(field, s string, max int) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", fieldErr(field, "is required")
	}
	if len([]rune(v)) > max {
		return "", fieldErr(field, "cannot exceed %d characters", max)
	}
	return v, nil
}
