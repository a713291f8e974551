package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// parseValue converts a raw input into the field's Go type. A nil result
// means the field was left empty.
func parseValue(f Field, raw any) (any, error) {
	if isEmpty(raw) {
		return nil, nil
	}
	switch f.Kind {
	case String:
		s, ok := raw.(string)
		if !ok {
			return nil, errors.New("must be text")
		}
		return strings.TrimSpace(s), nil
	case Enum:
		s, ok := raw.(string)
		if !ok || !contains(f.Options, s) {
			return nil, fmt.Errorf("must be one of %s", strings.Join(f.Options, ", "))
		}
		return s, nil
	case Int:
		return parseInt(raw)
	case Decimal:
		v, err := parseDecimal(raw)
		if err != nil {
			return nil, err
		}
		return *v, nil
	case Date:
		return parseDate(raw)
	case Bool:
		switch b := raw.(type) {
		case bool:
			return b, nil
		case string:
			v, err := strconv.ParseBool(b)
			if err != nil {
				return nil, errors.New("must be true or false")
			}
			return v, nil
		}
		return nil, errors.New("must be true or false")
	case StringList:
		return parseStringList(raw)
	case IDList:
		return parseIDList(raw)
	case Object:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.New("must be an object")
		}
		return obj, nil
	}
	return nil, fmt.Errorf("has unsupported kind %d", f.Kind)
}

func isEmpty(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

func parseInt(raw any) (int64, error) {
	fail := errors.New("must be a whole number")
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fail
		}
		return int64(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fail
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fail
		}
		return n, nil
	case decimal.Decimal:
		if !v.Equal(v.Truncate(0)) {
			return 0, fail
		}
		return v.IntPart(), nil
	}
	return 0, fail
}

func parseDecimal(raw any) (*decimal.Decimal, error) {
	fail := errors.New("must be a number")
	var d decimal.Decimal
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		d = v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fail
		}
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case json.Number:
		parsed, err := decimal.NewFromString(v.String())
		if err != nil {
			return nil, fail
		}
		d = parsed
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, fail
		}
		d = parsed
	default:
		return nil, fail
	}
	return &d, nil
}

func parseDate(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if t, err := time.Parse(dateLayout, s); err == nil {
			return t, nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("must be a date (YYYY-MM-DD)")
}

func parseStringList(raw any) ([]string, error) {
	fail := errors.New("must be a list of text values")
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fail
			}
			if s = strings.TrimSpace(s); s != "" && !contains(out, s) {
				out = append(out, s)
			}
		}
		return out, nil
	}
	return nil, fail
}

func parseIDList(raw any) ([]uint, error) {
	fail := errors.New("must be a list of ids")
	var items []any
	switch v := raw.(type) {
	case []uint:
		return v, nil
	case []any:
		items = v
	default:
		return nil, fail
	}
	out := make([]uint, 0, len(items))
	seen := map[uint]bool{}
	for _, item := range items {
		n, err := parseInt(item)
		if err != nil || n <= 0 {
			return nil, fail
		}
		if id := uint(n); !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

// checkRules runs the field's validator tags against the parsed value.
func checkRules(f Field, v any) error {
	if f.Rules == "" {
		return nil
	}
	err := validate.Var(v, f.Rules)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	return errors.New(describe(fieldErrs[0], f.Kind))
}

func describe(fe validator.FieldError, kind Kind) string {
	text := kind == String
	switch fe.Tag() {
	case "min", "gte":
		if text {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max", "lte":
		if text {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "len":
		if text {
			return "must be exactly " + fe.Param() + " characters"
		}
		return "must have exactly " + fe.Param() + " items"
	case "gt":
		return "must be greater than " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "numeric":
		return "must contain only digits"
	}
	return "failed " + fe.Tag() + " check"
}
