package form

import "github.com/shopspring/decimal"

// Kind tells the draft how to parse a raw input value.
type Kind int

const (
	String Kind = iota
	Int
	Decimal
	Date
	Bool
	Enum
	StringList
	IDList
	// Object passes a nested JSON object through unchanged.
	Object
)

// Field describes one input of a record form.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	// Nullable fields are sent as null when left empty.
	Nullable bool
	// Rules are validator tags checked against the parsed value, e.g. "gte=0".
	Rules   string
	Options []string
}

// Derivation recomputes Target whenever one of its Inputs changes.
type Derivation struct {
	Target  string
	Inputs  []string
	Compute func(get func(string) (decimal.Decimal, bool)) (decimal.Decimal, bool)
}

// Schema is the form definition for one entity.
type Schema struct {
	Entity      string
	Fields      []Field
	Derivations []Derivation
}

// Field looks up a field definition by name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Product derives target = a × b.
func Product(target, a, b string) Derivation {
	return Derivation{
		Target: target,
		Inputs: []string{a, b},
		Compute: func(get func(string) (decimal.Decimal, bool)) (decimal.Decimal, bool) {
			x, okA := get(a)
			y, okB := get(b)
			if !okA || !okB {
				return decimal.Zero, false
			}
			return x.Mul(y), true
		},
	}
}

// Difference derives target = a − b.
func Difference(target, a, b string) Derivation {
	return Derivation{
		Target: target,
		Inputs: []string{a, b},
		Compute: func(get func(string) (decimal.Decimal, bool)) (decimal.Decimal, bool) {
			x, okA := get(a)
			y, okB := get(b)
			if !okA || !okB {
				return decimal.Zero, false
			}
			return x.Sub(y), true
		},
	}
}

// DiscountRate derives target = (retail − wholesale) / retail × 100, rounded
// to two places. Nothing is derived while retail is zero.
func DiscountRate(target, retail, wholesale string) Derivation {
	return Derivation{
		Target: target,
		Inputs: []string{retail, wholesale},
		Compute: func(get func(string) (decimal.Decimal, bool)) (decimal.Decimal, bool) {
			r, okR := get(retail)
			w, okW := get(wholesale)
			if !okR || !okW || !r.IsPositive() {
				return decimal.Zero, false
			}
			return r.Sub(w).Div(r).Mul(decimal.NewFromInt(100)).Round(2), true
		},
	}
}
