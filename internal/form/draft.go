// Package form binds raw form input to entity records: it keeps a draft,
// recomputes derived fields as inputs change, and reports every invalid
// field before anything reaches a store.
package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Draft is an in-progress copy of a record bound to a form.
type Draft struct {
	schema *Schema
	raw    map[string]any

	touched  map[string]bool
	unknown  []string
	existing bool
}

// NewDraft starts an empty draft for creating a record.
func NewDraft(schema *Schema) *Draft {
	return &Draft{
		schema:  schema,
		raw:     map[string]any{},
		touched: map[string]bool{},
	}
}

// DraftFrom starts a draft for editing record. Only fields changed afterwards
// are validated and reported by Changes.
func DraftFrom(schema *Schema, record any) (*Draft, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("draft %s: %w", schema.Entity, err)
	}
	d := NewDraft(schema)
	if err := json.Unmarshal(b, &d.raw); err != nil {
		return nil, fmt.Errorf("draft %s: %w", schema.Entity, err)
	}
	d.existing = true
	return d, nil
}

// Set records a raw input value and refreshes the fields derived from it.
// Names outside the schema are reported by Validate.
func (d *Draft) Set(name string, value any) {
	if _, ok := d.schema.Field(name); !ok {
		d.unknown = append(d.unknown, name)
		return
	}
	d.raw[name] = value
	d.touched[name] = true
	d.derive(name, map[string]bool{name: true})
}

// Apply sets every entry of input.
func (d *Draft) Apply(input map[string]any) {
	names := make([]string, 0, len(input))
	for name := range input {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d.Set(name, input[name])
	}
}

// Get returns the raw value currently held for name.
func (d *Draft) Get(name string) any {
	return d.raw[name]
}

// derive recomputes the targets fed by changed, then whatever those feed.
// seen stops derivation cycles.
func (d *Draft) derive(changed string, seen map[string]bool) {
	for _, dv := range d.schema.Derivations {
		if !contains(dv.Inputs, changed) || seen[dv.Target] {
			continue
		}
		if v, ok := dv.Compute(d.number); ok {
			d.raw[dv.Target] = v
			d.touched[dv.Target] = true
			seen[dv.Target] = true
			d.derive(dv.Target, seen)
		}
	}
}

// number reads a field leniently for derivations.
func (d *Draft) number(name string) (decimal.Decimal, bool) {
	v, err := parseDecimal(d.raw[name])
	if err != nil || v == nil {
		return decimal.Zero, false
	}
	return *v, true
}

// Validate checks the draft and returns a *ValidationError listing every
// failing field, or nil.
func (d *Draft) Validate() error {
	_, err := d.parse()
	return err
}

// Values returns the parsed values of every field present in the draft.
func (d *Draft) Values() (map[string]any, error) {
	return d.parse()
}

// Changes returns the parsed values of the fields set since the draft was
// created, derived fields included.
func (d *Draft) Changes() (map[string]any, error) {
	values, err := d.parse()
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	for name := range d.touched {
		if v, ok := values[name]; ok {
			out[name] = v
		}
	}
	return out, nil
}

func (d *Draft) parse() (map[string]any, error) {
	problems := map[string]string{}
	for _, name := range d.unknown {
		problems[name] = "is not a known field"
	}

	values := map[string]any{}
	for _, f := range d.schema.Fields {
		if d.existing && !d.touched[f.Name] {
			continue
		}
		v, err := parseValue(f, d.raw[f.Name])
		if err != nil {
			problems[f.Name] = err.Error()
			continue
		}
		if v == nil {
			switch {
			case f.Required:
				problems[f.Name] = "is required"
			case f.Nullable:
				values[f.Name] = nil
			}
			continue
		}
		if err := checkRules(f, v); err != nil {
			problems[f.Name] = err.Error()
			continue
		}
		values[f.Name] = v
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Entity: d.schema.Entity, Fields: problems}
	}
	return values, nil
}

// Decode validates the draft and converts it into a typed record.
// An editing draft decodes to the edited record with its changes applied;
// fields hidden from JSON are not carried over.
func Decode[T any](d *Draft) (T, error) {
	var out T
	values, err := d.Values()
	if err != nil {
		return out, err
	}
	if d.existing {
		merged := map[string]any{}
		for k, v := range d.raw {
			merged[k] = v
		}
		for k, v := range values {
			merged[k] = v
		}
		values = merged
	}
	b, err := json.Marshal(values)
	if err != nil {
		return out, fmt.Errorf("decode %s: %w", d.schema.Entity, err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return out, &ValidationError{Entity: d.schema.Entity, Fields: map[string]string{typeErr.Field: "has the wrong type"}}
		}
		return out, fmt.Errorf("decode %s: %w", d.schema.Entity, err)
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
