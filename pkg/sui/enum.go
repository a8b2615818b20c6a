package sui

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Unit is the payload of variants that carry no data.
type Unit struct{}

var unitType = reflect.TypeOf(Unit{})

func variantName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// marshalEnum renders the set variant of an enum struct as "Name" (unit) or {"Name": payload}.
func marshalEnum(v reflect.Value) ([]byte, error) {
	t := v.Type()
	for i := range t.NumField() {
		f := v.Field(i)
		if f.Kind() != reflect.Pointer || f.IsNil() {
			continue
		}
		name := variantName(t.Field(i))
		if f.Type().Elem() == unitType {
			return json.Marshal(name)
		}
		return json.Marshal(map[string]any{name: f.Interface()})
	}
	return nil, fmt.Errorf("sui: %s has no variant set", t.Name())
}

// unmarshalEnum is the inverse of marshalEnum. v must be an addressable enum struct.
func unmarshalEnum(data []byte, v reflect.Value) error {
	t := v.Type()

	var (
		name    string
		payload json.RawMessage
	)
	if err := json.Unmarshal(data, &name); err != nil {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("sui: %s: want variant name or single-key object: %w", t.Name(), err)
		}
		if len(obj) != 1 {
			return fmt.Errorf("sui: %s: want exactly one variant, got %d", t.Name(), len(obj))
		}
		for k, p := range obj {
			name, payload = k, p
		}
	}

	for i := range t.NumField() {
		sf := t.Field(i)
		if variantName(sf) != name {
			continue
		}
		elem := sf.Type.Elem()
		p := reflect.New(elem)
		switch {
		case payload == nil && elem != unitType:
			return fmt.Errorf("sui: %s.%s requires a payload", t.Name(), name)
		case payload != nil:
			if err := json.Unmarshal(payload, p.Interface()); err != nil {
				return fmt.Errorf("sui: %s.%s: %w", t.Name(), name, err)
			}
		}
		v.Set(reflect.Zero(t))
		v.Field(i).Set(p)
		return nil
	}
	return fmt.Errorf("sui: %s: unknown variant %q", t.Name(), name)
}

// variantOf returns the name of the set variant, or "" when none is set.
func variantOf(v reflect.Value) string {
	t := v.Type()
	for i := range t.NumField() {
		if f := v.Field(i); f.Kind() == reflect.Pointer && !f.IsNil() {
			return variantName(t.Field(i))
		}
	}
	return ""
}
