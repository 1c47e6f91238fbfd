package filterexpr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// OrderField maps an order key to a column.
type OrderField struct {
	Column string
}

// OrderSchema describes ordering defaults and whitelisted keys.
type OrderSchema struct {
	DefaultPrimary     string
	DefaultPrimaryDesc bool
	FallbackKey        string
	FallbackDesc       bool
	Fields             map[string]OrderField
}

// Column resolves a whitelisted order key, falling back to the default primary key.
func (s OrderSchema) Column(key string) string {
	if f, ok := s.Fields[key]; ok {
		return f.Column
	}
	return s.Fields[s.DefaultPrimary].Column
}

type orderParams struct {
	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool
}

func parseOrderBy(raw string, schema OrderSchema) (orderParams, error) {
	if schema.DefaultPrimary == "" || schema.FallbackKey == "" {
		return orderParams{}, errors.New("order schema requires default primary and fallback keys")
	}
	for _, key := range []string{schema.DefaultPrimary, schema.FallbackKey} {
		if _, ok := schema.Fields[key]; !ok {
			return orderParams{}, fmt.Errorf("order key %q missing from schema fields", key)
		}
	}

	ord := orderParams{
		PrimaryKey:    schema.DefaultPrimary,
		PrimaryDesc:   schema.DefaultPrimaryDesc,
		SecondaryKey:  schema.FallbackKey,
		SecondaryDesc: schema.FallbackDesc,
	}

	var keys []string
	for _, seg := range strings.Split(raw, ",") {
		parts := strings.Fields(seg)
		if len(parts) == 0 {
			continue
		}
		key := parts[0]
		if _, ok := schema.Fields[key]; !ok {
			return orderParams{}, fmt.Errorf("field %q cannot be used for ordering", key)
		}
		desc := false
		switch {
		case len(parts) == 2 && strings.EqualFold(parts[1], "desc"):
			desc = true
		case len(parts) == 2 && strings.EqualFold(parts[1], "asc"):
		case len(parts) == 1:
		default:
			return orderParams{}, fmt.Errorf("invalid order segment %q", strings.TrimSpace(seg))
		}
		for _, k := range keys {
			if k == key {
				return orderParams{}, fmt.Errorf("duplicate order key %q", key)
			}
		}
		switch len(keys) {
		case 0:
			ord.PrimaryKey, ord.PrimaryDesc = key, desc
		case 1:
			ord.SecondaryKey, ord.SecondaryDesc = key, desc
		default:
			return orderParams{}, errors.New("order_by supports at most two keys")
		}
		keys = append(keys, key)
	}

	if len(keys) == 1 && ord.PrimaryKey == schema.FallbackKey {
		// fallback duplicates primary; tie-break on the default primary instead
		ord.SecondaryKey, ord.SecondaryDesc = schema.DefaultPrimary, schema.DefaultPrimaryDesc
		if ord.SecondaryKey == ord.PrimaryKey {
			return orderParams{}, errors.New("order schema requires two distinct keys for stable ordering")
		}
	}
	return ord, nil
}

func setOrderParams(dest reflect.Value, ord orderParams) error {
	values := map[string]any{
		"PrimaryKey":    ord.PrimaryKey,
		"PrimaryDesc":   ord.PrimaryDesc,
		"SecondaryKey":  ord.SecondaryKey,
		"SecondaryDesc": ord.SecondaryDesc,
	}
	for name, v := range values {
		field := dest.FieldByName(name)
		if !field.IsValid() || !field.CanSet() {
			return fmt.Errorf("params struct %s has no settable field %q", dest.Type(), name)
		}
		value := reflect.ValueOf(v)
		if !value.Type().ConvertibleTo(field.Type()) {
			return fmt.Errorf("field %q must be %s-compatible, got %s", name, value.Type(), field.Type())
		}
		field.Set(value.Convert(field.Type()))
	}
	return nil
}
