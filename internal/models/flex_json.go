package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// fieldMaps caches JSON tag -> struct field index mappings per type
var fieldMaps sync.Map

func fieldMapFor(t reflect.Type) map[string]int {
	if cached, ok := fieldMaps.Load(t); ok {
		return cached.(map[string]int)
	}
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		m[strings.Split(tag, ",")[0]] = i
	}
	fieldMaps.Store(t, m)
	return m
}

// UnmarshalJSON accepts booleans and strings in either native or quoted form.
// Models sometimes quote booleans ("true") or emit numbers where names belong.
// A non-object entry is kept and marked Malformed rather than failing the batch.
func (p *ExtractedPick) UnmarshalJSON(data []byte) error {
	type alias ExtractedPick
	a := (*alias)(p)
	if !isJSONObject(data) {
		*p = ExtractedPick{Malformed: true}
		return nil
	}
	if err := json.Unmarshal(data, a); err == nil {
		return nil
	}
	return flexUnmarshal(data, reflect.ValueOf(a).Elem())
}

// UnmarshalJSON applies the same tolerance as ExtractedPick.
func (g *ExtractedAnalyst) UnmarshalJSON(data []byte) error {
	type alias ExtractedAnalyst
	a := (*alias)(g)
	if !isJSONObject(data) {
		*g = ExtractedAnalyst{Malformed: true}
		return nil
	}
	if err := json.Unmarshal(data, a); err == nil {
		return nil
	}
	return flexUnmarshal(data, reflect.ValueOf(a).Elem())
}

// UnmarshalJSON tolerates wrongly-typed top-level scalars.
func (e *Extraction) UnmarshalJSON(data []byte) error {
	type alias Extraction
	a := (*alias)(e)
	if err := json.Unmarshal(data, a); err == nil {
		return nil
	}
	return flexUnmarshal(data, reflect.ValueOf(a).Elem())
}

func isJSONObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// flexUnmarshal decodes field-by-field, coercing mismatched scalars and
// skipping values that cannot be coerced.
func flexUnmarshal(data []byte, v reflect.Value) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	fieldMap := fieldMapFor(v.Type())
	for key, rawVal := range raw {
		idx, ok := fieldMap[key]
		if !ok {
			continue
		}
		fv := v.Field(idx)
		if !fv.CanSet() {
			continue
		}

		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
			fv.Set(ptr.Elem())
			continue
		}

		trimmed := bytes.TrimSpace(rawVal)
		if len(trimmed) > 1 && trimmed[0] == '"' {
			var s string
			if err := json.Unmarshal(trimmed, &s); err != nil || s == "" {
				continue
			}
			coerceStringToField(fv, s)
			continue
		}

		// Number or bool where a string belongs
		if fv.Kind() == reflect.String && len(trimmed) > 0 && trimmed[0] != '{' && trimmed[0] != '[' {
			fv.SetString(string(trimmed))
		}
	}

	return nil
}

// coerceStringToField converts a string value to the field's native type.
func coerceStringToField(fv reflect.Value, s string) {
	switch fv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			fv.SetInt(int64(n))
		}
	case reflect.Bool:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "y":
			fv.SetBool(true)
		case "no", "n":
			fv.SetBool(false)
		default:
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				fv.SetBool(b)
			}
		}
	case reflect.String:
		fv.SetString(s)
	}
}
