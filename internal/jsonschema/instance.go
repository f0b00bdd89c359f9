package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"

	"gopkg.in/yaml.v2"
)

var (
	// ErrUnsupportedValue is returned when an instance holds a value with no JSON
	// representation.
	ErrUnsupportedValue = errors.New("unsupported instance value")
	// ErrMalformedDocument is returned when instance bytes cannot be decoded.
	ErrMalformedDocument = errors.New("malformed instance document")
)

// DecodeJSON decodes one JSON document into the normalized instance model.
// Numbers are kept as json.Number so integers keep their precision.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after the document", ErrMalformedDocument)
	}
	return v, nil
}

// DecodeYAML decodes one YAML document into the normalized instance model.
func DecodeYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return Normalize(v)
}

// Normalize returns a copy of v in the instance model used by validators:
// map[string]any, []any, string, json.Number, bool and nil.
func Normalize(v any) (any, error) {
	return normalize(v, "")
}

func normalize(v any, at string) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool, string:
		return t, nil
	case json.Number:
		if _, err := strconv.ParseFloat(string(t), 64); err != nil {
			return nil, fmt.Errorf("%w: invalid number %q at %q", ErrUnsupportedValue, t, at)
		}
		return t, nil
	case float64:
		return floatNumber(t, at)
	case float32:
		return floatNumber(float64(t), at)
	case int:
		return json.Number(strconv.FormatInt(int64(t), 10)), nil
	case int8, int16, int32, int64:
		return json.Number(strconv.FormatInt(reflect.ValueOf(t).Int(), 10)), nil
	case uint, uint8, uint16, uint32, uint64:
		return json.Number(strconv.FormatUint(reflect.ValueOf(t).Uint(), 10)), nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			n, err := normalize(e, at+"."+k)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			key := fmt.Sprint(k)
			n, err := normalize(e, at+"."+key)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			n, err := normalize(e, at+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}
	return normalizeReflect(reflect.ValueOf(v), at)
}

func floatNumber(f float64, at string) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %v at %q", ErrUnsupportedValue, f, at)
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

// normalizeReflect handles typed slices and string-keyed maps such as []string or
// map[string]int.
func normalizeReflect(rv reflect.Value, at string) (any, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			n, err := normalize(rv.Index(i).Interface(), at+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			n, err := normalize(iter.Value().Interface(), at+"."+key)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T at %q", ErrUnsupportedValue, rv.Interface(), at)
}
