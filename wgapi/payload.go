package wgapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind is the shape of a decoded payload
type Kind int

const (
	// KindNull is an absent or null payload
	KindNull Kind = iota
	// KindObject is a JSON object
	KindObject
	// KindArray is a JSON array
	KindArray
	// KindScalar is a string, number or bool
	KindScalar
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindScalar:
		return "scalar"
	default:
		return "null"
	}
}

// Item is a key/value pair of an object payload
type Item struct {
	Key   string
	Value any
}

// Payload is the data of one fetched page: either an object or an array,
// depending on the endpoint.
type Payload struct {
	value any
}

// NewPayload wraps an already decoded value. Typed maps and slices are
// accepted and converted to their generic form.
func NewPayload(v any) Payload {
	return Payload{value: generic(v)}
}

// DecodePayload decodes raw JSON into a Payload. Numbers are kept as
// json.Number so large account IDs survive unchanged.
func DecodePayload(raw json.RawMessage) (Payload, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Payload{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Payload{}, fmt.Errorf("failed to decode payload: %w", err)
	}
	return Payload{value: v}, nil
}

// Kind reports the payload shape
func (p Payload) Kind() Kind {
	switch p.value.(type) {
	case nil:
		return KindNull
	case map[string]any:
		return KindObject
	case []any:
		return KindArray
	default:
		return KindScalar
	}
}

// Value returns the underlying decoded value
func (p Payload) Value() any {
	return p.value
}

// AsMapping returns the payload as an object
func (p Payload) AsMapping() (map[string]any, error) {
	m, ok := p.value.(map[string]any)
	if !ok {
		return nil, &TypeMismatchError{Op: "mapping access", Want: KindObject, Got: p.Kind()}
	}
	return m, nil
}

// AsSequence returns the payload as an array
func (p Payload) AsSequence() ([]any, error) {
	s, ok := p.value.([]any)
	if !ok {
		return nil, &TypeMismatchError{Op: "sequence access", Want: KindArray, Got: p.Kind()}
	}
	return s, nil
}

// Len returns the number of entries of an object or array payload
func (p Payload) Len() (int, error) {
	switch v := p.value.(type) {
	case nil:
		return 0, nil
	case map[string]any:
		return len(v), nil
	case []any:
		return len(v), nil
	default:
		return 0, &TypeMismatchError{Op: "len", Want: KindObject, Got: p.Kind()}
	}
}

// Keys returns the sorted keys of an object payload
func (p Payload) Keys() ([]string, error) {
	m, err := p.AsMapping()
	if err != nil {
		return nil, err
	}
	return sortedKeys(m), nil
}

// Items returns the key/value pairs of an object payload ordered by key
func (p Payload) Items() ([]Item, error) {
	m, err := p.AsMapping()
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(m))
	for _, k := range sortedKeys(m) {
		items = append(items, Item{Key: k, Value: m[k]})
	}
	return items, nil
}

// Values returns the values of an object payload ordered by key
func (p Payload) Values() ([]any, error) {
	m, err := p.AsMapping()
	if err != nil {
		return nil, err
	}
	values := make([]any, 0, len(m))
	for _, k := range sortedKeys(m) {
		values = append(values, m[k])
	}
	return values, nil
}

// Elements returns what iterating the payload yields: the sorted keys of an
// object or the items of an array.
func (p Payload) Elements() ([]any, error) {
	switch v := p.value.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case map[string]any:
		keys := sortedKeys(v)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = k
		}
		return out, nil
	default:
		return nil, &TypeMismatchError{Op: "iterate", Want: KindArray, Got: p.Kind()}
	}
}

// Lookup returns the entry stored under key. The API keys numeric IDs as
// strings in some endpoints and not in others, so a key that is absent as
// given is retried in its alternate representation (digit string <-> int).
func (p Payload) Lookup(key any) (any, error) {
	switch v := p.value.(type) {
	case map[string]any:
		if s, ok := mappingKey(key); ok {
			if val, found := v[s]; found {
				return val, nil
			}
			if alt, ok := alternateKey(key); ok {
				if val, found := v[alt]; found {
					return val, nil
				}
			}
		}
	case []any:
		if i, ok := sequenceIndex(key); ok && i >= 0 && i < len(v) {
			return v[i], nil
		}
	default:
		return nil, &TypeMismatchError{Op: "lookup", Want: KindObject, Got: p.Kind()}
	}
	return nil, &KeyNotFoundError{Key: key}
}

// String renders the payload as JSON
func (p Payload) String() string {
	b, err := json.Marshal(p.value)
	if err != nil {
		return fmt.Sprint(p.value)
	}
	return string(b)
}

func mappingKey(key any) (string, bool) {
	switch k := key.(type) {
	case string:
		return k, true
	case int:
		return strconv.Itoa(k), true
	case int64:
		return strconv.FormatInt(k, 10), true
	case json.Number:
		return k.String(), true
	}
	return "", false
}

// alternateKey returns the canonical decimal spelling of a digit-string key,
// e.g. "007" -> "7", matching a lookup by the integer 7.
func alternateKey(key any) (string, bool) {
	s, ok := key.(string)
	if !ok || !isDigits(s) {
		return "", false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return "", false
	}
	alt := strconv.FormatInt(n, 10)
	return alt, alt != s
}

func sequenceIndex(key any) (int, bool) {
	switch k := key.(type) {
	case int:
		return k, true
	case int64:
		return int(k), true
	case string:
		if !isDigits(k) {
			return 0, false
		}
		n, err := strconv.Atoi(k)
		return n, err == nil
	case json.Number:
		n, err := k.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// generic converts typed maps and slices into map[string]any / []any
func generic(v any) any {
	switch t := v.(type) {
	case nil, map[string]any, []any:
		return t
	case Payload:
		return t.value
	}
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return v
	}
	return out
}
