package wgapi

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// PageParam is the query parameter carrying the page number
const PageParam = "page_no"

// Params holds caller supplied query parameters before normalization
type Params map[string]any

// Normalize converts every parameter value to its wire form. Sequences are
// comma-joined and times are rendered as ISO-8601, so the same logical
// parameters always produce the same strings.
func Normalize(params Params) map[string]string {
	out := make(map[string]string, len(params))
	for name, value := range params {
		out[name] = FormatValue(value)
	}
	return out
}

// FormatValue renders a single parameter value in wire form
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return FormatTime(v)
	case *time.Time:
		if v == nil {
			return ""
		}
		return FormatTime(*v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		return strings.Join(v, ",")
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = FormatValue(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	}
	return fmt.Sprint(value)
}

// FormatTime renders t as ISO-8601 with a numeric UTC offset. Fractional
// seconds are written with microsecond precision only when present.
func FormatTime(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		return t.Format("2006-01-02T15:04:05.000000-07:00")
	}
	return t.Format("2006-01-02T15:04:05-07:00")
}

// CacheKey builds the canonical cache key for a request. url.Values.Encode
// sorts by parameter name, so insertion order never matters.
func CacheKey(endpoint string, params map[string]string) string {
	return endpoint + "?" + Query(params).Encode()
}

// Query converts normalized parameters to url.Values
func Query(params map[string]string) url.Values {
	q := make(url.Values, len(params))
	for name, value := range params {
		q.Set(name, value)
	}
	return q
}
