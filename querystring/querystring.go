// Package querystring serializes parameter maps into URL query strings.
//
// Scalar parameters are rendered through net/url encoding; array-valued
// parameters are expanded into repeated `&key=value` pairs appended after
// the scalar block, in the iteration order of the input.
package querystring

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Params is an ordered parameter map. Order matters for array-valued
// parameters, which are rendered in input order.
type Params []Param

// Param is a single named parameter. Value may be a string, a number, a
// bool, or a slice of any of those.
type Param struct {
	Key   string
	Value any
}

// Set appends a parameter and returns the updated Params for chaining.
func (p Params) Set(key string, value any) Params {
	return append(p, Param{Key: key, Value: value})
}

// Encode produces a query string (without leading '?') from params.
//
// Falsy scalars (empty string, 0, false, nil) are omitted entirely.
// Array values of length n emit exactly n `&key=value` fragments after the
// scalar block, keeping the input order. Encode is total: any value it does
// not recognise is stringified via fmt and treated as a scalar.
func Encode(params Params) string {
	scalars := url.Values{}
	var scalarOrder []string
	var arrays strings.Builder

	for _, p := range params {
		switch v := p.Value.(type) {
		case nil:
			continue
		case []string:
			for _, item := range v {
				arrays.WriteString("&" + url.QueryEscape(p.Key) + "=" + url.QueryEscape(item))
			}
		case []any:
			for _, item := range v {
				arrays.WriteString("&" + url.QueryEscape(p.Key) + "=" + url.QueryEscape(stringify(item)))
			}
		default:
			s, ok := scalarString(v)
			if !ok {
				continue
			}
			if _, seen := scalars[p.Key]; !seen {
				scalarOrder = append(scalarOrder, p.Key)
			}
			scalars.Set(p.Key, s)
		}
	}

	var out strings.Builder
	for i, key := range scalarOrder {
		if i > 0 {
			out.WriteString("&")
		}
		out.WriteString(url.QueryEscape(key) + "=" + url.QueryEscape(scalars.Get(key)))
	}
	out.WriteString(arrays.String())
	return out.String()
}

// scalarString renders a scalar value, reporting false for falsy values
// that must be omitted from the output.
func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, s != ""
	case bool:
		return "true", s
	case int:
		return strconv.Itoa(s), s != 0
	case int64:
		return strconv.FormatInt(s, 10), s != 0
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), s != 0
	default:
		str := stringify(v)
		return str, str != ""
	}
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
