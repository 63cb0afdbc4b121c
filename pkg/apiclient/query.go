package apiclient

import (
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strings"
)

// Query is an ordered multi-value map of query parameters.
// Keys are encoded in the order they were first added.
// The zero value is ready to use.
type Query struct {
	values map[string][]string
	keys   []string
}

// NewQuery returns an empty query.
func NewQuery() *Query {
	return &Query{}
}

// QueryFromMap builds a query from a map. Keys are added in sorted order
// so the encoding is stable.
func QueryFromMap(m map[string]any) *Query {
	q := NewQuery()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		q.Add(k, m[k])
	}
	return q
}

// QueryFromStruct builds a query from the `query:"name[,omitempty]"` tags of a
// struct (or pointer to struct), in field order. Nil pointers are skipped.
// Fields without a tag or tagged "-" are ignored.
func QueryFromStruct(v any) *Query {
	q := NewQuery()
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return q
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return q
	}

	rt := rv.Type()
	for i := range rt.NumField() {
		field := rt.Field(i)
		tag := field.Tag.Get("query")
		if tag == "" || tag == "-" || !field.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := rv.Field(i)
		if opts == "omitempty" && fv.IsZero() {
			continue
		}
		q.Add(name, fv.Interface())
	}
	return q
}

// Add appends value under key. Nil values and nil pointers are dropped.
// Slices and arrays expand into repeated keys, skipping nil items.
// On a nil query Add allocates and returns a new one.
func (q *Query) Add(key string, value any) *Query {
	if q == nil {
		q = NewQuery()
	}
	rv, ok := deref(value)
	if !ok {
		return q
	}

	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		for i := range rv.Len() {
			item, ok := deref(rv.Index(i).Interface())
			if !ok {
				continue
			}
			q.append(key, format(item))
		}
		return q
	}

	q.append(key, format(rv))
	return q
}

// Set replaces all values of key. Like Add, it allocates on a nil query.
func (q *Query) Set(key string, value any) *Query {
	q.Del(key)
	return q.Add(key, value)
}

// Del removes key.
func (q *Query) Del(key string) {
	if q == nil {
		return
	}
	if _, ok := q.values[key]; !ok {
		return
	}
	delete(q.values, key)
	q.keys = slices.DeleteFunc(q.keys, func(k string) bool { return k == key })
}

// Get returns the first value of key.
func (q *Query) Get(key string) string {
	if q == nil || len(q.values[key]) == 0 {
		return ""
	}
	return q.values[key][0]
}

// Values returns all values of key.
func (q *Query) Values(key string) []string {
	if q == nil {
		return nil
	}
	return slices.Clone(q.values[key])
}

// Len returns the number of distinct keys.
func (q *Query) Len() int {
	if q == nil {
		return 0
	}
	return len(q.keys)
}

// Clone returns a deep copy.
func (q *Query) Clone() *Query {
	out := NewQuery()
	if q == nil {
		return out
	}
	out.keys = slices.Clone(q.keys)
	out.values = make(map[string][]string, len(q.values))
	for k, v := range q.values {
		out.values[k] = slices.Clone(v)
	}
	return out
}

// Encode returns the URL-encoded form in insertion order.
func (q *Query) Encode() string {
	if q.Len() == 0 {
		return ""
	}
	var b strings.Builder
	for _, k := range q.keys {
		ek := url.QueryEscape(k)
		for _, v := range q.values[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(ek)
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

func (q *Query) append(key, value string) {
	if q.values == nil {
		q.values = make(map[string][]string)
	}
	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.values[key] = append(q.values[key], value)
}

// deref unwraps pointers and interfaces. It reports false for nil.
func deref(v any) (reflect.Value, bool) {
	if v == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map) && rv.IsNil() {
		return reflect.Value{}, false
	}
	return rv, true
}

func format(rv reflect.Value) string {
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return string(rv.Bytes())
	}
	if s, ok := rv.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(rv.Interface())
}
