package normalize

import (
	"strings"
	"time"
	"unicode"

	"github.com/tidwall/gjson"
)

// Record is one loosely typed object from the backend.
type Record struct {
	raw gjson.Result
}

// NewRecord wraps an already parsed value.
func NewRecord(raw gjson.Result) Record {
	return Record{raw: raw}
}

// Raw exposes the underlying value.
func (r Record) Raw() gjson.Result { return r.raw }

// IsObject reports whether the record wraps a JSON object.
func (r Record) IsObject() bool { return r.raw.IsObject() }

// Lookup returns the first non-null value among names. Each name is given in
// camelCase and is also tried as snake_case and PascalCase.
func (r Record) Lookup(names ...string) (gjson.Result, bool) {
	for _, name := range names {
		for _, key := range Variants(name) {
			v := r.raw.Get(key)
			if !IsNull(v) {
				return v, true
			}
		}
	}
	return gjson.Result{}, false
}

// Has reports whether any of names carries a non-null value.
func (r Record) Has(names ...string) bool {
	_, ok := r.Lookup(names...)
	return ok
}

func (r Record) String(names ...string) string {
	v, ok := r.Lookup(names...)
	if !ok {
		return ""
	}
	return v.String()
}

func (r Record) Bool(names ...string) bool {
	v, ok := r.Lookup(names...)
	if !ok {
		return false
	}
	return v.Bool()
}

func (r Record) Int(names ...string) int64 {
	v, ok := r.Lookup(names...)
	if !ok {
		return 0
	}
	return v.Int()
}

// Strings returns the array under names as strings; non-arrays give nil.
func (r Record) Strings(names ...string) []string {
	v, ok := r.Lookup(names...)
	if !ok || !v.IsArray() {
		return nil
	}
	items := v.Array()
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.String())
	}
	return out
}

// Get returns the nested object under names.
func (r Record) Get(names ...string) Record {
	v, _ := r.Lookup(names...)
	return Record{raw: v}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time parses RFC 3339 strings, zone-less timestamps (read as UTC) and unix
// milliseconds. Anything else is the zero time.
func (r Record) Time(names ...string) time.Time {
	v, ok := r.Lookup(names...)
	if !ok {
		return time.Time{}
	}
	if v.Type == gjson.Number {
		return time.UnixMilli(v.Int()).UTC()
	}
	s := strings.TrimSpace(v.String())
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Variants returns name in camelCase, snake_case and PascalCase, without
// duplicates.
func Variants(name string) []string {
	out := []string{name}
	add := func(s string) {
		for _, o := range out {
			if o == s {
				return
			}
		}
		out = append(out, s)
	}
	add(SnakeCase(name))
	add(PascalCase(name))
	return out
}

// SnakeCase converts a camelCase name to snake_case.
func SnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// PascalCase upper-cases the first letter.
func PascalCase(s string) string {
	if s == "" {
		return s
	}
	rs := []rune(s)
	rs[0] = unicode.ToUpper(rs[0])
	return string(rs)
}
