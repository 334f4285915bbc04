// Package naming translates canonical Go field names to their wire form.
package naming

import (
	"reflect"
	"strings"
	"unicode"
)

// Underscore converts a canonical field name to lower-case words joined by
// underscores: "FirstName" becomes "first_name", "ISBN13" becomes "isbn13".
// An underscore is inserted before every upper-case letter that starts a
// capitalized word (upper followed by lower) unless it opens the name.
func Underscore(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) && runes[i-1] != '_' {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Fields returns the wire names of the exported fields of the struct type of v,
// keyed by wire name with the Go field name as value.
func Fields(v any) map[string]string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := make(map[string]string, t.NumField())
	if t.Kind() != reflect.Struct {
		return out
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("json") == "-" {
			continue
		}
		out[Underscore(f.Name)] = f.Name
	}
	return out
}

// JSONName returns the name a struct field serializes under, without options.
func JSONName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	if i := strings.IndexByte(tag, ','); i >= 0 {
		tag = tag[:i]
	}
	if tag == "" {
		return f.Name
	}
	return tag
}
