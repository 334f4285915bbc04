// Package patch applies RFC 6902 JSON Patch documents to resource
// representations.
//
// Paths may name fields in either their canonical form ("/FirstName") or
// their wire form ("/first_name"); every segment is passed through
// naming.Underscore before the operation runs.
package patch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/dvtbooks/books-api/internal/errors"
	"github.com/dvtbooks/books-api/internal/naming"
)

// ContentType is the media type of a JSON Patch document.
const ContentType = "application/json-patch+json"

// documentField is the key under which document-level problems are reported.
const documentField = "patch"

// Op is one JSON Patch operation.
//
// See https://jsonpatch.com/ for details on JSON Patch operations.
type Op struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	From  string          `json:"from,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Document is a decoded patch with paths already in wire form.
type Document []Op

// Decode parses body as a JSON Patch document. A malformed document is
// reported as a validation error.
func Decode(body []byte) (Document, error) {
	var ops []Op
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ops); err != nil {
		return nil, invalid(documentField, "The patch document is malformed: %v", err)
	}

	for i := range ops {
		ops[i].Path = translate(ops[i].Path)
		ops[i].From = translate(ops[i].From)
	}

	// Let the library check operation shapes once, up front.
	raw, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}
	if _, err := jsonpatch.DecodePatch(raw); err != nil {
		return nil, invalid(documentField, "The patch document is malformed: %v", err)
	}
	return Document(ops), nil
}

// Apply patches target in place. target must be a pointer to a struct.
// Operations on unknown fields, failing operations and values of the wrong
// type all come back as one validation error.
func (d Document) Apply(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("patch target must be a pointer to a struct, got %T", target)
	}

	fields := naming.Fields(target)
	var fe errors.FieldErrors
	for _, op := range d {
		for _, p := range []string{op.Path, op.From} {
			if p == "" {
				continue
			}
			if root := rootField(p); root != "" {
				if _, ok := fields[root]; !ok {
					fe.Addf(root, "The field %s does not exist.", root)
				}
			}
		}
	}
	if err := fe.Err(); err != nil {
		return err
	}

	doc, err := json.Marshal(target)
	if err != nil {
		return fmt.Errorf("encode patch target: %w", err)
	}
	// Absent optional fields must still be addressable by "replace".
	doc, err = withAllFields(doc, fields)
	if err != nil {
		return err
	}

	for _, op := range d {
		raw, err := json.Marshal([]Op{op})
		if err != nil {
			return fmt.Errorf("encode patch operation: %w", err)
		}
		p, err := jsonpatch.DecodePatch(raw)
		if err != nil {
			fe.Addf(fieldOf(op), "The %s operation is malformed.", op.Op)
			continue
		}
		next, err := p.Apply(doc)
		if err != nil {
			fe.Addf(fieldOf(op), "The %s operation on %s could not be applied.", op.Op, op.Path)
			continue
		}
		doc = next
	}
	if err := fe.Err(); err != nil {
		return err
	}

	fresh := reflect.New(rv.Elem().Type())
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()
	if err := dec.Decode(fresh.Interface()); err != nil {
		field := documentField
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			field = typeErr.Field
		}
		return invalid(field, "The field %s has the wrong type.", field)
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}

// withAllFields adds a JSON null for every wire field missing from doc.
func withAllFields(doc []byte, fields map[string]string) ([]byte, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(doc, &obj); err != nil {
		return nil, fmt.Errorf("decode patch target: %w", err)
	}
	for name := range fields {
		if _, ok := obj[name]; !ok {
			obj[name] = json.RawMessage("null")
		}
	}
	return json.Marshal(obj)
}

// translate rewrites every field segment of a JSON pointer to wire form.
// Array indexes and the "-" append marker are left alone.
func translate(pointer string) string {
	if pointer == "" || pointer == "/" {
		return pointer
	}
	segs := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	for i, s := range segs {
		if s == "-" {
			continue
		}
		if _, err := strconv.Atoi(s); err == nil {
			continue
		}
		s = strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
		s = naming.Underscore(s)
		segs[i] = strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
	}
	return "/" + strings.Join(segs, "/")
}

// rootField returns the first segment of a translated pointer.
func rootField(pointer string) string {
	p := strings.TrimPrefix(pointer, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}

func fieldOf(op Op) string {
	if root := rootField(op.Path); root != "" {
		return root
	}
	return documentField
}

func invalid(field, format string, args ...any) error {
	var fe errors.FieldErrors
	fe.Addf(field, format, args...)
	return fe.Err()
}
