package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexString is a nullable string field that tolerates numeric and boolean
// source values. The zero value means "absent".
type FlexString struct {
	Value string
	Valid bool
}

// String returns the value, or "" when absent.
func (f FlexString) String() string { return f.Value }

// Or returns the value, falling back to def when absent or empty.
func (f FlexString) Or(def string) string {
	if f.Valid && f.Value != "" {
		return f.Value
	}
	return def
}

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil // malformed cell degrades to absence
	}
	switch t := v.(type) {
	case string:
		*f = FlexString{Value: t, Valid: true}
	case float64:
		*f = FlexString{Value: formatNumber(t), Valid: true}
	case bool:
		*f = FlexString{Value: strconv.FormatBool(t), Valid: true}
	}
	return nil
}

// Scan implements sql.Scanner for the direct-Postgres source.
func (f *FlexString) Scan(src any) error {
	switch t := src.(type) {
	case nil:
		*f = FlexString{}
	case string:
		*f = FlexString{Value: t, Valid: true}
	case []byte:
		*f = FlexString{Value: string(t), Valid: true}
	case int64:
		*f = FlexString{Value: strconv.FormatInt(t, 10), Valid: true}
	case float64:
		*f = FlexString{Value: formatNumber(t), Valid: true}
	case bool:
		*f = FlexString{Value: strconv.FormatBool(t), Valid: true}
	default:
		*f = FlexString{Value: fmt.Sprint(t), Valid: true}
	}
	return nil
}

// FlexInt is a nullable integer field that tolerates numeric strings.
// The zero value means "absent".
type FlexInt struct {
	Value int
	Valid bool
}

// Or returns the value, falling back to def when absent.
func (f FlexInt) Or(def int) int {
	if f.Valid {
		return f.Value
	}
	return def
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		*f = FlexInt{Value: int(t), Valid: true}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			*f = FlexInt{Value: n, Valid: true}
		}
	case bool:
		n := 0
		if t {
			n = 1
		}
		*f = FlexInt{Value: n, Valid: true}
	}
	return nil
}

func (f *FlexInt) Scan(src any) error {
	switch t := src.(type) {
	case nil:
		*f = FlexInt{}
	case int64:
		*f = FlexInt{Value: int(t), Valid: true}
	case float64:
		*f = FlexInt{Value: int(t), Valid: true}
	case []byte:
		if n, err := strconv.Atoi(strings.TrimSpace(string(t))); err == nil {
			*f = FlexInt{Value: n, Valid: true}
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			*f = FlexInt{Value: n, Valid: true}
		}
	}
	return nil
}

// Flex keeps a loosely-typed scalar exactly as decoded (string, float64,
// bool, nested slice/map, or nil). Normalizers in the feed package decide
// what to make of it.
type Flex struct {
	raw any
}

// NewFlex wraps a raw value; used by tests and the Postgres source.
func NewFlex(v any) Flex { return Flex{raw: v} }

// Raw returns the decoded value, nil when absent.
func (f Flex) Raw() any { return f.raw }

// StringOr returns the trimmed string form of the value when it is a
// string, otherwise def.
func (f Flex) StringOr(def string) string {
	if s, ok := f.raw.(string); ok {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return def
}

func (f *Flex) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	f.raw = v
	return nil
}

func (f *Flex) Scan(src any) error {
	switch t := src.(type) {
	case []byte:
		// jsonb column or plain text
		trimmed := bytes.TrimSpace(t)
		if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[' || trimmed[0] == '"') {
			var v any
			if err := json.Unmarshal(trimmed, &v); err == nil {
				f.raw = v
				return nil
			}
		}
		f.raw = string(t)
	default:
		f.raw = src
	}
	return nil
}

// PhotoSet is the photos_json column: either a JSON object (url per key,
// document order preserved) or a JSON array of urls.
type PhotoSet struct {
	urls []string
}

// NewPhotoSet builds a set from urls in order; used by tests.
func NewPhotoSet(urls ...string) PhotoSet { return PhotoSet{urls: urls} }

// URLs returns the photo urls in source document order.
func (p PhotoSet) URLs() []string { return p.urls }

func (p *PhotoSet) UnmarshalJSON(data []byte) error {
	p.urls = nil
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}
	switch trimmed[0] {
	case '[':
		var arr []any
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return nil
		}
		for _, v := range arr {
			if s, ok := v.(string); ok && s != "" {
				p.urls = append(p.urls, s)
			}
		}
	case '{':
		// A map would lose the source ordering, so walk the token stream.
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil { // consume '{'
			return nil
		}
		for dec.More() {
			if _, err := dec.Token(); err != nil { // key
				return nil
			}
			val, err := dec.Token()
			if err != nil {
				return nil
			}
			if d, ok := val.(json.Delim); ok {
				// Non-scalar value: consume it whole so the walk stays
				// aligned on key/value pairs.
				if err := skipValue(dec, d); err != nil {
					return nil
				}
				continue
			}
			if s, ok := val.(string); ok && s != "" {
				p.urls = append(p.urls, s)
			}
		}
	}
	return nil
}

// skipValue consumes the rest of a compound value whose opening delim
// was already read.
func skipValue(dec *json.Decoder, open json.Delim) error {
	if open != '{' && open != '[' {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch tok {
		case json.Delim('{'), json.Delim('['):
			depth++
		case json.Delim('}'), json.Delim(']'):
			depth--
		}
	}
	return nil
}

func (p *PhotoSet) Scan(src any) error {
	switch t := src.(type) {
	case []byte:
		return p.UnmarshalJSON(t)
	case string:
		return p.UnmarshalJSON([]byte(t))
	}
	p.urls = nil
	return nil
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
