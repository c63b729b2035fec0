// Package feed turns loosely-structured listing rows into the
// schema-valid XML document the marketplace imports. Everything in the
// package is a pure function of its input: no I/O, no shared mutable
// state, byte-identical output for identical rows.
package feed

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// digitRunRe captures the first run of digits, allowing embedded
	// regular and non-breaking spaces ("1 200 000").
	digitRunRe = regexp.MustCompile(`\d[\d \x{00A0}]*`)
	nonDigitRe = regexp.MustCompile(`[^\d]`)
	phoneSepRe = regexp.MustCompile(`[;,/]`)
	itemSepRe  = regexp.MustCompile(`[,;\n]`)
)

// NormalizePrice strips a price string down to its digits.
// "1 200 000 ₽" → "1200000"; anything without a digit run → "0".
func NormalizePrice(s string) string {
	m := digitRunRe.FindString(s)
	if m == "" {
		return "0"
	}
	return nonDigitRe.ReplaceAllString(m, "")
}

// NormalizeDecimal finds a labeled numeric value via re (first capture
// group) and returns it with the decimal comma replaced by a dot, or "0"
// when the label is absent.
func NormalizeDecimal(re *regexp.Regexp, s string) string {
	if s == "" {
		return "0"
	}
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "0"
	}
	return strings.ReplaceAll(m[1], ",", ".")
}

// NormalizePhone canonicalizes a raw phone into +<digits> form:
//
//	"8 (999) 123-45-67" → "+79991234567"
//	"9991234567"        → "+79991234567"
//	"+1234567890"       → "+1234567890"
//
// The second return is false when the input holds no usable number.
// Re-normalizing an already-normalized phone is a no-op.
func NormalizePhone(raw string) (string, bool) {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if digits == "" {
		return "", false
	}
	switch {
	case len(digits) == 11 && digits[0] == '8':
		digits = "7" + digits[1:]
	case len(digits) == 10 && digits[0] == '9':
		digits = "7" + digits
	}
	if len(digits) == 11 && digits[0] == '7' {
		return "+" + digits, true
	}
	if strings.HasPrefix(strings.TrimSpace(raw), "+") {
		return "+" + digits, true
	}
	return "", false
}

// SplitPhoneParts splits a normalized phone into country code and a
// ten-digit local number, defaulting the country code to +7.
func SplitPhoneParts(phone string) (countryCode, number string) {
	digits := nonDigitRe.ReplaceAllString(phone, "")
	if len(digits) <= 10 {
		for len(digits) < 10 {
			digits = "0" + digits
		}
		return "+7", digits
	}
	cc := digits[:len(digits)-10]
	if cc == "" {
		cc = "7"
	}
	return "+" + cc, digits[len(digits)-10:]
}

// CollectPhones gathers phone numbers from a mix of sources: single
// strings, delimiter-separated strings, slices, or maps (values only).
// Each candidate is normalized; failures are skipped, duplicates dropped,
// first-seen order kept.
func CollectPhones(sources ...any) []string {
	var out []string
	seen := make(map[string]struct{})

	add := func(raw string) {
		phone, ok := NormalizePhone(raw)
		if !ok {
			return
		}
		if _, dup := seen[phone]; dup {
			return
		}
		seen[phone] = struct{}{}
		out = append(out, phone)
	}

	var walk func(src any)
	walk = func(src any) {
		switch v := src.(type) {
		case nil:
		case string:
			for _, part := range phoneSepRe.Split(v, -1) {
				if part = strings.TrimSpace(part); part != "" {
					add(part)
				}
			}
		case float64:
			// JSON numbers; a phone column sometimes holds one.
			add(strconv.FormatFloat(v, 'f', -1, 64))
		case int64:
			add(strconv.FormatInt(v, 10))
		case []string:
			for _, s := range v {
				walk(s)
			}
		case []any:
			for _, e := range v {
				walk(e)
			}
		case map[string]any:
			for _, key := range sortedKeys(v) {
				walk(v[key])
			}
		case map[string]string:
			m := make(map[string]any, len(v))
			for k, s := range v {
				m[k] = s
			}
			walk(m)
		}
	}

	for _, src := range sources {
		walk(src)
	}
	return out
}

// CoerceBool maps heterogeneous truthy representations onto a tri-state
// boolean: nil means "unknown" and the caller decides the fallback.
func CoerceBool(v any) *bool {
	switch t := v.(type) {
	case bool:
		return boolPtr(t)
	case float64:
		return boolPtr(t != 0)
	case int:
		return boolPtr(t != 0)
	case int64:
		return boolPtr(t != 0)
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "y", "да":
			return boolPtr(true)
		case "false", "0", "no", "n", "нет":
			return boolPtr(false)
		}
	}
	return nil
}

// SplitItems splits free text on commas, semicolons and newlines into
// trimmed non-empty items, order preserved.
func SplitItems(text string) []string {
	var out []string
	for _, part := range itemSepRe.Split(text, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// map iteration order is random; sort so collected phone order is
	// stable across invocations
	sort.Strings(keys)
	return keys
}
