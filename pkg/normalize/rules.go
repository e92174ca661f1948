// Package normalize converts raw Overpass elements into listing records.
//
// Every category normalizer is a pure function of its input elements and
// Options. Category labels come from ordered rule tables evaluated with
// Resolve: the first matching rule wins, so the order of a table is part of
// its meaning.
package normalize

import (
	"strconv"
	"strings"

	"github.com/NERVsystems/osmingest/pkg/osm"
)

// Predicate inspects the tags of an element
type Predicate func(e osm.Element) bool

// Rule assigns Label when Match holds
type Rule[L comparable] struct {
	Label L
	Match Predicate
}

// Rules is an ordered rule table with a fallback label
type Rules[L comparable] struct {
	Default L
	Rules   []Rule[L]
}

// Resolve returns the label of the first matching rule, or the default
func (r Rules[L]) Resolve(e osm.Element) L {
	for _, rule := range r.Rules {
		if rule.Match(e) {
			return rule.Label
		}
	}
	return r.Default
}

// Labels lists the distinct labels the table can produce, default last
func (r Rules[L]) Labels() []L {
	seen := make(map[L]bool, len(r.Rules)+1)
	var out []L
	for _, rule := range r.Rules {
		if !seen[rule.Label] {
			seen[rule.Label] = true
			out = append(out, rule.Label)
		}
	}
	if !seen[r.Default] {
		out = append(out, r.Default)
	}
	return out
}

// HasTag matches when key is present with a non-empty value
func HasTag(key string) Predicate {
	return func(e osm.Element) bool {
		return strings.TrimSpace(e.Tag(key)) != ""
	}
}

// TagEquals matches a tag value, ignoring case
func TagEquals(key, value string) Predicate {
	return func(e osm.Element) bool {
		return strings.EqualFold(strings.TrimSpace(e.Tag(key)), value)
	}
}

// TagIn matches when the tag equals any of values, ignoring case
func TagIn(key string, values ...string) Predicate {
	return func(e osm.Element) bool {
		v := strings.TrimSpace(e.Tag(key))
		for _, want := range values {
			if strings.EqualFold(v, want) {
				return true
			}
		}
		return false
	}
}

// NameContains matches when the name holds any of the substrings, ignoring case
func NameContains(substrings ...string) Predicate {
	return func(e osm.Element) bool {
		name := strings.ToLower(e.Tag("name"))
		if name == "" {
			return false
		}
		for _, s := range substrings {
			if strings.Contains(name, strings.ToLower(s)) {
				return true
			}
		}
		return false
	}
}

// StarsAtLeast matches a parsed stars tag of at least n
func StarsAtLeast(n int) Predicate {
	return func(e osm.Element) bool {
		stars, ok := parseStars(e.Tag("stars"))
		return ok && stars >= n
	}
}

// StarsBetween matches a parsed stars tag within [lo, hi]
func StarsBetween(lo, hi int) Predicate {
	return func(e osm.Element) bool {
		stars, ok := parseStars(e.Tag("stars"))
		return ok && stars >= lo && stars <= hi
	}
}

// Any matches when at least one predicate does
func Any(preds ...Predicate) Predicate {
	return func(e osm.Element) bool {
		for _, p := range preds {
			if p(e) {
				return true
			}
		}
		return false
	}
}

// All matches when every predicate does
func All(preds ...Predicate) Predicate {
	return func(e osm.Element) bool {
		for _, p := range preds {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

// parseStars reads the leading integer of a stars tag ("4", "4S", "3.5").
// Values outside 1..7 are treated as missing.
func parseStars(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil || n < 1 || n > 7 {
		return 0, false
	}
	return n, true
}

// parsePositiveInt reads a positive integer tag such as capacity
func parsePositiveInt(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
