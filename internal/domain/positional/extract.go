package positional

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	DefaultMaxPositionLength = 3
	DefaultMaxDepth          = 64
)

// Rule recognises player-position records inside untyped match documents.
//
// A mapping node matches when its name field is a non-blank string, or an
// object carrying a non-blank full-name string, and the first truthy position
// field renders to at most MaxPositionLength characters. The length cap is the
// only thing separating position codes ("MID", "RB") from other short strings.
type Rule struct {
	NameKey           string
	FullNameKey       string
	PositionKeys      []string
	MaxPositionLength int
	MaxDepth          int
}

func DefaultRule() Rule {
	return Rule{
		NameKey:           "name",
		FullNameKey:       "fullName",
		PositionKeys:      []string{"positionShort", "position"},
		MaxPositionLength: DefaultMaxPositionLength,
		MaxDepth:          DefaultMaxDepth,
	}
}

func (r Rule) normalized() Rule {
	defaults := DefaultRule()
	if r.NameKey == "" {
		r.NameKey = defaults.NameKey
	}
	if r.FullNameKey == "" {
		r.FullNameKey = defaults.FullNameKey
	}
	if len(r.PositionKeys) == 0 {
		r.PositionKeys = defaults.PositionKeys
	}
	if r.MaxPositionLength <= 0 {
		r.MaxPositionLength = defaults.MaxPositionLength
	}
	if r.MaxDepth <= 0 {
		r.MaxDepth = defaults.MaxDepth
	}
	return r
}

// Match applies the rule to a single mapping node without descending.
func (r Rule) Match(node map[string]any) (Observation, bool) {
	r = r.normalized()

	name, ok := r.displayName(node[r.NameKey])
	if !ok {
		return Observation{}, false
	}
	position, ok := r.positionCode(node)
	if !ok {
		return Observation{}, false
	}
	return Observation{Name: name, Position: position}, true
}

func (r Rule) displayName(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, !isBlank(v)
	case map[string]any:
		full, ok := v[r.FullNameKey].(string)
		return full, ok && !isBlank(full)
	default:
		return "", false
	}
}

func (r Rule) positionCode(node map[string]any) (string, bool) {
	var raw any
	for _, key := range r.PositionKeys {
		if v, ok := node[key]; ok && truthy(v) {
			raw = v
			break
		}
	}
	if raw == nil {
		return "", false
	}

	code, ok := scalarString(raw)
	if !ok {
		return "", false
	}
	// Codes are stored as given; surrounding whitespace counts toward the limit.
	if isBlank(code) || utf8.RuneCountInString(code) > r.MaxPositionLength {
		return "", false
	}
	return code, true
}

// Extraction is the result of walking one document.
type Extraction struct {
	Observations []Observation
	// Visited counts mapping nodes inspected.
	Visited int
	// Truncated is set when some branch was deeper than MaxDepth.
	Truncated bool
}

// Extract walks doc depth-first and emits every matching node. Matching does not
// stop descent into the node's own children. Map keys are visited in sorted
// order so the output is deterministic.
func (r Rule) Extract(doc any) Extraction {
	r = r.normalized()
	out := Extraction{Observations: make([]Observation, 0, 32)}

	var walk func(any, int)
	walk = func(current any, depth int) {
		if current == nil {
			return
		}
		if depth > r.MaxDepth {
			out.Truncated = true
			return
		}

		switch typed := current.(type) {
		case []any:
			for _, child := range typed {
				walk(child, depth+1)
			}
		case map[string]any:
			out.Visited++
			if obs, ok := r.Match(typed); ok {
				out.Observations = append(out.Observations, obs)
			}
			for _, key := range sortedKeys(typed) {
				walk(typed[key], depth+1)
			}
		}
	}

	walk(doc, 0)
	return out
}

// Subtree follows mapping keys from doc; a missing step yields an empty mapping.
func Subtree(doc any, path ...string) any {
	current := doc
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return map[string]any{}
		}
		next, ok := m[key]
		if !ok || next == nil {
			return map[string]any{}
		}
		current = next
	}
	return current
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		return t != "" && t != "0"
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

// scalarString renders string and numeric position values; containers and
// booleans never qualify as position codes.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}
