package positional

import (
	"reflect"
	"testing"

	sonic "github.com/bytedance/sonic"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var doc any
	if err := sonic.UnmarshalString(raw, &doc); err != nil {
		t.Fatalf("decode fixture document: %v", err)
	}
	return doc
}

func TestRule_Extract_RejectsLongNestedPosition(t *testing.T) {
	doc := decode(t, `{"name": "Bruno Fernandes", "positionShort": "MID", "nested": {"name":"Other","position":"ZZZZ"}}`)

	got := DefaultRule().Extract(doc)

	want := []Observation{{Name: "Bruno Fernandes", Position: "MID"}}
	if !reflect.DeepEqual(got.Observations, want) {
		t.Fatalf("unexpected observations: %+v", got.Observations)
	}
	if got.Visited != 2 {
		t.Fatalf("expected both mapping nodes visited, got %d", got.Visited)
	}
}

func TestRule_Extract_DescendsAfterMatch(t *testing.T) {
	doc := decode(t, `{
		"name": {"fullName": "Declan Rice", "firstName": "Declan"},
		"positionShort": "DM",
		"previous": [{"name": "Thomas Partey", "position": "CM"}]
	}`)

	got := DefaultRule().Extract(doc).Observations

	want := []Observation{
		{Name: "Declan Rice", Position: "DM"},
		{Name: "Thomas Partey", Position: "CM"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected observations: %+v", got)
	}
}

func TestRule_Extract_LineupShape(t *testing.T) {
	doc := decode(t, `{
		"content": {
			"lineup": {
				"homeTeam": {
					"name": "Arsenal",
					"starters": [
						{"id": 1, "name": "David Raya", "positionShort": "GK"},
						{"id": 2, "name": {"fullName": "William Saliba"}, "positionShort": "", "position": "CB"},
						{"id": 3, "name": "Bukayo Saka", "positionShort": "RW", "stats": {"name": "rating", "position": 7}}
					]
				},
				"awayTeam": {"name": "Chelsea", "position": "Away team"}
			}
		}
	}`)

	got := DefaultRule().Extract(Subtree(doc, "content", "lineup")).Observations

	want := map[Observation]int{
		{Name: "David Raya", Position: "GK"}:     1,
		{Name: "William Saliba", Position: "CB"}: 1,
		{Name: "Bukayo Saka", Position: "RW"}:    1,
		{Name: "rating", Position: "7"}:          1,
	}
	counts := make(map[Observation]int, len(got))
	for _, o := range got {
		counts[o]++
	}
	if !reflect.DeepEqual(counts, want) {
		t.Fatalf("unexpected observations: %+v", got)
	}
}

func TestRule_Match_MalformedNodes(t *testing.T) {
	rule := DefaultRule()
	cases := map[string]map[string]any{
		"missing name":         {"positionShort": "MID"},
		"missing position":     {"name": "Rodri"},
		"blank name":           {"name": "   ", "position": "DM"},
		"empty full name":      {"name": map[string]any{"fullName": ""}, "position": "DM"},
		"name object no full":  {"name": map[string]any{"first": "Rodri"}, "position": "DM"},
		"name object non-text": {"name": map[string]any{"fullName": 12.0}, "position": "DM"},
		"name is number":       {"name": 10.0, "position": "DM"},
		"zero position":        {"name": "Rodri", "position": 0.0},
		"container position":   {"name": "Rodri", "positionShort": []any{"D"}},
		"bool position":        {"name": "Rodri", "position": true},
		"too long position":    {"name": "Rodri", "position": "DMCM"},
		"blank position":       {"name": "Rodri", "position": "  "},
	}
	for name, node := range cases {
		if obs, ok := rule.Match(node); ok {
			t.Fatalf("%s: expected no match, got %+v", name, obs)
		}
	}
}

func TestRule_Match_PositionFallbackAndNumbers(t *testing.T) {
	rule := DefaultRule()

	obs, ok := rule.Match(map[string]any{"name": "Martin Ødegaard", "positionShort": nil, "position": "AM"})
	if !ok || obs.Position != "AM" {
		t.Fatalf("expected fallback to position key, got %+v ok=%v", obs, ok)
	}

	obs, ok = rule.Match(map[string]any{"name": "Kai Havertz", "position": 105.0})
	if !ok || obs.Position != "105" {
		t.Fatalf("expected numeric position code, got %+v ok=%v", obs, ok)
	}

	obs, ok = rule.Match(map[string]any{"name": "Martin Ødegaard", "position": "MÇO"})
	if !ok || obs.Position != "MÇO" {
		t.Fatalf("expected length to count characters not bytes, got %+v ok=%v", obs, ok)
	}

	obs, ok = rule.Match(map[string]any{"name": "Kai Havertz", "position": 10.5})
	if ok {
		t.Fatalf("expected 10.5 to exceed the length cap, got %+v", obs)
	}
}

func TestRule_Match_MeasuresRawPosition(t *testing.T) {
	rule := DefaultRule()

	if obs, ok := rule.Match(map[string]any{"name": "X", "position": " MID"}); ok {
		t.Fatalf("expected padded 4-char position to be rejected, got %+v", obs)
	}

	obs, ok := rule.Match(map[string]any{"name": " Bukayo Saka ", "position": "RW "})
	if !ok || obs.Name != " Bukayo Saka " || obs.Position != "RW " {
		t.Fatalf("expected name and position kept as given, got %+v ok=%v", obs, ok)
	}
}

func TestRule_Extract_TunableLength(t *testing.T) {
	doc := map[string]any{"name": "Rodri", "position": "DMCM"}

	if got := DefaultRule().Extract(doc).Observations; len(got) != 0 {
		t.Fatalf("default rule should reject 4-char position, got %+v", got)
	}

	rule := DefaultRule()
	rule.MaxPositionLength = 4
	if got := rule.Extract(doc).Observations; len(got) != 1 {
		t.Fatalf("widened rule should accept 4-char position, got %+v", got)
	}
}

func TestRule_Extract_DepthBound(t *testing.T) {
	var doc any = map[string]any{"name": "Deep Player", "position": "ST"}
	for i := 0; i < 10; i++ {
		doc = []any{doc}
	}

	rule := DefaultRule()
	rule.MaxDepth = 5
	got := rule.Extract(doc)
	if len(got.Observations) != 0 || !got.Truncated {
		t.Fatalf("expected truncated walk without observations, got %+v", got)
	}

	rule.MaxDepth = 10
	got = rule.Extract(doc)
	if len(got.Observations) != 1 || got.Truncated {
		t.Fatalf("expected leaf at depth 10 to be reached, got %+v", got)
	}
}

func TestAggregate_CountsDuplicates(t *testing.T) {
	got := Aggregate([]Observation{
		{Name: "Saka", Position: "RW"},
		{Name: "Rice", Position: "DM"},
		{Name: "Saka", Position: "RW"},
		{Name: "Saka", Position: "RM"},
	})
	want := []Increment{
		{Name: "Saka", Position: "RW", Delta: 2},
		{Name: "Rice", Position: "DM", Delta: 1},
		{Name: "Saka", Position: "RM", Delta: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected aggregate: %+v", got)
	}
}

func TestBaseline_Primary(t *testing.T) {
	b := Baseline{PlayerName: "Saka", Positions: map[string]int64{"RW": 4, "RM": 4, "LW": 1}}
	pos, count, ok := b.Primary()
	if !ok || pos != "RM" || count != 4 {
		t.Fatalf("expected alphabetical tie-break to RM, got %s %d %v", pos, count, ok)
	}
	if b.Total() != 9 {
		t.Fatalf("unexpected total %d", b.Total())
	}
}

func TestBaseline_SortedPositions(t *testing.T) {
	b := Baseline{Positions: map[string]int64{"LW": 1, "RW": 4, "RM": 4, "ST": 2}}
	want := []string{"RM", "RW", "ST", "LW"}
	if got := b.SortedPositions(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: %v", got)
	}
	if _, _, ok := (Baseline{}).Primary(); ok {
		t.Fatalf("expected no primary position for empty baseline")
	}
}
