package catalog

import (
	"reflect"
	"testing"

	"github.com/digkill/PromptLibrary/internal/entitlement"
	"github.com/digkill/PromptLibrary/internal/models"
)

func ids(prompts []models.Prompt) []string {
	out := make([]string, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, p.ID)
	}
	return out
}

func fixture() []models.Prompt {
	return []models.Prompt{
		{ID: "p1", Title: "Sales email", Content: "Write a cold email to [company]", Category: "sales", UseCase: []string{"writing"}, Tags: []string{"email", "outreach"}},
		{ID: "p2", Title: "Churn analysis", Content: "Analyse churn drivers", Category: "marketing", UseCase: []string{"analysis"}, Tags: []string{"retention"}},
		{ID: "p3", Title: "Ad copy", Content: "Draft ad copy", Category: "marketing", UseCase: []string{"writing"}, Tags: []string{"ads", "email"}},
		{ID: "p4", Title: "Legacy summary", Content: "Summarise the text", Category: "general", Tags: []string{"summarization", "email"}},
		{ID: "p5", Title: "bare", Content: "nothing else", Category: "general"},
	}
}

func TestFilterCategory(t *testing.T) {
	got := Filter(fixture(), Query{Category: "marketing"}, Signals{})
	if want := []string{"p2", "p3"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("category filter = %v, want %v", ids(got), want)
	}
	if got := Filter(fixture(), Query{Category: All}, Signals{}); len(got) != 5 {
		t.Fatalf("wildcard category returned %d prompts, want 5", len(got))
	}
	if got := Filter(fixture(), Query{Category: "legal"}, Signals{}); got == nil || len(got) != 0 {
		t.Fatalf("unmatched category = %v, want empty non-nil slice", got)
	}
}

func TestFilterUseCaseFallsBackToTags(t *testing.T) {
	got := Filter(fixture(), Query{UseCase: "summarization"}, Signals{})
	if want := []string{"p4"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("legacy use-case filter = %v, want %v", ids(got), want)
	}
	got = Filter(fixture(), Query{UseCase: "writing"}, Signals{})
	if want := []string{"p1", "p3"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("use-case filter = %v, want %v", ids(got), want)
	}
}

func TestTagModes(t *testing.T) {
	prompts := []models.Prompt{
		{ID: "ab", Tags: []string{"A", "B"}},
		{ID: "a", Tags: []string{"A"}},
		{ID: "b", Tags: []string{"B"}},
		{ID: "none"},
	}
	and := Filter(prompts, Query{Tags: []string{"A", "B"}, TagMode: TagModeAnd}, Signals{})
	if want := []string{"ab"}; !reflect.DeepEqual(ids(and), want) {
		t.Fatalf("AND = %v, want %v", ids(and), want)
	}
	or := Filter(prompts, Query{Tags: []string{"A", "B"}, TagMode: TagModeOr}, Signals{})
	if want := []string{"ab", "a", "b"}; !reflect.DeepEqual(ids(or), want) {
		t.Fatalf("OR = %v, want %v", ids(or), want)
	}
	all := Filter(prompts, Query{TagMode: TagModeAnd}, Signals{})
	if len(all) != 4 {
		t.Fatalf("empty tag set returned %d prompts, want 4", len(all))
	}
}

func TestFilterText(t *testing.T) {
	cases := map[string][]string{
		"EMAIL":    {"p1", "p3", "p4"},
		"churn":    {"p2"},
		"analysis": {"p2"},
		"summar":   {"p4"},
		"   ":      {"p1", "p2", "p3", "p4", "p5"},
		"missing":  {},
	}
	for q, want := range cases {
		got := Filter(fixture(), Query{Text: q}, Signals{})
		if !reflect.DeepEqual(ids(got), want) {
			t.Fatalf("text %q = %v, want %v", q, ids(got), want)
		}
	}
}

func TestStagesOnlyNarrow(t *testing.T) {
	full := Query{Category: "marketing", UseCase: "writing", Tags: []string{"email"}, TagMode: TagModeOr, Text: "copy"}
	reduced := []Query{
		{UseCase: "writing", Tags: []string{"email"}, TagMode: TagModeOr, Text: "copy"},
		{Category: "marketing", Tags: []string{"email"}, TagMode: TagModeOr, Text: "copy"},
		{Category: "marketing", UseCase: "writing", Text: "copy"},
		{Category: "marketing", UseCase: "writing", Tags: []string{"email"}, TagMode: TagModeOr},
	}
	narrow := ids(Filter(fixture(), full, Signals{}))
	for _, q := range reduced {
		wide := make(map[string]bool)
		for _, id := range ids(Filter(fixture(), q, Signals{})) {
			wide[id] = true
		}
		for _, id := range narrow {
			if !wide[id] {
				t.Fatalf("%s present with all stages but missing with %+v", id, q)
			}
		}
	}
}

func TestSortDefaultKeepsInputOrder(t *testing.T) {
	got := Filter(fixture(), Query{SortBy: SortDefault}, Signals{})
	if want := []string{"p1", "p2", "p3", "p4", "p5"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("default sort = %v, want %v", ids(got), want)
	}
}

func TestSortPopular(t *testing.T) {
	sig := Signals{UsageCounts: map[string]int{"p3": 5, "p4": 2, "p2": 5}}
	got := Filter(fixture(), Query{SortBy: SortPopular}, sig)
	if want := []string{"p2", "p3", "p4", "p1", "p5"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("popular sort = %v, want %v", ids(got), want)
	}
}

func TestSortFavoriteIsStablePartition(t *testing.T) {
	prompts := []models.Prompt{{ID: "n1"}, {ID: "f1"}, {ID: "n2"}, {ID: "f2"}, {ID: "n3"}, {ID: "f3"}}
	sig := Signals{Favorites: map[string]bool{"f1": true, "f2": true, "f3": true}}
	got := Filter(prompts, Query{SortBy: SortFavorite}, sig)
	if want := []string{"f1", "f2", "f3", "n1", "n2", "n3"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("favorite sort = %v, want %v", ids(got), want)
	}
}

func TestSortName(t *testing.T) {
	prompts := []models.Prompt{{ID: "3", Title: "banana"}, {ID: "1", Title: "Apple"}, {ID: "2", Title: "apricot"}}
	got := Filter(prompts, Query{SortBy: SortName}, Signals{})
	if want := []string{"1", "2", "3"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("name sort = %v, want %v", ids(got), want)
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	in := fixture()
	_ = Filter(in, Query{SortBy: SortName}, Signals{})
	if want := []string{"p1", "p2", "p3", "p4", "p5"}; !reflect.DeepEqual(ids(in), want) {
		t.Fatalf("input reordered to %v", ids(in))
	}
}

func TestTagCountsUseCoarseSubset(t *testing.T) {
	got := TagCounts(fixture(), "marketing", All)
	want := []TagCount{{"ads", 1}, {"email", 1}, {"retention", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("TagCounts(marketing) = %v, want %v", got, want)
	}
	global := TagCounts(fixture(), All, All)
	if global[0] != (TagCount{"email", 3}) {
		t.Fatalf("TagCounts(all)[0] = %v, want {email 3}", global[0])
	}
}

func TestTruncate(t *testing.T) {
	prompts := make([]models.Prompt, 30)
	free := entitlement.ResolvePermissions(entitlement.RoleFree)
	if got := Truncate(prompts, ViewHome, free); len(got) != 20 {
		t.Fatalf("home view for free = %d prompts, want 20", len(got))
	}
	for _, v := range []View{ViewFavorites, ViewCustom, ViewFolder} {
		if got := Truncate(prompts, v, free); len(got) != 30 {
			t.Fatalf("%s view truncated to %d", v, len(got))
		}
	}
	premium := entitlement.ResolvePermissions(entitlement.RolePremium)
	if got := Truncate(prompts, ViewHome, premium); len(got) != 30 {
		t.Fatalf("home view for premium = %d prompts, want 30", len(got))
	}
}

func TestParsers(t *testing.T) {
	if ParseTagMode("AND") != TagModeAnd || ParseTagMode("x") != TagModeOr {
		t.Fatalf("ParseTagMode mismatch")
	}
	if ParseSortOrder("Name") != SortName || ParseSortOrder("random") != SortDefault {
		t.Fatalf("ParseSortOrder mismatch")
	}
}
