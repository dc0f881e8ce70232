package users

import (
	"testing"

	"github.com/ayush/user-management/web/internal/models"
)

func ids(rows []models.UserSummary) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilter(t *testing.T) {
	rows := []models.UserSummary{
		{ID: "1", Name: "Alice"},
		{ID: "12", Name: "Bob"},
		{ID: "3", Name: "alicia"},
		{ID: "", Name: "Ghost"},
	}
	cases := []struct {
		name     string
		id, user string
		want     []string
	}{
		{"no filters", "", "", []string{"1", "12", "3", ""}},
		{"id substring", "1", "", []string{"1", "12"}},
		{"name case-insensitive", "", "ALI", []string{"1", "3"}},
		{"both filters", "1", "ali", []string{"1"}},
		{"missing id never matches", "x", "", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Filter(rows, tc.id, tc.user))
			if !equal(got, tc.want) {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}

func TestFilterNil(t *testing.T) {
	if got := Filter(nil, "a", ""); got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
}

func TestSort(t *testing.T) {
	rows := []models.UserSummary{{ID: "10", Name: "carol"}, {ID: "9", Name: "Alice"}, {ID: "100", Name: "bob"}}

	if got := ids(Sort(rows, "id", false)); !equal(got, []string{"9", "10", "100"}) {
		t.Fatalf("numeric id sort: %v", got)
	}
	if got := ids(Sort(rows, "id", true)); !equal(got, []string{"100", "10", "9"}) {
		t.Fatalf("numeric id sort desc: %v", got)
	}
	if got := ids(Sort(rows, "name", false)); !equal(got, []string{"9", "100", "10"}) {
		t.Fatalf("name sort: %v", got)
	}
	if got := ids(Sort(rows, "", false)); !equal(got, []string{"10", "9", "100"}) {
		t.Fatalf("unknown key should keep order: %v", got)
	}
	if rows[0].ID != "10" {
		t.Fatalf("Sort must not modify its input")
	}
}

func TestPaginate(t *testing.T) {
	rows := make([]models.UserSummary, 23)
	for i := range rows {
		rows[i] = models.UserSummary{ID: string(rune('a' + i))}
	}

	got, p := Paginate(rows, 3, PageSize)
	if len(got) != 3 || p.Number != 3 || p.Pages != 3 || p.First != 21 || p.Last != 23 {
		t.Fatalf("unexpected last page %d rows, %+v", len(got), p)
	}
	if p.HasNext() || !p.HasPrev() {
		t.Fatalf("last page navigation wrong: %+v", p)
	}

	_, p = Paginate(rows, 99, PageSize)
	if p.Number != 3 {
		t.Fatalf("page should clamp to 3, got %d", p.Number)
	}
	_, p = Paginate(rows, 0, PageSize)
	if p.Number != 1 || p.HasPrev() {
		t.Fatalf("page should clamp to 1, got %+v", p)
	}

	got, p = Paginate(nil, 1, PageSize)
	if len(got) != 0 || p.Pages != 1 || p.Total != 0 || p.First != 0 {
		t.Fatalf("empty list: %d rows, %+v", len(got), p)
	}
}
