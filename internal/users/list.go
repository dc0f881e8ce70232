package users

import (
	"sort"
	"strings"

	"github.com/ayush/user-management/web/internal/models"
)

// PageSize is the number of rows per table page.
const PageSize = 10

// Filter keeps rows whose ID contains idFilter and whose name contains
// nameFilter, both case-insensitively. An empty filter matches every row; a
// non-empty filter never matches a row missing that field.
func Filter(rows []models.UserSummary, idFilter, nameFilter string) []models.UserSummary {
	if rows == nil {
		return []models.UserSummary{}
	}
	if idFilter == "" && nameFilter == "" {
		return rows
	}
	idFilter = strings.ToLower(idFilter)
	nameFilter = strings.ToLower(nameFilter)
	out := make([]models.UserSummary, 0, len(rows))
	for _, u := range rows {
		if idFilter != "" && (u.ID == "" || !strings.Contains(strings.ToLower(u.ID), idFilter)) {
			continue
		}
		if nameFilter != "" && (u.Name == "" || !strings.Contains(strings.ToLower(u.Name), nameFilter)) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// Sort orders a copy of rows by "id" or "name"; any other key keeps API order.
// IDs that are both integers compare numerically.
func Sort(rows []models.UserSummary, key string, desc bool) []models.UserSummary {
	out := append([]models.UserSummary(nil), rows...)
	var less func(a, b models.UserSummary) bool
	switch key {
	case "id":
		less = func(a, b models.UserSummary) bool { return lessID(a.ID, b.ID) }
	case "name":
		less = func(a, b models.UserSummary) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessID(a, b string) bool {
	if isDigits(a) && isDigits(b) {
		a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			return len(a) < len(b)
		}
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Page describes one page of a paginated list. Number is 1-based.
type Page struct {
	Number int
	Pages  int
	Total  int
	First  int
	Last   int
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.Pages }

// Paginate returns the rows on page n (clamped into range) and its description.
func Paginate(rows []models.UserSummary, n, size int) ([]models.UserSummary, Page) {
	if size <= 0 {
		size = PageSize
	}
	total := len(rows)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if n < 1 {
		n = 1
	}
	if n > pages {
		n = pages
	}
	start := (n - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	p := Page{Number: n, Pages: pages, Total: total}
	if total > 0 {
		p.First, p.Last = start+1, end
	}
	return rows[start:end], p
}
