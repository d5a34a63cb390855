package content

import (
	"sort"
	"strings"
)

// SortBy selects the interest sort key.
type SortBy string

const (
	SortByName   SortBy = "name"
	SortByYear   SortBy = "year"
	SortByRating SortBy = "rating"
)

// IsValid checks if the sort key is supported.
func (s SortBy) IsValid() bool {
	switch s {
	case SortByName, SortByYear, SortByRating:
		return true
	default:
		return false
	}
}

// SortOrder selects ascending or descending order.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// IsValid checks if the order is supported.
func (o SortOrder) IsValid() bool {
	return o == OrderAsc || o == OrderDesc
}

// FilterInterests returns the entries whose name, creator, or any tag
// contains the search term, case-insensitively. An empty term matches
// everything. The input slice is never mutated.
func FilterInterests(items []Interest, term string) []Interest {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return append([]Interest(nil), items...)
	}

	out := make([]Interest, 0, len(items))
	for _, item := range items {
		if interestMatches(item, term) {
			out = append(out, item)
		}
	}
	return out
}

func interestMatches(item Interest, term string) bool {
	if strings.Contains(strings.ToLower(item.Name), term) {
		return true
	}
	if strings.Contains(strings.ToLower(item.Creator), term) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// SortInterests returns a sorted copy. Rating sorts entries without a score
// after scored ones regardless of order; name comparison is
// case-insensitive.
func SortInterests(items []Interest, by SortBy, order SortOrder) []Interest {
	out := append([]Interest(nil), items...)
	desc := order == OrderDesc

	sort.SliceStable(out, func(i, j int) bool {
		switch by {
		case SortByYear:
			if desc {
				return out[i].Year > out[j].Year
			}
			return out[i].Year < out[j].Year
		case SortByRating:
			ri, rj := out[i].Metacritic, out[j].Metacritic
			if ri == nil || rj == nil {
				return rj == nil && ri != nil
			}
			if desc {
				return *ri > *rj
			}
			return *ri < *rj
		default:
			ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
			if desc {
				return ni > nj
			}
			return ni < nj
		}
	})
	return out
}

// SearchHardware returns the machines whose name, category, OS, or any
// component model contains the term, case-insensitively.
func SearchHardware(items []Hardware, term string) []Hardware {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return append([]Hardware(nil), items...)
	}

	out := make([]Hardware, 0, len(items))
	for _, h := range items {
		haystack := strings.ToLower(strings.Join([]string{
			h.Name, h.Category, h.OperatingSystem, h.CPU.Model, h.GPU.Model,
		}, " "))
		if strings.Contains(haystack, term) {
			out = append(out, h)
		}
	}
	return out
}

// SearchSoftware returns the tools whose name, category, description, or
// developer contains the term, case-insensitively.
func SearchSoftware(items []Software, term string) []Software {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return append([]Software(nil), items...)
	}

	out := make([]Software, 0, len(items))
	for _, s := range items {
		haystack := strings.ToLower(strings.Join([]string{
			s.Name, s.Category, s.Description, s.Developer,
		}, " "))
		if strings.Contains(haystack, term) {
			out = append(out, s)
		}
	}
	return out
}
