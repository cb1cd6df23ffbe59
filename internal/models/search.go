package models

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Search kinds used in fingerprints and metrics labels.
const (
	KindCourses = "courses"
	KindPeople  = "people"
)

// Sort orders accepted by SearchOption.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// FieldValue is a searchable attribute exposed by a record.
type FieldValue struct {
	Text    string
	Number  float64
	Numeric bool
	Exact   bool
}

func exact(s string) FieldValue { return FieldValue{Text: s, Exact: true} }

func text(s string) FieldValue { return FieldValue{Text: s} }

func number(s string, n float64) FieldValue {
	return FieldValue{Text: s, Number: n, Numeric: true, Exact: true}
}

func (v FieldValue) matches(want string) bool {
	if v.Numeric {
		n, err := strconv.ParseFloat(want, 64)
		return err == nil && n == v.Number
	}
	if v.Exact {
		return strings.EqualFold(v.Text, want)
	}
	return strings.Contains(strings.ToLower(v.Text), strings.ToLower(want))
}

func (v FieldValue) less(other FieldValue) bool {
	if v.Numeric && other.Numeric {
		return v.Number < other.Number
	}
	return strings.ToLower(v.Text) < strings.ToLower(other.Text)
}

// Searchable is implemented by every record kind the search paths can filter.
type Searchable interface {
	RecordID() string
	Field(key string) (FieldValue, bool)
}

// SearchOption is the filter vocabulary shared by live and cached search.
type SearchOption struct {
	Filters   map[string]string `json:"filters,omitempty"`
	SortBy    string            `json:"sort_by,omitempty"`
	SortOrder string            `json:"sort_order,omitempty" validate:"omitempty,oneof=asc desc"`
}

// Normalised returns the option with lowercased keys, trimmed values and blank filters removed.
// Keys that collide after lowercasing resolve to the raw key that sorts last, so "name" wins
// over "Name".
func (o SearchOption) Normalised() SearchOption {
	out := SearchOption{
		SortBy:    strings.ToLower(strings.TrimSpace(o.SortBy)),
		SortOrder: strings.ToLower(strings.TrimSpace(o.SortOrder)),
	}
	raw := make([]string, 0, len(o.Filters))
	for key := range o.Filters {
		raw = append(raw, key)
	}
	sort.Strings(raw)
	for _, rawKey := range raw {
		key := strings.ToLower(strings.TrimSpace(rawKey))
		value := strings.TrimSpace(o.Filters[rawKey])
		if key == "" || value == "" {
			continue
		}
		if out.Filters == nil {
			out.Filters = make(map[string]string, len(o.Filters))
		}
		out.Filters[key] = value
	}
	return out
}

// Matches reports whether item satisfies every filter. A filter on a field the record does not
// expose never matches.
func (o SearchOption) Matches(item Searchable) bool {
	for key, want := range o.Normalised().Filters {
		got, ok := item.Field(key)
		if !ok || !got.matches(want) {
			return false
		}
	}
	return true
}

// Fingerprint is the canonical cache key for the result set of this option.
func (o SearchOption) Fingerprint(kind string) string {
	n := o.Normalised()
	values := url.Values{}
	for key, value := range n.Filters {
		values.Set(key, value)
	}
	var b strings.Builder
	b.WriteString(kind)
	b.WriteByte('?')
	b.WriteString(values.Encode())
	if n.SortBy != "" {
		order := n.SortOrder
		if order == "" {
			order = SortAsc
		}
		b.WriteString("#sort=")
		b.WriteString(n.SortBy)
		b.WriteByte(':')
		b.WriteString(order)
	}
	return b.String()
}

// FilterRecords returns the matching items in their original order, sorted when the option asks.
func FilterRecords[T Searchable](items []T, o SearchOption) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if o.Matches(item) {
			out = append(out, item)
		}
	}
	SortRecords(out, o)
	return out
}

// SortRecords stable-sorts items by the option's sort key. Unknown keys leave the order untouched.
func SortRecords[T Searchable](items []T, o SearchOption) {
	n := o.Normalised()
	if n.SortBy == "" || len(items) < 2 {
		return
	}
	if _, ok := items[0].Field(n.SortBy); !ok {
		return
	}
	desc := n.SortOrder == SortDesc
	sort.SliceStable(items, func(i, j int) bool {
		a, _ := items[i].Field(n.SortBy)
		b, _ := items[j].Field(n.SortBy)
		if desc {
			return b.less(a)
		}
		return a.less(b)
	})
}
