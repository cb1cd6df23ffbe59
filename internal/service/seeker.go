package service

import (
	"github.com/trotyl/uestc-sdk-go/internal/models"
)

// RecordSource is the read side of the record cache the Seeker walks.
type RecordSource interface {
	Values() []any
}

// Seeker answers searches from the record cache alone. It never touches the network and never
// fails: an empty cache yields an empty result.
type Seeker struct {
	cache RecordSource
}

// NewSeeker constructs a Seeker over cache.
func NewSeeker(cache RecordSource) *Seeker {
	return &Seeker{cache: cache}
}

// SearchForCourses filters every cached course with opt.
func (s *Seeker) SearchForCourses(opt models.SearchOption) []models.Course {
	return seek(s.values(), opt, courseRecords)
}

// SearchForPeople filters every cached person with opt.
func (s *Seeker) SearchForPeople(opt models.SearchOption) []models.Person {
	return seek(s.values(), opt, personRecords)
}

func (s *Seeker) values() []any {
	if s == nil || s.cache == nil {
		return nil
	}
	return s.cache.Values()
}

// seek flattens the cached values of one kind, keeps the first position of each record id with
// the most recently cached content, then applies the option.
func seek[T models.Searchable](values []any, opt models.SearchOption, extract func(any) []T) []T {
	var records []T
	index := make(map[string]int)
	for _, value := range values {
		for _, record := range extract(value) {
			id := record.RecordID()
			if id == "" {
				records = append(records, record)
				continue
			}
			if pos, ok := index[id]; ok {
				records[pos] = record
				continue
			}
			index[id] = len(records)
			records = append(records, record)
		}
	}
	return models.FilterRecords(records, opt)
}

func courseRecords(value any) []models.Course {
	switch v := value.(type) {
	case models.Course:
		return []models.Course{v}
	case *models.Course:
		if v != nil {
			return []models.Course{*v}
		}
	case []models.Course:
		return v
	}
	return nil
}

func personRecords(value any) []models.Person {
	switch v := value.(type) {
	case models.Person:
		return []models.Person{v}
	case *models.Person:
		if v != nil {
			return []models.Person{*v}
		}
	case []models.Person:
		return v
	}
	return nil
}
