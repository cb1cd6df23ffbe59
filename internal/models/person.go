package models

// PersonKind distinguishes the two directories the portal exposes.
type PersonKind string

const (
	PersonStudent PersonKind = "student"
	PersonTeacher PersonKind = "teacher"
)

// Person is a directory entry from the portal's people search.
type Person struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Kind       PersonKind `json:"kind"`
	Department string     `json:"department"`
	Title      string     `json:"title,omitempty"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
}

// RecordID implements Searchable.
func (p Person) RecordID() string { return p.ID }

// Field implements Searchable.
func (p Person) Field(key string) (FieldValue, bool) {
	switch key {
	case "id":
		return exact(p.ID), true
	case "name":
		return text(p.Name), true
	case "kind":
		return exact(string(p.Kind)), true
	case "department":
		return text(p.Department), true
	case "title":
		return text(p.Title), true
	case "email":
		return exact(p.Email), true
	case "phone":
		return exact(p.Phone), true
	}
	return FieldValue{}, false
}
