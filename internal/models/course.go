package models

import "strconv"

// Course is one course offering scraped from the portal's course search.
type Course struct {
	ID         string  `json:"id"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Teacher    string  `json:"teacher"`
	Department string  `json:"department"`
	Credit     float64 `json:"credit"`
	SemesterID int     `json:"semester_id"`
	DayOfWeek  int     `json:"day_of_week"`
	Weeks      string  `json:"weeks"`
	Location   string  `json:"location"`
}

// RecordID implements Searchable.
func (c Course) RecordID() string { return c.ID }

// Field implements Searchable.
func (c Course) Field(key string) (FieldValue, bool) {
	switch key {
	case "id":
		return exact(c.ID), true
	case "code":
		return exact(c.Code), true
	case "name":
		return text(c.Name), true
	case "teacher":
		return text(c.Teacher), true
	case "department":
		return text(c.Department), true
	case "credit":
		return number(strconv.FormatFloat(c.Credit, 'f', -1, 64), c.Credit), true
	case "semester":
		return number(strconv.Itoa(c.SemesterID), float64(c.SemesterID)), true
	case "day":
		return number(strconv.Itoa(c.DayOfWeek), float64(c.DayOfWeek)), true
	case "weeks":
		return text(c.Weeks), true
	case "location":
		return text(c.Location), true
	}
	return FieldValue{}, false
}
