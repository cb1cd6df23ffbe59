package models

import (
	"strconv"
	"time"
)

// User is a portal account confirmed during this session. Its grade anchors every semester id
// computed for the student.
type User struct {
	StudentID      string    `json:"student_id"`
	Name           string    `json:"name,omitempty"`
	Grade          int       `json:"grade"`
	CredentialHash string    `json:"-"`
	Confirmed      bool      `json:"confirmed"`
	RegisteredAt   time.Time `json:"registered_at"`
}

// GetGrade returns the entry year of the student.
func (u *User) GetGrade() int {
	if u == nil {
		return 0
	}
	return u.Grade
}

// IsConfirmed reports whether the portal accepted the user's credential.
func (u *User) IsConfirmed() bool {
	return u != nil && u.Confirmed
}

// GradeFromStudentID reads the entry year encoded in the first four digits of a student id.
func GradeFromStudentID(studentID string) (int, bool) {
	if len(studentID) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(studentID[:4])
	if err != nil || year < 1000 {
		return 0, false
	}
	return year, true
}

// PortalProfile is what the portal reports back after a successful login.
type PortalProfile struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Grade     int    `json:"grade"`
}
