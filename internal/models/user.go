package models

// Identity is the shared identification record embedded by Student and
// Proctor. IDs are unique within their role for a session; the record is
// owned exclusively by the embedding value.
type Identity struct {
	ID          int    `json:"id" validate:"gte=0"`
	Name        string `json:"name" validate:"required"`
	DateOfBirth string `json:"date_of_birth"`
	PhotoRef    string `json:"photo_ref"`
}

type ProctorRole string

const (
	RoleTA               ProctorRole = "TA"
	RoleCourseInstructor ProctorRole = "Course_Instructor"
)

// Valid reports whether the role is one of the recognized proctor roles.
func (r ProctorRole) Valid() bool {
	return r == RoleTA || r == RoleCourseInstructor
}

// Proctor supervises the exam session.
type Proctor struct {
	Identity
	Role ProctorRole `json:"role"`
}
