// Package student defines the roster record and the course choices offered
// by the entry forms.
package student

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Student is one row of the students table.
// ID is assigned by the store on insert and never changes afterwards.
type Student struct {
	ID     int64  `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Course string `json:"course" yaml:"course"`
	Mobile string `json:"mobile" yaml:"mobile"`
}

// Course names offered by the forms. The store itself accepts any text.
const (
	Biology   = "Biology"
	Math      = "Math"
	Astronomy = "Astronomy"
	Physics   = "Physics"
)

// Courses returns the selectable courses in display order.
func Courses() []string {
	return []string{Biology, Math, Astronomy, Physics}
}

// ErrInvalidCourse is returned when a form names a course outside Courses.
var ErrInvalidCourse = errors.New("invalid course")

// Form is the payload of the insert and edit dialogs.
// Only the course is constrained; name and mobile are stored as typed.
type Form struct {
	Name   string
	Course string `validate:"oneof=Biology Math Astronomy Physics"`
	Mobile string
}

var validate = validator.New()

// Validate checks the course against the selectable set.
func (f Form) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w %q: must be one of %v", ErrInvalidCourse, f.Course, Courses())
	}
	return nil
}

// Apply copies the form fields onto s, keeping its ID.
func (f Form) Apply(s Student) Student {
	s.Name = f.Name
	s.Course = f.Course
	s.Mobile = f.Mobile
	return s
}

// NormalizeCourse trims and title-cases s so that "physics" selects Physics.
// Values that do not match a known course after normalization are returned
// as given, which then fail Validate.
func NormalizeCourse(s string) string {
	trimmed := strings.TrimSpace(s)
	titled := cases.Title(language.English).String(trimmed)
	for _, c := range Courses() {
		if c == titled {
			return c
		}
	}
	return s
}
