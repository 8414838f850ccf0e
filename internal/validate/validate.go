// Package validate checks form input before anything is sent to the API.
package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/example/rideflow/internal/models"
)

var emailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// FieldError is one rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collects field errors in form order.
type Errors struct {
	Fields []FieldError `json:"fields"`
}

func (e *Errors) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// Message returns the first field message, the one a form shows first.
func (e *Errors) Message() string {
	if len(e.Fields) == 0 {
		return ""
	}
	return e.Fields[0].Message
}

func (e *Errors) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *Errors) err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func Email(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && len(s) <= 200 && emailRegex.MatchString(s)
}

func Coordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

type LoginForm struct {
	Email    string
	Password string
}

func (f LoginForm) Validate() error {
	var e Errors
	if blank(f.Email) {
		e.add("email", "Email is required")
	}
	if f.Password == "" {
		e.add("password", "Password is required")
	}
	return e.err()
}

type RegisterForm struct {
	Name     string
	Email    string
	Phone    string
	Role     string
	Password string
	Confirm  string
}

func (f RegisterForm) Validate() error {
	var e Errors
	switch name := strings.TrimSpace(f.Name); {
	case name == "":
		e.add("name", "Name is required")
	case len(name) < 2:
		e.add("name", "Name must be at least 2 characters")
	}
	switch {
	case blank(f.Email):
		e.add("email", "Email is required")
	case !Email(f.Email):
		e.add("email", "Please enter a valid email address")
	}
	switch {
	case f.Role == "":
		e.add("role", "Please select a role")
	case !models.Role(f.Role).Known():
		e.add("role", "Unknown role "+strconv.Quote(f.Role))
	}
	switch {
	case f.Password == "":
		e.add("password", "Password is required")
	case len(f.Password) < 6:
		e.add("password", "Password must be at least 6 characters")
	}
	switch {
	case f.Confirm == "":
		e.add("confirm", "Please confirm your password")
	case f.Confirm != f.Password:
		e.add("confirm", "Passwords do not match")
	}
	return e.err()
}

type ProfileForm struct {
	Name  string
	Email string
	Phone string
}

// Validate requires name and phone. Email is optional but must be well
// formed when given.
func (f ProfileForm) Validate() error {
	var e Errors
	if blank(f.Name) || blank(f.Phone) {
		e.add("profile", "Name and Phone cannot be empty.")
	}
	if !blank(f.Email) && !Email(f.Email) {
		e.add("email", "Please enter a valid email address")
	}
	return e.err()
}

type PasswordForm struct {
	Current string
	New     string
	Confirm string
}

func (f PasswordForm) Validate() error {
	var e Errors
	switch {
	case f.Current == "" || f.New == "" || f.Confirm == "":
		e.add("password", "All password fields are required.")
	case f.New != f.Confirm:
		e.add("confirm", "New password and confirm password do not match.")
	}
	return e.err()
}

// NewPasswordForm is the driver password form, which has no current
// password field.
type NewPasswordForm struct {
	New     string
	Confirm string
}

func (f NewPasswordForm) Validate() error {
	var e Errors
	switch {
	case f.New == "" || f.Confirm == "":
		e.add("password", "All password fields are required.")
	case f.New != f.Confirm:
		e.add("confirm", "New password and confirm password do not match.")
	}
	return e.err()
}
