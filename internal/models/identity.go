package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Role string

const (
	RoleRider  Role = "rider"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

// Roles lists every role the client knows about, in display order.
var Roles = []Role{RoleRider, RoleDriver, RoleAdmin}

func (r Role) Known() bool {
	switch r {
	case RoleRider, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

type UserStatus string

const (
	UserActive  UserStatus = "active"
	UserBlocked UserStatus = "blocked"
	UserPending UserStatus = "pending"
)

func (s UserStatus) Known() bool {
	switch s {
	case UserActive, UserBlocked, UserPending:
		return true
	}
	return false
}

// Identity is the authenticated user record as returned by the API.
type Identity struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Phone  string     `json:"phone,omitempty"`
	Role   Role       `json:"role"`
	Status UserStatus `json:"status,omitempty"`
}

// UnmarshalJSON accepts both "id" and the API's "_id".
func (i *Identity) UnmarshalJSON(b []byte) error {
	type plain Identity
	var raw struct {
		plain
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*i = Identity(raw.plain)
	if i.ID == "" {
		i.ID = raw.MongoID
	}
	return nil
}

// Validate checks the shape of a user row received from the API. Rows must
// be addressable, so an id or an email is required.
func (i Identity) Validate() error {
	var errs []error
	if i.Email == "" && i.ID == "" {
		errs = append(errs, errors.New("identity has neither id nor email"))
	}
	if err := i.ValidateRole(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateRole checks only the role and the optional status. It is all a
// login response has to carry.
func (i Identity) ValidateRole() error {
	var errs []error
	if !i.Role.Known() {
		errs = append(errs, fmt.Errorf("unknown role %q", i.Role))
	}
	if i.Status != "" && !i.Status.Known() {
		errs = append(errs, fmt.Errorf("unknown user status %q", i.Status))
	}
	return errors.Join(errs...)
}

// IdentityPatch carries the fields a profile edit may change. Empty fields
// are left untouched by Merge.
type IdentityPatch struct {
	Name   string     `json:"name,omitempty"`
	Email  string     `json:"email,omitempty"`
	Phone  string     `json:"phone,omitempty"`
	Status UserStatus `json:"status,omitempty"`
}

func (i Identity) Merge(p IdentityPatch) Identity {
	if p.Name != "" {
		i.Name = p.Name
	}
	if p.Email != "" {
		i.Email = p.Email
	}
	if p.Phone != "" {
		i.Phone = p.Phone
	}
	if p.Status != "" {
		i.Status = p.Status
	}
	return i
}

// Session pairs an identity with its bearer token. Both are set or neither.
type Session struct {
	Identity Identity `json:"user"`
	Token    string   `json:"token"`
}

func (s Session) Valid() bool {
	return s.Token != "" && s.Identity.Role != ""
}
