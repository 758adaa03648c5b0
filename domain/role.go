package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a named role with embedded claims.
type Role struct {
	id                 string
	roleName           string
	normalizedRoleName string
	deleteOn           *Occurrence
	claims             []Claim
}

// NewRole creates an active role with a fresh id.
func NewRole(roleName string) (*Role, error) {
	if roleName == "" {
		return nil, MissingArgument("role name")
	}
	return &Role{id: uuid.NewString(), roleName: roleName}, nil
}

func (r *Role) ID() string                 { return r.id }
func (r *Role) RoleName() string           { return r.roleName }
func (r *Role) NormalizedRoleName() string { return r.normalizedRoleName }
func (r *Role) DeleteOn() *Occurrence      { return occurrencePtr(r.deleteOn) }
func (r *Role) IsDeleted() bool            { return r.deleteOn != nil }

func (r *Role) Claims() []Claim {
	return append(make([]Claim, 0, len(r.claims)), r.claims...)
}

func (r *Role) SetRoleName(roleName string) error {
	if roleName == "" {
		return MissingArgument("role name")
	}
	r.roleName = roleName
	return nil
}

func (r *Role) SetNormalizedRoleName(normalized string) error {
	if normalized == "" {
		return MissingArgument("normalized role name")
	}
	r.normalizedRoleName = normalized
	return nil
}

func (r *Role) AddClaim(c Claim) error {
	if err := c.validate(); err != nil {
		return err
	}
	r.claims = append(r.claims, c)
	return nil
}

// RemoveClaim removes the first equal claim; absent claims are ignored.
func (r *Role) RemoveClaim(c Claim) error {
	if err := c.validate(); err != nil {
		return err
	}
	if i := indexOfClaim(r.claims, c); i >= 0 {
		r.claims = append(r.claims[:i], r.claims[i+1:]...)
	}
	return nil
}

// Delete soft-deletes the role. A role can only be deleted once.
func (r *Role) Delete() error {
	if r.deleteOn != nil {
		return WrapError(ErrCodeInvalidState, ErrAlreadyDeleted.Message, errRoleDeleted(r.id))
	}
	o := NewOccurrence()
	r.deleteOn = &o
	return nil
}

// RoleState is the flat, persistence-facing view of a role.
type RoleState struct {
	ID                 string
	RoleName           string
	NormalizedRoleName string
	DeleteOn           *time.Time
	Claims             []Claim
}

func (r *Role) State() RoleState {
	return RoleState{
		ID:                 r.id,
		RoleName:           r.roleName,
		NormalizedRoleName: r.normalizedRoleName,
		DeleteOn:           instantPtr(r.deleteOn),
		Claims:             r.Claims(),
	}
}

// RestoreRole rebuilds a role from persisted state.
func RestoreRole(s RoleState) (*Role, error) {
	if s.ID == "" {
		return nil, MissingArgument("role id")
	}
	if s.RoleName == "" {
		return nil, MissingArgument("role name")
	}
	r := &Role{
		id:                 s.ID,
		roleName:           s.RoleName,
		normalizedRoleName: s.NormalizedRoleName,
		deleteOn:           occurrenceFrom(s.DeleteOn),
	}
	for _, c := range s.Claims {
		if c.validate() == nil {
			r.claims = append(r.claims, c)
		}
	}
	return r, nil
}
