package domain

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// User is the authentication principal. All state changes go through its
// methods; it is not safe for concurrent mutation.
type User struct {
	id                 string
	userName           string
	normalizedUserName string
	passwordHash       string
	securityStamp      string
	accessFailedCount  int
	createdOn          Occurrence
	deleteOn           *Occurrence
	lockoutEndOn       *Occurrence
	lockoutEnabled     bool

	claims   []Claim
	logins   []Login
	roles    []string
	profiles map[string]bson.RawValue
}

// NewUser creates an active user with a fresh id and creation timestamp.
func NewUser(userName string) (*User, error) {
	if userName == "" {
		return nil, MissingArgument("user name")
	}
	return &User{
		id:        uuid.NewString(),
		userName:  userName,
		createdOn: NewOccurrence(),
	}, nil
}

func (u *User) ID() string                 { return u.id }
func (u *User) UserName() string           { return u.userName }
func (u *User) NormalizedUserName() string { return u.normalizedUserName }
func (u *User) PasswordHash() string       { return u.passwordHash }
func (u *User) HasPassword() bool          { return u.passwordHash != "" }
func (u *User) SecurityStamp() string      { return u.securityStamp }
func (u *User) AccessFailedCount() int     { return u.accessFailedCount }
func (u *User) CreatedOn() Occurrence      { return u.createdOn }
func (u *User) DeleteOn() *Occurrence      { return occurrencePtr(u.deleteOn) }
func (u *User) IsDeleted() bool            { return u.deleteOn != nil }
func (u *User) LockoutEndOn() *Occurrence  { return occurrencePtr(u.lockoutEndOn) }
func (u *User) IsLockoutEnabled() bool     { return u.lockoutEnabled }

// Claims returns a copy of the user's claims in insertion order.
func (u *User) Claims() []Claim {
	return append(make([]Claim, 0, len(u.claims)), u.claims...)
}

// Logins returns a copy of the user's external logins in insertion order.
func (u *User) Logins() []Login {
	return append(make([]Login, 0, len(u.logins)), u.logins...)
}

// Roles returns a copy of the role names the user belongs to.
func (u *User) Roles() []string {
	return append(make([]string, 0, len(u.roles)), u.roles...)
}

// HasRole reports whether the user holds roleName (exact match).
func (u *User) HasRole(roleName string) bool {
	for _, r := range u.roles {
		if r == roleName {
			return true
		}
	}
	return false
}

// HasLogin reports whether a login with the same provider and key is attached.
func (u *User) HasLogin(key LoginKey) bool {
	return indexOfLogin(u.logins, key) >= 0
}

func (u *User) SetUserName(userName string) error {
	if userName == "" {
		return MissingArgument("user name")
	}
	u.userName = userName
	return nil
}

func (u *User) SetNormalizedUserName(normalized string) error {
	if normalized == "" {
		return MissingArgument("normalized user name")
	}
	u.normalizedUserName = normalized
	return nil
}

func (u *User) SetPasswordHash(hash string) error {
	if hash == "" {
		return MissingArgument("password hash")
	}
	u.passwordHash = hash
	return nil
}

func (u *User) SetSecurityStamp(stamp string) error {
	if stamp == "" {
		return MissingArgument("security stamp")
	}
	u.securityStamp = stamp
	return nil
}

func (u *User) SetAccessFailedCount(count int) error {
	if count < 0 {
		return WrapError(ErrCodeInvalid, "invalid argument", errNegativeCount)
	}
	u.accessFailedCount = count
	return nil
}

// IncrementAccessFailedCount bumps the counter and returns the new value.
func (u *User) IncrementAccessFailedCount() int {
	u.accessFailedCount++
	return u.accessFailedCount
}

func (u *User) ResetAccessFailedCount() { u.accessFailedCount = 0 }

func (u *User) EnableLockout()  { u.lockoutEnabled = true }
func (u *User) DisableLockout() { u.lockoutEnabled = false }

// LockUntil sets the lockout end. It does not touch the enabled flag.
func (u *User) LockUntil(end time.Time) error {
	if end.IsZero() {
		return MissingArgument("lockout end")
	}
	o := OccurrenceAt(end)
	u.lockoutEndOn = &o
	return nil
}

func (u *User) ClearLockout() { u.lockoutEndOn = nil }

// Delete soft-deletes the user. A user can only be deleted once.
func (u *User) Delete() error {
	if u.deleteOn != nil {
		return WrapError(ErrCodeInvalidState, ErrAlreadyDeleted.Message, errUserDeleted(u.id))
	}
	o := NewOccurrence()
	u.deleteOn = &o
	return nil
}

// AddClaim appends the claim. Duplicates are allowed.
func (u *User) AddClaim(c Claim) error {
	if err := c.validate(); err != nil {
		return err
	}
	u.claims = append(u.claims, c)
	return nil
}

// RemoveClaim removes the first equal claim; absent claims are ignored.
func (u *User) RemoveClaim(c Claim) error {
	if err := c.validate(); err != nil {
		return err
	}
	if i := indexOfClaim(u.claims, c); i >= 0 {
		u.claims = append(u.claims[:i], u.claims[i+1:]...)
	}
	return nil
}

// ReplaceClaim removes the first match of old and appends replacement.
func (u *User) ReplaceClaim(old, replacement Claim) error {
	if err := old.validate(); err != nil {
		return err
	}
	if err := replacement.validate(); err != nil {
		return err
	}
	_ = u.RemoveClaim(old)
	u.claims = append(u.claims, replacement)
	return nil
}

// AddLogin attaches an external login; a second login for the same
// provider and key is rejected regardless of display name.
func (u *User) AddLogin(l Login) error {
	if err := l.Key().validate(); err != nil {
		return err
	}
	if u.HasLogin(l.Key()) {
		return ErrLoginExists
	}
	u.logins = append(u.logins, l)
	return nil
}

// RemoveLogin detaches the login matching key; absent logins are ignored.
func (u *User) RemoveLogin(key LoginKey) error {
	if err := key.validate(); err != nil {
		return err
	}
	if i := indexOfLogin(u.logins, key); i >= 0 {
		u.logins = append(u.logins[:i], u.logins[i+1:]...)
	}
	return nil
}

func (u *User) AddRole(roleName string) error {
	if roleName == "" {
		return MissingArgument("role name")
	}
	u.roles = append(u.roles, roleName)
	return nil
}

// RemoveRole removes the first occurrence of roleName.
func (u *User) RemoveRole(roleName string) error {
	if roleName == "" {
		return MissingArgument("role name")
	}
	for i, r := range u.roles {
		if r == roleName {
			u.roles = append(u.roles[:i], u.roles[i+1:]...)
			break
		}
	}
	return nil
}

// UserState is the flat, persistence-facing view of a user.
type UserState struct {
	ID                 string
	UserName           string
	NormalizedUserName string
	PasswordHash       string
	SecurityStamp      string
	AccessFailedCount  int
	CreatedOn          time.Time
	DeleteOn           *time.Time
	LockoutEndOn       *time.Time
	LockoutEnabled     bool
	Claims             []Claim
	Logins             []Login
	Roles              []string
	Profiles           map[string]bson.RawValue
}

// State exports the user for persistence. Slices and maps are copies.
func (u *User) State() UserState {
	s := UserState{
		ID:                 u.id,
		UserName:           u.userName,
		NormalizedUserName: u.normalizedUserName,
		PasswordHash:       u.passwordHash,
		SecurityStamp:      u.securityStamp,
		AccessFailedCount:  u.accessFailedCount,
		CreatedOn:          u.createdOn.Instant(),
		DeleteOn:           instantPtr(u.deleteOn),
		LockoutEndOn:       instantPtr(u.lockoutEndOn),
		LockoutEnabled:     u.lockoutEnabled,
		Claims:             u.Claims(),
		Logins:             u.Logins(),
		Roles:              u.Roles(),
		Profiles:           make(map[string]bson.RawValue, len(u.profiles)),
	}
	for k, v := range u.profiles {
		s.Profiles[k] = v
	}
	return s
}

// RestoreUser rebuilds a user from persisted state.
func RestoreUser(s UserState) (*User, error) {
	if s.ID == "" {
		return nil, MissingArgument("user id")
	}
	if s.UserName == "" {
		return nil, MissingArgument("user name")
	}
	if s.AccessFailedCount < 0 {
		return nil, WrapError(ErrCodeInvalid, "invalid argument", errNegativeCount)
	}
	u := &User{
		id:                 s.ID,
		userName:           s.UserName,
		normalizedUserName: s.NormalizedUserName,
		passwordHash:       s.PasswordHash,
		securityStamp:      s.SecurityStamp,
		accessFailedCount:  s.AccessFailedCount,
		createdOn:          OccurrenceAt(s.CreatedOn),
		deleteOn:           occurrenceFrom(s.DeleteOn),
		lockoutEndOn:       occurrenceFrom(s.LockoutEndOn),
		lockoutEnabled:     s.LockoutEnabled,
	}
	for _, c := range s.Claims {
		if c.validate() == nil {
			u.claims = append(u.claims, c)
		}
	}
	for _, l := range s.Logins {
		if l.Key().validate() == nil && !u.HasLogin(l.Key()) {
			u.logins = append(u.logins, l)
		}
	}
	for _, r := range s.Roles {
		if r != "" {
			u.roles = append(u.roles, r)
		}
	}
	if len(s.Profiles) > 0 {
		u.profiles = make(map[string]bson.RawValue, len(s.Profiles))
		for k, v := range s.Profiles {
			u.profiles[k] = v
		}
	}
	return u, nil
}

func instantPtr(o *Occurrence) *time.Time {
	if o == nil {
		return nil
	}
	t := o.Instant()
	return &t
}

func occurrenceFrom(t *time.Time) *Occurrence {
	if t == nil {
		return nil
	}
	o := OccurrenceAt(*t)
	return &o
}
