package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/fastygo/identity/domain"
)

// Persisted field names, shared by documents, filters and index keys.
const (
	fieldUserName           = "userName"
	fieldNormalizedUserName = "normalizedUserName"
	fieldRoleName           = "roleName"
	fieldNormalizedRoleName = "normalizedRoleName"
	fieldClaims             = "claims"
	fieldLogins             = "logins"
	fieldRoles              = "roles"
	fieldClaimType          = "type"
	fieldClaimValue         = "value"
	fieldLoginProvider      = "loginProvider"
	fieldProviderKey        = "providerKey"
)

type claimDocument struct {
	Type  string `bson:"type"`
	Value string `bson:"value"`
}

type loginDocument struct {
	LoginProvider       string `bson:"loginProvider"`
	ProviderKey         string `bson:"providerKey"`
	ProviderDisplayName string `bson:"providerDisplayName"`
}

type userDocument struct {
	ID                 string                   `bson:"_id"`
	UserName           string                   `bson:"userName"`
	NormalizedUserName string                   `bson:"normalizedUserName,omitempty"`
	PasswordHash       *string                  `bson:"passwordHash"`
	SecurityStamp      *string                  `bson:"securityStamp"`
	AccessFailedCount  int                      `bson:"accessFailedCount"`
	CreatedOn          time.Time                `bson:"createdOn"`
	DeleteOn           *time.Time               `bson:"deleteOn"`
	LockoutEndOn       *time.Time               `bson:"lockoutEndOn"`
	IsLockoutEnabled   bool                     `bson:"isLockoutEnabled"`
	Claims             []claimDocument          `bson:"claims"`
	Logins             []loginDocument          `bson:"logins"`
	Roles              []string                 `bson:"roles"`
	Profiles           map[string]bson.RawValue `bson:"profiles"`
}

type roleDocument struct {
	ID                 string          `bson:"_id"`
	RoleName           string          `bson:"roleName"`
	NormalizedRoleName string          `bson:"normalizedRoleName,omitempty"`
	DeleteOn           *time.Time      `bson:"deleteOn"`
	Claims             []claimDocument `bson:"claims"`
}

func newUserDocument(u *domain.User) userDocument {
	s := u.State()
	doc := userDocument{
		ID:                 s.ID,
		UserName:           s.UserName,
		NormalizedUserName: s.NormalizedUserName,
		PasswordHash:       nullable(s.PasswordHash),
		SecurityStamp:      nullable(s.SecurityStamp),
		AccessFailedCount:  s.AccessFailedCount,
		CreatedOn:          s.CreatedOn,
		DeleteOn:           s.DeleteOn,
		LockoutEndOn:       s.LockoutEndOn,
		IsLockoutEnabled:   s.LockoutEnabled,
		Claims:             claimDocuments(s.Claims),
		Logins:             make([]loginDocument, 0, len(s.Logins)),
		Roles:              append(make([]string, 0, len(s.Roles)), s.Roles...),
		Profiles:           s.Profiles,
	}
	for _, l := range s.Logins {
		doc.Logins = append(doc.Logins, loginDocument(l))
	}
	return doc
}

func (d userDocument) toDomain() (*domain.User, error) {
	s := domain.UserState{
		ID:                 d.ID,
		UserName:           d.UserName,
		NormalizedUserName: d.NormalizedUserName,
		PasswordHash:       deref(d.PasswordHash),
		SecurityStamp:      deref(d.SecurityStamp),
		AccessFailedCount:  d.AccessFailedCount,
		CreatedOn:          d.CreatedOn,
		DeleteOn:           d.DeleteOn,
		LockoutEndOn:       d.LockoutEndOn,
		LockoutEnabled:     d.IsLockoutEnabled,
		Claims:             domainClaims(d.Claims),
		Roles:              d.Roles,
		Profiles:           d.Profiles,
	}
	for _, l := range d.Logins {
		s.Logins = append(s.Logins, domain.Login(l))
	}
	return domain.RestoreUser(s)
}

func newRoleDocument(r *domain.Role) roleDocument {
	s := r.State()
	return roleDocument{
		ID:                 s.ID,
		RoleName:           s.RoleName,
		NormalizedRoleName: s.NormalizedRoleName,
		DeleteOn:           s.DeleteOn,
		Claims:             claimDocuments(s.Claims),
	}
}

func (d roleDocument) toDomain() (*domain.Role, error) {
	return domain.RestoreRole(domain.RoleState{
		ID:                 d.ID,
		RoleName:           d.RoleName,
		NormalizedRoleName: d.NormalizedRoleName,
		DeleteOn:           d.DeleteOn,
		Claims:             domainClaims(d.Claims),
	})
}

func claimDocuments(claims []domain.Claim) []claimDocument {
	out := make([]claimDocument, 0, len(claims))
	for _, c := range claims {
		out = append(out, claimDocument(c))
	}
	return out
}

func domainClaims(docs []claimDocument) []domain.Claim {
	out := make([]domain.Claim, 0, len(docs))
	for _, c := range docs {
		out = append(out, domain.Claim(c))
	}
	return out
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
