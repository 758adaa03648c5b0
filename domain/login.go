package domain

// LoginKey identifies an external login. The display name is not part of it.
type LoginKey struct {
	LoginProvider string
	ProviderKey   string
}

// Login is an external login attached to a user.
type Login struct {
	LoginProvider       string
	ProviderKey         string
	ProviderDisplayName string
}

// NewLogin validates and builds a login.
func NewLogin(provider, providerKey, displayName string) (Login, error) {
	l := Login{LoginProvider: provider, ProviderKey: providerKey, ProviderDisplayName: displayName}
	if err := l.Key().validate(); err != nil {
		return Login{}, err
	}
	return l, nil
}

func (l Login) Key() LoginKey {
	return LoginKey{LoginProvider: l.LoginProvider, ProviderKey: l.ProviderKey}
}

// SameAs reports whether both logins point at the same provider account.
func (l Login) SameAs(other Login) bool {
	return l.Key() == other.Key()
}

func (k LoginKey) validate() error {
	if k.LoginProvider == "" {
		return MissingArgument("login provider")
	}
	if k.ProviderKey == "" {
		return MissingArgument("provider key")
	}
	return nil
}

func indexOfLogin(logins []Login, key LoginKey) int {
	for i, existing := range logins {
		if existing.Key() == key {
			return i
		}
	}
	return -1
}
