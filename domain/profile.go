package domain

import (
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
)

// SetProfile stores an application-defined payload under key, replacing any
// previous value. The payload is encoded to BSON immediately, so later
// changes to value are not observed.
func (u *User) SetProfile(key string, value any) error {
	if key == "" {
		return MissingArgument("profile key")
	}
	if value == nil {
		return MissingArgument("profile value")
	}
	t, data, err := bson.MarshalValue(value)
	if err != nil {
		return WrapError(ErrCodeInvalid, "invalid argument", fmt.Errorf("encode profile %q: %w", key, err))
	}
	if u.profiles == nil {
		u.profiles = make(map[string]bson.RawValue)
	}
	u.profiles[key] = bson.RawValue{Type: t, Value: data}
	return nil
}

// RemoveProfile drops the payload stored under key, if any.
func (u *User) RemoveProfile(key string) {
	delete(u.profiles, key)
}

// ProfileKeys lists stored profile keys in lexical order.
func (u *User) ProfileKeys() []string {
	keys := make([]string, 0, len(u.profiles))
	for k := range u.profiles {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// GetProfile decodes the payload stored under key into T. An absent key
// yields the zero value and no error; a payload that cannot be decoded
// into T yields the zero value and ErrProfileType.
func GetProfile[T any](u *User, key string) (T, error) {
	var out T
	if u == nil {
		return out, MissingArgument("user")
	}
	raw, ok := u.profiles[key]
	if !ok {
		return out, nil
	}
	if err := raw.Unmarshal(&out); err != nil {
		var zero T
		return zero, WrapError(ErrCodeInvalidState, ErrProfileType.Message, fmt.Errorf("profile %q: %w", key, err))
	}
	return out, nil
}
