package monitor

import "time"

type Status struct {
	MongoDB   bool      `json:"mongodb"`
	UserStore bool      `json:"user_store"`
	RoleStore bool      `json:"role_store"`
	LastCheck time.Time `json:"last_check"`
}

// Healthy is true only when the database answers and both stores have their indexes.
func (s Status) Healthy() bool {
	return s.MongoDB && s.UserStore && s.RoleStore
}
