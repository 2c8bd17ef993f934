package auth

import (
	"mbs-hub/internal/config"
	"mbs-hub/internal/data"
)

// OwnerPolicy grants the admin role to the configured owner identity.
type OwnerPolicy struct {
	OwnerOpenID string
}

var _ data.RolePolicy = OwnerPolicy{}

// NewOwnerPolicy creates an OwnerPolicy from cfg.
func NewOwnerPolicy(cfg config.OwnerConfig) OwnerPolicy {
	return OwnerPolicy{OwnerOpenID: cfg.OpenID}
}

// ResolveRole returns admin for the owner regardless of requested, and
// requested for everyone else. A nil result leaves the stored role alone.
func (p OwnerPolicy) ResolveRole(openID string, requested *data.Role) *data.Role {
	if p.OwnerOpenID != "" && openID == p.OwnerOpenID {
		admin := data.RoleAdmin
		return &admin
	}
	return requested
}
