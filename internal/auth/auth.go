// Package auth is the users directory of the CRM. Accounts are provisioned
// by the identity provider that issues access tokens; this context exposes
// who the caller is and what they may do.
// Only types and interfaces defined here should be imported by other domains.
package auth

import (
	"context"
	"slices"
	"time"

	"travel_crm_backend/platform/httpkit"

	"github.com/google/uuid"
)

// Role names carried in the access token "roles" claim.
const (
	RoleAdmin      = "admin"
	RoleSales      = "sales"
	RoleOperations = "operations"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID    uuid.UUID
	Roles []string
}

// IsAdmin reports whether the actor may act on any lead.
func (a Actor) IsAdmin() bool {
	return slices.Contains(a.Roles, RoleAdmin)
}

// ActorFromIdentity converts the request identity into an Actor.
func ActorFromIdentity(id httpkit.Identity) Actor {
	return Actor{ID: id.UserID(), Roles: id.Roles()}
}

// Profile represents user information that can be shared with other domains.
type Profile struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     *string
	Role      string
	Status    string
	PushToken *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserProvider is an interface that other domains can use to get user information.
type UserProvider interface {
	// GetUserByID returns basic user information needed by other domains.
	GetUserByID(ctx context.Context, userID uuid.UUID) (Profile, error)
}
