// Package navigation derives what an authenticated identity may see and do.
// Nothing here is cached: every call reads the role of the identity it is given.
package navigation

import (
	"github.com/chama-dev/chama/backend/internal/domain"
	"github.com/chama-dev/chama/backend/internal/session"
)

// For returns the ordered navigation entries for the identity's role.
func For(identity domain.Identity) ([]domain.NavigationEntry, error) {
	return domain.CapabilitiesFor(identity.Role)
}

// ForSession derives navigation from whoever is logged in right now.
// An anonymous session gets an empty list.
func ForSession(s *session.Context) ([]domain.NavigationEntry, error) {
	identity, ok := s.CurrentIdentity()
	if !ok {
		return []domain.NavigationEntry{}, nil
	}
	return For(identity)
}

// Allowed reports whether the current identity of s holds the capability.
func Allowed(s *session.Context, c domain.Capability) bool {
	identity, ok := s.CurrentIdentity()
	if !ok {
		return false
	}
	return identity.Role.Allows(c)
}
