package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chama-dev/chama/backend/internal/domain"
)

func TestContext_StartsAnonymous(t *testing.T) {
	_, ok := New().CurrentIdentity()
	assert.False(t, ok)

	var zero Context
	_, ok = zero.CurrentIdentity()
	assert.False(t, ok)
}

func TestContext_LastLoginWins(t *testing.T) {
	a := domain.Identity{ID: "a", Email: "a@x.com", Role: domain.RoleMember}
	b := domain.Identity{ID: "b", Email: "b@x.com", Role: domain.RoleChairman}

	s := New()
	s.Login(a)
	s.Login(b)

	got, ok := s.CurrentIdentity()
	require.True(t, ok)
	assert.Equal(t, b, got)

	s.Logout()
	_, ok = s.CurrentIdentity()
	assert.False(t, ok)
}

func TestContext_LogoutAfterSingleLogin(t *testing.T) {
	s := New()
	s.Login(domain.Identity{ID: "a"})
	s.Logout()

	_, ok := s.CurrentIdentity()
	assert.False(t, ok)

	// logging out twice is harmless
	s.Logout()
	_, ok = s.CurrentIdentity()
	assert.False(t, ok)
}

func TestContext_ReturnsCopy(t *testing.T) {
	s := New()
	s.Login(domain.Identity{ID: "a", Name: "Asha"})

	got, _ := s.CurrentIdentity()
	got.Name = "changed"

	again, _ := s.CurrentIdentity()
	assert.Equal(t, "Asha", again.Name)
}

func TestContext_SnapshotSharesNoPointers(t *testing.T) {
	total := 0.0
	last := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	s := New()
	s.Login(domain.Identity{ID: "a", TotalContributions: &total, LastContributionAt: &last})

	got, _ := s.CurrentIdentity()
	*got.TotalContributions = 500
	*got.LastContributionAt = last.AddDate(1, 0, 0)

	// the caller's original is not held either
	total = 42
	last = last.AddDate(2, 0, 0)

	again, _ := s.CurrentIdentity()
	require.NotNil(t, again.TotalContributions)
	assert.Equal(t, 0.0, *again.TotalContributions)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *again.LastContributionAt)
}

func TestContext_ConcurrentAccess(t *testing.T) {
	s := New()
	identities := []domain.Identity{
		{ID: "a", Name: "A", Email: "a@x.com", Role: domain.RoleMember},
		{ID: "b", Name: "B", Email: "b@x.com", Role: domain.RoleChairman},
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Login(identities[i%2])
		}(i)
		go func() {
			defer wg.Done()
			got, ok := s.CurrentIdentity()
			if ok {
				// never a mix of the two identities
				assert.Contains(t, identities, got)
			}
		}()
	}
	wg.Wait()
}

func TestFromContext(t *testing.T) {
	s := New()
	s.Login(domain.Identity{ID: "a"})

	ctx := WithContext(context.Background(), s)
	assert.Same(t, s, FromContext(ctx))

	anon := FromContext(context.Background())
	_, ok := anon.CurrentIdentity()
	assert.False(t, ok)
}
