package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityClone(t *testing.T) {
	total := 120.0
	last := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	orig := Identity{ID: "a", Role: RoleMember, TotalContributions: &total, LastContributionAt: &last}

	cp := orig.Clone()
	assert.Equal(t, orig, cp)

	*cp.TotalContributions = 1
	*cp.LastContributionAt = last.Add(time.Hour)
	assert.Equal(t, 120.0, total)
	assert.Equal(t, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), last)

	empty := Identity{ID: "b"}.Clone()
	require.Nil(t, empty.TotalContributions)
	assert.Nil(t, empty.LastContributionAt)
}
