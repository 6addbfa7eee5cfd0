package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilitiesFor_ContainsMemberSet(t *testing.T) {
	base, err := CapabilitiesFor(RoleMember)
	require.NoError(t, err)
	require.Len(t, base, 6)

	for _, role := range Roles {
		t.Run(string(role), func(t *testing.T) {
			entries, err := CapabilitiesFor(role)
			require.NoError(t, err)
			assert.Subset(t, entries, base)
			// base set comes first and keeps its order
			assert.Equal(t, base, entries[:len(base)])
		})
	}
}

func TestCapabilitiesFor_ManageMemberDirectory(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleMember, false},
		{RoleSecretary, true},
		{RoleChairman, true},
		{RoleTreasurer, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Allows(CapabilityManageMemberDirectory))
			assert.True(t, tt.role.Allows(CapabilityDashboard))
		})
	}
}

func TestCapabilitiesFor_IsPure(t *testing.T) {
	first, err := CapabilitiesFor(RoleChairman)
	require.NoError(t, err)

	first[0].Label = "changed"

	second, err := CapabilitiesFor(RoleChairman)
	require.NoError(t, err)
	third, err := CapabilitiesFor(RoleChairman)
	require.NoError(t, err)

	assert.Equal(t, "Dashboard", second[0].Label)
	assert.Equal(t, second, third)
}

func TestCapabilitiesFor_RejectsUnknownRole(t *testing.T) {
	for _, role := range []Role{"", "admin", "Member"} {
		entries, err := CapabilitiesFor(role)
		assert.Nil(t, entries)

		var roleErr *InvalidRoleError
		require.True(t, errors.As(err, &roleErr))
		assert.Equal(t, string(role), roleErr.Role)
		assert.False(t, role.Allows(CapabilityDashboard))
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("treasurer")
	require.NoError(t, err)
	assert.Equal(t, RoleTreasurer, role)

	_, err = ParseRole("superuser")
	var roleErr *InvalidRoleError
	assert.ErrorAs(t, err, &roleErr)
}

func TestGroup_PendingSlots(t *testing.T) {
	g := &Group{
		Secretary: OfficerSlot{Role: RoleSecretary, Email: "s@x.com", Status: SlotPendingActivation},
		Treasurer: OfficerSlot{Role: RoleTreasurer, Email: "t@x.com", Status: SlotActivated},
	}

	slots := g.PendingSlots()
	require.Len(t, slots, 1)
	assert.Equal(t, RoleSecretary, slots[0].Role)
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewID()
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
