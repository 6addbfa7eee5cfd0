package domain

import "slices"

type Role string

const (
	RoleMember    Role = "member"
	RoleSecretary Role = "secretary"
	RoleChairman  Role = "chairman"
	RoleTreasurer Role = "treasurer"
)

var Roles = []Role{RoleMember, RoleSecretary, RoleChairman, RoleTreasurer}

func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", &InvalidRoleError{Role: s}
	}
	return role, nil
}

func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

type Capability string

const (
	CapabilityDashboard                Capability = "dashboard"
	CapabilityViewOwnContributions     Capability = "view-own-contributions"
	CapabilitySubmitContribution       Capability = "submit-contribution"
	CapabilityViewMemberList           Capability = "view-member-list"
	CapabilityViewOwnProfile           Capability = "view-own-profile"
	CapabilityViewDividendDistribution Capability = "view-dividend-distribution"
	CapabilityManageMemberDirectory    Capability = "manage-member-directory"
)

type NavigationEntry struct {
	Label       string     `json:"label"`
	Destination string     `json:"destination"`
	Capability  Capability `json:"capability"`
}

// baseNavigation is granted to every role. Other roles extend it, never replace it.
var baseNavigation = []NavigationEntry{
	{Label: "Dashboard", Destination: "/dashboard", Capability: CapabilityDashboard},
	{Label: "Contributions", Destination: "/member_dash_comp/contribution-list", Capability: CapabilityViewOwnContributions},
	{Label: "Contribution Form", Destination: "/member_dash_comp/contribution-form", Capability: CapabilitySubmitContribution},
	{Label: "Member List", Destination: "/member_dash_comp/member-list", Capability: CapabilityViewMemberList},
	{Label: "Member Profile", Destination: "/member_dash_comp/member-profile", Capability: CapabilityViewOwnProfile},
	{Label: "Dividend Distribution", Destination: "/dividends/distribution", Capability: CapabilityViewDividendDistribution},
}

var manageMembers = NavigationEntry{Label: "Members", Destination: "/members", Capability: CapabilityManageMemberDirectory}

var roleNavigation = map[Role][]NavigationEntry{
	RoleMember:    nil,
	RoleSecretary: {manageMembers},
	RoleChairman:  {manageMembers},
	RoleTreasurer: {manageMembers},
}

// CapabilitiesFor returns the ordered navigation entries the role grants.
// The returned slice is freshly allocated and safe to modify.
func CapabilitiesFor(role Role) ([]NavigationEntry, error) {
	additions, ok := roleNavigation[role]
	if !ok {
		return nil, &InvalidRoleError{Role: string(role)}
	}

	entries := make([]NavigationEntry, 0, len(baseNavigation)+len(additions))
	entries = append(entries, baseNavigation...)
	entries = append(entries, additions...)
	return entries, nil
}

// Allows reports whether the role grants the capability. Unknown roles grant nothing.
func (r Role) Allows(c Capability) bool {
	entries, err := CapabilitiesFor(r)
	if err != nil {
		return false
	}
	return slices.ContainsFunc(entries, func(e NavigationEntry) bool {
		return e.Capability == c
	})
}
