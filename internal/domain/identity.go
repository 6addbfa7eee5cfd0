package domain

import (
	"time"
)

type Identity struct {
	ID                 string     `json:"id"`
	GroupID            string     `json:"groupID"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Role               Role       `json:"role"`
	TotalContributions *float64   `json:"totalContributions,omitempty"`
	LastContributionAt *time.Time `json:"lastContribution,omitempty"`
	CreatedAt          time.Time  `json:"joinedAt"`
	Version            int32      `json:"-"`
}

// Clone returns a copy that shares no memory with i.
func (i Identity) Clone() Identity {
	out := i
	if i.TotalContributions != nil {
		total := *i.TotalContributions
		out.TotalContributions = &total
	}
	if i.LastContributionAt != nil {
		last := *i.LastContributionAt
		out.LastContributionAt = &last
	}
	return out
}
