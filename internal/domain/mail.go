package domain

const MailTypeOfficerInvitation = "officer_invitation"

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type OfficerInvitationMailData struct {
	FullName      string `json:"fullName"`
	Role          Role   `json:"role"`
	ActivationURL string `json:"activationURL"`
	Expiration    int    `json:"expiration"` // days
}

// Invitation is what an activation token resolves to.
type Invitation struct {
	Token   string `json:"token"`
	GroupID string `json:"groupID"`
	Role    Role   `json:"role"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}
