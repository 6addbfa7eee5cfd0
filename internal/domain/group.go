package domain

import "time"

type SlotStatus string

const (
	SlotPendingActivation SlotStatus = "pending_activation"
	SlotActivated         SlotStatus = "activated"
)

// OfficerSlot is an officer position captured at registration. It has no
// credentials and becomes an Identity only once the invitee activates it.
type OfficerSlot struct {
	Role   Role       `json:"role"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Status SlotStatus `json:"status"`
}

type Group struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	AccountNo  string      `json:"accountNo"`
	DocumentID string      `json:"documentID"`
	Chairman   Identity    `json:"chairman"`
	Secretary  OfficerSlot `json:"secretary"`
	Treasurer  OfficerSlot `json:"treasurer"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// PendingSlots returns the officer slots still waiting for activation.
func (g *Group) PendingSlots() []OfficerSlot {
	slots := make([]OfficerSlot, 0, 2)
	for _, slot := range []OfficerSlot{g.Secretary, g.Treasurer} {
		if slot.Status == SlotPendingActivation {
			slots = append(slots, slot)
		}
	}
	return slots
}
