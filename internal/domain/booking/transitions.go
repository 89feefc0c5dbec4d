package booking

import "github.com/BruksfildServices01/barber-booking/internal/httperr"

// Transition is one legal edge of the booking lifecycle and the parties
// allowed to take it.
type Transition struct {
	From    Status
	To      Status
	Parties []Party
}

var transitions = []Transition{
	{StatusPending, StatusConfirmed, []Party{PartyProvider, PartyShopOwner, PartyAdmin}},
	{StatusPending, StatusRejected, []Party{PartyProvider, PartyShopOwner, PartyAdmin}},
	{StatusPending, StatusCancelled, []Party{PartyCustomer, PartyProvider, PartyShopOwner, PartyAdmin}},
	{StatusPending, StatusReassigned, []Party{PartyShopOwner}},
	// only the newly assigned provider, who is the assignee at this point
	{StatusReassigned, StatusConfirmed, []Party{PartyProvider}},
	{StatusConfirmed, StatusCompleted, []Party{PartyProvider, PartyShopOwner, PartyAdmin}},
	{StatusConfirmed, StatusCancelled, []Party{PartyCustomer, PartyProvider, PartyShopOwner, PartyAdmin}},
	{StatusConfirmed, StatusNoShow, []Party{PartyProvider, PartyShopOwner, PartyAdmin}},
}

// Transitions returns a copy of the lifecycle table.
func Transitions() []Transition {
	out := make([]Transition, len(transitions))
	copy(out, transitions)
	return out
}

func Lookup(from, to Status) (Transition, bool) {
	for _, t := range transitions {
		if t.From == from && t.To == to {
			return t, true
		}
	}
	return Transition{}, false
}

func (t Transition) Allows(parties []Party) bool {
	for _, p := range t.Parties {
		if hasParty(parties, p) {
			return true
		}
	}
	return false
}

// Authorize validates from -> to for an actor acting as parties.
// Unknown edges fail with invalid_transition before any role check.
func Authorize(from, to Status, parties []Party) error {
	t, ok := Lookup(from, to)
	if !ok {
		return httperr.InvalidTransition("invalid_transition")
	}
	if !t.Allows(parties) {
		return httperr.Forbidden("not_allowed")
	}
	return nil
}

// CanCreate checks the (none) -> pending edge.
func CanCreate(actor Actor) error {
	if actor.Role != RoleCustomer {
		return httperr.Forbidden("only_customers_can_book")
	}
	return nil
}
