package booking

import "github.com/BruksfildServices01/barber-booking/internal/models"

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleBarber     Role = "barber"
	RoleFreelancer Role = "freelancer"
	RoleShopOwner  Role = "shopOwner"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleBarber, RoleFreelancer, RoleShopOwner, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller. ShopID is only meaningful for
// shop owners and employed barbers.
type Actor struct {
	ID     string
	Role   Role
	ShopID string
}

// Party is how an actor relates to one particular booking.
type Party string

const (
	PartyCustomer  Party = "customer"
	PartyProvider  Party = "provider"
	PartyShopOwner Party = "shopOwner"
	PartyAdmin     Party = "admin"
	PartySystem    Party = "system"
)

// PartiesOf lists every capacity in which actor may act on b.
// shopOwnerID is the owner of b's shop, or "" when unknown or not relevant.
func PartiesOf(actor Actor, b *models.Booking, shopOwnerID string) []Party {
	var parties []Party

	if actor.ID == "" {
		return parties
	}
	if actor.ID == b.CustomerID {
		parties = append(parties, PartyCustomer)
	}
	if actor.ID == b.EffectiveProviderID() {
		parties = append(parties, PartyProvider)
	}
	if actor.Role == RoleShopOwner && b.ShopID != nil && shopOwnerID != "" && actor.ID == shopOwnerID {
		parties = append(parties, PartyShopOwner)
	}
	if actor.Role == RoleAdmin {
		parties = append(parties, PartyAdmin)
	}

	return parties
}

// IsFormerProvider reports whether actor was the provider before b was
// reassigned. A former provider may read the booking but holds no party.
func IsFormerProvider(actor Actor, b *models.Booking) bool {
	return actor.ID != "" &&
		actor.ID == b.ProviderID &&
		actor.ID != b.EffectiveProviderID()
}

// ViewerOf picks the most privileged party, which decides how a booking
// is rendered. Returns "" for an unrelated actor.
func ViewerOf(parties []Party) Party {
	rank := map[Party]int{
		PartySystem:    5,
		PartyAdmin:     4,
		PartyShopOwner: 3,
		PartyProvider:  2,
		PartyCustomer:  1,
	}

	var best Party
	for _, p := range parties {
		if rank[p] > rank[best] {
			best = p
		}
	}
	return best
}

func hasParty(parties []Party, p Party) bool {
	for _, x := range parties {
		if x == p {
			return true
		}
	}
	return false
}
