package encounter

import (
	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/orchestrators/battle"
	"github.com/KirkDiggler/rpg-battle/internal/repositories/encounters"
)

// Option is a choice offered by an encounter
type Option string

// Dark Deal options
const (
	OptionAccept Option = "accept"
	OptionRefuse Option = "refuse"
)

// Reward is an item granted for taking a deal
type Reward struct {
	ItemID string `json:"item_id"`
	Count  int    `json:"count"`
}

// OfferDarkDealInput describes the run state the encounter is offered into
type OfferDarkDealInput struct {
	Wave  int
	Party []encounters.PartyMember
	// SingleType is set when a single-type challenge is active
	SingleType content.Type
}

// OfferDarkDealOutput is the offered encounter
type OfferDarkDealOutput struct {
	EncounterID  string
	Options      []Option
	CatchAllowed bool
}

// ResolveDarkDealInput picks an option for an offered encounter
type ResolveDarkDealInput struct {
	EncounterID string
	Option      Option
	// Seed for the boss battle; zero picks a fresh one
	Seed int64
}

// ResolveDarkDealOutput is the outcome. Payload, Rewards, and Battle are
// only set when the deal was accepted.
type ResolveDarkDealOutput struct {
	Status  encounters.Status
	Party   []encounters.PartyMember
	Payload *encounters.DarkDealPayload
	Rewards []Reward
	Battle  *battle.StartBattleOutput
}
