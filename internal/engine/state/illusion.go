package state

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
)

// Illusion states
const (
	IllusionStateInactive = "inactive"
	IllusionStateActive   = "active"
	IllusionStateBroken   = "broken"
)

const (
	eventActivate = "activate"
	eventBreak    = "break"
)

// Disguise is the appearance snapshot copied from the donor at activation.
// Later changes to the donor do not leak into it.
type Disguise struct {
	DonorID   string         `json:"donor_id"`
	SpeciesID string         `json:"species_id"`
	Name      string         `json:"name"`
	Nickname  string         `json:"nickname,omitempty"`
	Gender    string         `json:"gender,omitempty"`
	Shiny     bool           `json:"shiny,omitempty"`
	Ball      string         `json:"ball,omitempty"`
	Types     []content.Type `json:"types"`
}

// Illusion tracks one field tenure of a disguise. It lives in the overlay, so
// a switch-out throws it away and the next entry starts inactive again.
//
//	inactive --activate--> active --break--> broken
type Illusion struct {
	machine  *fsm.FSM
	disguise *Disguise
}

// NewIllusion creates an inactive illusion
func NewIllusion() *Illusion {
	return &Illusion{
		machine: fsm.NewFSM(
			IllusionStateInactive,
			fsm.Events{
				{Name: eventActivate, Src: []string{IllusionStateInactive}, Dst: IllusionStateActive},
				{Name: eventBreak, Src: []string{IllusionStateActive}, Dst: IllusionStateBroken},
			},
			fsm.Callbacks{},
		),
	}
}

// State returns the current lifecycle state
func (i *Illusion) State() string {
	return i.machine.Current()
}

// Active reports whether a disguise is currently shown
func (i *Illusion) Active() bool {
	return i.machine.Is(IllusionStateActive)
}

// Disguise returns the shown appearance, or nil when not active
func (i *Illusion) Disguise() *Disguise {
	if !i.Active() {
		return nil
	}
	return i.disguise
}

// Activate starts the disguise. Activating twice in one tenure breaks the
// single-activation rule and is reported as an invariant error.
func (i *Illusion) Activate(ctx context.Context, d Disguise) error {
	if !i.machine.Can(eventActivate) {
		return errors.Invariantf("illusion cannot activate from state %s", i.machine.Current())
	}
	if err := i.machine.Event(ctx, eventActivate); err != nil {
		return errors.Wrap(err, "failed to activate illusion")
	}
	d.Types = append([]content.Type(nil), d.Types...)
	i.disguise = &d
	return nil
}

// Break ends an active disguise and reports whether anything changed.
// Breaking an inactive or already broken illusion does nothing.
func (i *Illusion) Break(ctx context.Context) (bool, error) {
	if !i.machine.Can(eventBreak) {
		return false, nil
	}
	if err := i.machine.Event(ctx, eventBreak); err != nil {
		return false, errors.Wrap(err, "failed to break illusion")
	}
	i.disguise = nil
	return true, nil
}
