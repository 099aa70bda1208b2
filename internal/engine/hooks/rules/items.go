package rules

import (
	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine/hooks"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
)

const (
	wideLensPerStack  = 1.1
	leftoversFrac     = 16
	sitrusHealFrac    = 4
	sitrusThreshold   = 2
	lifeOrbBoost      = 1.3
	lifeOrbRecoilFrac = 10
	choiceScarfBoost  = 1.5
)

func registerItems(r *hooks.Registry) {
	r.RegisterItem("wide_lens", func(b hooks.Binding) hooks.Handler {
		return &wideLens{Base: hooks.NewBase("item:wide_lens", hooks.SourceItem, b.Owner, hooks.CapAccuracy), stacks: max(1, b.Count)}
	})
	r.RegisterItem("leftovers", func(b hooks.Binding) hooks.Handler {
		return &leftovers{hooks.NewBase("item:leftovers", hooks.SourceItem, b.Owner, hooks.CapResidual)}
	})
	r.RegisterItem("sitrus_berry", func(b hooks.Binding) hooks.Handler {
		return &sitrusBerry{hooks.NewBase("item:sitrus_berry", hooks.SourceItem, b.Owner, hooks.CapResidual)}
	})
	r.RegisterItem("air_balloon", func(b hooks.Binding) hooks.Handler {
		return &airBalloon{hooks.NewBase("item:air_balloon", hooks.SourceItem, b.Owner, hooks.CapGrounded, hooks.CapDamageTaken)}
	})
	r.RegisterItem("life_orb", func(b hooks.Binding) hooks.Handler {
		return &lifeOrb{hooks.NewBase("item:life_orb", hooks.SourceItem, b.Owner, hooks.CapDamage, hooks.CapHitDealt)}
	})
	r.RegisterItem("choice_scarf", func(b hooks.Binding) hooks.Handler {
		return &choiceScarf{hooks.NewBase("item:choice_scarf", hooks.SourceItem, b.Owner, hooks.CapSpeed)}
	})
}

type wideLens struct {
	hooks.Base
	stacks int
}

func (h *wideLens) ModifyAccuracy(mc hooks.MoveContext) (hooks.Step, bool) {
	if !mc.AttackerOwns(h) {
		return hooks.Step{}, false
	}
	m := 1.0
	for range h.stacks {
		m *= wideLensPerStack
	}
	return hooks.Mul(h.ID(), m), true
}

type leftovers struct{ hooks.Base }

func (h *leftovers) Unit() hooks.ResidualUnit { return hooks.UnitItem }

func (h *leftovers) Residual(env hooks.Env) []state.Effect {
	c, ok := owner(env, h)
	if !ok || c.HP() >= c.MaxHP() {
		return nil
	}
	return []state.Effect{state.Heal{Target: c.ID(), Amount: hooks.Fraction(c.MaxHP(), 1, leftoversFrac), Cause: h.ID()}}
}

type sitrusBerry struct{ hooks.Base }

func (h *sitrusBerry) Unit() hooks.ResidualUnit { return hooks.UnitBerry }

func (h *sitrusBerry) Residual(env hooks.Env) []state.Effect {
	c, ok := owner(env, h)
	if !ok || c.HP()*sitrusThreshold > c.MaxHP() {
		return nil
	}
	return []state.Effect{
		state.Heal{Target: c.ID(), Amount: hooks.Fraction(c.MaxHP(), 1, sitrusHealFrac), Cause: h.ID()},
		state.ItemConsumed{Target: c.ID(), Item: "sitrus_berry"},
	}
}

type airBalloon struct{ hooks.Base }

func (h *airBalloon) Ungrounded(_ hooks.Env, c *state.Combatant) bool {
	return isOwner(h, c)
}

func (h *airBalloon) OnDamageTaken(_ hooks.MoveContext, dmg state.Damage) []state.Effect {
	if dmg.Target != h.Owner() || !dmg.Direct {
		return nil
	}
	return []state.Effect{state.ItemConsumed{Target: h.Owner(), Item: "air_balloon"}}
}

type lifeOrb struct{ hooks.Base }

func (h *lifeOrb) ModifyDamage(mc hooks.MoveContext) (hooks.Step, bool) {
	if mc.AttackerOwns(h) && mc.Move.Category != content.CategoryStatus {
		return hooks.Mul(h.ID(), lifeOrbBoost), true
	}
	return hooks.Step{}, false
}

func (h *lifeOrb) OnHitDealt(mc hooks.MoveContext, _ state.Damage) []state.Effect {
	if !mc.AttackerOwns(h) || mc.Attacker.Fainted() {
		return nil
	}
	return []state.Effect{state.Damage{
		Target: mc.Attacker.ID(),
		Amount: hooks.Fraction(mc.Attacker.MaxHP(), 1, lifeOrbRecoilFrac),
		Cause:  h.ID(),
	}}
}

type choiceScarf struct{ hooks.Base }

func (h *choiceScarf) ModifySpeed(_ hooks.Env, c *state.Combatant) (hooks.Step, bool) {
	if isOwner(h, c) {
		return hooks.Mul(h.ID(), choiceScarfBoost), true
	}
	return hooks.Step{}, false
}
