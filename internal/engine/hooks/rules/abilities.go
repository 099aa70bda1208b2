package rules

import (
	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine/hooks"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
)

const (
	pinchThresholdDen = 3
	pinchMultiplier   = 1.5
	technicianCap     = 60
	technicianBoost   = 1.5
	swiftSwimBoost    = 2.0
	roughSkinFrac     = 8
	halvingAbility    = 0.5
	prismArmorCut     = 0.75
)

func registerAbilities(r *hooks.Registry) {
	r.RegisterAbility("illusion", func(b hooks.Binding) hooks.Handler {
		return &illusion{hooks.NewBase("ability:illusion", hooks.SourceAbility, b.Owner,
			hooks.CapSwitchIn, hooks.CapDamageTaken, hooks.CapAbilityChange)}
	})
	r.RegisterAbility("no_guard", func(b hooks.Binding) hooks.Handler {
		return &noGuard{hooks.NewBase("ability:no_guard", hooks.SourceAbility, b.Owner, hooks.CapAccuracyBypass)}
	})
	r.RegisterAbility("levitate", func(b hooks.Binding) hooks.Handler {
		return &levitate{hooks.NewBase("ability:levitate", hooks.SourceAbility, b.Owner, hooks.CapGrounded)}
	})
	r.RegisterAbility("technician", func(b hooks.Binding) hooks.Handler {
		return &technician{hooks.NewBase("ability:technician", hooks.SourceAbility, b.Owner, hooks.CapPower)}
	})
	r.RegisterAbility("prankster", func(b hooks.Binding) hooks.Handler {
		return &prankster{hooks.NewBase("ability:prankster", hooks.SourceAbility, b.Owner, hooks.CapPriority)}
	})
	r.RegisterAbility("swift_swim", func(b hooks.Binding) hooks.Handler {
		return &swiftSwim{hooks.NewBase("ability:swift_swim", hooks.SourceAbility, b.Owner, hooks.CapSpeed)}
	})
	r.RegisterAbility("rough_skin", func(b hooks.Binding) hooks.Handler {
		return &roughSkin{hooks.NewBase("ability:rough_skin", hooks.SourceAbility, b.Owner, hooks.CapDamageTaken)}
	})
	r.RegisterAbility("intimidate", func(b hooks.Binding) hooks.Handler {
		return &intimidate{hooks.NewBase("ability:intimidate", hooks.SourceAbility, b.Owner, hooks.CapSwitchIn)}
	})
	for id, t := range map[string]content.Type{
		"blaze":    content.TypeFire,
		"overgrow": content.TypeGrass,
		"torrent":  content.TypeWater,
	} {
		r.RegisterAbility(id, func(b hooks.Binding) hooks.Handler {
			return &pinchBoost{Base: hooks.NewBase("ability:"+id, hooks.SourceAbility, b.Owner, hooks.CapPower), boosted: t}
		})
	}
	r.RegisterAbility("speed_boost", func(b hooks.Binding) hooks.Handler {
		return &speedBoost{hooks.NewBase("ability:speed_boost", hooks.SourceAbility, b.Owner, hooks.CapResidual)}
	})
	for id, w := range map[string]content.Weather{
		"drizzle":     content.WeatherRain,
		"drought":     content.WeatherSun,
		"sand_stream": content.WeatherSandstorm,
	} {
		r.RegisterAbility(id, func(b hooks.Binding) hooks.Handler {
			return &weatherSetter{Base: hooks.NewBase("ability:"+id, hooks.SourceAbility, b.Owner, hooks.CapSwitchIn), weather: w}
		})
	}
	for id, t := range map[string]content.Terrain{
		"grassy_surge":   content.TerrainGrassy,
		"electric_surge": content.TerrainElectric,
	} {
		r.RegisterAbility(id, func(b hooks.Binding) hooks.Handler {
			return &terrainSetter{Base: hooks.NewBase("ability:"+id, hooks.SourceAbility, b.Owner, hooks.CapSwitchIn), terrain: t}
		})
	}
	r.RegisterAbility("insomnia", func(b hooks.Binding) hooks.Handler {
		return &insomnia{hooks.NewBase("ability:insomnia", hooks.SourceAbility, b.Owner, hooks.CapStatusBlock)}
	})
	r.RegisterAbility("thick_fat", func(b hooks.Binding) hooks.Handler {
		return &thickFat{hooks.NewBase("ability:thick_fat", hooks.SourceAbility, b.Owner, hooks.CapDamage)}
	})
	r.RegisterAbility("multiscale", func(b hooks.Binding) hooks.Handler {
		return &multiscale{hooks.NewBase("ability:multiscale", hooks.SourceAbility, b.Owner, hooks.CapDamage)}
	})
	r.RegisterAbility("prism_armor", func(b hooks.Binding) hooks.Handler {
		return &prismArmor{hooks.NewBase("ability:prism_armor", hooks.SourceAbility, b.Owner, hooks.CapDamage)}
	})
}

// illusion disguises its owner as a party member on entry and drops the
// disguise on a direct hit or when the ability is about to change.
type illusion struct{ hooks.Base }

func (h *illusion) OnSwitchIn(env hooks.Env, entrant *state.Combatant) []state.Effect {
	if !isOwner(h, entrant) || entrant.IllusionState() != state.IllusionStateInactive {
		return nil
	}
	donor := pickDonor(env.View, entrant)
	if donor == nil {
		return nil
	}
	return []state.Effect{state.IllusionActivated{Target: entrant.ID(), Donor: state.DisguiseFrom(donor)}}
}

// pickDonor chooses the last other party member that can still battle,
// falling back to the last other member at all
func pickDonor(view state.View, c *state.Combatant) *state.Combatant {
	party := view.Sides()[c.Side()].Party()
	var fallback *state.Combatant
	for i := len(party) - 1; i >= 0; i-- {
		m := party[i]
		if m.ID() == c.ID() {
			continue
		}
		if m.CanBattle() {
			return m
		}
		if fallback == nil {
			fallback = m
		}
	}
	return fallback
}

func (h *illusion) OnDamageTaken(_ hooks.MoveContext, dmg state.Damage) []state.Effect {
	if dmg.Target != h.Owner() || !dmg.Direct {
		return nil
	}
	return []state.Effect{state.IllusionBroken{Target: h.Owner(), Reason: state.BreakDirectHit}}
}

func (h *illusion) OnAbilityChange(_ hooks.Env, change hooks.AbilityChange) []state.Effect {
	if !isOwner(h, change.Target) {
		return nil
	}
	reason := state.BreakAbility
	if change.Suppressed {
		reason = state.BreakSuppressed
	}
	return []state.Effect{state.IllusionBroken{Target: h.Owner(), Reason: reason}}
}

type noGuard struct{ hooks.Base }

func (h *noGuard) BypassAccuracy(mc hooks.MoveContext) bool {
	return mc.AttackerOwns(h) || mc.TargetOwns(h)
}

type levitate struct{ hooks.Base }

func (h *levitate) Ungrounded(_ hooks.Env, c *state.Combatant) bool {
	return isOwner(h, c)
}

type technician struct{ hooks.Base }

func (h *technician) ModifyPower(mc hooks.MoveContext) (hooks.Step, bool) {
	if mc.AttackerOwns(h) && mc.Move.Power <= technicianCap {
		return hooks.Mul(h.ID(), technicianBoost), true
	}
	return hooks.Step{}, false
}

type prankster struct{ hooks.Base }

func (h *prankster) ModifyPriority(_ hooks.Env, c *state.Combatant, move *content.Move) int {
	if isOwner(h, c) && move != nil && move.Category == content.CategoryStatus {
		return 1
	}
	return 0
}

type swiftSwim struct{ hooks.Base }

func (h *swiftSwim) ModifySpeed(env hooks.Env, c *state.Combatant) (hooks.Step, bool) {
	if isOwner(h, c) && env.View.Field().Weather == content.WeatherRain {
		return hooks.Mul(h.ID(), swiftSwimBoost), true
	}
	return hooks.Step{}, false
}

type roughSkin struct{ hooks.Base }

func (h *roughSkin) OnDamageTaken(mc hooks.MoveContext, dmg state.Damage) []state.Effect {
	if dmg.Target != h.Owner() || !dmg.Direct || !mc.Move.HasFlag(content.FlagContact) || mc.Attacker.Fainted() {
		return nil
	}
	return []state.Effect{state.Damage{
		Target: mc.Attacker.ID(),
		Amount: hooks.Fraction(mc.Attacker.MaxHP(), 1, roughSkinFrac),
		Cause:  h.ID(),
		Source: h.Owner(),
	}}
}

type intimidate struct{ hooks.Base }

func (h *intimidate) OnSwitchIn(env hooks.Env, entrant *state.Combatant) []state.Effect {
	if !isOwner(h, entrant) {
		return nil
	}
	var out []state.Effect
	for _, foe := range env.View.Foes(entrant) {
		out = append(out, state.StageChanged{Target: foe.ID(), Stat: content.StatAttack, Delta: -1})
	}
	return out
}

type pinchBoost struct {
	hooks.Base
	boosted content.Type
}

func (h *pinchBoost) ModifyPower(mc hooks.MoveContext) (hooks.Step, bool) {
	if mc.AttackerOwns(h) && mc.Move.Type == h.boosted && mc.Attacker.HP()*pinchThresholdDen <= mc.Attacker.MaxHP() {
		return hooks.Mul(h.ID(), pinchMultiplier), true
	}
	return hooks.Step{}, false
}

type speedBoost struct{ hooks.Base }

func (h *speedBoost) Unit() hooks.ResidualUnit { return hooks.UnitAbility }

func (h *speedBoost) Residual(env hooks.Env) []state.Effect {
	c, ok := owner(env, h)
	if !ok || c.EnteredOn() >= env.View.Turn() {
		return nil
	}
	return []state.Effect{state.StageChanged{Target: c.ID(), Stat: content.StatSpeed, Delta: 1}}
}

type weatherSetter struct {
	hooks.Base
	weather content.Weather
}

func (h *weatherSetter) OnSwitchIn(env hooks.Env, entrant *state.Combatant) []state.Effect {
	if !isOwner(h, entrant) {
		return nil
	}
	return []state.Effect{state.WeatherChanged{Weather: h.weather, Turns: state.DefaultFieldTurns}}
}

type terrainSetter struct {
	hooks.Base
	terrain content.Terrain
}

func (h *terrainSetter) OnSwitchIn(env hooks.Env, entrant *state.Combatant) []state.Effect {
	if !isOwner(h, entrant) {
		return nil
	}
	return []state.Effect{state.TerrainChanged{Terrain: h.terrain, Turns: state.DefaultFieldTurns}}
}

type insomnia struct{ hooks.Base }

func (h *insomnia) BlocksStatus(_ hooks.Env, target *state.Combatant, status content.Status) bool {
	return isOwner(h, target) && status == content.StatusSleep
}

type thickFat struct{ hooks.Base }

func (h *thickFat) ModifyDamage(mc hooks.MoveContext) (hooks.Step, bool) {
	if mc.TargetOwns(h) && (mc.Move.Type == content.TypeFire || mc.Move.Type == content.TypeIce) {
		return hooks.Mul(h.ID(), halvingAbility), true
	}
	return hooks.Step{}, false
}

type multiscale struct{ hooks.Base }

func (h *multiscale) ModifyDamage(mc hooks.MoveContext) (hooks.Step, bool) {
	if mc.TargetOwns(h) && mc.Target.HP() == mc.Target.MaxHP() {
		return hooks.Mul(h.ID(), halvingAbility), true
	}
	return hooks.Step{}, false
}

type prismArmor struct{ hooks.Base }

func (h *prismArmor) ModifyDamage(mc hooks.MoveContext) (hooks.Step, bool) {
	if mc.TargetOwns(h) && mc.Effectiveness > 1 {
		return hooks.Mul(h.ID(), prismArmorCut), true
	}
	return hooks.Step{}, false
}
