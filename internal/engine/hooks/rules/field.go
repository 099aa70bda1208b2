package rules

import (
	"github.com/KirkDiggler/rpg-battle/internal/content"
	"github.com/KirkDiggler/rpg-battle/internal/engine/hooks"
	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
)

// Multipliers used by field conditions
const (
	terrainBoost       = 1.3
	groundShakingCut   = 0.5
	weatherBoost       = 1.5
	weatherCut         = 0.5
	burnPhysicalCut    = 0.5
	paralysisSpeedCut  = 0.5
	residualSixteenth  = 16
	poisonResidualFrac = 8
)

func registerField(r *hooks.Registry) {
	r.RegisterTerrain(content.TerrainGrassy, func(hooks.Binding) hooks.Handler {
		return &grassyTerrain{hooks.NewBase("terrain:grassy", hooks.SourceField, "", hooks.CapPower, hooks.CapResidual)}
	})
	r.RegisterTerrain(content.TerrainElectric, func(hooks.Binding) hooks.Handler {
		return &electricTerrain{hooks.NewBase("terrain:electric", hooks.SourceField, "", hooks.CapPower, hooks.CapStatusBlock)}
	})
	r.RegisterWeather(content.WeatherRain, func(hooks.Binding) hooks.Handler {
		return &typeWeather{
			Base:    hooks.NewBase("weather:rain", hooks.SourceField, "", hooks.CapPower),
			boosted: content.TypeWater,
			cut:     content.TypeFire,
		}
	})
	r.RegisterWeather(content.WeatherSun, func(hooks.Binding) hooks.Handler {
		return &typeWeather{
			Base:    hooks.NewBase("weather:sun", hooks.SourceField, "", hooks.CapPower),
			boosted: content.TypeFire,
			cut:     content.TypeWater,
		}
	})
	r.RegisterWeather(content.WeatherSandstorm, func(hooks.Binding) hooks.Handler {
		return &sandstorm{hooks.NewBase("weather:sandstorm", hooks.SourceField, "", hooks.CapResidual)}
	})
	r.RegisterStatus(content.StatusBurn, func(b hooks.Binding) hooks.Handler {
		return &burn{hooks.NewBase("status:burn", hooks.SourceField, b.Owner, hooks.CapDamage, hooks.CapResidual)}
	})
	r.RegisterStatus(content.StatusPoison, func(b hooks.Binding) hooks.Handler {
		return &poison{hooks.NewBase("status:poison", hooks.SourceField, b.Owner, hooks.CapResidual)}
	})
	r.RegisterStatus(content.StatusParalysis, func(b hooks.Binding) hooks.Handler {
		return &paralysis{hooks.NewBase("status:paralysis", hooks.SourceField, b.Owner, hooks.CapSpeed)}
	})
}

// grassyTerrain softens ground-shaking moves against grounded targets,
// boosts grass moves from grounded attackers and heals the grounded.
type grassyTerrain struct{ hooks.Base }

func (h *grassyTerrain) ModifyPower(mc hooks.MoveContext) (hooks.Step, bool) {
	if mc.Move.HasFlag(content.FlagGroundShaking) && mc.Target != nil && mc.Query.Grounded(mc.Target) {
		return hooks.Mul(h.ID(), groundShakingCut), true
	}
	if mc.Move.Type == content.TypeGrass && mc.Query.Grounded(mc.Attacker) {
		return hooks.Mul(h.ID(), terrainBoost), true
	}
	return hooks.Step{}, false
}

func (h *grassyTerrain) Unit() hooks.ResidualUnit { return hooks.UnitTerrain }

func (h *grassyTerrain) Residual(env hooks.Env) []state.Effect {
	var out []state.Effect
	for _, c := range env.View.Active() {
		if c.Fainted() || c.HP() >= c.MaxHP() || !env.Query.Grounded(c) {
			continue
		}
		out = append(out, state.Heal{
			Target: c.ID(),
			Amount: hooks.Fraction(c.MaxHP(), 1, residualSixteenth),
			Cause:  h.ID(),
		})
	}
	return out
}

type electricTerrain struct{ hooks.Base }

func (h *electricTerrain) ModifyPower(mc hooks.MoveContext) (hooks.Step, bool) {
	if mc.Move.Type == content.TypeElectric && mc.Query.Grounded(mc.Attacker) {
		return hooks.Mul(h.ID(), terrainBoost), true
	}
	return hooks.Step{}, false
}

func (h *electricTerrain) BlocksStatus(env hooks.Env, target *state.Combatant, status content.Status) bool {
	return status == content.StatusSleep && env.Query.Grounded(target)
}

type typeWeather struct {
	hooks.Base
	boosted content.Type
	cut     content.Type
}

func (h *typeWeather) ModifyPower(mc hooks.MoveContext) (hooks.Step, bool) {
	switch mc.Move.Type {
	case h.boosted:
		return hooks.Mul(h.ID(), weatherBoost), true
	case h.cut:
		return hooks.Mul(h.ID(), weatherCut), true
	}
	return hooks.Step{}, false
}

type sandstorm struct{ hooks.Base }

func (h *sandstorm) Unit() hooks.ResidualUnit { return hooks.UnitWeather }

func (h *sandstorm) Residual(env hooks.Env) []state.Effect {
	var out []state.Effect
	for _, c := range env.View.Active() {
		if c.Fainted() {
			continue
		}
		types := c.Types()
		if content.HasType(types, content.TypeRock) || content.HasType(types, content.TypeGround) || content.HasType(types, content.TypeSteel) {
			continue
		}
		out = append(out, state.Damage{
			Target: c.ID(),
			Amount: hooks.Fraction(c.MaxHP(), 1, residualSixteenth),
			Cause:  h.ID(),
		})
	}
	return out
}

type burn struct{ hooks.Base }

func (h *burn) ModifyDamage(mc hooks.MoveContext) (hooks.Step, bool) {
	if mc.AttackerOwns(h) && mc.Move.Category == content.CategoryPhysical {
		return hooks.Mul(h.ID(), burnPhysicalCut), true
	}
	return hooks.Step{}, false
}

func (h *burn) Unit() hooks.ResidualUnit { return hooks.UnitStatus }

func (h *burn) Residual(env hooks.Env) []state.Effect {
	c, ok := owner(env, h)
	if !ok {
		return nil
	}
	return []state.Effect{state.Damage{Target: c.ID(), Amount: hooks.Fraction(c.MaxHP(), 1, residualSixteenth), Cause: h.ID()}}
}

type poison struct{ hooks.Base }

func (h *poison) Unit() hooks.ResidualUnit { return hooks.UnitStatus }

func (h *poison) Residual(env hooks.Env) []state.Effect {
	c, ok := owner(env, h)
	if !ok {
		return nil
	}
	return []state.Effect{state.Damage{Target: c.ID(), Amount: hooks.Fraction(c.MaxHP(), 1, poisonResidualFrac), Cause: h.ID()}}
}

type paralysis struct{ hooks.Base }

func (h *paralysis) ModifySpeed(_ hooks.Env, c *state.Combatant) (hooks.Step, bool) {
	if isOwner(h, c) {
		return hooks.Mul(h.ID(), paralysisSpeedCut), true
	}
	return hooks.Step{}, false
}
