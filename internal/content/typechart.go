package content

// typeChart lists only the non-neutral matchups: attacking -> defending -> multiplier.
var typeChart = map[Type]map[Type]float64{
	TypeNormal:   {TypeRock: 0.5, TypeSteel: 0.5, TypeGhost: 0},
	TypeFire:     {TypeGrass: 2, TypeIce: 2, TypeBug: 2, TypeSteel: 2, TypeFire: 0.5, TypeWater: 0.5, TypeRock: 0.5, TypeDragon: 0.5},
	TypeWater:    {TypeFire: 2, TypeGround: 2, TypeRock: 2, TypeWater: 0.5, TypeGrass: 0.5, TypeDragon: 0.5},
	TypeElectric: {TypeWater: 2, TypeFlying: 2, TypeElectric: 0.5, TypeGrass: 0.5, TypeDragon: 0.5, TypeGround: 0},
	TypeGrass: {
		TypeWater: 2, TypeGround: 2, TypeRock: 2,
		TypeFire: 0.5, TypeGrass: 0.5, TypePoison: 0.5, TypeFlying: 0.5, TypeBug: 0.5, TypeDragon: 0.5, TypeSteel: 0.5,
	},
	TypeIce: {TypeGrass: 2, TypeGround: 2, TypeFlying: 2, TypeDragon: 2, TypeFire: 0.5, TypeWater: 0.5, TypeIce: 0.5, TypeSteel: 0.5},
	TypeFighting: {
		TypeNormal: 2, TypeIce: 2, TypeRock: 2, TypeDark: 2, TypeSteel: 2,
		TypePoison: 0.5, TypeFlying: 0.5, TypePsychic: 0.5, TypeBug: 0.5, TypeFairy: 0.5, TypeGhost: 0,
	},
	TypePoison:  {TypeGrass: 2, TypeFairy: 2, TypePoison: 0.5, TypeGround: 0.5, TypeRock: 0.5, TypeGhost: 0.5, TypeSteel: 0},
	TypeGround:  {TypeFire: 2, TypeElectric: 2, TypePoison: 2, TypeRock: 2, TypeSteel: 2, TypeGrass: 0.5, TypeBug: 0.5, TypeFlying: 0},
	TypeFlying:  {TypeGrass: 2, TypeFighting: 2, TypeBug: 2, TypeElectric: 0.5, TypeRock: 0.5, TypeSteel: 0.5},
	TypePsychic: {TypeFighting: 2, TypePoison: 2, TypePsychic: 0.5, TypeSteel: 0.5, TypeDark: 0},
	TypeBug: {
		TypeGrass: 2, TypePsychic: 2, TypeDark: 2,
		TypeFire: 0.5, TypeFighting: 0.5, TypePoison: 0.5, TypeFlying: 0.5, TypeGhost: 0.5, TypeSteel: 0.5, TypeFairy: 0.5,
	},
	TypeRock:  {TypeFire: 2, TypeIce: 2, TypeFlying: 2, TypeBug: 2, TypeFighting: 0.5, TypeGround: 0.5, TypeSteel: 0.5},
	TypeGhost: {TypePsychic: 2, TypeGhost: 2, TypeDark: 0.5, TypeNormal: 0},
	TypeDragon: {TypeDragon: 2, TypeSteel: 0.5, TypeFairy: 0},
	TypeDark:   {TypePsychic: 2, TypeGhost: 2, TypeFighting: 0.5, TypeDark: 0.5, TypeFairy: 0.5},
	TypeSteel:  {TypeIce: 2, TypeRock: 2, TypeFairy: 2, TypeFire: 0.5, TypeWater: 0.5, TypeElectric: 0.5, TypeSteel: 0.5},
	TypeFairy:  {TypeFighting: 2, TypeDragon: 2, TypeDark: 2, TypeFire: 0.5, TypePoison: 0.5, TypeSteel: 0.5},
}

// Effectiveness returns the combined multiplier of an attacking type against
// a defending type set. Unknown types on either side are neutral.
func Effectiveness(attacking Type, defending []Type) float64 {
	row := typeChart[attacking]
	multiplier := 1.0
	for _, t := range defending {
		if m, ok := row[t]; ok {
			multiplier *= m
		}
	}
	return multiplier
}

// AllTypes returns every elemental type in chart order
func AllTypes() []Type {
	return []Type{
		TypeNormal, TypeFire, TypeWater, TypeElectric, TypeGrass, TypeIce,
		TypeFighting, TypePoison, TypeGround, TypeFlying, TypePsychic, TypeBug,
		TypeRock, TypeGhost, TypeDragon, TypeDark, TypeSteel, TypeFairy,
	}
}
