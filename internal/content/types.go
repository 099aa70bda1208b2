// Package content holds the static reference data a battle is fed: species,
// moves, abilities, items, the type chart and biomes. Everything here is
// immutable once loaded.
package content

// Type is an elemental type
type Type string

// Elemental types
const (
	TypeNormal   Type = "normal"
	TypeFire     Type = "fire"
	TypeWater    Type = "water"
	TypeElectric Type = "electric"
	TypeGrass    Type = "grass"
	TypeIce      Type = "ice"
	TypeFighting Type = "fighting"
	TypePoison   Type = "poison"
	TypeGround   Type = "ground"
	TypeFlying   Type = "flying"
	TypePsychic  Type = "psychic"
	TypeBug      Type = "bug"
	TypeRock     Type = "rock"
	TypeGhost    Type = "ghost"
	TypeDragon   Type = "dragon"
	TypeDark     Type = "dark"
	TypeSteel    Type = "steel"
	TypeFairy    Type = "fairy"
	// TypeUnknown is the typeless type used by neutral fallbacks
	TypeUnknown Type = "unknown"
)

// HasType reports whether t is in types
func HasType(types []Type, t Type) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// Category is the damage class of a move
type Category string

// Move categories
const (
	CategoryPhysical Category = "physical"
	CategorySpecial  Category = "special"
	CategoryStatus   Category = "status"
)

// Stat names a battle stat. Accuracy and evasion only exist as stages.
type Stat string

// Stats
const (
	StatHP       Stat = "hp"
	StatAttack   Stat = "atk"
	StatDefense  Stat = "def"
	StatSpAtk    Stat = "spa"
	StatSpDef    Stat = "spd"
	StatSpeed    Stat = "spe"
	StatAccuracy Stat = "acc"
	StatEvasion  Stat = "eva"
)

// StageStats are the stats that carry in-battle stages
var StageStats = []Stat{StatAttack, StatDefense, StatSpAtk, StatSpDef, StatSpeed, StatAccuracy, StatEvasion}

// Stats is a base or computed stat block
type Stats struct {
	HP    int `yaml:"hp" json:"hp"`
	Atk   int `yaml:"atk" json:"atk"`
	Def   int `yaml:"def" json:"def"`
	SpAtk int `yaml:"spa" json:"spa"`
	SpDef int `yaml:"spd" json:"spd"`
	Speed int `yaml:"spe" json:"spe"`
}

// Get returns the named stat; accuracy/evasion return 0
func (s Stats) Get(stat Stat) int {
	switch stat {
	case StatHP:
		return s.HP
	case StatAttack:
		return s.Atk
	case StatDefense:
		return s.Def
	case StatSpAtk:
		return s.SpAtk
	case StatSpDef:
		return s.SpDef
	case StatSpeed:
		return s.Speed
	default:
		return 0
	}
}

// Status is a persistent non-volatile condition
type Status string

// Statuses
const (
	StatusNone      Status = ""
	StatusBurn      Status = "burn"
	StatusPoison    Status = "poison"
	StatusParalysis Status = "paralysis"
	StatusSleep     Status = "sleep"
)

// Terrain is the arena terrain slot
type Terrain string

// Terrains
const (
	TerrainNone     Terrain = ""
	TerrainGrassy   Terrain = "grassy"
	TerrainElectric Terrain = "electric"
)

// Weather is the arena weather slot
type Weather string

// Weathers
const (
	WeatherNone      Weather = ""
	WeatherRain      Weather = "rain"
	WeatherSun       Weather = "sun"
	WeatherSandstorm Weather = "sandstorm"
)

// SideTag is a per-side field condition
type SideTag string

// Side tags
const (
	SideTagStealthRock SideTag = "stealth_rock"
)

// SideTags lists every side tag
var SideTags = []SideTag{SideTagStealthRock}

// Species tags that matter to rules
const (
	TagMythical   = "mythical"
	TagUltraBeast = "ultra_beast"
	TagParadox    = "paradox"
	TagNoBoss     = "no_boss"
)

// Species is the static definition of a creature
type Species struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Types   []Type   `yaml:"types"`
	Base    Stats    `yaml:"base"`
	Ability string   `yaml:"ability"`
	Cost    int      `yaml:"cost"`
	Tags    []string `yaml:"tags"`
}

// HasTag reports whether the species carries tag
func (s *Species) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Target selects who a move affects
type Target string

// Target selectors
const (
	TargetSelf         Target = "self"
	TargetOpponent     Target = "opponent"
	TargetAllOpponents Target = "all_opponents"
	TargetField        Target = "field"
)

// Flag marks a move for rules that key on a move property
type Flag string

// Move flags
const (
	FlagContact       Flag = "contact"
	FlagGroundShaking Flag = "ground_shaking"
)

// PowerRule names a move-intrinsic power adjustment
type PowerRule string

// Power rules
const (
	PowerRuleNone                PowerRule = ""
	PowerRuleDoubleIfTargetMoved PowerRule = "double_if_target_moved"
)

// Secondary is one independently gated effect of a move. Chance 0 means the
// effect always applies.
type Secondary struct {
	Chance          int          `yaml:"chance"`
	Self            bool         `yaml:"self"`
	Status          Status       `yaml:"status"`
	Stages          map[Stat]int `yaml:"stages"`
	SetAbility      string       `yaml:"set_ability"`
	SuppressAbility bool         `yaml:"suppress_ability"`
	SetTypes        []Type       `yaml:"set_types"`
	Terrain         Terrain      `yaml:"terrain"`
	Weather         Weather      `yaml:"weather"`
	SideTag         SideTag      `yaml:"side_tag"`
}

// Move is the static definition of a move
type Move struct {
	ID            string      `yaml:"id"`
	Name          string      `yaml:"name"`
	Type          Type        `yaml:"type"`
	Category      Category    `yaml:"category"`
	Power         int         `yaml:"power"`
	Accuracy      int         `yaml:"accuracy"`
	Priority      int         `yaml:"priority"`
	Target        Target      `yaml:"target"`
	Flags         []Flag      `yaml:"flags"`
	RecoilPercent int         `yaml:"recoil_percent"`
	PowerRule     PowerRule   `yaml:"power_rule"`
	Secondaries   []Secondary `yaml:"secondaries"`
}

// HasFlag reports whether the move carries flag
func (m *Move) HasFlag(flag Flag) bool {
	for _, f := range m.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Damaging reports whether the move deals direct damage
func (m *Move) Damaging() bool {
	return m.Category != CategoryStatus && m.Power > 0
}

// Ability is the static definition of an ability. Behaviour lives in the
// hook registry; this only carries rule-relevant flags.
type Ability struct {
	ID               string `yaml:"id"`
	Name             string `yaml:"name"`
	SuppressesOthers bool   `yaml:"suppresses_others"`
	Unsuppressable   bool   `yaml:"unsuppressable"`
	Unreplaceable    bool   `yaml:"unreplaceable"`
}

// Item is the static definition of a held item
type Item struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Consumable bool   `yaml:"consumable"`
	Berry      bool   `yaml:"berry"`
	FormChange bool   `yaml:"form_change"`
	Stackable  bool   `yaml:"stackable"`
}
