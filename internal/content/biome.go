package content

// Biome is the arena a wave is fought in
type Biome int

// Biomes. Values are stable identifiers; gaps are intentional.
const (
	BiomeTown Biome = iota
	BiomePlains
	BiomeGrass
	BiomeTallGrass
	BiomeMetropolis
	BiomeForest
	BiomeSea
	BiomeSwamp
	BiomeBeach
	BiomeLake
	BiomeSeabed
	BiomeMountain
	BiomeBadlands
	BiomeCave
	BiomeDesert
	BiomeIceCave
	BiomeMeadow
	BiomePowerPlant
	BiomeVolcano
	BiomeGraveyard
	BiomeDojo
	BiomeFactory
	BiomeRuins
	BiomeWasteland
	BiomeAbyss
	BiomeSpace
	BiomeConstructionSite
	BiomeJungle
	BiomeFairyCave
	BiomeTemple
	BiomeSlum
	BiomeSnowyForest
	BiomeIsland Biome = 40
	BiomeLaboratory Biome = 41
	BiomeEnd Biome = 50
)

var biomeNames = map[Biome]string{
	BiomeTown:             "town",
	BiomePlains:           "plains",
	BiomeGrass:            "grass",
	BiomeTallGrass:        "tall_grass",
	BiomeMetropolis:       "metropolis",
	BiomeForest:           "forest",
	BiomeSea:              "sea",
	BiomeSwamp:            "swamp",
	BiomeBeach:            "beach",
	BiomeLake:             "lake",
	BiomeSeabed:           "seabed",
	BiomeMountain:         "mountain",
	BiomeBadlands:         "badlands",
	BiomeCave:             "cave",
	BiomeDesert:           "desert",
	BiomeIceCave:          "ice_cave",
	BiomeMeadow:           "meadow",
	BiomePowerPlant:       "power_plant",
	BiomeVolcano:          "volcano",
	BiomeGraveyard:        "graveyard",
	BiomeDojo:             "dojo",
	BiomeFactory:          "factory",
	BiomeRuins:            "ruins",
	BiomeWasteland:        "wasteland",
	BiomeAbyss:            "abyss",
	BiomeSpace:            "space",
	BiomeConstructionSite: "construction_site",
	BiomeJungle:           "jungle",
	BiomeFairyCave:        "fairy_cave",
	BiomeTemple:           "temple",
	BiomeSlum:             "slum",
	BiomeSnowyForest:      "snowy_forest",
	BiomeIsland:           "island",
	BiomeLaboratory:       "laboratory",
	BiomeEnd:              "end",
}

// String returns the biome identifier
func (b Biome) String() string {
	if name, ok := biomeNames[b]; ok {
		return name
	}
	return "unknown"
}

// DisplayName returns the biome name for presentation
func (b Biome) DisplayName() string {
	return DisplayName(b.String())
}

// Valid reports whether b is a defined biome
func (b Biome) Valid() bool {
	_, ok := biomeNames[b]
	return ok
}

// ParseBiome resolves an identifier such as "tall_grass"
func ParseBiome(name string) (Biome, bool) {
	for b, n := range biomeNames {
		if n == name {
			return b, true
		}
	}
	return 0, false
}
