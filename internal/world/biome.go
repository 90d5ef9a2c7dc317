package world

import (
	"blockworld/internal/registry"
)

// Tree species recorded in the tree log
const (
	SpeciesOak uint8 = iota
	SpeciesSpruce
	SpeciesCactus
)

// Biome defines the properties of a terrain type
type Biome struct {
	ID          int
	Name        string
	TopBlock    registry.ID // e.g. Grass
	FillerBlock registry.ID // e.g. Dirt (under grass)
	TreeChance  float64     // per column
	Species     uint8
	PlantChance float64
}

var (
	BiomePlains = &Biome{
		ID:          1,
		Name:        "Plains",
		TopBlock:    registry.Grass,
		FillerBlock: registry.Dirt,
		TreeChance:  0.002,
		Species:     SpeciesOak,
		PlantChance: 0.12,
	}
	BiomeForest = &Biome{
		ID:          2,
		Name:        "Forest",
		TopBlock:    registry.Grass,
		FillerBlock: registry.Dirt,
		TreeChance:  0.03,
		Species:     SpeciesOak,
		PlantChance: 0.05,
	}
	BiomeDesert = &Biome{
		ID:          3,
		Name:        "Desert",
		TopBlock:    registry.Sand,
		FillerBlock: registry.Sand,
		TreeChance:  0.004,
		Species:     SpeciesCactus,
	}
	BiomeTundra = &Biome{
		ID:          4,
		Name:        "Tundra",
		TopBlock:    registry.Snow,
		FillerBlock: registry.Dirt,
		TreeChance:  0.01,
		Species:     SpeciesSpruce,
	}
	BiomeMountains = &Biome{
		ID:          5,
		Name:        "Mountains",
		TopBlock:    registry.Stone, // Mountains often exposed stone
		FillerBlock: registry.Stone,
		TreeChance:  0.002,
		Species:     SpeciesSpruce,
	}
)

var Biomes = []*Biome{BiomePlains, BiomeForest, BiomeDesert, BiomeTundra, BiomeMountains}

// pickBiome chooses a biome from interpolated climate values.
// height is in blocks, humidity and temperature in [0, 100].
func pickBiome(height, humidity, temperature float64) *Biome {
	switch {
	case height > 78:
		return BiomeMountains
	case temperature > 70 && humidity < 35:
		return BiomeDesert
	case temperature < 25:
		return BiomeTundra
	case humidity > 60:
		return BiomeForest
	default:
		return BiomePlains
	}
}
