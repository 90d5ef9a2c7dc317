package registry

// Ids of the built-in block set.
const (
	Stone ID = iota + 1
	Dirt
	Grass
	Sand
	Gravel
	Bedrock
	Log
	Leaves
	TallGrass
	Flower
	Planks
	Glass
	Glowstone
	Torch
	RedstoneWire
	RedstoneTorch
	RedstoneLamp
	Chest
	CraftingTable
	Snow
	Cobblestone
	SpruceLog
	SpruceLeaves
	Cactus
)

var grassTint = [3]float32{0.49, 1.0, 0.36}

// NewDefault returns a registry with the built-in block set
func NewDefault() *Registry {
	r := New()
	for _, def := range defaultBlocks() {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
	return r
}

func cube(id ID, name string, cell uint8, resistance float32) *BlockType {
	return &BlockType{
		ID:         id,
		Name:       name,
		Kind:       KindCube,
		Shape:      ShapeCube,
		Solid:      true,
		Resistance: resistance,
		Brush:      Brush{Top: cell, Bottom: cell, Side: cell, Tint: [3]float32{1, 1, 1}},
	}
}

func defaultBlocks() []*BlockType {
	grass := cube(Grass, "grass", 0, 0.6)
	grass.Brush.Side = 3
	grass.Brush.Bottom = 2
	grass.Brush.Tint = grassTint
	grass.Brush.TintTop = true

	sand := cube(Sand, "sand", 18, 0.5)
	sand.Kind = KindFalling
	sand.Fallable = true
	sand.Updates = true

	gravel := cube(Gravel, "gravel", 19, 0.6)
	gravel.Kind = KindFalling
	gravel.Fallable = true
	gravel.Updates = true

	log := cube(Log, "log", 21, 2)
	log.Brush.Top, log.Brush.Bottom = 20, 20

	spruceLog := cube(SpruceLog, "spruce_log", 116, 2)
	spruceLog.Brush.Top, spruceLog.Brush.Bottom = 20, 20

	leaves := cube(Leaves, "leaves", 52, 0.2)
	leaves.Transparent = true
	leaves.Brush.Tint = grassTint
	leaves.Brush.TintTop, leaves.Brush.TintSides = true, true

	spruceLeaves := cube(SpruceLeaves, "spruce_leaves", 132, 0.2)
	spruceLeaves.Transparent = true
	spruceLeaves.Brush.Tint = [3]float32{0.38, 0.6, 0.38}
	spruceLeaves.Brush.TintTop, spruceLeaves.Brush.TintSides = true, true

	glass := cube(Glass, "glass", 49, 0.3)
	glass.Transparent = true

	glowstone := cube(Glowstone, "glowstone", 105, 0.3)
	glowstone.Luminosity = 15

	bedrock := cube(Bedrock, "bedrock", 17, -1)

	snow := cube(Snow, "snow", 66, 0.2)
	snow.Brush.Side = 68

	cactus := cube(Cactus, "cactus", 70, 0.4)
	cactus.Brush.Side = 69

	lamp := cube(RedstoneLamp, "redstone_lamp", 211, 0.3)
	lamp.Kind = KindLamp
	lamp.Redstone = true

	chest := cube(Chest, "chest", 25, 2.5)
	chest.Kind = KindContainer
	chest.Brush.Side = 26

	crafting := cube(CraftingTable, "crafting_table", 43, 2.5)
	crafting.Kind = KindCrafting
	crafting.Brush.Side = 59
	crafting.Brush.Bottom = 4

	return []*BlockType{
		cube(Stone, "stone", 1, 1.5),
		cube(Dirt, "dirt", 2, 0.5),
		grass,
		sand,
		gravel,
		bedrock,
		log,
		leaves,
		{
			ID: TallGrass, Name: "tall_grass", Kind: KindPlant, Shape: ShapeCross,
			Transparent: true, Resistance: 0.05,
			Brush: Brush{Top: 39, Bottom: 39, Side: 39, Tint: grassTint, TintSides: true},
		},
		{
			ID: Flower, Name: "flower", Kind: KindPlant, Shape: ShapeCross,
			Transparent: true, Resistance: 0.05,
			Brush: Brush{Top: 13, Bottom: 13, Side: 13, Tint: [3]float32{1, 1, 1}},
		},
		cube(Planks, "planks", 4, 2),
		glass,
		glowstone,
		{
			ID: Torch, Name: "torch", Kind: KindTorch, Shape: ShapeTorch,
			Transparent: true, Resistance: 0.05, Luminosity: 14,
			Brush: Brush{Top: 80, Bottom: 80, Side: 80, Tint: [3]float32{1, 1, 1}, Inset: 7.0 / 16},
		},
		{
			ID: RedstoneWire, Name: "redstone_wire", Kind: KindWire, Shape: ShapeFlat,
			Transparent: true, Resistance: 0.05, Redstone: true,
			Brush: Brush{Top: 164, Bottom: 164, Side: 164, Tint: [3]float32{1, 0.1, 0.1}, TintTop: true},
		},
		{
			ID: RedstoneTorch, Name: "redstone_torch", Kind: KindTorch, Shape: ShapeTorch,
			Transparent: true, Resistance: 0.05, Luminosity: 7, Redstone: true,
			Brush: Brush{Top: 99, Bottom: 99, Side: 99, Tint: [3]float32{1, 1, 1}, Inset: 7.0 / 16},
		},
		lamp,
		chest,
		crafting,
		snow,
		cube(Cobblestone, "cobblestone", 16, 2),
		spruceLog,
		spruceLeaves,
		cactus,
	}
}
