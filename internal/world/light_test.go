package world

import (
	"testing"

	"blockworld/internal/registry"
)

func TestEffectiveLight(t *testing.T) {
	cases := []struct {
		raw  uint8
		sun  float32
		want uint8
	}{
		{0x00, 1, 0},
		{0xF0, 1, 15},
		{0xF0, 0, 0},
		{0x40, 1, 8},
		{0x0F, 0, 15},
		{0x03, 0, 6},
		{0x53, 0.5, 6},
	}
	for _, tc := range cases {
		if got := Effective(tc.raw, tc.sun); got != tc.want {
			t.Errorf("Effective(%#x, %v) = %d, want %d", tc.raw, tc.sun, got, tc.want)
		}
	}
}

func TestSpreadDecaysByDistance(t *testing.T) {
	m := newTestWorld(t, 1, 9)
	mustSet(t, m, 8, 30, 8, registry.Glowstone)

	for d := 0; d < MaxLight; d++ {
		want := uint8(MaxLight - d)
		if got := blockLight(t, m, 8+d, 30, 8); got != want {
			t.Fatalf("light at distance %d = %d, want %d", d, got, want)
		}
	}
	// diagonal cells use manhattan distance
	if got := blockLight(t, m, 10, 32, 5); got != MaxLight-7 {
		t.Fatalf("diagonal light = %d, want %d", got, MaxLight-7)
	}
	if got := blockLight(t, m, 8+MaxLight, 30, 8); got != 0 {
		t.Fatalf("light beyond range = %d", got)
	}
}

func TestLightMonotonicAlongPath(t *testing.T) {
	m := newTestWorld(t, 1, 9)
	mustSet(t, m, 0, 20, 0, registry.Glowstone)
	prev := blockLight(t, m, 0, 20, 0)
	for z := -1; z >= -14; z-- {
		cur := blockLight(t, m, 0, 20, z)
		if cur >= prev {
			t.Fatalf("light does not fall off across the seam at z=%d: %d after %d", z, cur, prev)
		}
		prev = cur
	}
}

func TestUnspreadRestores(t *testing.T) {
	m := newTestWorld(t, 1, 9)
	fresh := newTestWorld(t, 1, 9)

	mustSet(t, m, 8, 30, 8, registry.Glowstone)
	mustSet(t, m, 12, 30, 8, registry.Glowstone)
	m.Break(8, 30, 8)
	mustSet(t, fresh, 12, 30, 8, registry.Glowstone)

	for x := -8; x < 24; x++ {
		for y := 20; y < 40; y++ {
			a, b := blockLight(t, m, x, y, 8), blockLight(t, fresh, x, y, 8)
			if a != b {
				t.Fatalf("light at %d,%d,8 = %d, fresh world has %d", x, y, a, b)
			}
		}
	}

	m.Break(12, 30, 8)
	for x := -8; x < 24; x++ {
		if v := blockLight(t, m, x, 30, 8); v != 0 {
			t.Fatalf("light %d left at %d,30,8 after removing every source", v, x)
		}
	}
}

func TestOpaqueBlockCutsLight(t *testing.T) {
	m := newTestWorld(t, 0, 9)
	mustSet(t, m, 8, 30, 8, registry.Glowstone)
	mustSet(t, m, 9, 30, 8, registry.Stone)
	if v := blockLight(t, m, 9, 30, 8); v != 0 {
		t.Fatalf("opaque cell holds light %d", v)
	}
	// light reaches the far side by going around
	if v := blockLight(t, m, 10, 30, 8); v != MaxLight-4 {
		t.Fatalf("light behind the wall = %d, want %d", v, MaxLight-4)
	}
	m.Break(9, 30, 8)
	if v := blockLight(t, m, 10, 30, 8); v != MaxLight-2 {
		t.Fatalf("light after opening = %d, want %d", v, MaxLight-2)
	}
}

func TestSkyLight(t *testing.T) {
	m := newTestWorld(t, 0, 9)
	c := m.Chunk(ChunkCoord{})
	if v := c.SkyLight(Index(4, 10, 4)); v != MaxLight {
		t.Fatalf("open air sky light = %d", v)
	}
	if v := c.SkyLight(Index(4, 9, 4)); v != 0 {
		t.Fatalf("sky light inside the floor = %d", v)
	}
	mustSet(t, m, 4, 20, 4, registry.Stone)
	if v := c.SkyLight(Index(4, 15, 4)); v != 0 {
		t.Fatalf("shadow below a roof = %d", v)
	}
	if v := m.LightAt(4, 25, 4); v != MaxLight {
		t.Fatalf("LightAt in open sky = %d", v)
	}
}

func TestSetSunMarksChunks(t *testing.T) {
	m := newTestWorld(t, 1, 4)
	m.Light.SetBudget(4)
	if m.Light.SetSun(1) {
		t.Fatalf("no step change reported a change")
	}
	if !m.Light.SetSun(0.5) {
		t.Fatalf("step change not reported")
	}
	if n := m.Light.Tick(); n != 4 {
		t.Fatalf("Tick processed %d chunks, want budget of 4", n)
	}
	total := 4
	for n := m.Light.Tick(); n > 0; n = m.Light.Tick() {
		total += n
	}
	if total != 9 {
		t.Fatalf("processed %d chunks in total, want 9", total)
	}
	if got := m.LightAt(0, 30, 0); got != Effective(0xF0, m.Light.Sun()) {
		t.Fatalf("LightAt after dimming = %d", got)
	}
}

func TestSampleNeighbourhood(t *testing.T) {
	m := newTestWorld(t, 0, 9)
	c := m.Chunk(ChunkCoord{})
	var s LightSample
	m.Light.Sample(c, Index(0, 0, 0), &s)
	if s[SampleIndex(0, -1, 0)] != 0 {
		t.Fatalf("below the world must be dark")
	}
	// x=-1 belongs to an unloaded chunk and reads as open sky
	if s[SampleIndex(-1, 1, 0)] != MaxLight {
		t.Fatalf("unresolved cell = %d", s[SampleIndex(-1, 1, 0)])
	}
	m.Light.Sample(c, Index(5, 10, 5), &s)
	if s[SampleIndex(0, 0, 0)] != MaxLight || s[SampleIndex(0, -1, 0)] != 0 {
		t.Fatalf("surface sample = %v", s)
	}
}
