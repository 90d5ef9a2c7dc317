package config

import "testing"

func TestDefaults(t *testing.T) {
	s := Default()
	if s.RenderDistance() != 6 || s.EvictRadius() != 8 {
		t.Fatalf("render=%d evict=%d", s.RenderDistance(), s.EvictRadius())
	}
	if g, l, sv, r := s.Workers(); g != 1 || l != 1 || sv != 1 || r != 1 {
		t.Fatalf("workers = %d %d %d %d", g, l, sv, r)
	}
	if !s.SmoothLighting() || s.MeshesPerFrame() != 8 || s.LightPerFrame() != 4 {
		t.Fatalf("unexpected defaults")
	}
}

func TestClamping(t *testing.T) {
	s := Default()
	tests := []struct {
		name string
		set  func()
		get  func() int
		want int
	}{
		{"render low", func() { s.SetRenderDistance(0) }, s.RenderDistance, 1},
		{"render high", func() { s.SetRenderDistance(100) }, s.RenderDistance, 32},
		{"sea level", func() { s.SetSeaLevel(-3) }, s.SeaLevel, 1},
		{"meshes", func() { s.SetMeshesPerFrame(0) }, s.MeshesPerFrame, 1},
		{"fps", func() { s.SetFPSLimit(-1) }, s.FPSLimit, 0},
		{"workers", func() { s.SetWorkers(0, 3, -1, 2) }, func() int { g, _, _, _ := s.Workers(); return g }, 1},
	}
	for _, tt := range tests {
		tt.set()
		if got := tt.get(); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
	if s.EvictRadius() != s.RenderDistance()+2 {
		t.Errorf("evict radius does not follow render distance")
	}
}
