package render

import (
	"errors"
	"testing"

	"golang.org/x/exp/slices"

	"github.com/stuarthighley/doomview/bam"
	"github.com/stuarthighley/doomview/level"
)

func TestInitErrors(t *testing.T) {
	lvl := roomLevel(t)
	tests := []struct {
		name   string
		w, h   int
		pixels int
		want   error
	}{
		{"zero width", 0, 200, 0, ErrBadSize},
		{"negative height", 320, -1, 0, ErrBadSize},
		{"huge", 40000, 10, 400000, ErrBadSize},
		{"short buffer", 320, 200, 320*200 - 1, ErrShortBuffer},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := New(lvl, newFakeMaterials(), DefaultOptions())
			err := r.Init(tc.w, tc.h, make([]uint32, tc.pixels))
			if !errors.Is(err, tc.want) {
				t.Errorf("Init() = %v, want %v", err, tc.want)
			}
		})
	}

	m := newFakeMaterials()
	m.cms = nil
	if err := New(lvl, m, Options{}).Init(320, 200, make([]uint32, 320*200)); !errors.Is(err, ErrNoColorMaps) {
		t.Errorf("no colormaps: err = %v", err)
	}
}

func TestRenderBeforeInit(t *testing.T) {
	r := New(roomLevel(t), newFakeMaterials(), DefaultOptions())
	if s := r.Render(); s != (Stats{}) {
		t.Errorf("Render() before Init = %+v", s)
	}
}

func TestResetIdempotent(t *testing.T) {
	r, _ := newTestRenderer(t, twoRoomLevel(t, 24, level.NoTexture, 0), DefaultOptions())
	r.SetView(View{X: -128, Y: 0, Z: 41, Self: NoSelf})
	r.Render()

	r.reset()
	spans := slices.Clone(r.clip.spans)
	top := slices.Clone(r.topClip)
	bottom := slices.Clone(r.bottomClip)
	planes, segs, things, sil := r.planes.n, len(r.drawSegs), len(r.things), r.silEnd

	r.reset()
	if !slices.Equal(spans, r.clip.spans) {
		t.Errorf("spans %v, then %v", spans, r.clip.spans)
	}
	if !slices.Equal(top, r.topClip) || !slices.Equal(bottom, r.bottomClip) {
		t.Errorf("column clips changed on second reset")
	}
	if planes != r.planes.n || segs != len(r.drawSegs) || things != len(r.things) || sil != r.silEnd {
		t.Errorf("counts changed on second reset")
	}
	if len(spans) != 2 || spans[0] != (span{-32768, -1}) || spans[1] != (span{testW, 32767}) {
		t.Errorf("reset spans = %v", spans)
	}
	if planes != 0 || segs != 0 || things != 0 || sil != 0 {
		t.Errorf("reset left planes %d segs %d things %d silhouettes %d", planes, segs, things, sil)
	}
	for x := range top {
		if top[x] != -1 || bottom[x] != testH {
			t.Fatalf("column %d clips %d,%d", x, top[x], bottom[x])
		}
	}
}

// Viewer in the middle of a closed room facing a wall square on
func TestRoomScenario(t *testing.T) {
	r, pixels := newTestRenderer(t, roomLevel(t), DefaultOptions())
	r.SetView(View{X: 0, Y: 0, Z: 41, Angle: bam.Ang0, Self: NoSelf})
	stats := r.Render()

	if stats.Visplanes != 2 {
		t.Fatalf("visplanes = %d, want 2", stats.Visplanes)
	}
	for _, p := range r.planes.active() {
		if p.x1 != 0 || p.x2 != testW-1 {
			t.Errorf("plane z=%v spans [%d,%d], want full width", p.z, p.x1, p.x2)
		}
	}
	if stats.DrawSegs != 1 || stats.MaskedSegs != 0 {
		t.Fatalf("draw segs = %d, masked = %d", stats.DrawSegs, stats.MaskedSegs)
	}
	if ds := r.drawSegs[0]; !ds.opaque() || ds.x1 != 0 || ds.x2 != testW-1 {
		t.Errorf("draw seg = %+v, want opaque over the full width", ds)
	}

	// Every column is ceiling, then wall, then floor
	order := map[int]int{ceilColor: 1, wallColor: 2, floorColor: 3}
	for x := range testW {
		last := 0
		for y := range testH {
			c := colorAt(pixels, x, y)
			if c == -1 {
				t.Fatalf("pixel (%d,%d) not drawn", x, y)
			}
			rank := order[c]
			if rank < last || rank == 0 {
				t.Fatalf("pixel (%d,%d) = %d out of order", x, y, c)
			}
			last = rank
		}
	}
	if colorAt(pixels, testW/2, 0) != ceilColor || colorAt(pixels, testW/2, testH/2) != wallColor ||
		colorAt(pixels, testW/2, testH-1) != floorColor {
		t.Errorf("centre column is not ceiling, wall, floor")
	}
}

// Two rooms with a step up between them and no mid texture
func TestStepScenario(t *testing.T) {
	r, pixels := newTestRenderer(t, twoRoomLevel(t, 24, level.NoTexture, 0), DefaultOptions())
	r.SetView(View{X: -128, Y: 0, Z: 41, Self: NoSelf})
	stats := r.Render()

	var floors []float64
	for _, p := range r.planes.active() {
		if p.flat == floorFlat {
			floors = append(floors, p.z)
		}
	}
	slices.Sort(floors)
	if !slices.Equal(floors, []float64{-41, -17}) {
		t.Errorf("floor planes at %v, want separate planes at -41 and -17", floors)
	}

	if stats.MaskedSegs != 0 {
		t.Errorf("masked segs = %d, want 0", stats.MaskedSegs)
	}
	var top, bottom bool
	for _, ds := range r.drawSegs {
		top = top || ds.top != nil
		bottom = bottom || ds.bottom != nil
	}
	if !top || !bottom {
		t.Errorf("silhouettes: top %v bottom %v, want both", top, bottom)
	}

	for i := 0; i < testW*testH; i++ {
		if pixels[i]>>24 == 0 {
			t.Fatalf("pixel (%d,%d) not drawn", i%testW, i/testW)
		}
	}
	found := false
	for y := 0; y < testH; y++ {
		found = found || colorAt(pixels, testW/2, y) == lowerColor
	}
	if !found {
		t.Errorf("step not drawn in centre column")
	}
	assertPlaneIdentity(t, r)
}

// assertPlaneIdentity checks that planes sharing an identity never claim the same pixel
func assertPlaneIdentity(t *testing.T, r *Renderer) {
	t.Helper()
	planes := r.planes.active()
	for i := range planes {
		for j := i + 1; j < len(planes); j++ {
			a, b := &planes[i], &planes[j]
			if a.z != b.z || a.flat != b.flat || a.light != b.light {
				continue
			}
			for x := max(a.x1, b.x1); x <= min(a.x2, b.x2); x++ {
				if a.empty(x) || b.empty(x) {
					continue
				}
				if a.tops[x] <= b.bottoms[x] && b.tops[x] <= a.bottoms[x] {
					t.Errorf("planes %d and %d overlap in column %d", i, j, x)
				}
			}
		}
	}
}

func TestThingBehindWall(t *testing.T) {
	render := func(addThing bool, x float64) ([]uint32, Stats) {
		lvl := roomLevel(t)
		if addThing {
			// Linked to the room but standing beyond its east wall
			lvl.Mobjs = append(lvl.Mobjs, level.Mobj{X: x, Y: 0, Z: 0})
			lvl.Sectors[0].Mobjs = append(lvl.Sectors[0].Mobjs, 0)
		}
		r, pixels := newTestRenderer(t, lvl, DefaultOptions())
		r.SetView(View{X: 0, Y: 0, Z: 41, Self: NoSelf})
		return pixels, r.Render()
	}

	empty, _ := render(false, 0)
	behind, stats := render(true, 400)
	if stats.VisThings != 1 {
		t.Fatalf("vis things = %d, want 1", stats.VisThings)
	}
	if !slices.Equal(empty, behind) {
		t.Errorf("thing behind the wall changed the frame")
	}

	inFront, _ := render(true, 128)
	if slices.Equal(empty, inFront) {
		t.Errorf("thing in front of the wall not drawn")
	}
}

func TestSelfNotDrawn(t *testing.T) {
	lvl := roomLevel(t)
	i := lvl.SpawnMobj(level.Mobj{X: 128, Y: 0}, true)
	r, _ := newTestRenderer(t, lvl, DefaultOptions())
	r.SetView(View{X: 0, Y: 0, Z: 41, Self: i})
	if s := r.Render(); s.VisThings != 0 {
		t.Errorf("vis things = %d, want 0", s.VisThings)
	}
	r.SetView(View{X: 0, Y: 0, Z: 41, Self: NoSelf})
	if s := r.Render(); s.VisThings != 1 {
		t.Errorf("vis things = %d, want 1", s.VisThings)
	}
}

// A fence mid texture between the rooms, with a sprite behind it and one in front
func TestMaskedInterleave(t *testing.T) {
	render := func(thingX float64) []uint32 {
		lvl := twoRoomLevel(t, 24, fenceTex, level.LowerUnpegged)
		if thingX != 0 {
			lvl.SpawnMobj(level.Mobj{X: thingX, Y: 0}, true)
		}
		r, pixels := newTestRenderer(t, lvl, DefaultOptions())
		r.SetView(View{X: -128, Y: 0, Z: 41, Self: NoSelf})
		stats := r.Render()
		if stats.MaskedSegs != 1 {
			t.Fatalf("masked segs = %d, want 1", stats.MaskedSegs)
		}
		return pixels
	}

	fenceOnly := render(0)
	var fence []int
	for i, p := range fenceOnly {
		if p&0xFF == fenceColor {
			fence = append(fence, i)
		}
	}
	if len(fence) == 0 {
		t.Fatal("fence not drawn")
	}

	behind := render(64)
	for _, i := range fence {
		if behind[i]&0xFF != fenceColor {
			t.Fatalf("sprite behind the fence shows through at (%d,%d)", i%testW, i/testW)
		}
	}
	drawn := false
	for i := range behind {
		drawn = drawn || behind[i]&0xFF == spriteColor
	}
	if drawn {
		t.Errorf("sprite entirely behind the fence has visible pixels")
	}

	inFront := render(-64)
	covered := 0
	for _, i := range fence {
		if inFront[i]&0xFF == spriteColor {
			covered++
		}
	}
	if covered == 0 {
		t.Errorf("sprite in front of the fence is hidden by it")
	}
}

func TestSkyCeiling(t *testing.T) {
	lvl := roomLevel(t)
	lvl.Sectors[0].CeilingFlat = skyFlat
	r, pixels := newTestRenderer(t, lvl, DefaultOptions())
	r.SetView(View{X: 0, Y: 0, Z: 41, Self: NoSelf})
	r.Render()

	sky := 0
	for _, p := range r.planes.active() {
		if p.flat == skyFlat {
			sky++
			if p.z != 0 || p.light != 0 {
				t.Errorf("sky plane identity z=%v light=%d", p.z, p.light)
			}
		}
	}
	if sky != 1 {
		t.Fatalf("sky planes = %d", sky)
	}
	if c := colorAt(pixels, testW/2, 0); c != skyColor {
		t.Errorf("top of screen = %d, want sky", c)
	}
}

func TestLeafOnlyLevelRenders(t *testing.T) {
	lvl := roomLevel(t)
	if len(lvl.Nodes) != 0 {
		t.Fatal("room level should have no nodes")
	}
	r, _ := newTestRenderer(t, lvl, DefaultOptions())
	r.SetView(View{X: 0, Y: 0, Z: 41, Angle: bam.Ang90, Self: NoSelf})
	if s := r.Render(); s.DrawSegs != 1 || s.Frame != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestDrawSegOverflowKeepsWalls(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDrawSegs = 1
	r, pixels := newTestRenderer(t, twoRoomLevel(t, 24, level.NoTexture, 0), opts)
	r.SetView(View{X: -128, Y: 0, Z: 41, Self: NoSelf})
	stats := r.Render()
	if stats.DrawSegs != 1 || stats.DroppedDrawSegs == 0 {
		t.Errorf("stats = %+v", stats)
	}
	for i := range pixels {
		if pixels[i]>>24 == 0 {
			t.Fatalf("pixel (%d,%d) not drawn", i%testW, i/testW)
		}
	}
}

func TestFrameStamp(t *testing.T) {
	lvl := roomLevel(t)
	lvl.SpawnMobj(level.Mobj{X: 128, Y: 0}, true)
	r, _ := newTestRenderer(t, lvl, DefaultOptions())
	r.SetView(View{X: 0, Y: 0, Z: 41, Self: NoSelf})

	r.frame++
	r.reset()
	r.renderSubSector(0)
	r.renderSubSector(0)
	if len(r.things) != 1 {
		t.Errorf("sector things collected %d times in one frame", len(r.things))
	}
	if lvl.Sectors[0].RenderFrame != r.frame {
		t.Errorf("sector stamp = %d, frame %d", lvl.Sectors[0].RenderFrame, r.frame)
	}
}

// A wall top a fraction of a row above the screen owns row 0, not the ceiling
func TestWallTopAboveScreen(t *testing.T) {
	lvl := roomLevel(t)
	// At scale 0.625 the wall top projects to row -0.3125
	lvl.Sectors[0].CeilingHeight = 41 + 160.5
	r, pixels := newTestRenderer(t, lvl, DefaultOptions())
	r.SetView(View{X: 0, Y: 0, Z: 41, Angle: bam.Ang0, Self: NoSelf})
	r.Render()

	for x := range testW {
		if c := colorAt(pixels, x, 0); c != wallColor {
			t.Fatalf("pixel (%d,0) = %d, want wall", x, c)
		}
	}
}

// A closet behind the room's north wall is never entered, so its thing is not projected
func TestHiddenLeafSkipped(t *testing.T) {
	render := func(northWall bool) (*Renderer, Stats) {
		lvl := closetLevel(t, northWall)
		lvl.SpawnMobj(level.Mobj{X: 0, Y: 350}, true)
		r, _ := newTestRenderer(t, lvl, DefaultOptions())
		r.SetView(View{X: 0, Y: 0, Z: 41, Angle: bam.FromDegrees(60), Self: NoSelf})
		return r, r.Render()
	}

	r, stats := render(true)
	if r.clip.full() {
		t.Fatal("clip filled, so the walk stopped before reaching the closet")
	}
	if stats.VisThings != 0 {
		t.Errorf("vis things = %d, want 0 with the closet hidden", stats.VisThings)
	}
	if r.lvl.Sectors[1].RenderFrame == r.frame {
		t.Errorf("hidden closet sector was visited")
	}

	r, stats = render(false)
	if stats.VisThings != 1 {
		t.Errorf("vis things = %d, want 1 with the closet in view", stats.VisThings)
	}
	if r.lvl.Sectors[1].RenderFrame != r.frame {
		t.Errorf("visible closet sector was not visited")
	}
}
