// Package render draws a first person view of a level into a 32-bit pixel buffer. Walls are
// found by walking the BSP tree front to back and clipped against a list of solid screen spans.
// Floors and ceilings are collected into visplanes and filled after the walk, then sprites and
// masked mid textures are composited back to front against the wall silhouettes.
//
// A Renderer is not safe for concurrent use. Calls to Render must also be serialized with any
// change to the level it draws.
package render

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/stuarthighley/doomview/bam"
	"github.com/stuarthighley/doomview/gfx"
	"github.com/stuarthighley/doomview/level"
)

// Materials supplies decoded graphics by identity. Lookups of unknown or absent identities
// return nil. Implementations should cache, since lookups happen per wall and per plane.
type Materials interface {
	Texture(level.TextureNum) *gfx.Texture
	Flat(level.FlatNum) *gfx.Flat
	SpriteFrame(sprite, frame int) *gfx.SpriteFrame
	Palette() *gfx.Palette
	ColorMaps() []gfx.ColorMap
}

// View is the camera. Angle 0 looks east.
type View struct {
	X, Y, Z float64
	Angle   bam.Angle
	Self    int // Mobj the camera belongs to, never drawn. NoSelf if none.
}

// NoSelf is View.Self for a camera that is not attached to a mobj
const NoSelf = -1

// Options bounds the per frame tables. Anything beyond them is dropped for that frame.
type Options struct {
	MaxVisplanes   int
	MaxDrawSegs    int
	MaxVisThings   int
	SilhouetteRows int // Silhouette scratch size, in multiples of the screen width
}

func DefaultOptions() Options {
	return Options{
		MaxVisplanes:   256,
		MaxDrawSegs:    512,
		MaxVisThings:   256,
		SilhouetteRows: 64,
	}
}

// Stats describes the last rendered frame
type Stats struct {
	Frame      int
	Visplanes  int
	DrawSegs   int
	MaskedSegs int
	VisThings  int
	ClipSpans  int

	DroppedVisplanes   int
	DroppedDrawSegs    int
	DroppedVisThings   int
	DroppedSilhouettes int
}

var (
	ErrBadSize        = errors.New("render: bad screen size")
	ErrShortBuffer    = errors.New("render: pixel buffer too small")
	ErrNoPalette      = errors.New("render: materials have no palette")
	ErrNoColorMaps    = errors.New("render: materials have no colormaps")
	ErrNotInitialised = errors.New("render: not initialised")
)

// Horizontal projection plane width at unit distance, for a 90 degree field of view
const hplane = 2.0

type Renderer struct {
	lvl  *level.Level
	mat  Materials
	opts Options

	// Screen
	width, height int
	pixels        []uint32
	halfx, halfy  float64
	projection    float64
	vplane        float64

	// Shading
	palette    [256]uint32
	scaleLight [lightLevels][scaleBands]*gfx.ColorMap
	zLight     [lightLevels][zBands]*gfx.ColorMap
	brightMap  *gfx.ColorMap

	view  View
	frame int

	// Frame context, reset by reset
	clip        clipper
	topClip     []int // Last occluded row from the top, per column
	bottomClip  []int // First occluded row from the bottom, per column
	planes      planeTable
	drawSegs    []drawSeg
	silhouettes []int
	silEnd      int
	things      []visThing
	thingTop    []int
	thingBottom []int
	spanStart   []int
	stats       Stats
	warned      [numOverflows]bool

	// Seg being rasterized
	curSeg      int
	unclippedA1 bam.Angle
	rangeFn     func(x1, x2 int)
}

// New creates a renderer for lvl. Init must be called before the first Render.
func New(lvl *level.Level, mat Materials, opts Options) *Renderer {
	def := DefaultOptions()
	if opts.MaxVisplanes <= 0 {
		opts.MaxVisplanes = def.MaxVisplanes
	}
	if opts.MaxDrawSegs <= 0 {
		opts.MaxDrawSegs = def.MaxDrawSegs
	}
	if opts.MaxVisThings <= 0 {
		opts.MaxVisThings = def.MaxVisThings
	}
	if opts.SilhouetteRows <= 0 {
		opts.SilhouetteRows = def.SilhouetteRows
	}
	r := &Renderer{lvl: lvl, mat: mat, opts: opts, view: View{Self: NoSelf}}
	r.rangeFn = r.segRange
	return r
}

// Init builds the light tables and sizes the frame scratch arrays for a width x height screen
// drawn into pixels, row major. It must be called again whenever the screen size changes.
func (r *Renderer) Init(width, height int, pixels []uint32) error {
	if width <= 0 || height <= 0 || width >= math.MaxInt16 || height >= math.MaxInt16 {
		return fmt.Errorf("%w: %dx%d", ErrBadSize, width, height)
	}
	if len(pixels) < width*height {
		return fmt.Errorf("%w: have %d, need %d", ErrShortBuffer, len(pixels), width*height)
	}
	pal := r.mat.Palette()
	if pal == nil {
		return ErrNoPalette
	}
	cms := r.mat.ColorMaps()
	if len(cms) == 0 {
		return ErrNoColorMaps
	}

	r.width, r.height = width, height
	r.pixels = pixels
	r.halfx = float64(width) / 2
	r.halfy = float64(height) / 2
	r.projection = float64(width) / hplane
	r.vplane = hplane * float64(height) / float64(width)

	for i, c := range pal {
		r.palette[i] = c.Pack()
	}
	r.buildLightTables(cms)

	r.clip.spans = make([]span, 0, width+2)
	r.topClip = make([]int, width)
	r.bottomClip = make([]int, width)
	r.planes.init(r.opts.MaxVisplanes, width)
	r.drawSegs = make([]drawSeg, 0, r.opts.MaxDrawSegs)
	r.silhouettes = make([]int, r.opts.SilhouetteRows*width)
	r.things = make([]visThing, 0, r.opts.MaxVisThings)
	r.thingTop = make([]int, width)
	r.thingBottom = make([]int, width)
	r.spanStart = make([]int, height)

	logger.Printf("render: initialised %dx%d", width, height)
	return nil
}

// SetLevel switches to another level. Textures are looked up through the same Materials.
func (r *Renderer) SetLevel(lvl *level.Level) {
	r.lvl = lvl
}

func (r *Renderer) SetView(v View) {
	r.view = v
}

// Render draws one frame into the pixel buffer given to Init. Only pixels the renderer finds
// visible are written. Exhausted tables drop the excess and are reported in the returned Stats.
func (r *Renderer) Render() Stats {
	if r.pixels == nil || r.lvl == nil {
		logger.Print(ErrNotInitialised)
		return Stats{}
	}
	r.frame++
	r.reset()
	r.renderNode(r.lvl.Root())
	r.drawPlanes()
	r.drawThings()

	r.stats.Frame = r.frame
	r.stats.Visplanes = r.planes.n
	r.stats.DrawSegs = len(r.drawSegs)
	r.stats.VisThings = len(r.things)
	r.stats.ClipSpans = len(r.clip.spans)
	return r.stats
}

// reset clears the frame context
func (r *Renderer) reset() {
	r.clip.reset(r.width)
	for x := range r.topClip {
		r.topClip[x] = -1
		r.bottomClip[x] = r.height
	}
	r.planes.reset()
	r.drawSegs = r.drawSegs[:0]
	r.silEnd = 0
	r.things = r.things[:0]
	r.stats = Stats{}
	r.warned = [numOverflows]bool{}
}

type overflow int

const (
	overflowVisplanes overflow = iota
	overflowDrawSegs
	overflowVisThings
	overflowSilhouettes
	numOverflows
)

var overflowNames = [numOverflows]string{"visplanes", "draw segs", "vis things", "silhouette buffer"}

// drop counts an item discarded for lack of room, logging the first of each kind per frame
func (r *Renderer) drop(kind overflow) {
	switch kind {
	case overflowVisplanes:
		r.stats.DroppedVisplanes++
	case overflowDrawSegs:
		r.stats.DroppedDrawSegs++
	case overflowVisThings:
		r.stats.DroppedVisThings++
	case overflowSilhouettes:
		r.stats.DroppedSilhouettes++
	}
	if !r.warned[kind] {
		r.warned[kind] = true
		logger.Printf("render: frame %d: out of %s", r.frame, overflowNames[kind])
	}
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// isSky reports whether flat is the level's sky placeholder
func (r *Renderer) isSky(flat level.FlatNum) bool {
	return flat != level.NoFlat && flat == r.lvl.SkyFlat
}
