// Package session drives a level viewer. It loads a level from an archive, stands the camera on
// the player 1 start and renders frames into a shared pixel buffer as the camera moves.
package session

import (
	"errors"
	"fmt"
	"math"

	"github.com/stuarthighley/doomview/bam"
	"github.com/stuarthighley/doomview/config"
	"github.com/stuarthighley/doomview/level"
	"github.com/stuarthighley/doomview/render"
	"github.com/stuarthighley/doomview/wad"
)

// Archive is a source of levels and the graphics to draw them. *wad.WAD is one.
type Archive interface {
	render.Materials
	ReadLevel(name string) (*level.Level, error)
	LevelNames() []string
	Close() error
}

var ErrNoLevels = errors.New("session: archive has no levels")

// Distance from a wall the camera is placed at when a level has no player start
const fallbackInset = 16

type Session struct {
	archive  Archive
	level    *level.Level
	renderer *render.Renderer
	camera   config.CameraConfig
	view     render.View
	stats    render.Stats

	width, height int
	pixels        []uint32
}

// Open opens the configured WAD and loads the configured map
func Open(cfg *config.Config) (*Session, error) {
	w, err := wad.Open(cfg.WAD.Path)
	if err != nil {
		return nil, err
	}
	s, err := New(w, cfg)
	if err != nil {
		w.Close()
		return nil, err
	}
	return s, nil
}

// New starts a session on an open archive. An empty map name loads the archive's first level.
func New(a Archive, cfg *config.Config) (*Session, error) {
	s := &Session{
		archive: a,
		camera:  cfg.Camera,
		width:   cfg.Display.ScreenWidth,
		height:  cfg.Display.ScreenHeight,
		view:    render.View{Self: render.NoSelf},
	}
	s.pixels = make([]uint32, s.width*s.height)

	l, err := s.readLevel(cfg.WAD.Map)
	if err != nil {
		return nil, err
	}
	s.renderer = render.New(l, a, cfg.Render.Options())
	if err := s.renderer.Init(s.width, s.height, s.pixels); err != nil {
		return nil, err
	}
	s.enter(l)
	return s, nil
}

func (s *Session) readLevel(name string) (*level.Level, error) {
	if name == "" {
		names := s.archive.LevelNames()
		if len(names) == 0 {
			return nil, ErrNoLevels
		}
		name = names[0]
	}
	return s.archive.ReadLevel(name)
}

// ChangeLevel loads another level from the same archive and moves the camera to its start.
// The current level stays in place if the new one cannot be read.
func (s *Session) ChangeLevel(name string) error {
	l, err := s.readLevel(name)
	if err != nil {
		return err
	}
	s.renderer.SetLevel(l)
	s.enter(l)
	return nil
}

// enter makes l current and places the camera in it
func (s *Session) enter(l *level.Level) {
	logger.Printf("Entering %v", l.Name)
	s.level = l
	if start, ok := l.PlayerStart(1); ok {
		s.view.X, s.view.Y, s.view.Angle = float64(start.X), float64(start.Y), start.Angle
	} else {
		s.view.X, s.view.Y, s.view.Angle = fallbackSpot(l)
		logger.Printf("%v has no player 1 start, camera at (%.0f, %.0f)", l.Name, s.view.X, s.view.Y)
	}
	s.updateHeight()
}

// fallbackSpot returns a point just inside the front of the first seg, facing away from it
func fallbackSpot(l *level.Level) (float64, float64, bam.Angle) {
	sg := l.Segs[l.SubSectors[0].FirstSeg]
	v1, v2 := l.Vertices[sg.V1], l.Vertices[sg.V2]
	dx, dy := float64(v2.X-v1.X), float64(v2.Y-v1.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return float64(v1.X), float64(v1.Y), sg.Angle
	}
	mx, my := float64(v1.X)+dx/2, float64(v1.Y)+dy/2
	return mx + dy/length*fallbackInset, my - dx/length*fallbackInset, sg.Angle - bam.Ang90
}

// updateHeight stands the camera on the floor under it
func (s *Session) updateHeight() {
	s.view.Z = s.level.SectorAt(s.view.X, s.view.Y).FloorHeight + s.camera.EyeHeight
}

// Move steps the camera forward and to the right by the given number of ticks. Walls do not
// stop it.
func (s *Session) Move(forward, right float64) {
	step := s.camera.MoveSpeed
	a := s.view.Angle
	s.view.X += (forward*a.Cos() + right*a.Sin()) * step
	s.view.Y += (forward*a.Sin() - right*a.Cos()) * step
	s.updateHeight()
}

// Turn rotates the camera anticlockwise by the given number of ticks
func (s *Session) Turn(ticks float64) {
	s.view.Angle += bam.FromDegrees(ticks * s.camera.TurnSpeed)
}

// Frame renders the current view. Pixels no wall, plane or sprite covers are black.
func (s *Session) Frame() render.Stats {
	clear(s.pixels)
	s.renderer.SetView(s.view)
	s.stats = s.renderer.Render()
	return s.stats
}

// Pixels returns the frame buffer, row major, as 0xAARRGGBB
func (s *Session) Pixels() []uint32 {
	return s.pixels
}

func (s *Session) Size() (int, int) {
	return s.width, s.height
}

func (s *Session) View() render.View {
	return s.view
}

func (s *Session) Level() *level.Level {
	return s.level
}

// Stats returns the statistics of the last frame
func (s *Session) Stats() render.Stats {
	return s.stats
}

// Status is a one line summary of the camera and the last frame
func (s *Session) Status() string {
	st := s.stats
	return fmt.Sprintf("%s (%.0f,%.0f,%.0f) %.0f° planes %d segs %d things %d dropped %d",
		s.level.Name, s.view.X, s.view.Y, s.view.Z, s.view.Angle.Degrees(),
		st.Visplanes, st.DrawSegs, st.VisThings,
		st.DroppedVisplanes+st.DroppedDrawSegs+st.DroppedVisThings+st.DroppedSilhouettes)
}

func (s *Session) Close() error {
	return s.archive.Close()
}
