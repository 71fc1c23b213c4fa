// Command doomview walks a camera through a level of a WAD file in a window.
//
// Arrow keys or WASD move and turn, Tab and Shift+Tab change level, F1 toggles the overlay and
// Escape quits.
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/exp/slices"

	"github.com/stuarthighley/doomview/config"
	"github.com/stuarthighley/doomview/internal/session"
	"github.com/stuarthighley/doomview/render"
	"github.com/stuarthighley/doomview/wad"
)

type viewer struct {
	sess    *session.Session
	levels  []string
	frame   *ebiten.Image
	rgba    []byte
	overlay bool
	lastErr string
}

func main() {
	configPath := flag.String("config", "config.yaml", "configuration file")
	mapName := flag.String("map", "", "level to load, overriding the configuration")
	flag.Parse()

	cfg := config.MustLoadConfig(*configPath)
	if *mapName != "" {
		cfg.WAD.Map = *mapName
	}

	logger, closer, err := cfg.Log.Logger()
	if err != nil {
		log.Fatalln(err)
	}
	if closer != nil {
		defer closer.Close()
	}
	wad.SetLogger(logger)
	render.SetLogger(logger)
	session.SetLogger(logger)

	w, err := wad.Open(cfg.WAD.Path)
	if err != nil {
		log.Fatalln(err)
	}
	sess, err := session.New(w, cfg)
	if err != nil {
		w.Close()
		log.Fatalln(err)
	}
	defer sess.Close()

	width, height := sess.Size()
	v := &viewer{
		sess:    sess,
		levels:  w.LevelNames(),
		frame:   ebiten.NewImage(width, height),
		rgba:    make([]byte, width*height*4),
		overlay: true,
	}

	ebiten.SetWindowSize(width*cfg.Display.Scale, height*cfg.Display.Scale)
	ebiten.SetWindowTitle(cfg.Display.WindowTitle)
	if cfg.Display.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		v.overlay = !v.overlay
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		step := 1
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			step = -1
		}
		v.changeLevel(step)
	}

	var forward, right, turn float64
	if ebiten.IsKeyPressed(ebiten.KeyUp) || ebiten.IsKeyPressed(ebiten.KeyW) {
		forward++
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) || ebiten.IsKeyPressed(ebiten.KeyS) {
		forward--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		right++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		right--
	}
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		turn++
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		turn--
	}
	if forward != 0 || right != 0 {
		v.sess.Move(forward, right)
	}
	if turn != 0 {
		v.sess.Turn(turn)
	}
	return nil
}

// changeLevel moves step places through the level list, wrapping at either end
func (v *viewer) changeLevel(step int) {
	if len(v.levels) == 0 {
		return
	}
	i := slices.Index(v.levels, v.sess.Level().Name)
	i = (i + step + len(v.levels)) % len(v.levels)
	if err := v.sess.ChangeLevel(v.levels[i]); err != nil {
		v.lastErr = err.Error()
		return
	}
	v.lastErr = ""
}

func (v *viewer) Draw(screen *ebiten.Image) {
	v.sess.Frame()

	// 0xAARRGGBB to RGBA bytes
	for i, p := range v.sess.Pixels() {
		v.rgba[i*4] = byte(p >> 16)
		v.rgba[i*4+1] = byte(p >> 8)
		v.rgba[i*4+2] = byte(p)
		v.rgba[i*4+3] = 0xFF
	}
	v.frame.WritePixels(v.rgba)
	screen.DrawImage(v.frame, nil)

	if v.overlay {
		msg := v.sess.Status()
		if v.lastErr != "" {
			msg += "\n" + v.lastErr
		}
		ebitenutil.DebugPrint(screen, msg)
	}
}

func (v *viewer) Layout(_, _ int) (int, int) {
	return v.sess.Size()
}
