// Command doomterm walks a camera through a level of a WAD file in a true colour terminal. Each
// character cell shows two pixels as a half block.
//
// Arrow keys or wasd move and turn, Tab changes level, o toggles the status line and Escape quits.
package main

import (
	"flag"
	"image"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/exp/slices"

	"github.com/stuarthighley/doomview/config"
	"github.com/stuarthighley/doomview/internal/session"
	"github.com/stuarthighley/doomview/render"
	"github.com/stuarthighley/doomview/wad"
)

// Ticks applied per key press, since terminals report no key releases
const keyTicks = 2

type viewer struct {
	screen tcell.Screen
	sess   *session.Session
	levels []string

	frame  *image.RGBA // Renderer output
	cells  *image.RGBA // Frame scaled to the terminal, two rows per cell
	status bool

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

	// The terminal owns stdout, so only a log file makes sense
	if cfg.Log.Output == "stderr" || cfg.Log.Output == "stdout" {
		cfg.Log.Output = "none"
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

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalln(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalln(err)
	}
	defer screen.Fini()

	width, height := sess.Size()
	v := &viewer{
		screen: screen,
		sess:   sess,
		levels: w.LevelNames(),
		frame:  image.NewRGBA(image.Rect(0, 0, width, height)),
		status: true,
	}
	v.resize()
	v.run()
}

func (v *viewer) run() {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- v.screen.PollEvent()
		}
	}()

	dirty := true
	for {
		select {
		case ev := <-eventChan:
			if !v.handleInput(ev) {
				return
			}
			dirty = true
		case <-ticker.C:
			if dirty {
				v.draw()
				dirty = false
			}
		}
	}
}

// handleInput applies an event and reports whether to keep running
func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			v.sess.Move(keyTicks, 0)
		case tcell.KeyDown:
			v.sess.Move(-keyTicks, 0)
		case tcell.KeyLeft:
			v.sess.Turn(keyTicks)
		case tcell.KeyRight:
			v.sess.Turn(-keyTicks)
		case tcell.KeyTab:
			v.changeLevel()
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'w':
				v.sess.Move(keyTicks, 0)
			case 's':
				v.sess.Move(-keyTicks, 0)
			case 'a':
				v.sess.Move(0, -keyTicks)
			case 'd':
				v.sess.Move(0, keyTicks)
			case 'o':
				v.status = !v.status
			case 'q':
				return false
			}
		}
	case *tcell.EventResize:
		v.resize()
		v.screen.Sync()
	}
	return true
}

func (v *viewer) changeLevel() {
	if len(v.levels) == 0 {
		return
	}
	i := slices.Index(v.levels, v.sess.Level().Name)
	v.lastErr = ""
	if err := v.sess.ChangeLevel(v.levels[(i+1)%len(v.levels)]); err != nil {
		v.lastErr = err.Error()
	}
}

func (v *viewer) resize() {
	cols, rows := v.screen.Size()
	v.cells = image.NewRGBA(image.Rect(0, 0, max(cols, 1), max(rows, 1)*2))
}

func (v *viewer) draw() {
	v.sess.Frame()
	w, h := v.sess.Size()
	toImage(v.sess.Pixels(), w, h, v.frame)
	scaleTo(v.cells, v.frame)

	bounds := v.cells.Bounds()
	for y := 0; y < bounds.Dy()/2; y++ {
		for x := range bounds.Dx() {
			top := v.cells.RGBAAt(x, y*2)
			bottom := v.cells.RGBAAt(x, y*2+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			v.screen.SetContent(x, y, '▀', nil, style)
		}
	}

	if v.status {
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
		msg := v.sess.Status()
		if v.lastErr != "" {
			msg += " | " + v.lastErr
		}
		for x, r := range []rune(msg) {
			v.screen.SetContent(x, 0, r, nil, style)
		}
	}
	v.screen.Show()
}
