// Command wadinfo lists the contents of a WAD file and exports its graphics and level views as
// PNG images.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/stuarthighley/doomview/config"
	"github.com/stuarthighley/doomview/internal/session"
	"github.com/stuarthighley/doomview/level"
	"github.com/stuarthighley/doomview/render"
	"github.com/stuarthighley/doomview/wad"
)

func main() {
	configPath := flag.String("config", "config.yaml", "configuration file")
	wadPath := flag.String("wad", "", "WAD file, overriding the configuration")
	listLumps := flag.Bool("lumps", false, "list every lump")
	listLevels := flag.Bool("levels", true, "list levels")
	listTextures := flag.Bool("textures", false, "list wall textures")
	listFlats := flag.Bool("flats", false, "list flats")
	listSprites := flag.Bool("sprites", false, "list sprites")
	tree := flag.String("tree", "", "print the BSP tree of a level")
	export := flag.String("png", "", "export a texture, flat or picture lump as PNG")
	shot := flag.String("shot", "", "render a level from its player start as PNG")
	outDir := flag.String("out", ".", "directory for PNG files")
	verbose := flag.Bool("v", false, "log WAD loading")
	flag.Parse()

	log.Println("Starting")

	cfg := config.Default()
	if _, err := os.Stat(*configPath); err == nil {
		cfg = config.MustLoadConfig(*configPath)
	}
	if *wadPath != "" {
		cfg.WAD.Path = *wadPath
	}

	// Set WAD logger
	if *verbose {
		logger := log.New(os.Stderr, "", log.LstdFlags)
		wad.SetLogger(logger)
		render.SetLogger(logger)
		session.SetLogger(logger)
	}

	w, err := wad.Open(cfg.WAD.Path)
	if err != nil {
		log.Fatalln(err)
	}
	defer w.Close()

	h := w.Header()
	fmt.Printf("%v: %v with %v lumps\n", cfg.WAD.Path, h.Magic, h.NumLumps)

	if *listLumps {
		for i, l := range w.Lumps() {
			fmt.Println("Lump:", i, l.Name, l.Size)
		}
	}
	if *listLevels {
		for _, name := range w.LevelNames() {
			fmt.Println("Level:", name)
		}
	}
	if *listTextures {
		for i, name := range w.TextureNames() {
			t := w.Texture(level.TextureNum(i))
			fmt.Println("Texture:", i, name, t.Width, t.Height)
		}
	}
	if *listFlats {
		for i, name := range w.FlatNames() {
			fmt.Println("Flat:", i, name)
		}
	}
	if *listSprites {
		for i, name := range w.SpriteNames() {
			fmt.Println("Sprite:", i, name, w.NumFrames(i))
		}
	}

	if *tree != "" {
		l, err := w.ReadLevel(*tree)
		if err != nil {
			log.Fatalln(err)
		}
		l.PrintTree(os.Stdout)
	}

	if *export != "" {
		img, err := graphicImage(w, *export)
		if err != nil {
			log.Fatalln(err)
		}
		if err := writePNG(filepath.Join(*outDir, *export+".png"), img); err != nil {
			log.Fatalln(err)
		}
	}

	if *shot != "" {
		cfg.WAD.Map = *shot
		sess, err := session.New(w, cfg)
		if err != nil {
			log.Fatalln(err)
		}
		stats := sess.Frame()
		fmt.Println(sess.Status())
		if stats.DroppedVisplanes+stats.DroppedDrawSegs+stats.DroppedVisThings+stats.DroppedSilhouettes > 0 {
			fmt.Printf("Dropped: %+v\n", stats)
		}
		width, height := sess.Size()
		if err := writePNG(filepath.Join(*outDir, *shot+".png"), frameImage(sess.Pixels(), width, height)); err != nil {
			log.Fatalln(err)
		}
	}
}
