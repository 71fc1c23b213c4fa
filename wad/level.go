package wad

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/stuarthighley/doomview/bam"
	"github.com/stuarthighley/doomview/level"
)

type binThing struct {
	X       int16
	Y       int16
	Angle   int16
	Type    int16
	Options int16
}

type binLine struct {
	VertexStart, VertexEnd int16
	Flags                  int16
	Type                   int16
	SectorTag              int16
	SideR, SideL           int16
}

type binSide struct {
	XOffset       int16
	YOffset       int16
	UpperTexture  String8
	LowerTexture  String8
	MiddleTexture String8
	SectorNum     int16
}

type binVertex struct {
	X, Y int16
}

type binLineSegment struct {
	V1        int16
	V2        int16
	Angle     int16 // Full circle is -32768 to 32767.
	LineNum   int16
	Direction int16 // 0 - same as linedef, 1 - opposite to linedef
	Offset    int16 // Distance along line to start of segment
}

type binSubSector struct {
	NumSegments      int16
	StartLineSegment int16
}

type binBBox struct {
	Top    int16
	Bottom int16
	Left   int16
	Right  int16
}

type binNode struct {
	X, Y                 int16
	DX, DY               int16
	BBoxR, BBoxL         binBBox
	ChildNumR, ChildNumL int16
}

type binSector struct {
	FloorHeight    int16
	CeilingHeight  int16
	FloorTexture   String8
	CeilingTexture String8
	LightLevel     int16
	Type           int16
	TagNum         int16
}

// Lumps following a level's marker lump, in the order Doom expects them
var levelLumps = []string{"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SEGS", "SSECTORS", "NODES", "SECTORS", "REJECT", "BLOCKMAP"}

// ReadLevel reads level data from WAD archive and returns a validated level with its
// subsectors resolved to sectors, its sky set and mobjs spawned for its things.
func (w *WAD) ReadLevel(name string) (*level.Level, error) {
	logger.Printf("Reading Level %v ...", name)
	name = strings.ToUpper(name)
	levelIdx, ok := w.levels[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, name)
	}

	lumps := make(map[string]int)
	for i := levelIdx + 1; i < len(w.lumpInfos) && i <= levelIdx+len(levelLumps); i++ {
		lumpName := w.lumpInfos[i].Name
		if !isLevelLump(lumpName) {
			break
		}
		lumps[lumpName] = i
	}

	l := &level.Level{Name: name}
	var err error
	read := func(lumpName string, fn func(int) error) {
		if err != nil {
			return
		}
		i, ok := lumps[lumpName]
		if !ok {
			err = fmt.Errorf("%w: %s %s", ErrLumpNotFound, name, lumpName)
			return
		}
		if e := fn(i); e != nil {
			err = fmt.Errorf("%s %s: %w", name, lumpName, e)
		}
	}
	read("THINGS", func(i int) error { return w.readThings(i, l) })
	read("LINEDEFS", func(i int) error { return w.readLines(i, l) })
	read("SIDEDEFS", func(i int) error { return w.readSides(i, l) })
	read("VERTEXES", func(i int) error { return w.readVertexes(i, l) })
	read("SEGS", func(i int) error { return w.readLineSegments(i, l) })
	read("SSECTORS", func(i int) error { return w.readSubSectors(i, l) })
	read("NODES", func(i int) error { return w.readNodes(i, l) })
	read("SECTORS", func(i int) error { return w.readSectors(i, l) })
	if err != nil {
		return nil, err
	}

	if err := l.ResolveSubSectors(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	l.SkyFlat = w.FlatNum(SkyFlatName)
	l.SkyTexture = w.TextureNum(SkyTextureName(name))
	w.spawnThings(l)
	return l, nil
}

func isLevelLump(name string) bool {
	for _, n := range levelLumps {
		if n == name {
			return true
		}
	}
	return false
}

// SkyTextureName returns the sky texture drawn in a level: SKY1 to SKY4 by episode for ExMy
// levels, SKY1 otherwise
func SkyTextureName(levelName string) string {
	if len(levelName) == 4 && levelName[0] == 'E' && levelName[2] == 'M' && levelName[1] >= '1' && levelName[1] <= '4' {
		return "SKY" + levelName[1:2]
	}
	return "SKY1"
}

// readBins decodes lump i as a slice of fixed size records
func readBins[T any](w *WAD, i int) ([]T, error) {
	var zero T
	size := binary.Size(zero)
	info := w.lumpInfos[i]
	if info.Size%size != 0 {
		logger.Printf("%v: %v trailing bytes", info.Name, info.Size%size)
	}
	bins := make([]T, info.Size/size)
	if err := binary.Read(w.lumpReader(i), binary.LittleEndian, bins); err != nil {
		return nil, err
	}
	return bins, nil
}

func (w *WAD) readThings(i int, l *level.Level) error {
	binThings, err := readBins[binThing](w, i)
	if err != nil {
		return err
	}

	// Translate to canonical
	l.Things = make([]level.Thing, len(binThings))
	for i, t := range binThings {
		l.Things[i] = level.Thing{
			X:               int(t.X),
			Y:               int(t.Y),
			Angle:           bam.FromDegrees(t.Angle),
			Type:            int(t.Type),
			Skill1and2:      t.Options&1 != 0,
			Skill3:          t.Options&2 != 0,
			Skill4and5:      t.Options&4 != 0,
			Ambush:          t.Options&8 != 0,
			MultiplayerOnly: t.Options&0x10 != 0,
		}
	}
	logger.Printf("Read %v things", len(l.Things))
	return nil
}

func (w *WAD) readLines(i int, l *level.Level) error {
	binLines, err := readBins[binLine](w, i)
	if err != nil {
		return err
	}

	// Translate to canonical
	l.Lines = make([]level.Line, len(binLines))
	for i, line := range binLines {
		l.Lines[i] = level.Line{
			V1:      int(uint16(line.VertexStart)),
			V2:      int(uint16(line.VertexEnd)),
			Flags:   level.LineFlags(uint16(line.Flags)),
			Special: int(line.Type),
			Tag:     int(line.SectorTag),
			Front:   sideNum(line.SideR),
			Back:    sideNum(line.SideL),
		}
	}
	logger.Printf("Read %v lines", len(l.Lines))
	return nil
}

// sideNum converts a sidedef reference, where -1 means no side
func sideNum(n int16) int {
	if n == -1 {
		return level.NoSide
	}
	return int(uint16(n))
}

func (w *WAD) readSides(i int, l *level.Level) error {
	binSides, err := readBins[binSide](w, i)
	if err != nil {
		return err
	}

	// Translate to canonical
	l.Sides = make([]level.Side, len(binSides))
	for i, s := range binSides {
		l.Sides[i] = level.Side{
			XOffset: float64(s.XOffset),
			YOffset: float64(s.YOffset),
			Upper:   w.sideTexture(s.UpperTexture),
			Lower:   w.sideTexture(s.LowerTexture),
			Middle:  w.sideTexture(s.MiddleTexture),
			Sector:  int(uint16(s.SectorNum)),
		}
	}
	logger.Printf("Read %v sides", len(l.Sides))
	return nil
}

func (w *WAD) sideTexture(name String8) level.TextureNum {
	s := name.String()
	if s == NoTextureName || s == "" {
		return level.NoTexture
	}
	n := w.TextureNum(s)
	if n == level.NoTexture {
		logger.Printf("Unknown texture %v", s)
	}
	return n
}

func (w *WAD) readVertexes(i int, l *level.Level) error {
	binVertexes, err := readBins[binVertex](w, i)
	if err != nil {
		return err
	}

	// Translate to canonical
	l.Vertices = make([]level.Vertex, len(binVertexes))
	for i, v := range binVertexes {
		l.Vertices[i] = level.Vertex{X: int(v.X), Y: int(v.Y)}
	}
	logger.Printf("Read %v vertexes", len(l.Vertices))
	return nil
}

// readLineSegments needs the lines already read, to find each seg's sides
func (w *WAD) readLineSegments(i int, l *level.Level) error {
	binSegments, err := readBins[binLineSegment](w, i)
	if err != nil {
		return err
	}

	// Translate to canonical
	l.Segs = make([]level.Seg, len(binSegments))
	for i, s := range binSegments {
		lineNum := int(uint16(s.LineNum))
		if lineNum >= len(l.Lines) {
			return fmt.Errorf("%w: seg %d line %d", level.ErrMalformed, i, lineNum)
		}
		line := &l.Lines[lineNum]
		front, back := line.Front, line.Back
		if s.Direction != 0 {
			front, back = back, front
		}
		l.Segs[i] = level.Seg{
			V1:     int(uint16(s.V1)),
			V2:     int(uint16(s.V2)),
			Angle:  bam.Angle(uint16(s.Angle)) << 16,
			Line:   lineNum,
			Offset: float64(s.Offset),
			Front:  front,
			Back:   back,
		}
	}
	logger.Printf("Read %v line segments", len(l.Segs))
	return nil
}

func (w *WAD) readSubSectors(i int, l *level.Level) error {
	binSubSectors, err := readBins[binSubSector](w, i)
	if err != nil {
		return err
	}

	// Translate to canonical
	l.SubSectors = make([]level.SubSector, len(binSubSectors))
	for i, s := range binSubSectors {
		l.SubSectors[i] = level.SubSector{
			FirstSeg: int(uint16(s.StartLineSegment)),
			NumSegs:  int(uint16(s.NumSegments)),
		}
	}
	logger.Printf("Read %v sub sectors", len(l.SubSectors))
	return nil
}

func (w *WAD) readNodes(i int, l *level.Level) error {
	binNodes, err := readBins[binNode](w, i)
	if err != nil {
		return err
	}

	bbox := func(b binBBox) level.BoundBox {
		return level.BoundBox{
			Top:    float64(b.Top),
			Bottom: float64(b.Bottom),
			Left:   float64(b.Left),
			Right:  float64(b.Right),
		}
	}

	// Translate to canonical
	l.Nodes = make([]level.Node, len(binNodes))
	for i, n := range binNodes {
		l.Nodes[i] = level.Node{
			X:        float64(n.X),
			Y:        float64(n.Y),
			DX:       float64(n.DX),
			DY:       float64(n.DY),
			BBox:     [2]level.BoundBox{bbox(n.BBoxR), bbox(n.BBoxL)},
			Children: [2]int{int(uint16(n.ChildNumR)), int(uint16(n.ChildNumL))},
		}
	}
	logger.Printf("Read %v nodes", len(l.Nodes))
	return nil
}

func (w *WAD) readSectors(i int, l *level.Level) error {
	binSectors, err := readBins[binSector](w, i)
	if err != nil {
		return err
	}

	// Translate to canonical
	l.Sectors = make([]level.Sector, len(binSectors))
	for i, s := range binSectors {
		l.Sectors[i] = level.Sector{
			FloorHeight:   float64(s.FloorHeight),
			CeilingHeight: float64(s.CeilingHeight),
			FloorFlat:     w.sectorFlat(s.FloorTexture),
			CeilingFlat:   w.sectorFlat(s.CeilingTexture),
			LightLevel:    int(s.LightLevel),
			Special:       level.SectorType(s.Type),
			Tag:           int(s.TagNum),
		}
	}
	logger.Printf("Read %v Sectors", len(l.Sectors))
	return nil
}

func (w *WAD) sectorFlat(name String8) level.FlatNum {
	n := w.FlatNum(name.String())
	if n == level.NoFlat {
		logger.Printf("Unknown flat %v", name)
	}
	return n
}
