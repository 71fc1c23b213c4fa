package wad

import "github.com/stuarthighley/doomview/level"

// thingSprite is how a thing type looks when standing still
type thingSprite struct {
	sprite string
	frame  byte
	bright bool
}

// Appearance of the thing types placed in Doom and Doom II levels. Player starts, teleport
// destinations and other markers have no entry and are not spawned.
var thingSprites = map[int]thingSprite{
	// Monsters
	7:    {"SPID", 'A', false},
	9:    {"SPOS", 'A', false},
	16:   {"CYBR", 'A', false},
	58:   {"SARG", 'A', false},
	64:   {"VILE", 'A', false},
	65:   {"CPOS", 'A', false},
	66:   {"SKEL", 'A', false},
	67:   {"FATT", 'A', false},
	68:   {"BSPI", 'A', false},
	69:   {"BOS2", 'A', false},
	71:   {"PAIN", 'A', false},
	84:   {"SSWV", 'A', false},
	3001: {"TROO", 'A', false},
	3002: {"SARG", 'A', false},
	3003: {"BOSS", 'A', false},
	3004: {"POSS", 'A', false},
	3005: {"HEAD", 'A', false},
	3006: {"SKUL", 'A', true},

	// Weapons and ammunition
	8:    {"BPAK", 'A', false},
	2001: {"SHOT", 'A', false},
	2002: {"MGUN", 'A', false},
	2003: {"LAUN", 'A', false},
	2004: {"PLAS", 'A', false},
	2005: {"CSAW", 'A', false},
	2006: {"BFUG", 'A', false},
	2007: {"CLIP", 'A', false},
	2008: {"SHEL", 'A', false},
	2010: {"ROCK", 'A', false},
	2046: {"BROK", 'A', false},
	2047: {"CELL", 'A', false},
	2048: {"AMMO", 'A', false},
	2049: {"SBOX", 'A', false},
	82:   {"SGN2", 'A', false},
	17:   {"CELP", 'A', false},

	// Health, armour and powerups
	2011: {"STIM", 'A', false},
	2012: {"MEDI", 'A', false},
	2013: {"SOUL", 'A', true},
	2014: {"BON1", 'A', false},
	2015: {"BON2", 'A', false},
	2018: {"ARM1", 'A', false},
	2019: {"ARM2", 'A', true},
	2022: {"PINV", 'A', true},
	2023: {"PSTR", 'A', true},
	2024: {"PINS", 'A', true},
	2025: {"SUIT", 'A', true},
	2026: {"PMAP", 'A', true},
	2045: {"PVIS", 'A', true},
	83:   {"MEGA", 'A', true},

	// Keys
	5:  {"BKEY", 'A', false},
	6:  {"YKEY", 'A', false},
	13: {"RKEY", 'A', false},
	38: {"RSKU", 'A', false},
	39: {"YSKU", 'A', false},
	40: {"BSKU", 'A', false},

	// Obstacles
	2028: {"COLU", 'A', true},
	2035: {"BAR1", 'A', false},
	30:   {"COL1", 'A', false},
	31:   {"COL2", 'A', false},
	32:   {"COL3", 'A', false},
	33:   {"COL4", 'A', false},
	34:   {"CAND", 'A', true},
	35:   {"CBRA", 'A', true},
	36:   {"COL5", 'A', false},
	37:   {"COL6", 'A', false},
	41:   {"CEYE", 'A', true},
	42:   {"FSKU", 'A', true},
	43:   {"TRE1", 'A', false},
	44:   {"TBLU", 'A', true},
	45:   {"TGRN", 'A', true},
	46:   {"TRED", 'A', true},
	47:   {"SMIT", 'A', false},
	48:   {"ELEC", 'A', false},
	54:   {"TRE2", 'A', false},
	55:   {"SMBT", 'A', true},
	56:   {"SMGT", 'A', true},
	57:   {"SMRT", 'A', true},
	70:   {"FCAN", 'A', true},
	85:   {"TLMP", 'A', true},
	86:   {"TLP2", 'A', true},

	// Decorations
	10: {"PLAY", 'W', false},
	12: {"PLAY", 'W', false},
	15: {"PLAY", 'N', false},
	18: {"POSS", 'L', false},
	19: {"SPOS", 'L', false},
	20: {"TROO", 'M', false},
	21: {"SARG", 'N', false},
	22: {"HEAD", 'L', false},
	24: {"POL5", 'A', false},
	25: {"POL1", 'A', false},
	26: {"POL6", 'A', false},
	27: {"POL4", 'A', false},
	28: {"POL2", 'A', false},
	29: {"POL3", 'A', true},
}

// spawnThings adds a mobj for each single player thing whose sprite the WAD holds
func (w *WAD) spawnThings(l *level.Level) {
	spawned := 0
	for _, t := range l.Things {
		if t.MultiplayerOnly {
			continue
		}
		ts, ok := thingSprites[t.Type]
		if !ok {
			continue
		}
		sprite := w.SpriteNum(ts.sprite)
		frame := int(ts.frame - 'A')
		if sprite < 0 || frame >= w.NumFrames(sprite) {
			logger.Printf("Thing type %v: no sprite %v%c", t.Type, ts.sprite, ts.frame)
			continue
		}
		l.SpawnMobj(level.Mobj{
			X:          float64(t.X),
			Y:          float64(t.Y),
			Angle:      t.Angle,
			Sprite:     sprite,
			Frame:      frame,
			FullBright: ts.bright,
		}, true)
		spawned++
	}
	logger.Printf("Spawned %v of %v things", spawned, len(l.Things))
}
