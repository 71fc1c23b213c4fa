package render

import "math"

// A drawSeg records a rasterized wall's columns and how it occludes what lies behind it. With
// both silhouettes nil the wall is opaque. A masked drawSeg also holds the texture column of its
// mid texture per screen column, drawn later among the sprites.
type drawSeg struct {
	seg       int
	x1, x2    int
	scale1    float64
	scale2    float64
	scaleStep float64
	top       []int // Last occluded row per column, or nil
	bottom    []int // First occluded row per column, or nil
	masked    []int // Texture column, or maskedDone
}

// maskedDone marks a masked column with nothing left to draw
const maskedDone = math.MaxInt

func (ds *drawSeg) opaque() bool {
	return ds.top == nil && ds.bottom == nil && ds.masked == nil
}

// addDrawSeg appends a draw seg for columns [x1, x2], or returns nil if the table is full
func (r *Renderer) addDrawSeg(x1, x2 int, scale1, scale2, scaleStep float64) *drawSeg {
	if len(r.drawSegs) == cap(r.drawSegs) {
		r.drop(overflowDrawSegs)
		return nil
	}
	r.drawSegs = append(r.drawSegs, drawSeg{
		seg:       r.curSeg,
		x1:        x1,
		x2:        x2,
		scale1:    scale1,
		scale2:    scale2,
		scaleStep: scaleStep,
	})
	return &r.drawSegs[len(r.drawSegs)-1]
}

// allocSilhouette takes n entries from the silhouette scratch, or returns nil if exhausted
func (r *Renderer) allocSilhouette(n int) []int {
	if r.silEnd+n > len(r.silhouettes) {
		r.drop(overflowSilhouettes)
		return nil
	}
	s := r.silhouettes[r.silEnd : r.silEnd+n : r.silEnd+n]
	r.silEnd += n
	return s
}

// addSilhouette registers a draw seg carrying a copy of clip[x1:x2+1] as its top or bottom
// silhouette
func (r *Renderer) addSilhouette(x1, x2 int, scale1, scale2, scaleStep float64, clip []int, isTop bool) {
	n := x2 + 1 - x1
	if len(r.drawSegs) == cap(r.drawSegs) {
		r.drop(overflowDrawSegs)
		return
	}
	sil := r.allocSilhouette(n)
	if sil == nil {
		return
	}
	copy(sil, clip[x1:x2+1])
	ds := r.addDrawSeg(x1, x2, scale1, scale2, scaleStep)
	if isTop {
		ds.top = sil
	} else {
		ds.bottom = sil
	}
}

// addMasked registers a masked draw seg with every column marked done. Its silhouettes are
// filled by the caller after the wall is rasterized.
func (r *Renderer) addMasked(x1, x2 int, scale1, scale2, scaleStep float64) *drawSeg {
	n := x2 + 1 - x1
	if len(r.drawSegs) == cap(r.drawSegs) {
		r.drop(overflowDrawSegs)
		return nil
	}
	sil := r.allocSilhouette(3 * n)
	if sil == nil {
		return nil
	}
	ds := r.addDrawSeg(x1, x2, scale1, scale2, scaleStep)
	ds.top, ds.bottom, ds.masked = sil[:n:n], sil[n:2*n:2*n], sil[2*n:]
	for i := range ds.masked {
		ds.masked[i] = maskedDone
	}
	r.stats.MaskedSegs++
	return ds
}
