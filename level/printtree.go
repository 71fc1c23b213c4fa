package level

import (
	"fmt"
	"io"
)

// PrintTree writes the level's BSP tree to w, one member per line, children indented below
// their node with the front child first
func (l *Level) PrintTree(w io.Writer) {
	var printRecursive func(int, string)
	printRecursive = func(child int, prefix string) {
		if IsLeaf(child) {
			i := LeafIndex(child)
			if i >= len(l.SubSectors) {
				fmt.Fprintf(w, "%s- subsector %d (missing)\n", prefix, i)
				return
			}
			ss := l.SubSectors[i]
			fmt.Fprintf(w, "%s- subsector %d segs %d+%d sector %d\n", prefix, i, ss.FirstSeg, ss.NumSegs, ss.Sector)
			return
		}
		n := l.Nodes[child]
		fmt.Fprintf(w, "%s- node %d (%v,%v) dir (%v,%v)\n", prefix, child, n.X, n.Y, n.DX, n.DY)
		printRecursive(n.Children[0], prefix+"   ")
		printRecursive(n.Children[1], prefix+"   ")
	}

	printRecursive(l.Root(), "")
}
