package engine

import "sort"

// Eccentricity returns the largest move count from origin to any reachable
// interior cell.
func (e *Engine) Eccentricity(origin Cell) int {
	max := 0
	for _, d := range e.Distances(origin) {
		if d > max {
			max = d
		}
	}
	return max
}

// GraphStats summarises the knight graph of a board.
type GraphStats struct {
	InteriorCells int
	Diameter      int
	Radius        int
	Connected     bool
	// Histogram[d] counts ordered pairs of distinct cells d moves apart.
	Histogram map[int]int
}

// Stats sweeps the board once per interior cell.
func (e *Engine) Stats() GraphStats {
	cells := e.board.InteriorCells()
	stats := GraphStats{
		InteriorCells: len(cells),
		Connected:     true,
		Histogram:     make(map[int]int),
		Radius:        -1,
	}
	for _, origin := range cells {
		dist := e.Distances(origin)
		if len(dist) != len(cells) {
			stats.Connected = false
		}
		ecc := 0
		for c, d := range dist {
			if c == origin {
				continue
			}
			stats.Histogram[d]++
			if d > ecc {
				ecc = d
			}
		}
		if ecc > stats.Diameter {
			stats.Diameter = ecc
		}
		if stats.Radius == -1 || ecc < stats.Radius {
			stats.Radius = ecc
		}
	}
	if stats.Radius == -1 {
		stats.Radius = 0
	}
	return stats
}

// SortedDistances returns the histogram keys in ascending order.
func (s GraphStats) SortedDistances() []int {
	keys := make([]int, 0, len(s.Histogram))
	for d := range s.Histogram {
		keys = append(keys, d)
	}
	sort.Ints(keys)
	return keys
}

// PathLabels renders a path as cell labels.
func (b Board) PathLabels(p Path) []string {
	labels := make([]string, len(p))
	for i, c := range p {
		labels[i] = b.Label(c)
	}
	return labels
}
