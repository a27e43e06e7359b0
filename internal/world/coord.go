// Package world provides galaxy geometry: intergalactic coordinates, sectors
// with their orbits, planets, regions and stations, and the Location sum type
// ships move through.
package world

import "fmt"

// Coord is a sector position on the intergalactic grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Distance is the number of single jumps between two coordinates
// (Chebyshev distance; diagonal jumps are allowed).
func (c Coord) Distance(o Coord) int {
	dx := abs(c.X - o.X)
	dy := abs(c.Y - o.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Adjacent reports whether o is exactly one jump away.
func (c Coord) Adjacent(o Coord) bool {
	return c.Distance(o) == 1
}

// StepToward returns the adjacent coordinate one jump closer to target.
func (c Coord) StepToward(target Coord) Coord {
	return Coord{X: c.X + sign(target.X-c.X), Y: c.Y + sign(target.Y-c.Y)}
}

// Neighbors returns the eight adjacent coordinates in a fixed order.
func (c Coord) Neighbors() []Coord {
	out := make([]Coord, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			out = append(out, Coord{X: c.X + dx, Y: c.Y + dy})
		}
	}
	return out
}

func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// Less orders coordinates row-major, used wherever iteration must be stable.
func (c Coord) Less(o Coord) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
