// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package feed

import (
	"math/rand/v2"
	"sync"
)

// Bounds of the synthetic sell values, inclusive.
const (
	MinSell = 1000
	MaxSell = 99999
)

// PageNames are the labels of every sample, in order.
var PageNames = []string{"Page A", "Page B", "Page C", "Page D", "Page E", "Page F"}

// Point is one entry of a feed payload.
type Point struct {
	Name string `json:"name"`
	Sell int    `json:"sell"`
}

// Generator produces synthetic feed payloads.
type Generator struct {
	rng *rand.Rand
	mu  sync.Mutex
}

// NewGenerator returns a generator drawing from src, or from a random seed when src is nil.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Generator{rng: rand.New(src)}
}

// Sample returns one point per page with a uniform sell value in [MinSell, MaxSell].
func (g *Generator) Sample() []Point {
	g.mu.Lock()
	defer g.mu.Unlock()

	points := make([]Point, len(PageNames))
	for i, name := range PageNames {
		points[i] = Point{Name: name, Sell: MinSell + g.rng.IntN(MaxSell-MinSell+1)}
	}
	return points
}
