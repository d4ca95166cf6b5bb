// pkg/rand/rand.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	"fmt"
	"sync"
	"time"

	"github.com/MichaelTJones/pcg"
)

///////////////////////////////////////////////////////////////////////////
// Random numbers.

const pcgSequence = 0xda3e39cb94b95bdb

// Rand is a PCG32 generator. It is not safe for concurrent use; the
// package-level functions serialize access to a shared Rand.
type Rand struct {
	r *pcg.PCG32
}

// New returns a Rand seeded from the current time.
func New() *Rand {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Rand that generates a reproducible sequence for
// the given seed.
func NewSeeded(s int64) *Rand {
	r := &Rand{r: pcg.NewPCG32()}
	r.Seed(s)
	return r
}

func (r *Rand) Seed(s int64) {
	r.r.Seed(uint64(s), pcgSequence)
}

func (r *Rand) Uint32() uint32 {
	return r.r.Random()
}

// Intn returns a uniformly distributed value in [0,n).
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("rand: invalid argument to Intn: %d", n))
	}
	return int(r.r.Bounded(uint32(n)))
}

// Range returns a uniformly distributed value in [min,max).
func (r *Rand) Range(min, max int) int {
	return min + r.Intn(max-min)
}

// Float64 returns a uniformly distributed value in [0,1).
func (r *Rand) Float64() float64 {
	u := uint64(r.r.Random())<<32 | uint64(r.r.Random())
	return float64(u>>11) / (1 << 53)
}

// TailNumber returns a random USAF-style tail number of the form
// "61-0015", with a fiscal year in [58,64] and a serial in [15,94].
func (r *Rand) TailNumber() string {
	return fmt.Sprintf("%d-00%d", r.Range(58, 65), r.Range(15, 95))
}

// Drop-in replacement for the subset of math/rand that we use...
var (
	mu sync.Mutex
	r  = New()
)

func Seed(s int64) {
	mu.Lock()
	defer mu.Unlock()
	r.Seed(s)
}

func Intn(n int) int {
	mu.Lock()
	defer mu.Unlock()
	return r.Intn(n)
}

func Range(min, max int) int {
	mu.Lock()
	defer mu.Unlock()
	return r.Range(min, max)
}

func Float64() float64 {
	mu.Lock()
	defer mu.Unlock()
	return r.Float64()
}

func TailNumber() string {
	mu.Lock()
	defer mu.Unlock()
	return r.TailNumber()
}
