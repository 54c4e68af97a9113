package game

import (
	"math/rand"

	"github.com/dkeye/impostor/internal/core"
)

type sysRand struct{}

func (sysRand) IntN(n int) int { return rand.Intn(n) }

// NewRand returns the production randomness source. Uniform, not
// cryptographic; tests inject a scripted core.Rand instead.
func NewRand() core.Rand { return sysRand{} }
