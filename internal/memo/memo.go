// Package memo issues the correlation tokens attached to expected donations.
package memo

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const digits = 6

// Generator produces correlation tokens of the form "<prefix><6 digits>".
// A token is generated once per session and ties an incoming ledger payment
// back to the consultation that requested it.
type Generator struct {
	prefix string
}

// NewGenerator returns a Generator using the supplied token prefix.
func NewGenerator(prefix string) *Generator {
	return &Generator{prefix: prefix}
}

// Generate returns a fresh correlation token.
func (g *Generator) Generate() string {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand only fails when the platform entropy source is broken.
		panic(fmt.Sprintf("memo: entropy source unavailable: %v", err))
	}

	return fmt.Sprintf("%s%0*d", g.prefix, digits, n)
}
