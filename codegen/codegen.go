// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package codegen produces the short public codes used to join a pool.
package codegen

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const (
	// Alphabet is the set of characters a join code may contain
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// DefaultLength is the length of every join code
	DefaultLength = 6
)

// Generator returns a candidate join code. Uniqueness is decided by the store,
// so implementations only need to be well distributed.
type Generator interface {
	Generate() (string, error)
}

// Random draws codes uniformly from Alphabet.
type Random struct {
	Length int
	// Source defaults to crypto/rand.Reader
	Source io.Reader
}

// NewRandom returns a generator of DefaultLength codes backed by crypto/rand
func NewRandom() *Random {
	return &Random{Length: DefaultLength, Source: rand.Reader}
}

func (g *Random) Generate() (string, error) {
	length := g.Length
	if length <= 0 {
		length = DefaultLength
	}
	src := g.Source
	if src == nil {
		src = rand.Reader
	}

	alphabetLen := big.NewInt(int64(len(Alphabet)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(src, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}
		code[i] = Alphabet[n.Int64()]
	}
	return string(code), nil
}

// Valid reports whether code has the join code shape
func Valid(code string) bool {
	if len(code) != DefaultLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}

// GeneratorFunc adapts a function to Generator
type GeneratorFunc func() (string, error)

func (f GeneratorFunc) Generate() (string, error) {
	return f()
}
