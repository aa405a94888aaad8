// Copyright ©2025 The gorich Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enrich

import (
	"math/big"
	"math/bits"
	"sort"
)

// universe maps between gene identifiers and the bit positions used by
// the per-term annotation vectors.
type universe struct {
	ids []string
	idx map[string]int
}

func newUniverse(ids []string) *universe {
	u := &universe{
		ids: make([]string, len(ids)),
		idx: make(map[string]int, len(ids)),
	}
	copy(u.ids, ids)
	sort.Strings(u.ids)
	for i, id := range u.ids {
		u.idx[id] = i
	}
	return u
}

// bits returns the bit vector selecting the given genes. Genes outside
// the universe are ignored; the caller is responsible for any policy on
// them.
func (u *universe) bits(genes []string) *big.Int {
	v := new(big.Int)
	for _, g := range genes {
		i, ok := u.idx[g]
		if ok {
			v.SetBit(v, i, 1)
		}
	}
	return v
}

// all returns the bit vector selecting the entire universe.
func (u *universe) all() *big.Int {
	v := new(big.Int)
	for i := range u.ids {
		v.SetBit(v, i, 1)
	}
	return v
}

// popCount returns the number of set bits in v.
func popCount(v *big.Int) int {
	var n int
	for _, w := range v.Bits() {
		n += bits.OnesCount(uint(w))
	}
	return n
}

// andCount returns the number of bits set in both a and b.
func andCount(a, b *big.Int) int {
	return popCount(new(big.Int).And(a, b))
}
