// SPDX-FileCopyrightText: Copyright (C) 2026 David Stainton
// SPDX-License-Identifier: AGPL-3.0-only

package params

import (
	"fmt"
	"sort"
)

// Each named set uses the first odd primes as degrees, followed by one
// larger prime chosen so that 4*prod(L) - 1 is prime. The batch tables are
// the output of Partition with the recorded budget.
var (
	// P103 is a 103 bit toy set for tests and audits.
	P103 = mustNew(
		"p103",
		"51398abd3fbcbfe788035a7f23",
		[]uint64{
			3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59,
			61, 67, 71, 73, 79,
		},
		[]int{0, 5, 9, 13, 17},
		[]int{5, 9, 13, 17, 21},
		16,
	)

	// P512 uses the CSIDH-512 prime.
	P512 = mustNew(
		"p512",
		"65b48e8f740f89bffc8ab0d15e3e4c4ab42d083aedc88c425afbfcc69322c9cd" +
			"a7aac6c567f35507516730cc1f0b4f25c2721bf457aca8351b81b90533c6c87b",
		[]uint64{
			3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59,
			61, 67, 71, 73, 79, 83, 89, 97, 101, 103, 107, 109, 113, 127, 131, 137,
			139, 149, 151, 157, 163, 167, 173, 179, 181, 191, 193, 197, 199, 211, 223, 227,
			229, 233, 239, 241, 251, 257, 263, 269, 271, 277, 281, 283, 293, 307, 311, 313,
			317, 331, 337, 347, 349, 353, 359, 367, 373, 587,
		},
		[]int{0, 7, 13, 18, 23, 29, 34, 39, 45, 50, 55, 60, 65, 70, 73},
		[]int{7, 13, 18, 23, 29, 34, 39, 45, 50, 55, 60, 65, 70, 73, 74},
		32,
	)

	// P1024 is a 1020 bit set.
	P1024 = mustNew(
		"p1024",
		"ece55ed427012a9d89dec879007ebd7216c22bc86f21a080683cf25db31ad5bf" +
			"06de2471cf9386e4d6c594a8ad82d2df811d9c419ec83297611ad4f90441c800" +
			"978dbeed90a2b58b97c56d1de81ede56b317c5431541f40642aca4d5a313709c" +
			"2cab6a0e287f1bd514ba72cb8d89fd3a1d81eebbc3d344ddbe34c5460e36453",
		[]uint64{
			3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59,
			61, 67, 71, 73, 79, 83, 89, 97, 101, 103, 107, 109, 113, 127, 131, 137,
			139, 149, 151, 157, 163, 167, 173, 179, 181, 191, 193, 197, 199, 211, 223, 227,
			229, 233, 239, 241, 251, 257, 263, 269, 271, 277, 281, 283, 293, 307, 311, 313,
			317, 331, 337, 347, 349, 353, 359, 367, 373, 379, 383, 389, 397, 401, 409, 419,
			421, 431, 433, 439, 443, 449, 457, 461, 463, 467, 479, 487, 491, 499, 503, 509,
			521, 523, 541, 547, 557, 563, 569, 571, 577, 587, 593, 599, 601, 607, 613, 617,
			619, 631, 641, 643, 647, 653, 659, 661, 673, 677, 683, 691, 701, 709, 719, 727,
			733, 983,
		},
		[]int{0, 8, 15, 22, 29, 35, 41, 46, 52, 58, 64, 70, 76, 81, 87, 92, 98, 104, 110, 116, 122, 127, 129},
		[]int{8, 15, 22, 29, 35, 41, 46, 52, 58, 64, 70, 76, 81, 87, 92, 98, 104, 110, 116, 122, 127, 129, 130},
		48,
	)
)

var byName = map[string]*Set{
	P103.Name():  P103,
	P512.Name():  P512,
	P1024.Name(): P1024,
}

// ByName returns the built in set called name.
func ByName(name string) (*Set, error) {
	s, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("params: unknown parameter set %q", name)
	}
	return s, nil
}

// Names returns the names of the built in sets in sorted order.
func Names() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
