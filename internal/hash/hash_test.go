/*
Copyright © 2020 the EnPrep authors.
This file is part of EnPrep.

EnPrep is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EnPrep is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EnPrep.  If not, see <http://www.gnu.org/licenses/>.
*/

package hash

import "testing"

type key struct {
	Path, Header string
	Periods      int
}

type named string

func (n named) String() string { return "named:" + string(n) }

func TestHash(t *testing.T) {
	a := Hash(key{Path: "a.csv", Header: "x", Periods: 24})
	if b := Hash(key{Path: "a.csv", Header: "x", Periods: 24}); a != b {
		t.Errorf("equal keys hash to %s and %s", a, b)
	}
	if b := Hash(key{Path: "a.csv", Header: "x", Periods: 48}); a == b {
		t.Error("different keys have the same hash")
	}
	if len(a) != 16 {
		t.Errorf("hash %q has length %d", a, len(a))
	}
	if h := Hash(named("x")); h != "named:x" {
		t.Errorf("stringer hash %q", h)
	}
	// Channels cannot be gob-encoded.
	c := make(chan int)
	if h := Hash(c); h != Hash(c) {
		t.Error("fallback hash is not stable")
	}
}
