// Copyright 2026 The Gateway Core Authors
// This file is part of gateway-core.
//
// gateway-core is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gateway-core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with gateway-core. If not, see <http://www.gnu.org/licenses/>.

package stakemap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lite-svm/gateway-core/block"
)

// TestTakableHandoffUnderLoad is scenario S6 from spec.md §8.
func TestTakableHandoffUnderLoad(t *testing.T) {
	m := New()
	for i := 0; i < 10000; i++ {
		AddDelegation(m, Entry{Pubkey: string(rune(i)), Lamports: 1, UpdateSlot: 1})
	}

	table, err := m.Take()
	require.NoError(t, err)
	require.Len(t, table, 10000)

	for i := 0; i < 1000; i++ {
		AddDelegation(m, Entry{Pubkey: string(rune(10000 + i)), Lamports: 2, UpdateSlot: 1})
	}

	require.NoError(t, m.Merge(table))

	totals, err := (&Recomputer{}).RecomputeOnce(m)
	require.NoError(t, err)
	require.Equal(t, 11000, totals.Entries)
}

func TestAddDelegationNewerSlotWins(t *testing.T) {
	m := New()
	AddDelegation(m, Entry{Pubkey: "v1", Lamports: 100, UpdateSlot: 5})
	AddDelegation(m, Entry{Pubkey: "v1", Lamports: 50, UpdateSlot: 3}) // older, must not overwrite

	var got Entry
	m.View(func(table map[string]Entry) { got = table["v1"] })
	require.Equal(t, uint64(100), got.Lamports)
	require.Equal(t, block.Slot(5), got.UpdateSlot)
}

func TestAddDelegationEqualSlotTieBreakPrefersLatestCall(t *testing.T) {
	m := New()
	AddDelegation(m, Entry{Pubkey: "v1", Lamports: 100, UpdateSlot: 5})
	AddDelegation(m, Entry{Pubkey: "v1", Lamports: 200, UpdateSlot: 5})

	var got Entry
	m.View(func(table map[string]Entry) { got = table["v1"] })
	require.Equal(t, uint64(200), got.Lamports)
}

func TestRecomputeOnceSumsLamports(t *testing.T) {
	m := New()
	AddDelegation(m, Entry{Pubkey: "a", Lamports: 10, UpdateSlot: 1})
	AddDelegation(m, Entry{Pubkey: "b", Lamports: 20, UpdateSlot: 1})

	r := NewRecomputer(0, nil)
	totals, err := r.RecomputeOnce(m)
	require.NoError(t, err)
	require.Equal(t, 2, totals.Entries)
	require.Equal(t, uint64(30), totals.TotalLamports)
}
