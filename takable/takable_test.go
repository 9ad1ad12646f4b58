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

package takable

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAddValueAppliesImmediatelyWhenNotTaken(t *testing.T) {
	m := New(map[string]int{})
	m.AddValue(func(v map[string]int) { v["a"] = 1 }, true)

	var seen int
	ok := m.View(func(v map[string]int) { seen = v["a"] })
	require.True(t, ok)
	require.Equal(t, 1, seen)
}

func TestAddValueQueuesWhileTaken(t *testing.T) {
	m := New(map[string]int{"a": 1})
	v, err := m.Take()
	require.NoError(t, err)
	require.True(t, m.IsTaken())

	m.AddValue(func(vv map[string]int) { vv["b"] = 2 }, true) // applyNow ignored while taken
	require.False(t, m.View(func(map[string]int) {}))         // can't view while taken

	require.NoError(t, m.Merge(v))
	require.False(t, m.IsTaken())

	var got map[string]int
	m.View(func(v map[string]int) { got = v })
	require.Equal(t, map[string]int{"a": 1, "b": 2}, got)
}

func TestMergeWithoutTakeFails(t *testing.T) {
	m := New(map[string]int{})
	err := m.Merge(map[string]int{})
	require.ErrorIs(t, err, ErrNotTaken)
}

func TestTakeTwiceFails(t *testing.T) {
	m := New(map[string]int{})
	_, err := m.Take()
	require.NoError(t, err)
	_, err = m.Take()
	require.ErrorIs(t, err, ErrAlreadyTaken)
}

// TestTakeMergeReplayEquivalence is the property in spec.md §8 invariant 5:
// after a take+merge cycle with K intermediate add_value calls, the final
// state equals applying all K actions to the pre-take snapshot directly.
func TestTakeMergeReplayEquivalence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.MapOf(rapid.StringN(1, 4, 8), rapid.IntRange(0, 1000)).Draw(t, "initial")
		keys := rapid.SliceOfN(rapid.StringN(1, 4, 8), 0, 20).Draw(t, "keys")
		vals := rapid.SliceOfN(rapid.IntRange(0, 1000), 0, 20).Draw(t, "vals")
		n := len(keys)
		if len(vals) < n {
			n = len(vals)
		}

		baseline := cloneMap(initial)
		actions := make([]Action[map[string]int], 0, n)
		for i := 0; i < n; i++ {
			k, v := keys[i], vals[i]
			actions = append(actions, func(m map[string]int) { m[k] = v })
		}
		for _, a := range actions {
			a(baseline)
		}

		m := New(cloneMap(initial))
		taken, err := m.Take()
		require.NoError(t, err)
		for _, a := range actions {
			m.AddValue(a, true) // applyNow is irrelevant once taken; always queues
		}
		require.NoError(t, m.Merge(taken))

		var got map[string]int
		ok := m.View(func(v map[string]int) { got = cloneMap(v) })
		require.True(t, ok)
		require.Equal(t, baseline, got)
	})
}

func cloneMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
