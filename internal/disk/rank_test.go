// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package disk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRank(t *testing.T) {
	t.Run("unrated disc scores zero", func(t *testing.T) {
		assert.Zero(t, Rank(0, 0))
	})

	t.Run("bounded in unit interval", func(t *testing.T) {
		cases := [][2]int{{1, 0}, {0, 1}, {50, 50}, {1000, 0}, {0, 1000}, {3, 7}}
		for _, c := range cases {
			r := Rank(c[0], c[1])
			assert.GreaterOrEqual(t, r, 0.0, "ups=%d downs=%d", c[0], c[1])
			assert.LessOrEqual(t, r, 1.0, "ups=%d downs=%d", c[0], c[1])
		}
	})

	t.Run("monotonic in ups at fixed downs", func(t *testing.T) {
		for downs := 0; downs <= 5; downs++ {
			prev := Rank(0, downs)
			for ups := 1; ups <= 50; ups++ {
				r := Rank(ups, downs)
				assert.GreaterOrEqual(t, r, prev, "ups=%d downs=%d", ups, downs)
				prev = r
			}
		}
	})

	t.Run("more confidence with more votes", func(t *testing.T) {
		// Same proportion, larger sample, tighter lower bound.
		assert.Greater(t, Rank(80, 20), Rank(8, 2))
	})

	t.Run("all downs stays near zero", func(t *testing.T) {
		assert.Less(t, Rank(0, 100), 0.05)
	})
}
