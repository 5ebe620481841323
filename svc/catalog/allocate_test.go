package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func subs(pairs ...any) []Subscriber {
	out := make([]Subscriber, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, Subscriber{Email: pairs[i].(string), Qty: pairs[i+1].(int)})
	}
	return out
}

func TestAllocate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		subs      []Subscriber
		stock     int
		fulfilled []Subscriber
		remaining []Subscriber
	}{
		{
			name:      "large early request blocks later ones",
			subs:      subs("u1", 3, "u2", 4, "u3", 2),
			stock:     5,
			fulfilled: subs("u1", 3),
			remaining: subs("u2", 4, "u3", 2),
		},
		{
			name:      "exact fit",
			subs:      subs("u1", 2, "u2", 3),
			stock:     5,
			fulfilled: subs("u1", 2, "u2", 3),
		},
		{
			name:      "first request too large",
			subs:      subs("u1", 6, "u2", 1),
			stock:     5,
			remaining: subs("u1", 6, "u2", 1),
		},
		{
			name:      "huge quantities do not wrap the running sum",
			subs:      subs("a", math.MaxInt, "b", math.MaxInt),
			stock:     5,
			remaining: subs("a", math.MaxInt, "b", math.MaxInt),
		},
		{
			name:      "huge quantity after a fulfilled one",
			subs:      subs("a", 2, "b", math.MaxInt, "c", math.MaxInt),
			stock:     math.MaxInt,
			fulfilled: subs("a", 2),
			remaining: subs("b", math.MaxInt, "c", math.MaxInt),
		},
		{
			name:  "no subscribers",
			stock: 10,
		},
		{
			name:      "zero stock",
			subs:      subs("u1", 1),
			stock:     0,
			remaining: subs("u1", 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fulfilled, remaining := Allocate(tt.subs, tt.stock)
			assert.Equal(t, tt.fulfilled, fulfilled)
			assert.Equal(t, tt.remaining, remaining)
		})
	}
}

func TestAllocate_PreservesOrderAndInput(t *testing.T) {
	t.Parallel()

	in := subs("a", 1, "b", 10, "c", 1, "d", 1)
	orig := append([]Subscriber(nil), in...)

	fulfilled, remaining := Allocate(in, 4)
	assert.Equal(t, subs("a", 1), fulfilled)
	assert.Equal(t, subs("b", 10, "c", 1, "d", 1), remaining)
	assert.Equal(t, orig, in)
	assert.Len(t, append(fulfilled, remaining...), len(in))
}
