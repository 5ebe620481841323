package catalog

// Allocate splits subs, in arrival order, into fulfilled and remaining.
// Subscriber i is fulfilled iff the quantities of subs[0..i] sum to at most
// stock. A large early request therefore blocks later ones even when they
// would fit on their own.
//
// Quantities are positive, so once one prefix exceeds stock every later one
// does too. The sum is never allowed past stock, which keeps it from
// overflowing on huge quantities.
func Allocate(subs []Subscriber, stock int) (fulfilled, remaining []Subscriber) {
	sum, blocked := 0, false
	for _, s := range subs {
		if !blocked && s.Qty <= stock-sum {
			sum += s.Qty
			fulfilled = append(fulfilled, s)
			continue
		}
		blocked = true
		remaining = append(remaining, s)
	}
	return fulfilled, remaining
}
