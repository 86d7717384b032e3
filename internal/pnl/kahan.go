package pnl

// kahanSum accumulates floats with Kahan compensation. Vega magnitudes span
// orders of magnitude between far-OTM and near-ATM cells, so a naive sum
// over a large grid drifts; the compensated sum keeps the reduction stable
// regardless of traversal order.
type kahanSum struct {
	sum float64
	c   float64
}

func (k *kahanSum) Add(v float64) {
	y := v - k.c
	t := k.sum + y
	k.c = (t - k.sum) - y
	k.sum = t
}

func (k *kahanSum) Value() float64 {
	return k.sum
}
