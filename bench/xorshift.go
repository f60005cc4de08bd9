package bench

// xorshiftState is the xorshift64* generator from
// original_source/benchmarks/bm_lock.c's xorshift64star: fast, seedable,
// and good enough for picking which shared object a worker touches next.
type xorshiftState struct {
	state uint64
}

func newXorshift(seed uint64) *xorshiftState {
	if seed == 0 {
		seed = 1 // xorshift is fixed at the all-zero state
	}
	return &xorshiftState{state: seed}
}

func (x *xorshiftState) next() uint64 {
	x.state ^= x.state >> 12
	x.state ^= x.state << 25
	x.state ^= x.state >> 27
	return x.state * 0x2545F4914F6CDD1D
}

// intn returns a value in [0,n).
func (x *xorshiftState) intn(n int) int {
	return int(x.next() % uint64(n))
}
