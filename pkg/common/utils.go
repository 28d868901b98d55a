package common

// Min and Max are plain integer helpers shared by the module's packages
// (pkg/engine's time manager uses Min).
func Min(l, r int) int {
	if l < r {
		return l
	}
	return r
}

func Max(l, r int) int {
	if l > r {
		return l
	}
	return r
}
