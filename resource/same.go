package resource

// Same reports whether a and b identify the same registration.
//
// Resources are compared with ==. Dynamic types that are not comparable
// (slices, maps, funcs held by value) never match instead of panicking.
func Same(a, b Resource) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
