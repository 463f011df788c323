package common

// Coalesce returns the first argument that is not the zero value of T. Configuration
// loading uses it to layer file values over defaults.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
