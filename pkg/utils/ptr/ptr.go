// Package ptr has tiny helpers for taking pointers to values.
package ptr

// To returns a pointer to v.
func To[T any](v T) *T {
	return &v
}
