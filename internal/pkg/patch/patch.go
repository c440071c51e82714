package patch

// Coalesce returns *ptr, or fallback when a request left the field out.
func Coalesce[T any](ptr *T, fallback T) T {
	if ptr != nil {
		return *ptr
	}
	return fallback
}
