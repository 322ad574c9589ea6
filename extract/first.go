package extract

// First runs each strategy in order and returns the first plausible result.
// Used by the DOM fallback path, where every field has a preference-ordered
// list of selectors and scans.
func First[T any](tries ...func() (T, bool)) (T, bool) {
	for _, try := range tries {
		if v, ok := try(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
