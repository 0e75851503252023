package pattern

// Matcher extracts a field-name to value mapping from input text.
//
// Implementations must be pure: a Match call allocates all working state per
// invocation and never mutates the matcher, so a single Matcher may be shared
// across goroutines without locking.
type Matcher interface {
	// Match parses text and returns the extracted field mapping. On
	// mismatch it returns an error of kind parseerr.KindNoMatch so that
	// chains can fall through to their next entry.
	Match(text string) (map[string]any, error)

	// String returns the source form of the pattern for diagnostics.
	String() string
}
