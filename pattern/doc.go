// Package pattern compiles declarative pattern specifications into immutable
// matchers that extract named fields from text.
//
// Three matcher kinds are provided:
//
//   - placeholder templates like "{name} | {age} | {city}", where "{field}"
//     is a required capture and "{field?}" an optional one
//   - regular expressions with named groups, e.g. `(?P<k>\w+)=(?P<v>.*)`
//   - a JSON matcher that succeeds only when the text is a JSON object
//
// Matchers compose into ordered chains tried strictly left to right:
//
//	chain := pattern.Chain(
//		pattern.MustTemplate("{name} | {age} | {city}"),
//		pattern.MustTemplate("{name} {age} {city}"),
//		pattern.JSON(),
//	)
//	fields, err := chain.Match("Alice | 30 | New York")
//
// All matchers are immutable after compilation and safe for concurrent use.
package pattern
