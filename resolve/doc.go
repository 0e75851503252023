// Package resolve walks a schema's field tree over raw mixed-format input,
// turning strings into nested mappings via pattern chains before the
// structural validation layer sees them.
//
// The pipeline has two explicit, ordered phases:
//
//  1. resolution - each field's declared strategy (pattern chain, JSON-first
//     flag, nested field list, or tagged union) transforms its raw value
//     into a mapping, recursing to arbitrary depth
//  2. structural validation - the resolved mapping tree is handed to a
//     Validator, which coerces and checks it
//
// A Resolver never mutates its input and holds no per-call state, so one
// Resolver may serve concurrent goroutines.
//
// Recovery mode (ResolveWithRecovery with strict=false) walks every field
// independently, accumulating structured per-field error records instead of
// aborting, and returns partial data alongside them.
package resolve
