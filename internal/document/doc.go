// Package document loads business data files and exposes their content as
// a loosely-typed, order-preserving value tree.
//
// Business records carry no fixed schema, so every field access goes through
// Value, a tagged variant over the JSON kinds plus a Missing kind for absent
// fields. Objects remember the order in which keys appear in the source file
// so that reports list keys and metadata flags the way the file author wrote
// them.
//
// Design decision: We walk the parsed input with tidwall/gjson rather than
// decoding into map[string]any because Go maps do not keep insertion order.
// gjson iterates object members in document order without reflection.
// Syntax diagnostics come from goccy/go-json, which reports the byte offset
// of the first error.
package document
