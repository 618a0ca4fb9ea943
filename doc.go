// Package formjson encodes submitted form data into nested JSON.
//
// Form fields name their position in the resulting document with dotted or
// bracketed paths, such as "user.name", "tags[]" or "items[0].sku". The
// encoder splits each key into segments, infers globally whether every
// intermediate path is an array or an object, builds the tree and finally
// removes empty items from top-level arrays so that entries deleted from a
// repeatable field do not leave gaps.
//
// A field used both as a scalar and as a container ("a" and "a.b") becomes an
// object, with the scalar stored under the empty-string key.
package formjson
