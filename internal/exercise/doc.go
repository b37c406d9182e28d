// Package exercise loads fill-in-the-blank programming exercises.
//
// An Exercise carries the starter program, the expected output and the
// optional literal protected blocks that bound the editable window. Records
// arrive from two places: JSON documents served by an exercise provider,
// whose field names may be snake_case or camelCase, and TOML or JSON files
// on disk collected into a Catalog. A Watcher keeps a Catalog in sync with
// its directory.
//
// All text fields pass through DecodeText, which repairs the line-ending and
// double-escaping damage that stored exercises commonly carry.
package exercise
