// Package harness runs YAML-defined conformance scenarios against the
// transform engine.
//
// A scenario names its input block, an optional dialect, and what the
// transform should produce: either an error with a specific code, or a
// clean rewrite with an expected set of warnings. Scenarios with a
// golden flag additionally snapshot the rewritten output as canonical
// JSON and compare it against a checked-in golden file.
package harness
