// Package ir defines the intermediate representation shared by the
// rusty-asm pipeline: the units a block is decomposed into, the bridge
// variable and clobber declarations tracked by the scope stack, the
// constraint lists produced for each asm block, and the dialect spec
// that controls how the final invocation is rendered.
//
// The package also provides canonical JSON serialization and
// content-addressed hashing. Canonical JSON is used wherever a stable
// byte representation matters: cache keys in the rewrite store and
// snapshot comparison in the test harness.
package ir
