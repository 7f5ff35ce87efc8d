//go:build !debug

// Package debug provides assertions that compile to no-ops unless the
// module is built with the "debug" tag.
package debug

func ON() bool { return false }

func Assert(_ bool, _ ...any)            {}
func Assertf(_ bool, _ string, _ ...any) {}
func AssertNoErr(_ error)                {}
func Func(_ func())                      {}
