// Package main provides the entry point for the cooccur CLI.
//
// cooccur collects literature co-occurrence counts between a set of
// factors and category-specific terms, then ranks the strongest
// associations in both directions.
//
// Usage:
//
//	cooccur collect [category...]
//	cooccur analyze [category...]
//
// See --help for all available options.
package main

// main is the entry point for cooccur.
func main() {
	Execute()
}
