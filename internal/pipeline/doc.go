// Package pipeline runs categories through collection and analysis steps.
//
// A category run is processed by a Pipeline of Steps. Each Step receives
// the model.CategoryRun built by the previous steps and adds to it:
//
//	collect: secondary_terms -> collect_counts -> save_artifact -> record_collection
//	analyze: resolve_artifact -> load_artifact -> drop -> score -> rank -> export
//	         (record_analysis runs last as a final step, even after a failure)
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context between steps
//
// BatchProcessor runs many categories. Categories are processed one at a
// time in the given order by default, and an error in one category never
// stops the others.
package pipeline
