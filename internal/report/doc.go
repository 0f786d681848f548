// Package report writes analysis results.
//
// Two kinds of output live here:
//
//   - Writers render a model.CategoryRun for people or tools:
//     SimpleWriter (terminal text), JSONWriter and FullJSONWriter
//     (structured JSON) and MarkdownWriter (shareable documents).
//   - Exporter writes the per-category export files consumed downstream:
//     the full score table as CSV, one JSON record of top associations per
//     A term, and a JSON map from every B term to its top A terms.
//
// Design decision: We separate report writing from the run data (which is
// in the model package) so that new output formats never touch the
// scoring code.
package report
