// Package analysis pools the per-run statistics written by BA-POMDP
// experiment runs.
//
// # Reading Guide
//
//   - record.go: Record (one replication) and Pooled (the merge of many)
//   - pool.go: pairwise pooling kernel and the fold/tree reductions
//
// # Sub-packages
//
//   - analysis/results: parsing result tables, manifests, labels and x-value files
//   - analysis/report: CSV output and chart rendering
//
// Records hold unbiased sample variances. The population form is only used
// inside the pooling kernel and never leaves this package.
package analysis
