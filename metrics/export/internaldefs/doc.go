// Package internaldefs holds the metric names and help strings shared by the
// exporter implementations, so Prometheus and OTel expose identical names.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
