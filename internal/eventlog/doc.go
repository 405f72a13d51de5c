// Package eventlog reads event logs: ordered traces of activity labels,
// one trace per case.
//
// Supported formats:
//   - CSV with rows "case_id,activity"; a trace ends when the case id changes
//   - XES, taking each event's concept:name as its activity
//
// Logs can also come from the SQLite store (internal/store).
package eventlog
