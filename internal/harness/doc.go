// Package harness runs replay scenarios: a model, a set of traces and the
// conformance numbers the replay must produce.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario checks"
//	model: ../models/order.cue   # relative to the scenario file
//	net: order                   # only needed for multi-net models
//	silent_marker: tau           # optional, defaults to "tau"
//	session: fixed-session-id    # optional, for golden snapshots
//	traces:
//	  - [register, check, ship]
//	  - [register, tau, ship]
//	expect:
//	  fitness: 0.875
//	  consumed: 6
//	  produced: 6
//	  missing: {p1: 1}
//	  remaining: {}
//	  fitting_traces: 1
//
// Instead of inline traces a scenario may name a log file (log: orders.csv).
// Every expect field is optional; an empty map for missing or remaining
// asserts that no place has diagnostics.
//
// # Deterministic Testing
//
// Runs are sequential and use a fixed session id and a logical clock, so
// the recorded step trace is identical across runs and can be compared
// against golden files (RunWithGolden).
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/linear.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
