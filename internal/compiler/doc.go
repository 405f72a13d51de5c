// Package compiler turns model definitions written in CUE or YAML into
// petri.Net values, and lints built nets for shapes that make replay
// results hard to read.
//
// Model files declare one or more nets under a top-level "net" struct:
//
//	net: order: {
//		places: {
//			start: initial: 1
//			p1: {}
//			end: final: 1
//		}
//		transitions: {
//			t1: {label: "register", in: ["start"], out: ["p1"]}
//			t2: {label: "ship", in: ["p1"], out: ["end"]}
//			skip: {in: ["p1"], out: ["end"]}
//		}
//	}
//
// A transition without a label is invisible. YAML model files use the same
// shape.
package compiler
