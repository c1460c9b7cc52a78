// Package harness runs YAML conformance scenarios against the full
// import, generate and export pipeline.
//
// A scenario names a document and a list of assertions over the result:
//
//	name: score-tick
//	description: one rule with a discovered variable and an unknown kind
//	document: documents/score.json
//	assertions:
//	  - type: script_contains
//	    text: "await mod.Wait(1.5);"
//	  - type: placeholders
//	    kinds: [Sparkle]
//
// Every run also re-imports its own export and requires the regenerated
// script to be identical, so each scenario doubles as a round-trip check.
//
// Golden files live in testdata/golden/<name>.golden and hold the exact
// generated script. To regenerate them, run:
//
//	go test ./internal/harness -update
package harness
