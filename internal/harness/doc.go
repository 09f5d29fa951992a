// Package harness runs scripted editing sessions against a strata timeline.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: ripple_insert
//	description: "What this scenario validates"
//	session: fixed-token        # optional
//	layers: 2                   # optional, source layers per composition
//	objects:
//	  - id: a
//	    kind: source            # source | transition | global-effect | simple-effect | complex-effect
//	    start: 0                # integer milliseconds or a duration string
//	    duration: 10s
//	    brother: a-audio        # optional linked object
//	steps:
//	  - op: append_source
//	    composition: video      # default video
//	    args: { object: a }
//	  - op: remove_source
//	    args: { object: ghost }
//	    expect_error: UNKNOWN_OBJECT
//	assertions:
//	  - type: condensed_order
//	    objects: [a]
//
// # Assertion Types
//
//   - condensed_order: the condensed view of a composition lists objects in order
//   - layer_order: one layer holds exactly the listed sources, in start order
//   - object_span: an object has the given start and/or duration
//   - notification_count: an event was delivered exactly count times
//   - export_settings: the timeline's auto export settings equal settings
//   - no_overlap: no two sources of a layer overlap in time
//
// # Deterministic Testing
//
// Every scenario runs on a fresh timeline under a fixed session token
// (DefaultSession unless the scenario names one), so command IDs, outcome
// digests and the notification trace are identical across runs. RunWithGolden
// compares that trace against testdata/golden/<name>.golden through goldie.
package harness
