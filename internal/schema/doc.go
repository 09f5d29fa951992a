// Package schema validates scenario documents against an embedded CUE
// schema before they reach the harness.
//
// The harness decoder already rejects unknown fields and missing values one
// at a time. ValidateScenario reports every violation in a document at once,
// with the YAML line each one was found on, which is what `strata validate`
// prints.
package schema
