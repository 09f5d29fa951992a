package testutil

// DefaultSession is the token returned by a FixedSessionGenerator created
// without one.
const DefaultSession = "scenario-session"

// FixedSessionGenerator generates the same session token every time.
//
// This enables deterministic test execution and golden snapshot comparison.
// The same scenario with the same FixedSessionGenerator produces identical
// command IDs and journal rows.
//
// Unlike engine.FixedGenerator which returns tokens in sequence, this generator
// always returns the same token, so it can back any number of engines.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	token string
}

// NewFixedSessionGenerator creates a new fixed session token generator.
//
// If token is empty, Generate() returns DefaultSession.
func NewFixedSessionGenerator(token string) *FixedSessionGenerator {
	if token == "" {
		token = DefaultSession
	}
	return &FixedSessionGenerator{token: token}
}

// Generate returns the fixed session token.
//
// Implements engine.SessionGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.token
}
