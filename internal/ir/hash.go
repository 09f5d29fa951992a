package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix allows
// the algorithm to change without colliding with old journals.
const (
	DomainCommand  = "strata/command/v1"
	DomainSnapshot = "strata/snapshot/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CommandID computes the content-addressed ID of a command. The same command
// at the same position of the same session always gets the same ID, which is
// what lets a replay line its outcomes up with the journal.
func CommandID(session, op, composition string, args Object, seq int64) (string, error) {
	if args == nil {
		args = Object{}
	}
	obj := Object{
		"session":     String(session),
		"op":          String(op),
		"composition": String(composition),
		"args":        args,
		"seq":         Int(seq),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("command id: %w", err)
	}
	return hashWithDomain(DomainCommand, canonical), nil
}

// SnapshotDigest hashes the canonical encoding of s.
func SnapshotDigest(s Snapshot) (string, error) {
	canonical, err := MarshalCanonical(s.Value())
	if err != nil {
		return "", fmt.Errorf("snapshot digest: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// MustCommandID is like CommandID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustCommandID(session, op, composition string, args Object, seq int64) string {
	id, err := CommandID(session, op, composition, args, seq)
	if err != nil {
		panic(err)
	}
	return id
}
