package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainNet = "tokenreplay/net/v1"
	DomainLog = "tokenreplay/log/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest returns the domain-separated digest of v's canonical JSON.
func Digest(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", domain, err)
	}
	return hashWithDomain(domain, canonical), nil
}

// LogDigest identifies an event log by its traces.
// Two logs with the same cases and activities in the same order share a
// digest regardless of the name they were imported under.
func LogDigest(cases []string, traces [][]string) (string, error) {
	if len(cases) != len(traces) {
		return "", fmt.Errorf("LogDigest: %d cases for %d traces", len(cases), len(traces))
	}
	arr := make([]any, len(traces))
	for i := range traces {
		arr[i] = map[string]any{
			"case":       cases[i],
			"activities": traces[i],
		}
	}
	return Digest(DomainLog, arr)
}
