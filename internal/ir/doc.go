// Package ir provides the canonical serialization used for content identity.
//
// Nets and logs are identified by the SHA-256 digest of their canonical JSON
// form. ir imports nothing internal so every other package can depend on it.
//
// Key constraints:
//   - Object keys sorted by UTF-16 code units
//   - Strings NFC normalized at the serialization boundary
//   - No floats and no null; integers only
package ir
