// Package pkguid provides helpers for generating unique identifiers.
//
// The codebase uses these interfaces to avoid hard-coding a specific UID
// strategy. Depending on the use case you can generate:
//   - Tokens: 64-bit values packed from a shared Frame (whole seconds plus a
//     per-second sequence) and the process Fingerprint.
//   - String IDs (UUIDs, ULIDs) for request correlation and journal events.
//   - Numeric IDs from Snowflake, kept as an alternative numeric source.
//
// A Token carries no business meaning and exposes no accessors for the
// fields it was composed from.
package pkguid
