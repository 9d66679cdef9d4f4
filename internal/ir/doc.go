// Package ir provides the literal value types shared by the query tree and
// the SQL compiler, plus canonical JSON and content hashes used to identify
// compiled statements.
//
// This package imports nothing internal. Every other internal package may
// import ir.
//
// Key design constraints:
//   - Literal values are a sealed set: null, string, int64, bool, array, object
//   - Canonical JSON follows RFC 8785 key ordering with NFC-normalized strings
//   - Statement identity is SHA-256 over a domain-separated canonical encoding
package ir
