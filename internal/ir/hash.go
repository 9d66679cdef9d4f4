package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows a future algorithm migration.
const (
	DomainStatement = "efql/statement/v1"
	DomainPlan      = "efql/plan/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StatementID computes the content-addressed id of one compiled statement.
// Two compilations producing the same SQL text and alias list share an id.
func StatementID(sql string, aliases []string) (string, error) {
	obj := IRObject{
		"sql":     IRString(sql),
		"aliases": stringsToArray(aliases),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("StatementID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainStatement, canonical), nil
}

// PlanID computes the id of a whole plan snapshot (main statement plus
// fan-out statements).
func PlanID(plan IRObject) (string, error) {
	canonical, err := MarshalCanonical(plan)
	if err != nil {
		return "", fmt.Errorf("PlanID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPlan, canonical), nil
}

// MustStatementID is like StatementID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustStatementID(sql string, aliases []string) string {
	id, err := StatementID(sql, aliases)
	if err != nil {
		panic(err)
	}
	return id
}

func stringsToArray(ss []string) IRArray {
	arr := make(IRArray, len(ss))
	for i, s := range ss {
		arr[i] = IRString(s)
	}
	return arr
}
