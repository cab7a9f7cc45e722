package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainBlock = "rusty-asm/block/v1"
	DomainRun   = "rusty-asm/run/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// BlockHash computes the content-addressed identity of one transform
// input: the block source text plus the dialect it will be rendered
// under. Two invocations with the same hash emit identical output, which
// is what makes the rewrite cache sound.
func BlockHash(source string, dialect *DialectSpec) (string, error) {
	obj := map[string]any{
		"source":         source,
		"dialect":        dialect.Name,
		"macro":          dialect.Macro,
		"sigil":          dialect.Sigil,
		"output_prefix":  dialect.OutputPrefix,
		"clobber_prefix": dialect.ClobberPrefix,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("BlockHash: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainBlock, canonical), nil
}

// MustBlockHash is like BlockHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustBlockHash(source string, dialect *DialectSpec) string {
	hash, err := BlockHash(source, dialect)
	if err != nil {
		panic(err)
	}
	return hash
}
