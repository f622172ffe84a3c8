package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainProgram is the domain prefix for program-hash identity.
// Version suffix enables future algorithm migration.
const DomainProgram = "pairjit/program/v1"

// ProgramHash computes the content-addressed identity of an IR program from
// its source text: SHA256(domain + 0x00 + source).
//
// The hash identifies the program in logs and the compile log store. It is
// computed over the raw text, not the parsed module, so even programs that
// fail to parse have a stable identity.
func ProgramHash(source string) string {
	h := sha256.New()
	h.Write([]byte(DomainProgram))
	h.Write([]byte{0x00}) // null separator prevents domain/data boundary ambiguity
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}
