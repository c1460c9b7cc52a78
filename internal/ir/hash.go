package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for a later algorithm change.
const (
	DomainDocument = "blockc/document/v1"
	DomainScript   = "blockc/script/v1"
	DomainBuild    = "blockc/build/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentHash identifies a document by its canonical content. Layout keys
// carried in Node.Extra take part, so moving a block changes the hash.
func DocumentHash(doc Document) (string, error) {
	val, err := CanonicalValue(doc)
	if err != nil {
		return "", fmt.Errorf("DocumentHash: %w", err)
	}
	canonical, err := MarshalCanonical(val)
	if err != nil {
		return "", fmt.Errorf("DocumentHash: %w", err)
	}
	return hashWithDomain(DomainDocument, canonical), nil
}

// ScriptHash identifies generated script text.
func ScriptHash(script string) string {
	return hashWithDomain(DomainScript, []byte(script))
}

// BuildID identifies one generation run: the same document generated into
// the same script by the same tool version always yields the same id.
func BuildID(documentHash, scriptHash, toolVersion string) (string, error) {
	obj := IRObject{
		"document_hash": IRString(documentHash),
		"script_hash":   IRString(scriptHash),
		"tool_version":  IRString(toolVersion),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("BuildID: %w", err)
	}
	return hashWithDomain(DomainBuild, canonical), nil
}
