// Package urn builds and parses DataHub URNs, including the deterministic
// mutation scheme that gives the same logical entity stable but distinct
// identities across environments (dev/staging/prod).
package urn

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/metastore-labs/metasync/pkg/errors"
	"github.com/metastore-labs/metasync/pkg/metadata"
)

// Prefix is the namespace prefix shared by all DataHub URNs.
const Prefix = "urn:li:"

// URN is a parsed DataHub entity identifier.
type URN struct {
	Kind metadata.Kind
	ID   string
}

// String renders the URN in its canonical form.
func (u URN) String() string {
	return Prefix + string(u.Kind) + ":" + u.ID
}

// New builds a canonical URN for an entity kind and id.
func New(kind metadata.Kind, id string) string {
	return URN{Kind: kind, ID: id}.String()
}

// Parse splits a URN string into its kind and id. The id may itself
// contain colons (nested URNs), so only the first two separators are
// structural.
func Parse(s string) (URN, error) {
	if !strings.HasPrefix(s, Prefix) {
		return URN{}, &errors.ParseError{Format: "urn", Message: "missing urn:li: prefix: " + s}
	}
	rest := strings.TrimPrefix(s, Prefix)
	kind, id, found := strings.Cut(rest, ":")
	if !found || kind == "" || id == "" {
		return URN{}, &errors.ParseError{Format: "urn", Message: "expected urn:li:<type>:<id>, got " + s}
	}
	return URN{Kind: metadata.Kind(kind), ID: id}, nil
}

// Generate produces the URN for a logical entity name under an optional
// mutation. Without a mutation the canonical non-hashed form is returned.
// With a mutation the id is the hex MD5 of the mutation name concatenated
// with the logical name, so identical inputs always produce the identical
// URN and different mutations never collide on the same name.
//
// Names are NFC-normalized and trimmed first so visually identical names
// map to the same identity regardless of how they were typed.
func Generate(kind metadata.Kind, name, mutation string) string {
	normalized := norm.NFC.String(strings.TrimSpace(name))
	if mutation == "" {
		return New(kind, normalized)
	}
	sum := md5.Sum([]byte(mutation + normalized))
	return New(kind, hex.EncodeToString(sum[:]))
}

// Mutate rewrites an existing URN under the given mutation, treating the
// current id as the logical name. Passing an empty mutation returns the
// URN unchanged.
func Mutate(s, mutation string) (string, error) {
	parsed, err := Parse(s)
	if err != nil {
		return "", err
	}
	if mutation == "" {
		return parsed.String(), nil
	}
	return Generate(parsed.Kind, parsed.ID, mutation), nil
}
