package core

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"snapvault/pkg/types"

	"github.com/fxamacker/cbor/v2"
)

// Canonical CBOR options. Fingerprints are computed over this encoding, so
// the same record must always produce the same bytes.
var encOptions = cbor.EncOptions{
	// Map keys are sorted, which makes snapshot encoding order-independent.
	Sort: cbor.SortCanonical,

	ShortestFloat: cbor.ShortestFloatNone,

	Time:    cbor.TimeUnix,
	TimeTag: cbor.EncTagNone,

	// Containers must declare their length up front.
	IndefLength: cbor.IndefLengthForbidden,

	BigIntConvert: cbor.BigIntConvertShortest,
}

var em, _ = encOptions.EncMode()

// CalculateHash encodes v canonically and returns the SHA-1 of the encoding
// together with the encoded bytes.
func CalculateHash(v any) (types.Hash, []byte, error) {
	data, err := em.Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal object: %w", err)
	}
	return CalculateBlobHash(data), data, nil
}

// CalculateBlobHash returns the content digest of raw bytes.
func CalculateBlobHash(data []byte) types.Hash {
	sum := sha1.Sum(data)
	return types.Hash(hex.EncodeToString(sum[:]))
}
