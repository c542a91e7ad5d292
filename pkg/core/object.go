package core

import "snapvault/pkg/types"

// ObjectType identifies what kind of payload an Object carries.
type ObjectType string

const (
	TypeBlob ObjectType = "blob" // raw file content
)

// Object is anything the object store can persist under its own digest.
type Object interface {
	// Type returns the object type.
	Type() ObjectType

	// ID returns the content digest the object is stored under.
	ID() types.Hash

	// Bytes returns the payload written to the store.
	Bytes() []byte
}
