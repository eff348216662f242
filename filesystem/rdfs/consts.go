package rdfs

const (
	// PublicKeySize is the size in bytes of a node or owner public key.
	PublicKeySize = 32
	// SecretKeySize is the size in bytes of a signing key seed.
	SecretKeySize = 32
	// SignatureSize is the size in bytes of the trailing signature field
	// carried by every block.
	SignatureSize = 64

	// SuperBlockSize is the exact on-disk size of the super block.
	SuperBlockSize = 16*8 + PublicKeySize + PublicKeySize + SignatureSize

	// reserved prefix+trailer bytes of each block kind, i.e. everything
	// that is not variable-length content
	reservedAddresses = 72
	reservedBitmaps   = 96
	reservedData      = 88
	// reservedClientData adds 4 bytes to reservedData for the erasure-code
	// packet index prepended by the transport layer
	reservedClientData = 92
	reservedInode      = 1136
	reservedLinked     = 80

	// contentEntrySize is the encoded size of one inode content entry,
	// either (pointer, type) or (pointer, blocks)
	contentEntrySize = 16
)

// Address is a 32-byte public-key-shaped identifier.
type Address [PublicKeySize]byte

// Signature is the 64-byte trailing signature of a block.
type Signature [SignatureSize]byte

// Type identifies the drive layout variant carried in the super block magic
// word. The values are the raw ASCII bytes "RDFS-SHR" and "RDFS-PRV" read as
// little-endian u64.
type Type uint64

const (
	// TypeShared is a drive with allocation bitmaps and an inode hierarchy.
	TypeShared Type = 0x5248532d53464452
	// TypePrivate is a flat, opaque block array.
	TypePrivate Type = 0x5652502d53464452
)

func (t Type) String() string {
	switch t {
	case TypeShared:
		return "shared"
	case TypePrivate:
		return "private"
	}
	return "unknown"
}
