package rdfs

import "encoding/binary"

// AddressesBlock is the ordered vector of node public keys stored directly
// after the super block. Encoded layout:
//
//	[8: count][32 x count: addresses][64: signature]
//
// for a total of 72 + 32*count bytes.
type AddressesBlock struct {
	Addresses []Address
	Signature Signature
}

// NewAddressesBlock builds an addresses block from the given keys.
func NewAddressesBlock(addresses []Address, signature Signature) *AddressesBlock {
	return &AddressesBlock{Addresses: addresses, Signature: signature}
}

// AddSignature attaches an externally produced signature over the encoded
// bytes preceding the signature field.
func (ab *AddressesBlock) AddSignature(signature Signature) {
	ab.Signature = signature
}

// Size returns the encoded size in bytes.
func (ab *AddressesBlock) Size() int {
	return reservedAddresses + PublicKeySize*len(ab.Addresses)
}

// ToBytes encodes the block into its flat layout.
func (ab *AddressesBlock) ToBytes() []byte {
	b := make([]byte, 0, ab.Size())

	var count [8]byte
	binary.LittleEndian.PutUint64(count[:], uint64(len(ab.Addresses)))
	b = append(b, count[:]...)
	for i := range ab.Addresses {
		b = append(b, ab.Addresses[i][:]...)
	}
	b = append(b, ab.Signature[:]...)

	return b
}

// AddressesBlockFromBytes parses an addresses block that must be exactly
// nodesAddressSize bytes, as recorded in the super block.
func AddressesBlockFromBytes(b []byte, nodesAddressSize int) (*AddressesBlock, error) {
	if len(b) != nodesAddressSize || len(b) < reservedAddresses {
		return nil, ErrInvalidAddressesBlockLength
	}

	count := binary.LittleEndian.Uint64(b[:8])
	if count != uint64(nodesAddressSize-reservedAddresses)/PublicKeySize ||
		reservedAddresses+PublicKeySize*count != uint64(nodesAddressSize) {
		return nil, ErrInvalidEncodedAddressesBlockLength
	}

	ab := AddressesBlock{Addresses: make([]Address, count)}
	for i := range ab.Addresses {
		start := 8 + i*PublicKeySize
		copy(ab.Addresses[i][:], b[start:start+PublicKeySize])
	}
	copy(ab.Signature[:], b[nodesAddressSize-SignatureSize:])

	return &ab, nil
}
