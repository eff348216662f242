package rdfs

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bitset"

	"github.com/rdfs/go-rdfs/util"
)

// BitmapsBlock tracks block allocation for a shared drive. Bit i is set when
// block i is in use; the bit for index i lives in byte i/8 at position i%8.
// Encoded layout:
//
//	[8: total blocks][8: free blocks][8: last modify][8: bit field length]
//	[total_blocks/8: bit field][64: signature]
type BitmapsBlock struct {
	TotalBlocks uint64
	FreeBlocks  uint64
	LastModify  uint64
	Signature   Signature

	bits *bitset.BitSet
	now  func() uint64
}

// NewBitmapsBlock returns an all-free bitmap covering totalBlocks blocks.
// totalBlocks must be a multiple of 8 so every bit field byte is fully
// populated; the super block geometry guarantees this.
func NewBitmapsBlock(totalBlocks, timestamp uint64) *BitmapsBlock {
	return &BitmapsBlock{
		TotalBlocks: totalBlocks,
		FreeBlocks:  totalBlocks,
		LastModify:  timestamp,
		bits:        bitset.New(uint(totalBlocks)),
		now:         util.NowUnix,
	}
}

// SetClock replaces the wall clock used to stamp mutations. Tests inject a
// fixed clock here for deterministic output.
func (bb *BitmapsBlock) SetClock(now func() uint64) {
	bb.now = now
}

// AddSignature attaches an externally produced signature over the encoded
// bytes preceding the signature field.
func (bb *BitmapsBlock) AddSignature(signature Signature) {
	bb.Signature = signature
}

// GetBit reports whether block i is allocated. Out-of-range indexes read as
// free.
func (bb *BitmapsBlock) GetBit(i uint64) bool {
	if i >= bb.TotalBlocks {
		return false
	}
	return bb.bits.Test(uint(i))
}

// SetBit marks block i allocated. The free count and the last-modify stamp
// move only when the bit actually flips; out-of-range indexes are ignored.
func (bb *BitmapsBlock) SetBit(i uint64) {
	if i >= bb.TotalBlocks || bb.bits.Test(uint(i)) {
		return
	}
	bb.bits.Set(uint(i))
	bb.FreeBlocks--
	bb.LastModify = bb.now()
}

// ClearBit marks block i free, symmetric to SetBit.
func (bb *BitmapsBlock) ClearBit(i uint64) {
	if i >= bb.TotalBlocks || !bb.bits.Test(uint(i)) {
		return
	}
	bb.bits.Clear(uint(i))
	bb.FreeBlocks++
	bb.LastModify = bb.now()
}

// FreeCount recomputes the number of free blocks from the bit field. It
// always equals FreeBlocks for a bitmap mutated through SetBit and ClearBit.
func (bb *BitmapsBlock) FreeCount() uint64 {
	return bb.TotalBlocks - uint64(bb.bits.Count())
}

// BitField returns the on-disk form of the bit field, total_blocks/8 bytes.
func (bb *BitmapsBlock) BitField() []byte {
	out := make([]byte, bb.TotalBlocks/8)
	var word [8]byte
	for i, w := range bb.bits.Bytes() {
		if i*8 >= len(out) {
			break
		}
		binary.LittleEndian.PutUint64(word[:], w)
		copy(out[i*8:], word[:])
	}
	return out
}

// Size returns the encoded size in bytes.
func (bb *BitmapsBlock) Size() int {
	return reservedBitmaps + int(bb.TotalBlocks/8)
}

// ToBytes encodes the bitmap into its flat layout.
func (bb *BitmapsBlock) ToBytes() []byte {
	field := bb.BitField()
	b := make([]byte, 0, reservedBitmaps+len(field))

	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], bb.TotalBlocks)
	b = append(b, scratch[:]...)
	binary.LittleEndian.PutUint64(scratch[:], bb.FreeBlocks)
	b = append(b, scratch[:]...)
	binary.LittleEndian.PutUint64(scratch[:], bb.LastModify)
	b = append(b, scratch[:]...)
	binary.LittleEndian.PutUint64(scratch[:], uint64(len(field)))
	b = append(b, scratch[:]...)
	b = append(b, field...)
	b = append(b, bb.Signature[:]...)

	return b
}

// BitmapsBlockFromBytes parses a bitmaps block that must be exactly
// bitmapsSize bytes, as recorded in the super block. The declared bit field
// length must account for the buffer size and must cover the declared block
// count exactly.
func BitmapsBlockFromBytes(b []byte, bitmapsSize int) (*BitmapsBlock, error) {
	if len(b) != bitmapsSize || len(b) < reservedBitmaps {
		return nil, ErrInvalidBitmapsBlockLength
	}

	totalBlocks := binary.LittleEndian.Uint64(b[0:8])
	freeBlocks := binary.LittleEndian.Uint64(b[8:16])
	lastModify := binary.LittleEndian.Uint64(b[16:24])
	fieldLen := binary.LittleEndian.Uint64(b[24:32])

	if reservedBitmaps+fieldLen != uint64(bitmapsSize) || fieldLen*8 != totalBlocks {
		return nil, ErrInvalidEncodedBitmapsBlockLength
	}

	field := b[32 : len(b)-SignatureSize]
	words := make([]uint64, (len(field)+7)/8)
	var word [8]byte
	for i := range words {
		word = [8]byte{}
		copy(word[:], field[i*8:])
		words[i] = binary.LittleEndian.Uint64(word[:])
	}

	bb := BitmapsBlock{
		TotalBlocks: totalBlocks,
		FreeBlocks:  freeBlocks,
		LastModify:  lastModify,
		bits:        bitset.From(words),
		now:         util.NowUnix,
	}
	copy(bb.Signature[:], b[bitmapsSize-SignatureSize:])

	return &bb, nil
}
