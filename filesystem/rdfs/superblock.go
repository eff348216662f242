package rdfs

import (
	"encoding/binary"
	"math/big"
)

// SuperBlock is the root metadata of a drive. It is written once at offset 0
// of the shard file and never moves; every other offset in the shard derives
// from its fields.
//
// The on-disk encoding is exactly SuperBlockSize bytes, all integers
// little-endian:
//
//	0x00  magic word (8)
//	0x08  owner (32)
//	0x28  program id (32)
//	0x48  storage, redundancy, nodes, block size, total blocks (5 x 8)
//	0x70  client block size, node storage (2 x 8)
//	0x80  nodes address, bitmaps, data, inode pointers (4 x 8)
//	0xa0  nodes address size, bitmaps size (2 x 8)
//	0xb0  max content pointers, max linked content pointers (2 x 8)
//	0xc0  signature (64)
type SuperBlock struct {
	Magic      Type
	Owner      Address
	ProgramID  Address
	Storage    uint64 // logical drive size in bytes, as requested
	Redundancy uint64 // percent units, 300 means 3x
	Nodes      uint64
	BlockSize  uint64

	TotalBlocks uint64 // data blocks per shard

	ClientBlockSize     uint64 // pre-erasure block size, 0 in private drives
	NodeStorage         uint64 // size of this shard's physical file
	NodesAddressPointer uint64
	BitmapsPointer      uint64
	DataPointer         uint64
	InodePointer        uint64 // last data block, holds the root directory

	NodesAddressSize         uint64
	BitmapsSize              uint64
	MaxContentPointers       uint64
	MaxLinkedContentPointers uint64

	Signature Signature
}

// NewSuperBlock computes the full drive geometry for the requested
// parameters. All derived values are integer-exact; the only roundings are
// the conversion of the raw per-node byte budget to whole blocks (up) and
// the client block size (down).
func NewSuperBlock(magic Type, owner, programID Address, storage, redundancy, nodes, blockSize uint64) *SuperBlock {
	if magic == TypePrivate {
		return newPrivateSuperBlock(magic, owner, programID, storage, redundancy, nodes, blockSize)
	}
	return newSharedSuperBlock(magic, owner, programID, storage, redundancy, nodes, blockSize)
}

func newSharedSuperBlock(magic Type, owner, programID Address, storage, redundancy, nodes, blockSize uint64) *SuperBlock {
	// payload bytes per node block, after the header, the signature and the
	// 4-byte erasure-code packet index
	blockSizeForData := blockSize - reservedClientData
	clientBlockSize := mulDiv(blockSizeForData*nodes, 100, redundancy, false)

	// The raw per-node budget is storage * redundancy / (100 * nodes). After
	// subtracting the fixed regions, each block consumes block_size bytes of
	// data plus one bitmap bit, so
	//
	//	remain = total_blocks * (block_size + 1/8)
	//	total_blocks/8 = remain / (8*block_size + 1)
	//
	// rounded up so every bitmap byte covers exactly 8 blocks.
	overhead := uint64(SuperBlockSize) + reservedAddresses + PublicKeySize*nodes + reservedBitmaps
	totalBlocks := 8 * blocksFor(storage, redundancy, nodes, 8*blockSize+1, overhead)
	nodeStorage := overhead + totalBlocks/8 + totalBlocks*blockSize

	nodesAddressSize := uint64(reservedAddresses) + PublicKeySize*nodes
	bitmapsSize := uint64(reservedBitmaps) + totalBlocks/8

	nodesAddressPointer := uint64(SuperBlockSize)
	bitmapsPointer := nodesAddressPointer + nodesAddressSize
	dataPointer := bitmapsPointer + bitmapsSize
	inodePointer := dataPointer + blockSize*(totalBlocks-1)

	return &SuperBlock{
		Magic:      magic,
		Owner:      owner,
		ProgramID:  programID,
		Storage:    storage,
		Redundancy: redundancy,
		Nodes:      nodes,
		BlockSize:  blockSize,

		TotalBlocks: totalBlocks,

		ClientBlockSize:     clientBlockSize,
		NodeStorage:         nodeStorage,
		NodesAddressPointer: nodesAddressPointer,
		BitmapsPointer:      bitmapsPointer,
		DataPointer:         dataPointer,
		InodePointer:        inodePointer,

		NodesAddressSize:         nodesAddressSize,
		BitmapsSize:              bitmapsSize,
		MaxContentPointers:       (blockSize - reservedInode) / contentEntrySize,
		MaxLinkedContentPointers: (blockSize - reservedLinked) / contentEntrySize,
	}
}

func newPrivateSuperBlock(magic Type, owner, programID Address, storage, redundancy, nodes, blockSize uint64) *SuperBlock {
	overhead := uint64(SuperBlockSize) + reservedAddresses + PublicKeySize*nodes
	totalBlocks := blocksFor(storage, redundancy, nodes, blockSize, overhead)
	nodeStorage := overhead + totalBlocks*blockSize

	nodesAddressSize := uint64(reservedAddresses) + PublicKeySize*nodes
	nodesAddressPointer := uint64(SuperBlockSize)

	return &SuperBlock{
		Magic:      magic,
		Owner:      owner,
		ProgramID:  programID,
		Storage:    storage,
		Redundancy: redundancy,
		Nodes:      nodes,
		BlockSize:  blockSize,

		TotalBlocks: totalBlocks,

		NodeStorage:         nodeStorage,
		NodesAddressPointer: nodesAddressPointer,
		DataPointer:         nodesAddressPointer + nodesAddressSize,

		NodesAddressSize: nodesAddressSize,
	}
}

// blocksFor solves ceil((storage*redundancy - 100*nodes*overhead) /
// (100*nodes*perBlock)) without intermediate overflow. A budget smaller than
// the fixed overhead yields zero blocks.
func blocksFor(storage, redundancy, nodes, perBlock, overhead uint64) uint64 {
	num := new(big.Int).Mul(new(big.Int).SetUint64(storage), new(big.Int).SetUint64(redundancy))
	fixed := new(big.Int).Mul(new(big.Int).SetUint64(100*nodes), new(big.Int).SetUint64(overhead))
	num.Sub(num, fixed)
	if num.Sign() <= 0 {
		return 0
	}

	den := new(big.Int).Mul(new(big.Int).SetUint64(100*nodes), new(big.Int).SetUint64(perBlock))
	rem := new(big.Int)
	num.QuoRem(num, den, rem)
	if rem.Sign() != 0 {
		num.Add(num, big.NewInt(1))
	}
	return num.Uint64()
}

// mulDiv returns a*b/c rounded down, or up when roundUp is set, without
// intermediate overflow.
func mulDiv(a, b, c uint64, roundUp bool) uint64 {
	num := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	rem := new(big.Int)
	num.QuoRem(num, new(big.Int).SetUint64(c), rem)
	if roundUp && rem.Sign() != 0 {
		num.Add(num, big.NewInt(1))
	}
	return num.Uint64()
}

// AddSignature attaches an externally produced signature. Signing is not part
// of the file system; sign the first SuperBlockSize-64 encoded bytes and
// place the result here.
func (sb *SuperBlock) AddSignature(signature Signature) {
	sb.Signature = signature
}

// ToBytes encodes the super block into its fixed 256-byte layout.
func (sb *SuperBlock) ToBytes() []byte {
	b := make([]byte, SuperBlockSize)

	binary.LittleEndian.PutUint64(b[0:8], uint64(sb.Magic))
	copy(b[8:40], sb.Owner[:])
	copy(b[40:72], sb.ProgramID[:])
	binary.LittleEndian.PutUint64(b[72:80], sb.Storage)
	binary.LittleEndian.PutUint64(b[80:88], sb.Redundancy)
	binary.LittleEndian.PutUint64(b[88:96], sb.Nodes)
	binary.LittleEndian.PutUint64(b[96:104], sb.BlockSize)
	binary.LittleEndian.PutUint64(b[104:112], sb.TotalBlocks)
	binary.LittleEndian.PutUint64(b[112:120], sb.ClientBlockSize)
	binary.LittleEndian.PutUint64(b[120:128], sb.NodeStorage)
	binary.LittleEndian.PutUint64(b[128:136], sb.NodesAddressPointer)
	binary.LittleEndian.PutUint64(b[136:144], sb.BitmapsPointer)
	binary.LittleEndian.PutUint64(b[144:152], sb.DataPointer)
	binary.LittleEndian.PutUint64(b[152:160], sb.InodePointer)
	binary.LittleEndian.PutUint64(b[160:168], sb.NodesAddressSize)
	binary.LittleEndian.PutUint64(b[168:176], sb.BitmapsSize)
	binary.LittleEndian.PutUint64(b[176:184], sb.MaxContentPointers)
	binary.LittleEndian.PutUint64(b[184:192], sb.MaxLinkedContentPointers)
	copy(b[192:256], sb.Signature[:])

	return b
}

// SuperBlockFromBytes parses a super block from exactly SuperBlockSize bytes.
func SuperBlockFromBytes(b []byte) (*SuperBlock, error) {
	if len(b) != SuperBlockSize {
		return nil, ErrInvalidSuperBlockLength
	}

	magic := Type(binary.LittleEndian.Uint64(b[0:8]))
	if magic != TypeShared && magic != TypePrivate {
		return nil, ErrInvalidMagicWord
	}

	sb := SuperBlock{Magic: magic}
	copy(sb.Owner[:], b[8:40])
	copy(sb.ProgramID[:], b[40:72])
	sb.Storage = binary.LittleEndian.Uint64(b[72:80])
	sb.Redundancy = binary.LittleEndian.Uint64(b[80:88])
	sb.Nodes = binary.LittleEndian.Uint64(b[88:96])
	sb.BlockSize = binary.LittleEndian.Uint64(b[96:104])
	sb.TotalBlocks = binary.LittleEndian.Uint64(b[104:112])
	sb.ClientBlockSize = binary.LittleEndian.Uint64(b[112:120])
	sb.NodeStorage = binary.LittleEndian.Uint64(b[120:128])
	sb.NodesAddressPointer = binary.LittleEndian.Uint64(b[128:136])
	sb.BitmapsPointer = binary.LittleEndian.Uint64(b[136:144])
	sb.DataPointer = binary.LittleEndian.Uint64(b[144:152])
	sb.InodePointer = binary.LittleEndian.Uint64(b[152:160])
	sb.NodesAddressSize = binary.LittleEndian.Uint64(b[160:168])
	sb.BitmapsSize = binary.LittleEndian.Uint64(b[168:176])
	sb.MaxContentPointers = binary.LittleEndian.Uint64(b[176:184])
	sb.MaxLinkedContentPointers = binary.LittleEndian.Uint64(b[184:192])
	copy(sb.Signature[:], b[192:256])

	return &sb, nil
}
