package rdfs

import "encoding/binary"

// InodeType tags a directory content entry as pointing at a directory or a
// file inode.
type InodeType uint64

const (
	// InodeTypeDir marks a directory inode.
	InodeTypeDir InodeType = 0
	// InodeTypeFile marks a file inode.
	InodeTypeFile InodeType = 1
)

// inodeTypeFrom decodes a type tag; unknown values decode as File.
func inodeTypeFrom(v uint64) InodeType {
	if v == uint64(InodeTypeDir) {
		return InodeTypeDir
	}
	return InodeTypeFile
}

// DirContent is one directory entry: a block pointer plus the kind of inode
// it points at. Encoded as two little-endian u64.
type DirContent struct {
	Pointer uint64
	Type    InodeType
}

func (dc DirContent) toBytes(b []byte) {
	binary.LittleEndian.PutUint64(b[0:8], dc.Pointer)
	binary.LittleEndian.PutUint64(b[8:16], uint64(dc.Type))
}

func dirContentFromBytes(b []byte) DirContent {
	return DirContent{
		Pointer: binary.LittleEndian.Uint64(b[0:8]),
		Type:    inodeTypeFrom(binary.LittleEndian.Uint64(b[8:16])),
	}
}

// FileContent is one file extent: a block pointer plus a run length in
// blocks. Encoded as two little-endian u64.
type FileContent struct {
	Pointer uint64
	Blocks  uint64
}

func (fc FileContent) toBytes(b []byte) {
	binary.LittleEndian.PutUint64(b[0:8], fc.Pointer)
	binary.LittleEndian.PutUint64(b[8:16], fc.Blocks)
}

func fileContentFromBytes(b []byte) FileContent {
	return FileContent{
		Pointer: binary.LittleEndian.Uint64(b[0:8]),
		Blocks:  binary.LittleEndian.Uint64(b[8:16]),
	}
}

// InodeDir is a directory inode. Encoded layout, exactly block_size bytes:
//
//	[1024: name][8: created][8: modify][8: size][8: total blocks]
//	[8: linked][8: content length][16 x content]
//	[zero padding to block_size-64][64: signature]
//
// When the content vector outgrows the block, the tail continues at the
// linked inode block; linked == 0 terminates the chain.
type InodeDir struct {
	Name        ContentName
	Created     uint64
	Modify      uint64
	Size        uint64
	TotalBlocks uint64
	Content     []DirContent
	Linked      uint64
	Signature   Signature
}

// NewInodeDir builds a directory inode with created and modify both set to
// timestamp.
func NewInodeDir(name ContentName, timestamp, size, totalBlocks uint64, content []DirContent, linked uint64) *InodeDir {
	return &InodeDir{
		Name:        name,
		Created:     timestamp,
		Modify:      timestamp,
		Size:        size,
		TotalBlocks: totalBlocks,
		Content:     content,
		Linked:      linked,
	}
}

// AddSignature attaches an externally produced signature over the encoded
// bytes preceding the signature field.
func (in *InodeDir) AddSignature(signature Signature) {
	in.Signature = signature
}

// ToBytes encodes the inode into exactly blockSize bytes. The content vector
// must fit the block's capacity of (blockSize-1136)/16 entries.
func (in *InodeDir) ToBytes(blockSize int) ([]byte, error) {
	if len(in.Content) > (blockSize-reservedInode)/contentEntrySize {
		return nil, ErrInvalidEncodedInodeBlockLength
	}

	b := make([]byte, blockSize)
	copy(b[:contentNameSize], in.Name.ToBytes())
	binary.LittleEndian.PutUint64(b[1024:1032], in.Created)
	binary.LittleEndian.PutUint64(b[1032:1040], in.Modify)
	binary.LittleEndian.PutUint64(b[1040:1048], in.Size)
	binary.LittleEndian.PutUint64(b[1048:1056], in.TotalBlocks)
	binary.LittleEndian.PutUint64(b[1056:1064], in.Linked)
	binary.LittleEndian.PutUint64(b[1064:1072], uint64(len(in.Content)))
	for i, c := range in.Content {
		c.toBytes(b[1072+i*contentEntrySize:])
	}
	copy(b[blockSize-SignatureSize:], in.Signature[:])

	return b, nil
}

// InodeDirFromBytes parses a directory inode from exactly blockSize bytes.
func InodeDirFromBytes(b []byte, blockSize int) (*InodeDir, error) {
	if len(b) != blockSize || blockSize < reservedInode {
		return nil, ErrInvalidInodeBlockLength
	}

	length := binary.LittleEndian.Uint64(b[1064:1072])
	if length > uint64((blockSize-reservedInode)/contentEntrySize) {
		return nil, ErrInvalidEncodedInodeBlockLength
	}

	in := InodeDir{
		Name:        ContentNameFromBytes(b[:contentNameSize]),
		Created:     binary.LittleEndian.Uint64(b[1024:1032]),
		Modify:      binary.LittleEndian.Uint64(b[1032:1040]),
		Size:        binary.LittleEndian.Uint64(b[1040:1048]),
		TotalBlocks: binary.LittleEndian.Uint64(b[1048:1056]),
		Linked:      binary.LittleEndian.Uint64(b[1056:1064]),
		Content:     make([]DirContent, length),
	}
	for i := range in.Content {
		in.Content[i] = dirContentFromBytes(b[1072+i*contentEntrySize:])
	}
	copy(in.Signature[:], b[blockSize-SignatureSize:])

	return &in, nil
}

// InodeFile is a file inode. The layout matches InodeDir except that content
// entries are (pointer, blocks) extents.
type InodeFile struct {
	Name        ContentName
	Created     uint64
	Modify      uint64
	Size        uint64
	TotalBlocks uint64
	Content     []FileContent
	Linked      uint64
	Signature   Signature
}

// NewInodeFile builds a file inode with created and modify both set to
// timestamp.
func NewInodeFile(name ContentName, timestamp, size, totalBlocks uint64, content []FileContent, linked uint64) *InodeFile {
	return &InodeFile{
		Name:        name,
		Created:     timestamp,
		Modify:      timestamp,
		Size:        size,
		TotalBlocks: totalBlocks,
		Content:     content,
		Linked:      linked,
	}
}

// AddSignature attaches an externally produced signature over the encoded
// bytes preceding the signature field.
func (in *InodeFile) AddSignature(signature Signature) {
	in.Signature = signature
}

// ToBytes encodes the inode into exactly blockSize bytes.
func (in *InodeFile) ToBytes(blockSize int) ([]byte, error) {
	if len(in.Content) > (blockSize-reservedInode)/contentEntrySize {
		return nil, ErrInvalidEncodedInodeBlockLength
	}

	b := make([]byte, blockSize)
	copy(b[:contentNameSize], in.Name.ToBytes())
	binary.LittleEndian.PutUint64(b[1024:1032], in.Created)
	binary.LittleEndian.PutUint64(b[1032:1040], in.Modify)
	binary.LittleEndian.PutUint64(b[1040:1048], in.Size)
	binary.LittleEndian.PutUint64(b[1048:1056], in.TotalBlocks)
	binary.LittleEndian.PutUint64(b[1056:1064], in.Linked)
	binary.LittleEndian.PutUint64(b[1064:1072], uint64(len(in.Content)))
	for i, c := range in.Content {
		c.toBytes(b[1072+i*contentEntrySize:])
	}
	copy(b[blockSize-SignatureSize:], in.Signature[:])

	return b, nil
}

// InodeFileFromBytes parses a file inode from exactly blockSize bytes.
func InodeFileFromBytes(b []byte, blockSize int) (*InodeFile, error) {
	if len(b) != blockSize || blockSize < reservedInode {
		return nil, ErrInvalidInodeBlockLength
	}

	length := binary.LittleEndian.Uint64(b[1064:1072])
	if length > uint64((blockSize-reservedInode)/contentEntrySize) {
		return nil, ErrInvalidEncodedInodeBlockLength
	}

	in := InodeFile{
		Name:        ContentNameFromBytes(b[:contentNameSize]),
		Created:     binary.LittleEndian.Uint64(b[1024:1032]),
		Modify:      binary.LittleEndian.Uint64(b[1032:1040]),
		Size:        binary.LittleEndian.Uint64(b[1040:1048]),
		TotalBlocks: binary.LittleEndian.Uint64(b[1048:1056]),
		Linked:      binary.LittleEndian.Uint64(b[1056:1064]),
		Content:     make([]FileContent, length),
	}
	for i := range in.Content {
		in.Content[i] = fileContentFromBytes(b[1072+i*contentEntrySize:])
	}
	copy(in.Signature[:], b[blockSize-SignatureSize:])

	return &in, nil
}

// InodeLinkedDir is the continuation block of a directory inode whose
// content vector overflowed. Encoded layout:
//
//	[8: linked][8: content length][16 x content]
//	[zero padding to block_size-64][64: signature]
type InodeLinkedDir struct {
	Content   []DirContent
	Linked    uint64
	Signature Signature
}

// NewInodeLinkedDir builds a directory continuation block.
func NewInodeLinkedDir(content []DirContent, linked uint64) *InodeLinkedDir {
	return &InodeLinkedDir{Content: content, Linked: linked}
}

// AddSignature attaches an externally produced signature over the encoded
// bytes preceding the signature field.
func (in *InodeLinkedDir) AddSignature(signature Signature) {
	in.Signature = signature
}

// ToBytes encodes the continuation into exactly blockSize bytes.
func (in *InodeLinkedDir) ToBytes(blockSize int) ([]byte, error) {
	if len(in.Content) > (blockSize-reservedLinked)/contentEntrySize {
		return nil, ErrInvalidEncodedInodeBlockLength
	}

	b := make([]byte, blockSize)
	binary.LittleEndian.PutUint64(b[0:8], in.Linked)
	binary.LittleEndian.PutUint64(b[8:16], uint64(len(in.Content)))
	for i, c := range in.Content {
		c.toBytes(b[16+i*contentEntrySize:])
	}
	copy(b[blockSize-SignatureSize:], in.Signature[:])

	return b, nil
}

// InodeLinkedDirFromBytes parses a directory continuation from exactly
// blockSize bytes.
func InodeLinkedDirFromBytes(b []byte, blockSize int) (*InodeLinkedDir, error) {
	if len(b) != blockSize || blockSize < reservedLinked {
		return nil, ErrInvalidInodeBlockLength
	}

	length := binary.LittleEndian.Uint64(b[8:16])
	if length > uint64((blockSize-reservedLinked)/contentEntrySize) {
		return nil, ErrInvalidEncodedInodeBlockLength
	}

	in := InodeLinkedDir{
		Linked:  binary.LittleEndian.Uint64(b[0:8]),
		Content: make([]DirContent, length),
	}
	for i := range in.Content {
		in.Content[i] = dirContentFromBytes(b[16+i*contentEntrySize:])
	}
	copy(in.Signature[:], b[blockSize-SignatureSize:])

	return &in, nil
}

// InodeLinkedFile is the continuation block of a file inode whose content
// vector overflowed. The layout matches InodeLinkedDir with extent entries.
type InodeLinkedFile struct {
	Content   []FileContent
	Linked    uint64
	Signature Signature
}

// NewInodeLinkedFile builds a file continuation block.
func NewInodeLinkedFile(content []FileContent, linked uint64) *InodeLinkedFile {
	return &InodeLinkedFile{Content: content, Linked: linked}
}

// AddSignature attaches an externally produced signature over the encoded
// bytes preceding the signature field.
func (in *InodeLinkedFile) AddSignature(signature Signature) {
	in.Signature = signature
}

// ToBytes encodes the continuation into exactly blockSize bytes.
func (in *InodeLinkedFile) ToBytes(blockSize int) ([]byte, error) {
	if len(in.Content) > (blockSize-reservedLinked)/contentEntrySize {
		return nil, ErrInvalidEncodedInodeBlockLength
	}

	b := make([]byte, blockSize)
	binary.LittleEndian.PutUint64(b[0:8], in.Linked)
	binary.LittleEndian.PutUint64(b[8:16], uint64(len(in.Content)))
	for i, c := range in.Content {
		c.toBytes(b[16+i*contentEntrySize:])
	}
	copy(b[blockSize-SignatureSize:], in.Signature[:])

	return b, nil
}

// InodeLinkedFileFromBytes parses a file continuation from exactly blockSize
// bytes.
func InodeLinkedFileFromBytes(b []byte, blockSize int) (*InodeLinkedFile, error) {
	if len(b) != blockSize || blockSize < reservedLinked {
		return nil, ErrInvalidInodeBlockLength
	}

	length := binary.LittleEndian.Uint64(b[8:16])
	if length > uint64((blockSize-reservedLinked)/contentEntrySize) {
		return nil, ErrInvalidEncodedInodeBlockLength
	}

	in := InodeLinkedFile{
		Linked:  binary.LittleEndian.Uint64(b[0:8]),
		Content: make([]FileContent, length),
	}
	for i := range in.Content {
		in.Content[i] = fileContentFromBytes(b[16+i*contentEntrySize:])
	}
	copy(in.Signature[:], b[blockSize-SignatureSize:])

	return &in, nil
}
