// Package rdfs implements the on-disk format of an RDFS shard: the geometry
// derivation, the bit-exact serialization of every block kind, the aligned
// block read/write discipline, and the trailing signature envelope. A shard
// is one node's projection of a logical drive replicated across N nodes;
// the transport and erasure-code layers above it are separate concerns.
package rdfs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/djherbis/times.v1"

	"github.com/rdfs/go-rdfs/util"
)

// Extension is the file name suffix of a shard file.
const Extension = ".RDFS"

// minStoragePerNode is the smallest logical storage each participating node
// must be able to carry.
const minStoragePerNode = 1 << 20

// FileSystem is a mounted shard. Every operation opens the shard file,
// performs its reads or writes, and closes it again; no handle is cached,
// so a FileSystem value can be copied and used from the moment the super
// block is in hand.
type FileSystem struct {
	Path   string
	System *SuperBlock
}

// Create builds a new shard file under dir and writes its initial blocks: the
// super block, an all-zero addresses block, and, for shared drives, a fresh
// bitmap and the root directory inode. The file is named after the hex form
// of programID and sized to the derived node storage.
func Create(dir string, magic Type, owner, programID Address, storage, redundancy, nodes, blockSize uint64) (*FileSystem, error) {
	if err := checkDriveParams(storage, redundancy, nodes, blockSize); err != nil {
		return nil, err
	}
	if magic == TypePrivate {
		return createPrivate(dir, magic, owner, programID, storage, redundancy, nodes, blockSize)
	}
	return createShared(dir, magic, owner, programID, storage, redundancy, nodes, blockSize)
}

// checkDriveParams enforces the minimums the geometry is defined over.
func checkDriveParams(storage, redundancy, nodes, blockSize uint64) error {
	switch {
	case nodes < 1:
		return errors.Wrap(ErrInvalidDriveParameters, "at least one node is required")
	case redundancy < 100:
		return errors.Wrap(ErrInvalidDriveParameters, "redundancy must be at least 100 percent")
	case blockSize < 2048:
		return errors.Wrap(ErrInvalidDriveParameters, "block size must be at least 2048 bytes")
	case storage < nodes*minStoragePerNode:
		return errors.Wrap(ErrInvalidDriveParameters, "storage must be at least 1 MiB per node")
	}
	return nil
}

func createShared(dir string, magic Type, owner, programID Address, storage, redundancy, nodes, blockSize uint64) (*FileSystem, error) {
	timestamp := util.NowUnix()
	sb := NewSuperBlock(magic, owner, programID, storage, redundancy, nodes, blockSize)
	ab := NewAddressesBlock(make([]Address, nodes), Signature{})

	bm := NewBitmapsBlock(sb.TotalBlocks, timestamp)
	bm.SetBit(sb.TotalBlocks - 1) // last block holds the root inode

	root := NewInodeDir(NewContentName("./"), timestamp, 0, sb.TotalBlocks, nil, 0)
	rootBytes, err := root.ToBytes(int(sb.BlockSize))
	if err != nil {
		return nil, err
	}

	path := shardPath(dir, programID)
	if err := util.CreatePhysicalFile(path, sb.NodeStorage); err != nil {
		return nil, err
	}
	if err := util.WriteRange(path, 0, sb.ToBytes()); err != nil {
		return nil, err
	}
	if err := util.WriteRange(path, sb.NodesAddressPointer, ab.ToBytes()); err != nil {
		return nil, err
	}
	if err := util.WriteRange(path, sb.BitmapsPointer, bm.ToBytes()); err != nil {
		return nil, err
	}
	if err := util.WriteRange(path, sb.InodePointer, rootBytes); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"path":         path,
		"type":         magic.String(),
		"total_blocks": sb.TotalBlocks,
		"node_storage": sb.NodeStorage,
	}).Debug("created rdfs shard")

	return &FileSystem{Path: path, System: sb}, nil
}

func createPrivate(dir string, magic Type, owner, programID Address, storage, redundancy, nodes, blockSize uint64) (*FileSystem, error) {
	sb := NewSuperBlock(magic, owner, programID, storage, redundancy, nodes, blockSize)
	ab := NewAddressesBlock(make([]Address, nodes), Signature{})

	path := shardPath(dir, programID)
	if err := util.CreatePhysicalFile(path, sb.NodeStorage); err != nil {
		return nil, err
	}
	if err := util.WriteRange(path, 0, sb.ToBytes()); err != nil {
		return nil, err
	}
	if err := util.WriteRange(path, sb.NodesAddressPointer, ab.ToBytes()); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"path":         path,
		"type":         magic.String(),
		"total_blocks": sb.TotalBlocks,
		"node_storage": sb.NodeStorage,
	}).Debug("created rdfs shard")

	return &FileSystem{Path: path, System: sb}, nil
}

func shardPath(dir string, programID Address) string {
	return filepath.Join(dir, util.BytesToHex(programID[:])+Extension)
}

// Mount opens an existing shard by parsing the super block at offset 0. All
// further offsets derive from it.
func Mount(path string) (*FileSystem, error) {
	raw, err := util.ReadRange(path, 0, SuperBlockSize)
	if err != nil {
		return nil, err
	}
	sb, err := SuperBlockFromBytes(raw)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"path": path, "type": sb.Magic.String()}).Debug("mounted rdfs shard")

	return &FileSystem{Path: path, System: sb}, nil
}

// Unmount releases the shard. No handles are cached, so this currently has
// nothing to clean up.
func (fs *FileSystem) Unmount() error {
	return nil
}

// ReadSuperBlock returns the encoded form of the mounted super block.
func (fs *FileSystem) ReadSuperBlock() []byte {
	return fs.System.ToBytes()
}

// ReadNodesAddresses reads the raw addresses block region.
func (fs *FileSystem) ReadNodesAddresses() ([]byte, error) {
	start := fs.System.NodesAddressPointer
	return util.ReadRange(fs.Path, start, start+fs.System.NodesAddressSize)
}

// WriteNodesAddresses re-parses data, checks it against the drive's node
// count, and writes it over the addresses block region.
func (fs *FileSystem) WriteNodesAddresses(data []byte) error {
	ab, err := AddressesBlockFromBytes(data, int(fs.System.NodesAddressSize))
	if err != nil {
		return err
	}
	if uint64(len(ab.Addresses)) != fs.System.Nodes {
		return ErrInvalidAddressesBlockLength
	}
	return util.WriteRange(fs.Path, fs.System.NodesAddressPointer, data)
}

// ReadBitmaps reads the raw bitmaps block region. Private drives carry no
// bitmaps.
func (fs *FileSystem) ReadBitmaps() ([]byte, error) {
	if fs.System.Magic != TypeShared {
		return nil, ErrNoBitmapsPrivateDrive
	}
	start := fs.System.BitmapsPointer
	return util.ReadRange(fs.Path, start, start+fs.System.BitmapsSize)
}

// WriteBitmaps re-parses data, checks it covers the drive's block count, and
// writes it over the bitmaps block region. Private drives carry no bitmaps.
func (fs *FileSystem) WriteBitmaps(data []byte) error {
	if fs.System.Magic != TypeShared {
		return ErrNoBitmapsPrivateDrive
	}

	bm, err := BitmapsBlockFromBytes(data, int(fs.System.BitmapsSize))
	if err != nil {
		return err
	}
	if bm.TotalBlocks != fs.System.TotalBlocks || uint64(len(bm.BitField()))*8 != fs.System.TotalBlocks {
		return ErrInvalidBitmapsBlockLength
	}
	return util.WriteRange(fs.Path, fs.System.BitmapsPointer, data)
}

// checkPointer enforces the aligned whole-block discipline: pointers address
// the data region and sit a whole number of blocks past its start.
func (fs *FileSystem) checkPointer(pointer uint64) error {
	if pointer < fs.System.DataPointer {
		return ErrPointerOutOfRange
	}
	if (pointer-fs.System.DataPointer)%fs.System.BlockSize != 0 {
		return ErrInvalidPointerAlignment
	}
	return nil
}

// ReadBlock reads the block_size bytes at pointer. On shared drives this
// retrieves data blocks and inode blocks alike; on private drives it is the
// only way at the block array.
func (fs *FileSystem) ReadBlock(pointer uint64) ([]byte, error) {
	if err := fs.checkPointer(pointer); err != nil {
		return nil, err
	}
	return util.ReadRange(fs.Path, pointer, pointer+fs.System.BlockSize)
}

// WriteBlock writes exactly one block at pointer.
func (fs *FileSystem) WriteBlock(pointer uint64, data []byte) error {
	if err := fs.checkPointer(pointer); err != nil {
		return err
	}
	if uint64(len(data)) != fs.System.BlockSize {
		return ErrInvalidDataBlockLength
	}
	return util.WriteRange(fs.Path, pointer, data)
}

// ReadBlocks returns a lazy stream over the blocks named by ranges, in
// order. The requested span routinely exceeds memory, so blocks are read one
// at a time as the stream is drained, typically straight onto the network.
func (fs *FileSystem) ReadBlocks(ranges []FileContent) *BlockStream {
	return &BlockStream{
		path:      fs.Path,
		blockSize: fs.System.BlockSize,
		ranges:    ranges,
	}
}

// BlockStream yields consecutive blocks across a list of extents. It holds
// its own copy of the shard path and keeps no file open between blocks. The
// stream is restartless: once drained it stays empty.
type BlockStream struct {
	path      string
	blockSize uint64
	ranges    []FileContent
	current   int
	block     uint64
}

// Next returns the next block, or false when the stream is exhausted.
// Blocks whose read fails are skipped; callers needing strict propagation
// should read blocks individually instead.
func (s *BlockStream) Next() ([]byte, bool) {
	for s.current < len(s.ranges) {
		r := s.ranges[s.current]
		if s.block >= r.Blocks {
			s.current++
			s.block = 0
			continue
		}
		start := r.Pointer + s.block*s.blockSize
		s.block++

		b, err := util.ReadRange(s.path, start, start+s.blockSize)
		if err != nil {
			log.WithError(err).WithField("pointer", start).Debug("skipping unreadable block")
			continue
		}
		return b, true
	}
	return nil, false
}

// ReadDirContents reads the directory inode at pointer and follows its
// linked continuations, returning the inode and the concatenated content
// vector. Traversal keeps a visited set so an accidental loop in the chain
// terminates instead of spinning.
func (fs *FileSystem) ReadDirContents(pointer uint64) (*InodeDir, []DirContent, error) {
	raw, err := fs.ReadBlock(pointer)
	if err != nil {
		return nil, nil, err
	}
	inode, err := InodeDirFromBytes(raw, int(fs.System.BlockSize))
	if err != nil {
		return nil, nil, err
	}

	content := append([]DirContent(nil), inode.Content...)
	visited := map[uint64]bool{pointer: true}
	for next := inode.Linked; next != 0 && !visited[next]; {
		visited[next] = true
		raw, err := fs.ReadBlock(next)
		if err != nil {
			return nil, nil, err
		}
		linked, err := InodeLinkedDirFromBytes(raw, int(fs.System.BlockSize))
		if err != nil {
			return nil, nil, err
		}
		content = append(content, linked.Content...)
		next = linked.Linked
	}

	return inode, content, nil
}

// ReadFileContents reads the file inode at pointer and follows its linked
// continuations, returning the inode and the concatenated extent vector.
func (fs *FileSystem) ReadFileContents(pointer uint64) (*InodeFile, []FileContent, error) {
	raw, err := fs.ReadBlock(pointer)
	if err != nil {
		return nil, nil, err
	}
	inode, err := InodeFileFromBytes(raw, int(fs.System.BlockSize))
	if err != nil {
		return nil, nil, err
	}

	content := append([]FileContent(nil), inode.Content...)
	visited := map[uint64]bool{pointer: true}
	for next := inode.Linked; next != 0 && !visited[next]; {
		visited[next] = true
		raw, err := fs.ReadBlock(next)
		if err != nil {
			return nil, nil, err
		}
		linked, err := InodeLinkedFileFromBytes(raw, int(fs.System.BlockSize))
		if err != nil {
			return nil, nil, err
		}
		content = append(content, linked.Content...)
		next = linked.Linked
	}

	return inode, content, nil
}

// DriveStat describes the shard's physical file.
type DriveStat struct {
	Size     int64
	Created  time.Time
	Modified time.Time
}

// Stat reports the shard file's size and timestamps. On filesystems without
// birth time support Created falls back to the modification time.
func (fs *FileSystem) Stat() (*DriveStat, error) {
	fi, err := os.Stat(fs.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "stating %s", fs.Path)
	}
	ts, err := times.Stat(fs.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "stating times of %s", fs.Path)
	}

	created := ts.ModTime()
	if ts.HasBirthTime() {
		created = ts.BirthTime()
	}

	return &DriveStat{
		Size:     fi.Size(),
		Created:  created,
		Modified: ts.ModTime(),
	}, nil
}
