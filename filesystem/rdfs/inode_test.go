package rdfs

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/go-test/deep"
)

func TestInodeDirRoundTrip(t *testing.T) {
	const blockSize = 4096
	content := DirContent{Pointer: 3, Type: InodeTypeDir}
	inode := NewInodeDir(NewContentName("test_file.txt"), 7, 11, 1, []DirContent{content, content}, 0)
	var sig Signature
	for i := range sig {
		sig[i] = 0xff
	}
	inode.AddSignature(sig)

	raw, err := inode.ToBytes(blockSize)
	if err != nil {
		t.Fatalf("serialize error: %v", err)
	}
	if len(raw) != blockSize {
		t.Fatalf("serialized length: got %d, want %d", len(raw), blockSize)
	}

	parsed, err := InodeDirFromBytes(raw, blockSize)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if diff := deep.Equal(inode, parsed); diff != nil {
		t.Fatalf("round trip mismatch: %v", diff)
	}
	if parsed.Created != 7 || parsed.Modify != 7 {
		t.Fatalf("timestamps: got %d/%d, want 7/7", parsed.Created, parsed.Modify)
	}
}

func TestInodeFileRoundTrip(t *testing.T) {
	const blockSize = 4096
	content := FileContent{Pointer: 3, Blocks: 10}
	inode := NewInodeFile(NewContentName("test_file.txt"), 7, 11, 1, []FileContent{content, content}, 0)
	inode.AddSignature(Signature{0: 0xff})

	raw, err := inode.ToBytes(blockSize)
	if err != nil {
		t.Fatalf("serialize error: %v", err)
	}

	parsed, err := InodeFileFromBytes(raw, blockSize)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if diff := deep.Equal(inode, parsed); diff != nil {
		t.Fatalf("round trip mismatch: %v", diff)
	}
}

func TestInodeLinkedRoundTrip(t *testing.T) {
	const blockSize = 4096

	dir := NewInodeLinkedDir([]DirContent{{Pointer: 64937, Type: InodeTypeFile}}, 7)
	raw, err := dir.ToBytes(blockSize)
	if err != nil {
		t.Fatalf("serialize error: %v", err)
	}
	parsedDir, err := InodeLinkedDirFromBytes(raw, blockSize)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if diff := deep.Equal(dir, parsedDir); diff != nil {
		t.Fatalf("linked dir mismatch: %v", diff)
	}

	file := NewInodeLinkedFile([]FileContent{}, 0)
	raw, err = file.ToBytes(blockSize)
	if err != nil {
		t.Fatalf("serialize error: %v", err)
	}
	parsedFile, err := InodeLinkedFileFromBytes(raw, blockSize)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(parsedFile.Content) != 0 || parsedFile.Linked != 0 {
		t.Fatalf("empty linked file mismatch: %+v", parsedFile)
	}
}

func TestDirContentUnknownType(t *testing.T) {
	var b [contentEntrySize]byte
	binary.LittleEndian.PutUint64(b[0:8], 42)
	binary.LittleEndian.PutUint64(b[8:16], 999)

	dc := dirContentFromBytes(b[:])
	if dc.Type != InodeTypeFile {
		t.Fatalf("unknown tag decoded as %d, want File", dc.Type)
	}
}

func TestInodeContentCapacity(t *testing.T) {
	const blockSize = 4096
	maxEntries := (blockSize - reservedInode) / contentEntrySize

	inode := NewInodeDir(NewContentName("d"), 0, 0, 0, make([]DirContent, maxEntries), 0)
	if _, err := inode.ToBytes(blockSize); err != nil {
		t.Fatalf("full content rejected: %v", err)
	}

	inode.Content = make([]DirContent, maxEntries+1)
	if _, err := inode.ToBytes(blockSize); !errors.Is(err, ErrInvalidEncodedInodeBlockLength) {
		t.Fatalf("oversized content: got %v", err)
	}

	raw, err := NewInodeDir(NewContentName("d"), 0, 0, 0, nil, 0).ToBytes(blockSize)
	if err != nil {
		t.Fatalf("serialize error: %v", err)
	}
	binary.LittleEndian.PutUint64(raw[1064:1072], uint64(maxEntries+1))
	if _, err := InodeDirFromBytes(raw, blockSize); !errors.Is(err, ErrInvalidEncodedInodeBlockLength) {
		t.Fatalf("oversized declared content: got %v", err)
	}

	linked := NewInodeLinkedDir(nil, 0)
	raw, err = linked.ToBytes(blockSize)
	if err != nil {
		t.Fatalf("serialize error: %v", err)
	}
	binary.LittleEndian.PutUint64(raw[8:16], uint64((blockSize-reservedLinked)/contentEntrySize+1))
	if _, err := InodeLinkedDirFromBytes(raw, blockSize); !errors.Is(err, ErrInvalidEncodedInodeBlockLength) {
		t.Fatalf("oversized linked content: got %v", err)
	}
}

func TestInodeParseLengthErrors(t *testing.T) {
	if _, err := InodeDirFromBytes(make([]byte, 4095), 4096); !errors.Is(err, ErrInvalidInodeBlockLength) {
		t.Fatalf("short dir buffer: got %v", err)
	}
	if _, err := InodeFileFromBytes(make([]byte, 100), 4096); !errors.Is(err, ErrInvalidInodeBlockLength) {
		t.Fatalf("short file buffer: got %v", err)
	}
	if _, err := InodeLinkedFileFromBytes(make([]byte, 4095), 4096); !errors.Is(err, ErrInvalidInodeBlockLength) {
		t.Fatalf("short linked buffer: got %v", err)
	}
}

func TestInodeInfo(t *testing.T) {
	dir := NewInodeDir(NewContentName("assets"), 1633036800, 0, 4, nil, 0)
	info := dir.Info()
	if info.Name() != "assets" || !info.IsDir() || !info.Mode().IsDir() {
		t.Fatalf("dir info mismatch: %v %v", info.Name(), info.Mode())
	}
	if !info.ModTime().Equal(time.Unix(1633036800, 0)) {
		t.Fatalf("dir mod time mismatch: %v", info.ModTime())
	}

	file := NewInodeFile(NewContentName("report.pdf"), 1633036800, 2048, 1, nil, 0)
	info = file.Info()
	if info.Name() != "report.pdf" || info.IsDir() || info.Size() != 2048 {
		t.Fatalf("file info mismatch: %v %d", info.Name(), info.Size())
	}
	if info.Sys() != nil {
		t.Fatalf("file info sys is not nil")
	}
}
