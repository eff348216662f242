package rdfs

import (
	"os"
	"time"
)

// DirEntry summarizes an inode for host-side listing tools. It fulfills
// os.FileInfo:
//
//	Name() string       // decoded inode name
//	Size() int64        // logical size in bytes
//	Mode() FileMode     // ModeDir for directory inodes
//	ModTime() time.Time // last modify stamp
//	IsDir() bool        // abbreviation for Mode().IsDir()
//	Sys() interface{}   // nil
type DirEntry struct {
	name    string
	size    int64
	modTime time.Time
	isDir   bool
}

// Name string       // decoded inode name
func (d *DirEntry) Name() string {
	return d.name
}

// Size int64        // logical size in bytes
func (d *DirEntry) Size() int64 {
	return d.size
}

// IsDir bool        // abbreviation for Mode().IsDir()
func (d *DirEntry) IsDir() bool {
	return d.isDir
}

// ModTime time.Time // last modify stamp
func (d *DirEntry) ModTime() time.Time {
	return d.modTime
}

// Mode FileMode     // file mode bits
func (d *DirEntry) Mode() os.FileMode {
	if d.isDir {
		return os.ModeDir | 0o755
	}
	return 0o644
}

// Sys interface{}   // underlying data source (can return nil)
func (d *DirEntry) Sys() interface{} {
	return nil
}

// Info returns an os.FileInfo view of the directory inode.
func (in *InodeDir) Info() os.FileInfo {
	return &DirEntry{
		name:    in.Name.String(),
		size:    int64(in.Size),
		modTime: time.Unix(int64(in.Modify), 0),
		isDir:   true,
	}
}

// Info returns an os.FileInfo view of the file inode.
func (in *InodeFile) Info() os.FileInfo {
	return &DirEntry{
		name:    in.Name.String(),
		size:    int64(in.Size),
		modTime: time.Unix(int64(in.Modify), 0),
	}
}
