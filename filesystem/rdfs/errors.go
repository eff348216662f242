package rdfs

import "errors"

// Every structural failure surfaces as one of these sentinel values so that
// callers can match with errors.Is even when the error has been wrapped with
// I/O context on its way up.
var (
	// ErrInvalidSuperBlockLength is returned when a super block buffer is
	// not exactly SuperBlockSize bytes.
	ErrInvalidSuperBlockLength = errors.New("invalid super block length")
	// ErrInvalidMagicWord is returned when the magic word is neither the
	// shared nor the private constant.
	ErrInvalidMagicWord = errors.New("invalid magic word")

	// ErrInvalidAddressesBlockLength is returned when an addresses block
	// buffer does not match the drive's nodes address size, or when the
	// decoded address count does not match the drive's node count.
	ErrInvalidAddressesBlockLength = errors.New("input length not equal nodes address size")
	// ErrInvalidEncodedAddressesBlockLength is returned when the declared
	// address count is inconsistent with the buffer size.
	ErrInvalidEncodedAddressesBlockLength = errors.New("encoded length not equal nodes address size")

	// ErrInvalidBitmapsBlockLength is returned when a bitmaps block buffer
	// does not match the drive's bitmaps size, or when the bit field does
	// not cover the drive's block count.
	ErrInvalidBitmapsBlockLength = errors.New("input length not equal bitmaps size")
	// ErrInvalidEncodedBitmapsBlockLength is returned when the declared bit
	// field length is inconsistent with the buffer size or the block count.
	ErrInvalidEncodedBitmapsBlockLength = errors.New("encoded length not equal bitmaps size")

	// ErrInvalidDataBlockLength is returned when a data block buffer is not
	// exactly one block.
	ErrInvalidDataBlockLength = errors.New("input length not equal block size")
	// ErrInvalidEncodedDataBlockLength is returned when the declared payload
	// length exceeds the block's payload capacity.
	ErrInvalidEncodedDataBlockLength = errors.New("content length is greater than block size")

	// ErrInvalidInodeBlockLength is returned when an inode block buffer is
	// not exactly one block.
	ErrInvalidInodeBlockLength = errors.New("input length not equal block size")
	// ErrInvalidEncodedInodeBlockLength is returned when the declared
	// content vector length exceeds the inode's content capacity.
	ErrInvalidEncodedInodeBlockLength = errors.New("content length is greater than block size")

	// ErrNoBitmapsPrivateDrive is returned when a bitmap operation is
	// invoked on a private drive.
	ErrNoBitmapsPrivateDrive = errors.New("no bitmaps in private RDFS")

	// ErrInvalidPointerAlignment is returned when a block pointer is not a
	// whole number of blocks past the data pointer.
	ErrInvalidPointerAlignment = errors.New("pointer is not aligned to a block boundary")
	// ErrPointerOutOfRange is returned when a block pointer falls below the
	// data region.
	ErrPointerOutOfRange = errors.New("pointer is less than actual data pointer")

	// ErrInvalidDriveParameters is returned by Create when the requested
	// drive parameters fall below the supported minimums.
	ErrInvalidDriveParameters = errors.New("invalid drive parameters")
)
