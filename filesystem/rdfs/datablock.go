package rdfs

import "encoding/binary"

// DataBlock is one fixed-size unit of the shard's data region. Encoded
// layout, exactly block_size bytes:
//
//	[8: block number][8: timestamp][8: data length]
//	[data, zero padded to block_size-64][64: signature]
//
// The block number doubles as a nonce and, with the timestamp, as the
// spacetime-proof dimensions of the block.
type DataBlock struct {
	BlockNumber uint64
	Timestamp   uint64
	// DataLen is the meaningful prefix of Data. Parsing keeps the whole
	// payload span, padding included, so Data may be longer than DataLen.
	DataLen   uint64
	Data      []byte
	Signature Signature
}

// NewDataBlock builds a data block over a copy of data.
func NewDataBlock(blockNumber, timestamp uint64, data []byte) *DataBlock {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &DataBlock{
		BlockNumber: blockNumber,
		Timestamp:   timestamp,
		DataLen:     uint64(len(data)),
		Data:        buf,
	}
}

// AddSignature attaches an externally produced signature over the encoded
// bytes preceding the signature field.
func (db *DataBlock) AddSignature(signature Signature) {
	db.Signature = signature
}

// ToBytes encodes the block into exactly blockSize bytes. The payload must
// fit the block's capacity of blockSize-88 bytes.
func (db *DataBlock) ToBytes(blockSize int) ([]byte, error) {
	if blockSize < reservedData || db.DataLen > uint64(blockSize-reservedData) {
		return nil, ErrInvalidEncodedDataBlockLength
	}

	b := make([]byte, blockSize)
	binary.LittleEndian.PutUint64(b[0:8], db.BlockNumber)
	binary.LittleEndian.PutUint64(b[8:16], db.Timestamp)
	binary.LittleEndian.PutUint64(b[16:24], db.DataLen)
	copy(b[24:blockSize-SignatureSize], db.Data)
	copy(b[blockSize-SignatureSize:], db.Signature[:])

	return b, nil
}

// DataBlockFromBytes parses a data block from exactly blockSize bytes. The
// returned Data holds the full payload span from byte 24 up to the
// signature, zero padding included; DataLen bounds the meaningful prefix.
func DataBlockFromBytes(b []byte, blockSize int) (*DataBlock, error) {
	if len(b) != blockSize || blockSize < reservedData {
		return nil, ErrInvalidDataBlockLength
	}

	dataLen := binary.LittleEndian.Uint64(b[16:24])
	if dataLen > uint64(blockSize-reservedData) {
		return nil, ErrInvalidEncodedDataBlockLength
	}

	data := make([]byte, blockSize-reservedData)
	copy(data, b[24:blockSize-SignatureSize])

	db := DataBlock{
		BlockNumber: binary.LittleEndian.Uint64(b[0:8]),
		Timestamp:   binary.LittleEndian.Uint64(b[8:16]),
		DataLen:     dataLen,
		Data:        data,
	}
	copy(db.Signature[:], b[blockSize-SignatureSize:])

	return &db, nil
}
