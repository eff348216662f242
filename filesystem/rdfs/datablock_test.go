package rdfs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestDataBlockRoundTrip(t *testing.T) {
	const blockSize = 4096
	payload := []byte("some block payload")
	block := NewDataBlock(9, 1633036800, payload)
	block.AddSignature(Signature{0: 0xaa, 63: 0xbb})

	raw, err := block.ToBytes(blockSize)
	if err != nil {
		t.Fatalf("serialize error: %v", err)
	}
	if len(raw) != blockSize {
		t.Fatalf("serialized length: got %d, want %d", len(raw), blockSize)
	}

	parsed, err := DataBlockFromBytes(raw, blockSize)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if parsed.BlockNumber != block.BlockNumber || parsed.Timestamp != block.Timestamp {
		t.Fatalf("header mismatch: %+v", parsed)
	}
	if parsed.DataLen != uint64(len(payload)) {
		t.Fatalf("data length: got %d, want %d", parsed.DataLen, len(payload))
	}
	// the parsed payload is the whole span up to the signature, padding
	// included
	if len(parsed.Data) != blockSize-reservedData {
		t.Fatalf("payload span: got %d, want %d", len(parsed.Data), blockSize-reservedData)
	}
	if !bytes.Equal(parsed.Data[:parsed.DataLen], payload) {
		t.Fatalf("payload mismatch")
	}
	for _, b := range parsed.Data[parsed.DataLen:] {
		if b != 0 {
			t.Fatalf("padding is not zeroed")
		}
	}
	if parsed.Signature != block.Signature {
		t.Fatalf("signature mismatch")
	}

	// a parsed block re-encodes to the identical bytes
	again, err := parsed.ToBytes(blockSize)
	if err != nil {
		t.Fatalf("re-serialize error: %v", err)
	}
	if !bytes.Equal(raw, again) {
		t.Fatalf("re-serialization is not byte identical")
	}
}

func TestDataBlockCapacity(t *testing.T) {
	const blockSize = 2048
	block := NewDataBlock(0, 0, make([]byte, blockSize-reservedData))
	if _, err := block.ToBytes(blockSize); err != nil {
		t.Fatalf("full payload rejected: %v", err)
	}

	block = NewDataBlock(0, 0, make([]byte, blockSize-reservedData+1))
	if _, err := block.ToBytes(blockSize); !errors.Is(err, ErrInvalidEncodedDataBlockLength) {
		t.Fatalf("oversized payload: got %v", err)
	}
}

func TestDataBlockParseErrors(t *testing.T) {
	const blockSize = 2048
	raw, err := NewDataBlock(1, 2, []byte("x")).ToBytes(blockSize)
	if err != nil {
		t.Fatalf("serialize error: %v", err)
	}

	if _, err := DataBlockFromBytes(raw[:blockSize-1], blockSize); !errors.Is(err, ErrInvalidDataBlockLength) {
		t.Fatalf("short buffer: got %v", err)
	}

	binary.LittleEndian.PutUint64(raw[16:24], blockSize-reservedData+1)
	if _, err := DataBlockFromBytes(raw, blockSize); !errors.Is(err, ErrInvalidEncodedDataBlockLength) {
		t.Fatalf("oversized declared length: got %v", err)
	}
}
