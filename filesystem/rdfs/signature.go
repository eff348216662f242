package rdfs

import "golang.org/x/crypto/ed25519"

// The signature envelope is the trailing SignatureSize bytes of every block;
// it covers exactly the bytes preceding it. The file system treats the
// scheme opaquely: ed25519 with 32-byte seed secret keys matches the
// on-disk field widths, and signing happens as a separate pass after a
// block is encoded.

// SignMessage signs message with the 32-byte secret key seed.
func SignMessage(secretKey [SecretKeySize]byte, message []byte) Signature {
	key := ed25519.NewKeyFromSeed(secretKey[:])

	var sig Signature
	copy(sig[:], ed25519.Sign(key, message))
	return sig
}

// VerifySignature reports whether sig is a valid signature of message under
// publicKey. Malformed keys verify as false.
func VerifySignature(publicKey Address, sig Signature, message []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(publicKey[:]), message, sig[:])
}

// SignBytes signs the prefix of b and writes the signature into the trailing
// envelope slot. Buffers shorter than the envelope are left untouched.
func SignBytes(secretKey [SecretKeySize]byte, b []byte) {
	if len(b) < SignatureSize {
		return
	}
	prefix := len(b) - SignatureSize
	sig := SignMessage(secretKey, b[:prefix])
	copy(b[prefix:], sig[:])
}

// VerifyBytes reports whether the trailing envelope of b validates the
// prefix under publicKey.
func VerifyBytes(publicKey Address, b []byte) bool {
	if len(b) < SignatureSize {
		return false
	}
	prefix := len(b) - SignatureSize

	var sig Signature
	copy(sig[:], b[prefix:])
	return VerifySignature(publicKey, sig, b[:prefix])
}
