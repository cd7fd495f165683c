package scullq

import (
	"encoding/binary"
	"hash/crc32"
)

// Element record: payload | crc32c(payload) (4B BE)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// EncodeRecord frames payload with its checksum.
func EncodeRecord(payload []byte) []byte {
	out := make([]byte, len(payload)+4)
	copy(out, payload)
	binary.BigEndian.PutUint32(out[len(payload):], crc32.Checksum(payload, castagnoli))
	return out
}

// DecodeRecord returns the payload of b, or false when b is truncated or
// its checksum does not match.
func DecodeRecord(b []byte) ([]byte, bool) {
	if len(b) < 4 {
		return nil, false
	}
	payload := b[:len(b)-4]
	if crc32.Checksum(payload, castagnoli) != binary.BigEndian.Uint32(b[len(b)-4:]) {
		return nil, false
	}
	return payload, true
}
