package hashvalidator

import (
	"encoding/base64"
	"encoding/binary"
	"hash"
	"hash/crc32"
)

// crc32cTable is the Castagnoli polynomial table GCS uses for its x-goog-hash
// crc32c digests. No third-party CRC32C implementation appears anywhere in
// the example corpus, so this relies on the standard library's hash/crc32,
// which already exposes the Castagnoli polynomial directly.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// crc32cValidator computes the base64-encoded, big-endian CRC32C checksum
// GCS reports for an object.
type crc32cValidator struct {
	h hash.Hash32
}

// NewCRC32C returns a Validator computing a base64-encoded CRC32C checksum.
func NewCRC32C() Validator {
	return &crc32cValidator{h: crc32.New(crc32cTable)}
}

func (v *crc32cValidator) Update(data []byte) { v.h.Write(data) }

func (v *crc32cValidator) Finish(received string) Result {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v.h.Sum32())
	return Result{
		Received: received,
		Computed: base64.StdEncoding.EncodeToString(buf[:]),
	}
}

func (v *crc32cValidator) Name() string { return "crc32c" }
