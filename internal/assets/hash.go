package assets

import (
	"encoding/binary"

	"github.com/minio/crc64nvme"
	"github.com/mr-tron/base58"
)

const hashLength = 8

// contentHash returns a short, filename safe digest of data.
func contentHash(data []byte) string {
	h := crc64nvme.New()
	_, _ = h.Write(data)

	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], h.Sum64())

	encoded := base58.Encode(sum[:])
	if len(encoded) > hashLength {
		encoded = encoded[:hashLength]
	}
	return encoded
}
