package hash

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/crc32"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

// Base64 renders sum the way S3 expects it in ChecksumCRC32C.
func Base64(sum uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], sum)
	return base64.StdEncoding.EncodeToString(b[:])
}

// Hex renders sum as 8 lowercase hex digits.
func Hex(sum uint32) string {
	return fmt.Sprintf("%08x", sum)
}
