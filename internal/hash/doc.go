// Package hash computes the CRC32-Castagnoli checksums attached to payload
// blobs.
//
// S3 expects the checksum as the base64 of its big-endian bytes; logs and
// CLI output use the 8-digit hex form:
//
//	sum := hash.CRC32C(data)
//	hash.Base64(sum) // "4waSgw==" for "123456789"
//	hash.Hex(sum)    // "e3069283"
package hash
