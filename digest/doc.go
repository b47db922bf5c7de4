// Package digest computes Subresource Integrity digests. It hashes
// resource bytes with one of sha256, sha384 or sha512 and encodes the
// raw digest as standard padded base64, the form SRI attribute values
// require.
package digest
