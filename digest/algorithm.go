package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"strings"
)

// Algorithm is one of the hash functions allowed in an
// integrity attribute. The zero value is not a valid
// algorithm.
type Algorithm int

// Supported algorithms.
const (
	SHA256 Algorithm = iota + 1
	SHA384
	SHA512
)

// ParseAlgorithm resolves a case-insensitive selector such
// as "sha384" or "SHA384" to an Algorithm.
func ParseAlgorithm(selector string) (Algorithm, error) {
	switch strings.ToLower(selector) {
	case "sha256":
		return SHA256, nil
	case "sha384":
		return SHA384, nil
	case "sha512":
		return SHA512, nil
	default:
		return 0, &UnsupportedAlgorithmError{
			Selector: selector,
		}
	}
}

// Algorithms returns the supported algorithms from
// weakest to strongest.
func Algorithms() []Algorithm {
	return []Algorithm{SHA256, SHA384, SHA512}
}

// String returns the canonical lower-case name used as
// the integrity prefix.
func (a Algorithm) String() string {
	switch a {
	case SHA256:
		return "sha256"
	case SHA384:
		return "sha384"
	case SHA512:
		return "sha512"
	default:
		return "unknown"
	}
}

// Size returns the raw digest length in bytes, or 0 for
// an invalid algorithm.
func (a Algorithm) Size() int {
	switch a {
	case SHA256:
		return sha256.Size
	case SHA384:
		return sha512.Size384
	case SHA512:
		return sha512.Size
	default:
		return 0
	}
}

// Valid reports whether a is one of the supported
// algorithms.
func (a Algorithm) Valid() bool {
	return a.Size() != 0
}

// Engine is the hashing facility used by an Encoder. It
// returns a fresh hash for the requested algorithm.
type Engine func(alg Algorithm) (hash.Hash, error)

// StdEngine hashes with the standard library SHA-2
// implementations.
func StdEngine(alg Algorithm) (hash.Hash, error) {
	switch alg {
	case SHA256:
		return sha256.New(), nil
	case SHA384:
		return sha512.New384(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, &UnsupportedAlgorithmError{
			Selector: alg.String(),
		}
	}
}
