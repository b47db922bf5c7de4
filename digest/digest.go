package digest

import (
	"encoding/base64"
	"errors"
)

var errDigestLength = errors.New("engine returned a digest of unexpected length")

// Encoder hashes resource bytes and encodes the digest as
// standard base64. It holds no state between calls and is
// safe for concurrent use when its engine is.
type Encoder struct {
	engine Engine
}

// NewEncoder returns an Encoder backed by engine. A nil
// engine selects StdEngine.
func NewEncoder(engine Engine) *Encoder {
	if engine == nil {
		engine = StdEngine
	}

	return &Encoder{engine: engine}
}

// Encode resolves selector and returns the base64 digest of
// data. The selector is validated before the engine is
// touched.
func (en *Encoder) Encode(
	data []byte,
	selector string,
) (string, error) {
	alg, err := ParseAlgorithm(selector)
	if err != nil {
		return "", err
	}

	return en.Sum(data, alg)
}

// Sum returns the base64 digest of data for an already
// parsed algorithm.
func (en *Encoder) Sum(
	data []byte,
	alg Algorithm,
) (string, error) {
	if !alg.Valid() {
		return "", &UnsupportedAlgorithmError{
			Selector: alg.String(),
		}
	}

	ha, err := en.engine(alg)
	if err != nil {
		return "", &DigestError{Algorithm: alg, Err: err}
	}

	if _, err := ha.Write(data); err != nil {
		return "", &DigestError{Algorithm: alg, Err: err}
	}

	raw := ha.Sum(nil)
	if len(raw) != alg.Size() {
		return "", &DigestError{Algorithm: alg, Err: errDigestLength}
	}

	return base64.StdEncoding.EncodeToString(raw), nil
}

var defaultEncoder = NewEncoder(StdEngine)

// Encode hashes data with the standard engine. See
// Encoder.Encode.
func Encode(data []byte, selector string) (string, error) {
	return defaultEncoder.Encode(data, selector)
}

// Integrity joins an algorithm and a base64 digest into an
// integrity attribute value such as "sha384-<digest>".
func Integrity(alg Algorithm, b64 string) string {
	return alg.String() + "-" + b64
}
