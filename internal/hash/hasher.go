package hash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	stdhash "hash"
	"hash/adler32"
	"hash/crc32"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const bufferSize = 32 * 1024 // 32KB buffer for streaming

// ErrUnknownAlgorithm is returned by ParseAlgorithm for names outside the supported set.
var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

// Algorithm selects the digest function used while scanning.
type Algorithm string

const (
	MD5     Algorithm = "md5"
	SHA1    Algorithm = "sha1"
	SHA256  Algorithm = "sha256"
	Adler32 Algorithm = "adler32"
	CRC32   Algorithm = "crc32"
	XXHash  Algorithm = "xxhash"
)

// DefaultAlgorithm is used when no algorithm is selected.
const DefaultAlgorithm = MD5

// Algorithms lists every supported algorithm in flag order.
func Algorithms() []Algorithm {
	return []Algorithm{MD5, SHA1, SHA256, Adler32, CRC32, XXHash}
}

// ParseAlgorithm resolves a case-insensitive algorithm name. An empty name yields DefaultAlgorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultAlgorithm, nil
	}
	for _, alg := range Algorithms() {
		if string(alg) == name {
			return alg, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// New returns a fresh hash.Hash for the algorithm. The zero value selects
// DefaultAlgorithm; any other unknown value panics.
func (a Algorithm) New() stdhash.Hash {
	switch a {
	case MD5, "":
		return md5.New()
	case SHA1:
		return sha1.New()
	case SHA256:
		return sha256.New()
	case Adler32:
		return adler32.New()
	case CRC32:
		return crc32.NewIEEE()
	case XXHash:
		return xxhash.New()
	default:
		panic(fmt.Sprintf("hash: unknown algorithm %q", string(a)))
	}
}

func (a Algorithm) String() string {
	return string(a)
}

// HashFile computes the digest of a file using streaming for large files
func HashFile(path string, alg Algorithm) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return HashReader(file, alg)
}

// HashReader streams r through the algorithm and returns the lowercase hex digest.
func HashReader(r io.Reader, alg Algorithm) (string, error) {
	h := alg.New()
	buf := make([]byte, bufferSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// XXHashFunc is a custom hash function adapter for go-merkletree
// It converts []byte input to xxHash []byte output
func XXHashFunc(data []byte) ([]byte, error) {
	sum := xxhash.Sum64(data)

	// Convert uint64 to []byte in big-endian format
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, sum)
	return buf, nil
}
