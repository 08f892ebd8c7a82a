package fingerprint

import (
	"encoding/hex"
	"fmt"
	"strconv"

	mt "github.com/txaty/go-merkletree"

	"dirpatch/internal/hash"
	"dirpatch/internal/record"
)

// leaf is one file's contribution to the tree: path, digest and size.
// Modification times are left out so that two trees with the same content
// share a fingerprint.
type leaf struct {
	data []byte
}

func (l *leaf) Serialize() ([]byte, error) {
	return l.data, nil
}

func newLeaf(r record.FileRecord) *leaf {
	data := make([]byte, 0, len(r.Path)+len(r.Digest)+24)
	data = append(data, r.Path...)
	data = append(data, 0)
	data = append(data, r.Digest...)
	data = append(data, 0)
	data = strconv.AppendInt(data, r.Size, 10)
	return &leaf{data: data}
}

// Compute returns the hex merkle root over scan's records sorted by path.
// Leaves are hashed with xxHash.
func Compute(scan record.ScanResult) (string, error) {
	paths := scan.Paths()

	// go-merkletree needs at least two blocks
	switch len(paths) {
	case 0:
		root, err := hash.XXHashFunc([]byte("empty-tree"))
		if err != nil {
			return "", fmt.Errorf("failed to create empty tree hash: %w", err)
		}
		return hex.EncodeToString(root), nil
	case 1:
		root, err := hash.XXHashFunc(newLeaf(scan[paths[0]]).data)
		if err != nil {
			return "", fmt.Errorf("failed to hash single leaf: %w", err)
		}
		return hex.EncodeToString(root), nil
	}

	blocks := make([]mt.DataBlock, 0, len(paths))
	for _, path := range paths {
		blocks = append(blocks, newLeaf(scan[path]))
	}

	tree, err := mt.New(&mt.Config{
		HashFunc: hash.XXHashFunc,
		Mode:     mt.ModeTreeBuild,
	}, blocks)
	if err != nil {
		return "", fmt.Errorf("failed to build merkle tree: %w", err)
	}

	return hex.EncodeToString(tree.Root), nil
}
