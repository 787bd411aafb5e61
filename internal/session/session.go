// Package session keeps projected trees between staging an archive and committing a
// selection from it.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/optics-dcs/miz-import/internal/tree"
)

// ErrNotFound is returned for an unknown or expired session id.
var ErrNotFound = errors.New("session not found")

// Snapshot is a serialized tree and the import it belongs to. Snapshots are not changed after
// Put.
type Snapshot struct {
	ID        string
	CreatedAt time.Time
	PackageID uint
	Filename  string
	Scheme    tree.Scheme
	Tree      []byte
}

// Store holds snapshots by id.
type Store interface {
	Put(ctx context.Context, s Snapshot) (string, error)
	Get(ctx context.Context, id string) (*Snapshot, error)
	Delete(ctx context.Context, id string) error
}

// NewSnapshot serializes root into a snapshot for the given package and archive.
func NewSnapshot(root *tree.Node, packageID uint, filename string) (Snapshot, error) {
	data, err := tree.Marshal(root)
	if err != nil {
		return Snapshot{}, fmt.Errorf("serializing tree: %w", err)
	}
	return Snapshot{
		PackageID: packageID,
		Filename:  filename,
		Scheme:    root.Scheme(),
		Tree:      data,
	}, nil
}

// Root restores the snapshot's tree.
func (s *Snapshot) Root() (*tree.Node, error) {
	return tree.Unmarshal(s.Tree)
}

func newID() string {
	return uuid.NewString()
}

// prepare stamps id and creation time and detaches the tree bytes from the caller's slice.
func prepare(s Snapshot, now time.Time) Snapshot {
	s.ID = newID()
	s.CreatedAt = now
	s.Tree = append([]byte(nil), s.Tree...)
	return s
}
