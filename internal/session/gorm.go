package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/optics-dcs/miz-import/internal/model"
	"github.com/optics-dcs/miz-import/internal/tree"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormStore keeps snapshots in the import_sessions table.
type GormStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a store on db. Snapshots older than ttl are treated as missing; a
// zero ttl keeps them forever.
func NewGormStore(db *gorm.DB, ttl time.Duration) *GormStore {
	return &GormStore{db: db, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

func (g *GormStore) Put(ctx context.Context, s Snapshot) (string, error) {
	s = prepare(s, g.now())
	row := model.ImportSession{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		PackageID: s.PackageID,
		Filename:  s.Filename,
		Scheme:    string(s.Scheme),
		Tree:      datatypes.JSON(s.Tree),
	}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return s.ID, nil
}

func (g *GormStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	var row model.ImportSession
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	if g.expired(row.CreatedAt) {
		return nil, fmt.Errorf("%w: %s expired", ErrNotFound, id)
	}
	return &Snapshot{
		ID:        row.ID,
		CreatedAt: row.CreatedAt,
		PackageID: row.PackageID,
		Filename:  row.Filename,
		Scheme:    tree.Scheme(row.Scheme),
		Tree:      []byte(row.Tree),
	}, nil
}

func (g *GormStore) Delete(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ImportSession{}).Error
}

// Prune deletes expired snapshots and returns how many were removed.
func (g *GormStore) Prune(ctx context.Context) (int64, error) {
	if g.ttl <= 0 {
		return 0, nil
	}
	res := g.db.WithContext(ctx).Where("created_at < ?", g.now().Add(-g.ttl)).Delete(&model.ImportSession{})
	return res.RowsAffected, res.Error
}

func (g *GormStore) expired(created time.Time) bool {
	return g.ttl > 0 && g.now().Sub(created) > g.ttl
}
