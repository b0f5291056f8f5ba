package app

import (
	"go.uber.org/zap"
)

// PurgeService evicts cached entries. Owned by the cdn slice and exported
// to importers as "purge".
type PurgeService struct {
	log   *zap.Logger
	store *Store
}

func NewPurgeService(log *zap.Logger, store *Store) *PurgeService {
	return &PurgeService{log: log, store: store}
}

// Purge evicts path from the cache, reporting whether it was present.
func (p *PurgeService) Purge(path string) bool {
	existed := p.store.Delete(path)
	p.log.Info("cache purge", zap.String("path", path), zap.Bool("existed", existed))
	return existed
}

// Dashboard is the admin slice's entry component. It reaches the cdn
// slice's purge service only through the imported "cdn.purge" key.
type Dashboard struct {
	purge *PurgeService
}

func NewDashboard(purge *PurgeService) *Dashboard {
	return &Dashboard{purge: purge}
}

// PurgePath triggers a purge on behalf of an admin request.
func (d *Dashboard) PurgePath(path string) bool {
	return d.purge.Purge(path)
}
