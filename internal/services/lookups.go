package services

import (
	"context"

	"github.com/vvka-141/zclload/internal/discriminator"
	"github.com/vvka-141/zclload/internal/registry"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// Discriminators returns the discriminator ids visible to packageIDs.
func (s *LoadService) Discriminators(ctx context.Context, packageIDs []int64) (discriminator.Map, error) {
	var m discriminator.Map
	err := s.read(ctx, func(tx zclload.Tx) error {
		var err error
		m, err = discriminator.NewResolver().Resolve(ctx, tx, packageIDs)
		return err
	})
	return m, err
}

// PackageID returns the id registered for path.
func (s *LoadService) PackageID(ctx context.Context, path string) (int64, bool, error) {
	var (
		info  zclload.PackageInfo
		found bool
	)
	err := s.read(ctx, func(tx zclload.Tx) error {
		var err error
		info, found, err = registry.Lookup(ctx, tx, path)
		return err
	})
	return info.ID, found, err
}

// Packages lists every registered package.
func (s *LoadService) Packages(ctx context.Context) ([]zclload.PackageInfo, error) {
	var pkgs []zclload.PackageInfo
	err := s.read(ctx, func(tx zclload.Tx) error {
		var err error
		pkgs, err = registry.List(ctx, tx)
		return err
	})
	return pkgs, err
}

// SessionPackages lists the packages attached to a session.
func (s *LoadService) SessionPackages(ctx context.Context, sessionID string) ([]int64, error) {
	var ids []int64
	err := s.read(ctx, func(tx zclload.Tx) error {
		var err error
		ids, err = registry.SessionPackages(ctx, tx, sessionID)
		return err
	})
	return ids, err
}

// read runs fn in a transaction that is always rolled back.
func (s *LoadService) read(ctx context.Context, fn func(zclload.Tx) error) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(context.WithoutCancel(ctx))
	return fn(tx)
}
