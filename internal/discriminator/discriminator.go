// Package discriminator maintains the data type categories (ARRAY, BITMAP,
// ENUM, NUMBER, STRING, STRUCT) that every DATA_TYPE row points to.
package discriminator

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/internal/store"
	"github.com/vvka-141/zclload/pkg/zclload"
)

const insertDiscriminator = `
	INSERT INTO DISCRIMINATOR (PACKAGE_REF, NAME) VALUES (?, ?)
	ON CONFLICT (PACKAGE_REF, NAME) DO NOTHING
`

// Ensure inserts the discriminator names for packageID. Names already
// present are skipped. An empty list means model.DefaultDiscriminators.
func Ensure(ctx context.Context, tx zclload.Tx, packageID int64, names []string) error {
	if len(names) == 0 {
		names = model.DefaultDiscriminators
	}
	for _, name := range names {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		if _, err := tx.Exec(ctx, insertDiscriminator, packageID, name); err != nil {
			return fmt.Errorf("failed to insert discriminator %s: %w", name, err)
		}
	}
	return nil
}

// Map resolves discriminator names to ids, ignoring case.
type Map map[string]int64

// Lookup returns the id for name.
func (m Map) Lookup(name string) (int64, bool) {
	id, ok := m[strings.ToUpper(name)]
	return id, ok
}

// Require returns the id for name or an error wrapping
// zclload.ErrMissingDiscriminator.
func (m Map) Require(name string) (int64, error) {
	if id, ok := m.Lookup(name); ok {
		return id, nil
	}
	return 0, fmt.Errorf("%s: %w", name, zclload.ErrMissingDiscriminator)
}

// Resolver caches Maps for the lifetime of one load operation. It is safe
// for concurrent use.
type Resolver struct {
	mu    sync.Mutex
	cache map[string]Map
}

// NewResolver returns an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{cache: make(map[string]Map)}
}

// Resolve returns the discriminators owned by packageIDs. When two packages
// declare the same name, the one listed first wins.
func (r *Resolver) Resolve(ctx context.Context, tx zclload.Tx, packageIDs []int64) (Map, error) {
	key := cacheKey(packageIDs)

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.cache[key]; ok {
		return m, nil
	}

	m := make(Map)
	if len(packageIDs) > 0 {
		in, args := store.In(packageIDs)
		rows, err := tx.QueryAll(ctx,
			"SELECT DISCRIMINATOR_ID, PACKAGE_REF, NAME FROM DISCRIMINATOR WHERE PACKAGE_REF IN "+in+
				" ORDER BY DISCRIMINATOR_ID", args...)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve discriminators: %w", err)
		}
		byPackage := make(map[int64][]zclload.Row)
		for _, row := range rows {
			pkg := row.Int64("package_ref")
			byPackage[pkg] = append(byPackage[pkg], row)
		}
		for _, id := range packageIDs {
			for _, row := range byPackage[id] {
				name := strings.ToUpper(row.String("name"))
				if _, seen := m[name]; !seen {
					m[name] = row.Int64("discriminator_id")
				}
			}
		}
	}
	r.cache[key] = m
	return m, nil
}

func cacheKey(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// Classify returns the discriminator category of an atomic type name.
func Classify(atomicName string) string {
	return model.CategoryForAtomicName(atomicName)
}

// Missing lists the categories from want that m cannot resolve.
func (m Map) Missing(want ...string) []string {
	var missing []string
	for _, name := range want {
		if _, ok := m.Lookup(name); !ok && !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
	}
	return missing
}
