// Package resolve rewrites the named forward references left by the batch
// loader into foreign keys once every file of a load is in the store.
//
// Data type cluster codes, device type cluster, attribute and command
// names, command responses, access vocabulary names and the type names of
// attributes, command arguments, event fields and struct items are resolved
// within the package scope of the load. Only NULL references are touched, so the pass is
// idempotent. Whatever stays NULL is reported as an orphan.
package resolve

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vvka-141/zclload/internal/logging"
	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/internal/store"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// DefaultCacheSize bounds the type lookup cache of one Resolve call.
const DefaultCacheSize = 1024

// Orphan kinds.
const (
	OrphanDataTypeCluster     = "data type cluster"
	OrphanDeviceTypeCluster   = "device type cluster"
	OrphanDeviceTypeAttribute = "device type attribute"
	OrphanDeviceTypeCommand   = "device type command"
	OrphanResponse            = "command response"
	OrphanAccessOperation     = "access operation"
	OrphanAccessRole          = "access role"
	OrphanAccessModifier      = "access modifier"
	OrphanType                = "type"
)

// Orphan is a named reference that no package in scope defines.
type Orphan struct {
	Kind  string
	Owner string
	Name  string
}

func (o Orphan) String() string {
	return fmt.Sprintf("%s %q of %s", o.Kind, o.Name, o.Owner)
}

// Report summarizes one Resolve pass.
type Report struct {
	Resolved int64
	Orphans  []Orphan
}

// Resolver runs the post-load pass.
type Resolver struct {
	logger    zclload.Logger
	cacheSize int
}

// New returns a Resolver. A non-positive cacheSize means DefaultCacheSize.
func New(logger zclload.Logger, cacheSize int) *Resolver {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Resolver{logger: logger, cacheSize: cacheSize}
}

// Resolve resolves every NULL reference owned by packageIDs against the
// entities of packageIDs.
func (r *Resolver) Resolve(ctx context.Context, tx zclload.Tx, packageIDs []int64) (*Report, error) {
	report := &Report{}

	for _, step := range []struct {
		name string
		stmt string
	}{
		{"data type clusters", resolveDataTypeClusters},
		{"device type clusters", resolveDeviceTypeClusters},
		{"device type attributes", resolveDeviceTypeAttributes},
		{"device type commands", resolveDeviceTypeCommands},
		{"command responses", resolveCommandResponses},
		{"access operations", resolveAccessOperations},
		{"access roles", resolveAccessRoles},
		{"access modifiers", resolveAccessModifiers},
	} {
		stmt, args := expand(step.stmt, packageIDs)
		n, err := tx.Exec(ctx, stmt, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", step.name, err)
		}
		report.Resolved += n
	}

	types, err := newTypeLookup(tx, packageIDs, r.cacheSize)
	if err != nil {
		return nil, err
	}
	for _, table := range typedTables {
		n, orphans, err := r.resolveTypes(ctx, tx, types, table, packageIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s types: %w", strings.ToLower(table.name), err)
		}
		report.Resolved += n
		report.Orphans = append(report.Orphans, orphans...)
	}

	named, err := collectOrphans(ctx, tx, packageIDs)
	if err != nil {
		return nil, err
	}
	report.Orphans = append(named, report.Orphans...)

	for _, o := range report.Orphans {
		r.logger.Verbose("Unresolved %s", o)
	}
	if len(report.Orphans) > 0 {
		r.logger.Warn("%d references could not be resolved", len(report.Orphans))
	}
	return report, nil
}

func (r *Resolver) resolveTypes(ctx context.Context, tx zclload.Tx, types *typeLookup, table typedTable, scope []int64) (int64, []Orphan, error) {
	stmt, args := expand(table.pending, scope)
	rows, err := tx.QueryAll(ctx, stmt, args...)
	if err != nil {
		return 0, nil, err
	}

	var (
		resolved int64
		orphans  []Orphan
	)
	for _, row := range rows {
		name := row.String("type_name")
		code, scoped := row.NullInt64("cluster_code")
		id, ok, err := types.find(ctx, name, code, scoped)
		if err != nil {
			return 0, nil, err
		}
		if !ok {
			orphans = append(orphans, Orphan{Kind: OrphanType, Owner: row.String("owner"), Name: name})
			continue
		}
		if _, err := tx.Exec(ctx, table.update, id, row.Int64("id")); err != nil {
			return 0, nil, err
		}
		resolved++
	}
	return resolved, orphans, nil
}

// typeLookup finds DATA_TYPE rows by name, preferring types scoped to the
// cluster of the referencing row, then unscoped types.
type typeLookup struct {
	tx    zclload.Tx
	scope []int64
	cache *lru.Cache[string, typeRef]
}

type typeRef struct {
	id    int64
	found bool
}

func newTypeLookup(tx zclload.Tx, scope []int64, size int) (*typeLookup, error) {
	cache, err := lru.New[string, typeRef](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create type cache: %w", err)
	}
	return &typeLookup{tx: tx, scope: scope, cache: cache}, nil
}

func (t *typeLookup) find(ctx context.Context, name string, clusterCode int64, scoped bool) (int64, bool, error) {
	var codes []int64
	if scoped {
		codes = []int64{clusterCode}
	}
	key := model.TypeKey(name, codes)
	if ref, ok := t.cache.Get(key); ok {
		return ref.id, ref.found, nil
	}

	stmt, args := expand(queryDataTypeCandidates, t.scope)
	rows, err := t.tx.QueryAll(ctx, stmt, append([]any{strings.ToLower(name)}, args...)...)
	if err != nil {
		return 0, false, err
	}

	var exact, unscoped, first typeRef
	for _, row := range rows {
		ref := typeRef{id: row.Int64("data_type_id"), found: true}
		code, hasCode := row.NullInt64("cluster_code")
		if scoped && hasCode && code == clusterCode && !exact.found {
			exact = ref
		}
		if !hasCode && !unscoped.found {
			unscoped = ref
		}
		if !first.found {
			first = ref
		}
	}
	ref := first
	switch {
	case exact.found:
		ref = exact
	case unscoped.found:
		ref = unscoped
	}
	t.cache.Add(key, ref)
	return ref.id, ref.found, nil
}

func collectOrphans(ctx context.Context, tx zclload.Tx, scope []int64) ([]Orphan, error) {
	var out []Orphan
	for _, q := range []struct {
		kind string
		stmt string
	}{
		{OrphanDataTypeCluster, orphanDataTypeClusters},
		{OrphanDeviceTypeCluster, orphanDeviceTypeClusters},
		{OrphanDeviceTypeAttribute, orphanDeviceTypeAttributes},
		{OrphanDeviceTypeCommand, orphanDeviceTypeCommands},
		{OrphanResponse, orphanResponses},
		{OrphanAccessOperation, orphanAccessOperations},
		{OrphanAccessRole, orphanAccessRoles},
		{OrphanAccessModifier, orphanAccessModifiers},
	} {
		stmt, args := expand(q.stmt, scope)
		rows, err := tx.QueryAll(ctx, stmt, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to collect unresolved %ss: %w", q.kind, err)
		}
		for _, row := range rows {
			name := row.String("name")
			if q.kind == OrphanDataTypeCluster {
				name = fmt.Sprintf("%#04x", row.Int64("name"))
			}
			out = append(out, Orphan{Kind: q.kind, Owner: row.String("owner"), Name: name})
		}
	}
	return out, nil
}

// expand substitutes every {scope} marker with an IN list over scope and
// repeats the arguments once per marker.
func expand(stmt string, scope []int64) (string, []any) {
	in, args := store.In(scope)
	n := strings.Count(stmt, "{scope}")
	all := make([]any, 0, n*len(args))
	for range n {
		all = append(all, args...)
	}
	return strings.ReplaceAll(stmt, "{scope}", in), all
}
