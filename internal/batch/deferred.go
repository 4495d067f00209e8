package batch

import (
	"context"
	"fmt"
	"sort"

	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/internal/store"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// Pending is work that can only run once every file of a load is in.
type Pending interface {
	// Owner is the package the deferred rows belong to.
	Owner() int64
	String() string
}

// PendingClusterExtension adds members to a cluster identified by code.
type PendingClusterExtension struct {
	Package   int64
	Extension model.ClusterExtension
}

func (p PendingClusterExtension) Owner() int64 { return p.Package }

func (p PendingClusterExtension) String() string {
	return fmt.Sprintf("extension of cluster %#04x from package %d", p.Extension.Code, p.Package)
}

// PendingGlobalAttributeDefaults overrides global attribute values for one
// cluster.
type PendingGlobalAttributeDefaults struct {
	Package  int64
	Defaults model.GlobalAttributeDefaults
}

func (p PendingGlobalAttributeDefaults) Owner() int64 { return p.Package }

func (p PendingGlobalAttributeDefaults) String() string {
	return fmt.Sprintf("global attribute defaults of cluster %#04x from package %d", p.Defaults.ClusterCode, p.Package)
}

func pendingFor(g *model.Graph, packageID int64) []Pending {
	var out []Pending
	for _, ext := range g.ClusterExtensions {
		out = append(out, PendingClusterExtension{Package: packageID, Extension: ext})
	}
	for _, d := range g.GlobalAttributeDefaults {
		out = append(out, PendingGlobalAttributeDefaults{Package: packageID, Defaults: d})
	}
	return out
}

// RunDeferred executes pending work in order, extensions before defaults.
// Work naming a cluster or global attribute that no package in scope
// defines is logged and skipped; the number of skipped units is returned.
func (l *Loader) RunDeferred(ctx context.Context, tx zclload.Tx, pending []Pending, known []int64) (int, error) {
	ordered := make([]Pending, len(pending))
	copy(ordered, pending)
	sort.SliceStable(ordered, func(i, j int) bool {
		_, ei := ordered[i].(PendingClusterExtension)
		_, ej := ordered[j].(PendingClusterExtension)
		return ei && !ej
	})

	skipped := 0
	for _, p := range ordered {
		scope := withPackage(known, p.Owner())
		var (
			applied bool
			err     error
		)
		switch p := p.(type) {
		case PendingClusterExtension:
			applied, err = l.applyExtension(ctx, tx, scope, p)
		case PendingGlobalAttributeDefaults:
			applied, err = l.applyDefaults(ctx, tx, scope, p)
		default:
			err = fmt.Errorf("unknown deferred work %T", p)
		}
		if err != nil {
			return skipped, fmt.Errorf("failed to apply %s: %w", p, err)
		}
		if !applied {
			skipped++
		}
	}
	return skipped, nil
}

func (l *Loader) applyExtension(ctx context.Context, tx zclload.Tx, scope []int64, p PendingClusterExtension) (bool, error) {
	clusterID, ok, err := findCluster(ctx, tx, scope, p.Extension.Code, nil)
	if err != nil {
		return false, err
	}
	if !ok {
		l.logger.Warn("Skipping %s: no known package defines cluster %#04x", p, p.Extension.Code)
		return false, nil
	}
	ext := p.Extension
	if err := l.insertMembers(ctx, tx, scope, p.Package, &clusterID, ext.Commands, ext.Attributes, ext.Events); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Loader) applyDefaults(ctx context.Context, tx zclload.Tx, scope []int64, p PendingGlobalAttributeDefaults) (bool, error) {
	d := p.Defaults
	clusterID, ok, err := findCluster(ctx, tx, scope, d.ClusterCode, d.ManufacturerCode)
	if err != nil {
		return false, err
	}
	if !ok {
		l.logger.Warn("Skipping %s: no known package defines cluster %#04x", p, d.ClusterCode)
		return false, nil
	}

	in, args := store.In(scope)
	for _, attr := range d.Attributes {
		rows, err := tx.QueryAll(ctx,
			"SELECT ATTRIBUTE_ID, PACKAGE_REF FROM ATTRIBUTE WHERE CLUSTER_REF IS NULL AND CODE = ? AND SIDE = ? AND PACKAGE_REF IN "+in,
			append([]any{attr.Code, string(attr.Side)}, args...)...)
		if err != nil {
			return false, err
		}
		if len(rows) == 0 {
			l.logger.Warn("Skipping default of global attribute %#04x (%s) for cluster %#04x: attribute not defined",
				attr.Code, attr.Side, d.ClusterCode)
			continue
		}
		attributeID := preferred(rows, scope, "attribute_id")

		defaultID, err := tx.InsertReturningID(ctx, insertGlobalAttributeDefault,
			p.Package, clusterID, attributeID, nullString(attr.Value))
		if err != nil {
			return false, err
		}
		for _, bit := range attr.FeatureBits {
			tagID, err := findTag(ctx, tx, scope, clusterID, bit.Tag)
			if err != nil {
				return false, err
			}
			if _, err := tx.Exec(ctx, insertGlobalAttributeBit, defaultID, bit.Bit, flag(bit.Value), tagID); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

// findCluster resolves a cluster code within scope. A nil manufacturer code
// matches any cluster with that code, preferring standard ones.
func findCluster(ctx context.Context, tx zclload.Tx, scope []int64, code int64, mfg *int64) (int64, bool, error) {
	in, args := store.In(scope)
	stmt := "SELECT CLUSTER_ID, PACKAGE_REF, MANUFACTURER_CODE FROM CLUSTER WHERE CODE = ? AND PACKAGE_REF IN " + in
	params := append([]any{code}, args...)
	if mfg != nil {
		stmt += " AND MANUFACTURER_CODE = ?"
		params = append(params, *mfg)
	}
	rows, err := tx.QueryAll(ctx, stmt+" ORDER BY CLUSTER_ID", params...)
	if err != nil {
		return 0, false, err
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	var standard []zclload.Row
	for _, r := range rows {
		if _, has := r.NullInt64("manufacturer_code"); !has {
			standard = append(standard, r)
		}
	}
	if len(standard) > 0 {
		rows = standard
	}
	return preferred(rows, scope, "cluster_id"), true, nil
}

// findTag looks a feature tag up by name, preferring tags of clusterID.
func findTag(ctx context.Context, tx zclload.Tx, scope []int64, clusterID int64, name string) (any, error) {
	if name == "" {
		return nil, nil
	}
	in, args := store.In(scope)
	rows, err := tx.QueryAll(ctx,
		"SELECT TAG_ID, CLUSTER_REF FROM TAG WHERE NAME = ? AND PACKAGE_REF IN "+in+" ORDER BY TAG_ID",
		append([]any{name}, args...)...)
	if err != nil {
		return nil, err
	}
	var fallback any
	for _, r := range rows {
		ref, scoped := r.NullInt64("cluster_ref")
		if scoped && ref == clusterID {
			return r.Int64("tag_id"), nil
		}
		if !scoped && fallback == nil {
			fallback = r.Int64("tag_id")
		}
	}
	return fallback, nil
}
