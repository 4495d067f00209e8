package batch

import (
	"context"
	"fmt"

	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/internal/store"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// loadClusters is batch 2.
func (l *Loader) loadClusters(ctx context.Context, tx zclload.Tx, f *file) error {
	g := f.graph
	if err := checkDuplicateClusters(g.Clusters); err != nil {
		return err
	}

	return l.group(ctx,
		func(ctx context.Context) error {
			return l.fanOut(ctx, len(g.DeviceTypes), func(ctx context.Context, i int) error {
				return storeDeviceType(ctx, tx, f.packageID, g.DeviceTypes[i])
			})
		},
		func(ctx context.Context) error {
			return l.insertMembers(ctx, tx, f.scope, f.packageID, nil, g.Globals.Commands, g.Globals.Attributes, nil)
		},
		func(ctx context.Context) error {
			return l.fanOut(ctx, len(g.Clusters), func(ctx context.Context, i int) error {
				return l.insertCluster(ctx, tx, f, g.Clusters[i])
			})
		},
	)
}

type clusterKey struct {
	code int64
	mfg  int64
	has  bool
}

func keyOf(code int64, mfg *int64) clusterKey {
	if mfg == nil {
		return clusterKey{code: code}
	}
	return clusterKey{code: code, mfg: *mfg, has: true}
}

func checkDuplicateClusters(clusters []model.Cluster) error {
	seen := make(map[clusterKey]string, len(clusters))
	for _, c := range clusters {
		k := keyOf(c.Code, c.ManufacturerCode)
		if prev, dup := seen[k]; dup {
			return fmt.Errorf("cluster %#04x declared as %q and %q: %w", c.Code, prev, c.Name, zclload.ErrDuplicateCluster)
		}
		seen[k] = c.Name
	}
	return nil
}

func (l *Loader) insertCluster(ctx context.Context, tx zclload.Tx, f *file, c model.Cluster) error {
	clusterID, err := l.claimCluster(ctx, tx, f, c)
	if err != nil {
		return err
	}

	for _, tag := range c.Tags {
		if _, err := tx.Exec(ctx, insertTag, f.packageID, clusterID, tag.Name, nullString(tag.Description)); err != nil {
			return fmt.Errorf("cluster %s tag %s: %w", c.Name, tag.Name, err)
		}
	}
	if err := l.insertMembers(ctx, tx, f.scope, f.packageID, &clusterID, c.Commands, c.Attributes, c.Events); err != nil {
		return fmt.Errorf("cluster %s: %w", c.Name, err)
	}
	return nil
}

// claimCluster checks that no other known package owns the cluster code
// and inserts the cluster row.
func (l *Loader) claimCluster(ctx context.Context, tx zclload.Tx, f *file, c model.Cluster) (int64, error) {
	l.clusterMu.Lock()
	defer l.clusterMu.Unlock()

	in, args := store.In(f.scope)
	stmt := "SELECT PACKAGE_REF FROM CLUSTER WHERE CODE = ? AND PACKAGE_REF <> ? AND PACKAGE_REF IN " + in
	params := []any{c.Code, f.packageID}
	if c.ManufacturerCode == nil {
		stmt += " AND MANUFACTURER_CODE IS NULL"
	} else {
		stmt += " AND MANUFACTURER_CODE = ?"
	}
	params = append(params, args...)
	if c.ManufacturerCode != nil {
		params = append(params, *c.ManufacturerCode)
	}
	rows, err := tx.QueryAll(ctx, stmt, params...)
	if err != nil {
		return 0, fmt.Errorf("cluster %s: %w", c.Name, err)
	}
	if len(rows) > 0 {
		return 0, fmt.Errorf("cluster %#04x (%s) is already defined by package %d: %w",
			c.Code, c.Name, rows[0].Int64("package_ref"), zclload.ErrDuplicateCluster)
	}

	id, err := tx.InsertReturningID(ctx, insertCluster,
		f.packageID, nullString(c.Domain), c.Code, c.ManufacturerCode, c.Name, nullString(c.Description),
		nullString(c.Define), flag(c.IsSingleton), c.Revision, nullString(c.IntroducedIn), nullString(c.RemovedIn))
	if err != nil {
		return 0, fmt.Errorf("cluster %s: %w", c.Name, err)
	}
	return id, nil
}

// insertMembers inserts commands, attributes and events owned by packageID.
// clusterID is nil for globals.
func (l *Loader) insertMembers(ctx context.Context, tx zclload.Tx, scope []int64, packageID int64, clusterID *int64,
	commands []model.Command, attributes []model.Attribute, events []model.Event) error {
	for _, cmd := range commands {
		if err := l.insertCommand(ctx, tx, scope, packageID, clusterID, cmd); err != nil {
			return fmt.Errorf("command %s: %w", cmd.Name, err)
		}
	}
	for _, attr := range attributes {
		if err := l.insertAttribute(ctx, tx, scope, packageID, clusterID, attr); err != nil {
			return fmt.Errorf("attribute %s: %w", attr.Name, err)
		}
	}
	for _, ev := range events {
		if err := l.insertEvent(ctx, tx, scope, packageID, clusterID, ev); err != nil {
			return fmt.Errorf("event %s: %w", ev.Name, err)
		}
	}
	return nil
}

func (l *Loader) insertCommand(ctx context.Context, tx zclload.Tx, scope []int64, packageID int64, clusterID *int64, c model.Command) error {
	id, err := tx.InsertReturningID(ctx, insertCommand,
		packageID, clusterID, c.Code, c.ManufacturerCode, c.Name, nullString(c.Description), nullString(c.Source),
		flag(c.IsOptional), flag(c.MustUseTimedInvoke), flag(c.IsFabricScoped), flag(c.IsDefaultResponseEnabled),
		nullString(c.IntroducedIn), nullString(c.ResponseName))
	if err != nil {
		return err
	}
	for _, a := range c.Args {
		if _, err := tx.Exec(ctx, insertCommandArg,
			id, a.FieldID, a.Name, nullString(a.Type), nullString(a.Min), nullString(a.Max), a.MaxLength,
			flag(a.IsArray), nullString(a.PresentIf), flag(a.IsNullable), flag(a.IsOptional),
			nullString(a.CountArg), nullString(a.DefaultValue), nullString(a.IntroducedIn)); err != nil {
			return fmt.Errorf("argument %s: %w", a.Name, err)
		}
	}
	return l.linkAccess(ctx, tx, scope, packageID, insertCommandAccess, id, c.Access)
}

func (l *Loader) insertAttribute(ctx context.Context, tx zclload.Tx, scope []int64, packageID int64, clusterID *int64, a model.Attribute) error {
	id, err := tx.InsertReturningID(ctx, insertAttribute,
		packageID, clusterID, a.Code, a.ManufacturerCode, a.Name, nullString(a.Type), string(a.Side),
		nullString(a.Define), nullString(a.Min), nullString(a.Max), a.MinLength, a.MaxLength,
		nullString(a.ReportMinInterval), nullString(a.ReportMaxInterval), nullString(a.ReportableChange),
		a.ReportableChangeLength, flag(a.IsWritable), flag(a.IsReadable), nullString(a.DefaultValue),
		flag(a.IsOptional), nullString(a.ReportingPolicy), nullString(a.StoragePolicy),
		flag(a.IsSceneRequired), flag(a.IsNullable), nullString(a.EntryType), flag(a.MustUseTimedWrite),
		flag(a.IsChangeOmitted), nullString(a.Persistence), nullString(a.IntroducedIn))
	if err != nil {
		return err
	}
	return l.linkAccess(ctx, tx, scope, packageID, insertAttributeAccess, id, a.Access)
}

func (l *Loader) insertEvent(ctx context.Context, tx zclload.Tx, scope []int64, packageID int64, clusterID *int64, e model.Event) error {
	id, err := tx.InsertReturningID(ctx, insertEvent,
		packageID, clusterID, e.Code, e.ManufacturerCode, e.Name, nullString(e.Description),
		nullString(e.Side), nullString(e.Priority), flag(e.IsOptional), flag(e.IsFabricSensitive))
	if err != nil {
		return err
	}
	for _, fld := range e.Fields {
		if _, err := tx.Exec(ctx, insertEventField,
			id, fld.FieldID, fld.Name, nullString(fld.Type), flag(fld.IsArray), flag(fld.IsNullable),
			flag(fld.IsOptional), nullString(fld.IntroducedIn)); err != nil {
			return fmt.Errorf("field %s: %w", fld.Name, err)
		}
	}
	return l.linkAccess(ctx, tx, scope, packageID, insertEventAccess, id, e.Access)
}

func storeDeviceType(ctx context.Context, tx zclload.Tx, packageID int64, d model.DeviceType) error {
	id, err := tx.InsertReturningID(ctx, insertDeviceType,
		packageID, nullString(d.Domain), d.Code, d.ProfileID, d.Name, nullString(d.Description),
		nullString(d.Class), nullString(d.Scope), nullString(d.Superset))
	if err != nil {
		return fmt.Errorf("device type %s: %w", d.Name, err)
	}
	for _, inc := range d.Clusters {
		incID, err := tx.InsertReturningID(ctx, insertDeviceTypeCluster,
			id, inc.ClusterName, flag(inc.Client), flag(inc.Server), flag(inc.ClientLocked), flag(inc.ServerLocked))
		if err != nil {
			return fmt.Errorf("device type %s cluster %s: %w", d.Name, inc.ClusterName, err)
		}
		for _, name := range inc.RequiredAttributes {
			if _, err := tx.Exec(ctx, insertDeviceTypeAttribute, incID, name); err != nil {
				return fmt.Errorf("device type %s attribute %s: %w", d.Name, name, err)
			}
		}
		for _, name := range inc.RequiredCommands {
			if _, err := tx.Exec(ctx, insertDeviceTypeCommand, incID, name); err != nil {
				return fmt.Errorf("device type %s command %s: %w", d.Name, name, err)
			}
		}
	}
	return nil
}
