package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vvka-141/zclload/internal/dialect/manifest"
	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/internal/registry"
	"github.com/vvka-141/zclload/internal/store"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// loadManifestExtras writes everything a manifest contributes besides its
// files: code maps, options, option defaults and the schema and validation
// packages. Options are rewritten from scratch.
func (s *LoadService) loadManifestExtras(ctx context.Context, tx zclload.Tx, packageID int64, m *manifest.Manifest) error {
	if err := registry.DeleteOptions(ctx, tx, packageID); err != nil {
		return err
	}

	for _, mf := range []struct {
		path     string
		category string
	}{
		{m.ManufacturersXML, model.OptionManufacturerCodes},
		{m.ProfilesXML, model.OptionProfileCodes},
	} {
		if mf.path == "" {
			continue
		}
		content, err := s.fsys.ReadFile(mf.path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", mf.path, err)
		}
		opts, err := manifest.ParseMapFile(mf.path, content)
		if err != nil {
			return err
		}
		if err := registry.InsertOptions(ctx, tx, packageID, mf.category, opts); err != nil {
			return err
		}
		s.logger.Verbose("%s: %d %s", mf.path, len(opts), mf.category)
	}

	for _, set := range m.OptionSets() {
		if err := registry.InsertOptions(ctx, tx, packageID, set.Category, set.Options); err != nil {
			return err
		}
	}

	for _, d := range m.OptionDefaults() {
		opt, ok, err := registry.SelectOption(ctx, tx, packageID, d.Category, d.Code)
		if err != nil {
			return err
		}
		if !ok && d.Alternate != "" {
			if opt, ok, err = registry.SelectOption(ctx, tx, packageID, d.Category, d.Alternate); err != nil {
				return err
			}
		}
		if !ok {
			return fmt.Errorf("default %q for %s matches no option: %w", d.Code, d.Category, zclload.ErrInvalidManifest)
		}
		if err := registry.InsertOptionDefault(ctx, tx, packageID, d.Category, opt.ID); err != nil {
			return err
		}
	}

	if m.Schema != "" && m.Validation != "" {
		for _, f := range []struct {
			path string
			kind zclload.PackageKind
		}{
			{m.Schema, zclload.KindSchema},
			{m.Validation, zclload.KindValidation},
		} {
			content, err := s.fsys.ReadFile(f.path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", f.path, err)
			}
			parent := packageID
			if _, err := registry.Qualify(ctx, tx, registry.File{Path: f.path, Hash: s.hash(content), Kind: f.kind, Parent: &parent}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *LoadService) ensureCustomDevice(ctx context.Context, tx zclload.Tx, packageID int64) error {
	rows, err := tx.QueryAll(ctx, queryCustomDevice, packageID, customDeviceCode, customDeviceName)
	if err != nil {
		return fmt.Errorf("failed to look up custom device type: %w", err)
	}
	if len(rows) > 0 {
		return nil
	}
	if _, err := tx.Exec(ctx, insertCustomDevice, packageID, customDeviceDomain, customDeviceCode,
		customDeviceProfileID, customDeviceName, customDeviceDescription); err != nil {
		return fmt.Errorf("failed to insert custom device type: %w", err)
	}
	s.logger.Verbose("Added %s to package %d", customDeviceName, packageID)
	return nil
}

// checkAttributeAccessInterface verifies that every cluster named in the
// manifest's attributeAccessInterfaceAttributes exists in scope and that
// each listed attribute belongs to it or is global.
func checkAttributeAccessInterface(ctx context.Context, tx zclload.Tx, attrs map[string][]string, scope []int64) error {
	clusters := make([]string, 0, len(attrs))
	for name := range attrs {
		clusters = append(clusters, name)
	}
	sort.Strings(clusters)

	for _, cluster := range clusters {
		stmt, args := scoped(queryClusterByName, scope)
		rows, err := tx.QueryAll(ctx, stmt, append([]any{cluster}, args...)...)
		if err != nil {
			return fmt.Errorf("failed to look up cluster %q: %w", cluster, err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("unknown cluster %q in attributeAccessInterfaceAttributes: %w", cluster, zclload.ErrInvalidManifest)
		}

		stmt, args = scoped(queryClusterAttributeNames, scope)
		rows, err = tx.QueryAll(ctx, stmt, append([]any{rows[0].Int64("cluster_id")}, args...)...)
		if err != nil {
			return fmt.Errorf("failed to list attributes of %q: %w", cluster, err)
		}
		names := make(map[string]bool, len(rows))
		for _, r := range rows {
			names[r.String("name")] = true
		}
		for _, attr := range attrs[cluster] {
			if !names[attr] {
				return fmt.Errorf("unknown attribute %q in attributeAccessInterfaceAttributes[%q]: %w",
					attr, cluster, zclload.ErrInvalidManifest)
			}
		}
	}
	return nil
}

// scoped substitutes the single {scope} marker of stmt.
func scoped(stmt string, scope []int64) (string, []any) {
	in, args := store.In(scope)
	return strings.Replace(stmt, "{scope}", in, 1), args
}
