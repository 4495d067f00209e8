package registry

import (
	"context"
	"fmt"

	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// Option is a stored package option.
type Option struct {
	ID       int64
	Category string
	Code     string
	Label    string
}

// InsertOptions adds options to category. Codes already present are kept.
func InsertOptions(ctx context.Context, tx zclload.Tx, packageID int64, category string, opts []model.PackageOption) error {
	for _, o := range opts {
		if _, err := tx.Exec(ctx, insertOption, packageID, category, o.Code, o.Label); err != nil {
			return fmt.Errorf("failed to insert option %s.%s: %w", category, o.Code, err)
		}
	}
	return nil
}

// SelectOption finds the option of category whose code matches code,
// ignoring case.
func SelectOption(ctx context.Context, tx zclload.Tx, packageID int64, category, code string) (Option, bool, error) {
	rows, err := tx.QueryAll(ctx, querySelectOption, packageID, category, code)
	if err != nil {
		return Option{}, false, fmt.Errorf("failed to select option %s.%s: %w", category, code, err)
	}
	if len(rows) == 0 {
		return Option{}, false, nil
	}
	return optionFromRow(rows[0]), true, nil
}

// Options lists the options of category in insertion order.
func Options(ctx context.Context, tx zclload.Tx, packageID int64, category string) ([]Option, error) {
	rows, err := tx.QueryAll(ctx, queryOptions, packageID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list options %s: %w", category, err)
	}
	out := make([]Option, 0, len(rows))
	for _, r := range rows {
		out = append(out, optionFromRow(r))
	}
	return out, nil
}

// InsertOptionDefault makes optionID the default of category, replacing
// any previous default.
func InsertOptionDefault(ctx context.Context, tx zclload.Tx, packageID int64, category string, optionID int64) error {
	if _, err := tx.Exec(ctx, upsertOptionDefault, packageID, category, optionID); err != nil {
		return fmt.Errorf("failed to set default for %s: %w", category, err)
	}
	return nil
}

// OptionDefault returns the default option of category.
func OptionDefault(ctx context.Context, tx zclload.Tx, packageID int64, category string) (Option, bool, error) {
	rows, err := tx.QueryAll(ctx, queryOptionDefault, packageID, category)
	if err != nil {
		return Option{}, false, fmt.Errorf("failed to read default for %s: %w", category, err)
	}
	if len(rows) == 0 {
		return Option{}, false, nil
	}
	return optionFromRow(rows[0]), true, nil
}

// DeleteOptions removes every option and option default of packageID.
func DeleteOptions(ctx context.Context, tx zclload.Tx, packageID int64) error {
	if _, err := tx.Exec(ctx, deleteOptionDefaults, packageID); err != nil {
		return fmt.Errorf("failed to delete option defaults of package %d: %w", packageID, err)
	}
	if _, err := tx.Exec(ctx, deleteOptions, packageID); err != nil {
		return fmt.Errorf("failed to delete options of package %d: %w", packageID, err)
	}
	return nil
}

func optionFromRow(r zclload.Row) Option {
	return Option{
		ID:       r.Int64("option_id"),
		Category: r.String("option_category"),
		Code:     r.String("option_code"),
		Label:    r.String("option_label"),
	}
}
