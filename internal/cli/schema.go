package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vvka-141/zclload/internal/store"
	"github.com/vvka-141/zclload/pkg/zclload"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the database schema for the selected driver",
	Long: `Schema prints the DDL zclload applies when it opens a store, for the
driver selected by --driver, $ZCLLOAD_DRIVER or zclload.yaml.

Use it to provision a postgres database ahead of time with a role that
cannot create tables.

Examples:
  zclload schema
  zclload schema --driver postgres > zcl.sql`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	cfg, err := resolveProjectConfig(globalFlags, os.Getenv)
	if err != nil {
		return err
	}
	driver := cfg.Store.Driver
	if driver == "" {
		driver = zclload.DefaultDriver
	}
	ddl, err := store.Schema(driver)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), ddl)
	return nil
}
