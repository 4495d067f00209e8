package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "zclload",
	Short: "Load ZCL cluster metadata into a relational store",
	Long: `zclload reads Zigbee Cluster Library metadata (JSON or .properties
manifests, ZCL XML and dotdot XML files) and loads it into a sqlite or
postgres database as one consistent object graph.

Unchanged files are recognized by content hash and never parsed twice.
Every load runs in a single transaction: it either lands completely or
leaves the store untouched.

Configuration precedence (lowest to highest):
  zclload.yaml < .env < ZCLLOAD_* / DATABASE_URL < --set < --driver/--dsn

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Store connection failed
  12 - Unreadable, unknown or rejected metadata file
  13 - Store statement or transaction failed
  14 - Unknown session id`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

type globalFlagValues struct {
	verbose   bool
	config    string
	driver    string
	dsn       string
	overrides []string
}

var globalFlags globalFlagValues

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&globalFlags.verbose, "verbose", "v", false, "Enable verbose output for all commands")
	pf.StringVar(&globalFlags.config, "config", "",
		"Path to a config file (default: ./zclload.yaml when present)")
	pf.StringVar(&globalFlags.driver, "driver", "",
		"Store driver: sqlite|postgres (default: sqlite, or $ZCLLOAD_DRIVER)")
	pf.StringVar(&globalFlags.dsn, "dsn", "",
		"sqlite database path or postgres connection string\n"+
			"(default: zclload.db, or $ZCLLOAD_DSN, or $DATABASE_URL)")
	pf.StringSliceVar(&globalFlags.overrides, "set", nil,
		"Override a config value as key=value (can be specified multiple times)\n"+
			"Example: --set load.workers=8 --set load.timeout=2m")

	_ = rootCmd.RegisterFlagCompletionFunc("driver", completeDrivers)
	_ = rootCmd.RegisterFlagCompletionFunc("set", completeOverrideKeys)
}
