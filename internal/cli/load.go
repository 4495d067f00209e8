package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vvka-141/zclload/internal/logging"
	"github.com/vvka-141/zclload/internal/services"
	"github.com/vvka-141/zclload/internal/tui"
	"github.com/vvka-141/zclload/pkg/zclload"
)

var loadCmd = &cobra.Command{
	Use:   "load <manifest>",
	Short: "Load a manifest and every metadata file it lists",
	Long: `Load reads a top-level metadata file and loads it, together with every
file it lists, in one transaction.

Arguments:
  manifest    A zcl.json or zcl.properties manifest, or a dotdot
              library.xml whose includes name the cluster files

Files whose content hash is already registered are skipped. Files that
changed replace their previous rows, and files that extend a changed
cluster are reloaded with it. On success the package id of the manifest
and the new session id are printed to stdout.

Examples:
  # Load into ./zclload.db
  zclload load ./zcl-builtin/silabs/zcl.json

  # Load into postgres
  zclload load ./zcl.json --driver postgres --dsn postgres://localhost/zcl

  # Ignore whitespace-only edits when comparing files
  zclload load ./zcl.json --set load.ignore_formatting=true`,
	Args:              RequireManifestPath,
	RunE:              runLoad,
	ValidArgsFunction: completeMetadataFiles,
}

type loadFlagValues struct {
	plain bool
}

var loadFlags loadFlagValues

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().BoolVar(&loadFlags.plain, "plain", false,
		"Print log lines instead of the live progress display\n"+
			"(implied when not attached to a terminal or with --verbose)")
}

func runLoad(cmd *cobra.Command, args []string) error {
	path := args[0]
	verbose := globalFlags.verbose

	s, err := resolveSettings(globalFlags, os.Getenv)
	if err != nil {
		return err
	}
	console, err := logging.NewConsoleLogger(verbose)
	if err != nil {
		return err
	}
	defer console.Sync() //nolint:errcheck

	ctx, cancel := interruptContext(context.Background())
	defer cancel()

	st, err := openStore(ctx, s, console)
	if err != nil {
		return err
	}
	defer st.Close()

	if loadFlags.plain || verbose || !tui.IsInteractive() {
		result, err := newLoadService(st, console, s).LoadTopLevel(ctx, path)
		if err != nil {
			return err
		}
		printLoadResult(cmd.OutOrStdout(), result)
		return nil
	}

	recorder, logs := logging.NewObserved()
	runner := tui.StartProgress(os.Stderr, "Loading "+path, cancel)
	result, err := newLoadService(st, recorder, s, services.WithObserver(runner.Observer())).LoadTopLevel(ctx, path)
	if err != nil {
		runner.Finish("", err)
		replayWarnings(logs, console)
		return err
	}
	runner.Finish(fmt.Sprintf("Loaded %s: %d of %d files parsed", path, result.Parsed(), len(result.Files)), nil)
	replayWarnings(logs, console)
	printLoadResult(cmd.OutOrStdout(), result)
	return nil
}

func printLoadResult(w io.Writer, r *zclload.LoadResult) {
	fmt.Fprintf(w, "package_id=%d\n", r.PackageID)
	fmt.Fprintf(w, "session_id=%s\n", r.SessionID)
}
