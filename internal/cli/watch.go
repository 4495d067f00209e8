package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/vvka-141/zclload/internal/logging"
	"github.com/vvka-141/zclload/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <manifest>",
	Short: "Load a manifest and reload it whenever one of its files changes",
	Long: `Watch performs the same load as 'zclload load', then keeps running and
reloads whenever the manifest or one of the files it lists is written,
created, renamed or removed. Bursts of changes are debounced into one
reload. Unchanged files are still skipped by content hash, so a reload
only parses what was edited and the files that depend on it.

A failing reload is reported and the previous watch list is kept.
Stop with Ctrl+C.

Examples:
  zclload watch ./zcl.json
  zclload watch ./zcl.json --debounce 1s`,
	Args:              RequireManifestPath,
	RunE:              runWatch,
	ValidArgsFunction: completeMetadataFiles,
}

type watchFlagValues struct {
	debounce time.Duration
}

var watchFlags watchFlagValues

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchFlags.debounce, "debounce", watch.DefaultDebounce,
		"Quiet period after the last change before reloading")
}

func runWatch(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid manifest path %s: %w", args[0], err)
	}
	verbose := globalFlags.verbose

	s, err := resolveSettings(globalFlags, os.Getenv)
	if err != nil {
		return err
	}
	logger, err := logging.NewConsoleLogger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := interruptContext(context.Background())
	defer cancel()

	st, err := openStore(ctx, s, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := newLoadService(st, logger, s)
	out := cmd.OutOrStdout()
	return watch.New(logger, watchFlags.debounce).Run(ctx, func(ctx context.Context) ([]string, error) {
		result, err := svc.LoadTopLevel(ctx, path)
		if err != nil {
			return nil, err
		}
		printLoadResult(out, result)

		paths := []string{path}
		for _, f := range result.Files {
			paths = append(paths, f.Path)
		}
		return paths, nil
	})
}
