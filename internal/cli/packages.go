package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vvka-141/zclload/internal/logging"
	"github.com/vvka-141/zclload/internal/tui"
	"github.com/vvka-141/zclload/pkg/zclload"
)

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List registered packages",
	Long: `Packages lists every package in the store: manifests, metadata files
and individually added files, with their parent package and version.

With --session only the packages attached to that session are shown.`,
	Args: cobra.NoArgs,
	RunE: runPackages,
}

type packagesFlagValues struct {
	session string
}

var packagesFlags packagesFlagValues

func init() {
	rootCmd.AddCommand(packagesCmd)

	packagesCmd.Flags().StringVarP(&packagesFlags.session, "session", "s", "",
		"Only list the packages attached to this session")
}

func runPackages(cmd *cobra.Command, args []string) error {
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
	pkgs, err := svc.Packages(ctx)
	if err != nil {
		return err
	}
	if packagesFlags.session != "" {
		ids, err := svc.SessionPackages(ctx, packagesFlags.session)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return fmt.Errorf("session %s: %w", packagesFlags.session, zclload.ErrSessionNotFound)
		}
		pkgs = filterPackages(pkgs, ids)
	}

	fmt.Fprintln(cmd.OutOrStdout(), tui.PackageTable(pkgs))
	return nil
}

func filterPackages(pkgs []zclload.PackageInfo, ids []int64) []zclload.PackageInfo {
	keep := make(map[int64]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	var out []zclload.PackageInfo
	for _, p := range pkgs {
		if keep[p.ID] {
			out = append(out, p)
		}
	}
	return out
}
