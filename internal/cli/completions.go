package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/vvka-141/zclload/internal/config"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// drivers contains the store drivers for shell completion.
var drivers = []string{zclload.DriverSQLite, zclload.DriverPostgres}

// metadataExtensions are the file extensions offered for metadata arguments.
var metadataExtensions = []string{"json", "properties", "xml"}

// completeDrivers provides shell completion for the --driver flag.
func completeDrivers(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return matchPrefix(drivers, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeOverrideKeys provides shell completion for --set keys.
func completeOverrideKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if strings.Contains(toComplete, "=") {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	keys := config.OverrideKeys()
	for i, k := range keys {
		keys[i] = k + "="
	}
	return matchPrefix(keys, toComplete), cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// completeMetadataFiles provides shell completion for metadata file paths.
func completeMetadataFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	// Let the shell complete paths filtered by extension
	return metadataExtensions, cobra.ShellCompDirectiveFilterFileExt
}

func matchPrefix(values []string, prefix string) []string {
	var matches []string
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			matches = append(matches, v)
		}
	}
	return matches
}
