package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireManifestPath validates that exactly one manifest argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireManifestPath(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <manifest>

Usage: %s

Example:
  %s ./zcl-builtin/silabs/zcl.json`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}

// RequireMetadataFile validates that exactly one metadata file argument is provided.
func RequireMetadataFile(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <file>

Usage: %s

Example:
  %s ./custom-cluster.xml --session <session_id>

Use 'zclload load' to create a session.`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}
