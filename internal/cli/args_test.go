package cli

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestRequireManifestPath(t *testing.T) {
	cmd := &cobra.Command{
		Use: "load <manifest>",
	}

	t.Run("returns error when no args", func(t *testing.T) {
		err := RequireManifestPath(cmd, []string{})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "missing required argument: <manifest>") {
			t.Errorf("expected error to contain 'missing required argument: <manifest>', got: %s", err.Error())
		}
		if !strings.Contains(err.Error(), "Example:") {
			t.Errorf("expected error to contain 'Example:', got: %s", err.Error())
		}
	})

	t.Run("returns nil when arg provided", func(t *testing.T) {
		if err := RequireManifestPath(cmd, []string{"./zcl.json"}); err != nil {
			t.Errorf("expected nil, got: %v", err)
		}
	})

	t.Run("returns error when too many args", func(t *testing.T) {
		err := RequireManifestPath(cmd, []string{"a", "b"})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "accepts 1 arg") {
			t.Errorf("expected error to contain 'accepts 1 arg', got: %s", err.Error())
		}
	})
}

func TestRequireMetadataFile(t *testing.T) {
	cmd := &cobra.Command{
		Use: "add <file>",
	}

	t.Run("returns error when no args", func(t *testing.T) {
		err := RequireMetadataFile(cmd, []string{})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "missing required argument: <file>") {
			t.Errorf("expected error to contain 'missing required argument: <file>', got: %s", err.Error())
		}
		if !strings.Contains(err.Error(), "zclload load") {
			t.Errorf("expected error to mention 'zclload load', got: %s", err.Error())
		}
	})

	t.Run("returns nil when arg provided", func(t *testing.T) {
		if err := RequireMetadataFile(cmd, []string{"custom.xml"}); err != nil {
			t.Errorf("expected nil, got: %v", err)
		}
	})
}
