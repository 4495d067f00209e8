package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/vvka-141/zclload/internal/config"
	"github.com/vvka-141/zclload/pkg/zclload"
)

const typesXML = `<?xml version="1.0"?>
<zap>
  <atomic>
    <type id="0x10" name="boolean" size="1" discrete="true"/>
    <type id="0x20" name="int8u" size="1" analog="true"/>
    <type id="0x21" name="int16u" size="2" analog="true"/>
  </atomic>
</zap>`

const generalXML = `<?xml version="1.0"?>
<configurator>
  <cluster>
    <name>On/Off</name>
    <domain>General</domain>
    <code>0x0006</code>
    <define>ON_OFF_CLUSTER</define>
    <attribute side="server" code="0x0000" define="ON_OFF" type="BOOLEAN">OnOff</attribute>
    <command source="client" code="0x00" name="Off">
      <description>Turn off.</description>
    </command>
  </cluster>
</configurator>`

const customXML = `<?xml version="1.0"?>
<configurator>
  <clusterExtension code="0x0006">
    <attribute side="server" code="0x4100" define="EXTRA" type="int8u" manufacturerCode="0x1002">Extra</attribute>
  </clusterExtension>
</configurator>`

const manifestJSON = `{
  "version": "1",
  "xmlRoot": ".",
  "xmlFile": ["types.xml", "general.xml"]
}`

var sessionLine = regexp.MustCompile(`session_id=(\S+)`)

// resetFlags clears every command's flag values and the store environment.
func resetFlags(t *testing.T) {
	t.Helper()
	globalFlags = globalFlagValues{}
	loadFlags = loadFlagValues{plain: true}
	addFlags = addFlagValues{}
	packagesFlags = packagesFlagValues{}
	for _, env := range []string{config.EnvDSN, config.EnvDriver, config.EnvDatabaseURL} {
		t.Setenv(env, "")
	}
}

// writeProject writes a manifest with two files and returns its path.
func writeProject(t *testing.T, dir string) string {
	t.Helper()
	files := map[string]string{
		"types.xml":   typesXML,
		"general.xml": generalXML,
		"custom.xml":  customXML,
		"zcl.json":    manifestJSON,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
	}
	return filepath.Join(dir, "zcl.json")
}

func TestLoadCmd_ArgsValidation(t *testing.T) {
	err := loadCmd.Args(loadCmd, []string{})
	if err == nil {
		t.Fatal("Expected error for missing args")
	}
	if code := zclload.ExitCodeForError(err); code != zclload.ExitUsageError {
		t.Errorf("Expected exit code %d (usage), got %d for: %v", zclload.ExitUsageError, code, err)
	}
}

func TestLoadCmd_ArgsValidation_TooMany(t *testing.T) {
	err := loadCmd.Args(loadCmd, []string{"a", "b"})
	if err == nil {
		t.Fatal("Expected error for too many args")
	}
	if code := zclload.ExitCodeForError(err); code != zclload.ExitUsageError {
		t.Errorf("Expected exit code %d (usage), got %d", zclload.ExitUsageError, code)
	}
}

func TestAddCmd_ArgsValidation(t *testing.T) {
	if err := addCmd.Args(addCmd, []string{}); err == nil {
		t.Fatal("Expected error for missing args")
	}
}

func TestLoadAddPackages(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	manifest := writeProject(t, dir)
	globalFlags.dsn = filepath.Join(dir, "zcl.db")

	var out bytes.Buffer
	loadCmd.SetOut(&out)
	if err := runLoad(loadCmd, []string{manifest}); err != nil {
		t.Fatalf("runLoad() error = %v", err)
	}
	if !strings.Contains(out.String(), "package_id=") {
		t.Errorf("expected package id in output, got %q", out.String())
	}
	m := sessionLine.FindStringSubmatch(out.String())
	if m == nil {
		t.Fatalf("expected session id in output, got %q", out.String())
	}
	session := m[1]

	out.Reset()
	addFlags.session = session
	addFlags.validate = true
	addCmd.SetOut(&out)
	if err := runAdd(addCmd, []string{filepath.Join(dir, "custom.xml")}); err != nil {
		t.Fatalf("runAdd() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "package_id=") {
		t.Errorf("expected package id, got %q", out.String())
	}

	out.Reset()
	packagesFlags.session = session
	packagesCmd.SetOut(&out)
	if err := runPackages(packagesCmd, nil); err != nil {
		t.Fatalf("runPackages() error = %v", err)
	}
	for _, want := range []string{"zcl.json", "general.xml", "custom.xml", string(zclload.KindXMLStandalone)} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("packages output missing %q:\n%s", want, out.String())
		}
	}
}

func TestAdd_RequiresScope(t *testing.T) {
	resetFlags(t)

	err := runAdd(addCmd, []string{"custom.xml"})
	if !errors.Is(err, zclload.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestAdd_UnknownSession(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	writeProject(t, dir)
	globalFlags.dsn = filepath.Join(dir, "zcl.db")
	addFlags.session = "no-such-session"

	err := runAdd(addCmd, []string{filepath.Join(dir, "custom.xml")})
	if code := zclload.ExitCodeForError(err); code != zclload.ExitSessionError {
		t.Errorf("Expected exit code %d, got %d for: %v", zclload.ExitSessionError, code, err)
	}
}

func TestPackages_UnknownSession(t *testing.T) {
	resetFlags(t)
	globalFlags.dsn = filepath.Join(t.TempDir(), "zcl.db")
	packagesFlags.session = "no-such-session"

	err := runPackages(packagesCmd, nil)
	if !errors.Is(err, zclload.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestLoad_ParseError(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	manifest := writeProject(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "general.xml"), []byte("<configurator><cluster>"), 0644); err != nil {
		t.Fatal(err)
	}
	globalFlags.dsn = filepath.Join(dir, "zcl.db")

	err := runLoad(loadCmd, []string{manifest})
	if code := zclload.ExitCodeForError(err); code != zclload.ExitParseError {
		t.Errorf("Expected exit code %d, got %d for: %v", zclload.ExitParseError, code, err)
	}
}

func TestSchema(t *testing.T) {
	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{"", "AUTOINCREMENT", false},
		{zclload.DriverSQLite, "AUTOINCREMENT", false},
		{zclload.DriverPostgres, "BIGSERIAL", false},
		{"mysql", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			resetFlags(t)
			globalFlags.driver = tt.driver

			var out bytes.Buffer
			schemaCmd.SetOut(&out)
			err := runSchema(schemaCmd, nil)
			if tt.wantErr {
				if !errors.Is(err, zclload.ErrInvalidConfig) {
					t.Fatalf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("runSchema() error = %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("schema for %q missing %q", tt.driver, tt.want)
			}
		})
	}
}
