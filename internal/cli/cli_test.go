package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkcore/internal/blob"
	"parkcore/internal/core"
	"parkcore/pkg/domain"
)

func run(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func useSQLite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PARK_LOG_FORMAT", "json")
	t.Setenv("PARK_STORAGE_DRIVER", "sqlite")
	t.Setenv("PARK_STORAGE_SQLITE_PATH", filepath.Join(dir, "park.db"))
	t.Setenv("PARK_BLOB_DRIVER", "fs")
	t.Setenv("PARK_BLOB_FS_ROOT", filepath.Join(dir, "blobs"))
	return dir
}

func TestSpeciesCommand(t *testing.T) {
	out, err := run(t, context.Background(), "species")
	require.NoError(t, err)
	assert.Contains(t, out, "SPECIES")
	assert.Contains(t, out, "T-Rex")
	assert.Contains(t, out, "-10")
}

func TestCompatCommand(t *testing.T) {
	out, err := run(t, context.Background(), "compat", "T-Rex", "Velociraptor")
	require.NoError(t, err)
	assert.Equal(t, "T-Rex + Velociraptor: incompatible\n", out)

	out, err = run(t, context.Background(), "compat", "Velociraptor", "Triceratops")
	require.NoError(t, err)
	assert.Contains(t, out, ": compatible")

	_, err = run(t, context.Background(), "compat", "Unknownosaurus", "Triceratops", "--mode", "strict")
	require.ErrorIs(t, err, domain.ErrUnknownSpecies)

	_, err = run(t, context.Background(), "compat", "T-Rex")
	require.Error(t, err)
}

func TestInvalidConfigurationFails(t *testing.T) {
	t.Setenv("PARK_COMPAT_MODE", "lenient")
	_, err := run(t, context.Background(), "species")
	require.ErrorContains(t, err, "COMPAT_MODE")

	t.Setenv("PARK_COMPAT_MODE", "heuristic")
	_, err = run(t, context.Background(), "--storage", "mongo", "status")
	require.ErrorContains(t, err, "STORAGE_DRIVER")
}

func TestSeedValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("zones:\n  - name: Valley\n    open: true\n    dinosaurs:\n      - {name: Trike, species: Triceratops}\n"), 0o600))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("zones:\n  - name: Pen\n    open: true\n    dinosaurs:\n      - {name: Blue, species: Velociraptor}\n      - {name: Rexy, species: T-Rex}\n"), 0o600))

	out, err := run(t, context.Background(), "seed", "validate", good)
	require.NoError(t, err)
	var report core.SeedReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, core.SeedReport{ZonesCreated: 1, DinosaursAdmitted: 1}, report)

	_, err = run(t, context.Background(), "seed", "validate", bad)
	require.ErrorIs(t, err, domain.ErrCompatibilityViolation)
}

func TestSeedApplyAndStatusOnPersistentStore(t *testing.T) {
	useSQLite(t)
	_, err := run(t, context.Background(), "seed", "apply")
	require.Error(t, err)

	out, err := run(t, context.Background(), "seed", "apply", "--demo")
	require.NoError(t, err)
	var report core.SeedReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 4, report.ZonesCreated)

	out, err = run(t, context.Background(), "status")
	require.NoError(t, err)
	var status domain.ParkStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, 4, status.Zones)
	assert.Equal(t, 3, status.OpenZones)
	assert.Equal(t, 13, status.Dinosaurs)
}

func TestSnapshotCommands(t *testing.T) {
	dir := useSQLite(t)
	_, err := run(t, context.Background(), "seed", "apply", "--demo")
	require.NoError(t, err)

	out, err := run(t, context.Background(), "snapshot", "export", "--key", "snapshots/first.json")
	require.NoError(t, err)
	var info blob.Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "snapshots/first.json", info.Key)

	out, err = run(t, context.Background(), "snapshot", "list")
	require.NoError(t, err)
	var infos []blob.Info
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)

	// wipe the store by pointing at a fresh database, then restore into it
	t.Setenv("PARK_STORAGE_SQLITE_PATH", filepath.Join(dir, "restored.db"))
	out, err = run(t, context.Background(), "snapshot", "import")
	require.NoError(t, err)
	var counts map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &counts))
	assert.Equal(t, map[string]int{"zones": 4, "dinosaurs": 13}, counts)

	out, err = run(t, context.Background(), "status")
	require.NoError(t, err)
	var status domain.ParkStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, 13, status.Dinosaurs)
}

func TestServeStopsOnContextCancel(t *testing.T) {
	t.Setenv("PARK_LOG_FORMAT", "json")
	t.Setenv("PARK_SEED_DEMO", "true")
	t.Setenv("PARK_STATUS_INTERVAL", "20ms")
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, err := run(t, ctx, "serve", "--addr", "127.0.0.1:0")
	require.NoError(t, err)
}
