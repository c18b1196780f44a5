package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/blueprint/pkg/cache"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/repository/memory"
)

const importDoc = `{
  "projectVersion": {"name": "v1", "_lastUpdateUserEmail_": "ops@example.com"},
  "zones": [{"id": 1, "name": "Building"}, {"id": 2, "name": "Floor"}],
  "zone_zone": [[1, 2]],
  "devices": [
    {"id": 7, "name": "Gateway", "_zoneId_": 2, "_protocolAdapterName_": "zwave", "_protocolAdapterVersion_": "2.0"},
    {"id": 8, "name": "Sensor", "_deviceTypes_": [{"_deviceTypeName_": "Probe", "_deviceCategoryName_": "HVAC"}]}
  ],
  "device_device": [[7, 8]]
}`

func newTestRunner(t *testing.T) (*Runner, *memory.Store, cache.Cache) {
	t.Helper()
	store := memory.New()
	store.AddUser(&model.User{Email: "ops@example.com"})
	store.AddProtocolAdapter(&model.ProtocolAdapter{Name: "zwave", Version: "2.0"})

	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	logger := log.New(&strings.Builder{})
	return NewRunner(store, c, nil, logger), store, c
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(memory.New(), nil, nil, nil)
	assert.IsType(t, &cache.NullCache{}, r.Cache)
	assert.NotNil(t, r.Keyer)
	assert.NotNil(t, r.Logger)
	assert.NoError(t, r.Close())
}

func TestImport(t *testing.T) {
	r, store, _ := newTestRunner(t)
	ctx := context.Background()

	res, err := r.Import(ctx, []byte(importDoc), ImportOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Positive(t, res.VersionID)
	assert.Equal(t, []string{`DeviceType not found [deviceTypeName="Probe", categoryName="HVAC"]`}, res.Errors)
	assert.Equal(t, Stats{Zones: 2, Devices: 2, Duration: res.Stats.Duration}, res.Stats)

	pv, err := store.LoadProjectVersion(ctx, res.VersionID)
	require.NoError(t, err)
	require.NotNil(t, pv)
	assert.Equal(t, "v1", pv.Name)
	require.Len(t, pv.Devices, 2)
	assert.Equal(t, "Floor", pv.Devices[0].Zone.Name)
	assert.Equal(t, "2.0", pv.Devices[0].ProtocolAdapter.Version)
}

func TestImportDryRun(t *testing.T) {
	r, store, _ := newTestRunner(t)
	ctx := context.Background()

	res, err := r.Import(ctx, []byte(importDoc), ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.Zero(t, res.VersionID)
	assert.NotNil(t, res.ProjectVersion)

	pv, err := store.LoadProjectVersion(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, pv)
}

func TestImportFatal(t *testing.T) {
	r, _, _ := newTestRunner(t)
	ctx := context.Background()

	tests := []struct {
		name string
		data string
		opts ImportOptions
		code errors.Code
	}{
		{"malformed", `{"projectVersion":`, ImportOptions{}, errors.ErrCodeGeneric},
		{"no project version", `{"zones": []}`, ImportOptions{}, errors.ErrCodeGeneric},
		{"too large", importDoc, ImportOptions{MaxBytes: 16}, errors.ErrCodeTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Import(ctx, []byte(tt.data), tt.opts)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestImportNoSizeLimit(t *testing.T) {
	r, _, _ := newTestRunner(t)
	_, err := r.Import(context.Background(), []byte(importDoc), ImportOptions{MaxBytes: -1, DryRun: true})
	assert.NoError(t, err)
}

func TestExportCaching(t *testing.T) {
	r, _, _ := newTestRunner(t)
	ctx := context.Background()

	res, err := r.Import(ctx, []byte(importDoc), ImportOptions{})
	require.NoError(t, err)

	first, hit, err := r.Export(ctx, res.VersionID, ExportOptions{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Contains(t, string(first), `"name": "Gateway"`)

	second, hit, err := r.Export(ctx, res.VersionID, ExportOptions{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)

	_, hit, err = r.Export(ctx, res.VersionID, ExportOptions{Refresh: true})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestImportInvalidatesExport(t *testing.T) {
	r, _, c := newTestRunner(t)
	ctx := context.Background()

	// the user and the adapter hold IDs 1 and 2
	key := r.Keyer.ExportKey(3)
	require.NoError(t, c.Set(ctx, key, []byte("stale"), 0))

	res, err := r.Import(ctx, []byte(importDoc), ImportOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, res.VersionID)

	data, hit, err := r.Export(ctx, 3, ExportOptions{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotEqual(t, "stale", string(data))
}

func TestExportNotFound(t *testing.T) {
	r, _, _ := newTestRunner(t)
	_, _, err := r.Export(context.Background(), 404, ExportOptions{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.GetCode(err))
}

func TestGraph(t *testing.T) {
	r, _, _ := newTestRunner(t)
	ctx := context.Background()

	dot, hit, err := r.Graph(ctx, []byte(importDoc), GraphOptions{Format: FormatDOT, References: true})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Contains(t, string(dot), `"d7" -> "d8";`)
	assert.Contains(t, string(dot), `"d7" -> "z2" [style=dashed`)

	again, hit, err := r.Graph(ctx, []byte(importDoc), GraphOptions{Format: FormatDOT, References: true})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, dot, again)

	_, hit, err = r.Graph(ctx, []byte(importDoc), GraphOptions{Format: FormatDOT})
	require.NoError(t, err)
	assert.False(t, hit, "different options use a different key")
}

func TestGraphErrors(t *testing.T) {
	r, _, _ := newTestRunner(t)
	ctx := context.Background()

	_, _, err := r.Graph(ctx, []byte(importDoc), GraphOptions{Format: "png"})
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))

	_, _, err = r.Graph(ctx, []byte(importDoc), GraphOptions{Kinds: []string{"users"}})
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))

	_, _, err = r.Graph(ctx, []byte("[]"), GraphOptions{Format: FormatDOT})
	assert.Equal(t, errors.ErrCodeGeneric, errors.GetCode(err))
}

func TestGraphOptionsDefaults(t *testing.T) {
	opts := GraphOptions{Kinds: []string{"zones", "devices", "zones"}}
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, FormatSVG, opts.Format)
	assert.Equal(t, []string{"devices", "zones"}, opts.Kinds)
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"dot", false},
		{"png", true},
		{"SVG", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}
