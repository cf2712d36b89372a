package meta

import (
	"io"
	"log/slog"
	"testing"

	"github.com/relware/sitegen/internal/adapter/snapshot"
	"github.com/relware/sitegen/internal/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testCatalog = `[
	{
		"title": "Android",
		"platform_badge": "android.svg",
		"platform_key": "android",
		"downloads": [
			{"name": "Download APK", "filename": "a.apk"},
			{"name": "Gold APK", "filename": "a_gold.apk", "gold": true}
		]
	},
	{
		"title": "Windows",
		"platform_badge": "windows.svg",
		"platform_key": "windows",
		"downloads": [
			{"name": "Installer", "filename": "b.exe"},
			{"name": "Store", "url": "https://store.example.com"}
		]
	}
]`

func dirSnapshot(dirs map[string][]string) string {
	out := `{"name": "files", "is_dir": true, "children": [`
	first := true
	for dir, files := range dirs {
		if !first {
			out += ","
		}
		first = false
		out += `{"name": "` + dir + `", "is_dir": true, "children": [`
		for i, f := range files {
			if i > 0 {
				out += ","
			}
			out += `{"name": "` + f + `", "is_dir": false}`
		}
		out += `]}`
	}

	return out + `]}`
}

func newTestBuilder(t *testing.T, downloads, gold string) *Builder {
	t.Helper()

	return newTestBuilderWithCatalog(t, downloads, gold, testCatalog)
}

func newTestBuilderWithCatalog(t *testing.T, downloads, gold, catalog string) *Builder {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/downloads.json", []byte(downloads), 0644))
	require.NoError(t, afero.WriteFile(fs, "src/downloads_gold.json", []byte(gold), 0644))
	require.NoError(t, afero.WriteFile(fs, "src/platform.json", []byte(catalog), 0644))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.MetaConfig{
		DownloadsFile:     "src/downloads.json",
		GoldDownloadsFile: "src/downloads_gold.json",
		PlatformsFile:     "src/platform.json",
		URLBase:           "https://dl.example.com",
	}

	return NewBuilder(snapshot.NewLoader(fs, log), cfg, log)
}

func TestBuildResolvesNewestVersion(t *testing.T) {
	builder := newTestBuilder(t,
		dirSnapshot(map[string][]string{
			"1_9_0":  {"a.apk", "b.exe"},
			"1_10_0": {"a.apk"},
		}),
		dirSnapshot(map[string][]string{
			"1_9_0": {"a_gold.apk"},
		}),
	)

	meta, err := builder.Build(true)
	require.NoError(t, err)

	require.Equal(t, "1.10.0", meta.AppVersion)
	require.True(t, meta.Prod)

	// a.apk exists in both versions; the newest one wins the catalog link.
	android := meta.Platforms[0]
	require.Equal(t, "https://dl.example.com/files/1_10_0/a.apk", android.Downloads[0].DownloadURL)

	// Gold files go through the gold endpoint, with dots turned back into
	// underscores for the path segment.
	require.Equal(t, "https://dl.example.com/api/goldfiles/1_9_0/a_gold.apk", android.Downloads[1].DownloadURL)

	// Entries without a filename stay unresolved.
	require.Empty(t, meta.Platforms[1].Downloads[1].DownloadURL)
}

func TestBuildHistoryTable(t *testing.T) {
	builder := newTestBuilder(t,
		dirSnapshot(map[string][]string{
			"1_9_0":  {"a.apk", "b.exe"},
			"1_10_0": {"a.apk"},
		}),
		dirSnapshot(map[string][]string{
			"1_9_0": {"a_gold.apk"},
		}),
	)

	meta, err := builder.Build(false)
	require.NoError(t, err)

	require.Len(t, meta.VersionDownloads, 2)
	require.Equal(t, "1.10.0", meta.VersionDownloads[0].Version)
	require.Equal(t, "1.9.0", meta.VersionDownloads[1].Version)

	// 1.10.0 only carries a.apk, matched by Android.
	newest := meta.VersionDownloads[0]
	require.Len(t, newest.Downloads, 1)
	require.Equal(t, "a.apk", newest.Downloads[0].Filename)
	require.Equal(t, "android.svg", newest.Downloads[0].Icon)

	// 1.9.0 matches a.apk and a_gold.apk for Android and b.exe for Windows.
	prev := meta.VersionDownloads[1]
	require.Len(t, prev.Downloads, 3)
	require.Equal(t, "a.apk", prev.Downloads[0].Filename)
	require.Equal(t, "android.svg", prev.Downloads[0].Icon)
	require.Equal(t, "a_gold.apk", prev.Downloads[1].Filename)
	require.Empty(t, prev.Downloads[1].Icon, "only the first match per platform carries the badge")
	require.Equal(t, "b.exe", prev.Downloads[2].Filename)
	require.Equal(t, "windows.svg", prev.Downloads[2].Icon)

	// The history rows are clones; the catalog keeps its own icons.
	require.Empty(t, meta.Platforms[0].Downloads[0].Icon)

	for _, row := range meta.VersionDownloads {
		require.NotEmpty(t, row.Downloads)
	}
}

func TestBuildHistoryTableEdgeCases(t *testing.T) {
	catalog := `[
		{
			"title": "Android",
			"platform_badge": "android.svg",
			"platform_key": "android",
			"downloads": [
				{"name": "First", "filename": "a.apk"},
				{"name": "Second", "filename": "a.apk"}
			]
		}
	]`

	builder := newTestBuilderWithCatalog(t,
		dirSnapshot(map[string][]string{
			"1_9_0": {"a.apk"},
			"1_8_0": {"unmatched.zip"},
		}),
		`{"name": "files", "is_dir": true}`,
		catalog,
	)

	meta, err := builder.Build(false)
	require.NoError(t, err)

	// 1.8.0 has no catalog match and must not produce an empty row.
	require.Len(t, meta.VersionDownloads, 1)

	// Two catalog entries share a.apk; catalog order decides, the first one
	// is cloned exactly once and carries the badge.
	row := meta.VersionDownloads[0]
	require.Equal(t, "1.9.0", row.Version)
	require.Len(t, row.Downloads, 1)
	require.Equal(t, "First", row.Downloads[0].Name)
	require.Equal(t, "android.svg", row.Downloads[0].Icon)
}

func TestBuildNoVersions(t *testing.T) {
	empty := `{"name": "files", "is_dir": true, "children": [
		{"name": "stray.txt", "is_dir": false},
		{"name": "empty_dir", "is_dir": true, "children": []},
		{"name": "nounderscore", "is_dir": true, "children": [{"name": "x.zip", "is_dir": false}]}
	]}`

	builder := newTestBuilder(t, empty, `{"name": "files", "is_dir": true}`)

	meta, err := builder.Build(false)
	require.NoError(t, err)
	require.Equal(t, AppVersionIndeterminate, meta.AppVersion)
	require.Empty(t, meta.VersionDownloads)
}

func TestBuildOrphanGoldDropped(t *testing.T) {
	builder := newTestBuilder(t,
		dirSnapshot(map[string][]string{"1_9_0": {"a.apk"}}),
		dirSnapshot(map[string][]string{"2_0_0": {"a_gold.apk"}}),
	)

	meta, err := builder.Build(false)
	require.NoError(t, err)

	// The orphan gold files never surface anywhere.
	require.Empty(t, meta.Platforms[0].Downloads[1].DownloadURL)
	for _, row := range meta.VersionDownloads {
		for _, d := range row.Downloads {
			require.NotEqual(t, "a_gold.apk", d.Filename)
		}
	}
}

func TestBuildNaturalVersionOrder(t *testing.T) {
	builder := newTestBuilder(t,
		dirSnapshot(map[string][]string{
			"1_2_0":  {"a.apk"},
			"1_10_0": {"a.apk"},
			"1_9_0":  {"a.apk"},
		}),
		`{"name": "files", "is_dir": true}`,
	)

	meta, err := builder.Build(false)
	require.NoError(t, err)
	require.Equal(t, "1.10.0", meta.AppVersion)

	var versions []string
	for _, row := range meta.VersionDownloads {
		versions = append(versions, row.Version)
	}
	require.Equal(t, []string{"1.10.0", "1.9.0", "1.2.0"}, versions)
}

func TestBuildFailsFast(t *testing.T) {
	fs := afero.NewMemMapFs()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.MetaConfig{
		DownloadsFile:     "src/downloads.json",
		GoldDownloadsFile: "src/downloads_gold.json",
		PlatformsFile:     "src/platform.json",
	}

	builder := NewBuilder(snapshot.NewLoader(fs, log), cfg, log)

	meta, err := builder.Build(false)
	require.Error(t, err)
	require.Nil(t, meta)
}
