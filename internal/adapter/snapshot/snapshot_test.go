package snapshot

import (
	"io"
	"log/slog"
	"testing"

	"github.com/relware/sitegen/internal/common"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T, files map[string]string) *Loader {
	t.Helper()

	fs := afero.NewMemMapFs()
	for path, content := range files {
		err := afero.WriteFile(fs, path, []byte(content), 0644)
		require.NoError(t, err)
	}

	return NewLoader(fs, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoadTree(t *testing.T) {
	loader := newTestLoader(t, map[string]string{
		"src/downloads.json": `{
			"name": "files", "is_dir": true,
			"children": [
				{"name": "1_10_0", "is_dir": true, "children": [
					{"name": "app.apk", "is_dir": false}
				]},
				{"name": "README.txt", "is_dir": false}
			]
		}`,
	})

	root, err := loader.LoadTree("src/downloads.json")
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	require.Equal(t, "1_10_0", root.Children[0].Name)
	require.True(t, root.Children[0].IsDir)
	require.Equal(t, "app.apk", root.Children[0].Children[0].Name)
}

func TestLoadTreeMissingFile(t *testing.T) {
	loader := newTestLoader(t, nil)

	_, err := loader.LoadTree("src/downloads.json")
	require.ErrorIs(t, err, common.ErrSnapshotReadError)
}

func TestLoadTreeMalformed(t *testing.T) {
	loader := newTestLoader(t, map[string]string{
		"src/downloads.json": `{"name": "files", "children": [`,
	})

	_, err := loader.LoadTree("src/downloads.json")
	require.ErrorIs(t, err, common.ErrSnapshotParseError)
}

func TestLoadCatalog(t *testing.T) {
	loader := newTestLoader(t, map[string]string{
		// Comments and trailing commas are allowed, the catalog is edited by hand.
		"src/platform.json": `[
			{
				"title": "Android",
				"platform_badge": "android.svg",
				"platform_key": "android",
				"downloads": [
					// The store build has no direct file.
					{"name": "Google Play", "url": "https://play.example.com"},
					{"name": "APK", "filename": "app.apk"},
				]
			},
		]`,
	})

	platforms, err := loader.LoadCatalog("src/platform.json")
	require.NoError(t, err)
	require.Len(t, platforms, 1)
	require.Equal(t, "Android", platforms[0].Title)
	require.Len(t, platforms[0].Downloads, 2)
	require.Equal(t, "app.apk", platforms[0].Downloads[1].Filename)
	require.False(t, platforms[0].Downloads[1].Gold)
}

func TestLoadCatalogErrors(t *testing.T) {
	loader := newTestLoader(t, map[string]string{
		"src/bad.json": `[{"title": 42}]`,
	})

	_, err := loader.LoadCatalog("src/platform.json")
	require.ErrorIs(t, err, common.ErrCatalogReadError)

	_, err = loader.LoadCatalog("src/bad.json")
	require.ErrorIs(t, err, common.ErrCatalogParseError)
}
