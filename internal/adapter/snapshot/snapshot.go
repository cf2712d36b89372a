package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/relware/sitegen/internal/common"
	"github.com/relware/sitegen/internal/entity"
	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
)

// Loader deserializes the three catalog source documents: two artifact
// directory snapshots and the platform catalog. Any failure here aborts
// the whole generation run, nothing partial is ever returned.
type Loader struct {
	fs  afero.Fs
	log *slog.Logger
}

func NewLoader(fs afero.Fs, log *slog.Logger) *Loader {
	return &Loader{
		fs:  fs,
		log: log.With(slog.String("item", "SnapshotLoader")),
	}
}

// LoadTree reads one directory snapshot into its node tree.
func (l *Loader) LoadTree(path string) (*entity.FileNode, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrSnapshotReadError, path, err)
	}

	var root entity.FileNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrSnapshotParseError, path, err)
	}

	l.log.Debug("Loaded snapshot", slog.String("path", path), slog.Int("entries", len(root.Children)))

	return &root, nil
}

// LoadCatalog reads the platform catalog. The file is hand-maintained,
// so it is run through jsonc first to tolerate comments and trailing
// commas.
func (l *Loader) LoadCatalog(path string) ([]*entity.PlatformInfo, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrCatalogReadError, path, err)
	}

	var platforms []*entity.PlatformInfo
	if err := json.Unmarshal(jsonc.ToJSON(data), &platforms); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrCatalogParseError, path, err)
	}

	l.log.Debug("Loaded platform catalog", slog.String("path", path), slog.Int("platforms", len(platforms)))

	return platforms, nil
}
