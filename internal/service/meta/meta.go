package meta

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/relware/sitegen/internal/config"
	"github.com/relware/sitegen/internal/entity"
)

const (
	serviceName = "meta"

	// AppVersionIndeterminate is published when no version directory was
	// found in either snapshot.
	AppVersionIndeterminate = "indeterminate"
)

// SnapshotLoader provides the three source documents of the catalog.
type SnapshotLoader interface {
	LoadTree(path string) (*entity.FileNode, error)
	LoadCatalog(path string) ([]*entity.PlatformInfo, error)
}

// Builder turns the raw artifact snapshots and the platform catalog into
// the GlobalMeta data product: a URL-resolved catalog plus the
// previous-releases table. One-shot, synchronous, fail-fast.
type Builder struct {
	loader SnapshotLoader
	cfg    *config.MetaConfig
	log    *slog.Logger
}

func NewBuilder(loader SnapshotLoader, cfg *config.MetaConfig, log *slog.Logger) *Builder {
	return &Builder{
		loader: loader,
		cfg:    cfg,
		log:    log.With(slog.String("service", serviceName)),
	}
}

func (b *Builder) Build(production bool) (*entity.GlobalMeta, error) {
	files, err := b.loader.LoadTree(b.cfg.DownloadsFile)
	if err != nil {
		return nil, fmt.Errorf("cannot load downloads snapshot: %w", err)
	}

	goldFiles, err := b.loader.LoadTree(b.cfg.GoldDownloadsFile)
	if err != nil {
		return nil, fmt.Errorf("cannot load gold downloads snapshot: %w", err)
	}

	platforms, err := b.loader.LoadCatalog(b.cfg.PlatformsFile)
	if err != nil {
		return nil, fmt.Errorf("cannot load platform catalog: %w", err)
	}

	buckets := b.mergeBuckets(extractBuckets(files), extractBuckets(goldFiles))
	fileVersions := pivot(buckets)

	b.resolveURLs(platforms, fileVersions)

	meta := &entity.GlobalMeta{
		AppVersion:       AppVersionIndeterminate,
		Platforms:        platforms,
		VersionDownloads: boil(buckets, platforms),
		Prod:             production,
	}
	if len(buckets) > 0 {
		meta.AppVersion = buckets[0].Version
	}

	b.log.Info("Built global meta",
		slog.String("app_version", meta.AppVersion),
		slog.Int("versions", len(buckets)),
		slog.Int("platforms", len(platforms)))

	return meta, nil
}

// extractBuckets turns the top level of a snapshot into version buckets.
// A child qualifies when it has at least one child of its own and its name
// contains an underscore; anything else is a stray file, not a release
// directory. Listing order is preserved, the sort happens later.
func extractBuckets(root *entity.FileNode) []*entity.VersionBucket {
	var buckets []*entity.VersionBucket
	for _, child := range root.Children {
		if len(child.Children) == 0 || !strings.Contains(child.Name, "_") {
			continue
		}

		files := make([]string, 0, len(child.Children))
		for _, sub := range child.Children {
			files = append(files, sub.Name)
		}

		buckets = append(buckets, &entity.VersionBucket{
			Version: strings.ReplaceAll(child.Name, "_", "."),
			Files:   files,
		})
	}

	return buckets
}

// mergeBuckets sorts the standard buckets newest-first and appends gold
// files into the bucket with the exactly matching version string. A gold
// version with no standard counterpart is dropped; the original pipeline
// did that silently, here it at least leaves a trace in the log.
func (b *Builder) mergeBuckets(std, gold []*entity.VersionBucket) []*entity.VersionBucket {
	sort.SliceStable(std, func(i, j int) bool {
		return natCompare(std[i].Version, std[j].Version) > 0
	})

	merged := make(map[string]struct{})
	for _, bucket := range std {
		for _, g := range gold {
			if g.Version == bucket.Version {
				bucket.Files = append(bucket.Files, g.Files...)
				merged[g.Version] = struct{}{}
			}
		}
	}

	for _, g := range gold {
		if _, ok := merged[g.Version]; !ok {
			b.log.Warn("Dropping gold version with no standard counterpart",
				slog.String("version", g.Version), slog.Int("files", len(g.Files)))
		}
	}

	return std
}

// pivot builds the reverse index from filename to the versions that carry
// it. Buckets come in newest-first and versions are only ever appended, so
// index[name][0] is always the newest version containing name.
func pivot(buckets []*entity.VersionBucket) map[string][]string {
	index := make(map[string][]string)
	for _, bucket := range buckets {
		for _, name := range bucket.Files {
			index[name] = append(index[name], bucket.Version)
		}
	}

	return index
}

// resolveURLs attaches a download URL, in place, to every catalog entry
// whose filename is known to the pivot index. The newest version wins.
// Entries without a filename or with an unknown one keep an empty
// DownloadURL and render as unavailable downstream.
func (b *Builder) resolveURLs(platforms []*entity.PlatformInfo, fileVersions map[string][]string) {
	for _, platform := range platforms {
		for _, download := range platform.Downloads {
			if download.Filename == "" {
				continue
			}

			versions, ok := fileVersions[download.Filename]
			if !ok || len(versions) == 0 {
				b.log.Warn("Catalog filename has no matching artifact",
					slog.String("platform", platform.Title),
					slog.String("filename", download.Filename))

				continue
			}

			if download.Gold {
				download.DownloadURL = goldDownloadPath(b.cfg.URLBase, versions[0], download.Filename)
			} else {
				download.DownloadURL = downloadPath(b.cfg.URLBase, versions[0], download.Filename)
			}
		}
	}
}

// boil flattens buckets and catalog into the previous-releases table.
// Within one version and platform the first matched file carries the
// platform badge as its icon, every later match gets none, so each table
// row shows a single badge per platform. Catalog declaration order and
// bucket file order are the tie-breakers and must not be disturbed.
func boil(buckets []*entity.VersionBucket, platforms []*entity.PlatformInfo) []*entity.VersionDownloads {
	var downloads []*entity.VersionDownloads
	for _, bucket := range buckets {
		row := &entity.VersionDownloads{Version: bucket.Version}

		for _, platform := range platforms {
			first := true
			for _, filename := range bucket.Files {
				download := findByFilename(platform.Downloads, filename)
				if download == nil {
					continue
				}

				clone := *download
				if first {
					clone.Icon = platform.PlatformBadge
					first = false
				} else {
					clone.Icon = ""
				}
				row.Downloads = append(row.Downloads, &clone)
			}
		}

		if len(row.Downloads) > 0 {
			downloads = append(downloads, row)
		}
	}

	return downloads
}

// findByFilename returns the first catalog entry declared with the given
// filename. Duplicates within a platform exist in the wild; first wins.
func findByFilename(downloads []*entity.DownloadInfo, filename string) *entity.DownloadInfo {
	for _, download := range downloads {
		if download.Filename == filename {
			return download
		}
	}

	return nil
}

func downloadPath(urlBase, version, filename string) string {
	return fmt.Sprintf("%s/files/%s/%s", urlBase, strings.ReplaceAll(version, ".", "_"), filename)
}

func goldDownloadPath(urlBase, version, filename string) string {
	return fmt.Sprintf("%s/api/goldfiles/%s/%s", urlBase, strings.ReplaceAll(version, ".", "_"), filename)
}
