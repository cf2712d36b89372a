package entity

// FileNode is one level of a directory snapshot taken from the build
// artifact store. The tree is strictly owned: every node belongs to its
// parent and nothing is shared between branches.
type FileNode struct {
	Name     string      `json:"name"`
	IsDir    bool        `json:"is_dir"`
	Children []*FileNode `json:"children,omitempty"`
}

// DownloadInfo describes one downloadable artifact of a platform as
// declared in the hand-curated catalog. DownloadURL and Icon are the only
// fields filled in programmatically, everything else comes from the
// catalog as-is.
type DownloadInfo struct {
	Name         string `json:"name"`
	Icon         string `json:"icon,omitempty"`
	URL          string `json:"url,omitempty"`
	DownloadURL  string `json:"download_url,omitempty"`
	ServiceImg   string `json:"service_img,omitempty"`
	ServiceAlt   string `json:"service_alt,omitempty"`
	ShortName    string `json:"short_name,omitempty"`
	WhatsThis    string `json:"whats_this,omitempty"`
	WhatsThisURL string `json:"whats_this_url,omitempty"`
	Filename     string `json:"filename,omitempty"`
	Gold         bool   `json:"gold,omitempty"`
}

// PlatformInfo is one platform section of the download catalog.
type PlatformInfo struct {
	Title         string          `json:"title"`
	PlatformBadge string          `json:"platform_badge,omitempty"`
	PlatformKey   string          `json:"platform_key"`
	Downloads     []*DownloadInfo `json:"downloads"`
}

// VersionBucket groups the artifact filenames that belong to one release
// version. Version is the snapshot directory name with underscores
// replaced by dots; no further normalization is applied.
type VersionBucket struct {
	Version string
	Files   []string
}

// VersionDownloads is one row of the previous-releases table: every
// catalog download matched against the artifacts of a single version.
type VersionDownloads struct {
	Version   string
	Downloads []*DownloadInfo
}

// GlobalMeta is the data product every generated page can reference.
// Built once at startup, read-only afterwards.
type GlobalMeta struct {
	AppVersion       string
	Platforms        []*PlatformInfo
	VersionDownloads []*VersionDownloads
	Prod             bool
}
