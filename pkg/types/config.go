package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that talk to the portal.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "course-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// PortalConfig holds settings for the portal client.
type PortalConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the portal root (e.g. "https://www.pesuacademy.com/Academy").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Username and Password authenticate the portal session. Normally
	// loaded from .secrets/portal-username and .secrets/portal-password.
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// DownloadDelay is the delay between consecutive downloads.
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`
}

// SnifferConfig holds the default classifications for ambiguous containers.
// A generic ZIP with no recognizable internal marker and a legacy compound
// file both carry no reliable format hint; in this domain most inbound files
// are slide decks, so both defaults lean presentation. Overridable for other
// corpora.
type SnifferConfig struct {
	// ZIPDefault is the kind assigned to a ZIP container with no
	// ppt/, word/ or xl/ marker (default KindPresentation).
	ZIPDefault ContainerKind `json:"zip_default" yaml:"zip_default"`

	// CFBDefault is the kind assigned to a legacy compound-file container
	// (default KindLegacyPresentation).
	CFBDefault ContainerKind `json:"cfb_default" yaml:"cfb_default"`
}

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	// Root is the directory tree to convert (default "downloads").
	Root string `json:"root" yaml:"root"`

	// BackendTimeout bounds each external-process invocation.
	// Exceeding it fails that strategy only (default 2m).
	BackendTimeout time.Duration `json:"backend_timeout" yaml:"backend_timeout"`

	// MaxFailedShown caps how many failed filenames the summary prints.
	MaxFailedShown int `json:"max_failed_shown" yaml:"max_failed_shown"`
}

// MergeConfig holds settings for the merge stage.
type MergeConfig struct {
	// Root is the course directory containing Unit_<n> subdirectories.
	Root string `json:"root" yaml:"root"`

	// Categories lists the resource categories to merge
	// (e.g. Slides, Notes, QB). Empty means all known categories.
	Categories []string `json:"categories" yaml:"categories"`
}
