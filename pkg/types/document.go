// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ContainerKind is the true underlying binary format of a file, independent
// of its filename extension.
type ContainerKind string

const (
	KindUnknown            ContainerKind = ""
	KindPDF                ContainerKind = "pdf"
	KindPresentation       ContainerKind = "pptx"
	KindWordProcessing     ContainerKind = "docx"
	KindSpreadsheet        ContainerKind = "xlsx"
	KindLegacyPresentation ContainerKind = "ppt"
	KindLegacyWord         ContainerKind = "doc"
)

// Ext returns the canonical filename extension for the kind, including the
// leading dot, or "" for KindUnknown.
func (k ContainerKind) Ext() string {
	if k == KindUnknown {
		return ""
	}
	return "." + string(k)
}

// ConversionStats aggregates the outcome of one batch conversion run.
type ConversionStats struct {
	// Succeeded counts files converted directly by a backend.
	Succeeded int `json:"succeeded" yaml:"succeeded"`

	// Repaired counts files converted only after structural repair.
	Repaired int `json:"repaired" yaml:"repaired"`

	// Failed counts files no cascade tier could convert.
	Failed int `json:"failed" yaml:"failed"`

	// FailedFiles lists the basenames of the failed files, in
	// discovery order, for manual intervention.
	FailedFiles []string `json:"failed_files,omitempty" yaml:"failed_files,omitempty"`
}

// Total returns the total number of files processed.
func (s ConversionStats) Total() int {
	return s.Succeeded + s.Repaired + s.Failed
}

// HasFailures reports whether any files failed conversion.
func (s ConversionStats) HasFailures() bool {
	return s.Failed > 0
}
