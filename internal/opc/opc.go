// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package opc implements a minimal reader/writer for Open Packaging
// Conventions archives (the container format shared by pptx/docx/xlsx). It
// is not a document object model: it parses just enough structure — content
// types, package relationships, presence of the main document part — to
// decide whether a package is loadable, and can write a structurally fresh
// copy of a loaded package. That is exactly what the repair stage needs: a
// load/resave cycle that rebuilds archive records and a loadability check
// for validating repair output.
package opc

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	contentTypesPart = "[Content_Types].xml"
	rootRelsPart     = "_rels/.rels"

	// relTypeOfficeDocument marks the relationship pointing at the main
	// document part (ppt/presentation.xml, word/document.xml, ...).
	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
)

// Part is one file inside the package.
type Part struct {
	Name string
	Data []byte
}

// Package is a loaded OPC archive. Parts preserve archive order.
type Package struct {
	Parts []Part

	// MainPart is the resolved name of the main document part.
	MainPart string
}

// relationships mirrors the OPC relationship part schema.
type relationships struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Relationships []relationship `xml:"Relationship"`
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Load opens the archive at path and verifies its package structure: a
// readable ZIP, a parseable [Content_Types].xml, a parseable root
// relationship part, and the main document part that part points to. Any
// missing piece is a load error.
func Load(path string) (*Package, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer r.Close()

	pkg := &Package{}
	byName := make(map[string]*Part)

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening part %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading part %s: %w", f.Name, err)
		}
		pkg.Parts = append(pkg.Parts, Part{Name: f.Name, Data: data})
		byName[f.Name] = &pkg.Parts[len(pkg.Parts)-1]
	}

	ct, ok := byName[contentTypesPart]
	if !ok {
		return nil, fmt.Errorf("%s: missing %s", path, contentTypesPart)
	}
	if err := xml.Unmarshal(ct.Data, new(struct {
		XMLName xml.Name `xml:"Types"`
	})); err != nil {
		return nil, fmt.Errorf("%s: malformed content types: %w", path, err)
	}

	rels, ok := byName[rootRelsPart]
	if !ok {
		return nil, fmt.Errorf("%s: missing %s", path, rootRelsPart)
	}
	var rel relationships
	if err := xml.Unmarshal(rels.Data, &rel); err != nil {
		return nil, fmt.Errorf("%s: malformed package relationships: %w", path, err)
	}

	for _, r := range rel.Relationships {
		if r.Type == relTypeOfficeDocument {
			pkg.MainPart = strings.TrimPrefix(r.Target, "/")
			break
		}
	}
	if pkg.MainPart == "" {
		return nil, fmt.Errorf("%s: no office document relationship", path)
	}
	if _, ok := byName[pkg.MainPart]; !ok {
		return nil, fmt.Errorf("%s: main part %s missing from archive", path, pkg.MainPart)
	}

	return pkg, nil
}

// Save writes the package as a fresh deflated archive at path. Central
// directory and local headers are rebuilt from scratch, which discards
// whatever damage the original archive records carried.
func (p *Package) Save(path string) error {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, part := range p.Parts {
		fw, err := w.Create(part.Name)
		if err != nil {
			w.Close()
			return fmt.Errorf("creating entry %s: %w", part.Name, err)
		}
		if _, err := fw.Write(part.Data); err != nil {
			w.Close()
			return fmt.Errorf("writing entry %s: %w", part.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Reserialize loads the package at input and saves a rebuilt copy to output.
func Reserialize(input, output string) error {
	pkg, err := Load(input)
	if err != nil {
		return err
	}
	return pkg.Save(output)
}
