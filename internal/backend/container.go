// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/course-engine/internal/container"
)

// DefaultSofficeImage is the container image used when none is configured.
const DefaultSofficeImage = "libreoffice:latest"

// ContainerSoffice converts documents through a LibreOffice container. Last
// tier of the cascades: it needs no host Office install, only a container
// runtime with the image pulled.
type ContainerSoffice struct {
	rt    container.Runtime
	image string
}

// NewContainerSoffice detects a container runtime and returns the backend.
// When no runtime exists the backend still constructs but reports
// unavailable, keeping cascade wiring unconditional.
func NewContainerSoffice(image string) *ContainerSoffice {
	if image == "" {
		image = DefaultSofficeImage
	}
	rt, err := container.DetectRuntime()
	if err != nil {
		return &ContainerSoffice{image: image}
	}
	return &ContainerSoffice{rt: rt, image: image}
}

func (c *ContainerSoffice) Name() string { return "libreoffice-container" }

func (c *ContainerSoffice) Available() bool {
	return c.rt != nil && c.rt.ImageExists(c.image) == nil
}

// Convert mounts the input's directory at the container work dir and runs
// the headless converter inside. The produced file lands next to the input
// and is renamed to the requested output when the two differ.
func (c *ContainerSoffice) Convert(input, output string) error {
	if c.rt == nil {
		return ErrUnavailable
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	inDir := filepath.Dir(absIn)
	base := filepath.Base(absIn)

	os.Remove(output)

	err = c.rt.RunMounted(c.image, inDir,
		"soffice", "--headless", "--convert-to", "pdf",
		"--outdir", container.WorkDir, container.WorkDir+"/"+base)
	if err != nil {
		return fmt.Errorf("container soffice: %w", err)
	}

	stem := strings.TrimSuffix(base, filepath.Ext(base))
	produced := filepath.Join(inDir, stem+".pdf")
	if produced != output {
		if err := os.Rename(produced, output); err != nil {
			return fmt.Errorf("container soffice produced no output for %s: %w", input, err)
		}
	}

	info, err := os.Stat(output)
	if err != nil {
		return fmt.Errorf("container soffice produced no output for %s: %w", input, err)
	}
	if info.Size() == 0 {
		os.Remove(output)
		return fmt.Errorf("container soffice produced empty output for %s", input)
	}
	return nil
}
