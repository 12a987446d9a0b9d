// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Course is one entry from the portal's course list.
type Course struct {
	// ID is the portal's internal course identifier.
	ID string `json:"id" yaml:"id"`

	// Code is the subject code (e.g. "UE23CS341A").
	Code string `json:"code" yaml:"code"`

	// Name is the full display name.
	Name string `json:"name" yaml:"name"`
}

// Unit is one unit within a course.
type Unit struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Class is one class session within a unit.
type Class struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// ResourceLink is one downloadable resource resolved from a class page.
// Either URL is set (indirect link) or Content holds already-fetched bytes
// (the portal sometimes answers the listing request with the file itself).
type ResourceLink struct {
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	Content []byte `json:"-" yaml:"-"`
}

// Direct reports whether the link already carries the file bytes.
func (l ResourceLink) Direct() bool {
	return len(l.Content) > 0
}

// Categories maps the portal's resource-type id parameter to category names.
// Category directory names under each class folder use these values.
var Categories = map[string]string{
	"2": "Slides",
	"3": "Notes",
	"4": "QA",
	"5": "Assignments",
	"6": "QB",
	"7": "MCQs",
	"8": "References",
}

// CategoryNames returns the category names in id order.
func CategoryNames() []string {
	return []string{"Slides", "Notes", "QA", "Assignments", "QB", "MCQs", "References"}
}
