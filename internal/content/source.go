package content

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// descriptorNames are tried in order; the first existing file wins.
var descriptorNames = []string{"_meta.json", "_meta.yaml", "_meta.yml"}

// Descriptor declares a pillar's display name and its sections.
type Descriptor struct {
	Pillar   string              `json:"pillar" yaml:"pillar"`
	Sections []DescriptorSection `json:"sections" yaml:"sections"`
}

// DescriptorSection is a named, ordered list of topics.
type DescriptorSection struct {
	Name   string            `json:"name" yaml:"name"`
	Topics []DescriptorTopic `json:"topics" yaml:"topics"`
}

// DescriptorTopic names a markdown file (<slug>.md) and optionally its title.
type DescriptorTopic struct {
	Slug  string `json:"slug" yaml:"slug"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Source is either a DeclaredSource or an AutoSource.
type Source interface {
	Directory() string
	mode() Mode
}

// DeclaredSource is a pillar whose sections come from a descriptor file.
type DeclaredSource struct {
	Dir        string
	Descriptor Descriptor
}

func (s DeclaredSource) Directory() string { return s.Dir }
func (DeclaredSource) mode() Mode          { return ModeDeclared }

// AutoSource is a pillar whose sections are derived from post tags.
type AutoSource struct {
	Dir string
}

func (s AutoSource) Directory() string { return s.Dir }
func (AutoSource) mode() Mode          { return ModeAuto }

// ResolveSource decides once how the pillar in dir is organized.
func ResolveSource(dir string) (Source, error) {
	for _, name := range descriptorNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDescriptorInvalid, path, err)
		}
		desc, err := parseDescriptor(name, data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDescriptorInvalid, path, err)
		}
		return DeclaredSource{Dir: dir, Descriptor: desc}, nil
	}
	return AutoSource{Dir: dir}, nil
}

func parseDescriptor(name string, data []byte) (Descriptor, error) {
	var desc Descriptor
	var err error
	if filepath.Ext(name) == ".json" {
		err = json.Unmarshal(data, &desc)
	} else {
		err = yaml.Unmarshal(data, &desc)
	}
	if err != nil {
		return Descriptor{}, err
	}
	for i, section := range desc.Sections {
		for j, topic := range section.Topics {
			if !validSlug(topic.Slug) {
				return Descriptor{}, fmt.Errorf("section %d topic %d: %w: %q", i, j, ErrSlugInvalid, topic.Slug)
			}
		}
	}
	return desc, nil
}

// validSlug reports whether slug names a file directly inside the pillar
// directory.
func validSlug(slug string) bool {
	if slug == "" || slug == "." || slug == ".." || strings.ContainsAny(slug, `/\`) {
		return false
	}
	return fs.ValidPath(slug)
}
