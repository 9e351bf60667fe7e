// Package taxonomy holds the static classification tables: origin platforms,
// manipulation classes, tool families and the device registry.
//
// The tables are loaded once and must be treated as read-only afterwards.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed data/taxonomy.yaml
var embeddedTaxonomyYAML []byte

// ErrUnknownDevice is returned when a device id is not in the registry.
var ErrUnknownDevice = errors.New("unknown device")

// Family groups raw tool variants sharing a name prefix under one class key.
type Family struct {
	Prefix string `yaml:"prefix" validate:"required"`
	Name   string `yaml:"name" validate:"required"`
}

// Reencoding names the platforms of the pre/post re-encoding experiment.
type Reencoding struct {
	Before string `yaml:"before"`
	After  string `yaml:"after"`
	Suffix string `yaml:"suffix"`
}

// Taxonomy is the process-wide classification vocabulary.
type Taxonomy struct {
	Platforms        []string          `yaml:"platforms" validate:"required,min=1,dive,required"`
	NativePlatform   string            `yaml:"native_platform" validate:"required"`
	Classes          []string          `yaml:"classes" validate:"required,min=1,dive,required"`
	NativeClass      string            `yaml:"native_class" validate:"required"`
	Families         []Family          `yaml:"families" validate:"dive"`
	Reencoding       Reencoding        `yaml:"reencoding"`
	DeviceIDLength   int               `yaml:"device_id_length" validate:"gte=1"`
	OperatingSystems []string          `yaml:"operating_systems" validate:"required,min=1,dive,required"`
	DefaultOS        string            `yaml:"default_os" validate:"required"`
	BrandOS          map[string]string `yaml:"brand_os"`
	Devices          map[string]string `yaml:"devices" validate:"required,min=1"`
}

// Device is a registry entry with its derived operating system.
type Device struct {
	ID    string
	Brand string
	OS    string
}

var loadDefault = sync.OnceValue(func() *Taxonomy {
	t, err := Parse(embeddedTaxonomyYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy is invalid: %v", err))
	}
	return t
})

// Default returns the embedded taxonomy.
func Default() *Taxonomy { return loadDefault() }

// Load reads a taxonomy override from a YAML file.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("taxonomy %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates taxonomy YAML.
func Parse(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks struct constraints and cross references between tables.
func (t *Taxonomy) Validate() error {
	if err := validator.New().Struct(t); err != nil {
		return fmt.Errorf("validate taxonomy: %w", err)
	}
	if !slices.Contains(t.Classes, t.NativeClass) {
		return fmt.Errorf("native class %q is not a listed class", t.NativeClass)
	}
	if !slices.Contains(t.OperatingSystems, t.DefaultOS) {
		return fmt.Errorf("default os %q is not a listed operating system", t.DefaultOS)
	}
	for brand, osName := range t.BrandOS {
		if !slices.Contains(t.OperatingSystems, osName) {
			return fmt.Errorf("brand %s maps to unknown operating system %q", brand, osName)
		}
	}
	for id := range t.Devices {
		if len(id) != t.DeviceIDLength {
			return fmt.Errorf("device id %q does not have length %d", id, t.DeviceIDLength)
		}
	}
	return nil
}

// Family returns the aggregate class key for a raw tool name. Tools outside
// any family map to themselves.
func (t *Taxonomy) Family(class string) string {
	for _, f := range t.Families {
		if strings.HasPrefix(class, f.Prefix) {
			return f.Name
		}
	}
	return class
}

// MergedClasses lists class keys after family merging, in first-seen order.
func (t *Taxonomy) MergedClasses() []string {
	out := make([]string, 0, len(t.Classes))
	for _, c := range t.Classes {
		name := t.Family(c)
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

// Variants returns the raw tool names that belong to a family.
func (t *Taxonomy) Variants(family string) []string {
	var out []string
	for _, c := range t.Classes {
		if t.Family(c) == family && c != family {
			out = append(out, c)
		}
	}
	return out
}

// IsNative reports whether class is the untouched-capture class.
func (t *Taxonomy) IsNative(class string) bool { return class == t.NativeClass }

// DeviceID returns the device prefix of a video id.
func (t *Taxonomy) DeviceID(videoID string) string {
	if len(videoID) <= t.DeviceIDLength {
		return videoID
	}
	return videoID[:t.DeviceIDLength]
}

// Device looks up a device in the registry.
func (t *Taxonomy) Device(id string) (Device, error) {
	brand, ok := t.Devices[id]
	if !ok {
		return Device{}, fmt.Errorf("%w: %s", ErrUnknownDevice, id)
	}
	osName, ok := t.BrandOS[brand]
	if !ok {
		osName = t.DefaultOS
	}
	return Device{ID: id, Brand: brand, OS: osName}, nil
}

// OS returns the operating system of a registered device.
func (t *Taxonomy) OS(id string) (string, error) {
	d, err := t.Device(id)
	if err != nil {
		return "", err
	}
	return d.OS, nil
}

// OSOrder returns the subset of operating systems in present, in declared order.
func (t *Taxonomy) OSOrder(present map[string]struct{}) []string {
	var out []string
	for _, o := range t.OperatingSystems {
		if _, ok := present[o]; ok {
			out = append(out, o)
		}
	}
	return out
}
