package classifier

import (
	"strings"

	"github.com/denysvitali/asset-finder/internal/models"
)

// DefaultImageExtensions are the extensions rendered in the image section
var DefaultImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// DefaultExcludedExtensions are hidden from the "other files" section.
// ".css.map" never matches: extensions only carry the final dot-segment, and
// "foo.css.map" is already covered by ".map". It is kept so the list reads the
// same as the one operators configure.
var DefaultExcludedExtensions = []string{".css", ".css.map", ".js", ".map", ".html", ".json", ".txt"}

// Rules decides which bucket a match belongs to
type Rules struct {
	images   map[string]struct{}
	excluded map[string]struct{}
}

// NewRules builds classification rules from extension lists.
// Entries are lowercased and given a leading dot if they lack one.
func NewRules(images, excluded []string) Rules {
	return Rules{
		images:   extensionSet(images),
		excluded: extensionSet(excluded),
	}
}

// DefaultRules returns the rules built from the default extension lists
func DefaultRules() Rules {
	return NewRules(DefaultImageExtensions, DefaultExcludedExtensions)
}

// IsImage reports whether ext is rendered as an image
func (r Rules) IsImage(ext string) bool {
	_, ok := r.images[ext]
	return ok
}

// IsExcluded reports whether ext is hidden from the other-files section
func (r Rules) IsExcluded(ext string) bool {
	_, ok := r.excluded[ext]
	return ok
}

// Classify partitions matches into images, other kept files and the distinct
// extensions of everything that was dropped. Input order is preserved.
func (r Rules) Classify(matches []models.FileMatch) models.Classification {
	result := models.Classification{
		Images:            []models.FileMatch{},
		Others:            []models.FileMatch{},
		DroppedExtensions: []string{},
		Total:             len(matches),
	}

	kept := make(map[string]struct{})
	for _, m := range matches {
		switch {
		case r.IsImage(m.Ext):
			result.Images = append(result.Images, m)
		case r.IsExcluded(m.Ext):
			continue
		default:
			result.Others = append(result.Others, m)
		}
		kept[m.Ext] = struct{}{}
	}

	seen := make(map[string]struct{})
	for _, m := range matches {
		if _, ok := kept[m.Ext]; ok {
			continue
		}
		if _, ok := seen[m.Ext]; ok {
			continue
		}
		seen[m.Ext] = struct{}{}
		result.DroppedExtensions = append(result.DroppedExtensions, m.Ext)
	}

	return result
}

func extensionSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}
