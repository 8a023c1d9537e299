package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pricewatch/pricewatch-guard/internal/models"
	"github.com/pricewatch/pricewatch-guard/internal/utils"
)

// Catalog is the static, validated-at-load registry of solution
// definitions plus derived lookup indexes.
type Catalog struct {
	order           []string
	entries         map[string]models.SolutionDefinition
	byDetectionType map[models.DetectionType][]string
	byCategory      map[string][]string
	byPlatform      map[string][]string
	// conflicts is symmetric: a one-sided declaration gates both sides.
	conflicts map[string]map[string]struct{}
}

// overlayFile is the YAML root for user-supplied catalog overrides.
type overlayFile struct {
	Solutions []models.SolutionDefinition `yaml:"solutions"`
}

var knownDetectionTypes = map[models.DetectionType]struct{}{
	models.DetectionCloudflare:       {},
	models.DetectionAWSWAF:           {},
	models.DetectionRateLimit:        {},
	models.DetectionIPBlock:          {},
	models.DetectionCaptcha:          {},
	models.DetectionJSChallenge:      {},
	models.DetectionRedirectLoop:     {},
	models.DetectionPlatformSpecific: {},
}

// Load builds the catalog from the built-in definitions, merging an
// optional YAML overlay on top. Any malformed entry is a fatal error.
func Load(path string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}

	defs := defaultDefinitions()
	if path != "" {
		overlay, err := readOverlay(path)
		if err != nil {
			return nil, err
		}
		if overlay != nil {
			defs = mergeDefinitions(defs, overlay.Solutions)
			logger.Info("catalog overlay merged", slog.String("path", path), slog.Int("entries", len(overlay.Solutions)))
		}
	}

	return build(defs)
}

func readOverlay(path string) (*overlayFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read catalog overlay: %w", err)
	}
	var overlay overlayFile
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse catalog overlay: %w", err)
	}
	return &overlay, nil
}

func mergeDefinitions(base, overlay []models.SolutionDefinition) []models.SolutionDefinition {
	index := make(map[string]int, len(base))
	for i, def := range base {
		index[def.ID] = i
	}
	for _, def := range overlay {
		if i, ok := index[def.ID]; ok {
			base[i] = def
			continue
		}
		index[def.ID] = len(base)
		base = append(base, def)
	}
	return base
}

func build(defs []models.SolutionDefinition) (*Catalog, error) {
	c := &Catalog{
		entries:         make(map[string]models.SolutionDefinition, len(defs)),
		byDetectionType: make(map[models.DetectionType][]string),
		byCategory:      make(map[string][]string),
		byPlatform:      make(map[string][]string),
		conflicts:       make(map[string]map[string]struct{}),
	}

	structValidator := validator.New()
	for _, def := range defs {
		if err := validateEntry(structValidator, def); err != nil {
			return nil, err
		}
		if _, dup := c.entries[def.ID]; dup {
			return nil, &utils.ValidationError{EntryID: def.ID, Reason: "duplicate id"}
		}
		c.entries[def.ID] = def
		c.order = append(c.order, def.ID)
	}

	// Relational checks and index construction need the full id set.
	for _, id := range c.order {
		def := c.entries[id]
		for _, dep := range def.Dependencies {
			if _, ok := c.entries[dep]; !ok {
				return nil, &utils.ValidationError{EntryID: id, Field: "dependencies", Reason: fmt.Sprintf("unknown solution %q", dep)}
			}
			if dep == id {
				return nil, &utils.ValidationError{EntryID: id, Field: "dependencies", Reason: "self dependency"}
			}
		}
		for _, other := range def.Conflicts {
			if _, ok := c.entries[other]; !ok {
				return nil, &utils.ValidationError{EntryID: id, Field: "conflicts", Reason: fmt.Sprintf("unknown solution %q", other)}
			}
			if other == id {
				return nil, &utils.ValidationError{EntryID: id, Field: "conflicts", Reason: "self conflict"}
			}
			addConflict(c.conflicts, id, other)
			addConflict(c.conflicts, other, id)
		}

		for _, dt := range def.DetectionTypes {
			c.byDetectionType[dt] = append(c.byDetectionType[dt], id)
		}
		c.byCategory[def.Category] = append(c.byCategory[def.Category], id)
		for _, p := range def.Platforms {
			if p != models.PlatformAny {
				c.byPlatform[p] = append(c.byPlatform[p], id)
			}
		}
	}

	return c, nil
}

func validateEntry(v *validator.Validate, def models.SolutionDefinition) error {
	if err := v.Struct(def); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			return &utils.ValidationError{EntryID: def.ID, Field: invalid[0].Field(), Reason: "failed " + invalid[0].Tag() + " check"}
		}
		return &utils.ValidationError{EntryID: def.ID, Reason: err.Error()}
	}
	for _, dt := range def.DetectionTypes {
		if _, ok := knownDetectionTypes[dt]; !ok {
			return &utils.ValidationError{EntryID: def.ID, Field: "detectionTypes", Reason: fmt.Sprintf("unknown detection type %q", dt)}
		}
	}
	return nil
}

func addConflict(conflicts map[string]map[string]struct{}, from, to string) {
	set, ok := conflicts[from]
	if !ok {
		set = make(map[string]struct{})
		conflicts[from] = set
	}
	set[to] = struct{}{}
}

// Get returns the definition for id.
func (c *Catalog) Get(id string) (models.SolutionDefinition, bool) {
	def, ok := c.entries[id]
	return def, ok
}

// All returns every definition in load order.
func (c *Catalog) All() []models.SolutionDefinition {
	defs := make([]models.SolutionDefinition, 0, len(c.order))
	for _, id := range c.order {
		defs = append(defs, c.entries[id])
	}
	return defs
}

// Len reports the number of catalog entries.
func (c *Catalog) Len() int { return len(c.order) }

// ByDetectionType returns definitions indexed under the given type.
func (c *Catalog) ByDetectionType(t models.DetectionType) []models.SolutionDefinition {
	return c.collect(c.byDetectionType[t])
}

// ByCategory returns definitions in the given category.
func (c *Catalog) ByCategory(category string) []models.SolutionDefinition {
	return c.collect(c.byCategory[category])
}

// PlatformSolutions returns entries that explicitly list the platform.
func (c *Catalog) PlatformSolutions(platform string) []models.SolutionDefinition {
	return c.collect(c.byPlatform[platform])
}

// ConflictsWith reports whether a and b conflict, in either direction.
func (c *Catalog) ConflictsWith(a, b string) bool {
	_, ok := c.conflicts[a][b]
	return ok
}

// ConflictIDs returns every id conflicting with the given id.
func (c *Catalog) ConflictIDs(id string) []string {
	set := c.conflicts[id]
	if len(set) == 0 {
		return nil
	}
	ids := make([]string, 0, len(set))
	for _, candidate := range c.order {
		if _, ok := set[candidate]; ok {
			ids = append(ids, candidate)
		}
	}
	return ids
}

func (c *Catalog) collect(ids []string) []models.SolutionDefinition {
	if len(ids) == 0 {
		return nil
	}
	defs := make([]models.SolutionDefinition, 0, len(ids))
	for _, id := range ids {
		defs = append(defs, c.entries[id])
	}
	return defs
}
