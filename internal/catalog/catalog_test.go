package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pricewatch/pricewatch-guard/internal/models"
	"github.com/pricewatch/pricewatch-guard/internal/utils"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("", nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, c.Len(), 10)

	def, ok := c.Get("increase_delays")
	require.True(t, ok)
	require.Equal(t, models.PriorityHigh, def.Priority)
	require.True(t, def.HandlesDetectionType(models.DetectionRateLimit))
}

func TestLoadMissingOverlayIsIgnored(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
	require.NotZero(t, c.Len())
}

func TestLoadOverlayMergesByID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	overlay := `solutions:
  - id: increase_delays
    name: Increase request delays
    category: timing
    priority: critical
    detectionTypes: [rate_limit]
    estimatedEffectiveness: 92
    implementationComplexity: simple
    riskLevel: low
    platforms: [both]
  - id: custom_entry
    name: Custom entry
    category: custom
    priority: low
    detectionTypes: [captcha]
    estimatedEffectiveness: 40
    implementationComplexity: moderate
    riskLevel: medium
    platforms: [walmart]
`
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0o644))

	c, err := Load(path, nil)
	require.NoError(t, err)

	def, ok := c.Get("increase_delays")
	require.True(t, ok)
	require.Equal(t, models.PriorityCritical, def.Priority)
	require.Equal(t, 92.0, def.EstimatedEffectiveness)

	custom, ok := c.Get("custom_entry")
	require.True(t, ok)
	require.True(t, custom.SupportsPlatform("walmart"))
	require.False(t, custom.SupportsPlatform("amazon"))
	require.Contains(t, idsOf(c.PlatformSolutions("walmart")), "custom_entry")
}

func TestLoadRejectsMalformedEntry(t *testing.T) {
	cases := []struct {
		name    string
		overlay string
	}{
		{
			"bad priority",
			`solutions:
  - id: bad
    name: Bad
    category: x
    priority: urgent
    estimatedEffectiveness: 50
    implementationComplexity: simple
    riskLevel: low
    platforms: [both]
`,
		},
		{
			"effectiveness out of range",
			`solutions:
  - id: bad
    name: Bad
    category: x
    priority: low
    estimatedEffectiveness: 140
    implementationComplexity: simple
    riskLevel: low
    platforms: [both]
`,
		},
		{
			"empty platforms",
			`solutions:
  - id: bad
    name: Bad
    category: x
    priority: low
    estimatedEffectiveness: 50
    implementationComplexity: simple
    riskLevel: low
    platforms: []
`,
		},
		{
			"unknown dependency",
			`solutions:
  - id: bad
    name: Bad
    category: x
    priority: low
    estimatedEffectiveness: 50
    implementationComplexity: simple
    riskLevel: low
    platforms: [both]
    dependencies: [nope]
`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.overlay), 0o644))

			_, err := Load(path, nil)
			require.Error(t, err)
			var verr *utils.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestConflictsAreSymmetric(t *testing.T) {
	c, err := Load("", nil)
	require.NoError(t, err)

	// clear_session_state declares the conflict; both directions must hold.
	require.True(t, c.ConflictsWith("clear_session_state", "enable_cookie_persistence"))
	require.True(t, c.ConflictsWith("enable_cookie_persistence", "clear_session_state"))
	require.Contains(t, c.ConflictIDs("enable_cookie_persistence"), "clear_session_state")
}

func TestDetectionTypeIndex(t *testing.T) {
	c, err := Load("", nil)
	require.NoError(t, err)

	for _, def := range c.ByDetectionType(models.DetectionRateLimit) {
		require.True(t, def.HandlesDetectionType(models.DetectionRateLimit))
	}
	require.NotEmpty(t, c.ByCategory("timing"))
}

func idsOf(defs []models.SolutionDefinition) []string {
	ids := make([]string, 0, len(defs))
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	return ids
}
