package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bekzodm/levelcheck/config"
)

// LevelBand maps the lower bound of a percent range to a proficiency label.
type LevelBand struct {
	MinPercent float64 `json:"min_percent"`
	Label      string  `json:"label"`
}

// LevelScale is an ordered threshold table. Classification is a monotonic
// step function: the highest band whose MinPercent the score reaches wins.
// The table is deployment policy, never hard-coded into the engine:
// different deployments of nominally the same test run different tables.
type LevelScale []LevelBand

func (s LevelScale) Classify(percent float64) string {
	if len(s) == 0 {
		return ""
	}
	label := s[0].Label
	for _, band := range s {
		if percent >= band.MinPercent {
			label = band.Label
		}
	}
	return label
}

// Both tables observed in production deployments.
var levelPresets = map[string]LevelScale{
	"cefr": {
		{MinPercent: 0, Label: "A1"},
		{MinPercent: 85, Label: "A2"},
		{MinPercent: 95, Label: "B1"},
	},
	"named": {
		{MinPercent: 0, Label: "Beginner"},
		{MinPercent: 60, Label: "Elementary"},
		{MinPercent: 75, Label: "Pre-Intermediate"},
		{MinPercent: 90, Label: "Intermediate"},
	},
}

// ParseLevelScale reads a table from its compact config form, e.g.
// "0:A1,85:A2,95:B1".
func ParseLevelScale(raw string) (LevelScale, error) {
	parts := strings.Split(raw, ",")
	scale := make(LevelScale, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pieces := strings.SplitN(part, ":", 2)
		if len(pieces) != 2 || strings.TrimSpace(pieces[1]) == "" {
			return nil, fmt.Errorf("invalid level band %q, want \"min:Label\"", part)
		}
		min, err := strconv.ParseFloat(strings.TrimSpace(pieces[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid level band threshold %q: %w", pieces[0], err)
		}
		scale = append(scale, LevelBand{MinPercent: min, Label: strings.TrimSpace(pieces[1])})
	}
	if len(scale) == 0 {
		return nil, fmt.Errorf("level scale %q has no bands", raw)
	}
	sort.SliceStable(scale, func(i, j int) bool { return scale[i].MinPercent < scale[j].MinPercent })
	return scale, nil
}

// NewScoringPolicy resolves the configured table (explicit bands win over the
// preset name) and the denominator convention.
func NewScoringPolicy(cfg *config.Config) (ScoringPolicy, error) {
	policy := ScoringPolicy{WeightedTotal: cfg.Scoring.WeightedTotal}

	if cfg.Scoring.LevelBands != "" {
		scale, err := ParseLevelScale(cfg.Scoring.LevelBands)
		if err != nil {
			return ScoringPolicy{}, err
		}
		policy.Scale = scale
		return policy, nil
	}

	preset := cfg.Scoring.LevelPreset
	if preset == "" {
		preset = "named"
	}
	scale, ok := levelPresets[preset]
	if !ok {
		return ScoringPolicy{}, fmt.Errorf("unknown level preset %q", preset)
	}
	policy.Scale = scale
	return policy, nil
}
