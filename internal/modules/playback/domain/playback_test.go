package domain_test

import (
	"testing"

	"keyloop/internal/modules/playback/domain"
)

func TestBuildCuesScalesReleasesByTempo(t *testing.T) {
	t.Parallel()
	section := domain.Section{Index: 1, Start: 8, End: 16, Notes: []domain.Note{
		{Start: 8, Duration: 1, Pitch: "C4", Velocity: 0.5},
		{Start: 9, Duration: 0.5, Pitch: "C4", Velocity: 0.5},
	}}

	cases := []struct {
		scale    float64
		releases []float64
	}{
		{1, []float64{1, 1.5}},
		{0.5, []float64{0.5, 1.25}},
		{1.5, []float64{1.5, 1.75}},
		{0, []float64{1, 1.5}},
	}
	for _, tc := range cases {
		cues := domain.BuildCues(section, tc.scale)
		var releases []float64
		for _, c := range cues {
			if c.Kind == domain.Release {
				releases = append(releases, c.Offset)
			}
		}
		if len(releases) != 2 || releases[0] != tc.releases[0] || releases[1] != tc.releases[1] {
			t.Fatalf("scale %v: releases at %v, want %v", tc.scale, releases, tc.releases)
		}
		if domain.Attacks(cues) != 2 || cues[0].Kind != domain.Attack || cues[0].Offset != 0 || cues[0].Duration != 1 {
			t.Fatalf("scale %v: attacks must keep offsets and durations, got %+v", tc.scale, cues)
		}
	}
}

func TestBuildCuesReleasesBeforeReattack(t *testing.T) {
	t.Parallel()
	section := domain.Section{Start: 0, End: 4, Notes: []domain.Note{
		{Start: 0, Duration: 1, Pitch: "E4", Velocity: 1},
		{Start: 1, Duration: 1, Pitch: "E4", Velocity: 1},
	}}
	cues := domain.BuildCues(section, 1)
	if len(cues) != 4 || cues[1].Kind != domain.Release || cues[2].Kind != domain.Attack || cues[1].Offset != 1 {
		t.Fatalf("expected release then attack at offset 1, got %+v", cues)
	}
}
