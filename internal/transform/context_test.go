package transform

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vampirenirmal/storyshift/internal/catalog"
	"github.com/vampirenirmal/storyshift/internal/core"
	"github.com/vampirenirmal/storyshift/internal/domain"
)

var (
	loyaltyStory = domain.Story{
		Title:           "Loyal Hearts",
		Author:          "Anon",
		Era:             "Medieval",
		CoreThemes:      []string{"loyalty", "betrayal"},
		EmotionalCore:   "forbidden devotion",
		CentralConflict: "Two houses at war",
		KeyCharacters: []domain.Character{
			{Name: "Aria", Role: domain.RoleProtagonist, Traits: []string{"brave"}, Arc: "learns to trust"},
			{Name: "Bram", Role: "sidekick", Traits: []string{"funny"}, Arc: "finds courage"},
			{Name: "Cole", Role: domain.RoleAntagonist, Traits: []string{"cold"}, Arc: "falls"},
		},
		PlotBeats: []string{"meeting", "betrayal", "reckoning"},
	}

	techWorld = domain.World{
		Name:            "Silicon Valley",
		Era:             "2020s",
		Setting:         "Bay Area startups",
		Aesthetic:       "glass offices",
		TechnologyLevel: "modern",
		SocialHierarchy: []string{"intern", "engineer", "lead", "VP", "founder"},
		PowerStructures: []string{"board", "investors", "press"},
		Conflicts:       []string{"acquisition"},
		Values:          []string{"disruption"},
		Taboos:          []string{"leaking"},
		Communication:   []string{"slack", "email"},
	}
)

func TestBuildScenario(t *testing.T) {
	ctx := Build(loyaltyStory, techWorld)

	if diff := cmp.Diff([]string{"engineer", "lead"}, ctx.Characters[0].SuggestedPositions); diff != "" {
		t.Errorf("protagonist positions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(techWorld.SocialHierarchy, ctx.Characters[1].SuggestedPositions); diff != "" {
		t.Errorf("unrecognized role positions mismatch (-want +got):\n%s", diff)
	}
	if got := ctx.Characters[1].OriginalRole; got != "sidekick" {
		t.Errorf("OriginalRole = %q, want raw role kept", got)
	}

	wantReqs := []string{
		"MUST preserve theme: loyalty",
		"MUST preserve theme: betrayal",
		"MUST preserve emotional core: forbidden devotion",
	}
	if diff := cmp.Diff(wantReqs, ctx.PreservationRequirements); diff != "" {
		t.Errorf("preservation requirements mismatch (-want +got):\n%s", diff)
	}

	if ctx.Target.Technology != "modern" || ctx.Source.Era != "Medieval" {
		t.Errorf("summaries not populated: %+v %+v", ctx.Source, ctx.Target)
	}
	if ctx.Conflict.OriginalConflict != "Two houses at war" {
		t.Errorf("OriginalConflict = %q", ctx.Conflict.OriginalConflict)
	}
}

func TestBuildPreservesOrder(t *testing.T) {
	ctx := Build(loyaltyStory, techWorld)

	var names []string
	for _, c := range ctx.Characters {
		names = append(names, c.OriginalName)
		if c.WorldContext != techWorld.Name {
			t.Errorf("%s WorldContext = %q, want %q", c.OriginalName, c.WorldContext, techWorld.Name)
		}
	}
	if diff := cmp.Diff([]string{"Aria", "Bram", "Cole"}, names); diff != "" {
		t.Errorf("character order mismatch (-want +got):\n%s", diff)
	}

	var beats []string
	for _, b := range ctx.PlotBeats {
		beats = append(beats, b.OriginalBeat)
		if b.SettingAesthetic != techWorld.Aesthetic {
			t.Errorf("beat %q aesthetic = %q", b.OriginalBeat, b.SettingAesthetic)
		}
	}
	if diff := cmp.Diff(loyaltyStory.PlotBeats, beats); diff != "" {
		t.Errorf("beat order mismatch (-want +got):\n%s", diff)
	}
}

func TestPreservationRequirementsLength(t *testing.T) {
	tests := []struct {
		name   string
		themes []string
	}{
		{"none", nil},
		{"one", []string{"hope"}},
		{"four", []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PreservationRequirements(domain.Story{CoreThemes: tt.themes, EmotionalCore: "x"})
			if len(got) != len(tt.themes)+1 {
				t.Errorf("len = %d, want %d", len(got), len(tt.themes)+1)
			}
		})
	}
}

func TestBuildDoesNotAliasWorld(t *testing.T) {
	ctx := Build(loyaltyStory, techWorld)
	ctx.Conflict.WorldValues[0] = "changed"
	ctx.PlotBeats[0].CommunicationMethods[0] = "changed"

	if techWorld.Values[0] != "disruption" || techWorld.Communication[0] != "slack" {
		t.Error("world mutated through context")
	}
}

func TestBuildFromKeys(t *testing.T) {
	cat, err := catalog.Default(context.Background())
	if err != nil {
		t.Fatalf("catalog.Default() error = %v", err)
	}
	b := NewBuilder(cat)

	for _, storyKey := range cat.StoryKeys() {
		for _, worldKey := range cat.WorldKeys() {
			t.Run(storyKey+"/"+worldKey, func(t *testing.T) {
				ctx, err := b.BuildFromKeys(context.Background(), storyKey, worldKey)
				if err != nil {
					t.Fatalf("BuildFromKeys() error = %v", err)
				}
				story, _ := cat.Story(context.Background(), storyKey)
				if len(ctx.Characters) != len(story.KeyCharacters) {
					t.Errorf("characters = %d, want %d", len(ctx.Characters), len(story.KeyCharacters))
				}
				for i, c := range story.KeyCharacters {
					if ctx.Characters[i].OriginalName != c.Name {
						t.Errorf("character %d = %q, want %q", i, ctx.Characters[i].OriginalName, c.Name)
					}
				}
				if len(ctx.PreservationRequirements) != len(story.CoreThemes)+1 {
					t.Errorf("requirements = %d, want %d", len(ctx.PreservationRequirements), len(story.CoreThemes)+1)
				}
			})
		}
	}
}

func TestBuildFromKeysNotFound(t *testing.T) {
	cat, err := catalog.Default(context.Background())
	if err != nil {
		t.Fatalf("catalog.Default() error = %v", err)
	}
	b := NewBuilder(cat)

	tests := []struct {
		name     string
		story    string
		world    string
		resource string
	}{
		{"unknown story", "macbeth", "space_colony", "story"},
		{"unknown world", "hamlet", "atlantis", "world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.BuildFromKeys(context.Background(), tt.story, tt.world)
			var nf *core.NotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("error = %v, want *core.NotFoundError", err)
			}
			if nf.Resource != tt.resource {
				t.Errorf("Resource = %q, want %q", nf.Resource, tt.resource)
			}
		})
	}
}
