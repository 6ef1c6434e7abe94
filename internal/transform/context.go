// Package transform derives the TransformationContext that every prompt stage
// reads from. Everything here is a pure function of the loaded records.
package transform

import (
	"context"
	"fmt"

	"github.com/vampirenirmal/storyshift/internal/domain"
)

// Source resolves catalog keys. catalog.Catalog satisfies it.
type Source interface {
	Story(ctx context.Context, key string) (domain.Story, error)
	World(ctx context.Context, key string) (domain.World, error)
}

// Builder builds contexts from catalog keys.
type Builder struct {
	source Source
}

func NewBuilder(source Source) *Builder {
	return &Builder{source: source}
}

// BuildFromKeys resolves both keys and builds the context. Lookup errors are
// returned unwrapped so callers can inspect the available keys.
func (b *Builder) BuildFromKeys(ctx context.Context, storyKey, worldKey string) (domain.TransformationContext, error) {
	story, err := b.source.Story(ctx, storyKey)
	if err != nil {
		return domain.TransformationContext{}, err
	}
	world, err := b.source.World(ctx, worldKey)
	if err != nil {
		return domain.TransformationContext{}, err
	}
	return Build(story, world), nil
}

// Build maps story onto world. Character and beat order follow the story.
func Build(story domain.Story, world domain.World) domain.TransformationContext {
	characters := make([]domain.CharacterMapping, 0, len(story.KeyCharacters))
	for _, c := range story.KeyCharacters {
		characters = append(characters, MapCharacter(c, world))
	}

	return domain.TransformationContext{
		Source: domain.SourceSummary{
			Title:         story.Title,
			Author:        story.Author,
			Era:           story.Era,
			Themes:        cloneStrings(story.CoreThemes),
			EmotionalCore: story.EmotionalCore,
		},
		Target: domain.WorldSummary{
			Name:       world.Name,
			Era:        world.Era,
			Setting:    world.Setting,
			Aesthetic:  world.Aesthetic,
			Technology: world.TechnologyLevel,
		},
		Characters:               characters,
		Conflict:                 MapConflict(story.CentralConflict, world),
		PlotBeats:                MapPlotBeats(story.PlotBeats, world),
		PreservationRequirements: PreservationRequirements(story),
	}
}

// MapCharacter suggests world positions for c based on its role.
func MapCharacter(c domain.Character, world domain.World) domain.CharacterMapping {
	return domain.CharacterMapping{
		OriginalName:       c.Name,
		OriginalRole:       c.Role,
		OriginalTraits:     cloneStrings(c.Traits),
		OriginalArc:        c.Arc,
		SuggestedPositions: c.Role.Positions().Apply(world),
		WorldContext:       world.Name,
	}
}

func MapConflict(conflict string, world domain.World) domain.ConflictMapping {
	return domain.ConflictMapping{
		OriginalConflict: conflict,
		WorldConflicts:   cloneStrings(world.Conflicts),
		WorldValues:      cloneStrings(world.Values),
		WorldTaboos:      cloneStrings(world.Taboos),
	}
}

// MapPlotBeats pairs every beat with the world's texture, one mapping per beat.
func MapPlotBeats(beats []string, world domain.World) []domain.PlotBeatMapping {
	out := make([]domain.PlotBeatMapping, 0, len(beats))
	for _, beat := range beats {
		out = append(out, domain.PlotBeatMapping{
			OriginalBeat:         beat,
			CommunicationMethods: cloneStrings(world.Communication),
			PowerStructures:      cloneStrings(world.PowerStructures),
			SettingAesthetic:     world.Aesthetic,
		})
	}
	return out
}

// PreservationRequirements yields one entry per theme plus one for the emotional core.
func PreservationRequirements(story domain.Story) []string {
	reqs := make([]string, 0, len(story.CoreThemes)+1)
	for _, theme := range story.CoreThemes {
		reqs = append(reqs, fmt.Sprintf("MUST preserve theme: %s", theme))
	}
	return append(reqs, fmt.Sprintf("MUST preserve emotional core: %s", story.EmotionalCore))
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
