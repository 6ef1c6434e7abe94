package domain

// Mapping records are derived once per pipeline run and never modified afterwards.

type CharacterMapping struct {
	OriginalName       string   `json:"original_name" validate:"required"`
	OriginalRole       Role     `json:"original_role" validate:"required"`
	OriginalTraits     []string `json:"original_traits"`
	OriginalArc        string   `json:"original_arc" validate:"required"`
	SuggestedPositions []string `json:"suggested_new_positions"`
	WorldContext       string   `json:"world_context" validate:"required"`
}

type ConflictMapping struct {
	OriginalConflict string   `json:"original_conflict" validate:"required"`
	WorldConflicts   []string `json:"available_world_conflicts"`
	WorldValues      []string `json:"world_values_to_leverage"`
	WorldTaboos      []string `json:"world_taboos_to_violate"`
}

type PlotBeatMapping struct {
	OriginalBeat         string   `json:"original_beat" validate:"required"`
	CommunicationMethods []string `json:"communication_methods"`
	PowerStructures      []string `json:"power_structures"`
	SettingAesthetic     string   `json:"setting_aesthetic"`
}

type SourceSummary struct {
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Era           string   `json:"original_era"`
	Themes        []string `json:"themes"`
	EmotionalCore string   `json:"emotional_core"`
}

type WorldSummary struct {
	Name       string `json:"name"`
	Era        string `json:"era"`
	Setting    string `json:"setting"`
	Aesthetic  string `json:"aesthetic"`
	Technology string `json:"technology"`
}

// TransformationContext aggregates everything the prompt stages need.
type TransformationContext struct {
	Source                   SourceSummary      `json:"source_story"`
	Target                   WorldSummary       `json:"target_world"`
	Characters               []CharacterMapping `json:"character_mappings"`
	Conflict                 ConflictMapping    `json:"conflict_mapping"`
	PlotBeats                []PlotBeatMapping  `json:"plot_structure"`
	PreservationRequirements []string           `json:"preservation_requirements"`
}
