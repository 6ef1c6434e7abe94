package domain

// Story is a source narrative loaded from the catalog. It is never mutated after load.
type Story struct {
	Title           string      `json:"title" yaml:"title" validate:"required"`
	Author          string      `json:"author" yaml:"author"`
	Era             string      `json:"era" yaml:"era"`
	CoreThemes      []string    `json:"core_themes" yaml:"core_themes" validate:"dive,required"`
	EmotionalCore   string      `json:"emotional_core" yaml:"emotional_core" validate:"required"`
	CentralConflict string      `json:"central_conflict" yaml:"central_conflict" validate:"required"`
	KeyCharacters   []Character `json:"key_characters" yaml:"key_characters" validate:"dive"`
	PlotBeats       []string    `json:"plot_beats" yaml:"plot_beats" validate:"dive,required"`
}

type Character struct {
	Name   string   `json:"name" yaml:"name" validate:"required"`
	Role   Role     `json:"role" yaml:"role" validate:"required"`
	Traits []string `json:"traits" yaml:"traits"`
	Arc    string   `json:"arc" yaml:"arc"`
}

// World is a target setting loaded from the catalog.
type World struct {
	Name            string   `json:"name" yaml:"name" validate:"required"`
	Era             string   `json:"era" yaml:"era"`
	Setting         string   `json:"setting" yaml:"setting"`
	Aesthetic       string   `json:"aesthetic" yaml:"aesthetic"`
	TechnologyLevel string   `json:"technology_level" yaml:"technology_level"`
	SocialHierarchy []string `json:"social_hierarchy" yaml:"social_hierarchy"`
	PowerStructures []string `json:"power_structures" yaml:"power_structures"`
	Conflicts       []string `json:"conflicts" yaml:"conflicts"`
	Values          []string `json:"values" yaml:"values"`
	Taboos          []string `json:"taboos" yaml:"taboos"`
	Communication   []string `json:"communication" yaml:"communication"`
}
