package domain

// Role is a character's narrative function. Values outside the closed set are
// kept verbatim and treated as unrecognized.
type Role string

const (
	RoleProtagonist Role = "protagonist"
	RoleAntagonist  Role = "antagonist"
	RoleCatalyst    Role = "catalyst"
	RoleHelper      Role = "helper"
	RoleVictim      Role = "victim"
	RoleMentor      Role = "mentor"
)

// KnownRoles lists the closed role set in a stable order.
var KnownRoles = []Role{
	RoleProtagonist,
	RoleAntagonist,
	RoleCatalyst,
	RoleHelper,
	RoleVictim,
	RoleMentor,
}

// Known reports whether r is part of the closed role set.
func (r Role) Known() bool {
	for _, k := range KnownRoles {
		if r == k {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Sequence names which ordered list of a World a position slice reads from.
type Sequence int

const (
	SocialHierarchy Sequence = iota
	PowerStructures
)

func (s Sequence) String() string {
	if s == PowerStructures {
		return "power_structures"
	}
	return "social_hierarchy"
}

// PositionSlice is a bounded window over one World sequence. Start may be
// negative to count from the end; End is ignored when Open is set.
type PositionSlice struct {
	Source Sequence
	Start  int
	End    int
	Open   bool
}

// Positions returns the slice of world positions a role is suggested to occupy.
// Unrecognized roles fall back to the whole social hierarchy.
func (r Role) Positions() PositionSlice {
	switch r {
	case RoleProtagonist:
		return PositionSlice{Source: SocialHierarchy, Start: 1, End: 3}
	case RoleAntagonist:
		return PositionSlice{Source: PowerStructures, Start: 0, End: 2}
	case RoleCatalyst:
		return PositionSlice{Source: SocialHierarchy, Start: 2, End: 4}
	case RoleHelper:
		return PositionSlice{Source: PowerStructures, Start: 2, Open: true}
	case RoleVictim:
		return PositionSlice{Source: SocialHierarchy, Start: -2, Open: true}
	case RoleMentor:
		return PositionSlice{Source: PowerStructures, Start: 1, End: 3}
	default:
		return PositionSlice{Source: SocialHierarchy, Start: 0, Open: true}
	}
}

// Apply selects the slice from w. Bounds are clamped, so a short sequence
// yields a short or empty result rather than an error. The result never
// aliases the world's backing array.
func (p PositionSlice) Apply(w World) []string {
	seq := w.SocialHierarchy
	if p.Source == PowerStructures {
		seq = w.PowerStructures
	}

	n := len(seq)
	start := clampIndex(p.Start, n)
	end := n
	if !p.Open {
		end = clampIndex(p.End, n)
	}
	if start >= end {
		return []string{}
	}

	out := make([]string, end-start)
	copy(out, seq[start:end])
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
	}
	if i > n {
		return n
	}
	return i
}
