package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var fiveTierWorld = World{
	Name:            "Silicon Valley",
	SocialHierarchy: []string{"intern", "engineer", "lead", "VP", "founder"},
	PowerStructures: []string{"board", "investors", "press", "regulators"},
}

func TestRolePositions(t *testing.T) {
	tests := []struct {
		role Role
		want []string
	}{
		{RoleProtagonist, []string{"engineer", "lead"}},
		{RoleAntagonist, []string{"board", "investors"}},
		{RoleCatalyst, []string{"lead", "VP"}},
		{RoleHelper, []string{"press", "regulators"}},
		{RoleVictim, []string{"VP", "founder"}},
		{RoleMentor, []string{"investors", "press"}},
		{Role("sidekick"), []string{"intern", "engineer", "lead", "VP", "founder"}},
		{Role(""), []string{"intern", "engineer", "lead", "VP", "founder"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got := tt.role.Positions().Apply(fiveTierWorld)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Positions().Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPositionsTolerateShortWorlds(t *testing.T) {
	short := World{
		Name:            "Hamlet",
		SocialHierarchy: []string{"villager"},
		PowerStructures: nil,
	}

	tests := []struct {
		role Role
		want []string
	}{
		{RoleProtagonist, []string{}},
		{RoleAntagonist, []string{}},
		{RoleCatalyst, []string{}},
		{RoleHelper, []string{}},
		{RoleVictim, []string{"villager"}},
		{RoleMentor, []string{}},
		{Role("stranger"), []string{"villager"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got := tt.role.Positions().Apply(short)
			if got == nil {
				t.Fatal("Apply() returned nil, want empty slice")
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyDoesNotAlias(t *testing.T) {
	got := RoleProtagonist.Positions().Apply(fiveTierWorld)
	got[0] = "changed"

	if fiveTierWorld.SocialHierarchy[1] != "engineer" {
		t.Errorf("world hierarchy mutated through suggestion slice: %v", fiveTierWorld.SocialHierarchy)
	}
}

func TestRoleKnown(t *testing.T) {
	for _, r := range KnownRoles {
		if !r.Known() {
			t.Errorf("%q.Known() = false, want true", r)
		}
	}
	if Role("sidekick").Known() {
		t.Error(`"sidekick".Known() = true, want false`)
	}
}
