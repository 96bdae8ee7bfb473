package narrative

import (
	"strings"
	"testing"

	"github.com/feifeixp/neocore-go/internal/domain"
)

func TestGenerateNameUsesEraPools(t *testing.T) {
	sel := NewIndexedSelector(0)

	name := GenerateName(domain.EraAncient, domain.GenderMale, sel)
	if name != "李风" {
		t.Fatalf("expected 李风 from indexed draws 0,1, got %s", name)
	}

	sel = NewIndexedSelector(0)
	name = GenerateName(domain.EraFuture, domain.GenderFemale, sel)
	if !strings.HasPrefix(name, "电子") {
		t.Fatalf("future surname pool not used: %s", name)
	}
}

func TestGenerateSkillsDistinct(t *testing.T) {
	for _, era := range domain.Eras {
		sel := NewRandomSelector(42)
		for trial := 0; trial < 50; trial++ {
			skills := GenerateSkills(era, sel)
			if len(skills) != 3 {
				t.Fatalf("%s: expected 3 skills, got %d", era, len(skills))
			}
			seen := map[string]bool{}
			for _, s := range skills {
				if seen[s] {
					t.Fatalf("%s: duplicate skill %s in %v", era, s, skills)
				}
				seen[s] = true
			}
			pool := SkillPool(era)
			for _, s := range skills {
				found := false
				for _, p := range pool {
					if p == s {
						found = true
						break
					}
				}
				if !found {
					t.Fatalf("%s: skill %s not in era pool", era, s)
				}
			}
		}
	}
}

func TestGenerateSkillsIndexedDoesNotStall(t *testing.T) {
	// An indexed selector stuck on one value must still produce three
	// distinct skills.
	sel := &stuckSelector{value: 4}
	skills := GenerateSkills(domain.EraModern, sel)
	if len(skills) != 3 {
		t.Fatalf("expected 3 skills, got %v", skills)
	}
	if skills[0] == skills[1] || skills[1] == skills[2] {
		t.Fatalf("expected distinct skills, got %v", skills)
	}
}

type stuckSelector struct{ value int }

func (s *stuckSelector) Intn(n int) int { return s.value % n }

func TestGenerateAttributesRange(t *testing.T) {
	sel := NewRandomSelector(7)
	for trial := 0; trial < 100; trial++ {
		attrs := GenerateAttributes(sel)
		for name, v := range map[string]int{
			"strength":     attrs.Strength,
			"intelligence": attrs.Intelligence,
			"charisma":     attrs.Charisma,
		} {
			if v < 50 || v > 100 {
				t.Fatalf("%s out of range: %d", name, v)
			}
		}
	}
}

func TestRandomSelectorSeedIsDeterministic(t *testing.T) {
	a := NewRandomSelector(99)
	b := NewRandomSelector(99)
	for i := 0; i < 20; i++ {
		if x, y := a.Intn(1000), b.Intn(1000); x != y {
			t.Fatalf("draw %d: %d != %d", i, x, y)
		}
	}
}
