package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/feifeixp/neocore-go/internal/bazi"
	"github.com/feifeixp/neocore-go/internal/domain"
	"github.com/feifeixp/neocore-go/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func testWorld() domain.World {
	return domain.World{
		ID:        "TDP-1a2b3c4d-2026",
		Name:      "测试世界",
		CreatedAt: time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC),
		Checksum:  "A1B2",
	}
}

func testCharacter(worldID string) domain.CharacterRecord {
	birth := time.Date(1984, time.June, 30, 22, 0, 0, 0, time.UTC)
	chart := bazi.Compute(birth)
	return domain.CharacterRecord{
		Metadata: domain.CharacterMeta{
			SoulID:    "SOUL-0A1B2C",
			WorldID:   worldID,
			Name:      "李云",
			Gender:    domain.GenderMale,
			Era:       domain.EraAncient,
			BirthTime: birth,
			CreatedAt: time.Now().UTC(),
		},
		Chart:      chart,
		Elements:   bazi.CountElements(chart),
		Skills:     []string{"内功心法", "剑术精通", "丹道修炼"},
		Attributes: domain.Attributes{Strength: 80, Intelligence: 70, Charisma: 60},
	}
}

func TestCreateWorldLayout(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	world := testWorld()

	if err := store.CreateWorld(ctx, world, "# 世界\n"); err != nil {
		t.Fatalf("CreateWorld failed: %v", err)
	}

	dir := filepath.Join(store.baseDir, "worlds", world.ID)
	for _, name := range []string{"world_metadata.json", "world_description.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "characters")); err != nil {
		t.Errorf("expected characters directory: %v", err)
	}

	loaded, err := store.GetWorld(ctx, world.ID)
	if err != nil {
		t.Fatalf("GetWorld failed: %v", err)
	}
	if loaded.Name != world.Name || loaded.Checksum != world.Checksum {
		t.Fatalf("round-trip mismatch: %+v", loaded)
	}
}

func TestGetWorldNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetWorld(context.Background(), "TDP-ffffffff-1999")
	var nf *errors.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.StatusCode != 404 {
		t.Fatalf("expected status 404, got %d", nf.StatusCode)
	}
}

func TestMalformedIDsNeverReachDisk(t *testing.T) {
	base := t.TempDir()
	store, err := NewStore(base, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	ctx := context.Background()

	// a metadata file planted outside the worlds tree must stay unreachable
	outside := filepath.Join(base, "secret")
	if err := os.MkdirAll(outside, 0o755); err != nil {
		t.Fatal(err)
	}
	planted := []byte(`{"id":"LEAKED","name":"leaked"}`)
	if err := os.WriteFile(filepath.Join(outside, "world_metadata.json"), planted, 0o644); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"../secret", "..", ".", "TDP-..-2026", "TDP-1A2B3C4D-2026", "tdp-1a2b3c4d-2026", ""} {
		_, err := store.GetWorld(ctx, id)
		var nf *errors.NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("GetWorld(%q): expected NotFoundError, got %v", id, err)
		}
	}

	world := testWorld()
	if err := store.CreateWorld(ctx, world, "# 世界\n"); err != nil {
		t.Fatalf("CreateWorld failed: %v", err)
	}
	for _, soulID := range []string{"../../secret/world_metadata", "SOUL-0a1b2c", "SOUL-0A1B2C7", ""} {
		_, err := store.GetCharacter(ctx, world.ID, soulID)
		var nf *errors.NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("GetCharacter(%q): expected NotFoundError, got %v", soulID, err)
		}
		if _, err := store.GetCharacterDescription(ctx, world.ID, soulID); !errors.As(err, &nf) {
			t.Errorf("GetCharacterDescription(%q): expected NotFoundError, got %v", soulID, err)
		}
	}
}

func TestSaveAndGetCharacter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	world := testWorld()

	if err := store.CreateWorld(ctx, world, "# 世界\n"); err != nil {
		t.Fatalf("CreateWorld failed: %v", err)
	}

	rec := testCharacter(world.ID)
	if err := store.SaveCharacter(ctx, rec, "# 李云 的角色分析\n"); err != nil {
		t.Fatalf("SaveCharacter failed: %v", err)
	}

	loaded, err := store.GetCharacter(ctx, world.ID, rec.Metadata.SoulID)
	if err != nil {
		t.Fatalf("GetCharacter failed: %v", err)
	}
	if loaded.Metadata.Name != "李云" || loaded.Chart.Sizhu() != rec.Chart.Sizhu() {
		t.Fatalf("round-trip mismatch: %+v", loaded.Metadata)
	}

	desc, err := store.GetCharacterDescription(ctx, world.ID, rec.Metadata.SoulID)
	if err != nil {
		t.Fatalf("GetCharacterDescription failed: %v", err)
	}
	if desc != "# 李云 的角色分析\n" {
		t.Fatalf("unexpected description: %q", desc)
	}

	// world metadata must now reference the character
	updated, err := store.GetWorld(ctx, world.ID)
	if err != nil {
		t.Fatalf("GetWorld failed: %v", err)
	}
	if len(updated.Characters) != 1 || updated.Characters[0] != rec.Metadata.SoulID {
		t.Fatalf("world character list not updated: %v", updated.Characters)
	}
}

func TestSaveCharacterTwiceIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	world := testWorld()

	if err := store.CreateWorld(ctx, world, ""); err != nil {
		t.Fatalf("CreateWorld failed: %v", err)
	}

	rec := testCharacter(world.ID)
	for i := 0; i < 2; i++ {
		if err := store.SaveCharacter(ctx, rec, "doc"); err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
	}

	updated, _ := store.GetWorld(ctx, world.ID)
	if len(updated.Characters) != 1 {
		t.Fatalf("expected one character entry, got %v", updated.Characters)
	}
}

func TestSaveCharacterUnknownWorld(t *testing.T) {
	store := newTestStore(t)

	rec := testCharacter("TDP-00000000-2000")
	err := store.SaveCharacter(context.Background(), rec, "doc")
	var nf *errors.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestListWorlds(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	names := map[string]string{
		"TDP-aaaaaaaa-2026": "甲世界",
		"TDP-bbbbbbbb-2026": "乙世界",
		"TDP-cccccccc-2026": "丙世界",
	}
	for id, name := range names {
		world := domain.World{ID: id, Name: name, CreatedAt: time.Now().UTC(), Checksum: "0000"}
		if err := store.CreateWorld(ctx, world, ""); err != nil {
			t.Fatalf("CreateWorld %s failed: %v", id, err)
		}
	}

	// a stray directory without metadata must be skipped, not fail the list
	if err := os.MkdirAll(filepath.Join(store.baseDir, "worlds", "not-a-world"), 0o755); err != nil {
		t.Fatal(err)
	}

	worlds, err := store.ListWorlds(ctx)
	if err != nil {
		t.Fatalf("ListWorlds failed: %v", err)
	}
	if len(worlds) != 3 {
		t.Fatalf("expected 3 worlds, got %d", len(worlds))
	}
	for i := 1; i < len(worlds); i++ {
		if worlds[i-1].ID > worlds[i].ID {
			t.Fatalf("worlds not sorted: %v", worlds)
		}
	}
	for _, w := range worlds {
		if names[w.ID] != w.Name {
			t.Errorf("world %s: expected name %s, got %s", w.ID, names[w.ID], w.Name)
		}
	}
}

func TestListCharacters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	world := testWorld()

	if err := store.CreateWorld(ctx, world, ""); err != nil {
		t.Fatalf("CreateWorld failed: %v", err)
	}

	first := testCharacter(world.ID)
	second := testCharacter(world.ID)
	second.Metadata.SoulID = "SOUL-FFEEDD"
	second.Metadata.Name = "张伟"
	second.Metadata.Era = domain.EraModern

	for _, rec := range []domain.CharacterRecord{first, second} {
		if err := store.SaveCharacter(ctx, rec, "doc"); err != nil {
			t.Fatalf("SaveCharacter failed: %v", err)
		}
	}

	list, err := store.ListCharacters(ctx, world.ID)
	if err != nil {
		t.Fatalf("ListCharacters failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 characters, got %d", len(list))
	}
	if list[0].ID != first.Metadata.SoulID || list[1].ID != second.Metadata.SoulID {
		t.Fatalf("creation order not preserved: %v", list)
	}
	if list[1].Era != domain.EraModern {
		t.Fatalf("era not carried into summary: %v", list[1])
	}
}

func TestIDFormats(t *testing.T) {
	now := time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC)

	worldRe := regexp.MustCompile(`^TDP-[0-9a-f]{8}-2026$`)
	soulRe := regexp.MustCompile(`^SOUL-[0-9A-F]{6}$`)
	sumRe := regexp.MustCompile(`^[0-9A-F]{4}$`)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		wid := NewWorldID(now)
		if !worldRe.MatchString(wid) {
			t.Fatalf("bad world ID: %s", wid)
		}
		sid := NewSoulID()
		if !soulRe.MatchString(sid) {
			t.Fatalf("bad soul ID: %s", sid)
		}
		if !sumRe.MatchString(NewChecksum()) {
			t.Fatalf("bad checksum: %s", NewChecksum())
		}
		if seen[wid] {
			t.Fatalf("world ID collision: %s", wid)
		}
		seen[wid] = true
	}
}
