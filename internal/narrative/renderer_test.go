package narrative

import (
	"strings"
	"testing"
	"time"

	"github.com/feifeixp/neocore-go/internal/bazi"
	"github.com/feifeixp/neocore-go/internal/domain"
)

func fixtureRecord() domain.CharacterRecord {
	birth := time.Date(1984, time.June, 30, 22, 0, 0, 0, time.UTC)
	chart := bazi.Compute(birth)
	return domain.CharacterRecord{
		Metadata: domain.CharacterMeta{
			SoulID:    "SOUL-0A1B2C",
			WorldID:   "TDP-deadbeef-2026",
			Name:      "李云",
			Gender:    domain.GenderMale,
			Era:       domain.EraAncient,
			BirthTime: birth,
			CreatedAt: time.Date(2026, time.August, 29, 10, 0, 0, 0, time.UTC),
		},
		Chart:    chart,
		Elements: bazi.CountElements(chart),
		Skills:   []string{"内功心法", "剑术精通", "丹道修炼"},
		Attributes: domain.Attributes{
			Strength: 88, Intelligence: 73, Charisma: 61,
		},
	}
}

func TestRenderDescriptionSections(t *testing.T) {
	doc := RenderDescription(fixtureRecord(), "测试世界")

	for _, want := range []string{
		"# 李云 的角色分析",
		"## 基本信息",
		"- 性别：男",
		"- 出生时间：1984-06-30T22:00:00",
		"- 纪元：修真纪元",
		"- 八字：甲子庚午乙未丁亥",
		"### 八字结构",
		"### 五行分布",
		"```mermaid",
		"title 五行力量分布",
		"section 幼年期",
		"启蒙教育 : 展现早慧",
		"- 内功心法",
		"- 攻击：88",
		"- 智力：73",
		"## 与世界的互动",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("rendered document missing %q", want)
		}
	}
}

func TestRenderDescriptionPillarCells(t *testing.T) {
	doc := RenderDescription(fixtureRecord(), "测试世界")

	for _, want := range []string{
		"<td style='background-color:#f9f9ff;text-align:center;font-weight:bold;'>甲子</td>",
		"<td style='background-color:#e6e6ff;text-align:center;font-weight:bold;'>庚午</td>",
		"<td style='background-color:#e6ffe6;text-align:center;font-weight:bold;'>乙未</td>",
		"<td style='background-color:#ffe6ff;text-align:center;font-weight:bold;'>丁亥</td>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("pillar table missing cell %q", want)
		}
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	rec := fixtureRecord()
	doc := RenderDescription(rec, "测试世界")

	parsed, err := ParseDescription(doc)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if parsed.Sizhu != rec.Chart.Sizhu() {
		t.Errorf("sizhu: expected %s, got %s", rec.Chart.Sizhu(), parsed.Sizhu)
	}

	pillars := rec.Chart.Pillars()
	for i := range pillars {
		if parsed.Pillars[i] != pillars[i].String() {
			t.Errorf("pillar %d: expected %s, got %s", i, pillars[i], parsed.Pillars[i])
		}
	}

	for _, el := range bazi.ElementOrder {
		if parsed.Counts[el] != rec.Elements.Counts[el] {
			t.Errorf("count %s: expected %d, got %d", el, rec.Elements.Counts[el], parsed.Counts[el])
		}
		if parsed.Percentages[el] != rec.Elements.Percentages[el] {
			t.Errorf("percentage %s: expected %d, got %d", el, rec.Elements.Percentages[el], parsed.Percentages[el])
		}
	}
}

func TestParseDescriptionRejectsPlainText(t *testing.T) {
	if _, err := ParseDescription("# 没有表格的文档\n普通段落而已。\n"); err == nil {
		t.Fatal("expected an error for a document without tables")
	}
}

func TestRenderWorldDescription(t *testing.T) {
	world := domain.World{
		ID:        "TDP-cafe0123-2026",
		Name:      "三纪元试验场",
		CreatedAt: time.Date(2026, time.January, 5, 9, 30, 0, 0, time.UTC),
		Checksum:  "A1B2",
	}

	doc := RenderWorldDescription(world)
	for _, want := range []string{
		"# 世界实例：三纪元试验场",
		"- 世界ID：TDP-cafe0123-2026",
		"- 校验码：A1B2",
		"### 修真纪元",
		"### 现代纪元",
		"### 未来纪元",
		"灵气复苏，道法自然",
		"星际殖民，量子革命",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("world document missing %q", want)
		}
	}
}
