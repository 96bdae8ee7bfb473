package narrative

import (
	"fmt"
	"strings"

	"github.com/feifeixp/neocore-go/internal/bazi"
	"github.com/feifeixp/neocore-go/internal/domain"
)

// Cell backgrounds for the four pillar columns, year through hour.
var pillarCellColors = [4]string{"#f9f9ff", "#e6e6ff", "#e6ffe6", "#ffe6ff"}

var elementCellColors = map[bazi.Element]string{
	bazi.Metal: "#FFD700",
	bazi.Wood:  "#90EE90",
	bazi.Water: "#87CEFA",
	bazi.Fire:  "#FF6347",
	bazi.Earth: "#D2B48C",
}

// lifeStage is one section of the biography timeline.
type lifeStage struct {
	name       string
	milestones [2][2]string
}

var lifeStages = []lifeStage{
	{"幼年期", [2][2]string{{"启蒙教育", "展现早慧"}, {"特殊天赋", "初显才能"}}},
	{"青年期", [2][2]string{{"专业训练", "能力提升"}, {"重要抉择", "人生转折"}}},
	{"中年期", [2][2]string{{"事业高峰", "成就卓著"}, {"人际网络", "广结善缘"}}},
	{"晚年期", [2][2]string{{"经验传承", "培养后辈"}, {"圆满人生", "功成名就"}}},
}

// RenderDescription builds the full Markdown character document: basic info,
// the chart table, element distribution charts, skills and attributes, and
// the era-flavored biography.
func RenderDescription(rec domain.CharacterRecord, worldName string) string {
	meta := rec.Metadata
	var b strings.Builder

	fmt.Fprintf(&b, "# %s 的角色分析\n", meta.Name)

	b.WriteString("\n## 基本信息\n")
	fmt.Fprintf(&b, "- 性别：%s\n", meta.Gender.Title())
	fmt.Fprintf(&b, "- 出生时间：%s\n", meta.BirthTime.Format(domain.BirthTimeLayout))
	fmt.Fprintf(&b, "- 纪元：%s\n", meta.Era.Title())
	fmt.Fprintf(&b, "- 所属世界：%s（%s）\n", worldName, meta.WorldID)

	b.WriteString("\n## 八字信息\n")
	fmt.Fprintf(&b, "- 八字：%s\n", rec.Chart.Sizhu())

	b.WriteString("\n### 八字结构\n")
	writePillarTable(&b, rec.Chart)

	b.WriteString("\n### 五行分布\n")
	writeElementsPie(&b, rec.Elements)
	writeElementsTable(&b, rec.Elements)

	b.WriteString("\n## 技能\n")
	for _, skill := range rec.Skills {
		fmt.Fprintf(&b, "- %s\n", skill)
	}

	b.WriteString("\n## 属性\n")
	fmt.Fprintf(&b, "- 攻击：%d\n", rec.Attributes.Strength)
	fmt.Fprintf(&b, "- 防御：%d\n", rec.Attributes.Charisma)
	fmt.Fprintf(&b, "- 智力：%d\n", rec.Attributes.Intelligence)

	b.WriteString("\n## 人生轨迹\n")
	writeTimeline(&b)

	b.WriteString("\n## 与世界的互动\n")
	fmt.Fprintf(&b,
		"在%s的背景下，%s能够很好地适应和影响周围的环境。主导五行为%s，这使%s在这个世界中能够发挥出独特的作用。\n",
		meta.Era.Title(), meta.Name, rec.Elements.Dominant(), meta.Name)

	return b.String()
}

func writePillarTable(b *strings.Builder, chart bazi.Chart) {
	b.WriteString("<table>\n")
	b.WriteString("  <tr>\n")
	for _, h := range []string{"年柱", "月柱", "日柱", "时柱"} {
		fmt.Fprintf(b, "    <th>%s</th>\n", h)
	}
	b.WriteString("  </tr>\n")
	b.WriteString("  <tr>\n")
	for i, p := range chart.Pillars() {
		fmt.Fprintf(b, "    <td style='background-color:%s;text-align:center;font-weight:bold;'>%s</td>\n",
			pillarCellColors[i], p)
	}
	b.WriteString("  </tr>\n")
	b.WriteString("</table>\n")
}

func writeElementsPie(b *strings.Builder, tally bazi.Tally) {
	b.WriteString("```mermaid\n")
	b.WriteString("pie\n")
	b.WriteString("    title 五行力量分布\n")
	for _, el := range bazi.ElementOrder {
		fmt.Fprintf(b, "    \"%s\" : %d\n", el, tally.Percentages[el])
	}
	b.WriteString("```\n")
}

func writeElementsTable(b *strings.Builder, tally bazi.Tally) {
	b.WriteString("\n<details>\n")
	b.WriteString("<summary>五行分布详情（点击展开）</summary>\n")
	b.WriteString("<table>\n")
	b.WriteString("  <tr>\n")
	for _, el := range bazi.ElementOrder {
		fmt.Fprintf(b, "    <th>%s</th>\n", el)
	}
	b.WriteString("  </tr>\n")
	b.WriteString("  <tr>\n")
	for _, el := range bazi.ElementOrder {
		fmt.Fprintf(b, "    <td style='background-color:%s;text-align:center;'>%d (%d%%)</td>\n",
			elementCellColors[el], tally.Counts[el], tally.Percentages[el])
	}
	b.WriteString("  </tr>\n")
	b.WriteString("</table>\n")
	b.WriteString("</details>\n")
}

func writeTimeline(b *strings.Builder) {
	b.WriteString("```mermaid\n")
	b.WriteString("timeline\n")
	b.WriteString("    title 人生轨迹\n")
	for _, stage := range lifeStages {
		fmt.Fprintf(b, "    section %s\n", stage.name)
		for _, m := range stage.milestones {
			fmt.Fprintf(b, "        %s : %s\n", m[0], m[1])
		}
	}
	b.WriteString("```\n")
}

// RenderWorldDescription builds the Markdown document stored next to a
// world's metadata.
func RenderWorldDescription(world domain.World) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 世界实例：%s\n", world.Name)
	fmt.Fprintf(&b, "\n- 世界ID：%s\n", world.ID)
	fmt.Fprintf(&b, "- 创建时间：%s\n", world.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- 校验码：%s\n", world.Checksum)

	b.WriteString("\n## 纪元分布\n")
	for _, era := range domain.Eras {
		fmt.Fprintf(&b, "\n### %s\n", era.Title())
		for _, line := range eraLocations[era] {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	return b.String()
}

var eraLocations = map[domain.Era][]string{
	domain.EraAncient: {
		"灵气复苏，道法自然",
		"修真门派林立，仙家洞府遍布",
		"丹鼎阵法，符箓法器，无所不包",
	},
	domain.EraModern: {
		"科技发展，信息爆炸",
		"城市繁华，人流如织",
		"互联网络，人工智能，方兴未艾",
	},
	domain.EraFuture: {
		"星际殖民，量子革命",
		"虚拟现实，意识上传",
		"基因工程，纳米技术，无所不能",
	},
}
