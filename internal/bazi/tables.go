// Package bazi derives four-pillar (四柱) stem-branch charts from birth
// timestamps and maps them onto the five-element cycle. All tables are fixed
// process-wide constants.
package bazi

// Element is one of the five phases (五行).
type Element string

const (
	Metal Element = "金"
	Wood  Element = "木"
	Water Element = "水"
	Fire  Element = "火"
	Earth Element = "土"
)

// ElementOrder is the canonical display order.
var ElementOrder = [5]Element{Metal, Wood, Water, Fire, Earth}

// Stems are the ten heavenly stems (天干).
var Stems = [10]string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}

// Branches are the twelve earthly branches (地支).
var Branches = [12]string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}

var stemElement = map[string]Element{
	"甲": Wood, "乙": Wood,
	"丙": Fire, "丁": Fire,
	"戊": Earth, "己": Earth,
	"庚": Metal, "辛": Metal,
	"壬": Water, "癸": Water,
}

var branchElement = map[string]Element{
	"寅": Wood, "卯": Wood,
	"巳": Fire, "午": Fire,
	"辰": Earth, "丑": Earth, "未": Earth, "戌": Earth,
	"申": Metal, "酉": Metal,
	"亥": Water, "子": Water,
}

// firstTermOfMonth names the solar term opening each civil month; the month
// branch switches at that term, not at the first of the month.
var firstTermOfMonth = [13]string{
	1:  "小寒",
	2:  "立春",
	3:  "惊蛰",
	4:  "清明",
	5:  "立夏",
	6:  "芒种",
	7:  "小暑",
	8:  "立秋",
	9:  "白露",
	10: "寒露",
	11: "立冬",
	12: "大雪",
}

var termBranch = map[string]string{
	"立春": "寅", "惊蛰": "卯", "清明": "辰", "立夏": "巳",
	"芒种": "午", "小暑": "未", "立秋": "申", "白露": "酉",
	"寒露": "戌", "立冬": "亥", "大雪": "子", "小寒": "丑",
}

// termBaseDay2000 holds each solar term's mean day-of-month in the year 2000,
// the anchor of the approximate term-date formula.
var termBaseDay2000 = map[string]int{
	"小寒": 6, "大寒": 20, "立春": 4, "雨水": 19,
	"惊蛰": 6, "春分": 21, "清明": 5, "谷雨": 20,
	"立夏": 6, "小满": 21, "芒种": 6, "夏至": 21,
	"小暑": 7, "大暑": 23, "立秋": 8, "处暑": 23,
	"白露": 8, "秋分": 23, "寒露": 8, "霜降": 24,
	"立冬": 7, "小雪": 22, "大雪": 7, "冬至": 22,
}

var termMonth = map[string]int{
	"小寒": 1, "大寒": 1, "立春": 2, "雨水": 2,
	"惊蛰": 3, "春分": 3, "清明": 4, "谷雨": 4,
	"立夏": 5, "小满": 5, "芒种": 6, "夏至": 6,
	"小暑": 7, "大暑": 7, "立秋": 8, "处暑": 8,
	"白露": 9, "秋分": 9, "寒露": 10, "霜降": 10,
	"立冬": 11, "小雪": 11, "大雪": 12, "冬至": 12,
}

// solsticeTerms drift roughly half as fast as the other terms.
var solsticeTerms = map[string]bool{
	"春分": true, "秋分": true, "夏至": true, "冬至": true,
}

// monthStemStart maps the year-stem index to the stem index of the 寅 month
// (五虎遁: 甲己起丙, 乙庚起戊, 丙辛起庚, 丁壬起壬, 戊癸起甲).
var monthStemStart = [10]int{
	0: 2, 5: 2,
	1: 4, 6: 4,
	2: 6, 7: 6,
	3: 8, 8: 8,
	4: 0, 9: 0,
}

// hourStemStart maps the day-stem index to the stem index of the 子 hour
// (五鼠遁: 甲己起甲, 乙庚起丙, 丙辛起戊, 丁壬起庚, 戊癸起壬).
var hourStemStart = [10]int{
	0: 0, 5: 0,
	1: 2, 6: 2,
	2: 4, 7: 4,
	3: 6, 8: 6,
	4: 8, 9: 8,
}

// StemElement returns the element associated with a heavenly stem.
func StemElement(stem string) (Element, bool) {
	e, ok := stemElement[stem]
	return e, ok
}

// BranchElement returns the element associated with an earthly branch.
func BranchElement(branch string) (Element, bool) {
	e, ok := branchElement[branch]
	return e, ok
}
