package bazi

import (
	"math"
	"time"

	"github.com/feifeixp/neocore-go/internal/util"
)

// referenceLongitude is the meridian all birth times are corrected against
// (120°E, China standard time).
const referenceLongitude = 120.0

// dayPillarEpoch: 1900-01-01 was a 甲戌 day.
var dayPillarEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	epochStemIndex   = 0  // 甲
	epochBranchIndex = 10 // 戌
)

// Pillar is one stem-branch pair.
type Pillar struct {
	Stem   string `json:"stem"`
	Branch string `json:"branch"`
}

func (p Pillar) String() string {
	return p.Stem + p.Branch
}

// Chart holds the four pillars of a birth timestamp.
type Chart struct {
	Year  Pillar `json:"year"`
	Month Pillar `json:"month"`
	Day   Pillar `json:"day"`
	Hour  Pillar `json:"hour"`
}

// Pillars returns the pillars in year/month/day/hour order.
func (c Chart) Pillars() [4]Pillar {
	return [4]Pillar{c.Year, c.Month, c.Day, c.Hour}
}

// Sizhu returns the chart as the customary eight-character string.
func (c Chart) Sizhu() string {
	return c.Year.String() + c.Month.String() + c.Day.String() + c.Hour.String()
}

// Compute derives the four pillars for a birth timestamp. The same input
// always yields the same chart.
func Compute(birth time.Time) Chart {
	adjusted := trueSolarTime(birth, referenceLongitude)

	year := yearPillar(adjusted)
	month := monthPillar(adjusted, year.Stem)
	day := dayPillar(adjusted)
	hour := hourPillar(adjusted, day.Stem)

	return Chart{Year: year, Month: month, Day: day, Hour: hour}
}

// yearPillar anchors on 1984 = 甲子. The year boundary is 立春, not Jan 1.
func yearPillar(dt time.Time) Pillar {
	year := dt.Year()

	liChun := termDay(year, "立春")
	if int(dt.Month()) < 2 || (int(dt.Month()) == 2 && dt.Day() < liChun) {
		year--
	}

	offset := year - 1984
	return Pillar{
		Stem:   Stems[util.Mod(offset, 10)],
		Branch: Branches[util.Mod(offset, 12)],
	}
}

// termDay approximates the day-of-month a solar term falls on in a given
// year: anchored at 2000 and drifting about one day per four years (half that
// for equinoxes and solstices).
func termDay(year int, term string) int {
	base, ok := termBaseDay2000[term]
	if !ok {
		return 15
	}

	adjustment := util.FloorDiv(year-2000, 4)
	if solsticeTerms[term] {
		adjustment = util.FloorDiv(adjustment, 2)
	}

	day := util.Clamp(base-adjustment, 1, 31)

	month := termMonth[term]
	switch month {
	case 4, 6, 9, 11:
		day = util.Min(day, 30)
	case 2:
		leap := (year%4 == 0 && year%100 != 0) || year%400 == 0
		if leap {
			day = util.Min(day, 29)
		} else {
			day = util.Min(day, 28)
		}
	}

	return day
}

// monthBranch: the month branch switches at the month's first solar term;
// before it the date still belongs to the previous month.
func monthBranch(dt time.Time) string {
	month := int(dt.Month())

	firstDay := termDay(dt.Year(), firstTermOfMonth[month])
	if dt.Day() < firstDay {
		prev := month - 1
		if prev < 1 {
			prev = 12
		}
		return termBranch[firstTermOfMonth[prev]]
	}
	return termBranch[firstTermOfMonth[month]]
}

func monthPillar(dt time.Time, yearStem string) Pillar {
	branch := monthBranch(dt)
	branchIdx := branchIndex(branch)
	start := monthStemStart[stemIndex(yearStem)]

	// count forward from the 寅 month
	offset := util.Mod(branchIdx-2, 12)
	return Pillar{
		Stem:   Stems[(start+offset)%10],
		Branch: branch,
	}
}

func dayPillar(dt time.Time) Pillar {
	civil := time.Date(dt.Year(), dt.Month(), dt.Day(), 0, 0, 0, 0, time.UTC)
	days := int(civil.Sub(dayPillarEpoch).Hours() / 24)

	return Pillar{
		Stem:   Stems[util.Mod(epochStemIndex+days, 10)],
		Branch: Branches[util.Mod(epochBranchIndex+days, 12)],
	}
}

// hourPillar: double-hour branches starting with 子 at 23:00.
func hourPillar(dt time.Time, dayStem string) Pillar {
	hour := dt.Hour()

	var branchIdx int
	if hour == 23 || hour == 0 {
		branchIdx = 0
	} else {
		branchIdx = ((hour + 1) / 2) % 12
	}

	start := hourStemStart[stemIndex(dayStem)]
	return Pillar{
		Stem:   Stems[(start+branchIdx)%10],
		Branch: Branches[branchIdx],
	}
}

// trueSolarTime shifts a civil timestamp by the longitude offset from the
// zone meridian plus a coarse equation-of-time correction.
func trueSolarTime(dt time.Time, longitude float64) time.Time {
	timezone := math.Round(longitude / 15)
	minutesDiff := (longitude - timezone*15) * 4

	dayOfYear := dt.YearDay()

	var equationOfTime float64
	switch {
	case dayOfYear >= 1 && dayOfYear <= 106:
		equationOfTime = -10 * math.Sin(math.Pi*float64(dayOfYear-21)/90)
	case dayOfYear >= 107 && dayOfYear <= 166:
		equationOfTime = -2
	case dayOfYear >= 167 && dayOfYear <= 246:
		equationOfTime = 3 * math.Sin(math.Pi*float64(dayOfYear-197)/60)
	case dayOfYear >= 247 && dayOfYear <= 365:
		equationOfTime = -10 * math.Sin(math.Pi*float64(dayOfYear-287)/80)
	}

	total := minutesDiff + equationOfTime
	return dt.Add(time.Duration(total * float64(time.Minute)))
}

func stemIndex(stem string) int {
	for i, s := range Stems {
		if s == stem {
			return i
		}
	}
	return 0
}

func branchIndex(branch string) int {
	for i, b := range Branches {
		if b == branch {
			return i
		}
	}
	return 0
}
