// Package narrative generates era-flavored character text: names, skills,
// attributes, and the rendered Markdown description.
package narrative

import (
	"math/rand"
	"sync"

	"github.com/feifeixp/neocore-go/internal/domain"
)

// nameElements holds the per-era name fragments. Future-era names are
// compound role names, so the given pools are shared between genders.
type nameElements struct {
	surnames    []string
	maleGiven   []string
	femaleGiven []string
}

var namePools = map[domain.Era]nameElements{
	domain.EraAncient: {
		surnames:    []string{"李", "王", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴"},
		maleGiven:   []string{"云", "风", "山", "河", "海", "天", "地", "星", "月", "日"},
		femaleGiven: []string{"霞", "月", "花", "雪", "玉", "珠", "凤", "莲", "春", "秋"},
	},
	domain.EraModern: {
		surnames:    []string{"张", "王", "李", "赵", "钱", "孙", "周", "吴", "郑", "陈"},
		maleGiven:   []string{"伟", "强", "磊", "超", "勇", "军", "建", "光", "明", "永"},
		femaleGiven: []string{"娟", "敏", "静", "秀", "丽", "艳", "芳", "萍", "英", "华"},
	},
	domain.EraFuture: {
		surnames:    []string{"电子", "量子", "星际", "虚拟", "智能", "光速", "时空", "基因", "纳米", "脑波"},
		maleGiven:   []string{"指挥官", "工程师", "探索者", "战士", "科学家", "领航员", "守护者", "研究员"},
		femaleGiven: []string{"指挥官", "工程师", "探索者", "战士", "科学家", "领航员", "守护者", "研究员"},
	},
}

var skillPools = map[domain.Era][]string{
	domain.EraAncient: {
		"内功心法", "剑术精通", "丹道修炼", "阵法布置", "符箓制作",
		"炼器技艺", "轻功身法", "医术精通", "毒术研究", "兵器锻造",
	},
	domain.EraModern: {
		"计算机编程", "数据分析", "人工智能", "网络安全", "商业管理",
		"市场营销", "金融投资", "项目管理", "研发创新", "团队领导",
	},
	domain.EraFuture: {
		"量子计算", "基因工程", "纳米技术", "星际导航", "虚拟现实",
		"人工意识", "时空操控", "能源转换", "生态修复", "智能设计",
	},
}

const skillsPerCharacter = 3

const (
	attributeMin = 50
	attributeMax = 100
)

// Selector abstracts the random draws so generation can be made
// deterministic in tests and in indexed mode.
type Selector interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// RandomSelector draws from a seeded PRNG. Safe for concurrent use.
type RandomSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomSelector(seed int64) *RandomSelector {
	return &RandomSelector{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomSelector) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// IndexedSelector walks pools in order, so repeated generations cycle
// through every entry. Useful for bulk seeding and reproducible fixtures.
type IndexedSelector struct {
	mu   sync.Mutex
	next int
}

func NewIndexedSelector(start int) *IndexedSelector {
	return &IndexedSelector{next: start}
}

func (s *IndexedSelector) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.next % n
	s.next++
	return v
}

// GenerateName assembles a surname plus given name from the era's pools.
func GenerateName(era domain.Era, gender domain.Gender, sel Selector) string {
	pool, ok := namePools[era]
	if !ok {
		pool = namePools[domain.EraModern]
	}

	surname := pool.surnames[sel.Intn(len(pool.surnames))]

	given := pool.maleGiven
	if gender == domain.GenderFemale {
		given = pool.femaleGiven
	}
	return surname + given[sel.Intn(len(given))]
}

// GenerateSkills samples three distinct skills from the era's pool.
func GenerateSkills(era domain.Era, sel Selector) []string {
	pool, ok := skillPools[era]
	if !ok {
		pool = skillPools[domain.EraModern]
	}

	picked := make([]string, 0, skillsPerCharacter)
	taken := make(map[int]bool, skillsPerCharacter)
	for len(picked) < skillsPerCharacter {
		i := sel.Intn(len(pool))
		if taken[i] {
			// walk forward to the next free slot so indexed mode
			// cannot stall on a repeated draw
			for taken[i] {
				i = (i + 1) % len(pool)
			}
		}
		taken[i] = true
		picked = append(picked, pool[i])
	}
	return picked
}

// GenerateAttributes rolls the three base attributes in [50, 100].
func GenerateAttributes(sel Selector) domain.Attributes {
	span := attributeMax - attributeMin + 1
	return domain.Attributes{
		Strength:     attributeMin + sel.Intn(span),
		Intelligence: attributeMin + sel.Intn(span),
		Charisma:     attributeMin + sel.Intn(span),
	}
}

// SkillPool returns the skill list for an era, in pool order.
func SkillPool(era domain.Era) []string {
	pool, ok := skillPools[era]
	if !ok {
		return nil
	}
	out := make([]string, len(pool))
	copy(out, pool)
	return out
}
