package narrative

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/feifeixp/neocore-go/internal/bazi"
	"github.com/feifeixp/neocore-go/pkg/errors"
)

// ParsedDescription is the structured data recovered from a rendered
// character document.
type ParsedDescription struct {
	Sizhu       string
	Pillars     [4]string
	Counts      map[bazi.Element]int
	Percentages map[bazi.Element]int
}

// ParseDescription reads the chart data back out of a character document:
// the sizhu summary line, the pillar table, and the element details table.
// The surrounding Markdown prose is left alone.
func ParseDescription(markdown string) (*ParsedDescription, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markdown))
	if err != nil {
		return nil, errors.NewValidationError("description is not parseable", "description", err.Error())
	}

	parsed := &ParsedDescription{
		Counts:      make(map[bazi.Element]int),
		Percentages: make(map[bazi.Element]int),
	}

	for _, line := range strings.Split(markdown, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "- 八字："); ok {
			parsed.Sizhu = strings.TrimSpace(rest)
			break
		}
	}

	tables := doc.Find("table")
	if tables.Length() < 2 {
		return nil, errors.NewValidationError("description has no chart tables", "description", "")
	}

	pillarCells := tables.Eq(0).Find("td")
	if pillarCells.Length() != 4 {
		return nil, errors.NewValidationError("chart table must have four pillars", "description", "")
	}
	pillarCells.Each(func(i int, s *goquery.Selection) {
		parsed.Pillars[i] = strings.TrimSpace(s.Text())
	})

	elementTable := doc.Find("details table").First()
	if elementTable.Length() == 0 {
		elementTable = tables.Eq(1)
	}

	headers := elementTable.Find("th")
	cells := elementTable.Find("td")
	if headers.Length() != cells.Length() {
		return nil, errors.NewValidationError("element table is malformed", "description", "")
	}

	var parseErr error
	headers.Each(func(i int, h *goquery.Selection) {
		el := bazi.Element(strings.TrimSpace(h.Text()))

		var count, percent int
		text := strings.TrimSpace(cells.Eq(i).Text())
		if _, err := fmt.Sscanf(text, "%d (%d%%)", &count, &percent); err != nil {
			parseErr = errors.NewValidationError("element cell is malformed", "description", text)
			return
		}
		parsed.Counts[el] = count
		parsed.Percentages[el] = percent
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return parsed, nil
}
