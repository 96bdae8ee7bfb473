package domain

import (
	"github.com/feifeixp/neocore-go/pkg/errors"
)

// Era is the narrative setting tag controlling which text pools are used for
// names, skills, and biography milestones.
type Era string

const (
	EraAncient Era = "ancient"
	EraModern  Era = "modern"
	EraFuture  Era = "future"
)

// Eras lists all valid eras in display order.
var Eras = []Era{EraAncient, EraModern, EraFuture}

func ParseEra(s string) (Era, error) {
	switch Era(s) {
	case EraAncient, EraModern, EraFuture:
		return Era(s), nil
	}
	return "", errors.NewValidationError("era must be one of ancient, modern, future", "era", s)
}

// Title returns the era's display title.
func (e Era) Title() string {
	switch e {
	case EraAncient:
		return "修真纪元"
	case EraModern:
		return "现代纪元"
	case EraFuture:
		return "未来纪元"
	}
	return string(e)
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case GenderMale, GenderFemale:
		return Gender(s), nil
	}
	return "", errors.NewValidationError("gender must be male or female", "gender", s)
}

func (g Gender) Title() string {
	if g == GenderMale {
		return "男"
	}
	return "女"
}
