package domain

import (
	"strings"
	"time"
	"unicode"
)

type CategoryType string

const (
	CategoryFood  CategoryType = "FOOD"
	CategoryDrink CategoryType = "DRINK"
)

func ParseCategoryType(s string) (CategoryType, error) {
	switch t := CategoryType(strings.ToUpper(strings.TrimSpace(s))); t {
	case CategoryFood, CategoryDrink:
		return t, nil
	}
	return "", NewValidationError("type", "must be FOOD or DRINK")
}

// Category owns menu items. Its Type decides which station prepares them.
type Category struct {
	ID        uint64       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string       `json:"name" gorm:"type:varchar(100);not null"`
	Slug      string       `json:"slug" gorm:"type:varchar(120);not null;uniqueIndex"`
	Type      CategoryType `json:"type" gorm:"type:varchar(10);not null"`
	Items     []MenuItem   `json:"items" gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	CreatedAt time.Time    `json:"createdAt" gorm:"autoCreateTime"`
}

// Slugify lowercases name and collapses every run of non-alphanumerics into "-".
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
