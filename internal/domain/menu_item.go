package domain

import "time"

type MenuItem struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Price       int64     `json:"price" gorm:"not null"`
	CategoryID  uint64    `json:"categoryId" gorm:"not null;index"`
	Category    *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	IsAvailable bool      `json:"isAvailable" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// CategoryType is empty when the category was not loaded.
func (m MenuItem) CategoryType() CategoryType {
	if m.Category == nil {
		return ""
	}
	return m.Category.Type
}
