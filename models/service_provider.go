package models

import "time"

// ServiceProvider is a business listed in the directory.
// Every provider belongs to exactly one category and is looked up
// externally by its unique slug.
type ServiceProvider struct {
	ID               uint   `gorm:"primaryKey"`
	Name             string `gorm:"not null"`
	Slug             string `gorm:"uniqueIndex;not null"`
	ShortDescription string `gorm:"not null"`
	Description      string `gorm:"type:text"`
	Logo             string
	CategoryID       uint     `gorm:"not null;index"`
	Category         Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (p *ServiceProvider) TableName() string {
	return "service_providers"
}
