package models

import "gorm.io/gorm"

type Product struct {
	gorm.Model
	Name        string  `gorm:"size:200;not null"`
	Description string  `gorm:"type:text"`
	Price       float64 `gorm:"not null;default:0"`
	ImageURL    string  `gorm:"size:500"`
	SellerID    uint    `gorm:"not null;index"`
}
