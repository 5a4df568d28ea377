package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// ValidRole reports whether r is one of the supported account roles.
func ValidRole(r string) bool {
	return r == RoleBuyer || r == RoleSeller || r == RoleAdmin
}

type User struct {
	gorm.Model
	Username     string  `gorm:"uniqueIndex;size:80;not null"`
	PasswordHash string  `gorm:"size:255;not null"`
	Role         string  `gorm:"size:20;not null;default:buyer;index"`
	FullName     string  `gorm:"size:120"`
	Address      string  `gorm:"size:255"`
	Bio          string  `gorm:"type:text"`
	AvatarURL    string  `gorm:"size:500"`
	Latitude     float64 `gorm:"not null;default:0"`
	Longitude    float64 `gorm:"not null;default:0"`

	Products []Product `gorm:"foreignKey:SellerID"`
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
