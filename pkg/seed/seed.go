// Package seed resets the database to the demo marketplace: four sellers
// around Central Park, each with a profile and one product.
package seed

import (
	"context"
	"fmt"

	"Homemade/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

type seller struct {
	Username  string
	FullName  string
	Bio       string
	Address   string
	AvatarURL string
	Latitude  float64
	Longitude float64
	Product   models.Product
}

var sellers = []seller{
	{
		Username:  "Alice_Baker",
		FullName:  "Alice Baker",
		Bio:       "Passionate home baker specializing in sourdough and gluten-free treats.",
		Address:   "123 Bakery Lane, Central District",
		AvatarURL: "https://images.unsplash.com/photo-1544005313-94ddf0286df2?w=200&h=200&fit=crop",
		Latitude:  40.7812,
		Longitude: -73.9665,
		Product: models.Product{
			Name:        "Sourdough Bread",
			Description: "Fresh baked daily.",
			Price:       8.5,
			ImageURL:    "https://images.unsplash.com/photo-1585476263060-655aaf646606?w=600&auto=format&fit=crop&q=60",
		},
	},
	{
		Username:  "Bob_Gardener",
		FullName:  "Bob Green",
		Bio:       "Urban gardener. I sell what I grow in my backyard. 100% Organic.",
		Address:   "45 Green St, West Side",
		AvatarURL: "https://images.unsplash.com/photo-1599566150163-29194dcaad36?w=200&h=200&fit=crop",
		Latitude:  40.7840,
		Longitude: -73.9640,
		Product: models.Product{
			Name:        "Organic Strawberry Jam",
			Description: "Home grown.",
			Price:       6.0,
			ImageURL:    "https://images.unsplash.com/photo-1596525983279-84729f260383?w=600&auto=format&fit=crop&q=60",
		},
	},
	{
		Username:  "Carol_Knits",
		FullName:  "Carol Smith",
		Bio:       "Knitting is my therapy. Custom orders welcome!",
		Address:   "77 Wooly Way, North End",
		AvatarURL: "https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=200&h=200&fit=crop",
		Latitude:  40.7820,
		Longitude: -73.9680,
		Product: models.Product{
			Name:        "Wool Scarf",
			Description: "Cozy and warm.",
			Price:       25.0,
			ImageURL:    "https://images.unsplash.com/photo-1520903920243-00d872a2d1c9?w=600&auto=format&fit=crop&q=60",
		},
	},
	{
		Username:  "Dave_Chef",
		FullName:  "Dave Miller",
		Bio:       "Retired chef cooking up spices and sauces.",
		Address:   "88 Culinary Ct, East Side",
		AvatarURL: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=200&h=200&fit=crop",
		Latitude:  40.7850,
		Longitude: -73.9620,
		Product: models.Product{
			Name:        "Spicy Salsa",
			Description: "Family secret recipe.",
			Price:       7.0,
			ImageURL:    "https://images.unsplash.com/photo-1571407970349-bc16b696ee81?w=600&auto=format&fit=crop&q=60",
		},
	},
}

// Run deletes all messages, products and users, then creates the demo sellers
// with password. It runs in one transaction and returns the created users.
func Run(ctx context.Context, db *gorm.DB, password string, log *zap.Logger) ([]models.User, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if password == "" {
		password = DefaultPassword
	}

	created := make([]models.User, 0, len(sellers))
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Message{}, &models.Product{}, &models.User{}} {
			if err := tx.Unscoped().Where("1 = 1").Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}

		for _, s := range sellers {
			u := models.User{
				Username:  s.Username,
				Role:      models.RoleSeller,
				FullName:  s.FullName,
				Bio:       s.Bio,
				Address:   s.Address,
				AvatarURL: s.AvatarURL,
				Latitude:  s.Latitude,
				Longitude: s.Longitude,
				Products:  []models.Product{s.Product},
			}
			if err := u.SetPassword(password); err != nil {
				return fmt.Errorf("hash password for %s: %w", s.Username, err)
			}
			if err := tx.Create(&u).Error; err != nil {
				return fmt.Errorf("create %s: %w", s.Username, err)
			}
			log.Info("created seller", zap.String("username", u.Username), zap.Uint("id", u.ID))
			created = append(created, u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
