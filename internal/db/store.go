package db

import (
	"errors" // Error inspection

	"artspace/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// CreateUser inserts a new account, returning ErrDuplicateEmail when the email is taken
func CreateUser(gdb *gorm.DB, user *domain.User) error {
	var count int64
	if err := gdb.Model(&domain.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateEmail
	}
	if err := gdb.Create(user).Error; err != nil {
		// The unique index catches a concurrent registration of the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// FindArtwork loads one artwork by id
func FindArtwork(gdb *gorm.DB, id uint) (*domain.Artwork, error) {
	var art domain.Artwork
	if err := gdb.First(&art, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &art, nil
}

// Purchase marks the artwork sold to buyer, records the slip and bumps the sales counter.
// Unless allowResale is set, an artwork that is already sold is left untouched and
// ErrAlreadySold is returned.
func Purchase(gdb *gorm.DB, id uint, buyer, slipFile string, allowResale bool) (*domain.Artwork, error) {
	var art domain.Artwork
	err := gdb.Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&domain.Artwork{}).Where("id = ?", id)
		if !allowResale {
			q = q.Where("is_sold = ?", false)
		}
		res := q.Updates(map[string]any{
			"is_sold":   true,
			"owner":     buyer,
			"slip_file": slipFile,
			"sales":     gorm.Expr("sales + ?", 1), // Incremented in SQL so concurrent buys never lose a count
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return missingOrSold(tx, id)
		}
		return tx.First(&art, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &art, nil
}

// UpdateListing changes price and caption of an unsold artwork
func UpdateListing(gdb *gorm.DB, id uint, price int, caption string) error {
	res := gdb.Model(&domain.Artwork{}).
		Where("id = ? AND is_sold = ?", id, false).
		Updates(map[string]any{"price": price, "caption": caption})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return missingOrSold(gdb, id)
	}
	return nil
}

// missingOrSold explains why a conditional artwork update matched no row
func missingOrSold(gdb *gorm.DB, id uint) error {
	var count int64
	if err := gdb.Model(&domain.Artwork{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrAlreadySold
}

// DeleteArtwork removes the row and returns it so the caller can clean up its image
func DeleteArtwork(gdb *gorm.DB, id uint) (*domain.Artwork, error) {
	art, err := FindArtwork(gdb, id)
	if err != nil {
		return nil, err
	}
	res := gdb.Delete(&domain.Artwork{}, art.ID)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound // Deleted concurrently
	}
	return art, nil
}

// DeleteUserByEmail removes the account registered with email.
// The seed admin identified by protectedEmail is never removed.
func DeleteUserByEmail(gdb *gorm.DB, email, protectedEmail string) error {
	if email == "" {
		return ErrNotFound
	}
	if email == protectedEmail {
		return ErrProtectedAccount
	}
	res := gdb.Where("email = ?", email).Delete(&domain.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetResult lists the asset files referenced by the rows a reset removed
type ResetResult struct {
	ArtworksDeleted int64
	UsersDeleted    int64
	ImageFiles      []string
	SlipFiles       []string
}

// Reset deletes every artwork and every user, then re-creates the seed admin
func Reset(gdb *gorm.DB, seed AdminSeed) (*ResetResult, error) {
	admin, err := seed.user() // Hash outside the transaction to keep it short
	if err != nil {
		return nil, err
	}
	result := &ResetResult{}
	err = gdb.Transaction(func(tx *gorm.DB) error {
		var arts []domain.Artwork
		if err := tx.Select("image_file", "slip_file").Find(&arts).Error; err != nil {
			return err
		}
		for _, a := range arts {
			if a.ImageFile != "" {
				result.ImageFiles = append(result.ImageFiles, a.ImageFile)
			}
			if a.SlipFile != nil && *a.SlipFile != "" {
				result.SlipFiles = append(result.SlipFiles, *a.SlipFile)
			}
		}
		res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Artwork{})
		if res.Error != nil {
			return res.Error
		}
		result.ArtworksDeleted = res.RowsAffected
		res = tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.User{})
		if res.Error != nil {
			return res.Error
		}
		result.UsersDeleted = res.RowsAffected
		return tx.Create(admin).Error
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
