package account

import (
	"context"
	"errors"
	"time"

	domain "github.com/example/storefront/domain/user"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
)

// UserFields lists the user columns a partial update may touch.
// Nil fields are left unchanged.
type UserFields struct {
	Phone *string
	Bio   *string
}

func (f UserFields) columns() map[string]any {
	cols := map[string]any{}
	if f.Phone != nil {
		cols["phone"] = *f.Phone
	}
	if f.Bio != nil {
		cols["bio"] = *f.Bio
	}
	return cols
}

// ProfileFields lists the profile columns a save may touch.
type ProfileFields struct {
	Address    *string
	City       *string
	Country    *string
	PostalCode *string
}

func (f ProfileFields) apply(p *domain.Profile) {
	if f.Address != nil {
		p.Address = *f.Address
	}
	if f.City != nil {
		p.City = *f.City
	}
	if f.Country != nil {
		p.Country = *f.Country
	}
	if f.PostalCode != nil {
		p.PostalCode = *f.PostalCode
	}
}

// UserRepository handles user and profile persistence using GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create inserts a user. Unique violations surface as gorm.ErrDuplicatedKey.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID finds a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	result := r.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// FindByUsername finds a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	result := r.db.WithContext(ctx).First(&user, "username = ?", username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// UsernameExists checks if a user with the given username exists.
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", username).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// List returns every user ordered by ID.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies fields to the user and returns the stored row.
func (r *UserRepository) Update(ctx context.Context, id uint, fields UserFields) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		cols := fields.columns()
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(cols).Error; err != nil {
			return err
		}
		return tx.First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// TouchLastLogin stamps the user's last login time.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("last_login", at).Error
}

// ListProfiles returns every profile with its user, ordered by ID.
func (r *UserRepository) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	var profiles []domain.Profile
	if err := r.db.WithContext(ctx).Preload("User").Order("id").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// SaveProfile creates the user's profile or updates the existing one.
func (r *UserRepository) SaveProfile(ctx context.Context, userID uint, fields ProfileFields) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		err := tx.Where("user_id = ?", userID).First(&profile).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			profile = domain.Profile{UserID: userID}
		case err != nil:
			return err
		}

		fields.apply(&profile)
		if err := tx.Omit("User").Save(&profile).Error; err != nil {
			return err
		}
		profile.User = &user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
