package repo

import (
	"context"

	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/internal/models"
)

// CreateUserIfNotExists inserts u unless its email is taken.
func (r *GormRepo) CreateUserIfNotExists(ctx context.Context, u *models.User) error {
	tx := r.DB.WithContext(ctx).Where("email = ?", u.Email).FirstOrCreate(u)
	if tx.Error != nil {
		if isUniqueViolation(tx.Error) {
			return domain.Conflictf("email already registered")
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.Conflictf("email already registered")
	}
	return nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// UpsertAdmin creates the admin account or promotes and re-keys an existing one.
func (r *GormRepo) UpsertAdmin(ctx context.Context, u *models.User) error {
	var existing models.User
	err := r.DB.WithContext(ctx).Where("email = ?", u.Email).
		Attrs(models.User{Email: u.Email, Name: u.Name, PasswordHash: u.PasswordHash, Role: models.RoleAdmin}).
		Assign(map[string]any{"role": models.RoleAdmin, "password_hash": u.PasswordHash, "name": u.Name}).
		FirstOrCreate(&existing).Error
	if err != nil {
		return err
	}
	*u = models.User{}
	return r.DB.WithContext(ctx).First(u, existing.ID).Error
}
