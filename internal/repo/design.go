package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/konveksi/internal/models"
)

func (r *GormRepo) CreateDesign(ctx context.Context, design *models.Design) (*models.Design, error) {
	if err := r.DB.WithContext(ctx).Omit("User").Create(design).Error; err != nil {
		return nil, err
	}
	return design, nil
}

func (r *GormRepo) ListDesigns(ctx context.Context, userID uint) ([]models.Design, error) {
	designs := make([]models.Design, 0)
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&designs).Error; err != nil {
		return nil, err
	}
	return designs, nil
}

// GetDesign only finds designs owned by userID.
func (r *GormRepo) GetDesign(ctx context.Context, userID, id uint) (*models.Design, error) {
	var design models.Design
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&design).Error; err != nil {
		return nil, notFound(err, "design")
	}
	return &design, nil
}

func (r *GormRepo) DeleteDesign(ctx context.Context, userID, id uint) (*models.Design, error) {
	var design models.Design
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&design).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Design{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, notFound(err, "design")
	}
	return &design, nil
}
