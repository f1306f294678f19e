package repo

import (
	"context"

	"github.com/Skotchmaster/konveksi/internal/models"
)

func (r *GormRepo) CreateMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if err := r.DB.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *GormRepo) ListMessages(ctx context.Context, offset, limit int) (int64, []models.Message, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Message{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	messages := make([]models.Message, 0, limit)
	if err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error; err != nil {
		return 0, nil, err
	}
	return total, messages, nil
}
