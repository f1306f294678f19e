package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/internal/models"
	"github.com/Skotchmaster/konveksi/internal/mykafka"
	"github.com/Skotchmaster/konveksi/internal/repo"
	"github.com/Skotchmaster/konveksi/internal/transport"
	"github.com/Skotchmaster/konveksi/internal/util"
	"github.com/Skotchmaster/konveksi/pkg/logging"
)

// MessageService records MoU and contact inquiries.
type MessageService struct {
	Repo   *repo.GormRepo
	Events Publisher
}

type MessagePage struct {
	Items []models.Message
	Meta  util.Meta
}

// Create stores an inquiry. userID is nil for anonymous visitors.
func (s *MessageService) Create(ctx context.Context, userID *uint, req transport.CreateMessageRequest) (*models.Message, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = NormalizeEmail(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if err := transport.Validate(req); err != nil {
		return nil, err
	}

	if req.ProductID != nil {
		if _, err := s.Repo.GetProductByID(ctx, *req.ProductID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.Validationf("product %d does not exist", *req.ProductID)
			}
			return nil, err
		}
	}

	msg, err := s.Repo.CreateMessage(ctx, &models.Message{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("mou_requested", "svc", "message.create", "message_id", msg.ID)
	publish(ctx, s.Events, mykafka.TopicOrderEvents, idKey(msg.ID), "mou_requested", msg)
	return msg, nil
}

func (s *MessageService) List(ctx context.Context, page, size int) (*MessagePage, error) {
	offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.ListMessages(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return &MessagePage{Items: items, Meta: util.NewMeta(page, size, total)}, nil
}
