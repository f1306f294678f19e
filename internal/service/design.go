package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/internal/models"
	"github.com/Skotchmaster/konveksi/internal/repo"
	"github.com/Skotchmaster/konveksi/internal/storage"
	"github.com/Skotchmaster/konveksi/internal/transport"
	"github.com/Skotchmaster/konveksi/pkg/logging"
)

// previewField names stored previews; only keys under previewPrefix are ever
// deleted on behalf of a design.
const (
	previewField  = "preview"
	previewPrefix = "images/" + previewField + "-"
)

type DesignService struct {
	Repo    *repo.GormRepo
	Uploads *storage.Uploader
}

// Save stores the design document verbatim. A data URL preview is written to
// the asset disk and replaced by its reference. Other previews must be external
// URLs: a reference into the asset disk could point at someone else's file.
func (s *DesignService) Save(ctx context.Context, userID uint, req transport.SaveDesignRequest) (*models.Design, error) {
	l := logging.FromContext(ctx).With("svc", "design.save", "user_id", userID)

	productType := strings.TrimSpace(req.ProductType)
	if productType == "" {
		return nil, domain.Validationf("product_type is required")
	}
	if !req.DesignData.Structured() {
		return nil, domain.Validationf("design_data must be a JSON object or array")
	}

	var preview *string
	if req.PreviewImage != nil && *req.PreviewImage != "" {
		ref := *req.PreviewImage
		if storage.IsDataURL(ref) {
			if s.Uploads == nil {
				return nil, domain.Validationf("file uploads are not enabled")
			}
			stored, err := s.Uploads.StoreDataURL(ctx, previewField, ref)
			if err != nil {
				return nil, err
			}
			ref = stored
		} else if _, ours := storage.KeyFromRef(ref); ours {
			return nil, domain.Validationf("preview_image must be a data URL or an external URL")
		}
		preview = &ref
	}

	design, err := s.Repo.CreateDesign(ctx, &models.Design{
		UserID:       userID,
		ProductType:  productType,
		DesignData:   req.DesignData,
		PreviewImage: preview,
	})
	if err != nil {
		if preview != nil {
			s.removePreview(ctx, *preview)
		}
		return nil, err
	}

	l.Info("design_saved", "design_id", design.ID)
	return design, nil
}

func (s *DesignService) List(ctx context.Context, userID uint) ([]models.Design, error) {
	return s.Repo.ListDesigns(ctx, userID)
}

func (s *DesignService) Get(ctx context.Context, userID, id uint) (*models.Design, error) {
	return s.Repo.GetDesign(ctx, userID, id)
}

func (s *DesignService) Delete(ctx context.Context, userID, id uint) error {
	design, err := s.Repo.DeleteDesign(ctx, userID, id)
	if err != nil {
		return err
	}
	if design.PreviewImage != nil {
		s.removePreview(ctx, *design.PreviewImage)
	}
	logging.FromContext(ctx).Info("design_deleted", "svc", "design.delete", "design_id", id, "user_id", userID)
	return nil
}

func (s *DesignService) removePreview(ctx context.Context, ref string) {
	if s.Uploads == nil {
		return
	}
	if key, ok := storage.KeyFromRef(ref); !ok || !strings.HasPrefix(key, previewPrefix) {
		return
	}
	if err := s.Uploads.Remove(ctx, ref); err != nil {
		logging.FromContext(ctx).Warn("asset_remove_failed", "ref", ref, "error", err)
	}
}
