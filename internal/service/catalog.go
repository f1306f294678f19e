package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/konveksi/internal/cache"
	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/internal/metrics"
	"github.com/Skotchmaster/konveksi/internal/models"
	"github.com/Skotchmaster/konveksi/internal/mykafka"
	"github.com/Skotchmaster/konveksi/internal/repo"
	"github.com/Skotchmaster/konveksi/internal/storage"
	"github.com/Skotchmaster/konveksi/internal/transport"
	"github.com/Skotchmaster/konveksi/internal/util"
	"github.com/Skotchmaster/konveksi/pkg/logging"
)

// ProductIndex is the full-text index kept alongside the catalog.
// *search.Client satisfies it.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []uint, error)
}

type CatalogService struct {
	Repo    *repo.GormRepo
	Cache   *cache.Cache
	Index   ProductIndex
	Uploads *storage.Uploader
	Events  Publisher
	Metrics *metrics.Metrics
}

type ProductQuery struct {
	Category string
	Search   string
	Page     int
	Size     int
}

type ProductPage struct {
	Items []models.Product
	Meta  util.Meta
}

// ProductFiles are the optional uploads accompanying a product write.
type ProductFiles struct {
	Image   *storage.Upload
	Model3D *storage.Upload
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	hit := s.cacheGet(ctx, cache.CategoriesKey, &cached)
	s.Metrics.CacheLookup("categories", hit)
	if hit {
		return cached, nil
	}

	categories, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, cache.CategoriesKey, categories)
	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, key string) (*models.Category, error) {
	return s.Repo.GetCategory(ctx, key)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CategoryRequest, model3D *storage.Upload) (*models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_category")

	if err := transport.Validate(req); err != nil {
		return nil, err
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" || req.Slug == nil {
		return nil, domain.Validationf("name and slug are required")
	}

	category := &models.Category{
		Name:        strings.TrimSpace(*req.Name),
		Slug:        *req.Slug,
		Description: req.Description,
	}

	ref, err := s.storeUpload(ctx, storage.KindModel, model3D)
	if err != nil {
		return nil, err
	}
	if ref != "" {
		category.Model3DURL = &ref
	}

	created, err := s.Repo.CreateCategory(ctx, category)
	if err != nil {
		s.removeAsset(ctx, ref)
		return nil, err
	}

	l.Info("category_created", "category_id", created.ID)
	s.cacheDel(ctx, cache.CategoriesKey)
	publish(ctx, s.Events, mykafka.TopicCatalogEvents, idKey(created.ID), "category_created", created)
	return created, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, req transport.CategoryRequest, model3D *storage.Upload) (*models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_category")

	if err := transport.Validate(req); err != nil {
		return nil, err
	}

	existing, err := s.Repo.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.Validationf("name cannot be empty")
		}
		changes["name"] = name
	}
	if req.Slug != nil {
		changes["slug"] = *req.Slug
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}

	ref, err := s.storeUpload(ctx, storage.KindModel, model3D)
	if err != nil {
		return nil, err
	}
	if ref != "" {
		changes["model_3d_url"] = ref
	}

	updated, err := s.Repo.UpdateCategory(ctx, id, changes)
	if err != nil {
		s.removeAsset(ctx, ref)
		return nil, err
	}
	if ref != "" && existing.Model3DURL != nil {
		s.removeAsset(ctx, *existing.Model3DURL)
	}

	l.Info("category_updated", "category_id", id)
	s.invalidateCategory(ctx, id)
	publish(ctx, s.Events, mykafka.TopicCatalogEvents, idKey(id), "category_updated", updated)
	return updated, nil
}

// DeleteCategory removes the category and detaches its products.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_category")

	refs, err := s.Repo.ProductRefsInCategory(ctx, id)
	if err != nil {
		return err
	}

	deleted, detached, err := s.Repo.DeleteCategory(ctx, id)
	if err != nil {
		return err
	}
	if deleted.Model3DURL != nil {
		s.removeAsset(ctx, *deleted.Model3DURL)
	}

	l.Info("category_deleted", "category_id", id, "detached_products", detached)
	s.cacheDel(ctx, cache.CategoriesKey)
	for i := range refs {
		s.invalidateProduct(ctx, &refs[i])
		s.reindex(ctx, refs[i].ID)
	}
	publish(ctx, s.Events, mykafka.TopicCatalogEvents, idKey(id), "category_deleted", map[string]any{
		"category_id":       id,
		"detached_products": detached,
	})
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	offset, limit := util.Calculate(q.Page, q.Size)

	total, items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{
		CategorySlug: strings.TrimSpace(q.Category),
		Search:       q.Search,
		Offset:       offset,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}
	return &ProductPage{Items: items, Meta: util.NewMeta(q.Page, q.Size, total)}, nil
}

// SearchProducts uses the search index when one is configured and falls back
// to the SQL substring filter otherwise or when the index is unavailable.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, size int) (*ProductPage, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.Validationf("q is required")
	}
	if s.Index == nil {
		return s.ListProducts(ctx, ProductQuery{Search: query, Page: page, Size: size})
	}

	offset, limit := util.Calculate(page, size)
	total, ids, err := s.Index.Search(ctx, query, offset, limit)
	if err != nil {
		l.Warn("search_index_unavailable", "error", err)
		return s.ListProducts(ctx, ProductQuery{Search: query, Page: page, Size: size})
	}

	items, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Items: items, Meta: util.NewMeta(page, size, total)}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, key string) (*models.Product, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.Validationf("product id or slug is required")
	}

	var cached models.Product
	hit := s.cacheGet(ctx, cache.ProductKey(key), &cached)
	s.Metrics.CacheLookup("product", hit)
	if hit {
		return &cached, nil
	}

	product, err := s.Repo.GetProduct(ctx, key)
	if err != nil {
		return nil, err
	}
	if cacheKey, ok := productCacheKey(key, product); ok {
		s.cacheSet(ctx, cacheKey, product)
	}
	return product, nil
}

// productCacheKey returns the cache entry for a lookup by key, but only when
// key is the product's canonical id or its slug. Those are the two entries
// invalidateProduct clears; aliases like "01" are served uncached.
func productCacheKey(key string, p *models.Product) (string, bool) {
	if key != idKey(p.ID) && key != p.Slug {
		return "", false
	}
	return cache.ProductKey(key), true
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.ProductRequest, files ProductFiles) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	if err := transport.Validate(req); err != nil {
		return nil, err
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, domain.Validationf("name is required")
	}
	if req.Slug == nil {
		return nil, domain.Validationf("slug is required")
	}
	if req.Price == nil {
		return nil, domain.Validationf("price is required")
	}

	product := &models.Product{
		Name:  strings.TrimSpace(*req.Name),
		Slug:  *req.Slug,
		Price: *req.Price,
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.IsCustomizable != nil {
		product.IsCustomizable = *req.IsCustomizable
	}
	if req.CategoryID != nil && *req.CategoryID != 0 {
		if err := s.requireCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = req.CategoryID
	}

	imageRef, modelRef, err := s.storeProductFiles(ctx, files)
	if err != nil {
		return nil, err
	}
	if imageRef != "" {
		product.ImageURL = &imageRef
	}
	if modelRef != "" {
		product.Model3DURL = &modelRef
	}

	created, err := s.Repo.CreateProduct(ctx, product)
	if err != nil {
		s.removeAsset(ctx, imageRef)
		s.removeAsset(ctx, modelRef)
		return nil, err
	}

	l.Info("product_created", "product_id", created.ID, "slug", created.Slug)
	s.indexProduct(ctx, created)
	publish(ctx, s.Events, mykafka.TopicCatalogEvents, idKey(created.ID), "product_created", created)
	return created, nil
}

// UpdateProduct merges the given fields into the product. A new upload
// replaces the stored file; without one the reference is kept.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req transport.ProductRequest, files ProductFiles) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_product")

	if err := transport.Validate(req); err != nil {
		return nil, err
	}

	existing, err := s.Repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.Validationf("name cannot be empty")
		}
		changes["name"] = name
	}
	if req.Slug != nil && *req.Slug != existing.Slug {
		taken, err := s.Repo.ProductSlugTaken(ctx, *req.Slug, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.Conflictf("product slug %q already exists", *req.Slug)
		}
		changes["slug"] = *req.Slug
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.Price != nil {
		changes["price"] = *req.Price
	}
	if req.Stock != nil {
		changes["stock"] = *req.Stock
	}
	if req.IsCustomizable != nil {
		changes["is_customizable"] = *req.IsCustomizable
	}
	if req.CategoryID != nil {
		if *req.CategoryID == 0 {
			changes["category_id"] = nil
		} else {
			if err := s.requireCategory(ctx, *req.CategoryID); err != nil {
				return nil, err
			}
			changes["category_id"] = *req.CategoryID
		}
	}

	imageRef, modelRef, err := s.storeProductFiles(ctx, files)
	if err != nil {
		return nil, err
	}
	if imageRef != "" {
		changes["image_url"] = imageRef
	}
	if modelRef != "" {
		changes["model_3d_url"] = modelRef
	}

	updated, err := s.Repo.UpdateProduct(ctx, id, changes)
	if err != nil {
		s.removeAsset(ctx, imageRef)
		s.removeAsset(ctx, modelRef)
		return nil, err
	}
	if imageRef != "" && existing.ImageURL != nil {
		s.removeAsset(ctx, *existing.ImageURL)
	}
	if modelRef != "" && existing.Model3DURL != nil {
		s.removeAsset(ctx, *existing.Model3DURL)
	}

	l.Info("product_updated", "product_id", id)
	s.invalidateProduct(ctx, existing)
	s.invalidateProduct(ctx, updated)
	s.indexProduct(ctx, updated)
	publish(ctx, s.Events, mykafka.TopicCatalogEvents, idKey(id), "product_updated", updated)
	return updated, nil
}

// DeleteProduct refuses products that orders still reference.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete_product")

	deleted, err := s.Repo.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}
	if deleted.ImageURL != nil {
		s.removeAsset(ctx, *deleted.ImageURL)
	}
	if deleted.Model3DURL != nil {
		s.removeAsset(ctx, *deleted.Model3DURL)
	}

	l.Info("product_deleted", "product_id", id)
	s.invalidateProduct(ctx, deleted)
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			l.Warn("search_index_delete_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicCatalogEvents, idKey(id), "product_deleted", map[string]any{"product_id": id})
	return nil
}

func (s *CatalogService) requireCategory(ctx context.Context, id uint) error {
	if _, err := s.Repo.GetCategoryByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Validationf("category %d does not exist", id)
		}
		return err
	}
	return nil
}

func (s *CatalogService) storeUpload(ctx context.Context, kind storage.Kind, u *storage.Upload) (string, error) {
	if u == nil {
		return "", nil
	}
	if s.Uploads == nil {
		return "", domain.Validationf("file uploads are not enabled")
	}
	return s.Uploads.Store(ctx, kind, *u)
}

func (s *CatalogService) storeProductFiles(ctx context.Context, files ProductFiles) (string, string, error) {
	imageRef, err := s.storeUpload(ctx, storage.KindImage, files.Image)
	if err != nil {
		return "", "", err
	}
	modelRef, err := s.storeUpload(ctx, storage.KindModel, files.Model3D)
	if err != nil {
		s.removeAsset(ctx, imageRef)
		return "", "", err
	}
	return imageRef, modelRef, nil
}

func (s *CatalogService) removeAsset(ctx context.Context, ref string) {
	if ref == "" || s.Uploads == nil {
		return
	}
	if err := s.Uploads.Remove(ctx, ref); err != nil {
		logging.FromContext(ctx).Warn("asset_remove_failed", "ref", ref, "error", err)
	}
}

func (s *CatalogService) indexProduct(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) reindex(ctx context.Context, id uint) {
	if s.Index == nil {
		return
	}
	p, err := s.Repo.GetProductByID(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Warn("search_reindex_failed", "product_id", id, "error", err)
		return
	}
	s.indexProduct(ctx, p)
}

func (s *CatalogService) invalidateProduct(ctx context.Context, p *models.Product) {
	s.cacheDel(ctx, cache.ProductKey(idKey(p.ID)), cache.ProductKey(p.Slug))
}

func (s *CatalogService) invalidateCategory(ctx context.Context, id uint) {
	s.cacheDel(ctx, cache.CategoriesKey)

	refs, err := s.Repo.ProductRefsInCategory(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Warn("cache_invalidate_failed", "category_id", id, "error", err)
		return
	}
	for i := range refs {
		s.invalidateProduct(ctx, &refs[i])
		s.reindex(ctx, refs[i].ID)
	}
}

func (s *CatalogService) cacheGet(ctx context.Context, key string, dest any) bool {
	hit, err := s.Cache.Get(ctx, key, dest)
	if err != nil {
		logging.FromContext(ctx).Warn("cache_get_failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value any) {
	if err := s.Cache.Set(ctx, key, value); err != nil {
		logging.FromContext(ctx).Warn("cache_set_failed", "key", key, "error", err)
	}
}

func (s *CatalogService) cacheDel(ctx context.Context, keys ...string) {
	if err := s.Cache.Del(ctx, keys...); err != nil {
		logging.FromContext(ctx).Warn("cache_del_failed", "keys", keys, "error", err)
	}
}
