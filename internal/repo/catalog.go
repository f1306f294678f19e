package repo

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/internal/models"
)

type ProductFilter struct {
	CategorySlug string
	Search       string
	Offset       int
	Limit        int
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// productScope is shared by the count and the page query so both see the same rows.
func productScope(f ProductFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.CategorySlug != "" {
			db = db.Joins("JOIN categories ON categories.id = products.category_id").
				Where("categories.slug = ?", f.CategorySlug)
		}
		if s := strings.TrimSpace(f.Search); s != "" {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
			db = db.Where(`(LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\')`, pattern, pattern)
		}
		return db
	}
}

// byIDOrSlug matches a numeric key against id or slug, anything else against slug.
func byIDOrSlug(table, key string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if id, err := strconv.ParseUint(key, 10, 64); err == nil {
			return db.Where(table+".id = ? OR "+table+".slug = ?", id, key)
		}
		return db.Where(table+".slug = ?", key)
	}
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Scopes(productScope(f)).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, f.Limit)
	if total == 0 {
		return 0, items, nil
	}
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Scopes(productScope(f)).
		Preload("Category").
		Order("products.created_at DESC").
		Order("products.id DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, key string) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").Scopes(byIDOrSlug("products", key)).First(&product).Error; err != nil {
		return nil, notFound(err, "product")
	}
	return &product, nil
}

func (r *GormRepo) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").First(&product, id).Error; err != nil {
		return nil, notFound(err, "product")
	}
	return &product, nil
}

func (r *GormRepo) ProductSlugTaken(ctx context.Context, slug string, exceptID uint) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Omit("Category").Create(prod).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflictf("product slug %q already exists", prod.Slug)
		}
		if isForeignKeyViolation(err) {
			return nil, domain.Validationf("category does not exist")
		}
		return nil, err
	}
	return r.GetProductByID(ctx, prod.ID)
}

// UpdateProduct writes only the given columns, so a concurrent stock
// decrement is never overwritten by a stale read.
func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, changes map[string]any) (*models.Product, error) {
	if len(changes) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			if isUniqueViolation(res.Error) {
				return nil, domain.Conflictf("product slug already exists")
			}
			if isForeignKeyViolation(res.Error) {
				return nil, domain.Validationf("category does not exist")
			}
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, domain.NotFoundf("product")
		}
	}
	return r.GetProductByID(ctx, id)
}

// DeleteProduct refuses to remove a product that orders still reference.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			return notFound(err, "product")
		}

		var orders int64
		if err := tx.Model(&models.Order{}).Where("product_id = ?", id).Count(&orders).Error; err != nil {
			return err
		}
		if orders > 0 {
			return domain.Conflictf("product has %d order(s) and cannot be deleted", orders)
		}

		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			if isForeignKeyViolation(res.Error) {
				return domain.Conflictf("product is still referenced")
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, notFound(err, "product")
	}
	return &product, nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	if err := r.DB.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, key string) (*models.Category, error) {
	var category models.Category
	if err := r.DB.WithContext(ctx).Scopes(byIDOrSlug("categories", key)).First(&category).Error; err != nil {
		return nil, notFound(err, "category")
	}
	return &category, nil
}

func (r *GormRepo) GetCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.DB.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFound(err, "category")
	}
	return &category, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.DB.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflictf("category slug %q already exists", category.Slug)
		}
		return nil, err
	}
	return category, nil
}

func (r *GormRepo) UpdateCategory(ctx context.Context, id uint, changes map[string]any) (*models.Category, error) {
	if len(changes) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			if isUniqueViolation(res.Error) {
				return nil, domain.Conflictf("category slug already exists")
			}
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, domain.NotFoundf("category")
		}
	}
	return r.GetCategoryByID(ctx, id)
}

// DeleteCategory detaches the category's products before removing it.
func (r *GormRepo) DeleteCategory(ctx context.Context, id uint) (*models.Category, int64, error) {
	var (
		category models.Category
		detached int64
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Product{}).Where("category_id = ?", id).Update("category_id", nil)
		if res.Error != nil {
			return res.Error
		}
		detached = res.RowsAffected

		return tx.Delete(&models.Category{}, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, domain.NotFoundf("category")
		}
		return nil, 0, err
	}
	return &category, detached, nil
}

// GetProductsByIDs loads products in the order of ids, skipping ids that no longer exist.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	out := make([]models.Product, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var found []models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// ProductRefsInCategory returns the id and slug of every product in the category.
func (r *GormRepo) ProductRefsInCategory(ctx context.Context, categoryID uint) ([]models.Product, error) {
	refs := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).Select("id", "slug").Where("category_id = ?", categoryID).Find(&refs).Error; err != nil {
		return nil, err
	}
	return refs, nil
}
