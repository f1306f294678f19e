package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/konveksi/internal/service"
	"github.com/Skotchmaster/konveksi/internal/storage"
	"github.com/Skotchmaster/konveksi/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_categories")

	categories, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fail(l, "list_categories_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{"categories": categories})
}

func (h *CatalogHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_category")

	category, err := h.Svc.GetCategory(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "get_category_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{"category": category})
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_category")

	req, err := bindCategory(c)
	if err != nil {
		return fail(l, "create_category_error", err)
	}
	model, closeModel, err := h.upload(c, "model_3d")
	if err != nil {
		return fail(l, "create_category_error", err)
	}
	defer closeModel()

	category, err := h.Svc.CreateCategory(ctx, req, model)
	if err != nil {
		return fail(l, "create_category_error", err)
	}

	l.Info("create_category_success", "category_id", category.ID)
	return respond(c, http.StatusCreated, echo.Map{
		"message":  "category created",
		"category": category,
	})
}

func (h *CatalogHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_category")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "update_category_error", err)
	}
	req, err := bindCategory(c)
	if err != nil {
		return fail(l, "update_category_error", err)
	}
	model, closeModel, err := h.upload(c, "model_3d")
	if err != nil {
		return fail(l, "update_category_error", err)
	}
	defer closeModel()

	category, err := h.Svc.UpdateCategory(ctx, id, req, model)
	if err != nil {
		return fail(l, "update_category_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{
		"message":  "category updated",
		"category": category,
	})
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_category")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "delete_category_error", err)
	}
	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return fail(l, "delete_category_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "category deleted"})
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_products")

	page, size := pageParams(c)
	res, err := h.Svc.ListProducts(ctx, service.ProductQuery{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Page:     page,
		Size:     size,
	})
	if err != nil {
		return fail(l, "list_products_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{
		"products":   res.Items,
		"pagination": res.Meta,
	})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_products")

	page, size := pageParams(c)
	res, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return fail(l, "search_products_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{
		"products":   res.Items,
		"pagination": res.Meta,
	})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	product, err := h.Svc.GetProduct(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{"product": product})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	req, err := bindProduct(c)
	if err != nil {
		return fail(l, "create_product_error", err)
	}
	files, closeFiles, err := h.productFiles(c)
	if err != nil {
		return fail(l, "create_product_error", err)
	}
	defer closeFiles()

	product, err := h.Svc.CreateProduct(ctx, req, files)
	if err != nil {
		return fail(l, "create_product_error", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return respond(c, http.StatusCreated, echo.Map{
		"message":    "product created",
		"product_id": product.ID,
		"product":    product,
	})
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_product")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "update_product_error", err)
	}
	req, err := bindProduct(c)
	if err != nil {
		return fail(l, "update_product_error", err)
	}
	files, closeFiles, err := h.productFiles(c)
	if err != nil {
		return fail(l, "update_product_error", err)
	}
	defer closeFiles()

	product, err := h.Svc.UpdateProduct(ctx, id, req, files)
	if err != nil {
		return fail(l, "update_product_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{
		"message": "product updated",
		"product": product,
	})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "delete_product_error", err)
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "delete_product_error", err)
	}
	return respond(c, http.StatusOK, echo.Map{"message": "product deleted"})
}

func (h *CatalogHTTP) upload(c echo.Context, field string) (*storage.Upload, func(), error) {
	if !isMultipart(c) {
		return nil, func() {}, nil
	}
	return formUpload(c, field)
}

func (h *CatalogHTTP) productFiles(c echo.Context) (service.ProductFiles, func(), error) {
	image, closeImage, err := h.upload(c, "image")
	if err != nil {
		return service.ProductFiles{}, func() {}, err
	}
	model, closeModel, err := h.upload(c, "model_3d")
	if err != nil {
		closeImage()
		return service.ProductFiles{}, func() {}, err
	}
	return service.ProductFiles{Image: image, Model3D: model}, func() {
		closeImage()
		closeModel()
	}, nil
}
