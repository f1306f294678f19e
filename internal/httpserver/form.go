package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/internal/storage"
	"github.com/Skotchmaster/konveksi/internal/transport"
)

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

const maxFormMemory = 32 << 20

func parseMultipart(c echo.Context) error {
	if err := c.Request().ParseMultipartForm(maxFormMemory); err != nil {
		return domain.Validationf("invalid multipart body")
	}
	return nil
}

// formValue returns nil when the field is absent from the form.
func formValue(c echo.Context, name string) *string {
	form := c.Request().MultipartForm
	if form == nil {
		return nil
	}
	vs, ok := form.Value[name]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := strings.TrimSpace(vs[0])
	return &v
}

func formInt[T int | int64 | uint](c echo.Context, name string) (*T, error) {
	s := formValue(c, name)
	if s == nil {
		return nil, nil
	}
	var zero T
	if *s == "" {
		return &zero, nil
	}
	n, err := strconv.ParseInt(*s, 10, 64)
	if err != nil || n < 0 {
		return nil, domain.Validationf("%s must be a non-negative whole number", name)
	}
	v := T(n)
	return &v, nil
}

func formBool(c echo.Context, name string) *bool {
	s := formValue(c, name)
	if s == nil {
		return nil
	}
	b := false
	switch strings.ToLower(*s) {
	case "1", "true", "on", "yes":
		b = true
	}
	return &b
}

// formUpload opens one file part. The returned closer is always safe to call.
func formUpload(c echo.Context, field string) (*storage.Upload, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, domain.Validationf("cannot read %s: %v", field, err)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &storage.Upload{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

func bindCategory(c echo.Context) (transport.CategoryRequest, error) {
	var req transport.CategoryRequest
	if !isMultipart(c) {
		if err := c.Bind(&req); err != nil {
			return req, domain.Validationf("invalid body")
		}
		return req, nil
	}
	if err := parseMultipart(c); err != nil {
		return req, err
	}

	req.Name = formValue(c, "name")
	req.Slug = formValue(c, "slug")
	req.Description = formValue(c, "description")
	return req, nil
}

func bindProduct(c echo.Context) (transport.ProductRequest, error) {
	var req transport.ProductRequest
	if !isMultipart(c) {
		if err := c.Bind(&req); err != nil {
			return req, domain.Validationf("invalid body")
		}
		return req, nil
	}
	if err := parseMultipart(c); err != nil {
		return req, err
	}

	req.Name = formValue(c, "name")
	req.Slug = formValue(c, "slug")
	req.Description = formValue(c, "description")
	req.IsCustomizable = formBool(c, "is_customizable")

	var err error
	if req.Price, err = formInt[int64](c, "price"); err != nil {
		return req, err
	}
	if req.Stock, err = formInt[int](c, "stock"); err != nil {
		return req, err
	}
	if req.CategoryID, err = formInt[uint](c, "category_id"); err != nil {
		return req, err
	}
	return req, nil
}
