package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/internal/storage"
)

// AssetsHTTP serves /uploads/*. Local files are streamed, bucket objects are
// redirected to their public URL.
type AssetsHTTP struct {
	Disk storage.Disk
}

type urlDisk interface {
	URL(key string) string
}

func (h *AssetsHTTP) Serve(c echo.Context) error {
	key, ok := storage.KeyFromRef(storage.PublicPrefix + c.Param("*"))
	if !ok {
		return domain.NotFoundf("asset not found")
	}

	switch d := h.Disk.(type) {
	case *storage.LocalDisk:
		return c.File(d.Path(key))
	case urlDisk:
		return c.Redirect(http.StatusFound, d.URL(key))
	default:
		return domain.NotFoundf("asset not found")
	}
}
