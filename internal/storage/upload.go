package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/Skotchmaster/konveksi/internal/domain"
)

const DefaultMaxUploadBytes int64 = 10 << 20

type Kind int

const (
	KindImage Kind = iota
	KindModel
)

func (k Kind) dir() string {
	if k == KindModel {
		return "models"
	}
	return "images"
}

// Upload is one incoming file, detached from the transport that carried it.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader validates and names uploads before handing them to a Disk.
type Uploader struct {
	Disk     Disk
	MaxBytes int64
	Now      func() time.Time
}

func NewUploader(d Disk, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Uploader{Disk: d, MaxBytes: maxBytes, Now: time.Now}
}

// FileName builds <field>-<unixmilli>-<random><ext>.
func FileName(field, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%d%s", field, now.UnixMilli(), uuid.New().ID(), strings.ToLower(ext))
}

// Store checks u against the rules for kind and writes it, returning its public reference.
func (up *Uploader) Store(ctx context.Context, kind Kind, u Upload) (string, error) {
	if u.Size > up.MaxBytes {
		return "", domain.Validationf("%s exceeds the %d MB upload limit", u.Field, up.MaxBytes>>20)
	}

	ext := filepath.Ext(u.Filename)
	body := io.LimitReader(u.Body, up.MaxBytes+1)
	contentType := u.ContentType

	switch kind {
	case KindImage:
		head := make([]byte, 512)
		n, err := io.ReadFull(body, head)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return "", fmt.Errorf("storage: read upload: %w", err)
		}
		head = head[:n]
		if !strings.HasPrefix(contentType, "image/") {
			contentType = mimetype.Detect(head).String()
		}
		if !strings.HasPrefix(contentType, "image/") {
			return "", domain.Validationf("%s must be an image file", u.Field)
		}
		if ext == "" {
			ext = extFor(contentType)
		}
		body = io.MultiReader(bytes.NewReader(head), body)
	case KindModel:
		switch strings.ToLower(ext) {
		case ".glb":
			contentType = "model/gltf-binary"
		case ".gltf":
			contentType = "model/gltf+json"
		default:
			return "", domain.Validationf("%s must be a .glb or .gltf file", u.Field)
		}
	}

	key := path.Join(kind.dir(), FileName(u.Field, ext, up.Now()))
	counted := &countingReader{r: body}
	if err := up.Disk.Put(ctx, key, counted, contentType); err != nil {
		return "", err
	}
	if counted.n > up.MaxBytes {
		_ = up.Disk.Delete(ctx, key)
		return "", domain.Validationf("%s exceeds the %d MB upload limit", u.Field, up.MaxBytes>>20)
	}
	return Ref(key), nil
}

// StoreDataURL decodes a data:image/...;base64, URL and stores it as an image.
func (up *Uploader) StoreDataURL(ctx context.Context, field, dataURL string) (string, error) {
	contentType, data, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	return up.Store(ctx, KindImage, Upload{
		Field:       field,
		Filename:    field + extFor(contentType),
		ContentType: contentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
}

// Remove deletes the file behind ref when it is one of ours.
func (up *Uploader) Remove(ctx context.Context, ref string) error {
	key, ok := KeyFromRef(ref)
	if !ok {
		return nil
	}
	return up.Disk.Delete(ctx, key)
}

func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, domain.Validationf("preview image is not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, domain.Validationf("malformed data URL")
	}
	contentType, enc, _ := strings.Cut(meta, ";")
	if !strings.HasPrefix(contentType, "image/") {
		return "", nil, domain.Validationf("preview image must be an image")
	}
	if enc != "base64" {
		return "", nil, domain.Validationf("preview image must be base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, domain.Validationf("preview image is not valid base64")
	}
	return contentType, data, nil
}

func extFor(contentType string) string {
	if contentType == "image/jpeg" {
		return ".jpg"
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
