// Package seed provisions the admin account and an optional demo catalog.
package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/internal/hash"
	"github.com/Skotchmaster/konveksi/internal/models"
	"github.com/Skotchmaster/konveksi/internal/repo"
	"github.com/Skotchmaster/konveksi/pkg/logging"
)

const minAdminPassword = 6

// Admin creates the admin account or resets an existing account with the
// same email to admin with the given password.
func Admin(ctx context.Context, r *repo.GormRepo, name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < minAdminPassword {
		return nil, domain.Validationf("ADMIN_EMAIL and an ADMIN_PASSWORD of at least %d characters are required", minAdminPassword)
	}

	pw, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &models.User{Name: name, Email: email, PasswordHash: pw, Role: models.RoleAdmin}
	if err := r.UpsertAdmin(ctx, u); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("admin_seeded", "user_id", u.ID, "email", u.Email)
	return u, nil
}

// Demo adds the Kaos category and the Kaos Polos product unless they exist.
func Demo(ctx context.Context, r *repo.GormRepo) error {
	l := logging.FromContext(ctx).With("seed", "demo")

	category, err := r.GetCategory(ctx, "kaos")
	if errors.Is(err, domain.ErrNotFound) {
		desc := "Kaos custom dan polos"
		category, err = r.CreateCategory(ctx, &models.Category{Name: "Kaos", Slug: "kaos", Description: &desc})
		if err == nil {
			l.Info("category_seeded", "category_id", category.ID)
		}
	}
	if err != nil {
		return err
	}

	_, err = r.GetProduct(ctx, "kaos-polos")
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	p, err := r.CreateProduct(ctx, &models.Product{
		Name:           "Kaos Polos",
		Slug:           "kaos-polos",
		Description:    "Kaos polos cotton combed 30s",
		Price:          45000,
		Stock:          10,
		CategoryID:     &category.ID,
		IsCustomizable: true,
	})
	if err != nil {
		return err
	}
	l.Info("product_seeded", "product_id", p.ID)
	return nil
}
