// Package testutil builds throwaway sqlite stores and fixtures for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/konveksi/internal/hash"
	"github.com/Skotchmaster/konveksi/internal/models"
	"github.com/Skotchmaster/konveksi/internal/repo"
	pkgdb "github.com/Skotchmaster/konveksi/pkg/db"
)

func init() {
	hash.Cost = bcrypt.MinCost
}

func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := pkgdb.Open(context.Background(), pkgdb.Options{
		Driver: pkgdb.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "konveksi_test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(gdb))

	t.Cleanup(func() { _ = pkgdb.Close(gdb) })
	return gdb
}

func NewRepo(t testing.TB) *repo.GormRepo {
	t.Helper()
	return repo.New(NewDB(t))
}

func CreateUser(t testing.TB, db *gorm.DB, email, password, role string) *models.User {
	t.Helper()

	pw, err := hash.HashPassword(password)
	require.NoError(t, err)

	u := &models.User{Name: "User " + email, Email: email, PasswordHash: pw, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateCategory(t testing.TB, db *gorm.DB, name, slug string) *models.Category {
	t.Helper()

	c := &models.Category{Name: name, Slug: slug}
	require.NoError(t, db.Create(c).Error)
	return c
}

func CreateProduct(t testing.TB, db *gorm.DB, p models.Product) *models.Product {
	t.Helper()

	if p.Description == "" {
		p.Description = p.Name
	}
	require.NoError(t, db.Omit("Category").Create(&p).Error)
	return &p
}

func Stock(t testing.TB, db *gorm.DB, productID uint) int {
	t.Helper()

	var p models.Product
	require.NoError(t, db.Select("stock").First(&p, productID).Error)
	return p.Stock
}

func CountOrders(t testing.TB, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&models.Order{}).Count(&n).Error)
	return n
}
