package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/konveksi/internal/domain"
	"github.com/Skotchmaster/konveksi/internal/models"
	"github.com/Skotchmaster/konveksi/internal/storage"
	"github.com/Skotchmaster/konveksi/internal/testutil"
	"github.com/Skotchmaster/konveksi/internal/transport"
)

func newDesignService(t *testing.T) (*DesignService, *storage.LocalDisk) {
	t.Helper()

	disk, err := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, err)
	return &DesignService{Repo: testutil.NewRepo(t), Uploads: storage.NewUploader(disk, 0)}, disk
}

func TestDesign_RoundTripDeepEqual(t *testing.T) {
	t.Parallel()

	svc, _ := newDesignService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, svc.Repo.DB, "budi@example.com", "secret1", models.RoleCustomer)

	inputs := []string{
		`{"color":"#ff0000","layers":[{"type":"text","value":"Konveksi Jaya","font":"Inter","x":0.25,"y":-1.5e2},{"type":"image","src":"/uploads/images/logo.png"}],"meta":{"nested":{"deep":[1,2,3,null,true]}}}`,
		`[{"part":"sleeve","color":"navy"},{"part":"body","color":"white"}]`,
		`{"unicode":"kaos ✓ ß","empty":{},"list":[]}`,
	}

	for _, in := range inputs {
		saved, err := svc.Save(ctx, u.ID, transport.SaveDesignRequest{ProductType: "kaos", DesignData: models.DesignData(in)})
		require.NoError(t, err)

		got, err := svc.Get(ctx, u.ID, saved.ID)
		require.NoError(t, err)

		var want, have any
		require.NoError(t, json.Unmarshal([]byte(in), &want))
		require.NoError(t, json.Unmarshal(got.DesignData, &have))
		assert.Equal(t, want, have)
		assert.Equal(t, in, string(got.DesignData))
	}

	list, err := svc.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, len(inputs))
}

func TestDesign_SaveValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newDesignService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, svc.Repo.DB, "budi@example.com", "secret1", models.RoleCustomer)

	tests := []struct {
		name string
		req  transport.SaveDesignRequest
	}{
		{name: "missing product type", req: transport.SaveDesignRequest{DesignData: models.DesignData(`{}`)}},
		{name: "missing design data", req: transport.SaveDesignRequest{ProductType: "kaos"}},
		{name: "scalar design data", req: transport.SaveDesignRequest{ProductType: "kaos", DesignData: models.DesignData(`"just a string"`)}},
		{name: "malformed design data", req: transport.SaveDesignRequest{ProductType: "kaos", DesignData: models.DesignData(`{"a":`)}},
		{name: "bad preview data url", req: transport.SaveDesignRequest{ProductType: "kaos", DesignData: models.DesignData(`{}`), PreviewImage: ptr("data:text/plain;base64,aGk=")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(ctx, u.ID, tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestDesign_PreviewDataURLStoredAndRemoved(t *testing.T) {
	t.Parallel()

	svc, disk := newDesignService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, svc.Repo.DB, "budi@example.com", "secret1", models.RoleCustomer)
	other := testutil.CreateUser(t, svc.Repo.DB, "sari@example.com", "secret1", models.RoleCustomer)

	preview := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHead)
	saved, err := svc.Save(ctx, u.ID, transport.SaveDesignRequest{ProductType: "hoodie", DesignData: models.DesignData(`{"layers":[]}`), PreviewImage: &preview})
	require.NoError(t, err)
	require.NotNil(t, saved.PreviewImage)
	assert.Regexp(t, `^/uploads/images/preview-`, *saved.PreviewImage)

	key, ok := storage.KeyFromRef(*saved.PreviewImage)
	require.True(t, ok)
	_, err = os.Stat(disk.Path(key))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, other.ID, saved.ID), domain.ErrNotFound)
	_, err = svc.Get(ctx, other.ID, saved.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, u.ID, saved.ID))
	_, err = os.Stat(disk.Path(key))
	assert.True(t, os.IsNotExist(err))
}

func TestDesign_ExternalPreviewKeptAsIs(t *testing.T) {
	t.Parallel()

	svc, _ := newDesignService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, svc.Repo.DB, "budi@example.com", "secret1", models.RoleCustomer)

	saved, err := svc.Save(ctx, u.ID, transport.SaveDesignRequest{ProductType: "kaos", DesignData: models.DesignData(`{}`), PreviewImage: ptr("https://cdn.example.com/p.png")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/p.png", *saved.PreviewImage)
	require.NoError(t, svc.Delete(ctx, u.ID, saved.ID))
}

func TestDesign_PreviewCannotClaimStoredAssets(t *testing.T) {
	t.Parallel()

	svc, disk := newDesignService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, svc.Repo.DB, "budi@example.com", "secret1", models.RoleCustomer)

	productImage, err := svc.Uploads.Store(ctx, storage.KindImage, *pngUpload())
	require.NoError(t, err)
	key, ok := storage.KeyFromRef(productImage)
	require.True(t, ok)

	_, err = svc.Save(ctx, u.ID, transport.SaveDesignRequest{ProductType: "kaos", DesignData: models.DesignData(`{}`), PreviewImage: &productImage})
	require.ErrorIs(t, err, domain.ErrValidation)

	// a row that already points at a foreign asset must not take it down with it
	legacy, err := svc.Repo.CreateDesign(ctx, &models.Design{UserID: u.ID, ProductType: "kaos", DesignData: models.DesignData(`{}`), PreviewImage: &productImage})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, u.ID, legacy.ID))

	_, err = os.Stat(disk.Path(key))
	assert.NoError(t, err, "product image must survive a design delete")
}
