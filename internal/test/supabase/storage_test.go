package supabase_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"design-order-backend/internal/models"
	"design-order-backend/internal/supabase"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"logo.png", "logo.png"},
		{"my logo (v2).png", "my_logo__v2_.png"},
		{"brief-final.pdf", "brief-final.pdf"},
		{"ünïcode.svg", "_n_code.svg"},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, supabase.SanitizeFileName(test.in), test.in)
	}
}

func TestStorageClient_PublicURL(t *testing.T) {
	client := supabase.NewStorageClient("https://project.supabase.co/", "key", supabase.DefaultReferencesBucket, supabase.DefaultDeliverablesBucket)

	url := client.PublicURL("order-references", "drafts/abc/1-a.png")

	assert.Equal(t, "https://project.supabase.co/storage/v1/object/public/order-references/drafts/abc/1-a.png", url)
}

func TestStorageClient_UploadReference(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Key":"order-references/drafts/draft-1/file","Id":"1"}`))
	}))
	defer srv.Close()

	client := supabase.NewStorageClient(srv.URL, "service-key", "order-references", "order-deliverables")
	meta, err := client.UploadReference(context.Background(), "draft-1", models.FileBlob{
		Name: "my logo (v2).png",
		Type: "image/png",
		Size: 3,
		Data: []byte("abc"),
	})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.True(t, strings.HasPrefix(gotPath, "/storage/v1/object/order-references/drafts/draft-1/"), gotPath)
	assert.True(t, strings.HasSuffix(gotPath, "-my_logo__v2_.png"), gotPath)

	objectPath := strings.TrimPrefix(gotPath, "/storage/v1/object/order-references/")
	assert.Equal(t, models.FileMetadata{
		Name: "my logo (v2).png",
		URL:  srv.URL + "/storage/v1/object/public/order-references/" + objectPath,
		Size: 3,
		Type: "image/png",
	}, meta)
}

func TestStorageClient_UploadDeliverableKeepsPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Key":"order-deliverables/x","Id":"1"}`))
	}))
	defer srv.Close()

	orderID := uuid.New()
	client := supabase.NewStorageClient(srv.URL, "service-key", "order-references", "order-deliverables")
	meta, err := client.UploadDeliverable(context.Background(), orderID, models.FileBlob{Name: "final.zip", Type: "application/zip", Size: 1, Data: []byte("z")})

	require.NoError(t, err)
	assert.Equal(t, "/storage/v1/object/order-deliverables/"+meta.URL, gotPath)
	assert.True(t, strings.HasPrefix(meta.URL, "orders/"+orderID.String()+"/"))
}

func TestStorageClient_UploadHonoursCancelledContext(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := supabase.NewStorageClient(srv.URL, "service-key", "order-references", "order-deliverables")
	_, err := client.UploadReference(ctx, "draft-1", models.FileBlob{Name: "a.png", Type: "image/png", Size: 1, Data: []byte("a")})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
