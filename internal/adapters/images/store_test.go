package images_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printcraft/customizer-engine/internal/adapters/images"
)

const testShop = "demo.myshopify.com"

func TestStore_PutReturnsPublicURL(t *testing.T) {
	t.Parallel()

	store := images.NewStore("http://localhost:8080/media/")

	url, err := store.Put(t.Context(), testShop, "Summer Shot.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)

	// Trailing slash on the base is normalized away.
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/media/"+testShop+"/"))
	assert.False(t, strings.Contains(url, "//"+testShop))
	assert.True(t, strings.HasSuffix(url, "-Summer-Shot.png"), "spaces are sanitized out of the stored name")
}

func TestStore_PutRejectsEmptyPayload(t *testing.T) {
	t.Parallel()

	store := images.NewStore("http://localhost:8080/media")

	_, err := store.Put(t.Context(), testShop, "empty.png", nil, "image/png")
	require.Error(t, err)
}

func TestStore_DistinctUploadsSameNameNeverCollide(t *testing.T) {
	t.Parallel()

	store := images.NewStore("http://localhost:8080/media")

	first, err := store.Put(t.Context(), testShop, "logo.png", []byte("v1"), "image/png")
	require.NoError(t, err)
	second, err := store.Put(t.Context(), testShop, "logo.png", []byte("v2"), "image/png")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestStore_ServeHTTP(t *testing.T) {
	t.Parallel()

	store := images.NewStore("http://localhost:8080/media")

	url, err := store.Put(t.Context(), testShop, "mug.png", []byte("mug-bytes"), "image/png")
	require.NoError(t, err)

	key := strings.TrimPrefix(url, "http://localhost:8080/media/")
	rec := httptest.NewRecorder()
	store.ServeHTTP(rec, httptest.NewRequest("GET", "/media/"+key, nil))

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, []byte("mug-bytes"), body)
}

func TestStore_ServeHTTPUnknownObject(t *testing.T) {
	t.Parallel()

	store := images.NewStore("http://localhost:8080/media")

	rec := httptest.NewRecorder()
	store.ServeHTTP(rec, httptest.NewRequest("GET", "/media/"+testShop+"/nope.png", nil))
	assert.Equal(t, 404, rec.Code)
}
