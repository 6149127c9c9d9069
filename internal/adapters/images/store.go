package images

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/printcraft/customizer-engine/internal/ports"
)

// Compile-time check that Store implements ports.ImageStore.
var _ ports.ImageStore = (*Store)(nil)

// Store keeps re-hosted image bytes in memory and serves them under the
// configured public base URL. Keys are namespaced by shop and suffixed with a
// random id so distinct uploads with the same name never collide.
type Store struct {
	publicBaseURL string

	mu      sync.RWMutex
	objects map[string]object
}

type object struct {
	data        []byte
	contentType string
}

// NewStore creates an image store serving from publicBaseURL.
func NewStore(publicBaseURL string) *Store {
	return &Store{
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		objects:       map[string]object{},
	}
}

// Put stores the image bytes and returns the public URL of the stored copy.
func (s *Store) Put(ctx context.Context, shop, name string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("storing image %q: empty payload", name)
	}

	key := path.Join(shop, uuid.NewString()+"-"+sanitizeName(name))

	s.mu.Lock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[key] = object{data: stored, contentType: contentType}
	s.mu.Unlock()

	return s.publicBaseURL + "/" + key, nil
}

// ServeHTTP serves stored images under /media/{shop}/{object}. Mounted on
// the router so re-hosted gallery URLs resolve.
func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/media/")

	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", obj.contentType)
	_, _ = w.Write(obj.data)
}

// sanitizeName strips path separators and spaces so stored keys stay flat.
func sanitizeName(name string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", " ", "-")
	cleaned := replacer.Replace(strings.TrimSpace(name))
	if cleaned == "" {
		return "image"
	}
	return cleaned
}
