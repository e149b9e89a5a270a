// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/listbridge/internal/models"
	"github.com/desertthunder/listbridge/internal/services"
)

// AddCall records one [MockProvider.AddItems] invocation.
type AddCall struct {
	PlaylistID string
	IDs        []string
}

// MockProvider is a test double for [services.Provider].
//
// Search returns every Catalog track whose lower-cased title appears in the
// query. FailCreateAt and FailAddAt are 1-based call numbers that return
// CreateErr / AddErr; zero means every call when the error is set.
type MockProvider struct {
	mu sync.Mutex

	ProviderName string
	Caps         services.Capabilities
	Playlists    []models.Playlist
	Catalog      []models.Track

	ListErr      error
	ReadErrs     map[string]error
	CreateErr    error
	FailCreateAt int
	AddErr       error
	FailAddAt    int
	SearchErr    error

	Created []services.CreatePlaylistOptions
	Added   []AddCall
	Queries []string
}

// NewMockProvider returns a writable provider named name.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		ProviderName: name,
		Caps:         services.Capabilities{PlaylistCreate: true, TrackAdd: true, Search: true, DisplayName: name},
	}
}

func (m *MockProvider) Name() string { return m.ProviderName }

func (m *MockProvider) Capabilities() services.Capabilities { return m.Caps }

func (m *MockProvider) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.Playlist, 0, len(m.Playlists))
	for _, p := range m.Playlists {
		p.TrackCount = len(p.Tracks)
		p.Tracks = nil
		out = append(out, p)
	}
	return out, nil
}

func (m *MockProvider) ReadTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if err := m.ReadErrs[playlistID]; err != nil {
		return nil, err
	}
	for _, p := range m.Playlists {
		if p.ID == playlistID {
			return p.Tracks, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", playlistID, errors.New("playlist not found"))
}

func (m *MockProvider) CreatePlaylist(ctx context.Context, opts services.CreatePlaylistOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.Created) + 1
	if m.CreateErr != nil && (m.FailCreateAt == 0 || m.FailCreateAt == n) {
		return "", m.CreateErr
	}
	m.Created = append(m.Created, opts)
	return fmt.Sprintf("created-%d", n), nil
}

func (m *MockProvider) AddItems(ctx context.Context, playlistID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.Added) + 1
	if m.AddErr != nil && (m.FailAddAt == 0 || m.FailAddAt == n) {
		return m.AddErr
	}
	m.Added = append(m.Added, AddCall{PlaylistID: playlistID, IDs: append([]string(nil), ids...)})
	return nil
}

func (m *MockProvider) Search(ctx context.Context, query string) ([]models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	q := strings.ToLower(query)
	var out []models.Track
	for _, t := range m.Catalog {
		if strings.Contains(q, strings.ToLower(t.Title)) {
			out = append(out, t)
		}
	}
	return out, nil
}

// QueriesContaining counts recorded queries containing s.
func (m *MockProvider) QueriesContaining(s string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, q := range m.Queries {
		if strings.Contains(q, s) {
			n++
		}
	}
	return n
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
