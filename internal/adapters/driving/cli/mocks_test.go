package cli

import (
	"bytes"
	"context"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driving/watch"
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
)

// mockIngestService echoes the content as one chunk, or fails for content
// containing "FAIL".
type mockIngestService struct {
	mu    sync.Mutex
	calls []mockIngestCall
}

type mockIngestCall struct {
	content  string
	mimeType string
	metadata map[string]any
}

func (m *mockIngestService) Ingest(_ context.Context, content []byte, mimeType string, metadata map[string]any) ([]domain.Chunk, error) {
	m.mu.Lock()
	m.calls = append(m.calls, mockIngestCall{content: string(content), mimeType: mimeType, metadata: metadata})
	m.mu.Unlock()

	if strings.Contains(string(content), "FAIL") {
		return nil, domain.NewInsufficientTextError(mimeType)
	}
	meta := domain.CloneMetadata(metadata)
	meta[domain.MetaUploadID] = "upload-" + string(content)
	return []domain.Chunk{{Content: string(content), Position: 0, Metadata: meta}}, nil
}

func (m *mockIngestService) SupportedMIMETypes() []string {
	return []string{domain.MIMETypePDF, domain.MIMETypeText}
}

func (m *mockIngestService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings *domain.AppSettings
	getErr   error
	saved    *domain.AppSettings
}

func newMockSettingsService() *mockSettingsService {
	s := domain.DefaultAppSettings()
	return &mockSettingsService{settings: &s}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	copied := *m.settings
	return &copied, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	copied := *settings
	m.saved = &copied
	m.settings = &copied
	return nil
}

// mockMaintenanceService returns a fixed count.
type mockMaintenanceService struct {
	count  int64
	err    error
	dryRun bool
}

func (m *mockMaintenanceService) DeleteOrphans(_ context.Context, dryRun bool) (int64, error) {
	m.dryRun = dryRun
	return m.count, m.err
}

// mockChunkStore is an in-memory chunk store.
type mockChunkStore struct {
	mu          sync.Mutex
	collections map[string]string
	chunks      map[string][]domain.Chunk
	closed      bool
}

func newMockChunkStore() *mockChunkStore {
	return &mockChunkStore{
		collections: make(map[string]string),
		chunks:      make(map[string][]domain.Chunk),
	}
}

func (m *mockChunkStore) EnsureCollection(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.collections[name]; ok {
		return id, nil
	}
	id := "id-" + name
	m.collections[name] = id
	return id, nil
}

func (m *mockChunkStore) SaveChunks(_ context.Context, collectionID string, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[collectionID] = append(m.chunks[collectionID], chunks...)
	return nil
}

func (m *mockChunkStore) ListCollections(_ context.Context) ([]domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Collection
	for name, id := range m.collections {
		out = append(out, domain.Collection{ID: id, Name: name, Chunks: len(m.chunks[id])})
	}
	return out, nil
}

func (m *mockChunkStore) DeleteCollection(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; !ok {
		return domain.ErrNotFound
	}
	delete(m.collections, name)
	return nil
}

func (m *mockChunkStore) Close() error {
	m.closed = true
	return nil
}

// testEnv holds the mocks installed by setupCLITest.
type testEnv struct {
	ingest      *mockIngestService
	settings    *mockSettingsService
	maintenance *mockMaintenanceService
	store       *mockChunkStore

	maintDriver domain.StoreDriver
	maintDSN    string
	storeDir    string
}

// setupCLITest installs mocks and resets flag state.
func setupCLITest() (*testEnv, func()) {
	env := &testEnv{
		ingest:      &mockIngestService{},
		settings:    newMockSettingsService(),
		maintenance: &mockMaintenanceService{},
		store:       newMockChunkStore(),
	}

	oldIngest, oldSettings := ingestService, settingsService
	oldMaint, oldStore, oldBootstrap := openMaintenance, openChunkStore, bootstrap

	ingestService = env.ingest
	settingsService = env.settings
	openMaintenance = func(_ context.Context, driver domain.StoreDriver, dsn string) (driving.MaintenanceService, io.Closer, error) {
		env.maintDriver = driver
		env.maintDSN = dsn
		return env.maintenance, io.NopCloser(&bytes.Buffer{}), nil
	}
	openChunkStore = func(dataDir string) (driven.ChunkStore, io.Closer, error) {
		env.storeDir = dataDir
		return env.store, env.store, nil
	}
	bootstrap = nil
	resetFlags()

	return env, func() {
		ingestService, settingsService = oldIngest, oldSettings
		openMaintenance, openChunkStore, bootstrap = oldMaint, oldStore, oldBootstrap
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

func resetFlags() {
	verbose, logLevel, configPath = false, "info", ""
	ingestMIMEType, ingestMeta, ingestOutput = "", nil, ""
	ingestWorkers, ingestDB, ingestCollection, ingestShowChunks = runtime.NumCPU(), "", "", false
	cleanupDryRun, cleanupDriver, cleanupDSN = false, "", ""
	serveAddr = ""
	watchDB, watchCollection = "", ""
	watchRate, watchSettle, watchExisting = watch.DefaultFilesPerSecond, watch.DefaultSettleDelay, false
	collectionsDB = ""
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
