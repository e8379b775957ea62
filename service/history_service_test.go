package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"contract-analyzer-backend/models"
	"contract-analyzer-backend/result"
	"contract-analyzer-backend/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory AnalysisStore
type memoryStore struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*models.AnalysisRecord
	clock     time.Time
	createErr error
	listErr   error
	pathErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		records: map[uuid.UUID]*models.AnalysisRecord{},
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memoryStore) Create(ctx context.Context, rec *models.AnalysisRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.clock = m.clock.Add(time.Minute)
	rec.CreatedAt, rec.UpdatedAt = m.clock, m.clock
	copied := *rec
	m.records[rec.ID] = &copied
	return nil
}

func (m *memoryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrAnalysisNotFound
	}
	copied := *rec
	return &copied, nil
}

func (m *memoryStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*models.AnalysisRecord
	for _, rec := range m.records {
		if rec.UserID == userID {
			copied := *rec
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStore) SetStoragePath(ctx context.Context, id uuid.UUID, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pathErr != nil {
		return m.pathErr
	}
	rec, ok := m.records[id]
	if !ok {
		return ErrAnalysisNotFound
	}
	rec.StoragePath = &path
	return nil
}

func testAnalysis(name string) *models.ContractAnalysis {
	return &models.ContractAnalysis{
		ID:              "analysis-1",
		FileName:        name,
		ContractType:    "Service Agreement",
		ComplianceScore: 80,
	}
}

func TestHistory_Disabled(t *testing.T) {
	svc := NewHistoryService()
	assert.False(t, svc.Enabled())

	save := svc.Save(context.Background(), SaveRequest{Analysis: testAnalysis("a.txt")})
	assert.Equal(t, result.FaultUnavailable, save.Fault())
	assert.Equal(t, MsgHistoryDisabled, save.Error())

	list := svc.ListByUser(context.Background(), uuid.New())
	assert.Equal(t, result.FaultUnavailable, list.Fault())

	get := svc.Get(context.Background(), uuid.New())
	assert.Equal(t, result.FaultUnavailable, get.Fault())
}

func TestHistory_SaveAndList(t *testing.T) {
	store := newMemoryStore()
	svc := NewHistoryService(HistoryWithStore(store))
	ctx := context.Background()
	user, other := uuid.New(), uuid.New()

	first := svc.Save(ctx, SaveRequest{Analysis: testAnalysis("first.txt"), UserID: user, FileSize: 10})
	require.True(t, first.Success())
	second := svc.Save(ctx, SaveRequest{Analysis: testAnalysis("second.txt"), UserID: user, FileSize: 20})
	require.True(t, second.Success())
	require.True(t, svc.Save(ctx, SaveRequest{Analysis: testAnalysis("other.txt"), UserID: other}).Success())

	rec := first.Value()
	assert.Equal(t, user, rec.UserID)
	assert.Equal(t, "first.txt", rec.FileName)
	assert.Equal(t, int64(10), rec.FileSize)
	assert.Equal(t, "Service Agreement", rec.ContractType)
	assert.Equal(t, 80.0, rec.ComplianceScore)
	assert.Nil(t, rec.StoragePath)

	list := svc.ListByUser(ctx, user)
	require.True(t, list.Success())
	require.Len(t, list.Value(), 2)
	assert.Equal(t, "second.txt", list.Value()[0].FileName)
	assert.Equal(t, "first.txt", list.Value()[1].FileName)

	empty := svc.ListByUser(ctx, uuid.New())
	require.True(t, empty.Success())
	assert.NotNil(t, empty.Value())
	assert.Empty(t, empty.Value())
}

func TestHistory_SaveFailure(t *testing.T) {
	store := newMemoryStore()
	store.createErr = errors.New("connection reset")
	svc := NewHistoryService(HistoryWithStore(store))

	res := svc.Save(context.Background(), SaveRequest{Analysis: testAnalysis("a.txt"), UserID: uuid.New()})
	require.False(t, res.Success())
	assert.Equal(t, result.FaultBackend, res.Fault())
	assert.Equal(t, MsgSaveFailed, res.Error())
}

func TestHistory_ListFailure(t *testing.T) {
	store := newMemoryStore()
	store.listErr = errors.New("timeout")
	res := NewHistoryService(HistoryWithStore(store)).ListByUser(context.Background(), uuid.New())

	require.False(t, res.Success())
	assert.Equal(t, MsgFetchFailed, res.Error())
}

func TestHistory_Get(t *testing.T) {
	store := newMemoryStore()
	svc := NewHistoryService(HistoryWithStore(store))
	ctx := context.Background()

	saved := svc.Save(ctx, SaveRequest{Analysis: testAnalysis("a.txt"), UserID: uuid.New()})
	require.True(t, saved.Success())

	got := svc.Get(ctx, saved.Value().ID)
	require.True(t, got.Success())
	assert.Equal(t, "a.txt", got.Value().Analysis.FileName)

	missing := svc.Get(ctx, uuid.New())
	assert.Equal(t, result.FaultNotFound, missing.Fault())
	assert.Equal(t, MsgAnalysisNotFound, missing.Error())
}

func TestHistory_ArchivesDocument(t *testing.T) {
	docs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store := newMemoryStore()
	svc := NewHistoryService(HistoryWithStore(store), HistoryWithDocuments(docs))
	ctx := context.Background()

	content := []byte("This Lease Agreement...")
	saved := svc.Save(ctx, SaveRequest{
		Analysis: testAnalysis("lease.txt"),
		UserID:   uuid.New(),
		FileSize: int64(len(content)),
		Document: content,
	})
	require.True(t, saved.Success())
	require.NotNil(t, saved.Value().StoragePath)

	opened := svc.OpenDocument(ctx, saved.Value().ID)
	require.True(t, opened.Success(), opened.Error())
	defer opened.Value().Body.Close()
	data, err := io.ReadAll(opened.Value().Body)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

// recordingStorage keeps the documents it is asked to store
type recordingStorage struct {
	storage.Storage
	put []storage.Document
}

func (r *recordingStorage) Put(ctx context.Context, doc storage.Document) (string, error) {
	r.put = append(r.put, doc)
	return r.Storage.Put(ctx, doc)
}

func TestHistory_ArchiveKeepsDetectedContentType(t *testing.T) {
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	docs := &recordingStorage{Storage: local}
	svc := NewHistoryService(HistoryWithStore(newMemoryStore()), HistoryWithDocuments(docs))

	saved := svc.Save(context.Background(), SaveRequest{
		Analysis:    testAnalysis("lease.pdf"),
		UserID:      uuid.New(),
		Document:    []byte("%PDF-1.7 lease"),
		ContentType: "application/pdf",
	})
	require.True(t, saved.Success())

	require.Len(t, docs.put, 1)
	assert.Equal(t, "application/pdf", docs.put[0].ContentType())
}

func TestHistory_ArchivePathFailureRemovesDocument(t *testing.T) {
	dir := t.TempDir()
	docs, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	store := newMemoryStore()
	store.pathErr = errors.New("update failed")
	svc := NewHistoryService(HistoryWithStore(store), HistoryWithDocuments(docs))

	saved := svc.Save(context.Background(), SaveRequest{
		Analysis: testAnalysis("lease.txt"),
		UserID:   uuid.New(),
		Document: []byte("terms"),
	})
	require.True(t, saved.Success())
	assert.Nil(t, saved.Value().StoragePath)

	key := storage.DocumentKey(storage.Document{
		UserID:     saved.Value().UserID,
		AnalysisID: saved.Value().ID,
		FileName:   "lease.txt",
	})
	_, err = docs.Get(context.Background(), key)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestHistory_OpenDocumentWithoutArchive(t *testing.T) {
	store := newMemoryStore()
	svc := NewHistoryService(HistoryWithStore(store))
	ctx := context.Background()

	saved := svc.Save(ctx, SaveRequest{Analysis: testAnalysis("a.txt"), UserID: uuid.New(), Document: []byte("x")})
	require.True(t, saved.Success())

	opened := svc.OpenDocument(ctx, saved.Value().ID)
	assert.Equal(t, result.FaultNotFound, opened.Fault())
	assert.Equal(t, MsgDocumentNotFound, opened.Error())

	missing := svc.OpenDocument(ctx, uuid.New())
	assert.Equal(t, MsgAnalysisNotFound, missing.Error())
}
