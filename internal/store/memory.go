// Package store — in-memory Store implementation.
// Used for local development and tests. Supports file-based snapshot
// persistence so data survives restarts.
package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/caseflow/caseflow/backend/pkg/models"
	"github.com/rs/zerolog/log"
)

// snapshot is the JSON-serializable shape written to disk.
type snapshot struct {
	Cases        map[string]*models.Case          `json:"cases"`
	Applications map[string]*models.Application   `json:"applications"`
	Summaries    map[string][]*models.Summary     `json:"summaries"` // key: case id → version history
	Interactions []*models.InteractionRecord      `json:"interactions"`
}

// MemoryStore implements Store with in-memory maps.
type MemoryStore struct {
	mu           sync.RWMutex
	cases        map[string]*models.Case        // key: id
	applications map[string]*models.Application // key: id
	summaries    map[string][]*models.Summary   // key: case id → version history (newest last)
	interactions []*models.InteractionRecord    // append-only log

	// Persistence
	snapshotPath string        // empty = no persistence
	saveMu       sync.Mutex    // guards file writes
	saveCh       chan struct{} // debounce channel
	doneCh       chan struct{} // signals background goroutines to stop
}

// NewMemoryStore creates a new in-memory store.
// If CASEFLOW_DATA_DIR is set, data is persisted to a JSON file in that
// directory; when unset, persistence is disabled.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		cases:        make(map[string]*models.Case),
		applications: make(map[string]*models.Application),
		summaries:    make(map[string][]*models.Summary),
		interactions: make([]*models.InteractionRecord, 0),
		saveCh:       make(chan struct{}, 1),
		doneCh:       make(chan struct{}),
	}

	if dataDir := os.Getenv("CASEFLOW_DATA_DIR"); dataDir != "" {
		m.snapshotPath = filepath.Join(dataDir, "data.json")
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			log.Warn().Err(err).Str("dir", dataDir).Msg("Cannot create data dir, persistence disabled")
			m.snapshotPath = ""
		}
	}

	if m.snapshotPath != "" {
		m.loadSnapshot()
		go m.saveLoop()
	}

	log.Info().Str("snapshot", m.snapshotPath).Msg("Memory store configured")

	return m
}

// requestSave signals the background goroutine to persist data.
// Non-blocking: coalesces multiple rapid writes into one disk flush.
func (m *MemoryStore) requestSave() {
	if m.snapshotPath == "" {
		return
	}
	select {
	case m.saveCh <- struct{}{}:
	default:
		// Already pending
	}
}

// saveLoop runs in a goroutine, debouncing save requests (max 1 write per 500ms).
func (m *MemoryStore) saveLoop() {
	for {
		select {
		case <-m.doneCh:
			return
		case <-m.saveCh:
			time.Sleep(500 * time.Millisecond) // debounce
			m.saveSnapshot()
		}
	}
}

// saveSnapshot persists all data to disk as JSON.
func (m *MemoryStore) saveSnapshot() {
	m.mu.RLock()
	snap := snapshot{
		Cases:        m.cases,
		Applications: m.applications,
		Summaries:    m.summaries,
		Interactions: m.interactions,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	m.mu.RUnlock()

	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal snapshot")
		return
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	// Write to temp file then rename for atomicity
	tmp := m.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		log.Error().Err(err).Str("path", tmp).Msg("Failed to write snapshot tmp")
		return
	}
	if err := os.Rename(tmp, m.snapshotPath); err != nil {
		log.Error().Err(err).Str("path", m.snapshotPath).Msg("Failed to rename snapshot")
		return
	}

	log.Debug().Str("path", m.snapshotPath).Msg("Snapshot saved")
}

// loadSnapshot reads data from disk on startup.
func (m *MemoryStore) loadSnapshot() {
	data, err := os.ReadFile(m.snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", m.snapshotPath).Msg("No snapshot file found, starting fresh")
			return
		}
		log.Warn().Err(err).Str("path", m.snapshotPath).Msg("Failed to read snapshot")
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Error().Err(err).Str("path", m.snapshotPath).Msg("Failed to parse snapshot, starting fresh")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if snap.Cases != nil {
		m.cases = snap.Cases
	}
	if snap.Applications != nil {
		m.applications = snap.Applications
	}
	if snap.Summaries != nil {
		m.summaries = snap.Summaries
	}
	if snap.Interactions != nil {
		m.interactions = snap.Interactions
	}

	log.Info().
		Int("cases", len(m.cases)).
		Int("applications", len(m.applications)).
		Int("interactions", len(m.interactions)).
		Str("path", m.snapshotPath).
		Msg("Snapshot loaded")
}

func (m *MemoryStore) Ping(_ context.Context) error { return nil }

// Close stops background goroutines and forces a final snapshot write.
// Safe to call multiple times (second call is a no-op).
func (m *MemoryStore) Close() error {
	select {
	case <-m.doneCh:
		// Already closed
		return nil
	default:
		close(m.doneCh)
	}

	if m.snapshotPath != "" {
		m.saveSnapshot()
	}

	log.Info().Msg("Memory store closed")
	return nil
}

// ── Case Store ──────────────────────────────────────────────

func (m *MemoryStore) ListCases(_ context.Context) ([]models.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]models.Case, 0, len(m.cases))
	for _, c := range m.cases {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *MemoryStore) GetCase(_ context.Context, id string) (*models.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "case", Key: id}
	}
	copy := *c
	return &copy, nil
}

func (m *MemoryStore) CreateCase(_ context.Context, c *models.Case) error {
	m.mu.Lock()
	copy := *c
	if copy.CreatedAt.IsZero() {
		copy.CreatedAt = time.Now().UTC()
	}
	copy.UpdatedAt = copy.CreatedAt
	m.cases[c.ID] = &copy
	m.mu.Unlock()
	m.requestSave()
	return nil
}

func (m *MemoryStore) UpdateCase(_ context.Context, c *models.Case) error {
	m.mu.Lock()
	if _, ok := m.cases[c.ID]; !ok {
		m.mu.Unlock()
		return &ErrNotFound{Entity: "case", Key: c.ID}
	}
	copy := *c
	copy.UpdatedAt = time.Now().UTC()
	m.cases[c.ID] = &copy
	m.mu.Unlock()
	m.requestSave()
	return nil
}

func (m *MemoryStore) DeleteCase(_ context.Context, id string) error {
	m.mu.Lock()
	if _, ok := m.cases[id]; !ok {
		m.mu.Unlock()
		return &ErrNotFound{Entity: "case", Key: id}
	}
	delete(m.cases, id)
	delete(m.summaries, id)
	m.mu.Unlock()
	m.requestSave()
	return nil
}

// ── Application Store ───────────────────────────────────────

func (m *MemoryStore) GetApplication(_ context.Context, id string) (*models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.applications[id]
	if !ok {
		return nil, &ErrNotFound{Entity: "application", Key: id}
	}
	copy := *a
	return &copy, nil
}

func (m *MemoryStore) GetApplicationByCase(_ context.Context, caseID string) (*models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.applications {
		if a.CaseID == caseID {
			copy := *a
			return &copy, nil
		}
	}
	return nil, &ErrNotFound{Entity: "application", Key: "case:" + caseID}
}

func (m *MemoryStore) CreateApplication(_ context.Context, a *models.Application) error {
	m.mu.Lock()
	copy := *a
	if copy.SubmittedAt.IsZero() {
		copy.SubmittedAt = time.Now().UTC()
	}
	m.applications[a.ID] = &copy
	m.mu.Unlock()
	m.requestSave()
	return nil
}

func (m *MemoryStore) UpdateApplication(_ context.Context, a *models.Application) error {
	m.mu.Lock()
	if _, ok := m.applications[a.ID]; !ok {
		m.mu.Unlock()
		return &ErrNotFound{Entity: "application", Key: a.ID}
	}
	copy := *a
	m.applications[a.ID] = &copy
	m.mu.Unlock()
	m.requestSave()
	return nil
}

// ── Summary Store ───────────────────────────────────────────

func (m *MemoryStore) CreateSummary(_ context.Context, s *models.Summary) error {
	m.mu.Lock()
	copy := *s
	m.summaries[s.CaseID] = append(m.summaries[s.CaseID], &copy)
	m.mu.Unlock()
	m.requestSave()
	return nil
}

func (m *MemoryStore) GetLatestSummary(_ context.Context, caseID string) (*models.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	versions := m.summaries[caseID]
	if len(versions) == 0 {
		return nil, &ErrNotFound{Entity: "summary", Key: caseID}
	}
	copy := *versions[len(versions)-1]
	return &copy, nil
}

// LatestSummaryVersion returns 0 when the case has no summaries yet.
func (m *MemoryStore) LatestSummaryVersion(_ context.Context, caseID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	versions := m.summaries[caseID]
	if len(versions) == 0 {
		return 0, nil
	}
	return versions[len(versions)-1].Version, nil
}

func (m *MemoryStore) ListSummaries(_ context.Context, caseID string) ([]models.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	versions := m.summaries[caseID]
	result := make([]models.Summary, len(versions))
	for i, s := range versions {
		result[i] = *s
	}
	return result, nil
}

// ── Interaction Store ───────────────────────────────────────

func (m *MemoryStore) RecordInteraction(_ context.Context, rec *models.InteractionRecord) error {
	m.mu.Lock()
	copy := *rec
	m.interactions = append(m.interactions, &copy)
	m.mu.Unlock()
	m.requestSave()
	return nil
}

// ListInteractions returns records newest first. caseID filters when
// non-empty; limit <= 0 means no limit.
func (m *MemoryStore) ListInteractions(_ context.Context, caseID string, limit int) ([]models.InteractionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []models.InteractionRecord
	for i := len(m.interactions) - 1; i >= 0; i-- {
		rec := m.interactions[i]
		if caseID != "" && rec.CaseID != caseID {
			continue
		}
		result = append(result, *rec)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}
