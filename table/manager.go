package table

import (
	"crypto/rand"
	"math/big"
	"sort"
	"sync"

	"go.uber.org/atomic"
)

// TableInfo is returned by the API for the table list.
type TableInfo struct {
	Code    string `json:"code"`
	Clients int    `json:"clients"`
	Phase   string `json:"phase"`
}

// Manager holds multiple tables by code. Tables are created on first join or
// via CreateTable, and removed when the last client leaves.
type Manager struct {
	mu      sync.RWMutex
	tables  map[string]*Table
	opts    Options
	created atomic.Int64
}

func NewManager(opts Options) *Manager {
	return &Manager{
		tables: make(map[string]*Table),
		opts:   opts,
	}
}

// GetOrCreateTable returns the table for the given code, creating it if needed.
func (m *Manager) GetOrCreateTable(code string) *Table {
	if code == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[code]; ok {
		return t
	}
	return m.startLocked(code)
}

// CreateTable generates a unique 6-char code, creates the table, and returns the code.
func (m *Manager) CreateTable() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		code := generateCode(6)
		if _, exists := m.tables[code]; exists {
			continue
		}
		m.startLocked(code)
		return code
	}
}

func (m *Manager) startLocked(code string) *Table {
	t := New(code, m.opts)
	t.OnEmpty = m.removeTable
	m.tables[code] = t
	m.created.Inc()
	go t.Run()
	return t
}

// removeTable runs on the table's own goroutine, so it only signals Stop.
func (m *Manager) removeTable(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[code]; ok {
		t.Stop()
		delete(m.tables, code)
	}
}

// Shutdown stops every table.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for code, t := range m.tables {
		t.Stop()
		delete(m.tables, code)
	}
}

// ListTables returns all active tables sorted by code.
func (m *Manager) ListTables() []TableInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TableInfo, 0, len(m.tables))
	for code, t := range m.tables {
		out = append(out, TableInfo{Code: code, Clients: t.NumClients(), Phase: t.Phase()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Created reports how many tables were started since the manager was built.
func (m *Manager) Created() int64 {
	return m.created.Load()
}

const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateCode(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		idx, _ := rand.Int(rand.Reader, max)
		b[i] = codeChars[idx.Int64()]
	}
	return string(b)
}
