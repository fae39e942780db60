package table

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"airpong/protocol"
)

func newTestManager() *Manager {
	logger, _ := test.NewNullLogger()
	return NewManager(Options{Logger: logger})
}

func TestManagerCreateTableCode(t *testing.T) {
	m := newTestManager()
	defer m.Shutdown()

	code := m.CreateTable()
	if len(code) != 6 {
		t.Fatalf("code %q, want 6 chars", code)
	}
	for _, r := range code {
		if !strings.ContainsRune(codeChars, r) {
			t.Fatalf("code %q has unexpected char %q", code, r)
		}
	}
	if got := m.GetOrCreateTable(code); got == nil || got.Code != code {
		t.Fatalf("GetOrCreateTable(%q) did not return the created table", code)
	}
	if m.Created() != 1 {
		t.Fatalf("Created = %d, want 1", m.Created())
	}
}

func TestManagerGetOrCreateReusesTable(t *testing.T) {
	m := newTestManager()
	defer m.Shutdown()

	if m.GetOrCreateTable("") != nil {
		t.Fatalf("expected nil table for empty code")
	}
	a := m.GetOrCreateTable("ABCDEF")
	b := m.GetOrCreateTable("ABCDEF")
	if a != b {
		t.Fatalf("expected the same table for the same code")
	}
	tables := m.ListTables()
	if len(tables) != 1 || tables[0].Code != "ABCDEF" || tables[0].Phase != "idle" {
		t.Fatalf("ListTables = %+v", tables)
	}
}

func TestManagerRemovesEmptyTable(t *testing.T) {
	m := newTestManager()
	defer m.Shutdown()

	tb := m.GetOrCreateTable("GONE22")
	id := join(t, tb, newFakeConn())
	if tables := m.ListTables(); len(tables) != 1 || tables[0].Clients != 1 {
		t.Fatalf("ListTables = %+v, want one table with one client", tables)
	}

	tb.Post(Leave{ClientID: id})
	deadline := time.Now().Add(time.Second)
	for len(m.ListTables()) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("table not removed after last client left")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if tb.Post(Command{ClientID: id, Action: protocol.ActionStart}) {
		t.Fatalf("removed table still accepts commands")
	}
}

