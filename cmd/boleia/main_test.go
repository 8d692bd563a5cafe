package main

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/rewired-gh/boleia/internal/config"
	"github.com/rewired-gh/boleia/internal/session"
	"github.com/rewired-gh/boleia/internal/storage"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	cfg := &config.Config{
		Storage: config.StorageConfig{Backend: "memory", IDStrategy: "counter"},
		Seeder:  config.SeederConfig{Enabled: false},
		Stats: config.StatsConfig{
			Prices:   map[string]float64{"ana": 2.5},
			Currency: "EUR",
		},
	}
	sess, err := session.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Start(false); err != nil {
		t.Fatal(err)
	}
	return sess
}

func TestRun_AddUpdateDelete(t *testing.T) {
	sess := newSession(t)
	var out bytes.Buffer

	if err := run(sess, "add", []string{"-title", "Ana", "-start", "2026-10-13", "-people", "Jota, Marques"}, &out); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	ev, err := sess.Store.Get("1")
	if err != nil {
		t.Fatalf("Expected generated id 1: %v", err)
	}
	if ev.End != "2026-10-13" || ev.Name != "Ana" {
		t.Errorf("Expected end and name defaults, got %+v", ev)
	}
	if !reflect.DeepEqual(ev.People, []string{"Jota", "Marques"}) {
		t.Errorf("Unexpected people %v", ev.People)
	}

	if err := run(sess, "update", []string{"-id", "1", "-title", "Jame"}, &out); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	ev, _ = sess.Store.Get("1")
	if ev.Title != "Jame" || ev.Start != "2026-10-13" {
		t.Errorf("Expected only title to change, got %+v", ev)
	}

	if err := run(sess, "delete", []string{"-id", "1"}, &out); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(sess.Store.Events()) != 0 {
		t.Error("Expected no events after delete")
	}
	if err := run(sess, "delete", []string{"-id", "1"}, &out); !errors.Is(err, storage.ErrEventNotFound) {
		t.Errorf("Expected ErrEventNotFound, got %v", err)
	}
}

func TestRun_AddRejectsInvalidEvent(t *testing.T) {
	sess := newSession(t)

	err := run(sess, "add", []string{"-title", "Ana", "-start", "2026-10-14", "-end", "2026-10-13"}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if len(sess.Store.Events()) != 0 {
		t.Error("Invalid event should not be stored")
	}
}

func TestRun_ListAndStats(t *testing.T) {
	sess := newSession(t)
	for _, title := range []string{"Ana", "ana", "Jame"} {
		if err := run(sess, "add", []string{"-title", title, "-start", "2026-10-13"}, &bytes.Buffer{}); err != nil {
			t.Fatal(err)
		}
	}

	var list bytes.Buffer
	if err := run(sess, "list", nil, &list); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(list.String(), "2026-10-13"); got != 6 {
		t.Errorf("Expected 3 rows with start and end dates, got %d date cells:\n%s", got, list.String())
	}

	var st bytes.Buffer
	if err := run(sess, "stats", nil, &st); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(st.String(), "5.00 EUR") {
		t.Errorf("Expected ana subtotal 5.00 EUR in:\n%s", st.String())
	}

	if err := run(sess, "stats", []string{"-notify"}, &bytes.Buffer{}); err == nil {
		t.Error("Expected -notify to fail without a notifier")
	}
}

func TestRun_Export(t *testing.T) {
	sess := newSession(t)
	if err := run(sess, "add", []string{"-title", "Ana", "-start", "2026-10-13"}, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run(sess, "export", []string{"-format", "ics"}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "BEGIN:VEVENT") {
		t.Errorf("Expected a VEVENT, got:\n%s", out.String())
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	if err := run(newSession(t), "frobnicate", nil, &bytes.Buffer{}); err == nil {
		t.Error("Expected error for unknown command")
	}
}
