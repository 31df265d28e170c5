package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestExportDocument(t *testing.T) {
	ctx := context.Background()
	l, _ := openTestLedger(t)
	l.Add(ctx, "Awa", 10000, 0, "77 123 45 67", "crédit boutique")
	l.Add(ctx, "Moussa", 5000, 5000, "78 000 00 00", "tontine")

	doc := l.Export()
	if len(doc.Creanciers) != 2 {
		t.Errorf("got %d creanciers, want 2", len(doc.Creanciers))
	}
	if len(doc.Historique) != 2 {
		t.Errorf("got %d history entries, want 2", len(doc.Historique))
	}
	if doc.Version != "2.0" {
		t.Errorf("Version = %q, want 2.0", doc.Version)
	}
	if doc.Depot != "75523259" {
		t.Errorf("Depot = %q, want 75523259", doc.Depot)
	}
	if doc.DateExport.IsZero() {
		t.Error("Expected DateExport to be set")
	}
}

func TestDocumentFilename(t *testing.T) {
	doc := Document{DateExport: time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC)}
	if got := doc.Filename(); got != "maelys_creanciers_2026-08-28.json" {
		t.Errorf("Filename = %q", got)
	}
}

func TestParseImport(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	t.Run("valid document", func(t *testing.T) {
		data := []byte(`{
			"creanciers": [{"id":"CRED-1","nom":"Awa","montant":10000,"verse":4000}],
			"historique": [{"type":"AJOUT","details":{"nom":"Awa"},"date":"2026-01-01T00:00:00Z","utilisateur":"Maëlys Market"}],
			"version": "2.0",
			"unknownField": true
		}`)

		records, history, err := ParseImport(data, now)
		if err != nil {
			t.Fatalf("ParseImport failed: %v", err)
		}
		if len(records) != 1 || records[0].Remaining != 6000 {
			t.Errorf("records = %+v", records)
		}
		if len(history) != 1 {
			t.Errorf("got %d history entries, want 1", len(history))
		}
	})

	t.Run("historique is optional", func(t *testing.T) {
		records, history, err := ParseImport([]byte(`{"creanciers": []}`), now)
		if err != nil {
			t.Fatalf("ParseImport failed: %v", err)
		}
		if len(records) != 0 || history != nil {
			t.Errorf("records/history = %v/%v, want empty", records, history)
		}
	})

	t.Run("rejects bad payloads", func(t *testing.T) {
		cases := []struct {
			name string
			data string
		}{
			{"not json", `{broken`},
			{"missing creanciers", `{"historique": []}`},
			{"creanciers not an array", `{"creanciers": {"nom":"Awa"}}`},
			{"creanciers is a string", `{"creanciers": "Awa"}`},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, _, err := ParseImport([]byte(tc.data), now); !errors.Is(err, ErrImportFormat) {
					t.Errorf("error = %v, want ErrImportFormat", err)
				}
			})
		}
	})

	t.Run("legacy export imports with migration applied", func(t *testing.T) {
		data := []byte(`{"creanciers": [{"id":"CRED-1","nom":"Awa","montant":1000,"reste":300}]}`)

		records, _, err := ParseImport(data, now)
		if err != nil {
			t.Fatalf("ParseImport failed: %v", err)
		}
		if records[0].Paid != 700 {
			t.Errorf("Paid = %v, want migrated 700", records[0].Paid)
		}
	})
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	l, _ := openTestLedger(t)
	l.Add(ctx, "Awa", 10000, 0, "77 123 45 67", "crédit boutique")
	r, _ := l.Add(ctx, "Moussa", 5000, 0, "78 000 00 00", "tontine")
	l.ApplyPayment(ctx, r.ID, 5000)

	doc := l.Export()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	records, history, err := ParseImport(data, time.Now())
	if err != nil {
		t.Fatalf("ParseImport failed: %v", err)
	}

	other, _ := openTestLedger(t)
	if err := other.ReplaceAll(ctx, records, history, yes); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	got := other.Records()
	want := l.Records()
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	byID := make(map[string]int)
	for i, r := range got {
		byID[r.ID] = i
	}
	for _, w := range want {
		i, ok := byID[w.ID]
		if !ok {
			t.Errorf("record %s missing after round-trip", w.ID)
			continue
		}
		g := got[i]
		if g.Name != w.Name || g.Amount != w.Amount || g.Paid != w.Paid ||
			g.Remaining != w.Remaining || g.Statut != w.Statut ||
			g.RemindersSent != w.RemindersSent {
			t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", g, w)
		}
	}
	if len(other.History(historyLimit)) != len(l.History(historyLimit)) {
		t.Error("history length changed across round-trip")
	}
}

func TestReplaceAllDeclined(t *testing.T) {
	ctx := context.Background()
	l, _ := openTestLedger(t)
	l.Add(ctx, "Awa", 10000, 0, "77", "crédit")

	if err := l.ReplaceAll(ctx, nil, nil, no); !errors.Is(err, ErrConfirmationDeclined) {
		t.Fatalf("error = %v, want ErrConfirmationDeclined", err)
	}
	if len(l.Records()) != 1 {
		t.Error("Declined import must leave the store untouched")
	}
}
