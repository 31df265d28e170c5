package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/maelys-market/creanciers/internal/models"
)

// Export envelope constants, pinned to the legacy file format.
const (
	ExportVersion = "2.0"
	DepositNumber = "75523259"
)

// Document is the import/export envelope. Exports from the legacy web
// application use the same shape, so the two implementations can exchange
// files in both directions.
type Document struct {
	Creanciers []models.DebtRecord  `json:"creanciers"`
	Historique []models.ActionEntry `json:"historique"`
	DateExport time.Time            `json:"dateExport"`
	Version    string               `json:"version"`
	Depot      string               `json:"depot"`
}

// Filename names an export file after its export date.
func (d Document) Filename() string {
	return fmt.Sprintf("maelys_creanciers_%s.json", d.DateExport.Format("2006-01-02"))
}

// Export snapshots the whole store into an export document.
func (l *Ledger) Export() Document {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := make([]models.DebtRecord, len(l.records))
	copy(records, l.records)
	history := make([]models.ActionEntry, len(l.history))
	copy(history, l.history)

	return Document{
		Creanciers: records,
		Historique: history,
		DateExport: l.now(),
		Version:    ExportVersion,
		Depot:      DepositNumber,
	}
}

// ParseImport validates and decodes an import payload. The document must
// carry a "creanciers" key holding a JSON array; anything else aborts with
// ErrImportFormat and leaves the caller's store untouched. Records are run
// through the same migration as persisted data, so legacy exports import
// cleanly. Unknown fields are ignored.
func ParseImport(data []byte, now time.Time) ([]models.DebtRecord, []models.ActionEntry, error) {
	var envelope struct {
		Creanciers json.RawMessage      `json:"creanciers"`
		Historique []models.ActionEntry `json:"historique"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	if len(envelope.Creanciers) == 0 {
		return nil, nil, fmt.Errorf("%w: missing creanciers", ErrImportFormat)
	}
	if first := firstByte(envelope.Creanciers); first != '[' {
		return nil, nil, fmt.Errorf("%w: creanciers must be an array", ErrImportFormat)
	}

	records, _, err := migrateRecords(envelope.Creanciers, now)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}

	return records, envelope.Historique, nil
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
