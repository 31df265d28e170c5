// Package service exposes the ledger to the presentation collaborator as a
// JSON HTTP API.
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/maelys-market/creanciers/internal/calculator"
	"github.com/maelys-market/creanciers/internal/ledger"
	"github.com/maelys-market/creanciers/internal/models"
	"github.com/maelys-market/creanciers/internal/notify"
)

// maxImportSize bounds import uploads (1 MiB is two orders of magnitude
// above any realistic store for this shop).
const maxImportSize = 1 << 20

// historyPageSize is how many action log entries the history view shows.
const historyPageSize = 10

// timeNow is swapped out in tests.
var timeNow = time.Now

// LedgerService handles the créanciers HTTP API.
type LedgerService struct {
	ledger   *ledger.Ledger
	composer *notify.Composer
}

// NewLedgerService creates a LedgerService over the given ledger and
// reminder composer.
func NewLedgerService(l *ledger.Ledger, c *notify.Composer) *LedgerService {
	return &LedgerService{ledger: l, composer: c}
}

// Routes registers all API endpoints on mux.
func (s *LedgerService) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/creanciers", s.list)
	mux.HandleFunc("POST /api/v1/creanciers", s.add)
	mux.HandleFunc("GET /api/v1/creanciers/{id}", s.get)
	mux.HandleFunc("PUT /api/v1/creanciers/{id}", s.update)
	mux.HandleFunc("DELETE /api/v1/creanciers/{id}", s.delete)
	mux.HandleFunc("POST /api/v1/creanciers/{id}/paiement", s.payment)
	mux.HandleFunc("POST /api/v1/creanciers/{id}/rappel", s.reminder)
	mux.HandleFunc("GET /api/v1/historique", s.history)
	mux.HandleFunc("GET /api/v1/export", s.export)
	mux.HandleFunc("POST /api/v1/import", s.importStore)
	mux.HandleFunc("POST /api/v1/reset", s.reset)
	mux.HandleFunc("GET /health", s.health)
}

// confirmFrom turns the request's confirm flag into the callback the
// ledger threads through destructive operations. The browser UI asks the
// user first and retries with confirm=true.
func confirmFrom(r *http.Request) ledger.Confirm {
	confirmed := r.URL.Query().Get("confirm") == "true"
	return func(prompt string) bool {
		if !confirmed {
			slog.Debug("Confirmation required", "prompt", prompt)
		}
		return confirmed
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrValidation), errors.Is(err, ledger.ErrImportFormat), errors.Is(err, notify.ErrZeroAmount):
		code = http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ledger.ErrConfirmationDeclined):
		code = http.StatusConflict
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// writeRecord responds with a mutated record. A persistence failure does
// not hide the mutation: the record is returned with a warning so the user
// knows the store and disk have diverged.
func writeRecord(w http.ResponseWriter, code int, record models.DebtRecord, err error) {
	if err == nil {
		writeJSON(w, code, map[string]any{"creancier": record})
		return
	}
	if errors.Is(err, ledger.ErrPersistence) {
		slog.Warn("Mutation applied but not persisted", "record_id", record.ID, "error", err)
		writeJSON(w, code, map[string]any{
			"creancier": record,
			"warning":   "sauvegarde échouée, vérifiez l'espace disponible",
		})
		return
	}
	writeError(w, err)
}

func (s *LedgerService) list(w http.ResponseWriter, r *http.Request) {
	records := s.ledger.Records()
	writeJSON(w, http.StatusOK, map[string]any{
		"creanciers": calculator.SortForDisplay(records),
		"stats":      calculator.ComputeStatistics(records),
	})
}

type recordRequest struct {
	Name    string  `json:"nom"`
	Amount  float64 `json:"montant"`
	Paid    float64 `json:"verse"`
	Contact string  `json:"whatsapp"`
	Reason  string  `json:"motif"`
}

func (s *LedgerService) add(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", ledger.ErrValidation, err))
		return
	}

	record, err := s.ledger.Add(r.Context(), req.Name, req.Amount, req.Paid, req.Contact, req.Reason)
	if err != nil && !errors.Is(err, ledger.ErrPersistence) {
		slog.Error("Add failed", "error", err)
		writeError(w, err)
		return
	}
	slog.Info("Record added", "record_id", record.ID, "nom", record.Name, "montant", record.Amount)
	writeRecord(w, http.StatusCreated, record, err)
}

func (s *LedgerService) get(w http.ResponseWriter, r *http.Request) {
	record, err := s.ledger.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"creancier": record})
}

func (s *LedgerService) update(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", ledger.ErrValidation, err))
		return
	}

	record, err := s.ledger.Update(r.Context(), r.PathValue("id"), req.Name, req.Contact, req.Reason, req.Paid)
	if err != nil && !errors.Is(err, ledger.ErrPersistence) {
		slog.Error("Update failed", "record_id", r.PathValue("id"), "error", err)
		writeError(w, err)
		return
	}
	slog.Info("Record updated", "record_id", record.ID)
	writeRecord(w, http.StatusOK, record, err)
}

func (s *LedgerService) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ledger.Delete(r.Context(), id, confirmFrom(r)); err != nil {
		if errors.Is(err, ledger.ErrPersistence) {
			slog.Warn("Delete applied but not persisted", "record_id", id, "error", err)
			writeJSON(w, http.StatusOK, map[string]any{
				"deleted": true,
				"warning": "sauvegarde échouée, vérifiez l'espace disponible",
			})
			return
		}
		writeError(w, err)
		return
	}
	slog.Info("Record deleted", "record_id", id)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *LedgerService) payment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"montant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", ledger.ErrValidation, err))
		return
	}

	id := r.PathValue("id")
	record, err := s.ledger.ApplyPayment(r.Context(), id, req.Amount)
	if err != nil && !errors.Is(err, ledger.ErrPersistence) {
		slog.Error("Payment failed", "record_id", id, "error", err)
		writeError(w, err)
		return
	}
	slog.Info("Payment recorded", "record_id", record.ID, "montant", req.Amount, "reste", record.Remaining)
	writeRecord(w, http.StatusOK, record, err)
}

// reminder composes the WhatsApp reminder and its dispatch link, then
// records the dispatch on the ledger.
func (s *LedgerService) reminder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	record, err := s.ledger.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}

	text, err := s.composer.ComposeReminder(record)
	if err != nil {
		slog.Error("Reminder composition failed", "record_id", id, "error", err)
		writeError(w, err)
		return
	}
	normalized := s.composer.NormalizeContact(record.Contact)
	target := s.composer.DispatchTarget(record.Contact, text)

	record, err = s.ledger.RecordReminderSent(r.Context(), id, normalized)
	if err != nil && !errors.Is(err, ledger.ErrPersistence) {
		writeError(w, err)
		return
	}
	slog.Info("Reminder dispatched", "record_id", id, "numero", normalized, "reminders_sent", record.RemindersSent)

	resp := map[string]any{
		"message":   text,
		"url":       target,
		"creancier": record,
	}
	if errors.Is(err, ledger.ErrPersistence) {
		resp["warning"] = "sauvegarde échouée, vérifiez l'espace disponible"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *LedgerService) history(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"historique": s.ledger.History(historyPageSize),
	})
}

func (s *LedgerService) export(w http.ResponseWriter, _ *http.Request) {
	doc := s.ledger.Export()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	slog.Info("Store exported", "records", len(doc.Creanciers), "filename", doc.Filename())
}

func (s *LedgerService) importStore(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", ledger.ErrImportFormat, err))
		return
	}

	records, history, err := ledger.ParseImport(body, timeNow())
	if err != nil {
		slog.Error("Import rejected", "error", err)
		writeError(w, err)
		return
	}

	if err := s.ledger.ReplaceAll(r.Context(), records, history, confirmFrom(r)); err != nil {
		if errors.Is(err, ledger.ErrPersistence) {
			slog.Warn("Import applied but not persisted", "error", err)
			writeJSON(w, http.StatusOK, map[string]any{
				"imported": len(records),
				"warning":  "sauvegarde échouée, vérifiez l'espace disponible",
			})
			return
		}
		writeError(w, err)
		return
	}
	slog.Info("Store imported", "records", len(records))
	writeJSON(w, http.StatusOK, map[string]any{"imported": len(records)})
}

func (s *LedgerService) reset(w http.ResponseWriter, r *http.Request) {
	err := s.ledger.ResetAll(r.Context(), confirmFrom(r))
	if err != nil && !errors.Is(err, ledger.ErrPersistence) {
		writeError(w, err)
		return
	}
	slog.Info("Store reset")
	resp := map[string]any{"reset": true}
	if errors.Is(err, ledger.ErrPersistence) {
		slog.Warn("Reset applied but not persisted", "error", err)
		resp["warning"] = "sauvegarde échouée, vérifiez l'espace disponible"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *LedgerService) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
