// Package models defines the core domain models for the créanciers ledger.
//
// # Models
//
//   - DebtRecord: one debtor's ledger entry (amount owed, amount paid,
//     derived balance and status)
//   - ActionEntry: one line of the bounded, append-only action log
//
// # Wire format
//
// JSON field names are the legacy French keys (nom, montant, verse, reste,
// motif, ...) so that data exported by the original web application — or
// still sitting in a browser's localStorage dump — imports without any
// translation step. Status values are likewise the legacy strings
// ("EN_COURS", "SOLDE").
//
// # Design principles
//
// 1. **Derived fields are never authoritative**: Reste and Statut are
// recomputed from (Montant, Verse) on every mutation; stored values are
// only a serialization convenience.
// 2. **Stable addressing**: records are addressed by ID everywhere. The
// legacy application addressed records by display position, which breaks
// as soon as sorting diverges from storage order.
package models
