/*
store.go - Persistence interface for student snapshots

PURPOSE:
  Defines the boundary between the ledger and the database. The ledger's
  functions take a full, consistent Student and produce a full, consistent
  replacement; the store's job is to apply that replacement as a single
  atomic read-modify-write.

CONCURRENCY CONTRACT:
  Two staff members may record payments for the same student at once. Every
  Student carries a Version; Update succeeds only when the stored version
  still matches, bumping it by one. On ErrConcurrentModification the caller
  re-reads and retries (see api.withStudent).

IMPLEMENTATIONS:
  - ledger/store: in-memory, for tests and development
  - store/sqlite: SQLite-backed, for production
*/
package ledger

import "context"

// StudentStore persists student snapshots with optimistic concurrency.
type StudentStore interface {
	// Get returns the student with the given ID, or ErrStudentNotFound.
	Get(ctx context.Context, id string) (Student, error)

	// List returns all students, ordered by name.
	List(ctx context.Context) ([]Student, error)

	// Create inserts a new student at version 1.
	// Returns ErrStudentExists on duplicate ID.
	Create(ctx context.Context, s Student) error

	// Update replaces the stored snapshot if the stored version equals
	// s.Version, and bumps the version. Returns ErrConcurrentModification
	// on a version mismatch and ErrStudentNotFound for unknown IDs.
	Update(ctx context.Context, s Student) error
}
