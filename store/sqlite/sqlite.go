/*
Package sqlite provides a SQLite-backed implementation of ledger.StudentStore.

PURPOSE:
  Persists student snapshots with optimistic concurrency. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  students:     One row per student; fee profile stored as JSON, plus a
                version column for optimistic concurrency.
  transactions: One row per payment, replaced wholesale on Update. The
                audit snapshot is stored as JSON; queryable fields
                (category, year, status) are columns.

OPTIMISTIC CONCURRENCY:
  Update runs inside a database transaction:
    1. Read the stored version
    2. Reject with ErrConcurrentModification on mismatch
    3. Replace the student row (version+1) and its transaction rows
  Either everything commits or nothing does - the all-or-nothing contract
  the ledger core requires of its caller.

WAL MODE:
  SQLite is opened with WAL for better concurrency: readers don't block,
  single writer at a time, better crash recovery.

USAGE:
  st, err := sqlite.New("./data/fees.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - ledger/store.go: interface definition and concurrency contract
  - ledger/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/brightpath/fee-engine/ledger"
)

// Store implements ledger.StudentStore using SQLite.
type Store struct {
	db *sql.DB
}

var _ ledger.StudentStore = (*Store)(nil)

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		academic_year TEXT NOT NULL,
		class TEXT NOT NULL,
		student_type TEXT NOT NULL,
		status TEXT NOT NULL,
		fee_profile_json TEXT NOT NULL,
		version INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_students_class
		ON students(academic_year, class);

	CREATE TABLE IF NOT EXISTS transactions (
		receipt_id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		academic_year TEXT NOT NULL,
		category TEXT NOT NULL,
		amount TEXT NOT NULL,
		payment_mode TEXT NOT NULL,
		account TEXT NOT NULL,
		date TEXT NOT NULL,
		remark TEXT,
		status TEXT NOT NULL,
		snapshot_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_student
		ON transactions(student_id, position);

	-- Hot path: completed-payment sums per (category, year)
	CREATE INDEX IF NOT EXISTS idx_transactions_key
		ON transactions(student_id, category, academic_year, status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// READS
// =============================================================================

func (s *Store) Get(ctx context.Context, id string) (ledger.Student, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, academic_year, class, student_type, status, fee_profile_json, version
		FROM students WHERE id = ?`, id)

	st, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Student{}, ledger.ErrStudentNotFound
	}
	if err != nil {
		return ledger.Student{}, err
	}

	st.Transactions, err = s.loadTransactions(ctx, id)
	if err != nil {
		return ledger.Student{}, err
	}
	return st, nil
}

func (s *Store) List(ctx context.Context) ([]ledger.Student, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, academic_year, class, student_type, status, fee_profile_json, version
		FROM students ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].Transactions, err = s.loadTransactions(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (ledger.Student, error) {
	var st ledger.Student
	var profileJSON string
	err := row.Scan(&st.ID, &st.Name, &st.AcademicYear, &st.Class,
		&st.StudentType, &st.Status, &profileJSON, &st.Version)
	if err != nil {
		return ledger.Student{}, err
	}
	if err := json.Unmarshal([]byte(profileJSON), &st.Fees); err != nil {
		return ledger.Student{}, fmt.Errorf("decode fee profile for %s: %w", st.ID, err)
	}
	return st, nil
}

func (s *Store) loadTransactions(ctx context.Context, studentID string) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT receipt_id, academic_year, category, amount, payment_mode, account,
		       date, remark, status, snapshot_json, created_at
		FROM transactions WHERE student_id = ? ORDER BY position`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := []ledger.Transaction{}
	for rows.Next() {
		var (
			tx              ledger.Transaction
			amount          string
			date, createdAt string
			remark          sql.NullString
			snapshotJSON    string
		)
		err := rows.Scan(&tx.ReceiptID, &tx.AcademicYear, &tx.Category, &amount,
			&tx.PaymentMode, &tx.Account, &date, &remark, &tx.Status, &snapshotJSON, &createdAt)
		if err != nil {
			return nil, err
		}
		if tx.Amount, err = ledger.ParseAmount(amount); err != nil {
			return nil, fmt.Errorf("decode amount for %s: %w", tx.ReceiptID, err)
		}
		if tx.Date, err = time.Parse(time.RFC3339, date); err != nil {
			return nil, fmt.Errorf("decode date for %s: %w", tx.ReceiptID, err)
		}
		if tx.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("decode created_at for %s: %w", tx.ReceiptID, err)
		}
		tx.Remark = remark.String
		if err := json.Unmarshal([]byte(snapshotJSON), &tx.Snapshot); err != nil {
			return nil, fmt.Errorf("decode snapshot for %s: %w", tx.ReceiptID, err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// =============================================================================
// WRITES
// =============================================================================

func (s *Store) Create(ctx context.Context, st ledger.Student) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	profileJSON, err := json.Marshal(st.Fees)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO students (id, name, academic_year, class, student_type, status,
			fee_profile_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		st.ID, st.Name, string(st.AcademicYear), st.Class, st.StudentType,
		string(st.Status), string(profileJSON), now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ledger.ErrStudentExists
		}
		return err
	}

	if err := insertTransactions(ctx, tx, st.ID, st.Transactions); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Update(ctx context.Context, st ledger.Student) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var stored int64
	err = tx.QueryRowContext(ctx, `SELECT version FROM students WHERE id = ?`, st.ID).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.ErrStudentNotFound
	}
	if err != nil {
		return err
	}
	if stored != st.Version {
		return ledger.ErrConcurrentModification
	}

	profileJSON, err := json.Marshal(st.Fees)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = tx.ExecContext(ctx, `
		UPDATE students SET name = ?, academic_year = ?, class = ?, student_type = ?,
			status = ?, fee_profile_json = ?, version = version + 1, updated_at = ?
		WHERE id = ?`,
		st.Name, string(st.AcademicYear), st.Class, st.StudentType,
		string(st.Status), string(profileJSON), now, st.ID)
	if err != nil {
		return err
	}

	// Transaction history can shrink (deletion), so the row set is replaced.
	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE student_id = ?`, st.ID); err != nil {
		return err
	}
	if err := insertTransactions(ctx, tx, st.ID, st.Transactions); err != nil {
		return err
	}
	return tx.Commit()
}

func insertTransactions(ctx context.Context, tx *sql.Tx, studentID string, txs []ledger.Transaction) error {
	for i, t := range txs {
		snapshotJSON, err := json.Marshal(t.Snapshot)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transactions (receipt_id, student_id, position, academic_year,
				category, amount, payment_mode, account, date, remark, status,
				snapshot_json, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ReceiptID, studentID, i, string(t.AcademicYear), string(t.Category),
			t.Amount.String(), t.PaymentMode, t.Account,
			t.Date.UTC().Format(time.RFC3339), t.Remark, string(t.Status),
			string(snapshotJSON), t.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return err
		}
	}
	return nil
}
