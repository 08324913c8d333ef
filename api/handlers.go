/*
handlers.go - HTTP handlers for the fee ledger

PURPOSE:
  Exposes the ledger facade over REST. Handlers parse input, run the
  read-modify-write loop against the student store, and serialize results.

ENDPOINTS:
  Students:
    POST   /api/students                         Enroll student
    GET    /api/students                         List students
    GET    /api/students/{id}                    Get student with history
    POST   /api/students/{id}/status             Admin enrolment-status toggle
    GET    /api/students/{id}/summary            Current-year dues per category
    GET    /api/students/{id}/summary/{category} One (category, year) position

  Payments:
    POST   /api/students/{id}/payments                        Record payment
    POST   /api/students/{id}/payments/{receiptID}/status     Promote/cancel pending
    DELETE /api/students/{id}/payments/{receiptID}            Delete with reversal

  Rollover:
    POST   /api/students/{id}/rollover           Advance one student
    POST   /api/admin/rollover                   Advance a whole class

CONCURRENCY:
  Every mutation runs as an atomic read-modify-write: load the student,
  apply the pure ledger transform, store the replacement under an optimistic
  version check, and retry from the top on conflict. The ledger core never
  sees a partially-updated student.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightpath/fee-engine/ledger"
)

// retryLimit bounds the optimistic-concurrency retry loop. Conflicts are
// rare (two clerks on one student); three attempts is plenty.
const retryLimit = 3

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  ledger.StudentStore
	Facade *ledger.Facade
	Log    *slog.Logger
}

// NewHandler creates a handler over the given store and facade.
func NewHandler(store ledger.StudentStore, facade *ledger.Facade, log *slog.Logger) *Handler {
	return &Handler{Store: store, Facade: facade, Log: log}
}

// withStudent runs fn as a read-modify-write with retry on version conflict.
// fn must be pure in the ledger sense: same input, same output, no side
// effects - it may run more than once.
func (h *Handler) withStudent(ctx context.Context, id string, fn func(ledger.Student) (ledger.Student, error)) (ledger.Student, error) {
	var lastErr error
	for attempt := 0; attempt < retryLimit; attempt++ {
		s, err := h.Store.Get(ctx, id)
		if err != nil {
			return ledger.Student{}, err
		}
		next, err := fn(s)
		if err != nil {
			return ledger.Student{}, err
		}
		err = h.Store.Update(ctx, next)
		if err == nil {
			next.Version++
			return next, nil
		}
		if !ledger.IsRetryable(err) {
			return ledger.Student{}, err
		}
		lastErr = err
	}
	return ledger.Student{}, lastErr
}

// =============================================================================
// STUDENTS
// =============================================================================

func (h *Handler) EnrollStudent(w http.ResponseWriter, r *http.Request) {
	var req EnrollStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	s, err := h.Facade.Enroll(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Store.Create(r.Context(), s); err != nil {
		writeError(w, err)
		return
	}
	s.Version = 1
	writeJSON(w, http.StatusCreated, toStudentDTO(s, false))
}

func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]StudentDTO, 0, len(students))
	for _, s := range students {
		out = append(out, toStudentDTO(s, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	s, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(s, true))
}

// SetStudentStatus is the administrative toggle between current and inactive.
// It deliberately bypasses the ledger: enrolment status has no fee effect.
func (h *Handler) SetStudentStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStudentStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	to := ledger.StudentStatus(req.Status)
	if to != ledger.StatusCurrent && to != ledger.StatusInactive {
		writeError(w, &ledger.ValidationError{Field: "status", Message: "must be current or inactive"})
		return
	}

	s, err := h.withStudent(r.Context(), chi.URLParam(r, "id"), func(s ledger.Student) (ledger.Student, error) {
		s.Status = to
		return s, nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(s, false))
}

// =============================================================================
// SUMMARIES
// =============================================================================

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	summaries := h.Facade.Summaries(s)
	out := make([]SummaryDTO, 0, len(summaries))
	for _, c := range summaries {
		out = append(out, toSummaryDTO(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCategorySummary returns the position for one category. The ?year=
// parameter targets a prior year; it defaults to the student's current year.
func (h *Handler) GetCategorySummary(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if !ledger.ValidCategory(category) {
		writeError(w, &ledger.ValidationError{Field: "category", Message: "unknown fee category"})
		return
	}

	s, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	year := s.AcademicYear
	if q := r.URL.Query().Get("year"); q != "" {
		if year, err = ledger.ParseAcademicYear(q); err != nil {
			writeError(w, &ledger.ValidationError{Field: "year", Message: "must be a contiguous YY-YY year"})
			return
		}
	}

	writeJSON(w, http.StatusOK, toSummaryDTO(h.Facade.Summary(s, ledger.FeeCategory(category), year)))
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var result ledger.PaymentResult
	s, err := h.withStudent(r.Context(), chi.URLParam(r, "id"), func(s ledger.Student) (ledger.Student, error) {
		next, res, err := h.Facade.RecordPayment(s, req)
		if err != nil {
			return ledger.Student{}, err
		}
		result = res
		return next, nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	paymentsRecorded.WithLabelValues(string(result.Transaction.Category), string(result.Transaction.Status)).Inc()
	writeJSON(w, http.StatusCreated, PaymentResponse{
		Transaction: toTransactionDTO(result.Transaction),
		Student:     toStudentDTO(s, false),
	})
}

func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	receiptID := chi.URLParam(r, "receiptID")
	s, err := h.withStudent(r.Context(), chi.URLParam(r, "id"), func(s ledger.Student) (ledger.Student, error) {
		next, _, err := h.Facade.UpdateStatus(s, receiptID, ledger.TransactionStatus(req.Status))
		return next, err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(s, true))
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	receiptID := chi.URLParam(r, "receiptID")
	s, err := h.withStudent(r.Context(), chi.URLParam(r, "id"), func(s ledger.Student) (ledger.Student, error) {
		next, _, err := h.Facade.DeleteTransaction(s, receiptID)
		return next, err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(s, true))
}

// =============================================================================
// ROLLOVER
// =============================================================================

func (h *Handler) RolloverStudent(w http.ResponseWriter, r *http.Request) {
	var req RolloverRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	targetYear, err := ledger.ParseAcademicYear(req.TargetYear)
	if err != nil {
		writeError(w, &ledger.ValidationError{Field: "target_year", Message: "must be a contiguous YY-YY year"})
		return
	}

	var result ledger.RolloverResult
	s, err := h.withStudent(r.Context(), chi.URLParam(r, "id"), func(s ledger.Student) (ledger.Student, error) {
		if s.Status == ledger.StatusInactive {
			return ledger.Student{}, &ledger.ValidationError{Field: "status", Message: "inactive students do not roll over"}
		}
		next, res, err := h.Facade.Rollover(r.Context(), s, targetYear)
		if err != nil {
			return ledger.Student{}, err
		}
		result = res
		return next, nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	rolloversProcessed.WithLabelValues("single").Inc()
	writeJSON(w, http.StatusOK, RolloverResponse{
		Student:               toStudentDTO(s, false),
		From:                  string(result.From),
		To:                    string(result.To),
		ToClass:               result.ToClass,
		CarryForward:          result.CarryForward.Minor(),
		TransportCarryForward: result.TransportCarryForward.Minor(),
		ScheduleFallback:      result.Schedule.Fallback,
		ScheduleYear:          string(result.Schedule.Year),
	})
}

// BatchRollover advances every active student of a class. Failures are
// reported per student; one bad record does not stop the batch.
func (h *Handler) BatchRollover(w http.ResponseWriter, r *http.Request) {
	var req BatchRolloverRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	targetYear, err := ledger.ParseAcademicYear(req.TargetYear)
	if err != nil {
		writeError(w, &ledger.ValidationError{Field: "target_year", Message: "must be a contiguous YY-YY year"})
		return
	}
	if req.Class == "" {
		writeError(w, &ledger.ValidationError{Field: "class", Message: "required"})
		return
	}

	students, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := BatchRolloverResponse{Errors: map[string]string{}}
	for _, s := range students {
		if s.Class != req.Class {
			continue
		}
		if s.Status == ledger.StatusInactive {
			resp.Skipped = append(resp.Skipped, s.ID)
			continue
		}
		_, err := h.withStudent(r.Context(), s.ID, func(s ledger.Student) (ledger.Student, error) {
			next, _, err := h.Facade.Rollover(r.Context(), s, targetYear)
			return next, err
		})
		if err != nil {
			resp.Errors[s.ID] = err.Error()
			continue
		}
		resp.RolledOver = append(resp.RolledOver, s.ID)
		rolloversProcessed.WithLabelValues("batch").Inc()
	}
	if len(resp.Errors) == 0 {
		resp.Errors = nil
	}

	h.Log.Info("batch rollover complete",
		"class", req.Class, "target_year", targetYear,
		"rolled_over", len(resp.RolledOver), "skipped", len(resp.Skipped), "failed", len(resp.Errors))
	writeJSON(w, http.StatusOK, resp)
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
