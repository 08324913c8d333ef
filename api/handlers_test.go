package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath/fee-engine/api"
	"github.com/brightpath/fee-engine/ledger"
	"github.com/brightpath/fee-engine/ledger/store"
	"github.com/brightpath/fee-engine/schedule"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const schoolConfig = `{
	"base_student_type": "regular",
	"class_sequence": ["1", "2", "3"],
	"payment_modes": ["cash", "cheque", "online"],
	"accounts": ["main"],
	"fees": [
		{"academic_year": "24-25", "class": "1", "student_type": "regular",
		 "admission_fee": 2000, "tuition_fee": 7000},
		{"academic_year": "25-26", "class": "2", "student_type": "regular",
		 "admission_fee": 2500, "tuition_fee": 8000}
	]
}`

type testServer struct {
	router http.Handler
	store  *store.Memory
}

func newTestServer(t *testing.T) *testServer {
	cfg, err := schedule.Parse([]byte(schoolConfig))
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := store.NewMemory()
	facade := ledger.NewFacade(cfg.Provider(), cfg, cfg.BaseStudentType, log)
	h := api.NewHandler(mem, facade, log)

	return &testServer{router: api.NewRouter(h), store: mem}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

func (ts *testServer) enroll(t *testing.T) api.StudentDTO {
	rec := ts.do(t, http.MethodPost, "/api/students", ledger.EnrollmentInput{
		Name:         "Asha Verma",
		AcademicYear: "24-25",
		Class:        "1",
		StudentType:  "regular",
		MessFee:      2400,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[api.StudentDTO](t, rec)
}

func payment(amount int64, mode string) ledger.PaymentDraft {
	return ledger.PaymentDraft{
		AcademicYear: "24-25",
		Category:     "school_fee",
		Amount:       amount,
		PaymentMode:  mode,
		Account:      "main",
		Date:         "2024-07-01",
	}
}

// =============================================================================
// STUDENT ENDPOINT TESTS
// =============================================================================

func TestAPI_EnrollAndGet(t *testing.T) {
	ts := newTestServer(t)

	dto := ts.enroll(t)
	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, "new", dto.Status)
	assert.Equal(t, int64(9000), dto.Fees.TuitionTotal)
	assert.Equal(t, int64(2400), dto.Fees.MessFee)

	rec := ts.do(t, http.MethodGet, "/api/students/"+dto.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	got := decode[api.StudentDTO](t, rec)
	assert.Equal(t, dto.ID, got.ID)
}

func TestAPI_EnrollValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/students", ledger.EnrollmentInput{
		Name: "X", AcademicYear: "24-26", Class: "1", StudentType: "regular",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_EnrollUnknownCohort(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/students", ledger.EnrollmentInput{
		Name: "X", AcademicYear: "24-25", Class: "1", StudentType: "scholarship",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code, "no schedule priced for the cohort")
}

func TestAPI_GetUnknownStudent(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/students/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ListStudents(t *testing.T) {
	ts := newTestServer(t)
	ts.enroll(t)

	rec := ts.do(t, http.MethodGet, "/api/students", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]api.StudentDTO](t, rec)
	assert.Len(t, list, 1)
}

func TestAPI_SetStudentStatus(t *testing.T) {
	ts := newTestServer(t)
	dto := ts.enroll(t)

	rec := ts.do(t, http.MethodPost, "/api/students/"+dto.ID+"/status",
		api.SetStudentStatusRequest{Status: "inactive"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "inactive", decode[api.StudentDTO](t, rec).Status)

	// Only the administrative states are accepted.
	rec = ts.do(t, http.MethodPost, "/api/students/"+dto.ID+"/status",
		api.SetStudentStatusRequest{Status: "new"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PAYMENT ENDPOINT TESTS
// =============================================================================

func TestAPI_RecordPayment(t *testing.T) {
	ts := newTestServer(t)
	dto := ts.enroll(t)

	rec := ts.do(t, http.MethodPost, "/api/students/"+dto.ID+"/payments", payment(4000, "cash"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[api.PaymentResponse](t, rec)
	assert.Equal(t, "completed", resp.Transaction.Status)
	assert.Equal(t, int64(4000), resp.Transaction.Amount)
	assert.Equal(t, int64(9000), resp.Transaction.Snapshot.RemainingBefore)
	assert.Equal(t, int64(5000), resp.Transaction.Snapshot.RemainingAfter)
}

func TestAPI_RecordPayment_Overpayment(t *testing.T) {
	ts := newTestServer(t)
	dto := ts.enroll(t)

	rec := ts.do(t, http.MethodPost, "/api/students/"+dto.ID+"/payments", payment(9001, "cash"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "overpayment")
}

func TestAPI_ChequeLifecycle(t *testing.T) {
	// GIVEN: A pending cheque covering part of the due
	// WHEN: It is promoted to completed over the API
	// THEN: The summary reflects the cleared amount

	ts := newTestServer(t)
	dto := ts.enroll(t)

	rec := ts.do(t, http.MethodPost, "/api/students/"+dto.ID+"/payments", payment(5000, "cheque"))
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[api.PaymentResponse](t, rec)
	require.Equal(t, "pending", resp.Transaction.Status)

	path := fmt.Sprintf("/api/students/%s/payments/%s/status", dto.ID, resp.Transaction.ReceiptID)
	rec = ts.do(t, http.MethodPost, path, api.UpdateStatusRequest{Status: "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/students/"+dto.ID+"/summary/school_fee", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[api.SummaryDTO](t, rec)
	assert.Equal(t, int64(4000), sum.RemainingBefore)
	assert.Equal(t, int64(0), sum.PendingPayments)
}

func TestAPI_UpdateStatus_IllegalTransition(t *testing.T) {
	ts := newTestServer(t)
	dto := ts.enroll(t)

	rec := ts.do(t, http.MethodPost, "/api/students/"+dto.ID+"/payments", payment(1000, "cash"))
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[api.PaymentResponse](t, rec)

	path := fmt.Sprintf("/api/students/%s/payments/%s/status", dto.ID, resp.Transaction.ReceiptID)
	rec = ts.do(t, http.MethodPost, path, api.UpdateStatusRequest{Status: "cancelled"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_transition")
}

func TestAPI_DeletePayment(t *testing.T) {
	ts := newTestServer(t)
	dto := ts.enroll(t)

	rec := ts.do(t, http.MethodPost, "/api/students/"+dto.ID+"/payments", payment(4000, "cash"))
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[api.PaymentResponse](t, rec)

	path := fmt.Sprintf("/api/students/%s/payments/%s", dto.ID, resp.Transaction.ReceiptID)
	rec = ts.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[api.StudentDTO](t, rec).Transactions)

	rec = ts.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "already deleted")
}

// =============================================================================
// SUMMARY ENDPOINT TESTS
// =============================================================================

func TestAPI_Summary(t *testing.T) {
	ts := newTestServer(t)
	dto := ts.enroll(t)

	rec := ts.do(t, http.MethodGet, "/api/students/"+dto.ID+"/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	sums := decode[[]api.SummaryDTO](t, rec)
	require.Len(t, sums, 4)
	assert.Equal(t, "school_fee", sums[0].Category)
	assert.Equal(t, int64(9000), sums[0].NetDue)
	assert.Equal(t, int64(9000), sums[0].Available)
}

func TestAPI_CategorySummary_UnknownCategory(t *testing.T) {
	ts := newTestServer(t)
	dto := ts.enroll(t)

	rec := ts.do(t, http.MethodGet, "/api/students/"+dto.ID+"/summary/library_fee", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// ROLLOVER ENDPOINT TESTS
// =============================================================================

func TestAPI_Rollover(t *testing.T) {
	ts := newTestServer(t)
	dto := ts.enroll(t)

	rec := ts.do(t, http.MethodPost, "/api/students/"+dto.ID+"/payments", payment(6000, "cash"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/students/"+dto.ID+"/rollover",
		api.RolloverRequest{TargetYear: "25-26"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[api.RolloverResponse](t, rec)
	assert.Equal(t, "24-25", resp.From)
	assert.Equal(t, "25-26", resp.To)
	assert.Equal(t, "2", resp.ToClass)
	assert.Equal(t, int64(5400), resp.CarryForward, "3000 school + 2400 mess")
	assert.Equal(t, "current", resp.Student.Status)
	assert.Equal(t, int64(8000), resp.Student.Fees.TuitionTotal, "admission waived for continuing students")
}

func TestAPI_Rollover_NonContiguous(t *testing.T) {
	ts := newTestServer(t)
	dto := ts.enroll(t)

	rec := ts.do(t, http.MethodPost, "/api/students/"+dto.ID+"/rollover",
		api.RolloverRequest{TargetYear: "26-27"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Rollover_InactiveRejected(t *testing.T) {
	ts := newTestServer(t)
	dto := ts.enroll(t)

	rec := ts.do(t, http.MethodPost, "/api/students/"+dto.ID+"/status",
		api.SetStudentStatusRequest{Status: "inactive"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/students/"+dto.ID+"/rollover",
		api.RolloverRequest{TargetYear: "25-26"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_BatchRollover(t *testing.T) {
	// GIVEN: Two class-1 students, one inactive, plus one in another class
	// WHEN: Batch-rolling class 1 into 25-26
	// THEN: The active class-1 student advances, the inactive one is skipped,
	//       the other class is untouched

	ts := newTestServer(t)
	a := ts.enroll(t)
	b := ts.enroll(t)
	c := ts.enroll(t)

	rec := ts.do(t, http.MethodPost, "/api/students/"+b.ID+"/status",
		api.SetStudentStatusRequest{Status: "inactive"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Move c out of the batch's class.
	ctx := context.Background()
	sc, err := ts.store.Get(ctx, c.ID)
	require.NoError(t, err)
	sc.Class = "3"
	require.NoError(t, ts.store.Update(ctx, sc))

	rec = ts.do(t, http.MethodPost, "/api/admin/rollover",
		api.BatchRolloverRequest{Class: "1", TargetYear: "25-26"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[api.BatchRolloverResponse](t, rec)
	assert.Equal(t, []string{a.ID}, resp.RolledOver)
	assert.Equal(t, []string{b.ID}, resp.Skipped)
	assert.Empty(t, resp.Errors)
}

func TestAPI_Healthz(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
