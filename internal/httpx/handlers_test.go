package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ariefcatur/go-wedding-orders/internal/availability"
	"github.com/ariefcatur/go-wedding-orders/internal/backend"
	"github.com/ariefcatur/go-wedding-orders/internal/checkout"
	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
	"github.com/ariefcatur/go-wedding-orders/internal/lifecycle"
	"github.com/ariefcatur/go-wedding-orders/internal/payment"
)

// fakeBackend records what reached the booking backend.
type fakeBackend struct {
	mu       sync.Mutex
	calls    []string
	proofCT  string
	verified map[string]any
}

func (f *fakeBackend) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
}

func (f *fakeBackend) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

const orderJSON = `{"id":7,"order_number":"WO-7","user_id":50,"event_date":"2026-03-14","venue":"Balai Kartini",
"estimated_guests":400,"price":9000000,"original_price":10000000,"discount_percent":"10.00","discount_amount":1000000,
"down_payment_amount":2700000,"status":"pending_payment","paid_amount":0,"remaining_amount":9000000,"is_fully_paid":false,
"included_services":[],"custom_features":[],"has_reviewed":false}`

func (f *fakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f.record(r)
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/api/availability/{y}/{m}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"bookedDates":["2026-03-14","2026-03-21"]}`)
	})
	r.Get("/api/booked-dates", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"bookedDates":["2026-03-14","2026-05-02"]}`)
	})
	r.Get("/api/availability/check", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"available":`+boolStr(r.URL.Query().Get("date") != "2026-03-28")+`}`)
	})
	r.Get("/api/orders/7", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":`+orderJSON+`}`)
	})
	r.Post("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"The given data was invalid.","errors":{"venue":["Venue terlalu pendek."]}}`)
	})
	r.Post("/api/orders/7/payments", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(4 << 20); err == nil {
			if _, hdr, err := r.FormFile("payment_proof"); err == nil {
				f.mu.Lock()
				f.proofCT = hdr.Header.Get("Content-Type")
				f.mu.Unlock()
			}
		}
		_, _ = io.WriteString(w, `{"data":{"id":90,"order_id":7,"amount":2700000,"payment_type":"down_payment",
"payment_method":"bank_transfer","status":"pending","created_at":"2026-01-10T08:00:00Z"}}`)
	})
	r.Get("/api/payments/90", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"id":90,"order_id":7,"amount":2700000,"payment_method":"bank_transfer","status":"pending"}}`)
	})
	r.Patch("/api/payments/90/verify", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.verified = body
		f.mu.Unlock()
		status, _ := body["status"].(string)
		_, _ = io.WriteString(w, `{"data":{"id":90,"order_id":7,"amount":2700000,"status":"`+status+`"}}`)
	})
	return r
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

type HandlersSuite struct {
	suite.Suite
	fake   *fakeBackend
	router http.Handler
}

func (s *HandlersSuite) SetupTest() {
	s.fake = &fakeBackend{}
	srv := httptest.NewServer(s.fake.routes())
	s.T().Cleanup(srv.Close)

	mr := miniredis.RunT(s.T())
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s.T().Cleanup(func() { _ = rdb.Close() })

	be := backend.New(srv.URL, 2*time.Second)
	h := &Handlers{
		Backend:      be,
		Availability: availability.NewSource(rdb, be, time.Minute),
		Checkout:     checkout.NewService(be, nil, rdb, nil),
		Lifecycle:    lifecycle.NewService(be, rdb, nil),
		Payments:     payment.NewService(rdb, be, nil),
		Location:     time.UTC,
		Now:          func() time.Time { return time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC) },
	}
	r := NewRouter()
	h.Register(r)
	s.router = r
}

func (s *HandlersSuite) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer tok")
	req.Header.Set(headerUserID, "50")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *HandlersSuite) TestHealthz() {
	rec := s.do(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("ok", rec.Body.String())
}

func (s *HandlersSuite) TestCalendarOwnDateWhileEditing() {
	find := func(m availability.Month, date string) availability.Day {
		for _, w := range m.Weeks {
			for _, d := range w {
				if d.Date == date {
					return d
				}
			}
		}
		s.FailNow("day missing", date)
		return availability.Day{}
	}

	rec := s.do(http.MethodGet, "/calendar/2026/3", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	m := decodeBody[availability.Month](s.T(), rec)
	s.False(find(m, "2026-03-14").Selectable)
	s.True(find(m, "2026-03-15").Selectable)

	rec = s.do(http.MethodGet, "/calendar/2026/3?editing_order=7", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	m = decodeBody[availability.Month](s.T(), rec)
	s.True(find(m, "2026-03-14").Selectable)
	s.False(find(m, "2026-03-21").Selectable)

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/calendar/2026/13", "").Code)
}

func (s *HandlersSuite) TestBookedDates() {
	rec := s.do(http.MethodGet, "/calendar/booked-dates", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal([]string{"2026-03-14", "2026-05-02"}, decodeBody[map[string][]string](s.T(), rec)["booked_dates"])
}

func (s *HandlersSuite) TestConfirmDate() {
	rec := s.do(http.MethodPost, "/calendar/confirm", `{"date":"2026-03-21","confirmed_date":"2026-03-07"}`)
	s.Require().Equal(http.StatusOK, rec.Code)
	p := decodeBody[availability.Picker](s.T(), rec)
	s.Equal("2026-03-07", p.Confirmed, "booked day click is a no-op")
	s.Empty(p.Selected)

	rec = s.do(http.MethodPost, "/calendar/confirm", `{"date":"2026-03-28","confirmed_date":"2026-03-07"}`)
	s.Equal(http.StatusConflict, rec.Code)
	prob := decodeBody[feedback.Problem](s.T(), rec)
	s.Equal(feedback.KindConflict, prob.Kind)
	s.Contains(prob.Fields, "event_date")

	rec = s.do(http.MethodPost, "/calendar/confirm", `{"date":"2026-03-29"}`)
	s.Require().Equal(http.StatusOK, rec.Code)
	p = decodeBody[availability.Picker](s.T(), rec)
	s.Equal("2026-03-29", p.Confirmed)
	s.False(p.Open)
}

func (s *HandlersSuite) TestQuote() {
	rec := s.do(http.MethodPost, "/quote", `{"package_price":10000000,"discount":{"enabled":true,"type":"percentage","value":"10"}}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	q := decodeBody[map[string]any](s.T(), rec)
	s.Equal(float64(9_000_000), q["price"])
	s.Equal(float64(1_000_000), q["discount_amount"])
	s.Equal("Rp 9.000.000", q["formatted"].(map[string]any)["price"])

	rec = s.do(http.MethodPost, "/quote", `{"package_price":10000000,"discount":{"enabled":true,"type":"percentage","value":"150"}}`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(decodeBody[feedback.Problem](s.T(), rec).Fields, "discount_value")
}

func (s *HandlersSuite) TestCreateOrderClientValidationStopsEarly() {
	rec := s.do(http.MethodPost, "/orders", `{"order_type":"custom","event_date":"","venue":"","estimated_guests":0}`)
	s.Equal(http.StatusBadRequest, rec.Code)
	prob := decodeBody[feedback.Problem](s.T(), rec)
	s.Equal(feedback.KindValidation, prob.Kind)
	s.Contains(prob.Fields, "venue")
	s.Contains(prob.Fields, "estimated_guests")
	s.Empty(s.fake.calls)
}

func (s *HandlersSuite) TestCreateOrderServerValidation() {
	body := `{"order_type":"custom","event_date":"2026-04-04","venue":"X","estimated_guests":100,
"sheet":{"package_price":0,"features":[{"id":1,"name":"Dekorasi","price":5000000}],"discount":{"enabled":false}}}`
	rec := s.do(http.MethodPost, "/orders", body)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	prob := decodeBody[feedback.Problem](s.T(), rec)
	s.Equal(feedback.KindServerValidation, prob.Kind)
	s.Equal([]string{"Venue terlalu pendek."}, prob.Fields["venue"])
	s.True(s.fake.called("GET /api/availability/check"), "date re-checked before POST")
}

func (s *HandlersSuite) TestAdminRoutesNeedAdmin() {
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/admin/payments", "").Code)
	s.Empty(s.fake.calls)
}

func (s *HandlersSuite) TestPaymentFlowOverHTTP() {
	rec := s.do(http.MethodPost, "/orders/7/payment-flows", "")
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	view := decodeBody[map[string]any](s.T(), rec)
	flow := view["flow"].(map[string]any)
	id := flow["id"].(string)
	s.Equal("method_selection", flow["step"])

	rec = s.do(http.MethodPost, "/payment-flows/"+id+"/method", `{"method":"bank_transfer"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.NotEmpty(decodeBody[map[string]any](s.T(), rec)["banks"])

	rec = s.do(http.MethodPost, "/payment-flows/"+id+"/details", `{"bank_code":"bca","amount":99000000}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	details := decodeBody[map[string]any](s.T(), rec)["flow"].(map[string]any)["state"].(map[string]any)["details"].(map[string]any)
	s.Equal(float64(9_000_000), details["amount"], "clamped to remaining")

	rec = s.do(http.MethodPost, "/payment-flows/"+id+"/confirm", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/payment-flows/"+id+"/submit", "")
	s.Equal(http.StatusBadRequest, rec.Code, "proof is required for bank transfer")
	s.False(s.fake.called("POST /api/orders/7/payments"))

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile("payment_proof", "bukti.png")
	s.Require().NoError(err)
	_, _ = part.Write(append([]byte("\x89PNG\x0D\x0A\x1A\x0A"), make([]byte, 128)...))
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/payment-flows/"+id+"/submit", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(headerUserID, "50")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody[map[string]any](s.T(), rec)
	s.Equal("succeeded", out["flow"].(map[string]any)["step"])
	s.NotNil(out["countdown"])
	s.Equal("image/png", s.fake.proofCT)
}

func (s *HandlersSuite) TestVerifyPayment() {
	admin := []string{headerUserRole, "admin"}

	rec := s.do(http.MethodPatch, "/admin/payments/90/verify", `{"status":"rejected","note":""}`, admin...)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(decodeBody[feedback.Problem](s.T(), rec).Fields, "note")
	s.False(s.fake.called("PATCH /api/payments/90/verify"))

	rec = s.do(http.MethodPatch, "/admin/payments/90/verify", `{"status":"rejected","note":"Bukti tidak terbaca"}`, admin...)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("Ditolak", decodeBody[map[string]any](s.T(), rec)["status_label"])
	s.Equal("Bukti tidak terbaca", s.fake.verified["note"])
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func TestIdentityForwardsToken(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"bookedDates":[]}`)
	}))
	defer srv.Close()
	be := backend.New(srv.URL, time.Second)

	h := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := viewerFrom(r.Context())
		assert.Equal(t, int64(12), v.UserID)
		assert.True(t, v.Admin)
		_, err := be.BookedDates(r.Context())
		assert.NoError(t, err)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	req.Header.Set(headerUserID, "12")
	req.Header.Set(headerUserRole, "Admin")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "Bearer abc", seen)
}
