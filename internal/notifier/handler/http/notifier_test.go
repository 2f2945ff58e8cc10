package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-bjn/sudexpert-storefront/internal/notifier/domain"
	"github.com/a-bjn/sudexpert-storefront/internal/notifier/sender"
	"github.com/a-bjn/sudexpert-storefront/internal/notifier/service"
	"github.com/a-bjn/sudexpert-storefront/pkg/health"
	"github.com/a-bjn/sudexpert-storefront/pkg/middleware"
)

// fakeRepo is an in-memory SubmissionRepository, counting per IP like the
// real table does.
type fakeRepo struct {
	mu          sync.Mutex
	submissions []*domain.Submission
}

func (r *fakeRepo) Create(_ context.Context, s *domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, s)
	return nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.submissions {
		if s.ID == id {
			s.Status = status
			return nil
		}
	}
	return nil
}

func (r *fakeRepo) CountByIPSince(_ context.Context, clientIP string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, s := range r.submissions {
		if s.ClientIP == clientIP && !s.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []*sender.Email
}

func (s *fakeSender) Name() string { return "fake" }

func (s *fakeSender) Send(_ context.Context, email *sender.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, email)
	return nil
}

func newTestRouter(t *testing.T, repo *fakeRepo, snd *fakeSender, hourlyLimit int) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := service.NewNotifierService(repo, snd, nil, logger, []string{"sales@sudexpert.ro"}, hourlyLimit)
	return NewRouter(svc, health.NewHandler(), logger, middleware.DefaultCORSConfig(), 100, 100)
}

func postForm(t *testing.T, router http.Handler, body, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/token-form", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const validForm = `{
	"token": "sudexpert-contact",
	"name": "Ion Popescu",
	"email": "ion@example.ro",
	"phone": "0722000000",
	"message": "Am nevoie de o oferta pentru un invertor MMA."
}`

func TestSubmit_Success(t *testing.T) {
	repo := &fakeRepo{}
	snd := &fakeSender{}
	router := newTestRouter(t, repo, snd, 10)

	rec := postForm(t, router, validForm, "203.0.113.9:51234")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	require.Len(t, snd.sent, 1)
	assert.Equal(t, []string{"sales@sudexpert.ro"}, snd.sent[0].To)
	assert.Contains(t, snd.sent[0].TextBody, "Ion Popescu")

	require.Len(t, repo.submissions, 1)
	assert.Equal(t, domain.SubmissionStatusSent, repo.submissions[0].Status)
	assert.Equal(t, "203.0.113.9", repo.submissions[0].ClientIP)
}

func TestSubmit_MissingFields(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{}, &fakeSender{}, 10)

	rec := postForm(t, router, `{"token": "x", "name": "Ion"}`, "203.0.113.9:51234")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestSubmit_MalformedEmail(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{}, &fakeSender{}, 10)

	body := strings.Replace(validForm, "ion@example.ro", "not-an-email", 1)
	rec := postForm(t, router, body, "203.0.113.9:51234")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmit_HourlyCapReturns429(t *testing.T) {
	repo := &fakeRepo{}
	router := newTestRouter(t, repo, &fakeSender{}, 2)

	for i := 0; i < 2; i++ {
		rec := postForm(t, router, validForm, "203.0.113.9:51234")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := postForm(t, router, validForm, "203.0.113.9:51234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	// A different IP is not capped.
	rec = postForm(t, router, validForm, "198.51.100.7:40000")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSubmit_HealthEndpoints(t *testing.T) {
	router := newTestRouter(t, &fakeRepo{}, &fakeSender{}, 10)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
