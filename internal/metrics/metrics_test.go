package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrument_LabelsByRoute(t *testing.T) {
	h := Instrument("GET /profile/{username}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "GET /profile/{username}", "404"))
	for _, p := range []string{"/profile/alice", "/profile/bob"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "GET /profile/{username}", "404"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecorders(t *testing.T) {
	l := testutil.ToFloat64(logins.WithLabelValues("invalid"))
	RecordLogin("invalid")
	assert.Equal(t, l+1, testutil.ToFloat64(logins.WithLabelValues("invalid")))

	r := testutil.ToFloat64(registrations.WithLabelValues("duplicate"))
	RecordRegistration("duplicate")
	assert.Equal(t, r+1, testutil.ToFloat64(registrations.WithLabelValues("duplicate")))

	a := testutil.ToFloat64(articles)
	RecordArticle()
	assert.Equal(t, a+1, testutil.ToFloat64(articles))
}

func TestHandler_Exposes(t *testing.T) {
	RecordArticle()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "blog_articles_created_total"))
}
