package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_PerKeyAndSweep(t *testing.T) {
	rl := NewRateLimiter(60, 2) // one token per second
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys are independent")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("a"), "refilled")
	assert.Equal(t, 2, rl.size())

	now = now.Add(limiterTTL + time.Second)
	rl.Allow("c")
	assert.Equal(t, 1, rl.size(), "idle keys swept")
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", clientIP(r))
	r.RemoteAddr = "weird"
	assert.Equal(t, "weird", clientIP(r))
}

func TestFlash_RoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	setFlash(rec, FlashSuccess, "Profile updated")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	out := httptest.NewRecorder()
	got := popFlash(out, r)
	assert.Equal(t, []Flash{{Category: FlashSuccess, Message: "Profile updated"}}, got)

	cleared := out.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
	assert.Equal(t, cookies[0].Path, cleared[0].Path)
	assert.Equal(t, cookies[0].HttpOnly, cleared[0].HttpOnly)
	assert.Equal(t, cookies[0].SameSite, cleared[0].SameSite)
	assert.True(t, cleared[0].HttpOnly)
}

func TestFlash_Garbage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: flashCookie, Value: "!!!"})
	assert.Nil(t, popFlash(httptest.NewRecorder(), r))

	assert.Nil(t, popFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestDecodeForm(t *testing.T) {
	form := url.Values{"email": {"  a@x.com "}, "password": {" pw "}, "remember_me": {"on"}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var f loginForm
	echo, err := decodeForm(r, &f)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", f.Email)
	assert.Equal(t, " pw ", f.Password, "passwords are taken verbatim")
	assert.True(t, f.Remember)
	assert.Equal(t, map[string]string{"email": "a@x.com"}, echo)
}

func TestValidationMessages(t *testing.T) {
	s := &Server{validate: newValidator()}

	assert.Nil(t, s.validationMessages(&settingsForm{}))

	msgs := s.validationMessages(&articleForm{Genre: "Оптика", Title: strings.Repeat("x", 71)})
	assert.ElementsMatch(t, []string{"Title must be at most 70 characters", "Text is required"}, msgs)
}
