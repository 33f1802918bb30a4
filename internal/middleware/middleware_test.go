package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minefield/internal/config"
)

func TestWrapOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Wrap(http.NotFoundHandler(), tag("inner"), tag("outer"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestLogging(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/game?rows=3", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "POST /game?rows=3", entry.Message)
	assert.Equal(t, http.StatusTeapot, entry.Data["statusCode"])
}

func TestAuth(t *testing.T) {
	log, _ := test.NewNullLogger()
	tokens, err := config.NewTokens(config.TokenConfig{Secret: "k", Lifetime: config.Duration{Duration: time.Minute}})
	require.NoError(t, err)
	token, err := tokens.Sign(7)
	require.NoError(t, err)

	h := Auth(log, tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := GameClaims(r.Context()); ok {
			io.WriteString(w, claims.Subject)
		}
	}))

	tests := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{"header", "Bearer " + token, "", "7"},
		{"query", "", "?token=" + token, "7"},
		{"anonymous", "", "", ""},
		{"garbage", "Bearer nope", "", ""},
		{"wrong scheme", "Basic " + token, "", ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/game/7"+test.query, nil)
			if test.header != "" {
				r.Header.Set("Authorization", test.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			assert.Equal(t, test.want, w.Body.String())
		})
	}
}

func TestCors(t *testing.T) {
	h := Cors("https://mines.example")(http.NotFoundHandler())
	r := httptest.NewRequest(http.MethodOptions, "/game", nil)
	r.Header.Set("Origin", "https://mines.example")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, "https://mines.example", w.Header().Get("Access-Control-Allow-Origin"))
}
