package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, time.Hour), mr
}

func TestStore_RoundTrip(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, id, 32)
	assert.Equal(t, time.Hour, mr.TTL(sessionKeyPrefix+id))

	uid, ok, err := s.GetUserID(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), uid)

	require.NoError(t, s.Delete(ctx, id))
	_, ok, err = s.GetUserID(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Expiry(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, 7)
	require.NoError(t, err)
	mr.FastForward(2 * time.Hour)

	_, ok, err := s.GetUserID(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewStore_DefaultTTL(t *testing.T) {
	s := NewStore(nil, 0)
	assert.Equal(t, sessionTTL, s.TTL())
}

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s, _ := newTestStore(t)
	id, err := s.Create(context.Background(), 5)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", RequireSession(s, "sid"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserIDFromContext(c)})
	})

	cases := []struct {
		name   string
		cookie *http.Cookie
		status int
	}{
		{"no cookie", nil, http.StatusUnauthorized},
		{"unknown session", &http.Cookie{Name: "sid", Value: "deadbeef"}, http.StatusUnauthorized},
		{"wrong cookie name", &http.Cookie{Name: DefaultCookieName, Value: id}, http.StatusUnauthorized},
		{"valid", &http.Cookie{Name: "sid", Value: id}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"id":5}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"code":"unauthenticated"`)
			}
		})
	}
}

func TestRequireSession_StoreDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s, mr := newTestStore(t)
	id, err := s.Create(context.Background(), 5)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", RequireSession(s, "sid"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	mr.Close()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: id})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error","code":"internal"}`, w.Body.String())
}
