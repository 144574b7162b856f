package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"design-order-backend/internal/handlers"
	"design-order-backend/internal/payments"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// client replays the draft cookie the way a browser would.
type client struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == handlers.DraftCookie {
			c.cookie = ck
		}
	}
	return w
}

func (c *client) json(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) upload(path, field, name string, data []byte) *httptest.ResponseRecorder {
	c.t.Helper()
	req := multipartRequest(c.t, path, field, map[string][]byte{name: data})
	return c.do(req)
}

func multipartRequest(t *testing.T, path, field string, files map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// fakeProvider stands in for Stripe.
type fakeProvider struct {
	mu        sync.Mutex
	created   []payments.SessionParams
	createErr error
	sessions  map[string]*payments.Session
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: map[string]*payments.Session{}}
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, p payments.SessionParams) (*payments.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &payments.Session{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1", Email: p.Email, Metadata: p.Metadata}, nil
}

func (f *fakeProvider) GetCheckoutSession(_ context.Context, id string) (*payments.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, payments.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeProvider) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}
