package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/saffron-pos/api/internal/auth"
	"github.com/saffron-pos/api/internal/middleware"
)

const testSecret = "test-secret"

// doRequest executes an HTTP request against the router and returns the
// recorder. body is JSON-encoded when non-nil; token is attached as a
// bearer token when non-empty.
func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// decodeBody unmarshals the recorder's JSON body into v.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response body %q: %v", rr.Body.String(), err)
	}
}

// tokenFor mints an access token for a staff member with the given role.
func tokenFor(t *testing.T, userID uuid.UUID, username, role string, superuser bool) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, userID, username, role, superuser)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// protectedRouter mounts the given registration functions behind the auth
// middleware, mirroring the production router layout.
func protectedRouter(register ...func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testSecret))
		for _, reg := range register {
			reg(r)
		}
	})
	return r
}

func makeTestNumeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("scan numeric %q: %v", s, err)
	}
	return n
}
