package http

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	domshopping "example.com/divide-account/internal/domain/shopping"
)

const validEmails = `["a@example.com","b@example.com","c@example.com"]`

func TestCreateSplit_Scenarios(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		expect string
	}{
		{
			name:   "100 among 3",
			body:   `{"shopping_list":[{"name":"rice","price":25,"quantity":4}],"emails":["a@x.com","b@x.com","c@x.com"]}`,
			expect: `{"a@x.com":34,"b@x.com":33,"c@x.com":33}`,
		},
		{
			name:   "102 among 4",
			body:   `{"shopping_list":[{"name":"a","price":51,"quantity":2}],"emails":["d@x.com","c@x.com","b@x.com","a@x.com"]}`,
			expect: `{"d@x.com":26,"c@x.com":26,"b@x.com":25,"a@x.com":25}`,
		},
		{
			name:   "1 among 3",
			body:   `{"shopping_list":[{"name":"gum","price":1,"quantity":1}],"emails":["a@x.com","b@x.com","c@x.com"]}`,
			expect: `{"a@x.com":1,"b@x.com":0,"c@x.com":0}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			rec := srv.do(t, http.MethodPost, "/api/v1/splits", tt.body, "")
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			require.Contains(t, rec.Body.String(), `"allocations":`+tt.expect)
		})
	}
}

func TestCreateSplit_ResponseAndHistory(t *testing.T) {
	srv := newTestServer(t)

	body := `{"shopping_list":[{"name":"bread","price":10,"quantity":3},{"name":"milk","price":7,"quantity":11}],` +
		`"emails":["a@example.com","b@example.com","c@example.com","d@example.com","e@example.com","f@example.com"]}`
	rec := srv.do(t, http.MethodPost, "/api/v1/splits", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeBody(t, rec)
	require.EqualValues(t, 107, resp["total"])
	require.EqualValues(t, 17, resp["base_share"])
	require.EqualValues(t, 5, resp["remainder"])
	id, ok := resp["id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, id)
	require.NotEmpty(t, resp["created_at"])

	alloc, ok := resp["allocations"].(map[string]any)
	require.True(t, ok)
	require.Len(t, alloc, 6)
	require.EqualValues(t, 17, alloc["f@example.com"])
	require.Empty(t, srv.notifier.sent, "notify was not requested")

	token := srv.login(t)

	rec = srv.do(t, http.MethodGet, "/api/v1/splits/"+id, "", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody(t, rec)
	require.Equal(t, id, got["id"])
	require.EqualValues(t, 107, got["total"])

	rec = srv.do(t, http.MethodGet, "/api/v1/splits?limit=5", "", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"recipient_count":6`)

	rec = srv.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "divide_splits_total 1")
}

func TestCreateSplit_Notify(t *testing.T) {
	srv := newTestServer(t)

	body := `{"shopping_list":[{"name":"rice","price":25,"quantity":4}],"emails":` + validEmails + `,"notify":true}`
	rec := srv.do(t, http.MethodPost, "/api/v1/splits", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Len(t, srv.notifier.sent, 3)
	require.Equal(t, "a@example.com", srv.notifier.sent[0].Email)
	require.EqualValues(t, 34, srv.notifier.sent[0].Amount)
}

func TestCreateSplit_ValidationFailures(t *testing.T) {
	srv := newTestServer(t)

	t.Run("empty shopping list", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/v1/splits", `{"shopping_list":[],"emails":`+validEmails+`}`, "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

		resp := decodeBody(t, rec)
		require.Equal(t, "validation failed", resp["error"])
		details := resp["details"].(map[string]any)
		require.NotContains(t, details, "emails")
		list := details["shopping_list"].(map[string]any)["_list"].([]any)
		require.Equal(t, map[string]any{
			"kind":    string(domshopping.KindListShape),
			"message": domshopping.MsgTooShort,
		}, list[0])
	})

	t.Run("missing lists", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/v1/splits", `{"notify":false}`, "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

		details := decodeBody(t, rec)["details"].(map[string]any)
		missing := map[string]any{
			"kind":    string(domshopping.KindStructural),
			"message": domshopping.MsgMissing,
		}
		require.Equal(t, missing, details["shopping_list"].(map[string]any)["_list"].([]any)[0])
		require.Equal(t, missing, details["emails"].(map[string]any)["_list"].([]any)[0])
	})

	t.Run("float and missing fields", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/v1/splits",
			`{"shopping_list":[{"name":"a","price":1.1,"quantity":5.0},{"price":1}],"emails":`+validEmails+`}`, "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

		items := decodeBody(t, rec)["details"].(map[string]any)["shopping_list"].(map[string]any)["items"].(map[string]any)
		first := items["0"].(map[string]any)
		require.Contains(t, first, "price")
		require.Contains(t, first, "quantity")
		second := items["1"].(map[string]any)
		require.Contains(t, second, "name")
		require.Contains(t, second, "quantity")
		require.NotContains(t, second, "price")
	})

	t.Run("non-object item", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/v1/splits",
			`{"shopping_list":[42],"emails":`+validEmails+`}`, "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		require.Contains(t, rec.Body.String(), `"_schema"`)
	})

	t.Run("bad emails", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/v1/splits",
			`{"shopping_list":[{"name":"a","price":1,"quantity":1}],"emails":["test@test","x@example.com","x@example.com",4]}`, "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

		emails := decodeBody(t, rec)["details"].(map[string]any)["emails"].(map[string]any)
		require.Len(t, emails["_list"], 1)
		entries := emails["entries"].(map[string]any)
		require.Contains(t, entries, "0")
		require.Contains(t, entries, "2")
		require.Contains(t, entries, "3")
		require.NotContains(t, entries, "1")
	})

	t.Run("nothing recorded", func(t *testing.T) {
		token := srv.login(t)
		rec := srv.do(t, http.MethodGet, "/api/v1/splits", "", token)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `[]`, rec.Body.String())
	})
}

func TestCreateSplit_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"shopping_list":[`},
		{"unknown top-level field", `{"shopping_list":[],"emails":[],"extra":1}`},
		{"wrong container type", `{"shopping_list":{},"emails":[]}`},
		{"trailing data", `{"shopping_list":[],"emails":[]} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, "/api/v1/splits", tt.body, "")
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateSplit_RejectsNonJSONContentType(t *testing.T) {
	srv := newTestServer(t)

	req := strings.NewReader(`{}`)
	rec := srv.doRaw(t, http.MethodPost, "/api/v1/splits", req, "text/plain")
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestValidateSplit(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/splits/validate",
		`{"shopping_list":[{"name":"a","price":1,"quantity":1}],"emails":`+validEmails+`}`, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/v1/splits/validate",
		`{"shopping_list":[{"name":"a","price":-1,"quantity":1}],"emails":[]}`, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), domshopping.MsgNegative)

	token := srv.login(t)
	rec = srv.do(t, http.MethodGet, "/api/v1/splits", "", token)
	require.JSONEq(t, `[]`, rec.Body.String(), "validate must not record a split")
}

func TestGetSplit_NotFound(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/splits/does-not-exist", "", token)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSplits_InvalidLimit(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	for _, limit := range []string{"0", "-3", "abc"} {
		rec := srv.do(t, http.MethodGet, "/api/v1/splits?limit="+limit, "", token)
		require.Equal(t, http.StatusBadRequest, rec.Code, limit)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/health/store", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	api := NewAPI(Dependencies{Store: failingStore{}})
	srv.router = api.Router()
	rec = srv.do(t, http.MethodGet, "/health/store", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "unavailable", decodeBody(t, rec)["status"])
}

func TestMetrics_CountsValidationFailures(t *testing.T) {
	srv := newTestServer(t)

	srv.do(t, http.MethodPost, "/api/v1/splits", `{"shopping_list":[],"emails":[]}`, "")

	rec := srv.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `divide_validation_failures_total{field="shopping_list"} 1`)
	require.Contains(t, rec.Body.String(), `divide_validation_failures_total{field="emails"} 1`)
}
