package activityportal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{BaseUrl: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	client.delayUnit = time.Millisecond
	return client
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, payload any) {
	inner, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	outer, err := json.Marshal(map[string]string{"d": string(inner)})
	if err != nil {
		t.Fatal(err)
	}
	w.Header().Set("content-type", "application/json")
	_, err = w.Write(outer)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+loginPath, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	})
	mux.HandleFunc("POST "+loginPath, func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value != "sess-1" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.FormValue("ctl00$MainContent$txtUsername") != "user" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		// the portal re-issues the forms-auth cookie, emptied first,
		// then with a throwaway value, then the real one
		http.SetCookie(w, &http.Cookie{Name: formsAuthCookieName, Value: ""})
		http.SetCookie(w, &http.Cookie{Name: formsAuthCookieName, Value: "stale"})
		http.SetCookie(w, &http.Cookie{Name: formsAuthCookieName, Value: "auth-2"})
		// success is signalled by a redirect, which must not be followed
		w.Header().Set("location", "/Default.aspx")
		w.WriteHeader(http.StatusFound)
	})

	client := newTestClient(t, mux)
	token, err := client.Login(context.Background(), "user", "pass")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "ASP.NET_SessionId=sess-1; .ASPXAUTH=auth-2", token)
}

func TestLoginWithoutSessionCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {})

	client := newTestClient(t, mux)
	_, err := client.Login(context.Background(), "user", "pass")
	require.ErrorIs(t, err, ErrLoginFailed)
}

func TestLoginWithoutFormsAuthCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+loginPath, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	})
	mux.HandleFunc("POST "+loginPath, func(w http.ResponseWriter, r *http.Request) {
		// bad credentials: only an emptied cookie comes back
		http.SetCookie(w, &http.Cookie{Name: formsAuthCookieName, Value: ""})
	})

	client := newTestClient(t, mux)
	_, err := client.Login(context.Background(), "user", "wrong")
	require.ErrorIs(t, err, ErrLoginFailed)
}

func TestProbe(t *testing.T) {
	valid := "ASP.NET_SessionId=s; .ASPXAUTH=a"
	calls := 0

	mux := http.NewServeMux()
	mux.HandleFunc(probePath, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("cookie") != valid {
			w.Header().Set("location", loginPath)
			w.WriteHeader(http.StatusFound)
			return
		}
		writeEnvelope(t, w, map[string]string{"term": "autumn"})
	})

	client := newTestClient(t, mux)
	require.True(t, client.Probe(context.Background(), valid))
	require.Equal(t, 1, calls)

	calls = 0
	require.False(t, client.Probe(context.Background(), "ASP.NET_SessionId=x; .ASPXAUTH=y"))
	// best-effort retry budget is exhausted before giving up
	require.Equal(t, 3, calls)
}

func TestFetchActivity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(detailPath, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ActivityID string `json:"activityID"`
		}
		err := json.NewDecoder(r.Body).Decode(&body)
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, "42", body.ActivityID)

		writeEnvelope(t, w, RawActivity{
			ActivityID:  "42",
			Name:        "Chess Club",
			Category:    "Games",
			Description: "<p>Weekly  chess</p>",
			DayOfWeek:   "Tuesday",
		})
	})

	client := newTestClient(t, mux)
	raw, err := client.FetchActivity(context.Background(), "42", "token")
	if err != nil {
		t.Fatal(err)
	}
	require.NotNil(t, raw)
	require.Equal(t, "Chess Club", raw.Name)
	require.Equal(t, "Games", raw.Category)
}

func TestFetchActivityEmptyUpstream(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(detailPath, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, RawActivity{IsError: true})
	})

	client := newTestClient(t, mux)
	raw, err := client.FetchActivity(context.Background(), "404", "token")
	require.NoError(t, err)
	require.Nil(t, raw)
}

func TestFetchActivityAuthRejected(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc(detailPath, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	})

	client := newTestClient(t, mux)
	// use the real delay unit to prove a rejection never waits on it
	client.delayUnit = time.Second

	start := time.Now()
	_, err := client.FetchActivity(context.Background(), "42", "token")

	var rejected *AuthRejectedError
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, http.StatusUnauthorized, rejected.Status)
	require.Equal(t, 1, calls)
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestFetchActivityRetriesTransientFailures(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc(detailPath, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeEnvelope(t, w, RawActivity{ActivityID: "42", Name: "Chess Club"})
	})

	client := newTestClient(t, mux)
	raw, err := client.FetchActivity(context.Background(), "42", "token")
	if err != nil {
		t.Fatal(err)
	}
	require.NotNil(t, raw)
	require.Equal(t, 3, calls)
}

func TestFetchActivityMalformedPayload(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc(detailPath, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, err := w.Write([]byte("<html>IIS error page</html>"))
		if err != nil {
			t.Fatal(err)
		}
	})

	client := newTestClient(t, mux)
	_, err := client.FetchActivity(context.Background(), "42", "token")
	require.Error(t, err)
	require.Equal(t, 3, calls)
}
