package kidplan

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "kidplan-downloader/pkg/errors"
	"kidplan-downloader/pkg/models"
)

var testCreds = models.Credentials{Email: "mor@example.no", Password: "hemmelig"}

func TestSelectKindergarten(t *testing.T) {
	kids := []models.Kindergarten{
		{ID: 10, Name: "Solstrålen"},
		{ID: 20, Name: "Bjørnehiet"},
	}

	tests := []struct {
		name    string
		kids    []models.Kindergarten
		id      int64
		kidName string
		want    int64
		wantErr string
	}{
		{name: "by id", kids: kids, id: 20, want: 20},
		{name: "unknown id", kids: kids, id: 99, wantErr: "id 99 not found"},
		{name: "by name case insensitive", kids: kids, kidName: "  bjørnehiet ", want: 20},
		{name: "unknown name", kids: kids, kidName: "Other", wantErr: "not found"},
		{name: "single entry", kids: kids[:1], want: 10},
		{name: "ambiguous", kids: kids, wantErr: "Solstrålen (id=10), Bjørnehiet (id=20)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectKindergarten(tt.kids, tt.id, tt.kidName)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestFetchKindergartens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(KindergartenIDsEndpoint, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testCreds.Email, r.URL.Query().Get("username"))
		assert.Equal(t, testCreds.Password, r.URL.Query().Get("password"))
		json.NewEncoder(w).Encode([]map[string]interface{}{{"Id": 7, "Name": "Solstrålen"}})
	})
	client := newTestServerClient(t, mux)

	kids, err := client.FetchKindergartens(context.Background(), testCreds)

	require.NoError(t, err)
	assert.Equal(t, []models.Kindergarten{{ID: 7, Name: "Solstrålen"}}, kids)
}

func TestFetchKindergartensEmptyIsAuthError(t *testing.T) {
	client := newTestServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))

	_, err := client.FetchKindergartens(context.Background(), testCreds)

	assert.Equal(t, errs.ErrorTypeAuth, errs.TypeOf(err))
	assert.Contains(t, err.Error(), "no kindergarten IDs returned")
}

func TestLoginPostsForm(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(LogOnEndpoint, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "7", r.URL.Query().Get("kid"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, testCreds.Email, r.PostForm.Get("UserName"))
		assert.Equal(t, testCreds.Password, r.PostForm.Get("Password"))
		assert.Equal(t, "true", r.PostForm.Get("RememberMe"))

		http.SetCookie(w, &http.Cookie{Name: ".ASPXAUTH", Value: "token", Path: "/"})
		http.Redirect(w, r, "/home", http.StatusFound)
	})
	mux.HandleFunc("/home", func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie(".ASPXAUTH")
		assert.NoError(t, err)
		w.Write([]byte("<h1>Velkommen</h1>"))
	})
	client := newTestServerClient(t, mux)

	require.NoError(t, client.Login(context.Background(), testCreds, 7))
}

func TestLoginRejectedWhenSignInPageReturned(t *testing.T) {
	client := newTestServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<form id="loginForm"></form>`))
	}))

	err := client.Login(context.Background(), testCreds, 7)

	assert.Equal(t, errs.ErrorTypeAuth, errs.TypeOf(err))
}

func TestLoginHTTPErrorIsAuthError(t *testing.T) {
	client := newTestServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	err := client.Login(context.Background(), testCreds, 7)

	assert.Equal(t, errs.ErrorTypeAuth, errs.TypeOf(err))
	assert.Equal(t, http.StatusForbidden, errs.StatusCode(err))
}

func TestConnect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(KindergartenIDsEndpoint, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"Id":1,"Name":"A"},{"Id":2,"Name":"B"}]`))
	})
	mux.HandleFunc(LogOnEndpoint, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("kid"))
		w.Write([]byte("ok"))
	})
	client := newTestServerClient(t, mux)

	kid, err := client.Connect(context.Background(), testCreds, 0, "b")
	require.NoError(t, err)
	assert.Equal(t, models.Kindergarten{ID: 2, Name: "B"}, kid)

	_, err = client.Connect(context.Background(), models.Credentials{}, 0, "")
	assert.Equal(t, errs.ErrorTypeAuth, errs.TypeOf(err))
}
