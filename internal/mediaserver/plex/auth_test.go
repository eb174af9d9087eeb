package plex

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/letterplex/internal/domain"
)

func TestAuthClient_SignIn(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/sign_in.json", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "alice" || pass != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"user":{"id":1,"username":"alice","authToken":"tok-1"}}`)
	})

	a := NewAuthClient(nil)
	a.SetBaseURL(srv.URL)

	token, err := a.SignIn(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	_, err = a.SignIn(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
}

func TestAuthClient_GetResourcesKeepsServers(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/resources", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("includeRelay"))
		assert.Equal(t, "tok-1", r.Header.Get("X-Plex-Token"))
		fmt.Fprint(w, `[
			{"name":"Living Room TV","provides":"player","connections":[]},
			{"name":"Basement","provides":"server","accessToken":"srv-tok","connections":[
				{"uri":"http://10.0.0.2:32400","local":true,"relay":false}
			]}
		]`)
	})

	a := NewAuthClient(nil)
	a.SetBaseURL(srv.URL)

	servers, err := a.GetResources(context.Background(), "tok-1")
	require.NoError(t, err)

	require.Len(t, servers, 1)
	assert.Equal(t, "Basement", servers[0].Name)
	assert.Equal(t, "srv-tok", servers[0].AccessToken)
	require.Len(t, servers[0].Connections, 1)
	assert.True(t, servers[0].Connections[0].Local)
}

func TestAuthClient_FindServerURLPrefersDirect(t *testing.T) {
	identity := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"MediaContainer":{"machineIdentifier":"m"}}`)
	}
	direct := newTestServer(t, identity)
	relay := newTestServer(t, identity)
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	server := Resource{
		Name: "Basement",
		Connections: []Connection{
			{URI: relay.URL, Relay: true},
			{URI: deadURL},
			{URI: direct.URL},
		},
	}

	got, err := NewAuthClient(nil).FindServerURL(context.Background(), server, "tok")
	require.NoError(t, err)
	assert.Equal(t, direct.URL, got)
}

func TestAuthClient_FindServerURLFallsBackToRelay(t *testing.T) {
	relay := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	refusing := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	server := Resource{
		Name: "Basement",
		Connections: []Connection{
			{URI: refusing.URL},
			{URI: relay.URL, Relay: true},
		},
	}

	got, err := NewAuthClient(nil).FindServerURL(context.Background(), server, "tok")
	require.NoError(t, err)
	assert.Equal(t, relay.URL, got)
}

func TestAuthClient_FindServerURLNoneWork(t *testing.T) {
	refusing := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := NewAuthClient(nil).FindServerURL(context.Background(), Resource{
		Name:        "Basement",
		Connections: []Connection{{URI: refusing.URL}},
	}, "tok")

	assert.ErrorIs(t, err, domain.ErrServerOffline)
}
