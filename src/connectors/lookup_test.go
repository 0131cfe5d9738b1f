package connectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDirectoryServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetClientByID(t *testing.T) {
	srv := newDirectoryServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/clients/C1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"C1","name":"Acme SA","accountNumber":"1001"}`))
	})

	connector := NewLookupConnectorWithURLs(srv.URL, srv.URL)

	client, err := connector.GetClientByID(context.Background(), "C1")
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "Acme SA", client.DisplayName())
	assert.Equal(t, "1001", client.Account())
}

func TestGetClientByIDNotFound(t *testing.T) {
	srv := newDirectoryServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	connector := NewLookupConnectorWithURLs(srv.URL, srv.URL)

	client, err := connector.GetClientByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestGetClientByIDServerError(t *testing.T) {
	srv := newDirectoryServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	connector := NewLookupConnectorWithURLs(srv.URL, srv.URL)

	client, err := connector.GetClientByID(context.Background(), "C1")
	require.Error(t, err)
	assert.Nil(t, client)
}

func TestGetAssetByID(t *testing.T) {
	srv := newDirectoryServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assets/A1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"A1","ticker":"GOOGL","name":"Alphabet Inc"}`))
	})

	connector := NewLookupConnectorWithURLs(srv.URL, srv.URL)

	asset, err := connector.GetAssetByID(context.Background(), "A1")
	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.Equal(t, "GOOGL", asset.Ticker)
}

func TestGetAssetByIDNotFound(t *testing.T) {
	srv := newDirectoryServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	connector := NewLookupConnectorWithURLs(srv.URL, srv.URL)

	asset, err := connector.GetAssetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, asset)
}

func TestClientDisplayNameLegacyFallbacks(t *testing.T) {
	assert.Equal(t, "Acme SA", (&Client{ID: "C1", Name: "Acme SA"}).DisplayName())
	assert.Equal(t, "Acme Denominación", (&Client{ID: "C1", Denominacion: "Acme Denominación"}).DisplayName())
	assert.Equal(t, "Juan Pérez", (&Client{ID: "C1", Titular: "Juan Pérez"}).DisplayName())
	assert.Equal(t, "Cliente C1", (&Client{ID: "C1"}).DisplayName())
}

func TestClientAccountLegacyFallback(t *testing.T) {
	assert.Equal(t, "1001", (&Client{AccountNumber: "1001", IDCliente: "9"}).Account())
	assert.Equal(t, "9", (&Client{IDCliente: "9"}).Account())
	assert.Equal(t, "", (&Client{}).Account())
}
