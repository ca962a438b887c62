package ocr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractTextPostsMultipartImage(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/recognize", r.URL.Path)

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "label.png", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "  aqua, glycerin  "}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "secret"})
	require.NoError(t, err)

	text, err := client.ExtractText(context.Background(), []byte{0x89, 0x50}, "label.png")
	require.NoError(t, err)
	require.Equal(t, "aqua, glycerin", text)
	require.Equal(t, "Bearer secret", gotAuth)
}

func TestExtractTextSurfacesServiceErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.ExtractText(context.Background(), []byte{0x01}, "")
	require.ErrorContains(t, err, "status 502")
}

func TestExtractTextRejectsEmptyImage(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://ocr.local"})
	require.NoError(t, err)

	_, err = client.ExtractText(context.Background(), nil, "label.png")
	require.Error(t, err)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}
