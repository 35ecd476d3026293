package pipeline

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rechazos/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func stubSubmitter(endpoint string, fn roundTripFunc) *Submitter {
	s := NewSubmitter(config.Config{SubmitEndpoint: endpoint, SubmitTimeoutMs: 1000})
	s.httpClient = &http.Client{Transport: fn}
	return s
}

func TestSubmitSendsMultipartFile(t *testing.T) {
	calls := 0
	s := stubSubmitter("https://example.test/rechazos", func(r *http.Request) (*http.Response, error) {
		calls++
		if r.Method != http.MethodPost || r.URL.Path != "/rechazos" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("edt")
		if err != nil {
			t.Fatal(err)
		}
		defer file.Close()
		blob, _ := io.ReadAll(file)
		if header.Filename != "rechazos.xlsx" || string(blob) != "payload" {
			t.Fatalf("filename=%s body=%q", header.Filename, blob)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"ok":true}`)),
			Header:     make(http.Header),
		}, nil
	})

	resp, err := s.Submit(context.Background(), []byte("payload"))
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, `{"ok":true}`, resp.Body)
	assert.Equal(t, 1, calls)
}

func TestSubmitReturnsErrorStatusVerbatimWithoutRetry(t *testing.T) {
	calls := 0
	s := stubSubmitter("https://example.test/rechazos", func(r *http.Request) (*http.Response, error) {
		calls++
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Body:       io.NopCloser(strings.NewReader("upstream down")),
			Header:     make(http.Header),
		}, nil
	})

	resp, err := s.Submit(context.Background(), []byte("payload"))
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "upstream down", resp.Body)
	assert.Equal(t, 1, calls)
}

func TestSubmitTransportFailure(t *testing.T) {
	s := stubSubmitter("https://example.test/rechazos", func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	resp, err := s.Submit(context.Background(), []byte("payload"))
	require.Error(t, err)
	assert.Equal(t, 0, resp.StatusCode)
	assert.Contains(t, resp.Body, "connection refused")
}

func TestSubmitWithoutEndpoint(t *testing.T) {
	s := stubSubmitter("", func(r *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})

	_, err := s.Submit(context.Background(), []byte("payload"))
	require.ErrorIs(t, err, ErrNoEndpoint)
}
