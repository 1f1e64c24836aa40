package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverReturning(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/reports" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestFetchAll(t *testing.T) {
	srv := serverReturning(http.StatusOK, `{"success":true,"reports":[
		{"id":"1709287200000","eventType":"flood","description":"River overflow","location":{"latitude":6.9271,"longitude":79.8612},
		 "datetime":"2024-03-01T09:30","reporterEmail":"a@b.lk","picture":null,"submittedAt":"2024-03-01T10:00:00.000Z"}]}`)
	defer srv.Close()

	reports, err := NewReportsClient(srv.URL+"/", nil).FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "1709287200000", reports[0].ID)
	assert.Equal(t, 6.9271, reports[0].Location.Latitude)
	assert.Nil(t, reports[0].Picture)
	assert.Equal(t, int64(1709287200000), reports[0].SubmittedAt.UnixMilli())
}

func TestFetchAllEmpty(t *testing.T) {
	srv := serverReturning(http.StatusOK, `{"success":true,"reports":[]}`)
	defer srv.Close()

	reports, err := NewReportsClient(srv.URL, nil).FetchAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, reports)
	assert.Empty(t, reports)
}

func TestFetchAllErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"Failed to fetch reports","details":"disk gone"}`, "Failed to fetch reports (disk gone)"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "server returned 502"},
		{"unsuccessful", http.StatusOK, `{"success":false,"error":"nope"}`, "nope"},
		{"garbage", http.StatusOK, `{`, "failed to decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serverReturning(tt.status, tt.body)
			defer srv.Close()

			reports, err := NewReportsClient(srv.URL, nil).FetchAll(context.Background())
			assert.Nil(t, reports)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestFetchAllUnreachable(t *testing.T) {
	srv := serverReturning(http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()

	_, err := NewReportsClient(url, nil).FetchAll(context.Background())
	assert.ErrorContains(t, err, "failed to fetch reports")
}
