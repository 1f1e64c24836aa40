package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportsJSON = `{"success":true,"reports":[
	{"id":"2","eventType":"earthquake","description":"Shaking","location":{"latitude":7.29,"longitude":80.63},
	 "datetime":"2024-03-01T10:30","reporterEmail":"b@b.lk","submittedAt":"2024-03-01T11:00:00.000Z"},
	{"id":"1","eventType":"flood","description":"River overflow","location":{"latitude":6.9271,"longitude":79.8612},
	 "datetime":"2024-03-01T09:30","reporterEmail":"a@b.lk","picture":"/uploads/1-a.jpg","submittedAt":"2024-03-01T10:00:00.000Z"}]}`

func apiServer(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStatsCommand(t *testing.T) {
	url := apiServer(t, http.StatusOK, reportsJSON)

	out, err := run(t, "stats", "--server", url)
	require.NoError(t, err)
	assert.Contains(t, out, "Total reports: 2")
}

func TestListCommandFilters(t *testing.T) {
	url := apiServer(t, http.StatusOK, reportsJSON)

	out, err := run(t, "list", "--server", url, "--type", "flood")
	require.NoError(t, err)
	assert.Contains(t, out, "River overflow")
	assert.Contains(t, out, "/uploads/1-a.jpg")
	assert.NotContains(t, out, "Shaking")
}

func TestExportCommand(t *testing.T) {
	url := apiServer(t, http.StatusOK, reportsJSON)
	path := filepath.Join(t.TempDir(), "out.csv")

	_, err := run(t, "export", "--server", url, "--search", "shak", "--out", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"2","earthquake","Shaking"`)
	assert.NotContains(t, string(data), "River overflow")
}

func TestExportCommandNothingToExport(t *testing.T) {
	url := apiServer(t, http.StatusOK, reportsJSON)

	_, err := run(t, "export", "--server", url, "--type", "tsunami", "--out", "-")
	assert.EqualError(t, err, "No reports to export")
}

func TestCommandSurfacesServerErrors(t *testing.T) {
	url := apiServer(t, http.StatusInternalServerError, `{"error":"Failed to fetch reports","details":"boom"}`)

	_, err := run(t, "list", "--server", url)
	assert.ErrorContains(t, err, "Failed to fetch reports")
}

func TestListCommandWarnsOnUnknownType(t *testing.T) {
	url := apiServer(t, http.StatusOK, reportsJSON)

	out, err := run(t, "list", "--server", url, "--type", "meteor")
	require.NoError(t, err)
	assert.Contains(t, out, "Unknown event type")
	assert.Contains(t, out, "earthquake, flood, hurricane")
	assert.Contains(t, out, "No reports found")
}
