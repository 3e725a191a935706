package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	feedFixture       = filepath.Join("..", "feed", "testdata", "cwtg_sample.xml")
	recipientsFixture = filepath.Join("..", "adapter", "recipients", "testdata", "recipients.yaml")
)

// execute runs the full command tree and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "wtemp", cmd.Use)

	for _, name := range []string{"scan", "report"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "yaml", "scan", "--file", feedFixture)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestScanText(t *testing.T) {
	stdout, stderr, err := execute(t, "scan", "--file", feedFixture)
	require.NoError(t, err)

	assert.Contains(t, stdout, "LOCATION")
	assert.Contains(t, stdout, "Boston, MA")
	assert.Contains(t, stdout, "55.2 °F")
	assert.Contains(t, stdout, "San Diego, CA")
	assert.NotContains(t, stdout, "Sandy Hook")
	assert.Contains(t, stderr, "skipping malformed record")
}

func TestScanByStateJSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "scan", "--file", feedFixture, "--state", "CA", "--state", "MA", "--unit", "C")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   ScanResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 5, resp.Data.Records)
	require.Len(t, resp.Data.Skipped, 1)
	assert.Equal(t, "missing_landmark", resp.Data.Skipped[0].Reason)

	require.Len(t, resp.Data.Readings, 2)
	assert.Equal(t, "San Diego, CA", resp.Data.Readings[0].Location)
	assert.InDelta(t, 17.5, resp.Data.Readings[0].Temperature, 0.001)
	assert.Equal(t, "Boston, MA", resp.Data.Readings[1].Location)
	assert.Equal(t, "C", string(resp.Data.Unit))
}

func TestScanGofeedParser(t *testing.T) {
	stdout, _, err := execute(t, "scan", "--file", feedFixture, "--parser", "gofeed", "--state", "AK")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Nome, AK")
	assert.Contains(t, stdout, "-1.5 °F")
}

func TestScanLowercaseState(t *testing.T) {
	stdout, _, err := execute(t, "scan", "--file", feedFixture, "--state", "me")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Casco Bay, ME")
	assert.NotContains(t, stdout, "Boston, MA")
}

func TestScanNoMatch(t *testing.T) {
	stdout, _, err := execute(t, "scan", "--file", feedFixture, "--state", "ZZ")
	require.NoError(t, err)
	assert.Equal(t, "No readings matched.\n", stdout)
}

func TestScanFromURL(t *testing.T) {
	body, err := os.ReadFile(feedFixture)
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	stdout, _, err := execute(t, "scan", "--url", srv.URL, "--state", "ME")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Casco Bay, ME")
	assert.NotContains(t, stdout, "Boston, MA")
}

func TestScanInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no source", []string{"scan"}},
		{"both sources", []string{"scan", "--file", feedFixture, "--url", "http://localhost"}},
		{"bad unit", []string{"scan", "--file", feedFixture, "--unit", "K"}},
		{"bad state", []string{"scan", "--file", feedFixture, "--state", "MAS"}},
		{"bad parser", []string{"scan", "--file", feedFixture, "--parser", "regex"}},
		{"missing file", []string{"scan", "--file", filepath.Join(t.TempDir(), "absent.xml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestReportText(t *testing.T) {
	stdout, _, err := execute(t, "report", "--file", feedFixture, "--recipients", recipientsFixture)
	require.NoError(t, err)

	assert.Contains(t, stdout, "To: Sam <sam@example.com>")
	assert.Contains(t, stdout, "Subject: Your Water Temperatures from OpenWater")
	assert.Contains(t, stdout, "Casco Bay, ME\nWater temp 44.1 °F")
	assert.Contains(t, stdout, "To: Riley <riley@example.org>")
	assert.Contains(t, stdout, "San Diego, CA\nWater temp 17.5 °C")
}

func TestReportHTML(t *testing.T) {
	stdout, _, err := execute(t, "report", "--file", feedFixture, "--recipients", recipientsFixture, "--html")
	require.NoError(t, err)
	assert.Contains(t, stdout, "<u>Boston, MA</u>")
	assert.Contains(t, stdout, "&#8451;")
}

func TestReportJSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "report", "--file", feedFixture, "--recipients", recipientsFixture, "--from", "ops@example.com")
	require.NoError(t, err)

	var resp struct {
		Data []struct {
			Recipient string `json:"recipient"`
			From      string `json:"from"`
			Readings  int    `json:"readings"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "sam@example.com", resp.Data[0].Recipient)
	assert.Equal(t, "ops@example.com", resp.Data[0].From)
	assert.Equal(t, 2, resp.Data[0].Readings)
	assert.Equal(t, 1, resp.Data[1].Readings)
}

func TestReportMissingRecipients(t *testing.T) {
	_, _, err := execute(t, "report", "--file", feedFixture, "--recipients", filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}
