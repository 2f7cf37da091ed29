package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"github.com/yigit/educareway/internal/ingest"
	"github.com/yigit/educareway/internal/pkg/identity"
)

func testApp(out *bytes.Buffer) *cli.App {
	app := newApp(out)
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestArgumentValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"make-admin without email", []string{"eduadmin", "make-admin"}},
		{"make-admin with bad email", []string{"eduadmin", "make-admin", "not-an-email"}},
		{"set-subject-image missing url", []string{"eduadmin", "set-subject-image", "DSA"}},
		{"ingest bad mapping", []string{"eduadmin", "ingest-notes", "--dir", ".", "--map", "DSA"}},
		{"ingest without dir", []string{"eduadmin", "ingest-notes"}},
		{"notify bad data", []string{"eduadmin", "notify", "--title", "t", "--body", "b", "--data", "novalue"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := testApp(&out).Run(tt.args)
			require.Error(t, err)
		})
	}
}

func TestDevToken(t *testing.T) {
	path := writeConfig(t, "dev_auth:\n  secret: cli-secret\n  issuer: educareway.cli\n")

	var out bytes.Buffer
	err := testApp(&out).Run([]string{"eduadmin", "--config", path, "dev-token", "--uid", "operator", "--email", "ops@example.com"})
	require.NoError(t, err)

	token := strings.TrimSpace(out.String())
	verifier := identity.NewDevVerifier(identity.DevConfig{SecretKey: "cli-secret", TokenIssuer: "educareway.cli"})
	ident, err := verifier.VerifyIDToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "operator", ident.UID)
	assert.Equal(t, "ops@example.com", ident.Email)
}

func TestDevTokenRefusedWithFirebase(t *testing.T) {
	path := writeConfig(t, "firebase:\n  enabled: true\n  project_id: educareway\n")

	var out bytes.Buffer
	err := testApp(&out).Run([]string{"eduadmin", "--config", path, "dev-token", "--uid", "operator"})
	require.Error(t, err)
}

func TestPrintReport(t *testing.T) {
	unit := 2
	report := &ingest.Report{
		Processed: 2, Uploaded: 1, Skipped: 1,
		Folders: []string{"os"},
		Files: []ingest.FileResult{
			{Path: "dsa/UNIT 2/trees.pdf", SubjectCode: "DSA", Title: "Trees", UnitNumber: &unit, Status: ingest.StatusWouldUpload},
			{Path: "dsa/intro.pdf", SubjectCode: "DSA", Title: "Intro", Status: ingest.StatusSkipped, Reason: "already uploaded"},
		},
	}

	var out bytes.Buffer
	require.NoError(t, printReport(&out, report, false))
	text := out.String()
	assert.Contains(t, text, "would-upload")
	assert.Contains(t, text, "skipped folder os")
	assert.Contains(t, text, "processed=2 uploaded=1 skipped=1 failed=0")

	out.Reset()
	require.NoError(t, printReport(&out, report, true))
	assert.Contains(t, out.String(), `"skippedFolders"`)
}
