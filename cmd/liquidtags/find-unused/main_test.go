package find_unused

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/liquidtags/cmd/liquidtags/internal/setup"
	"github.com/walteh/liquidtags/pkg/usage"
)

const siteManifest = `
adx_webtemplate:
  - DisplayName: Header
    RecordId: t1
  - DisplayName: Layout
    RecordId: t2
`

func newEnv(t *testing.T) *setup.Env {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/site/.portalconfig/site-manifest.yml", []byte(siteManifest), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/site/web-templates/page.html", []byte("{% include 'Header' %}{% include 'Nav' %}"), 0o644))

	env, err := setup.Load(context.Background(), fs, setup.Flags{Workspace: "/site"})
	require.NoError(t, err)
	return env
}

func TestHandler_RunJSON(t *testing.T) {
	var out bytes.Buffer
	h := Handler{siteDir: "/site", format: "json"}
	require.NoError(t, h.Run(context.Background(), newEnv(t), &out))

	var report usage.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 1, report.Files)
	require.Len(t, report.Unused, 1)
	assert.Equal(t, "Layout", report.Unused[0].Entry.DisplayName)
	require.Len(t, report.Unresolved, 1)
	assert.Equal(t, "Nav", report.Unresolved[0].AttributeValue)
}

func TestHandler_RunVSCode(t *testing.T) {
	var out bytes.Buffer
	h := Handler{siteDir: "/site", format: "vscode"}
	require.NoError(t, h.Run(context.Background(), newEnv(t), &out))

	var diags []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &diags))
	assert.Len(t, diags, 2)
}

func TestHandler_RunUnknownFormat(t *testing.T) {
	h := Handler{siteDir: "/site", format: "xml"}
	assert.Error(t, h.Run(context.Background(), newEnv(t), &bytes.Buffer{}))
}

func TestHandler_RunIncludeOverride(t *testing.T) {
	var out bytes.Buffer
	h := Handler{siteDir: "/site", format: "json", include: []string{"**/*.liquid"}}
	require.NoError(t, h.Run(context.Background(), newEnv(t), &out))

	var report usage.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, 0, report.Files)
	assert.Len(t, report.Unused, 0)
}
