package usage_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/liquidtags/pkg/analyzer"
	"github.com/walteh/liquidtags/pkg/finder"
	"github.com/walteh/liquidtags/pkg/manifest"
	"github.com/walteh/liquidtags/pkg/usage"
)

const siteManifest = `
adx_webtemplate:
  - DisplayName: Header
    RecordId: t1
  - DisplayName: Footer
    RecordId: t2
  - DisplayName: Layout
    RecordId: t3
adx_entityform:
  - DisplayName: Contact Us
    RecordId: f1
  - DisplayName: Profile
    RecordId: f2
adx_contentsnippet:
  - DisplayName: Intro
    RecordId: s1
  - DisplayName: Old Banner
    RecordId: s2
adx_webpage:
  - DisplayName: Home
    RecordId: p1
`

var siteDocuments = map[string]string{
	"/site/web-templates/header.html": "{% include 'Header' %}\n{{ snippets['Intro'] }}",
	"/site/web-templates/footer.html": "{% include 'footer' %}",
	"/site/web-pages/contact.html":    "<h1>Contact</h1>\n{% entityform id:'f1' %}\n{% include 'Missing' %}",
}

func newScanner(t *testing.T, manifestText string) *usage.Scanner {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range siteDocuments {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	if manifestText != "" {
		require.NoError(t, afero.WriteFile(fs, "/site/.portalconfig/site-manifest.yml", []byte(manifestText), 0o644))
	}

	resolver := manifest.NewResolver(fs)
	engine := analyzer.New(analyzer.WithFS(fs), analyzer.WithManifests(resolver))
	return usage.NewScanner(engine, resolver, finder.NewDefaultFinder(fs))
}

func TestScanner_Scan(t *testing.T) {
	report, err := newScanner(t, siteManifest).Scan(context.Background(), "/site", finder.Options{})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.Files)
	assert.Len(t, report.References, 5)

	require.Len(t, report.Unresolved, 1)
	missing := report.Unresolved[0]
	assert.Equal(t, "/site/web-pages/contact.html", missing.File)
	assert.Equal(t, "Missing", missing.AttributeValue)
	assert.Equal(t, 3, missing.Line)
	assert.Equal(t, 12, missing.Column)

	var unused []string
	for _, u := range report.Unused {
		assert.Equal(t, "/site/.portalconfig/site-manifest.yml", u.Manifest)
		unused = append(unused, u.Attribute+"/"+u.Entry.DisplayName)
	}
	assert.Equal(t, []string{
		"adx_contentsnippet/Old Banner",
		"adx_entityform/Profile",
		"adx_webtemplate/Layout",
	}, unused)
}

func TestScanner_ScanWithoutManifest(t *testing.T) {
	report, err := newScanner(t, "").Scan(context.Background(), "/site", finder.Options{})
	require.NoError(t, err)

	assert.Len(t, report.References, 5)
	assert.Empty(t, report.Unresolved)
	assert.Empty(t, report.Unused)
}

func TestScanner_ScanBrokenManifest(t *testing.T) {
	report, err := newScanner(t, "adx_webtemplate: [").Scan(context.Background(), "/site", finder.Options{})

	require.Error(t, err)
	require.NotNil(t, report)
	assert.Len(t, report.References, 5)
	assert.Empty(t, report.Unused)
}

func TestScanner_ScanCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newScanner(t, siteManifest).Scan(ctx, "/site", finder.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
