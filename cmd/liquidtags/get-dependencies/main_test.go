package get_dependencies

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/liquidtags/cmd/liquidtags/internal/setup"
)

func TestHandler_Run(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/ws/a.html", []byte("{% include 'Header' %}\n<p>{{ snippets['Footer'] }}</p>"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/ws/b.html", []byte("plain"), 0o644))

	env, err := setup.Load(context.Background(), fs, setup.Flags{Workspace: "/ws"})
	require.NoError(t, err)

	var out bytes.Buffer
	h := Handler{filePaths: []string{"/ws/a.html", "/ws/b.html"}}
	require.NoError(t, h.Run(context.Background(), env, &out))

	var got []Dependency
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)

	assert.Equal(t, "Template", got[0].Construct)
	assert.Equal(t, "Header", got[0].AttributeValue)
	assert.Equal(t, 1, got[0].Line)
	assert.Equal(t, 12, got[0].Column)

	assert.Equal(t, "snippets", got[1].Construct)
	assert.Equal(t, "Footer", got[1].AttributeValue)
	assert.Equal(t, 2, got[1].Line)
	assert.Equal(t, 16, got[1].Column)
	assert.Equal(t, "/ws/a.html", got[1].File)
}
