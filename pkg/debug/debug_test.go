package debug_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/walteh/liquidtags/pkg/debug"
)

func TestSplitFuncName(t *testing.T) {
	tests := []struct {
		in       string
		wantPkg  string
		wantFunc string
	}{
		{in: "github.com/walteh/liquidtags/pkg/rules.NewRegistry", wantPkg: "github.com/walteh/liquidtags/pkg/rules", wantFunc: "NewRegistry"},
		{in: "github.com/walteh/liquidtags/pkg/analyzer.(*Engine).Complete", wantPkg: "github.com/walteh/liquidtags/pkg/analyzer", wantFunc: "(*Engine).Complete"},
		{in: "main.main", wantPkg: "main", wantFunc: "main"},
		{in: "nodot", wantPkg: "nodot", wantFunc: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			pkg, fn := debug.SplitFuncName(tt.in)
			assert.Equal(t, tt.wantPkg, pkg)
			assert.Equal(t, tt.wantFunc, fn)
		})
	}
}

func TestFormatCaller(t *testing.T) {
	assert.Equal(t, "example.com/pkg:file.go:12", debug.FormatCaller("example.com/pkg", "/src/pkg/file.go", 12, false))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := debug.NewLogger(&buf, zerolog.InfoLevel, false)

	logger.Debug().Msg("hidden")
	logger.Info().Str("rule", "include").Msg("matched")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "matched")
	assert.Contains(t, out, "rule=include")
	assert.Contains(t, out, "debug_test.go")
}
