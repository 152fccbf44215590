package diagnostic

import (
	"encoding/json"
	"fmt"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/liquidtags/pkg/usage"
)

// Diagnostics represents diagnostic information that can be formatted in different ways
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message. Lines and columns are 1-based.
type Diagnostic struct {
	File     string
	Message  string
	Line     int
	Column   int
	EndLine  int
	EndCol   int
	Severity DiagnosticSeverity
}

// DiagnosticSeverity represents the severity level of a diagnostic
type DiagnosticSeverity string

const (
	Error   DiagnosticSeverity = "error"
	Warning DiagnosticSeverity = "warning"
	Info    DiagnosticSeverity = "info"
)

// FromReport turns a usage report into diagnostics: a warning for every reference to a
// missing record and an info for every unused record.
func FromReport(report *usage.Report) (*Diagnostics, error) {
	if report == nil {
		return nil, errors.Errorf("report is nil")
	}

	diagnostics := &Diagnostics{
		Errors:   make([]Diagnostic, 0),
		Warnings: make([]Diagnostic, 0),
		Infos:    make([]Diagnostic, 0),
	}

	for _, ref := range report.Unresolved {
		diagnostics.Warnings = append(diagnostics.Warnings, Diagnostic{
			File:     ref.File,
			Message:  fmt.Sprintf("%s %s %q does not match any record in the manifest", ref.Construct, ref.AttributeKey, ref.AttributeValue),
			Line:     ref.Line,
			Column:   ref.Column,
			EndLine:  ref.Line,
			EndCol:   ref.Column + ref.Position.Length(),
			Severity: Warning,
		})
	}

	for _, u := range report.Unused {
		diagnostics.Infos = append(diagnostics.Infos, Diagnostic{
			File:     u.Manifest,
			Message:  fmt.Sprintf("%s %q (%s) is not referenced by any document", u.Attribute, u.Entry.DisplayName, u.Entry.RecordId),
			Line:     1,
			Column:   1,
			EndLine:  1,
			EndCol:   1,
			Severity: Info,
		})
	}

	return diagnostics, nil
}

// Formatter formats diagnostics into different output formats
type Formatter interface {
	// Format formats diagnostics into a specific output format
	Format(diagnostics *Diagnostics) ([]byte, error)
}

// VSCodeFormatter formats diagnostics into VSCode-compatible format
type VSCodeFormatter struct{}

// NewVSCodeFormatter creates a new VSCodeFormatter
func NewVSCodeFormatter() *VSCodeFormatter {
	return &VSCodeFormatter{}
}

type vscodePosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type vscodeRange struct {
	Start vscodePosition `json:"start"`
	End   vscodePosition `json:"end"`
}

type vscodeDiagnostic struct {
	File     string      `json:"file"`
	Severity int         `json:"severity"`
	Message  string      `json:"message"`
	Range    vscodeRange `json:"range"`
}

// Format implements Formatter
func (f *VSCodeFormatter) Format(diagnostics *Diagnostics) ([]byte, error) {
	if diagnostics == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}

	// severities: Error = 1, Warning = 2, Information = 3
	result := make([]vscodeDiagnostic, 0, len(diagnostics.Errors)+len(diagnostics.Warnings)+len(diagnostics.Infos))
	for severity, group := range [][]Diagnostic{diagnostics.Errors, diagnostics.Warnings, diagnostics.Infos} {
		for _, d := range group {
			result = append(result, vscodeDiagnostic{
				File:     d.File,
				Severity: severity + 1,
				Message:  d.Message,
				Range: vscodeRange{
					// VSCode is 0-based
					Start: vscodePosition{Line: d.Line - 1, Character: d.Column - 1},
					End:   vscodePosition{Line: d.EndLine - 1, Character: d.EndCol - 1},
				},
			})
		}
	}

	out, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Errorf("marshaling diagnostics: %w", err)
	}
	return out, nil
}
