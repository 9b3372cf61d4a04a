package export

import (
	"fmt"
	"time"

	"supersoniq-insights/internal/types"
)

// Format is a supported download format.
type Format string

const (
	FormatText Format = "txt"
	FormatXLSX Format = "xlsx"
	FormatDOCX Format = "docx"
)

// ParseFormat accepts txt, xlsx and docx; empty means txt.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatXLSX, FormatDOCX:
		return Format(s), nil
	}
	return "", &types.ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported export format %q", s)}
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "text/plain; charset=utf-8"
}

// Render produces the artifact for res in format f.
func Render(f Format, res *types.InsightResult) ([]byte, error) {
	switch f {
	case FormatXLSX:
		return XLSX(res)
	case FormatDOCX:
		return DOCX(res)
	}
	return []byte(Text(res)), nil
}

// Filename is the download name for an export taken at t, dated in UTC.
func Filename(f Format, t time.Time) string {
	return fmt.Sprintf("supersoniq-insights-%s.%s", t.UTC().Format("2006-01-02"), f)
}
