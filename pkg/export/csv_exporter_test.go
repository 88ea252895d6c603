package export

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Group", "Key", "Percentage"},
		Rows: []map[string]string{
			{"Group": "Subject", "Key": "Algorithms", "Percentage": "75"},
			{"Group": "Section", "Key": "A", "Percentage": "80"},
		},
	}

	raw, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	require.Equal(t, "Group,Key,Percentage\nSubject,Algorithms,75\nSection,A,80\n", string(raw))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Group", "Key"},
		Rows:    []map[string]string{{"Group": "Overall", "Key": "department"}},
	}

	raw, err := NewPDFExporter().Render(data, "CSE attendance report")
	require.NoError(t, err)
	require.True(t, len(raw) > 0)
	require.Equal(t, "%PDF", string(raw[:4]))
}
