// Package report renders search results for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/denysvitali/asset-finder/internal/models"
)

// Supported output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#86AAEC")).Bold(true)
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
)

// Write renders resp to w in the given format
func Write(w io.Writer, format string, resp models.SearchResponse) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return writeText(w, resp)
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

func writeText(w io.Writer, resp models.SearchResponse) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Total files found for %q: %d\n", resp.Keyword, resp.Total)
	if len(resp.DroppedExtensions) > 0 {
		b.WriteString(noteStyle.Render(fmt.Sprintf("%d files were removed because of extension %s",
			resp.Dropped(), strings.Join(resp.DroppedExtensions, ", "))))
		b.WriteString("\n")
	}

	section(&b, "Image Files", resp.Images)
	section(&b, "Other Files", resp.Others)

	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, title string, files []models.FileMatch) {
	fmt.Fprintf(b, "\n%s (%d)\n", titleStyle.Render(title), len(files))
	if len(files) == 0 {
		b.WriteString("none\n")
		return
	}

	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{f.Name, f.Ext, f.Size, f.URL})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "TYPE", "SIZE", "PATH").
		Rows(rows...)
	b.WriteString(t.Render())
	b.WriteString("\n")
}
