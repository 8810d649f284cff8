// package formatter renders listening data for humans: artist lists with a
// French conjunction, listening durations, and full reports for the terminal.
package formatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/spotrack/internal/models"
	"github.com/olekukonko/tablewriter"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).MarginBottom(1)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
)

// JoinArtists joins artist names with commas, the last pair with "et".
//
// ["A"] -> "A"; ["A", "B"] -> "A et B"; ["A", "B", "C"] -> "A, B et C".
func JoinArtists(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}

	head := strings.Join(names[:len(names)-1], ", ")
	return head + " et " + names[len(names)-1]
}

// FormatMinutes renders a minute count as "j jours, h heures et m minutes".
func FormatMinutes(minutes int) string {
	days := minutes / (24 * 60)
	hours := (minutes % (24 * 60)) / 60
	mins := minutes % 60

	return fmt.Sprintf("%d jours, %d heures et %d minutes", days, hours, mins)
}

// RenderReport renders a report as styled terminal output with one table per
// top-5 ranking. Used by the on-demand report command.
func RenderReport(report models.Report, title string) string {
	var buf bytes.Buffer

	buf.WriteString(titleStyle.Render(title))
	buf.WriteString("\n")
	buf.WriteString(fmt.Sprintf("Temps d'écoute : %s\n", FormatMinutes(report.Minutes)))
	buf.WriteString(fmt.Sprintf("Nombre de titres : %d\n", report.TrackCount))
	buf.WriteString(fmt.Sprintf("Nombre d'artistes : %d\n", report.ArtistCount))
	buf.WriteString(fmt.Sprintf("Nombre de playlists : %d\n", report.PlaylistCount))

	writeRanking(&buf, "Top titres", report.TopTracks)
	writeRanking(&buf, "Top artistes", report.TopArtists)
	writeRanking(&buf, "Top playlists", report.TopPlaylists)

	return buf.String()
}

func writeRanking(buf *bytes.Buffer, section string, entries []models.ReportEntry) {
	if len(entries) == 0 {
		return
	}

	buf.WriteString("\n")
	buf.WriteString(sectionStyle.Render(section))
	buf.WriteString("\n")

	table := tablewriter.NewWriter(buf)
	table.Header([]string{"#", "Nom", "Minutes"})
	for i, entry := range entries {
		table.Append([]string{strconv.Itoa(i + 1), entry.Name, strconv.Itoa(entry.Minutes)})
	}
	table.Render()
}
