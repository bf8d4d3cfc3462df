// package formatter renders a listening dashboard as plain text, Markdown, CSV or JSON
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spotiverse/internal/services"
	"github.com/desertthunder/spotiverse/internal/shared"
)

// Format names an output encoding.
type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	CSV      Format = "csv"
	JSON     Format = "json"
)

// ParseFormat accepts the format names and their short aliases (txt, md).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, markdown, csv or json)", shared.ErrInvalidFlag, s)
	}
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return ".md"
	case CSV:
		return ".csv"
	case JSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Render encodes d in format f.
func Render(d *services.Dashboard, f Format) ([]byte, error) {
	switch f {
	case Text:
		return ExportToText(d), nil
	case Markdown:
		return ExportToMarkdown(d, ""), nil
	case CSV:
		return ExportToCSV(d)
	case JSON:
		return shared.MarshalJSON(d, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
	}
}

func displayName(d *services.Dashboard) string {
	if d.Profile == nil {
		return "Unknown user"
	}
	if d.Profile.DisplayName != "" {
		return d.Profile.DisplayName
	}
	return d.Profile.ID
}

func albumName(t services.SpotifyTrack) string {
	if t.Album == nil {
		return ""
	}
	return t.Album.Name
}

// ExportToText renders the dashboard as aligned plain text sections.
func ExportToText(d *services.Dashboard) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "User: %s\n", displayName(d))
	if d.Profile != nil {
		if d.Profile.ExternalURLs.Spotify != "" {
			fmt.Fprintf(&buf, "Profile: %s\n", d.Profile.ExternalURLs.Spotify)
		}
		fmt.Fprintf(&buf, "Followers: %s\n", shared.FormatCount(d.Profile.Followers.Total))
	}
	fmt.Fprintf(&buf, "Time Range: %s\n", d.TimeRange.Label())

	fmt.Fprintf(&buf, "\nTop Artists (%d)\n", len(d.TopArtists))
	for i, a := range d.TopArtists {
		fmt.Fprintf(&buf, "%2d. %s", i+1, a.Name)
		if len(a.Genres) > 0 {
			fmt.Fprintf(&buf, " [%s]", strings.Join(a.Genres, ", "))
		}
		fmt.Fprintf(&buf, " popularity %d, %s followers\n", a.Popularity, shared.FormatCount(a.Followers.Total))
	}

	writeTracks := func(title string, tracks []services.SpotifyTrack) {
		fmt.Fprintf(&buf, "\n%s (%d)\n", title, len(tracks))
		for i, t := range tracks {
			fmt.Fprintf(&buf, "%2d. %s - %s [%s] popularity %d\n",
				i+1, t.ArtistNames(), t.Name, shared.FormatDuration(t.DurationMS), t.Popularity)
		}
	}
	writeTracks("Top Tracks", d.TopTracks)
	writeTracks("Recommendations", d.Recommendations)

	return buf.Bytes()
}

// ExportToMarkdown renders the dashboard as Markdown, with an optional profile image reference.
func ExportToMarkdown(d *services.Dashboard, imageFilename string) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", displayName(d))

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Profile](%s)\n\n", imageFilename)
	}

	if d.Profile != nil && d.Profile.ExternalURLs.Spotify != "" {
		fmt.Fprintf(&buf, "**Profile**: %s\n", d.Profile.ExternalURLs.Spotify)
	}
	fmt.Fprintf(&buf, "**Time Range**: %s\n\n", d.TimeRange.Label())

	buf.WriteString("## Top Artists\n\n")
	buf.WriteString("| # | Artist | Genres | Popularity | Followers |\n")
	buf.WriteString("|---|--------|--------|------------|-----------|\n")
	for i, a := range d.TopArtists {
		fmt.Fprintf(&buf, "| %d | %s | %s | %d | %s |\n",
			i+1, mdEscape(a.Name), mdEscape(strings.Join(a.Genres, ", ")), a.Popularity, shared.FormatCount(a.Followers.Total))
	}

	writeTracks := func(title string, tracks []services.SpotifyTrack) {
		fmt.Fprintf(&buf, "\n## %s\n\n", title)
		if len(tracks) == 0 {
			buf.WriteString("_None_\n")
			return
		}
		for i, t := range tracks {
			albumPart := ""
			if name := albumName(t); name != "" {
				albumPart = fmt.Sprintf(" (%s)", name)
			}
			fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, t.ArtistNames(), t.Name, albumPart, shared.FormatDuration(t.DurationMS))
		}
	}
	writeTracks("Top Tracks", d.TopTracks)
	writeTracks("Recommendations", d.Recommendations)

	return buf.Bytes()
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// ExportToCSV converts the dashboard to one CSV table with columns:
// Section, Rank, ID, Name, Artists, Album, Genres, Popularity, Followers, Duration
func ExportToCSV(d *services.Dashboard) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Section", "Rank", "ID", "Name", "Artists", "Album", "Genres", "Popularity", "Followers", "Duration"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, a := range d.TopArtists {
		record := []string{
			"top_artists",
			strconv.Itoa(i + 1),
			a.ID,
			a.Name,
			"",
			"",
			strings.Join(a.Genres, ", "),
			strconv.Itoa(a.Popularity),
			strconv.Itoa(a.Followers.Total),
			"",
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	for _, section := range []struct {
		name   string
		tracks []services.SpotifyTrack
	}{
		{"top_tracks", d.TopTracks},
		{"recommendations", d.Recommendations},
	} {
		for i, t := range section.tracks {
			record := []string{
				section.name,
				strconv.Itoa(i + 1),
				t.ID,
				t.Name,
				t.ArtistNames(),
				albumName(t),
				"",
				strconv.Itoa(t.Popularity),
				"",
				shared.FormatDuration(t.DurationMS),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteExport renders d in format f and writes it to path.
func WriteExport(d *services.Dashboard, f Format, path string) error {
	data, err := Render(d, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory    string
	Files        []string
	ProfileImage string
}

// WriteMarkdownExport writes the dashboard to {dir}/README.md.
//
// The imageURL parameter is optional: when set, the image is saved as {dir}/profile.jpg and referenced from the
// document. A failed download is logged and the export continues without it.
func WriteMarkdownExport(ctx context.Context, d *services.Dashboard, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = string(d.TimeRange)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var imageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(ctx, imageURL)
		if err != nil {
			shared.NewLogger(nil).Warn("failed to download profile image", "error", err)
		} else {
			imageFilename = "profile.jpg"
			imagePath := filepath.Join(outputDir, imageFilename)
			if err := os.WriteFile(imagePath, imageData, 0644); err != nil {
				shared.NewLogger(nil).Warn("failed to save profile image", "error", err)
				imageFilename = ""
			} else {
				result.ProfileImage = imagePath
				result.Files = append(result.Files, imagePath)
			}
		}
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, ExportToMarkdown(d, imageFilename), 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}
