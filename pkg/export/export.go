// Package export writes crawl results to timestamped CSV and JSON files
// with fixed column layouts.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"igcrawler/pkg/config"
	"igcrawler/pkg/instagram"
	"igcrawler/pkg/logger"
	"igcrawler/pkg/models"
)

// mediaColumns is the fixed column order for media exports
var mediaColumns = []string{
	"username",
	"full_name",
	"pk",
	"like_count",
	"comment_count",
	"location_name",
	"location_address",
	"location_city",
	"location_short_name",
	"content_type",
	"text",
	"text_translation",
}

// commentColumns is the fixed column order for comment exports
var commentColumns = []string{
	"level",
	"username",
	"full_name",
	"text",
	"comment_like_count",
	"child_comment_count",
	"pk",
	"media_id",
}

// childMarker renders reply rows in tabular output
const childMarker = "└─"

// postMarker renders the post header row of a posts-with-comments export
const postMarker = "📌"

// Manager writes export files into one output directory
type Manager struct {
	outputDir   string
	saveCSV     bool
	saveJSON    bool
	saveRawJSON bool
	logger      logger.Logger
	now         func() time.Time
}

// NewManager creates the output directory and a manager writing into it
func NewManager(cfg *config.OutputConfig, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if err := os.MkdirAll(cfg.BaseDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		outputDir:   cfg.BaseDirectory,
		saveCSV:     cfg.SaveCSV,
		saveJSON:    cfg.SaveJSON,
		saveRawJSON: cfg.SaveRawJSON,
		logger:      log,
		now:         time.Now,
	}, nil
}

// timestampedPath builds <dir>/<name>_<timestamp>.<ext>
func (m *Manager) timestampedPath(name, ext string) string {
	return filepath.Join(m.outputDir, fmt.Sprintf("%s_%s.%s", name, m.now().Format("20060102_150405"), ext))
}

// SaveMediaRecords writes the media records under the given base name and
// returns the written paths keyed by format.
func (m *Manager) SaveMediaRecords(records []models.MediaRecord, name string) (map[string]string, error) {
	if len(records) == 0 {
		m.logger.Warn("no media records to save")
		return map[string]string{}, nil
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Username,
			r.FullName,
			r.PK,
			intOrEmpty(r.LikeCount),
			intOrEmpty(r.CommentCount),
			r.LocationName,
			r.LocationAddress,
			r.LocationCity,
			r.LocationShortName,
			r.ContentType,
			r.Text,
			r.TextTranslation,
		})
	}

	return m.save(name, mediaColumns, rows, records)
}

// SaveCommentRecords writes the comment records under the given base name.
// Row order is preserved; replies carry an indent marker in the level
// column.
func (m *Manager) SaveCommentRecords(records []models.CommentRecord, name string) (map[string]string, error) {
	if len(records) == 0 {
		m.logger.Warn("no comment records to save")
		return map[string]string{}, nil
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		level := ""
		if r.Depth == models.DepthChild {
			level = childMarker
		}
		rows = append(rows, []string{
			level,
			r.Username,
			r.FullName,
			r.Text,
			strconv.Itoa(r.CommentLikeCount),
			strconv.Itoa(r.ChildCommentCount),
			r.PK,
			r.MediaID,
		})
	}

	return m.save(name, commentColumns, rows, records)
}

// SavePostsWithComments writes one combined file per format: each post
// contributes a marked header row carrying its like and comment counts,
// immediately followed by its comment rows in thread order.
func (m *Manager) SavePostsWithComments(posts []models.PostWithComments, name string) (map[string]string, error) {
	if len(posts) == 0 {
		m.logger.Warn("no posts to save")
		return map[string]string{}, nil
	}

	var rows [][]string
	for _, p := range posts {
		rows = append(rows, []string{
			postMarker,
			p.Post.Username,
			p.Post.FullName,
			p.Post.Text,
			intOrEmpty(p.Post.LikeCount),
			intOrEmpty(p.Post.CommentCount),
			p.Post.PK,
			"",
		})
		for _, r := range p.Comments {
			level := ""
			if r.Depth == models.DepthChild {
				level = childMarker
			}
			rows = append(rows, []string{
				level,
				r.Username,
				r.FullName,
				r.Text,
				strconv.Itoa(r.CommentLikeCount),
				strconv.Itoa(r.ChildCommentCount),
				r.PK,
				r.MediaID,
			})
		}
	}

	return m.save(name, commentColumns, rows, posts)
}

// save writes the configured formats and returns their paths
func (m *Manager) save(name string, columns []string, rows [][]string, records interface{}) (map[string]string, error) {
	saved := map[string]string{}

	if m.saveCSV {
		path := m.timestampedPath(name, "csv")
		if err := writeCSV(path, columns, rows); err != nil {
			return saved, err
		}
		saved["csv"] = path
		m.logger.InfoWithFields("saved CSV", map[string]interface{}{"path": path})
	}

	if m.saveJSON {
		path := m.timestampedPath(name, "json")
		if err := writeJSON(path, records); err != nil {
			return saved, err
		}
		saved["json"] = path
		m.logger.InfoWithFields("saved JSON", map[string]interface{}{"path": path})
	}

	return saved, nil
}

// SaveRawMedias dumps the unprocessed media items as JSON for downstream
// analysis. A no-op unless raw export is enabled.
func (m *Manager) SaveRawMedias(medias []instagram.MediaItem, name string) (string, error) {
	if !m.saveRawJSON || len(medias) == 0 {
		return "", nil
	}

	path := m.timestampedPath(name+"_raw", "json")
	if err := writeJSON(path, medias); err != nil {
		return "", err
	}
	m.logger.InfoWithFields("saved raw JSON", map[string]interface{}{
		"path":  path,
		"items": len(medias),
	})
	return path, nil
}

func writeCSV(path string, columns []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
