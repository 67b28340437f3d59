// Package backup exports the planner tables as JSON into a ZIP archive, keeps it
// on disk and optionally ships it to S3.
package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/wayfarer-labs/planner/internal/models"
)

const (
	filePrefix      = "planner-backup-"
	fileExt         = ".zip"
	objectKeyLayout = "backups/2006/01/"
	maxConcurrency  = 4
)

// Tables lists the exported tables. Sessions are ephemeral and skipped.
func Tables() []string {
	return []string{
		models.UserModel{}.TableName(),
		models.Landmark{}.TableName(),
		models.VisitingPlan{}.TableName(),
		models.PlanItem{}.TableName(),
		models.VisitLog{}.TableName(),
	}
}

// Artifact describes a written archive.
type Artifact struct {
	Filename  string         `json:"filename"`
	Path      string         `json:"path"`
	Size      int64          `json:"size"`
	Rows      map[string]int `json:"rows"`
	ObjectKey string         `json:"object_key,omitempty"`
}

type Service struct {
	db       *gorm.DB
	dir      string
	uploader Uploader
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("Backup")
		}
	}
}

// WithUploader ships every archive after it is written locally.
func WithUploader(u Uploader) Option {
	return func(s *Service) { s.uploader = u }
}

func New(db *gorm.DB, dir string, opts ...Option) *Service {
	s := &Service{db: db, dir: dir, logger: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run exports every table, writes the archive into the backup directory and uploads it when an uploader is set.
func (s *Service) Run(ctx context.Context) (*Artifact, error) {
	started := s.now().UTC()
	dumps, err := s.export(ctx)
	if err != nil {
		return nil, err
	}

	buf, rows, err := archive(ctx, dumps)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	filename := filePrefix + started.Format("2006-01-02T15-04-05") + fileExt
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}

	art := &Artifact{Filename: filename, Path: path, Size: int64(buf.Len()), Rows: rows}
	if s.uploader != nil {
		key := started.Format(objectKeyLayout) + filename
		if err := s.uploader.Upload(ctx, key, buf.Bytes(), "application/zip"); err != nil {
			return art, err
		}
		art.ObjectKey = key
	}

	s.logger.Info("backup written",
		zap.String("file", filename),
		zap.Int64("bytes", art.Size),
		zap.Bool("uploaded", art.ObjectKey != ""),
		zap.Duration("took", time.Since(started)),
	)
	return art, nil
}

type tableDump struct {
	name string
	rows []map[string]interface{}
	data []byte
}

// snapshotOptions returns the transaction options that give every table read the
// same snapshot. SQLite transactions are already serializable, so it keeps the defaults.
func snapshotOptions(dialect string) *sql.TxOptions {
	if dialect == "sqlite" {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}

// export reads every table inside one transaction so foreign keys in the
// archive always resolve.
func (s *Service) export(ctx context.Context) ([]tableDump, error) {
	tables := Tables()
	dumps := make([]tableDump, len(tables))

	read := func(tx *gorm.DB) error {
		for i, table := range tables {
			rows := make([]map[string]interface{}, 0)
			if err := tx.Table(table).Order("id").Find(&rows).Error; err != nil {
				return fmt.Errorf("export %s: %w", table, err)
			}
			dumps[i] = tableDump{name: table, rows: rows}
		}
		return nil
	}
	if err := s.db.WithContext(ctx).Transaction(read, snapshotOptions(s.db.Dialector.Name())); err != nil {
		return nil, err
	}
	return dumps, nil
}

// archive encodes the dumps concurrently and zips them in table order.
func archive(ctx context.Context, dumps []tableDump) (*bytes.Buffer, map[string]int, error) {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for i := range dumps {
		g.Go(func() error {
			data, err := json.Marshal(dumps[i].rows)
			if err != nil {
				return fmt.Errorf("encode %s: %w", dumps[i].name, err)
			}
			dumps[i].data = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	rows := make(map[string]int, len(dumps))
	for _, d := range dumps {
		f, err := w.Create(d.name + ".json")
		if err != nil {
			return nil, nil, err
		}
		if _, err := f.Write(d.data); err != nil {
			return nil, nil, err
		}
		rows[d.name] = len(d.rows)
	}
	if err := w.Close(); err != nil {
		return nil, nil, err
	}
	return buf, rows, nil
}

// Entry is an archive found in the backup directory.
type Entry struct {
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// List returns local archives, newest first.
func (s *Service) List() ([]Entry, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{Filename: e.Name(), Size: info.Size(), Modified: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename > out[j].Filename })
	return out, nil
}

// Prune deletes all but the newest keep archives and returns how many were removed.
func (s *Service) Prune(keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	entries, err := s.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries[min(keep, len(entries)):] {
		if err := os.Remove(filepath.Join(s.dir, e.Filename)); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
