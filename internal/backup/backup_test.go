package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer-labs/planner/internal/config"
	"github.com/wayfarer-labs/planner/internal/pkg/testutil"
)

type memUploader struct {
	keys    []string
	payload []byte
	err     error
}

func (m *memUploader) Upload(_ context.Context, key string, payload []byte, _ string) error {
	m.keys = append(m.keys, key)
	m.payload = payload
	return m.err
}

func readTable(t *testing.T, archive []byte, table string) []map[string]any {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != table+".json" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		var rows []map[string]any
		require.NoError(t, json.NewDecoder(rc).Decode(&rows))
		return rows
	}
	t.Fatalf("%s.json missing from archive", table)
	return nil
}

func TestRunWritesArchiveAndUploads(t *testing.T) {
	db := testutil.OpenDB(t)
	user := testutil.CreateUser(t, db, "ada@example.com")
	eiffel := testutil.CreateLandmark(t, db, user.ID, "Eiffel Tower", 48.8584, 2.2945)
	louvre := testutil.CreateLandmark(t, db, user.ID, "Louvre", 48.8606, 2.3376)
	testutil.CreatePlan(t, db, user.ID, "Paris", eiffel, louvre)

	up := &memUploader{}
	dir := t.TempDir()
	svc := New(db, dir, WithUploader(up), WithLogger(testutil.Logger()))
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC) }

	art, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "planner-backup-2025-06-01T03-00-00.zip", art.Filename)
	assert.Equal(t, "backups/2025/06/"+art.Filename, art.ObjectKey)
	assert.Equal(t, []string{art.ObjectKey}, up.keys)
	assert.Equal(t, 2, art.Rows["landmarks"])
	assert.Equal(t, 2, art.Rows["plan_items"])
	assert.Equal(t, 1, art.Rows["visiting_plans"])
	assert.Equal(t, 0, art.Rows["visited_landmarks"])

	onDisk, err := os.ReadFile(filepath.Join(dir, art.Filename))
	require.NoError(t, err)
	assert.Equal(t, up.payload, onDisk)

	landmarks := readTable(t, onDisk, "landmarks")
	require.Len(t, landmarks, 2)
	assert.Equal(t, "Eiffel Tower", landmarks[0]["name"])
	assert.Empty(t, readTable(t, onDisk, "visited_landmarks"))
}

func TestRunKeepsLocalCopyWhenUploadFails(t *testing.T) {
	db := testutil.OpenDB(t)
	dir := t.TempDir()
	svc := New(db, dir, WithUploader(&memUploader{err: errors.New("bucket gone")}))

	art, err := svc.Run(context.Background())
	require.Error(t, err)
	require.NotNil(t, art)
	assert.Empty(t, art.ObjectKey)
	assert.FileExists(t, art.Path)
}

func TestListAndPrune(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"planner-backup-2025-06-01T03-00-00.zip",
		"planner-backup-2025-06-02T03-00-00.zip",
		"planner-backup-2025-06-03T03-00-00.zip",
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	svc := New(nil, dir)

	entries, err := svc.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "planner-backup-2025-06-03T03-00-00.zip", entries[0].Filename)

	removed, err := svc.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, filepath.Join(dir, "planner-backup-2025-06-01T03-00-00.zip"))
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))

	missing := New(nil, filepath.Join(dir, "nope"))
	entries, err = missing.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewS3UploaderRequiresCredentials(t *testing.T) {
	_, err := NewS3Uploader(config.S3Config{Bucket: "planner"})
	require.Error(t, err)
}

func TestS3UploaderPutsObject(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		method, path, body = r.Method, r.URL.Path, data
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	up, err := NewS3Uploader(config.S3Config{
		Bucket:          "planner",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		Prefix:          "/nightly/",
	})
	require.NoError(t, err)

	payload := []byte("archive-bytes")
	require.NoError(t, up.Upload(context.Background(), "//backups/2025/06/a.zip", payload, "application/zip"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/planner/nightly/backups/2025/06/a.zip", path)
	assert.Contains(t, string(body), string(payload))
}

func TestSnapshotOptions(t *testing.T) {
	assert.Nil(t, snapshotOptions("sqlite"))
	for _, dialect := range []string{"postgres", "mysql"} {
		opts := snapshotOptions(dialect)
		require.NotNil(t, opts, dialect)
		assert.Equal(t, sql.LevelRepeatableRead, opts.Isolation)
		assert.True(t, opts.ReadOnly)
	}
}

func TestArchiveItemsResolveToPlans(t *testing.T) {
	db := testutil.OpenDB(t)
	user := testutil.CreateUser(t, db, "ada@example.com")
	lm := testutil.CreateLandmark(t, db, user.ID, "Louvre", 48.8606, 2.3376)
	testutil.CreatePlan(t, db, user.ID, "Paris", lm)
	testutil.CreatePlan(t, db, user.ID, "Europe", lm)

	art, err := New(db, t.TempDir()).Run(context.Background())
	require.NoError(t, err)
	raw, err := os.ReadFile(art.Path)
	require.NoError(t, err)

	plans := map[float64]bool{}
	for _, p := range readTable(t, raw, "visiting_plans") {
		plans[p["id"].(float64)] = true
	}
	items := readTable(t, raw, "plan_items")
	require.Len(t, items, 2)
	for _, item := range items {
		assert.True(t, plans[item["visiting_plan_id"].(float64)])
	}
}
