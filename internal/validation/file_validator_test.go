package validation

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetpulse/internal/shared/testutil"
	"tweetpulse/pkg/contracts/domain"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)

	dir := filepath.Join(t.TempDir(), "reports", "charts")
	require.NoError(t, v.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, ".write_test"))

	// a file in the way cannot become a directory
	blocker := writeFile(t, t.TempDir(), "blocker", "x")
	assert.Error(t, v.ValidateOutputDirectory(filepath.Join(blocker, "sub")))
}

func TestFileValidator_ValidateDataset(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name          string
		path          string
		wantExt       string
		wantErr       bool
		errorContains string
	}{
		{
			name:    "csv dataset",
			path:    writeFile(t, dir, "tweets.csv", "timestamp,text\n"),
			wantExt: ".csv",
		},
		{
			name:    "upper-case extension",
			path:    writeFile(t, dir, "TWEETS.CSV", "timestamp,text\n"),
			wantExt: ".csv",
		},
		{
			name:    "xlsx dataset",
			path:    writeFile(t, dir, "tweets.xlsx", "PK"),
			wantExt: ".xlsx",
		},
		{
			name:          "excel lock file",
			path:          writeFile(t, dir, "~$tweets.xlsx", "PK"),
			wantExt:       ".xlsx",
			wantErr:       true,
			errorContains: "temporary",
		},
		{
			name:          "unsupported format",
			path:          writeFile(t, dir, "tweets.json", "[]"),
			wantExt:       ".json",
			wantErr:       true,
			errorContains: "unsupported",
		},
		{
			name:          "missing file",
			path:          filepath.Join(dir, "absent.csv"),
			wantExt:       ".csv",
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name:          "empty file",
			path:          writeFile(t, dir, "empty.csv", ""),
			wantExt:       ".csv",
			wantErr:       true,
			errorContains: "empty",
		},
		{
			name:          "directory",
			path:          func() string { p := filepath.Join(dir, "dir.csv"); require.NoError(t, os.Mkdir(p, 0755)); return p }(),
			wantExt:       ".csv",
			wantErr:       true,
			errorContains: "directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, handler := testutil.NewTestLogger(t)
			v := NewFileValidator(logger)

			ext, err := v.ValidateDataset(tt.path)
			assert.Equal(t, tt.wantExt, ext)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.NotEmpty(t, handler.GetRecords())
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFileValidator_WrongExtension(t *testing.T) {
	dir := t.TempDir()
	v := NewFileValidator(nil)

	assert.Error(t, v.ValidateCSVFile(writeFile(t, dir, "a.xlsx", "PK")))
	assert.Error(t, v.ValidateExcelFile(writeFile(t, dir, "b.csv", "x")))
}

func TestPostValidator_Validate(t *testing.T) {
	v := NewPostValidator()
	ts := time.Date(2019, 5, 14, 10, 0, 0, 0, time.UTC)

	require.NoError(t, v.Validate(1, domain.Post{Timestamp: ts, Text: "ok", Likes: 3}))

	err := v.Validate(7, domain.Post{Timestamp: ts, Likes: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 7")
	assert.Contains(t, err.Error(), "Likes")

	err = v.Validate(2, domain.Post{Text: "no time"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp is missing")
}
