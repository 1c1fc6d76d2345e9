package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCleaner_loadAllFilesAndRemove(t *testing.T) {
	t.Parallel()

	r := require.New(t)

	dir := t.TempDir()
	wantFiles := []fileInfo{
		{path: "0cc175b9c0f1b6a831c399e269772661.jpg", size: 100},
		{path: "92eb5ffee6ae2fec3ad71c777531578f.jpg", size: 300},
		{path: "4a8a08f09d37b73795649038408b5f33.jpg", size: 1024},
		{path: "8277e0910d750195b448797616e091ad.jpg", size: 15},
	}
	for i := range wantFiles {
		wantFiles[i].path = filepath.Join(dir, wantFiles[i].path)

		err := os.WriteFile(wantFiles[i].path, make([]byte, wantFiles[i].size), 0o600)
		r.NoError(err)
	}
	// Temp files and subdirectories must be ignored.
	r.NoError(os.WriteFile(filepath.Join(dir, ".e1671797c52e15f763380b45e841ec32.jpg.tmp-123"), []byte("x"), 0o600))
	r.NoError(os.MkdirAll(filepath.Join(dir, "subdir"), 0o700))
	r.NoError(os.WriteFile(filepath.Join(dir, "subdir", "1.jpg"), []byte("x"), 0o600))

	c := Cleaner{dir: dir}

	gotFiles, err := c.loadAllFiles()
	r.NoError(err)

	for i := range gotFiles {
		gotFiles[i].modTime = time.Time{}
	}
	r.ElementsMatch(wantFiles, gotFiles)

	removedFiles, cleanedSpace, errs := c.removeFiles(wantFiles[:3])
	if len(errs) != 0 {
		t.Fatalf("got errors: %v", errs)
	}
	r.Equal(3, removedFiles)
	r.Equal(1424, int(cleanedSpace))

	gotFilesAfterRemove, err := c.loadAllFiles()
	r.NoError(err)

	for i := range gotFilesAfterRemove {
		gotFilesAfterRemove[i].modTime = time.Time{}
	}
	r.ElementsMatch(wantFiles[3:], gotFilesAfterRemove)
}

func TestCleaner_getFilesToRemove(t *testing.T) {
	t.Parallel()

	newTime := func(day int, hour int) time.Time {
		return time.Date(2022, time.October, day, hour, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name             string
		maxFileAge       time.Duration
		maxTotalFileSize int64
		now              time.Time
		files            []fileInfo
		//
		wantFilenames []string
	}{
		{
			name:             "all files are old",
			maxFileAge:       24 * time.Hour, // 1 day
			maxTotalFileSize: 1 << 10,        // 1 KiB
			now:              newTime(18, 0),
			files: []fileInfo{
				{path: "10", modTime: newTime(1, 0), size: 1 << 20},
				{path: "20", modTime: newTime(2, 0), size: 1 << 20},
				{path: "30", modTime: newTime(3, 0), size: 1 << 20},
				{path: "40", modTime: newTime(4, 0), size: 1 << 20},
			},
			wantFilenames: []string{"10", "20", "30", "40"},
		},
		{
			name:             "remove all files because of size limit",
			maxFileAge:       7 * 24 * time.Hour, // 7 days
			maxTotalFileSize: 1 << 10,            // 1 KiB
			now:              newTime(18, 0),
			files: []fileInfo{
				{path: "1", modTime: newTime(17, 0), size: 1 << 20},
				{path: "2", modTime: newTime(17, 0), size: 1 << 20},
				{path: "3", modTime: newTime(17, 0), size: 1 << 20},
				{path: "4", modTime: newTime(17, 0), size: 1 << 20},
			},
			wantFilenames: []string{"1", "2", "3", "4"},
		},
		{
			name:             "mixed",
			maxFileAge:       7 * 24 * time.Hour, // 7 days
			maxTotalFileSize: 5 << 20,            // 5 MiB
			now:              newTime(18, 0),
			files: []fileInfo{
				// Old files
				{path: "1", modTime: newTime(1, 37)},
				{path: "3", modTime: newTime(4, 51)},
				{path: "2", modTime: newTime(10, 0)},
				// New files (3.7 MiB)
				{path: "4", modTime: newTime(11, 0), size: 1 << 19},         // 0.5 MiB
				{path: "5", modTime: newTime(13, 0), size: 1 << 19},         // 0.5 MiB
				{path: "6", modTime: newTime(14, 0), size: 1<<20 + 256<<10}, // 1.2 MiB
				{path: "7", modTime: newTime(15, 0), size: 1<<20 + 512<<10}, // 1.5 MiB
				// New files (4 MiB)
				{path: "8", modTime: newTime(15, 0), size: 1 << 20}, // 1 MiB
				{path: "9", modTime: newTime(16, 0), size: 3 << 20}, // 3 MiB
			},
			wantFilenames: []string{"1", "2", "3", "4", "5", "6", "7"},
		},
		{
			name:             "no age limit",
			maxTotalFileSize: 2 << 20, // 2 MiB
			now:              newTime(18, 0),
			files: []fileInfo{
				{path: "1", modTime: newTime(1, 0), size: 1 << 20},
				{path: "2", modTime: newTime(2, 0), size: 1 << 20},
				{path: "3", modTime: newTime(3, 0), size: 1 << 19},
			},
			wantFilenames: []string{"1"},
		},
		{
			name:       "no size limit",
			maxFileAge: 24 * time.Hour,
			now:        newTime(18, 0),
			files: []fileInfo{
				{path: "1", modTime: newTime(1, 0), size: 1 << 30},
				{path: "2", modTime: newTime(17, 12), size: 1 << 30},
			},
			wantFilenames: []string{"1"},
		},
		{
			name: "no limits",
			now:  newTime(18, 0),
			files: []fileInfo{
				{path: "1", modTime: newTime(1, 0), size: 1 << 30},
			},
			wantFilenames: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Cleaner{
				maxFileAge:       tt.maxFileAge,
				maxTotalFileSize: tt.maxTotalFileSize,
			}
			got := c.getFilesToRemove(tt.files, tt.now)
			var gotPaths []string
			for _, f := range got {
				gotPaths = append(gotPaths, f.path)
			}
			require.ElementsMatch(t, tt.wantFilenames, gotPaths)
		})
	}
}

func TestCleaner_Shutdown(t *testing.T) {
	t.Parallel()

	r := require.New(t)

	dir := t.TempDir()
	old := filepath.Join(dir, "old.jpg")
	r.NoError(os.WriteFile(old, []byte("x"), 0o600))
	oldTime := time.Now().Add(-48 * time.Hour)
	r.NoError(os.Chtimes(old, oldTime, oldTime))

	c := NewCleaner(dir, 24*time.Hour, 0)

	// The first cleanup runs immediately.
	r.Eventually(func() bool {
		_, err := os.Stat(old)
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.NoError(c.Shutdown(ctx))
}
