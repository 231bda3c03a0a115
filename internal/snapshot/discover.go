// Package snapshot reads dated ranking snapshots, the membership table,
// price files and filter sets into typed records.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNoData is returned when a source directory holds no usable snapshot.
var ErrNoData = errors.New("no data available")

// DateLayout is the date suffix of snapshot file names.
const DateLayout = "20060102"

// File is a dated snapshot file.
type File struct {
	Path string
	Date time.Time
}

// Discover lists <prefix>_YYYYMMDD.csv files in dir, newest first. Files
// whose suffix is not a date are ignored.
func Discover(dir, prefix string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNoData, dir)
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []File
	head := prefix + "_"
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, head) || !strings.HasSuffix(name, ".csv") {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, head), ".csv")
		d, err := time.Parse(DateLayout, stamp)
		if err != nil {
			continue
		}
		files = append(files, File{Path: filepath.Join(dir, name), Date: d})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s", ErrNoData, head+"YYYYMMDD.csv", dir)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Date.After(files[j].Date) })
	return files, nil
}
