package exporter

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/lisanmuaddib/zaim-export/pkg/staging"
)

const (
	// OutputPrefix starts every output file name
	OutputPrefix = "zaim_data"
	// TimestampLayout renders the 14-digit timestamp of output file names
	TimestampLayout = "20060102150405"

	maxNameAttempts = 600
)

// OutputFileName returns zaim_data_<start>_<end>_<timestamp>.csv for the range.
func OutputFileName(r DateRange, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s.csv", OutputPrefix, r.Start(), r.End(), at.Format(TimestampLayout))
}

// placeOutput moves staged into dir under the name for the range. A taken
// name moves the timestamp forward a second at a time, so an earlier export
// is never replaced.
func placeOutput(staged, dir string, r DateRange, at time.Time) (string, error) {
	for i := 0; i < maxNameAttempts; i++ {
		path := filepath.Join(dir, OutputFileName(r, at))
		err := staging.Move(staged, path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		at = at.Add(time.Second)
	}
	return "", fmt.Errorf("no free output name for %s-%s in %s", r.Start(), r.End(), dir)
}
