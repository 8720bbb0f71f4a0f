package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSnapshotAndPrune(t *testing.T) {
	Convey("Given a source file and a snapshot directory", t, func() {
		dir := t.TempDir()

		src := filepath.Join(dir, "cache.db")
		So(os.WriteFile(src, []byte("fake sqlite contents"), 0o644), ShouldBeNil)

		snapDir := filepath.Join(dir, "snapshots")
		k := New(src, snapDir, time.Hour, 2)

		Convey("three snapshots at increasing times leave only the newest two", func() {
			base := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

			for i := range 3 {
				_, err := k.Snapshot(base.Add(time.Duration(i) * time.Minute))
				So(err, ShouldBeNil)
			}

			entries, err := os.ReadDir(snapDir)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
		})

		Convey("a snapshot file is non-empty gzip content", func() {
			name, err := k.Snapshot(time.Date(2026, 7, 30, 1, 0, 0, 0, time.UTC))
			So(err, ShouldBeNil)

			info, err := os.Stat(name)
			So(err, ShouldBeNil)
			So(info.Size(), ShouldBeGreaterThan, 0)
		})
	})
}
