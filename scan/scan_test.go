package scan

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/TTinTonT/Bonepile-view/cache"
	"github.com/TTinTonT/Bonepile-view/internal/caltw"
	"github.com/TTinTonT/Bonepile-view/internal/scanstate"
)

func TestScan(t *testing.T) {
	Convey("Given a share root with one Taiwan-dated day directory", t, func() {
		root := t.TempDir()

		now := caltw.Now()
		twDates := caltw.TaiwanDatesCovering(now, now)
		dayDir := filepath.Join(root, twDates[len(twDates)/2])

		So(os.MkdirAll(dayDir, 0o755), ShouldBeNil)

		ts := now.Format("20060102T150405") + "Z"
		name := "IGSJ_NA_675-24109-0002-TS1_1830126000087_P_FLA_" + ts + ".zip"
		So(os.WriteFile(filepath.Join(dayDir, name), []byte("x"), 0o644), ShouldBeNil)

		cstore, _, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
		So(err, ShouldBeNil)
		defer cstore.Close()

		stStore, _, err := scanstate.Open(filepath.Join(t.TempDir(), "state.json"))
		So(err, ShouldBeNil)

		scanner := New(root, cstore, stStore)

		Convey("Scanning the containing window inserts the file's row", func() {
			startMs := now.AddDate(0, 0, -1).UnixMilli()
			endMs := now.AddDate(0, 0, 1).UnixMilli()

			counters, err := scanner.Scan(startMs, endMs)
			So(err, ShouldBeNil)
			So(counters.FilesParsed, ShouldEqual, 1)
			So(counters.RowsInserted, ShouldEqual, 1)

			_, _, ok, err := cstore.MinMaxCaMs()
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)

			st, err := stStore.Load()
			So(err, ShouldBeNil)
			So(st.HasCoverage, ShouldBeTrue)
		})

		Convey("A missing day directory is skipped without failing the scan", func() {
			So(os.RemoveAll(dayDir), ShouldBeNil)

			startMs := now.AddDate(0, 0, -1).UnixMilli()
			endMs := now.AddDate(0, 0, 1).UnixMilli()

			counters, err := scanner.Scan(startMs, endMs)
			So(err, ShouldBeNil)
			So(counters.RowsInserted, ShouldEqual, 0)
		})
	})
}
