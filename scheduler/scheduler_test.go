package scheduler

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/TTinTonT/Bonepile-view/cache"
	"github.com/TTinTonT/Bonepile-view/internal/caltw"
	"github.com/TTinTonT/Bonepile-view/internal/scanstate"
	"github.com/TTinTonT/Bonepile-view/scan"
)

func TestSchedulerTick(t *testing.T) {
	Convey("Given a scheduler over an empty cache and share root", t, func() {
		dir := t.TempDir()

		c, _, err := cache.Open(filepath.Join(dir, "cache.db"))
		So(err, ShouldBeNil)
		defer c.Close()

		st, _, err := scanstate.Open(filepath.Join(dir, "state.json"))
		So(err, ShouldBeNil)

		sc := scan.New(filepath.Join(dir, "share"), c, st)

		lock := &sync.Mutex{}
		s := New(c, sc, lock)
		s.autoScanEvery = 10 * time.Millisecond
		s.retentionEvery = time.Hour

		Convey("a tick publishes a future NextAutoScanMs and no error", func() {
			s.tick()

			status := s.Status()
			So(status.NextAutoScanMs, ShouldBeGreaterThan, caltw.Now().UnixMilli())
			So(status.LastScanErr, ShouldEqual, "")
		})

		Convey("Start and Stop run the loop without deadlocking", func() {
			s.Start()
			time.Sleep(30 * time.Millisecond)
			s.Stop()

			status := s.Status()
			So(status.NextAutoScanMs, ShouldBeGreaterThan, int64(0))
		})
	})
}
