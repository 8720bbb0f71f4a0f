package engine

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestOpenAndStatus(t *testing.T) {
	Convey("Given a fresh cache directory", t, func() {
		e, err := Open(t.TempDir())
		So(err, ShouldBeNil)
		defer e.Cache.Close()

		Convey("Status reports no coverage yet", func() {
			st, err := e.Status()
			So(err, ShouldBeNil)
			So(st.HasCoverage, ShouldBeFalse)
			So(st.RetentionDays, ShouldBeGreaterThan, 0)
		})

		Convey("TriggerScan over an empty share returns a job that finishes", func() {
			id := e.TriggerScan(0, time.Now().UnixMilli())

			var job any

			for i := 0; i < 100; i++ {
				j, ok := e.Jobs.Get(id)
				if ok && j.FinishedMs != 0 {
					job = j

					break
				}

				time.Sleep(5 * time.Millisecond)
			}

			So(job, ShouldNotBeNil)
		})

		Convey("ClearCache rebuilds a usable Engine", func() {
			So(e.ClearCache(), ShouldBeNil)
			defer e.Cache.Close()

			st, err := e.Status()
			So(err, ShouldBeNil)
			So(st.HasCoverage, ShouldBeFalse)

			e.Scheduler.Stop()
			e.Backup.Stop()
		})
	})
}
