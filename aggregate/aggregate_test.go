package aggregate

import (
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/TTinTonT/Bonepile-view/cache"
)

func seedCache(t *testing.T) *cache.Store {
	t.Helper()

	c, _, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { c.Close() })

	bp := true
	fresh := false

	entries := []cache.RawEntry{
		cache.NewRawEntry(1000, "a_fct_fail.zip", "2026/07/30/a", "1830126000001", 'F', "FCT", "675-24109-0002-TS1", &fresh, ""),
		cache.NewRawEntry(2000, "a_fct_pass.zip", "2026/07/30/a", "1830126000001", 'P', "FCT", "675-24109-0002-TS1", &fresh, ""),
		cache.NewRawEntry(1500, "b_fct_fail.zip", "2026/07/30/b", "1830126000002", 'F', "FCT", "675-24109-0002-TS2", &bp, "PB-1"),
		cache.NewRawEntry(2500, "b_nvl_pass.zip", "2026/07/30/b", "1830126000002", 'P', "NVL", "675-24109-0002-TS2", &bp, "PB-1"),
	}

	if _, err := c.InsertRawEntries(entries); err != nil {
		t.Fatal(err)
	}

	return c
}

func TestSummary(t *testing.T) {
	Convey("Given two serials, one fresh pass and one bonepile pass", t, func() {
		c := seedCache(t)
		a := New(c, nil)

		w := Window{StartMs: 0, EndMs: 3000}

		sum, err := a.Summary(w)
		So(err, ShouldBeNil)
		So(sum.Total.Tested, ShouldEqual, 2)
		So(sum.Total.Pass, ShouldEqual, 2)
		So(sum.Fresh.Tested, ShouldEqual, 1)
		So(sum.Fresh.Pass, ShouldEqual, 1)
		So(sum.BP.Tested, ShouldEqual, 1)
		So(sum.BP.Pass, ShouldEqual, 1)
	})
}

func TestSKUTable(t *testing.T) {
	Convey("Given rows across two SKUs", t, func() {
		c := seedCache(t)
		a := New(c, nil)

		table, err := a.SKUTable(Window{StartMs: 0, EndMs: 3000})
		So(err, ShouldBeNil)
		So(table, ShouldHaveLength, 2)
		So(table[0].Tested, ShouldEqual, 1)
	})
}

func TestStationFlowTotals(t *testing.T) {
	Convey("Given a TS2 serial that finally passes at NVL", t, func() {
		c := seedCache(t)
		a := New(c, nil)

		flow, err := a.StationFlow(Window{StartMs: 0, EndMs: 3000})
		So(err, ShouldBeNil)

		var nvl, fct StationCount

		for _, s := range flow.Totals {
			switch s.Station {
			case "NVL":
				nvl = s
			case "FCT":
				fct = s
			}
		}

		So(nvl.Pass, ShouldEqual, 1)
		So(fct.Pass, ShouldEqual, 1)
		So(fct.Fail, ShouldEqual, 2)
	})
}

func TestTimeBreakdownDaily(t *testing.T) {
	Convey("Given rows all on the same California day", t, func() {
		c := seedCache(t)
		a := New(c, nil)

		rows, err := a.TimeBreakdown(Window{StartMs: 0, EndMs: 3000}, Daily)
		So(err, ShouldBeNil)
		So(rows, ShouldHaveLength, 1)
		So(rows[0].Tested, ShouldEqual, 2)
		So(rows[0].Bonepile, ShouldEqual, 1)
	})
}

func TestDrillDownOverall(t *testing.T) {
	Convey("Given two serials", t, func() {
		c := seedCache(t)
		a := New(c, nil)

		rows, err := a.DrillDownOverall(Window{StartMs: 0, EndMs: 3000}, "")
		So(err, ShouldBeNil)
		So(rows, ShouldHaveLength, 2)

		for _, r := range rows {
			So(r.Result, ShouldEqual, "PASS")
		}
	})
}
