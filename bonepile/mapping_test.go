package bonepile

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/TTinTonT/Bonepile-view/internal/scanstate"
)

func TestResolveColumns(t *testing.T) {
	Convey("Given a header row with exact canonical names", t, func() {
		headers := []string{"SN", "NV Disposition", "Status", "PIC", "IGS Action", "IGS Status", "NVPN"}

		Convey("Auto-detection resolves every required field", func() {
			cols, missing := resolveColumns(headers, scanstate.SheetMapping{})
			So(missing, ShouldBeEmpty)
			So(cols[fieldSN], ShouldEqual, 1)
			So(cols[fieldNVPN], ShouldEqual, 7)
		})

		Convey("A saved index override wins over auto-detection", func() {
			saved := scanstate.SheetMapping{
				Fields: map[string]scanstate.Column{
					fieldSN: {ByIndex: 3, HasIdx: true},
				},
			}

			cols, missing := resolveColumns(headers, saved)
			So(missing, ShouldBeEmpty)
			So(cols[fieldSN], ShouldEqual, 3)
		})
	})

	Convey("Given a header row missing a required field", t, func() {
		headers := []string{"SN", "Status", "PIC"}

		cols, missing := resolveColumns(headers, scanstate.SheetMapping{})
		So(missing, ShouldNotBeEmpty)
		So(cols[fieldNVDisposition], ShouldEqual, 0)
	})
}

func TestFindHeaderRow(t *testing.T) {
	Convey("Given rows with a blank banner row before the header", t, func() {
		rows := [][]string{
			{"Bonepile Tracker"},
			{},
			{"SN", "Status"},
			{"1830126000087", "FAIL"},
		}

		idx, ok := findHeaderRow(rows)
		So(ok, ShouldBeTrue)
		So(idx, ShouldEqual, 2)
	})
}
