package cache

import (
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStoreOpenAndInsert(t *testing.T) {
	Convey("Given a fresh cache store", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "cache.db")

		s, wiped, err := Open(path)
		So(err, ShouldBeNil)
		So(wiped, ShouldBeFalse)

		defer s.Close()

		Convey("Inserting a batch of raw entries is idempotent", func() {
			isBP := false
			entries := []RawEntry{
				NewRawEntry(1, "a.zip", "folder/a", "1830126000087", 'P', "FLA", "675-24109-0002-TS1", &isBP, ""),
			}

			n, err := s.InsertRawEntries(entries)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 1)

			n, err = s.InsertRawEntries(entries)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)

			min, max, ok, err := s.MinMaxCaMs()
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(min, ShouldEqual, 1)
			So(max, ShouldEqual, 1)
		})

		Convey("Reopening with the same timestamp mode does not wipe data", func() {
			entries := []RawEntry{
				NewRawEntry(5, "b.zip", "folder/b", "1830126000088", 'F', "FCT", "Unknown", nil, ""),
			}

			_, err := s.InsertRawEntries(entries)
			So(err, ShouldBeNil)
			So(s.Close(), ShouldBeNil)

			s2, wiped2, err := Open(path)
			So(err, ShouldBeNil)
			So(wiped2, ShouldBeFalse)

			defer s2.Close()

			_, _, ok, err := s2.MinMaxCaMs()
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
		})
	})
}

func TestTimestampModeInvalidation(t *testing.T) {
	Convey("Given a store with rows written under an old timestamp mode", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "cache.db")

		s, _, err := Open(path)
		So(err, ShouldBeNil)

		_, err = s.InsertRawEntries([]RawEntry{
			NewRawEntry(1, "a.zip", "folder/a", "1830126000087", 'P', "FLA", "675-24109-0002-TS1", nil, ""),
		})
		So(err, ShouldBeNil)
		So(s.setMeta(metaKeyTimestampMode, "some-other-mode"), ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		Convey("Opening under the current mode wipes raw_entries", func() {
			s2, wiped, err := Open(path)
			So(err, ShouldBeNil)
			So(wiped, ShouldBeTrue)

			defer s2.Close()

			_, _, ok, err := s2.MinMaxCaMs()
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})
}
