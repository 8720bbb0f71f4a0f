package aggregate

import (
	"testing"

	"github.com/TTinTonT/Bonepile-view/cache"
)

func TestPassStationFor(t *testing.T) {
	cases := []struct {
		pn   string
		want string
	}{
		{"675-24109-0002-TS1", "FCT"},
		{"675-24109-0002-TS2", "NVL"},
		{"675-24109-0010-TS2", "FCT"},
		{"Unknown", "FCT"},
	}

	for _, c := range cases {
		if got := passStationFor(c.pn); got != c.want {
			t.Errorf("passStationFor(%q) = %q, want %q", c.pn, got, c.want)
		}
	}
}

func TestIsFinalPass(t *testing.T) {
	cases := []struct {
		name string
		row  cache.RawEntry
		want bool
	}{
		{"pass at FCT for default SKU", cache.RawEntry{Status: 'P', Station: "FCT", PartNumber: "675-24109-0002-TS1"}, true},
		{"pass at FCT for TS2 SKU misses NVL requirement", cache.RawEntry{Status: 'P', Station: "FCT", PartNumber: "675-24109-0002-TS2"}, false},
		{"pass at NVL for TS2 SKU", cache.RawEntry{Status: 'P', Station: "NVL", PartNumber: "675-24109-0002-TS2"}, true},
		{"fail never counts", cache.RawEntry{Status: 'F', Station: "FCT", PartNumber: "675-24109-0002-TS1"}, false},
		{"unknown part number never counts", cache.RawEntry{Status: 'P', Station: "FCT", PartNumber: "Unknown"}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := isFinalPass(c.row); got != c.want {
				t.Errorf("isFinalPass(%+v) = %v, want %v", c.row, got, c.want)
			}
		})
	}
}
