package aggregate

import (
	"testing"

	"github.com/TTinTonT/Bonepile-view/internal/caltw"
)

func TestLastMMDD(t *testing.T) {
	m, d, ok := lastMMDD("3/14: waiting; 4/2: resolved")
	if !ok || m != 4 || d != 2 {
		t.Fatalf("lastMMDD = (%d, %d, %v), want (4, 2, true)", m, d, ok)
	}

	if _, _, ok := lastMMDD("no dates"); ok {
		t.Fatal("expected ok=false for text with no mm/dd segment")
	}
}

func TestResolveMMDDDateBackdateCorrection(t *testing.T) {
	// A window starting late December of year Y with a "01/05" disposition
	// means January of year Y+1, not year Y (which would land ~11 months
	// before the window start).
	start, err := caltw.BuildCaDate(2025, 12, 25)
	if err != nil {
		t.Fatal(err)
	}

	windowStart := start.UnixMilli()

	ms := resolveMMDDDate(1, 5, 2025, 2025, windowStart)
	if ms <= windowStart {
		t.Fatalf("expected backdate correction to roll the date forward past window start %d, got %d", windowStart, ms)
	}
}
