package timex

import (
	"testing"
	"time"
)

func TestPeriodFromHz(t *testing.T) {
	if got := PeriodFromHz(10000); got != 100*time.Microsecond {
		t.Fatalf("10kHz period = %v", got)
	}
	if got := PeriodFromHz(0); got != time.Second {
		t.Fatalf("0Hz period = %v", got)
	}
}

func TestTicksIn(t *testing.T) {
	if got := TicksIn(time.Millisecond, 10000); got != 10 {
		t.Fatalf("ticks in 1ms = %d", got)
	}
	if got := TicksIn(150*time.Microsecond, 10000); got != 1 {
		t.Fatalf("partial tick counted: %d", got)
	}
	if TicksIn(-time.Second, 10000) != 0 || TicksIn(time.Second, 0) != 0 {
		t.Fatalf("degenerate inputs")
	}
}

func TestTicksIn_LongUptime(t *testing.T) {
	day := 24 * time.Hour
	for _, hz := range []uint32{10000, 100000, 1 << 31} {
		prev := uint64(0)
		for d := 20 * day; d <= 400*day; d += day {
			got := TicksIn(d, hz)
			if got <= prev {
				t.Fatalf("%dHz: %v -> %d ticks, not above %d", hz, d, got, prev)
			}
			prev = got
		}
	}
	if got, want := TicksIn(30*day, 10000), uint64(30*24*3600*10000); got != want {
		t.Fatalf("30 days at 10kHz = %d, want %d", got, want)
	}
	if got := TicksIn(30*day+150*time.Microsecond, 10000); got != uint64(30*24*3600*10000)+1 {
		t.Fatalf("remainder lost: %d", got)
	}
}
