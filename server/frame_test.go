package server

import (
	"math"
	"testing"
)

func TestClampFrameValue32RoundsNormalValues(t *testing.T) {
	if got := clampFrameValue32(33.4); got != 33 {
		t.Fatalf("got %d, want 33", got)
	}
	if got := clampFrameValue32(33.5); got != 34 {
		t.Fatalf("got %d, want 34", got)
	}
}

func TestClampFrameValue32ClampsNegativeToZero(t *testing.T) {
	if got := clampFrameValue32(-5); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestClampFrameValue32ClampsOverflow(t *testing.T) {
	huge := float64(math.MaxUint32) * 4
	if got := clampFrameValue32(huge); got != math.MaxUint32 {
		t.Fatalf("got %d, want MaxUint32", got)
	}
}
