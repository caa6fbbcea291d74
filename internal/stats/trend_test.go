package stats

import (
	"bytes"
	"strings"
	"testing"
)

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSparklineRange(t *testing.T) {
	if got := Sparkline([]float64{0, 5, 10}); got != " +@" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	flat := Sparkline([]float64{3, 3, 3})
	if strings.Count(flat, string(flat[0])) != 3 {
		t.Fatalf("flat series should repeat one char, got %q", flat)
	}
}

func TestDownsampleAveragesBuckets(t *testing.T) {
	got := Downsample([]float64{1, 3, 5, 7}, 2)
	if len(got) != 2 || got[0] != 2 || got[1] != 6 {
		t.Fatalf("unexpected downsample %v", got)
	}
	if short := Downsample([]float64{1}, 5); len(short) != 1 {
		t.Fatalf("short series must be kept, got %v", short)
	}
}

func TestRenderTrendFitsWidth(t *testing.T) {
	values := make([]float64, 200)
	for i := range values {
		values[i] = float64(i % 17)
	}
	var buf bytes.Buffer
	if err := RenderTrend(&buf, "WPM trend", []TrendLine{{Label: "wpm", Values: values}}, 5, 60); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if len(line) > 60 {
			t.Fatalf("line exceeds width: %q", line)
		}
	}
}
