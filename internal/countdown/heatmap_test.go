package countdown_test

import (
	"testing"
	"time"

	"cdt-go/internal/countdown"
	"cdt-go/internal/testutil"
)

// baseTime is a Monday, so weekday math below starts from time.Monday.

func seedHeatmap(t *testing.T, svc *countdown.Service) {
	t.Helper()
	if err := svc.CreateCountdown(1, 10, nil); err != nil {
		t.Fatalf("CreateCountdown() error = %v", err)
	}
	post(t, svc, 1, 100, 1, 5, baseTime.Add(10*time.Minute))  // Mon 00:10
	post(t, svc, 1, 101, 2, 4, baseTime.Add(20*time.Minute))  // Mon 00:20
	post(t, svc, 1, 102, 1, 3, baseTime.Add(time.Hour))       // Mon 01:00
	post(t, svc, 1, 103, 2, 2, baseTime.Add(24*time.Hour))    // Tue 00:00
}

func TestHeatmap(t *testing.T) {
	svc := testutil.NewTestService(t, testutil.FixedClock())
	seedHeatmap(t, svc)

	cells, err := svc.Heatmap(1, 0)
	if err != nil {
		t.Fatalf("Heatmap() error = %v", err)
	}

	want := []countdown.HeatmapCell{
		{Weekday: time.Monday, Hour: 0, Messages: 2},
		{Weekday: time.Monday, Hour: 1, Messages: 1},
		{Weekday: time.Tuesday, Hour: 0, Messages: 1},
	}
	if len(cells) != len(want) {
		t.Fatalf("len(cells) = %d, want %d", len(cells), len(want))
	}
	for i, w := range want {
		if cells[i] != w {
			t.Errorf("cells[%d] = %+v, want %+v", i, cells[i], w)
		}
	}
}

func TestHeatmap_AuthorFilter(t *testing.T) {
	svc := testutil.NewTestService(t, testutil.FixedClock())
	seedHeatmap(t, svc)

	cells, err := svc.Heatmap(1, 1)
	if err != nil {
		t.Fatalf("Heatmap() error = %v", err)
	}

	want := []countdown.HeatmapCell{
		{Weekday: time.Monday, Hour: 0, Messages: 1},
		{Weekday: time.Monday, Hour: 1, Messages: 1},
	}
	if len(cells) != len(want) {
		t.Fatalf("len(cells) = %d, want %d", len(cells), len(want))
	}
	for i, w := range want {
		if cells[i] != w {
			t.Errorf("cells[%d] = %+v, want %+v", i, cells[i], w)
		}
	}
}

func TestHeatmap_Timezone(t *testing.T) {
	svc := testutil.NewTestService(t, testutil.FixedClock())
	seedHeatmap(t, svc)

	// Shifting one hour back moves Mon 00:xx into Sunday 23:xx.
	if err := svc.SetTimezone(1, -1); err != nil {
		t.Fatalf("SetTimezone() error = %v", err)
	}

	cells, err := svc.Heatmap(1, 0)
	if err != nil {
		t.Fatalf("Heatmap() error = %v", err)
	}

	want := []countdown.HeatmapCell{
		{Weekday: time.Sunday, Hour: 23, Messages: 2},
		{Weekday: time.Monday, Hour: 0, Messages: 1},
		{Weekday: time.Monday, Hour: 23, Messages: 1},
	}
	if len(cells) != len(want) {
		t.Fatalf("len(cells) = %d, want %d", len(cells), len(want))
	}
	for i, w := range want {
		if cells[i] != w {
			t.Errorf("cells[%d] = %+v, want %+v", i, cells[i], w)
		}
	}
}
