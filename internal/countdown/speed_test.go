package countdown_test

import (
	"testing"
	"time"

	"cdt-go/internal/testutil"
)

func TestSpeed(t *testing.T) {
	svc := testutil.NewTestService(t, testutil.FixedClock())
	if err := svc.CreateCountdown(1, 10, nil); err != nil {
		t.Fatalf("CreateCountdown() error = %v", err)
	}
	post(t, svc, 1, 100, 1, 5, baseTime.Add(10*time.Minute))
	post(t, svc, 1, 101, 2, 4, baseTime.Add(20*time.Minute))
	post(t, svc, 1, 102, 1, 3, baseTime.Add(time.Hour))
	post(t, svc, 1, 103, 2, 2, baseTime.Add(24*time.Hour))

	buckets, err := svc.Speed(1, 1)
	if err != nil {
		t.Fatalf("Speed() error = %v", err)
	}

	// Hour windows anchored to the epoch. Empty windows are omitted.
	if len(buckets) != 3 {
		t.Fatalf("len(buckets) = %d, want 3", len(buckets))
	}
	wantStarts := []time.Time{baseTime, baseTime.Add(time.Hour), baseTime.Add(24 * time.Hour)}
	wantCounts := []int64{2, 1, 1}
	for i := range wantStarts {
		if !buckets[i].PeriodStart.Equal(wantStarts[i]) {
			t.Errorf("buckets[%d].PeriodStart = %v, want %v", i, buckets[i].PeriodStart, wantStarts[i])
		}
		if buckets[i].Messages != wantCounts[i] {
			t.Errorf("buckets[%d].Messages = %d, want %d", i, buckets[i].Messages, wantCounts[i])
		}
	}
}

func TestSpeed_WiderWindow(t *testing.T) {
	svc := testutil.NewTestService(t, testutil.FixedClock())
	if err := svc.CreateCountdown(1, 10, nil); err != nil {
		t.Fatalf("CreateCountdown() error = %v", err)
	}
	post(t, svc, 1, 100, 1, 5, baseTime.Add(10*time.Minute))
	post(t, svc, 1, 101, 2, 4, baseTime.Add(20*time.Minute))
	post(t, svc, 1, 102, 1, 3, baseTime.Add(time.Hour))
	post(t, svc, 1, 103, 2, 2, baseTime.Add(24*time.Hour))

	buckets, err := svc.Speed(1, 24)
	if err != nil {
		t.Fatalf("Speed() error = %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("len(buckets) = %d, want 2", len(buckets))
	}
	if buckets[0].Messages != 3 || buckets[1].Messages != 1 {
		t.Errorf("counts = (%d, %d), want (3, 1)", buckets[0].Messages, buckets[1].Messages)
	}
}

func TestSpeed_InvalidWindow(t *testing.T) {
	svc := testutil.NewTestService(t, testutil.FixedClock())
	for _, hours := range []int{0, -1} {
		if _, err := svc.Speed(1, hours); err == nil {
			t.Errorf("Speed(%d) expected error", hours)
		}
	}
}
