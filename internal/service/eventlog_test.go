package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anova_oven/internal/models"
)

func Test_normalizeToUTC(t *testing.T) {
	t.Parallel()

	plus3 := time.FixedZone("UTC+3", 3*3600)
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{name: "zero time remains zero", in: time.Time{}, want: time.Time{}},
		{
			name: "non-UTC converted preserving instant",
			in:   time.Date(2025, time.August, 1, 12, 34, 56, 0, plus3),
			want: time.Date(2025, time.August, 1, 9, 34, 56, 0, time.UTC),
		},
		{
			name: "already UTC",
			in:   time.Date(2025, time.August, 2, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.August, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := normalizeToUTC(tc.in)
			if !got.Equal(tc.want) {
				t.Fatalf("normalizeToUTC = %v, want %v", got, tc.want)
			}
			if !got.IsZero() && got.Location() != time.UTC {
				t.Fatalf("location = %v, want UTC", got.Location())
			}
		})
	}
}

func Test_normalizeEventType(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                     "",
		"  COOK_STARTED ":      "COOK_STARTED",
		"cook_target_reached":  "COOK_TARGET_REACHED",
		" device_discovered\t": "DEVICE_DISCOVERED",
	}
	for in, want := range cases {
		if got := normalizeEventType(in); got != want {
			t.Fatalf("normalizeEventType(%q) = %q, want %q", in, got, want)
		}
	}
}

func Test_normalizeAndValidateFilter(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, time.September, 10, 10, 0, 0, 0, time.FixedZone("UTC+2", 2*3600))
	to := time.Date(2025, time.September, 10, 12, 0, 0, 0, time.UTC)

	got, err := normalizeAndValidateFilter(LogFilter{From: from, To: to, Type: " cook_started ", CookerID: " oven-1 "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.From.Equal(time.Date(2025, time.September, 10, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("from = %v", got.From)
	}
	if !got.To.Equal(to) {
		t.Fatalf("to = %v", got.To)
	}
	if got.Type != models.EventCookStarted {
		t.Fatalf("type = %q", got.Type)
	}
	if got.CookerID != "oven-1" {
		t.Fatalf("cooker id = %q", got.CookerID)
	}

	_, err = normalizeAndValidateFilter(LogFilter{
		From: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("err = %v, want ErrInvalidTimeRange", err)
	}
}

func TestEventLogService_List_DelegatesNormalizedFilter(t *testing.T) {
	t.Parallel()

	repo := &fakeEventRepo{events: []models.OvenEvent{{EventID: "1"}}}
	svc := NewEventLogService(repo)

	from := time.Date(2025, time.October, 1, 10, 0, 0, 0, time.FixedZone("UTC+5", 5*3600))
	out, err := svc.List(context.Background(), LogFilter{From: from, Type: "cook_target_reached", CookerID: "oven-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].EventID != "1" {
		t.Fatalf("unexpected events: %+v", out)
	}
	if repo.calls != 1 {
		t.Fatalf("repo List calls = %d, want 1", repo.calls)
	}
	f := repo.gotFilter
	if !f.From.Equal(time.Date(2025, time.October, 1, 5, 0, 0, 0, time.UTC)) || !f.To.IsZero() {
		t.Fatalf("bounds = %v..%v", f.From, f.To)
	}
	if f.Type != models.EventTargetReached || f.CookerID != "oven-1" {
		t.Fatalf("filter = %+v", f)
	}
}

func TestEventLogService_List_ValidationError(t *testing.T) {
	t.Parallel()

	repo := &fakeEventRepo{}
	_, err := NewEventLogService(repo).List(context.Background(), LogFilter{
		From: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("err = %v, want ErrInvalidTimeRange", err)
	}
	if repo.calls != 0 {
		t.Fatalf("repo must not be called on validation error, calls=%d", repo.calls)
	}
}

func TestEventLogService_List_RepoErrorPropagation(t *testing.T) {
	t.Parallel()

	repo := &fakeEventRepo{err: errors.New("db down")}
	_, err := NewEventLogService(repo).List(context.Background(), LogFilter{})
	if !errors.Is(err, repo.err) {
		t.Fatalf("err = %v, want repo error", err)
	}
}
