package services

import (
	"reflect"
	"testing"

	"github.com/camden-git/seeds/repository"
)

func conv(d string, seed bool) repository.ConversationDate {
	return repository.ConversationDate{Date: date(d), Seed: seed}
}

func TestWeekStart(t *testing.T) {
	tests := map[string]string{
		"2024-03-04": "2024-03-04",
		"2024-03-06": "2024-03-04",
		"2024-03-10": "2024-03-04",
		"2024-03-11": "2024-03-11",
		"2025-01-01": "2024-12-30",
	}
	for in, want := range tests {
		if got := WeekStart(date(in)).Format("2006-01-02"); got != want {
			t.Errorf("WeekStart(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestCountByWeek(t *testing.T) {
	today := date("2024-03-06")
	convs := []repository.ConversationDate{
		conv("2024-02-05", false),
		conv("2024-02-11", false),
		conv("2024-02-20", true),
		conv("2024-03-04", false),
		conv("2024-03-06", true),
		conv("2024-01-01", false), // before the window
	}

	got := CountByWeek(convs, today, 28)
	want := Series{
		Labels:        []string{"2024-02-05", "2024-02-12", "2024-02-19", "2024-02-26", "2024-03-04"},
		Conversations: []int{2, 0, 0, 0, 1},
		Seeds:         []int{0, 0, 1, 0, 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CountByWeek = %+v, want %+v", got, want)
	}
}

func TestCountByWeekYearBoundary(t *testing.T) {
	today := date("2025-01-02")
	convs := []repository.ConversationDate{
		conv("2024-12-31", false),
		conv("2025-01-01", false),
	}

	got := CountByWeek(convs, today, 7)
	if len(got.Labels) != 2 {
		t.Fatalf("len(Labels) = %d, want 2", len(got.Labels))
	}
	if got.Labels[1] != "2024-12-30" {
		t.Errorf("Labels[1] = %s, want 2024-12-30", got.Labels[1])
	}
	if got.Conversations[1] != 2 {
		t.Errorf("Conversations[1] = %d, want 2", got.Conversations[1])
	}
}

func TestCountByWeekCapsWindow(t *testing.T) {
	today := date("2024-03-06")
	got := CountByWeek(nil, today, 1000)
	if len(got.Labels) != 52 {
		t.Errorf("len(Labels) = %d, want 52", len(got.Labels))
	}
	if got.Labels[0] != "2023-03-13" {
		t.Errorf("Labels[0] = %s, want 2023-03-13", got.Labels[0])
	}
	if !reflect.DeepEqual(got, CountByWeek(nil, today, MaxTrendDays)) {
		t.Error("a window over the cap should equal the capped window")
	}
	for i, n := range got.Conversations {
		if n != 0 || got.Seeds[i] != 0 {
			t.Fatalf("bucket %d = %d/%d, want zero filled", i, n, got.Seeds[i])
		}
	}
}

func TestCountByMonth(t *testing.T) {
	today := date("2024-03-06")
	convs := []repository.ConversationDate{
		conv("2023-03-31", false), // before the window
		conv("2023-04-01", false),
		conv("2023-12-15", true),
		conv("2024-03-01", false),
		conv("2024-03-05", false),
	}

	got := CountByMonth(convs, today, 12)
	if len(got.Labels) != 12 {
		t.Fatalf("len(Labels) = %d, want 12", len(got.Labels))
	}
	if got.Labels[0] != "2023-04" || got.Labels[11] != "2024-03" {
		t.Errorf("Labels = %v, want 2023-04 through 2024-03", got.Labels)
	}
	if got.Conversations[0] != 1 {
		t.Errorf("Conversations[0] = %d, want 1", got.Conversations[0])
	}
	if got.Seeds[8] != 1 {
		t.Errorf("Seeds[8] (2023-12) = %d, want 1", got.Seeds[8])
	}
	if got.Conversations[11] != 2 {
		t.Errorf("Conversations[11] = %d, want 2", got.Conversations[11])
	}
}
