package task

import (
	"errors"
	"testing"
)

func TestNormalizeDueDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain date", input: "2024-01-01", want: "2024-01-01"},
		{name: "surrounding whitespace", input: "  2024-02-29 ", want: "2024-02-29"},
		{name: "rfc3339 timestamp", input: "2024-03-15T10:30:00Z", want: "2024-03-15"},
		{name: "empty", input: "", wantErr: true},
		{name: "not a date", input: "tomorrow", wantErr: true},
		{name: "impossible date", input: "2023-02-30", wantErr: true},
		{name: "day first", input: "01/02/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDueDate(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDueDate) {
					t.Errorf("NormalizeDueDate(%q) error = %v, want ErrInvalidDueDate", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeDueDate(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeDueDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	tasks := []Task{
		{Title: "a", Completed: true},
		{Title: "b"},
		{Title: "c", Completed: true},
	}

	done, total := Progress(tasks)
	if done != 2 || total != 3 {
		t.Errorf("Progress() = (%d, %d), want (2, 3)", done, total)
	}

	done, total = Progress(nil)
	if done != 0 || total != 0 {
		t.Errorf("Progress(nil) = (%d, %d), want (0, 0)", done, total)
	}
}
