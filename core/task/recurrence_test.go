package task

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigplans/backend/core"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := core.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestIsDue(t *testing.T) {
	daily2 := RecurrencePattern{Frequency: Daily, Interval: 2}
	weekly := RecurrencePattern{Frequency: Weekly, Interval: 1}
	biweekly := RecurrencePattern{Frequency: Weekly, Interval: 2}
	monthly := RecurrencePattern{Frequency: Monthly, Interval: 1}
	quarterly := RecurrencePattern{Frequency: Monthly, Interval: 3}

	tests := []struct {
		name      string
		start     string
		candidate string
		pattern   RecurrencePattern
		want      bool
	}{
		{name: "start date", start: "2024-03-15", candidate: "2024-03-15", pattern: biweekly, want: true},
		{name: "before start", start: "2024-03-15", candidate: "2024-03-14", pattern: daily2},
		{name: "daily off day", start: "2024-03-15", candidate: "2024-03-16", pattern: daily2},
		{name: "daily on day", start: "2024-03-15", candidate: "2024-03-17", pattern: daily2, want: true},
		{name: "weekly same weekday", start: "2024-03-15", candidate: "2024-03-22", pattern: weekly, want: true},
		{name: "weekly other weekday", start: "2024-03-15", candidate: "2024-03-21", pattern: weekly},
		{name: "biweekly odd week", start: "2024-03-15", candidate: "2024-03-22", pattern: biweekly},
		{name: "biweekly even week", start: "2024-03-15", candidate: "2024-03-29", pattern: biweekly, want: true},
		{name: "monthly same day", start: "2024-01-15", candidate: "2024-02-15", pattern: monthly, want: true},
		{name: "monthly other day", start: "2024-01-15", candidate: "2024-02-14", pattern: monthly},
		{name: "monthly across years", start: "2023-11-30", candidate: "2024-01-30", pattern: monthly, want: true},
		{name: "every 3 months", start: "2024-01-10", candidate: "2024-04-10", pattern: quarterly, want: true},
		{name: "every 3 months off month", start: "2024-01-10", candidate: "2024-03-10", pattern: quarterly},
		// short months are skipped, never clamped
		{name: "jan 31 in february", start: "2024-01-31", candidate: "2024-02-29", pattern: monthly},
		{name: "jan 31 in march", start: "2024-01-31", candidate: "2024-03-31", pattern: monthly, want: true},
		{name: "jan 31 in april", start: "2024-01-31", candidate: "2024-04-30", pattern: monthly},
		{name: "zero interval", start: "2024-03-15", candidate: "2024-03-15", pattern: RecurrencePattern{Frequency: Daily}},
		{name: "unknown frequency", start: "2024-03-15", candidate: "2024-03-16", pattern: RecurrencePattern{Frequency: "yearly", Interval: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsDue(date(t, tt.start), date(t, tt.candidate), tt.pattern)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecurrencePattern_UnmarshalJSON(t *testing.T) {
	max := 4
	tests := []struct {
		name    string
		data    string
		want    RecurrencePattern
		wantErr bool
	}{
		{name: "object", data: `{"frequency":"weekly","interval":2}`, want: RecurrencePattern{Frequency: Weekly, Interval: 2}},
		{
			name: "encoded string", data: `"{\"frequency\":\"daily\",\"interval\":1,\"maxOccurrences\":4}"`,
			want: RecurrencePattern{Frequency: Daily, Interval: 1, MaxOccurrences: &max},
		},
		{name: "bad string", data: `"not json"`, wantErr: true},
		{name: "bad type", data: `42`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got RecurrencePattern
			err := json.Unmarshal([]byte(tt.data), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern(RecurrencePattern{Frequency: Monthly, Interval: 1}.String())
	require.NoError(t, err)
	assert.Equal(t, Monthly, p.Frequency)

	_, err = ParsePattern(`{"frequency":"yearly","interval":1}`)
	assert.Equal(t, ErrInvalidFrequency, err)
	_, err = ParsePattern(`{"frequency":"daily","interval":0}`)
	assert.Equal(t, ErrInvalidInterval, err)
	_, err = ParsePattern(`{"frequency":"daily","interval":1,"maxOccurrences":0}`)
	assert.Equal(t, ErrInvalidMaxOcc, err)
	_, err = ParsePattern(`{broken`)
	assert.Error(t, err)
}

func TestTask_IsComplete(t *testing.T) {
	tests := []struct {
		name string
		task Task
		want bool
	}{
		{name: "boolean undone", task: Task{ProgressType: Boolean}},
		{name: "boolean done", task: Task{ProgressType: Boolean, ProgressValue: 1}, want: true},
		{name: "numeric partial", task: Task{ProgressType: Numeric, ProgressValue: 4, MaxProgress: core.IntPtr(5)}},
		{name: "numeric reached", task: Task{ProgressType: Numeric, ProgressValue: 5, MaxProgress: core.IntPtr(5)}, want: true},
		{name: "numeric exceeded", task: Task{ProgressType: Numeric, ProgressValue: 7, MaxProgress: core.IntPtr(5)}, want: true},
		{name: "percentage without max", task: Task{ProgressType: Percentage, ProgressValue: 100}},
		{name: "template", task: Task{ProgressType: Boolean, ProgressValue: 1, IsRecurring: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.IsComplete())
		})
	}
}

func TestTask_normalize(t *testing.T) {
	tsk := Task{
		Date:              "2024-03-15",
		MaxProgress:       core.IntPtr(3),
		RecurrencePattern: &RecurrencePattern{Frequency: Daily, Interval: 1},
		Description:       core.StringPtr("   "),
	}
	tsk.normalize()
	assert.Equal(t, Boolean, tsk.ProgressType)
	assert.Nil(t, tsk.MaxProgress)
	assert.Nil(t, tsk.RecurrencePattern, "only templates keep a pattern")
	assert.Nil(t, tsk.Description)
	assert.NoError(t, tsk.checkInvariants())

	pct := Task{Date: "2024-03-15", ProgressType: Percentage}
	pct.normalize()
	require.NotNil(t, pct.MaxProgress)
	assert.Equal(t, 100, *pct.MaxProgress)
}
