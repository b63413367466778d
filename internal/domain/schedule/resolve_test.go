package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var msk = time.FixedZone("MSK", 3*60*60)

func TestResolveBareClock(t *testing.T) {
	t.Parallel()

	r := NewResolver(msk)

	tests := []struct {
		name string
		text string
		now  time.Time
		want time.Time
	}{
		{
			name: "later today",
			text: "21:10",
			now:  time.Date(2026, 10, 19, 20, 0, 0, 0, msk),
			want: time.Date(2026, 10, 19, 21, 10, 0, 0, msk),
		},
		{
			name: "already past rolls to tomorrow",
			text: "20:00",
			now:  time.Date(2026, 10, 19, 21, 0, 0, 0, msk),
			want: time.Date(2026, 10, 20, 20, 0, 0, 0, msk),
		},
		{
			name: "exactly now rolls to tomorrow",
			text: "21:00",
			now:  time.Date(2026, 10, 19, 21, 0, 0, 0, msk),
			want: time.Date(2026, 10, 20, 21, 0, 0, 0, msk),
		},
		{
			name: "month boundary",
			text: "00:30",
			now:  time.Date(2026, 10, 31, 23, 0, 0, 0, msk),
			want: time.Date(2026, 11, 1, 0, 30, 0, 0, msk),
		},
		{
			name: "reference now in another zone uses reference calendar date",
			text: "01:00",
			// 23:30 UTC on the 19th is 02:30 on the 20th in MSK.
			now:  time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC),
			want: time.Date(2026, 10, 21, 1, 0, 0, 0, msk),
		},
		{
			name: "surrounding whitespace",
			text: "  21:10 ",
			now:  time.Date(2026, 10, 19, 20, 0, 0, 0, msk),
			want: time.Date(2026, 10, 19, 21, 10, 0, 0, msk),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.Resolve(tt.text, tt.now)
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestResolveRolloverProperty(t *testing.T) {
	t.Parallel()

	r := NewResolver(msk)
	now := time.Date(2026, 10, 19, 13, 37, 0, 0, msk)

	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			text := time.Date(2000, 1, 1, h, m, 0, 0, msk).Format(layoutClock)
			got, err := r.Resolve(text, now)
			require.NoError(t, err)
			require.True(t, got.After(now), text)

			sameDay := time.Date(2026, 10, 19, h, m, 0, 0, msk)
			if sameDay.After(now) {
				require.True(t, sameDay.Equal(got), text)
			} else {
				require.True(t, sameDay.AddDate(0, 0, 1).Equal(got), text)
			}
		}
	}
}

func TestResolveDatedForms(t *testing.T) {
	t.Parallel()

	r := NewResolver(msk)
	now := time.Date(2026, 10, 19, 20, 0, 0, 0, msk)
	want := time.Date(2026, 10, 18, 19, 45, 0, 0, msk)

	// No look-ahead for dated forms, even in the past.
	got, err := r.Resolve("18.10.2026 19:45", now)
	require.NoError(t, err)
	require.True(t, want.Equal(got))

	got, err = r.Resolve("19:45 18.10.2026", now)
	require.NoError(t, err)
	require.True(t, want.Equal(got))
}

func TestResolveRejectsGarbage(t *testing.T) {
	t.Parallel()

	r := NewResolver(msk)
	now := time.Date(2026, 10, 19, 20, 0, 0, 0, msk)

	for _, text := range []string{"", "tomorrow", "25:00", "21-10", "2026-10-19 21:10", "32.10.2026 10:00"} {
		_, err := r.Resolve(text, now)
		require.ErrorIs(t, err, ErrTimeFormat, text)

		var formatErr *TimeFormatError
		require.True(t, errors.As(err, &formatErr))
		require.Equal(t, text, formatErr.Text)
	}
}

func TestResolveRequiresTwoDigitFields(t *testing.T) {
	t.Parallel()

	r := NewResolver(msk)
	now := time.Date(2026, 10, 19, 20, 0, 0, 0, msk)

	for _, text := range []string{"9:05", "09:5", "9:05 01.02.2027", "01.02.2027 9:05", "1.2.2027 21:10"} {
		_, err := r.Resolve(text, now)
		require.ErrorIs(t, err, ErrTimeFormat, text)
	}

	got, err := r.Resolve("09:05", now)
	require.NoError(t, err)
	require.True(t, time.Date(2026, 10, 20, 9, 5, 0, 0, msk).Equal(got))
}
