package analyzer

import (
	"testing"
	"time"

	"github.com/nullstrategy/backlab/internal/series"
	"github.com/stretchr/testify/assert"
)

func TestTimeFrameAnalyzer_FirstObserveNeverCrosses(t *testing.T) {
	tf := NewTimeFrameAnalyzer(series.Days, 1)
	assert.False(t, tf.Observe(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestTimeFrameAnalyzer_DaysDetectsCalendarDayChange(t *testing.T) {
	tf := NewTimeFrameAnalyzer(series.Days, 1)
	tf.Observe(time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC))
	assert.False(t, tf.Observe(time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)))
	assert.True(t, tf.Observe(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
}

func TestTimeFrameAnalyzer_YearsIgnoresMonthChange(t *testing.T) {
	tf := NewTimeFrameAnalyzer(series.Years, 1)
	tf.Observe(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, tf.Observe(time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, tf.Observe(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestTimeFrameAnalyzer_MinutesHonorsCompression(t *testing.T) {
	tf := NewTimeFrameAnalyzer(series.Minutes, 5)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tf.Observe(base)
	assert.False(t, tf.Observe(base.Add(4*time.Minute)))
	assert.True(t, tf.Observe(base.Add(6*time.Minute)))
}
