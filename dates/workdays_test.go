package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsWorkingDay(t *testing.T) {
	friday := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	saturday := friday.AddDate(0, 0, 1)
	sunday := friday.AddDate(0, 0, 2)

	assert.True(t, IsWorkingDay(friday, nil))
	assert.False(t, IsWorkingDay(saturday, nil))
	assert.False(t, IsWorkingDay(sunday, nil))
	assert.False(t, IsWorkingDay(friday, NewHolidays(friday)))
}

func TestWorkingDaysInMonth(t *testing.T) {
	// March 2024 starts on a Friday and has 21 weekdays.
	assert.Equal(t, 21, TotalWorkingDaysInMonth(2024, time.March, nil))

	upTo := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 6, WorkingDaysInMonth(2024, time.March, upTo, nil))

	holidays := NewHolidays(time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 20, TotalWorkingDaysInMonth(2024, time.March, holidays))

	// Weekend-only window still yields a usable denominator.
	weekend := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, WorkingDaysInMonth(2024, time.June, weekend, nil))
}
