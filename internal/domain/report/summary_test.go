package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthStart(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	got := MonthStart(time.Date(2025, 3, 17, 15, 4, 5, 0, loc))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, loc), got)
}
