package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_LoggedOut(t *testing.T) {
	cases := []Session{
		{},
		{Token: "abc"},
		{User: &User{ID: "1", Role: RoleAdmin}},
	}
	for _, s := range cases {
		assert.False(t, s.IsLoggedIn())
		assert.False(t, s.IsAdmin())
	}
}

func TestSession_Admin(t *testing.T) {
	s := Session{Token: "abc", User: &User{ID: "1", Role: RoleAdmin}}
	assert.True(t, s.IsLoggedIn())
	assert.True(t, s.IsAdmin())

	s.User.Role = RoleReporter
	assert.True(t, s.IsLoggedIn())
	assert.False(t, s.IsAdmin())
}

func TestTallyStatuses(t *testing.T) {
	reports := []Report{
		{ID: "1", Status: ReportStatusPending},
		{ID: "2", Status: ReportStatusPending},
		{ID: "3", Status: ReportStatusVerified},
		{ID: "4", Status: ReportStatusInProgress},
	}
	vocabulary := []ReportStatus{ReportStatusPending, ReportStatusVerified, ReportStatusResolved, ReportStatusRejected}

	stats := TallyStatuses(reports, vocabulary)

	assert.Equal(t, 2, stats[ReportStatusPending])
	assert.Equal(t, 1, stats[ReportStatusVerified])
	assert.Equal(t, 0, stats[ReportStatusResolved])
	assert.Contains(t, stats, ReportStatusRejected)
	assert.Equal(t, 1, stats[ReportStatusInProgress])
	assert.Equal(t, 4, stats.Total())
}

func TestReport_CreatedTime(t *testing.T) {
	r := Report{CreatedAt: "2024-03-01T10:20:30.123456"}
	got, ok := r.CreatedTime()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 20, 30, 123456000, time.UTC), got)

	r.CreatedAt = "2024-03-01T10:20:30Z"
	_, ok = r.CreatedTime()
	assert.True(t, ok)

	r.CreatedAt = "вчера"
	_, ok = r.CreatedTime()
	assert.False(t, ok)
}

func TestReportStatus_IsKnown(t *testing.T) {
	assert.True(t, ReportStatusRejected.IsKnown())
	assert.False(t, ReportStatus("archived").IsKnown())
}
