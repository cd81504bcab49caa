package core

import (
	"testing"
	"time"

	"truetime.service/internal/core/model"
)

var testDay = model.NewDate(2024, time.March, 11)

func punchAt(t *testing.T, clock, direction string) *model.PunchEvent {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2024-03-11T"+clock+":00Z")
	if err != nil {
		t.Fatalf("bad clock %q: %v", clock, err)
	}
	return &model.PunchEvent{PunchedAt: ts, Direction: direction}
}

func testShift(t *testing.T, start, end string, graceMinutes int) *model.Shift {
	t.Helper()
	startTime, err := model.ParseTimeOfDay(start)
	if err != nil {
		t.Fatalf("bad start %q: %v", start, err)
	}
	endTime, err := model.ParseTimeOfDay(end)
	if err != nil {
		t.Fatalf("bad end %q: %v", end, err)
	}
	return &model.Shift{ID: 1, Name: "Day", StartTime: startTime, EndTime: endTime, GraceMinutes: graceMinutes}
}

func TestComputeDayPresentWithinGrace(t *testing.T) {
	shift := testShift(t, "08:00", "17:00", 10)
	punches := []*model.PunchEvent{
		punchAt(t, "08:05", "in"),
		punchAt(t, "17:00", "out"),
	}

	summary := ComputeDay(punches, shift, testDay)

	if summary.Status != model.StatusPresent {
		t.Fatalf("status = %s, want present", summary.Status)
	}
	if summary.TotalMinutes != 535 {
		t.Errorf("TotalMinutes = %d, want 535", summary.TotalMinutes)
	}
	if summary.ExpectedMinutes == nil || *summary.ExpectedMinutes != 540 {
		t.Errorf("ExpectedMinutes = %v, want 540", summary.ExpectedMinutes)
	}
	if summary.LateMinutes == nil || *summary.LateMinutes != 0 {
		t.Errorf("LateMinutes = %v, want 0", summary.LateMinutes)
	}
}

func TestComputeDayLateAfterGrace(t *testing.T) {
	shift := testShift(t, "08:00", "17:00", 10)
	punches := []*model.PunchEvent{
		punchAt(t, "08:11", "in"),
		punchAt(t, "17:00", "out"),
	}

	summary := ComputeDay(punches, shift, testDay)

	if summary.Status != model.StatusLate {
		t.Fatalf("status = %s, want late", summary.Status)
	}
	if summary.LateMinutes == nil || *summary.LateMinutes != 11 {
		t.Errorf("LateMinutes = %v, want 11", summary.LateMinutes)
	}
}

func TestComputeDayArrivalExactlyAtGraceIsPresent(t *testing.T) {
	shift := testShift(t, "08:00", "17:00", 10)
	punches := []*model.PunchEvent{
		punchAt(t, "08:10", "in"),
		punchAt(t, "17:00", "out"),
	}

	summary := ComputeDay(punches, shift, testDay)

	if summary.Status != model.StatusPresent {
		t.Fatalf("status = %s, want present", summary.Status)
	}
}

func TestComputeDayNoPunchesIsAbsent(t *testing.T) {
	shift := testShift(t, "08:00", "17:00", 10)

	summary := ComputeDay(nil, shift, testDay)

	if summary.Status != model.StatusAbsent {
		t.Fatalf("status = %s, want absent", summary.Status)
	}
	if summary.FirstIn != nil || summary.LastOut != nil {
		t.Errorf("FirstIn/LastOut should be nil for an absent day")
	}
}

func TestComputeDayOpenSessionIsIncomplete(t *testing.T) {
	punches := []*model.PunchEvent{punchAt(t, "09:00", "in")}

	summary := ComputeDay(punches, nil, testDay)

	if summary.Status != model.StatusIncomplete {
		t.Fatalf("status = %s, want incomplete", summary.Status)
	}
	if summary.FirstIn == nil {
		t.Fatal("FirstIn should be set")
	}
	// With no closing punch the last seen punch stands in for LastOut.
	if summary.LastOut == nil || !summary.LastOut.Equal(*summary.FirstIn) {
		t.Errorf("LastOut = %v, want %v", summary.LastOut, summary.FirstIn)
	}
	if summary.TotalMinutes != 0 {
		t.Errorf("TotalMinutes = %d, want 0", summary.TotalMinutes)
	}
}

func TestComputeDayIncompleteShortCircuitsLateCheck(t *testing.T) {
	shift := testShift(t, "08:00", "17:00", 10)
	punches := []*model.PunchEvent{punchAt(t, "09:30", "in")}

	summary := ComputeDay(punches, shift, testDay)

	if summary.Status != model.StatusIncomplete {
		t.Fatalf("status = %s, want incomplete", summary.Status)
	}
	if summary.LateMinutes != nil {
		t.Errorf("LateMinutes = %v, want nil for an incomplete day", summary.LateMinutes)
	}
}

func TestComputeDayUnknownDirectionNeverClosesSession(t *testing.T) {
	shift := testShift(t, "08:00", "17:00", 10)
	punches := []*model.PunchEvent{
		punchAt(t, "08:00", "in"),
		punchAt(t, "12:00", "break"),
		punchAt(t, "17:00", "out"),
	}

	summary := ComputeDay(punches, shift, testDay)

	if summary.Status != model.StatusPresent {
		t.Fatalf("status = %s, want present", summary.Status)
	}
	// The break punch moved last_out but did not close the session, so
	// the out at 17:00 still pairs with the in at 08:00.
	if summary.TotalMinutes != 540 {
		t.Errorf("TotalMinutes = %d, want 540", summary.TotalMinutes)
	}
	if summary.LastOut == nil || summary.LastOut.Hour() != 17 {
		t.Errorf("LastOut = %v, want 17:00", summary.LastOut)
	}
}

func TestComputeDayUnknownDirectionAloneIsIncomplete(t *testing.T) {
	punches := []*model.PunchEvent{punchAt(t, "12:00", "door")}

	summary := ComputeDay(punches, nil, testDay)

	if summary.Status != model.StatusIncomplete {
		t.Fatalf("status = %s, want incomplete", summary.Status)
	}
	if summary.FirstIn != nil {
		t.Errorf("FirstIn = %v, want nil", summary.FirstIn)
	}
	if summary.LastOut == nil {
		t.Error("LastOut should be set")
	}
}

func TestComputeDayMultipleSessions(t *testing.T) {
	shift := testShift(t, "08:00", "17:00", 0)
	punches := []*model.PunchEvent{
		punchAt(t, "08:00", "in"),
		punchAt(t, "12:00", "out"),
		punchAt(t, "13:00", "in"),
		punchAt(t, "17:00", "out"),
	}

	summary := ComputeDay(punches, shift, testDay)

	if summary.Status != model.StatusPresent {
		t.Fatalf("status = %s, want present", summary.Status)
	}
	if summary.TotalMinutes != 480 {
		t.Errorf("TotalMinutes = %d, want 480", summary.TotalMinutes)
	}
}

func TestComputeDayReopenedSessionUsesLatestIn(t *testing.T) {
	punches := []*model.PunchEvent{
		punchAt(t, "08:00", "in"),
		punchAt(t, "09:00", "in"),
		punchAt(t, "10:00", "out"),
	}

	summary := ComputeDay(punches, nil, testDay)

	if summary.TotalMinutes != 60 {
		t.Errorf("TotalMinutes = %d, want 60", summary.TotalMinutes)
	}
	if summary.FirstIn == nil || summary.FirstIn.Hour() != 8 {
		t.Errorf("FirstIn = %v, want 08:00", summary.FirstIn)
	}
}

func TestComputeDayUnorderedPunchesAreSorted(t *testing.T) {
	punches := []*model.PunchEvent{
		punchAt(t, "17:00", "out"),
		punchAt(t, "08:00", "in"),
	}

	summary := ComputeDay(punches, nil, testDay)

	if summary.Status != model.StatusPresent {
		t.Fatalf("status = %s, want present", summary.Status)
	}
	if summary.TotalMinutes != 540 {
		t.Errorf("TotalMinutes = %d, want 540", summary.TotalMinutes)
	}
}

func TestExpectedMinutesOvernightShift(t *testing.T) {
	shift := testShift(t, "22:00", "06:00", 0)
	if got := ExpectedMinutes(shift); got != 480 {
		t.Errorf("ExpectedMinutes = %d, want 480", got)
	}
}

func TestExpectedMinutesRegularShift(t *testing.T) {
	shift := testShift(t, "09:00", "17:30", 0)
	if got := ExpectedMinutes(shift); got != 510 {
		t.Errorf("ExpectedMinutes = %d, want 510", got)
	}
}
