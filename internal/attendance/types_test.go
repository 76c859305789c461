package attendance

import "testing"

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses() {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []Status{"", "present", "Present", "INVALID_STATUS", "SICK"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestSummaryAdd(t *testing.T) {
	var sum Summary
	sum.add(StatusPresent, 3)
	sum.add(StatusAbsent, 1)
	sum.add(StatusLate, 2)
	sum.add(StatusExcused, 0)
	sum.add(Status("UNKNOWN"), 5) // ignored

	if sum.Present != 3 || sum.Absent != 1 || sum.Late != 2 || sum.Excused != 0 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if total := sum.Present + sum.Absent + sum.Late + sum.Excused; total != 6 {
		t.Errorf("bucket total = %d, want 6", total)
	}
}

func TestValidateEntries(t *testing.T) {
	if err := validateEntries(nil); err == nil {
		t.Error("empty entries should be rejected")
	}
	if err := validateEntries([]MarkEntry{{StudentID: "", Status: StatusPresent}}); err == nil {
		t.Error("entry without studentId should be rejected")
	}
	if err := validateEntries([]MarkEntry{{StudentID: "s1", Status: "NOPE"}}); err == nil {
		t.Error("entry with bad status should be rejected")
	}
	if err := validateEntries([]MarkEntry{
		{StudentID: "s1", Status: StatusPresent},
		{StudentID: "s2", Status: StatusLate, Notes: "bus"},
	}); err != nil {
		t.Errorf("valid entries rejected: %v", err)
	}
}

func TestCreateSessionInputValidate(t *testing.T) {
	valid := CreateSessionInput{ClassID: "c1", Date: "2024-01-10", StartTime: "09:00", EndTime: "10:00"}
	if err := valid.validate(); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}

	tests := []struct {
		name string
		in   CreateSessionInput
	}{
		{"missing classId", CreateSessionInput{Date: "2024-01-10", StartTime: "09:00", EndTime: "10:00"}},
		{"missing date", CreateSessionInput{ClassID: "c1", StartTime: "09:00", EndTime: "10:00"}},
		{"missing startTime", CreateSessionInput{ClassID: "c1", Date: "2024-01-10", EndTime: "10:00"}},
		{"missing endTime", CreateSessionInput{ClassID: "c1", Date: "2024-01-10", StartTime: "09:00"}},
		{"bad date", CreateSessionInput{ClassID: "c1", Date: "10/01/2024", StartTime: "09:00", EndTime: "10:00"}},
		{"bad startTime", CreateSessionInput{ClassID: "c1", Date: "2024-01-10", StartTime: "9am", EndTime: "10:00"}},
		{"bad endTime", CreateSessionInput{ClassID: "c1", Date: "2024-01-10", StartTime: "09:00", EndTime: "25:99"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.in.validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSummaryKey(t *testing.T) {
	if summaryKey("2024-01-10", "t1") == summaryKey("2024-01-10", "t2") {
		t.Error("keys for different owners should differ")
	}
	if summaryKey("2024-01-10", "") == summaryKey("2024-01-10", "t1") {
		t.Error("admin scope key should differ from owner key")
	}
	if summaryKey("2024-01-10", "t1") == summaryKey("2024-01-11", "t1") {
		t.Error("keys for different dates should differ")
	}
}
