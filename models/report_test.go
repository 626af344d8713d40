package models

import (
	"testing"
	"time"
)

func sampleReports() []Report {
	now := time.Now().UTC()
	return []Report{
		{Seq: 4, Status: StatusPending, SubmittedAt: now},
		{Seq: 3, Status: StatusReviewed, SubmittedAt: now.Add(-time.Minute)},
		{Seq: 2, Status: StatusPending, SubmittedAt: now.Add(-2 * time.Minute)},
		{Seq: 1, Status: StatusResolved, SubmittedAt: now.Add(-3 * time.Minute)},
	}
}

func TestFilterByStatus(t *testing.T) {
	reports := sampleReports()

	testCases := []struct {
		name     string
		status   string
		wantSeqs []int64
	}{
		{name: "all", status: StatusAll, wantSeqs: []int64{4, 3, 2, 1}},
		{name: "empty means all", status: "", wantSeqs: []int64{4, 3, 2, 1}},
		{name: "pending", status: StatusPending, wantSeqs: []int64{4, 2}},
		{name: "reviewed", status: StatusReviewed, wantSeqs: []int64{3}},
		{name: "resolved", status: StatusResolved, wantSeqs: []int64{1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterByStatus(reports, tc.status)
			if len(got) != len(tc.wantSeqs) {
				t.Fatalf("got %d reports, want %d", len(got), len(tc.wantSeqs))
			}
			for i, r := range got {
				if r.Seq != tc.wantSeqs[i] {
					t.Errorf("position %d: got seq %d, want %d", i, r.Seq, tc.wantSeqs[i])
				}
			}
		})
	}
}

func TestFilterByStatusIdempotent(t *testing.T) {
	reports := sampleReports()

	once := FilterByStatus(reports, StatusPending)
	twice := FilterByStatus(once, StatusPending)

	if len(once) != len(twice) {
		t.Fatalf("filter not idempotent: %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Seq != twice[i].Seq {
			t.Errorf("position %d changed between applications", i)
		}
	}
}

func TestFilterByStatusPartitions(t *testing.T) {
	reports := sampleReports()

	total := 0
	for _, status := range []string{StatusPending, StatusReviewed, StatusResolved} {
		subset := FilterByStatus(reports, status)
		for _, r := range subset {
			if r.Status != status {
				t.Errorf("report %d with status %s in %s subset", r.Seq, r.Status, status)
			}
		}
		total += len(subset)
	}
	if total != len(reports) {
		t.Errorf("partition sizes sum to %d, want %d", total, len(reports))
	}
}

func TestFilterByStatusDoesNotMutate(t *testing.T) {
	reports := sampleReports()
	FilterByStatus(reports, StatusPending)

	want := []int64{4, 3, 2, 1}
	for i, r := range reports {
		if r.Seq != want[i] {
			t.Fatalf("input slice mutated at %d", i)
		}
	}
}

func TestDeriveAttachmentType(t *testing.T) {
	testCases := []struct {
		fileType string
		want     string
	}{
		{"image/jpeg", "image"},
		{"image/png", "image"},
		{"image/webp", "image"},
		{"video/mp4", "video"},
		{"video/quicktime", "video"},
		{"application/octet-stream", "video"},
	}
	for _, tc := range testCases {
		if got := DeriveAttachmentType(tc.fileType); got != tc.want {
			t.Errorf("DeriveAttachmentType(%q) = %q, want %q", tc.fileType, got, tc.want)
		}
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		if !ValidCategory(c) {
			t.Errorf("category %q should be valid", c)
		}
	}
	for _, c := range []string{"", "spam", "HARMFUL", "quality "} {
		if ValidCategory(c) {
			t.Errorf("category %q should be invalid", c)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusReviewed, StatusResolved} {
		if !ValidStatus(s) {
			t.Errorf("status %q should be valid", s)
		}
	}
	for _, s := range []string{"", StatusAll, "closed"} {
		if ValidStatus(s) {
			t.Errorf("status %q should be invalid", s)
		}
	}
}
