package rules

import (
	"testing"
)

func TestDefaultMembership(t *testing.T) {
	rs := Default()

	tests := []struct {
		name          string
		wantSensitive bool
		wantCritical  bool
	}{
		{"DeleteBucket", true, true},
		{"PutBucketAcl", true, false},
		{"ModifyIAMPolicy", true, true},
		{"DeleteTrail", true, false},
		{"StopLogging", true, true},
		{"ListBuckets", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rs.IsSensitive(tt.name); got != tt.wantSensitive {
				t.Errorf("IsSensitive(%q) = %v, want %v", tt.name, got, tt.wantSensitive)
			}
			if got := rs.IsCritical(tt.name); got != tt.wantCritical {
				t.Errorf("IsCritical(%q) = %v, want %v", tt.name, got, tt.wantCritical)
			}
		})
	}

	if rs.AlertThreshold() != DefaultAlertThreshold {
		t.Errorf("AlertThreshold() = %d, want %d", rs.AlertThreshold(), DefaultAlertThreshold)
	}
}

func TestMembershipIsStable(t *testing.T) {
	rs := Default()

	// Pure membership: repeated calls with fixed configuration agree
	for i := 0; i < 3; i++ {
		if !rs.IsSensitive("DeleteBucket") {
			t.Fatal("IsSensitive changed between calls")
		}
		if rs.IsCritical("PutBucketAcl") {
			t.Fatal("IsCritical changed between calls")
		}
	}
}

func TestCriticalTestedIndependentlyOfSensitive(t *testing.T) {
	// A custom rule set where critical is not a subset of sensitive:
	// membership must still be answered per set, without assuming the
	// domain convention.
	rs, err := New([]string{"A"}, []string{"B"}, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if !rs.IsSensitive("A") || rs.IsCritical("A") {
		t.Error("wrong classification for A")
	}
	if rs.IsSensitive("B") || !rs.IsCritical("B") {
		t.Error("wrong classification for B")
	}
}

func TestNewRejectsBadThreshold(t *testing.T) {
	for _, threshold := range []int{0, -1} {
		if _, err := New(nil, nil, threshold); err != ErrInvalidThreshold {
			t.Errorf("New(threshold=%d) error = %v, want ErrInvalidThreshold", threshold, err)
		}
	}
}
