package tunnel

import "testing"

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5*1024*1024 + 512*1024, "5.5 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStateHelpers(t *testing.T) {
	if !Connecting().Active() || !Connected("e", 0, 0).Active() {
		t.Error("connecting/connected should be active")
	}
	if Disconnected().Active() || Failed("x").Active() {
		t.Error("disconnected/error should not be active")
	}
	if got := Failed("").Message; got != "Invalid WireGuard configuration" {
		t.Errorf("default message = %q", got)
	}
	if got := Connected("e", 2048, 512).Traffic(); got != "↓ 2.0 KB ↑ 512 B" {
		t.Errorf("Traffic() = %q", got)
	}
}
