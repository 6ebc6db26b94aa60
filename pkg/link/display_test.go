package link

import "testing"

func TestDisplayText(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte("MOVE:3,-4\n"), "MOVE:3,-4"},
		{[]byte("L_CLICK\r\n"), "L_CLICK"},
		{[]byte("R_CLICK\x00\x00"), "R_CLICK"},
		{[]byte("  lead kept\n\n"), "  lead kept"},
		{[]byte{0xff, 'o', 'k', '\n'}, "�ok"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := DisplayText(tt.in); got != tt.want {
			t.Fatalf("DisplayText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDisplayTextDoesNotTouchPayload(t *testing.T) {
	b := []byte("MOVE:1,1\n")
	_ = DisplayText(b)
	if string(b) != "MOVE:1,1\n" {
		t.Fatalf("payload modified: %q", b)
	}
}
