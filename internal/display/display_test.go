package display

import "testing"

func TestCommandForKey(t *testing.T) {
	tests := []struct {
		key  int
		want Command
	}{
		{key: -1, want: None},
		{key: 'q', want: Quit},
		{key: 'Q', want: Quit},
		{key: 'r', want: Restart},
		{key: 'R', want: Restart},
		{key: 'x', want: None},
		{key: 27, want: None},
		// Some backends report modifier bits above the low byte.
		{key: 0x100000 | 'q', want: Quit},
	}

	for _, tt := range tests {
		if got := CommandForKey(tt.key); got != tt.want {
			t.Errorf("CommandForKey(%d) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestCommandString(t *testing.T) {
	if Quit.String() != "quit" || Restart.String() != "restart" || None.String() != "none" {
		t.Error("unexpected command names")
	}
}
