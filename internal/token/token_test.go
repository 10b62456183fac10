package token

import "testing"

func TestBefore(t *testing.T) {
	tests := []struct {
		a, b Token
		want bool
	}{
		{At(1, 1, "a"), At(1, 2, "b"), true},
		{At(2, 1, "a"), At(1, 9, "b"), false},
		{At(3, 4, "a"), At(3, 4, "b"), false},
	}
	for _, tt := range tests {
		if got := tt.a.Before(tt.b); got != tt.want {
			t.Errorf("%s.Before(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	tok := At(4, 7, "x")
	if got := tok.String(); got != "4:7" {
		t.Errorf("String() = %q, want %q", got, "4:7")
	}
	tok.File = "main.rs"
	if got := tok.String(); got != "main.rs:4:7" {
		t.Errorf("String() = %q, want %q", got, "main.rs:4:7")
	}
	if tok.EndColumn != 8 {
		t.Errorf("EndColumn = %d, want 8", tok.EndColumn)
	}
}
