package auth

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  alice  ", "alice"},
		{"<b>alice</b>", "alice"},
		{"<script>x</script>", "x"},
		{"Tom & Jerry", "Tom &amp; Jerry"},
		{`say "hi"`, "say &#34;hi&#34;"},
		{"   ", ""},
		{"<br>", ""},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a@b.com", true},
		{"alice.smith@uni.edu.ph", true},
		{"not-an-email", false},
		{"a@b", false},
		{"Alice <a@b.com>", false},
		{"<a@b.com>", false},
		{"", false},
		{"a@@b.com", false},
	}
	for _, tt := range tests {
		if got := ValidEmail(tt.in); got != tt.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
