package score

import "testing"

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"XXX-XX-XXXX", true},
		{"sig=XXXXX", true},
		{"0000 0000 0000 0000", true},
		{"000.000.000-00", true},
		{"ZZ0000000", true},
		{"******", true},
		{"aaaaaaaa", true},
		{"AB-12", true},
		{"see account 4111", true},
		{"1O0oIl0O", true},
		{"123-45-6789", false},
		{"4111 1111 1111 1111", false},
		{"GB29 NWBK 6016 1331 9268 19", false},
		{"AB1234563", false},
		{"192.168.10.44", false},
	}
	for _, tt := range tests {
		if got := IsPlaceholder(tt.value); got != tt.want {
			t.Errorf("IsPlaceholder(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
