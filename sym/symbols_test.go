package sym

import "testing"

func TestForStream(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"projects", Projects},
		{"procurement_plans", Plans},
		{"tenders", Tenders},
		{"awards", Awards},
		{"unknown", Run},
		{"", Run},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForStream(tt.name); got != tt.want {
				t.Errorf("ForStream(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}
