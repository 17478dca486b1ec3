package types

import "testing"

func TestVesselDirectory(t *testing.T) {
	d := NewVesselDirectory(map[int]string{1005: "PISCES", 2000: ""})
	tests := []struct {
		id   int
		want string
	}{
		{1005, "PISCES"},
		{2000, "Unknown_2000"},
		{1023, "Unknown_1023"},
	}
	for _, tt := range tests {
		if got := d.Name(tt.id); got != tt.want {
			t.Errorf("Name(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestVesselDirectoryDefaults(t *testing.T) {
	d := NewVesselDirectory(nil)
	if got := d.Name(1023); got != "MH Perseus" {
		t.Errorf("Name(1023) = %q", got)
	}

	// The directory is a copy
	d[1023] = "renamed"
	if DefaultVesselNames[1023] != "MH Perseus" {
		t.Error("modifying a directory changed the built-in names")
	}
}
