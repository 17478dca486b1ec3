package types

import "fmt"

// DefaultVesselNames is the built-in fleet lookup used when the configuration
// does not supply its own.
var DefaultVesselNames = map[int]string{
	1023: "MH Perseus",
	1005: "PISCES",
	1007: "CAPELLA*",
	1017: "CETUS",
	1004: "CASSIOPEIA*",
	1021: "PYXIS",
	1032: "Cenataurus",
	1016: "CHARA",
	1018: "CARINA*",
}

// VesselDirectory maps vessel IDs to display names
type VesselDirectory map[int]string

// NewVesselDirectory copies names into a directory, falling back to the built-in
// fleet when names is empty.
func NewVesselDirectory(names map[int]string) VesselDirectory {
	if len(names) == 0 {
		names = DefaultVesselNames
	}
	d := make(VesselDirectory, len(names))
	for id, name := range names {
		d[id] = name
	}
	return d
}

// Name returns the display name for a vessel, or Unknown_<id>
func (d VesselDirectory) Name(id int) string {
	if name, ok := d[id]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Unknown_%d", id)
}
