package domain

// HostStar holds auxiliary catalog metadata for a host star. All physical
// fields are nullable: the archive frequently has partial rows.
type HostStar struct {
	Name      string   `json:"name"`
	RA        *float64 `json:"ra,omitempty"`        // right ascension, degrees
	Dec       *float64 `json:"dec,omitempty"`       // declination, degrees
	Magnitude *float64 `json:"magnitude,omitempty"` // apparent magnitude
	RadiusSun *float64 `json:"radius,omitempty"`    // stellar radius, solar radii
	MassSun   *float64 `json:"mass,omitempty"`      // stellar mass, solar masses
	TempK     *float64 `json:"temperature,omitempty"`
}
