package entities

// ClinicLocation is a clinic site patients can be routed to
type ClinicLocation struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Clinician is a doctor known to the clinic group, with the aliases
// patients use to refer to them and their home site
type Clinician struct {
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Aliases  []string `json:"aliases"`
}
