package property

// Property is the read-only catalog entry a shift is booked against.
// Pricing fields are carried for the payroll collaborator and never computed here.
type Property struct {
	ID           string
	Name         string
	Address      string
	CleanerPrice float64
	ServiceRates map[string]float64
}
