package models

// Address is embedded into users, orders and maintenance requests
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// AddressPatch merges address parts field by field
type AddressPatch struct {
	Street  Optional[string] `json:"street"`
	City    Optional[string] `json:"city"`
	State   Optional[string] `json:"state"`
	ZipCode Optional[string] `json:"zipCode"`
	Country Optional[string] `json:"country"`
}

// ApplyTo merges the provided parts into a
func (p AddressPatch) ApplyTo(a *Address) {
	p.Street.Apply(&a.Street)
	p.City.Apply(&a.City)
	p.State.Apply(&a.State)
	p.ZipCode.Apply(&a.ZipCode)
	p.Country.Apply(&a.Country)
}

// IsComplete reports whether every address part is filled in
func (a Address) IsComplete() bool {
	return a.Street != "" && a.City != "" && a.State != "" && a.ZipCode != "" && a.Country != ""
}
