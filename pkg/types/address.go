package types

import "strings"

// AddressSnapshot is a shipping or billing address copied onto an order at
// creation time. It is never re-derived from a live address book entry.
type AddressSnapshot struct {
	FullName     string  `gorm:"column:full_name" json:"full_name"`
	Phone        string  `gorm:"column:phone" json:"phone"`
	AddressLine1 string  `gorm:"column:address_line_1" json:"address_line_1"`
	AddressLine2 *string `gorm:"column:address_line_2" json:"address_line_2,omitempty"`
	City         string  `gorm:"column:city" json:"city"`
	State        *string `gorm:"column:state" json:"state,omitempty"`
	PostalCode   *string `gorm:"column:postal_code" json:"postal_code,omitempty"`
	Country      string  `gorm:"column:country" json:"country"`
}

// MissingRequired lists the json names of required fields that are blank.
func (a AddressSnapshot) MissingRequired() []string {
	required := []struct {
		name  string
		value string
	}{
		{"full_name", a.FullName},
		{"phone", a.Phone},
		{"address_line_1", a.AddressLine1},
		{"city", a.City},
		{"country", a.Country},
	}
	var missing []string
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}

// Lines renders the address for emails and invoices.
func (a AddressSnapshot) Lines() []string {
	lines := []string{a.FullName, a.AddressLine1}
	if a.AddressLine2 != nil && strings.TrimSpace(*a.AddressLine2) != "" {
		lines = append(lines, *a.AddressLine2)
	}
	cityLine := a.City
	if a.State != nil && *a.State != "" {
		cityLine += ", " + *a.State
	}
	if a.PostalCode != nil && *a.PostalCode != "" {
		cityLine += " " + *a.PostalCode
	}
	lines = append(lines, cityLine, a.Country)
	if a.Phone != "" {
		lines = append(lines, a.Phone)
	}
	return lines
}
