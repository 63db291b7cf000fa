package signing

import "time"

// Position is where the signature block lands on the first page, in points
// from the top-left corner.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Metadata carries the caller-supplied signature details. Every field is
// optional.
type Metadata struct {
	Name     string
	Date     string
	Reason   string
	Location string
	Email    string
	Position *Position
	FontSize float64
}

// withDefaults fills the blanks the way the service signs unattended
// documents.
func (m Metadata) withDefaults(now time.Time) Metadata {
	out := m
	if out.Name == "" {
		out.Name = "Assinatura Digital"
	}
	if out.Date == "" {
		out.Date = now.Format("02/01/2006")
	}
	if out.Reason == "" {
		out.Reason = "Documento aprovado"
	}
	if out.Location == "" {
		out.Location = "Brasil"
	}
	if out.Email == "" {
		out.Email = "assinatura@digital.com"
	}
	if out.Position == nil {
		out.Position = &Position{X: 50, Y: 100}
	}
	if out.FontSize <= 0 {
		out.FontSize = 12
	}
	return out
}
