package models

import "time"

// ClientCategory distinguishes individuals from organizations.
type ClientCategory string

const (
	ClientIndividual   ClientCategory = "individual"
	ClientOrganization ClientCategory = "organization"
)

func (c ClientCategory) Valid() bool {
	return c == ClientIndividual || c == ClientOrganization
}

// Client is a billable customer. Clients are never hard-deleted: invoices keep
// referencing them, so deactivation flips the Active flag instead.
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;index" json:"name"`
	FirstName string         `json:"first_name,omitempty"`
	Phone     string         `gorm:"size:30" json:"phone,omitempty"`
	Email     string         `gorm:"index" json:"email,omitempty"`
	Address   string         `json:"address,omitempty"`
	Category  ClientCategory `gorm:"size:20;not null;default:'individual'" json:"category"`
	// No gorm default on Active: a column default makes gorm omit an explicit
	// false on insert, silently persisting the row as active. Create paths set
	// the flag themselves.
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName is the "Name FirstName" form used in invoice lists and PDFs.
func (c *Client) DisplayName() string {
	if c.FirstName == "" {
		return c.Name
	}
	return c.Name + " " + c.FirstName
}
