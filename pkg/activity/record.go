package activity

import "time"

// Activity types accepted by the form.
const (
	TypeOffline = "offline"
	TypeOnline  = "online"
)

// Organizer describes who runs the activity.
type Organizer struct {
	Name         string `json:"name" validate:"required,max=100"`
	ContactName  string `json:"contactName,omitempty" validate:"max=50"`
	ContactPhone string `json:"contactPhone,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty" validate:"omitempty,email"`
}

// TicketPrice is one ticket tier with an optional sale window.
type TicketPrice struct {
	Name          string     `json:"name" validate:"required,max=50"`
	Price         int        `json:"price" validate:"gte=0"`
	StartDateTime *time.Time `json:"startDateTime,omitempty"`
	EndDateTime   *time.Time `json:"endDateTime,omitempty"`
}

// Record is the validated activity sent to the creation endpoint.
type Record struct {
	Name                     string        `json:"name" validate:"required,max=100"`
	Summary                  string        `json:"summary,omitempty" validate:"max=200"`
	Details                  string        `json:"details" validate:"required"`
	Organizer                Organizer     `json:"organizer"`
	Cover                    []string      `json:"cover" validate:"min=1,max=5,dive,http_url"`
	Thumbnail                string        `json:"thumbnail,omitempty"`
	Category                 string        `json:"category" validate:"required"`
	Type                     string        `json:"type" validate:"oneof=offline online"`
	Link                     string        `json:"link,omitempty" validate:"omitempty,http_url"`
	Location                 string        `json:"location,omitempty"`
	Address                  string        `json:"address,omitempty"`
	Lat                      *float64      `json:"lat,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Lng                      *float64      `json:"lng,omitempty" validate:"omitempty,gte=-180,lte=180"`
	TotalParticipantCapacity int           `json:"totalParticipantCapacity" validate:"gte=1"`
	StartDateTime            time.Time     `json:"startDateTime" validate:"required"`
	EndDateTime              *time.Time    `json:"endDateTime,omitempty"`
	NoEndDate                bool          `json:"noEndDate"`
	TicketPrice              []TicketPrice `json:"ticketPrice" validate:"min=1,dive"`
}
