package listing

import (
	"strconv"
	"time"

	"github.com/NERVsystems/osmingest/pkg/geo"
)

// Venue is where an event takes place
type Venue struct {
	Name     string    `json:"name"`
	Address  Address   `json:"address"`
	Location geo.Point `json:"location"`
}

// TicketPrice is the admission range of an event
type TicketPrice struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Currency string `json:"currency"`
	IsFree   bool   `json:"isFree"`
}

// Event is a generated upcoming event
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	StartDate   time.Time   `json:"startDate"`
	EndDate     time.Time   `json:"endDate"`
	Venue       Venue       `json:"venue"`
	TicketPrice TicketPrice `json:"ticketPrice"`
	Organizer   string      `json:"organizer"`
	Tags        []string    `json:"tags"`
	Status      string      `json:"status"`
	Featured    bool        `json:"featured"`
	Source      string      `json:"source"`
}

// Discount types
const (
	DiscountPercentage = "percentage"
	DiscountFlat       = "flat"
)

// Promotion is a generated discount offer
type Promotion struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	DiscountType  string    `json:"discountType"`
	DiscountValue int       `json:"discountValue"`
	Code          string    `json:"code"`
	ApplicableTo  Category  `json:"applicableTo"`
	ValidFrom     time.Time `json:"validFrom"`
	ValidUntil    time.Time `json:"validUntil"`
	Terms         []string  `json:"terms"`
	Status        string    `json:"status"`
	Featured      bool      `json:"featured"`
	Source        string    `json:"source"`
}

// RecordID implements Record
func (e Event) RecordID() string { return e.ID }

// DisplayName implements Record
func (e Event) DisplayName() string { return e.Title }

// RecordID implements Record
func (p Promotion) RecordID() string { return p.ID }

// DisplayName implements Record
func (p Promotion) DisplayName() string { return p.Title }

// osmID qualifies id with its element type, since nodes, ways and relations
// are numbered independently
func osmID(elementType string, id int64) string {
	if elementType == "" {
		return strconv.FormatInt(id, 10)
	}
	return elementType + "/" + strconv.FormatInt(id, 10)
}
