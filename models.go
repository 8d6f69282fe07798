package stagekit

import (
	"time"

	"github.com/uptrace/bun"
)

// ExternalSource is an embedded link to an outside catalogue entry
// (streaming service, ticketing page, ...). Stored as jsonb.
type ExternalSource struct {
	Source   string `json:"source"`
	URL      string `json:"url"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Address is a venue's postal address. Stored as jsonb.
type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// ContactInfo is an artist contact entry. Stored as jsonb.
type ContactInfo struct {
	Kind  string `json:"kind,omitempty"` // "booking", "press", ...
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// User is a principal. Admins bypass every ownership check.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	Base

	Username    string `bun:"username,notnull,unique" json:"username"`
	Email       string `bun:"email,nullzero" json:"email,omitempty"`
	FirstName   string `bun:"first_name,nullzero" json:"firstName,omitempty"`
	LastName    string `bun:"last_name,nullzero" json:"lastName,omitempty"`
	IsActive    bool   `bun:"is_active,notnull,default:true" json:"isActive"`
	IsConfirmed bool   `bun:"is_confirmed,notnull,default:false" json:"isConfirmed"`
	IsAdmin     bool   `bun:"is_admin,notnull,default:false" json:"isAdmin"`
}

// Venue is a place events happen at. Direct ownership: ResourceVenue.
type Venue struct {
	bun.BaseModel `bun:"table:venues,alias:v"`
	Base

	Description     string           `bun:"description,nullzero" json:"description,omitempty"`
	Phone           string           `bun:"phone,nullzero" json:"phone,omitempty"`
	Website         string           `bun:"website,nullzero" json:"website,omitempty"`
	Email           string           `bun:"email,nullzero" json:"email,omitempty"`
	Address         *Address         `bun:"address,type:jsonb,nullzero" json:"address,omitempty"`
	ExternalSources []ExternalSource `bun:"external_sources,type:jsonb,nullzero" json:"externalSources,omitempty"`

	Events []*Event `bun:"rel:has-many,join:id=venue_id" json:"events,omitempty"`
}

// Event is a show. Direct ownership: ResourceEvent; access also cascades
// from the venue and from the organizer list.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`
	Base

	Description     string           `bun:"description,nullzero" json:"description,omitempty"`
	Date            time.Time        `bun:"date,nullzero" json:"date"`
	Doors           time.Time        `bun:"doors,nullzero" json:"doors"`
	ExternalSources []ExternalSource `bun:"external_sources,type:jsonb,nullzero" json:"externalSources,omitempty"`

	VenueID    int64   `bun:"venue_id,nullzero" json:"venueId,omitempty"`
	Venue      *Venue  `bun:"rel:belongs-to,join:venue_id=id" json:"venue,omitempty"`
	Organizers []*User `bun:"m2m:event_organizers,join:Event=User" json:"organizers,omitempty"`
	Attendees  []*User `bun:"m2m:event_attendees,join:Event=User" json:"attendees,omitempty"`
}

// Artist is a performing act. Direct ownership: ResourceArtist; any listed
// member has access.
type Artist struct {
	bun.BaseModel `bun:"table:artists,alias:a"`
	Base

	Description     string           `bun:"description,nullzero" json:"description,omitempty"`
	ImageURL        string           `bun:"image_url,nullzero" json:"imageUrl,omitempty"`
	Contacts        []ContactInfo    `bun:"contacts,type:jsonb,nullzero" json:"contacts,omitempty"`
	ExternalSources []ExternalSource `bun:"external_sources,type:jsonb,nullzero" json:"externalSources,omitempty"`

	Members []*User `bun:"m2m:artist_members,join:Artist=User" json:"members,omitempty"`
}

// Tour is a series of shows. Direct ownership: ResourceTour; any touring
// artist (a user) has access.
type Tour struct {
	bun.BaseModel `bun:"table:tours,alias:t"`
	Base

	Description string     `bun:"description,nullzero" json:"description,omitempty"`
	StartCity   string     `bun:"start_city,nullzero" json:"startCity,omitempty"`
	EndCity     string     `bun:"end_city,nullzero" json:"endCity,omitempty"`
	StartDate   *time.Time `bun:"start_date,nullzero" json:"startDate,omitempty"`
	EndDate     *time.Time `bun:"end_date,nullzero" json:"endDate,omitempty"`
	Website     string     `bun:"website,nullzero" json:"website,omitempty"`
	Sponsor     string     `bun:"sponsor,nullzero" json:"sponsor,omitempty"`
	IsActive    bool       `bun:"is_active,notnull,default:true" json:"isActive"`

	Shows   []*Event `bun:"m2m:tour_shows,join:Tour=Event" json:"shows,omitempty"`
	Artists []*User  `bun:"m2m:tour_artists,join:Tour=User" json:"artists,omitempty"`
}

// Song is a repertoire entry. No ownership rules.
type Song struct {
	bun.BaseModel `bun:"table:songs,alias:s"`
	Base

	Artist          string           `bun:"artist,nullzero" json:"artist,omitempty"`
	Album           string           `bun:"album,nullzero" json:"album,omitempty"`
	ExternalSources []ExternalSource `bun:"external_sources,type:jsonb,nullzero" json:"externalSources,omitempty"`

	RequiredInstruments []*Instrument `bun:"m2m:song_required_instruments,join:Song=Instrument" json:"requiredInstruments,omitempty"`
	OptionalInstruments []*Instrument `bun:"m2m:song_optional_instruments,join:Song=Instrument" json:"optionalInstruments,omitempty"`
}

// InstrumentCategory groups instruments. No ownership rules.
type InstrumentCategory struct {
	bun.BaseModel `bun:"table:instrument_categories,alias:ic"`
	Base

	Instruments []*Instrument `bun:"rel:has-many,join:id=category_id" json:"instruments,omitempty"`
}

// Instrument is something a song calls for. No ownership rules.
type Instrument struct {
	bun.BaseModel `bun:"table:instruments,alias:i"`
	Base

	CategoryID int64               `bun:"category_id,nullzero" json:"categoryId,omitempty"`
	Category   *InstrumentCategory `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
}

// Budget tracks money for a tour, event, artist or venue. No direct
// ownership; access cascades from the linked artist or venue.
type Budget struct {
	bun.BaseModel `bun:"table:budgets,alias:b"`
	Base

	Description string    `bun:"description,nullzero" json:"description,omitempty"`
	TotalAmount float64   `bun:"total_amount,notnull,default:0" json:"totalAmount"`
	SpentAmount float64   `bun:"spent_amount,notnull,default:0" json:"spentAmount"`
	StartDate   time.Time `bun:"start_date,nullzero" json:"startDate"`
	EndDate     time.Time `bun:"end_date,nullzero" json:"endDate"`

	TourID   int64   `bun:"tour_id,nullzero" json:"tourId,omitempty"`
	Tour     *Tour   `bun:"rel:belongs-to,join:tour_id=id" json:"tour,omitempty"`
	EventID  int64   `bun:"event_id,nullzero" json:"eventId,omitempty"`
	Event    *Event  `bun:"rel:belongs-to,join:event_id=id" json:"event,omitempty"`
	ArtistID int64   `bun:"artist_id,nullzero" json:"artistId,omitempty"`
	Artist   *Artist `bun:"rel:belongs-to,join:artist_id=id" json:"artist,omitempty"`
	VenueID  int64   `bun:"venue_id,nullzero" json:"venueId,omitempty"`
	Venue    *Venue  `bun:"rel:belongs-to,join:venue_id=id" json:"venue,omitempty"`

	Expenses []*Expense `bun:"rel:has-many,join:id=budget_id" json:"expenses,omitempty"`
}

// RemainingAmount is the budget left to spend.
func (b *Budget) RemainingAmount() float64 {
	return b.TotalAmount - b.SpentAmount
}

// ExpenseStatus is an expense's lifecycle state.
type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "pending"
	ExpenseApproved ExpenseStatus = "approved"
	ExpenseVoid     ExpenseStatus = "void"
	ExpensePaid     ExpenseStatus = "paid"
)

// Expense is a spend against a budget. No direct ownership; the submitting
// user has access.
type Expense struct {
	bun.BaseModel `bun:"table:expenses,alias:x"`
	Base

	Description string        `bun:"description,nullzero" json:"description,omitempty"`
	Amount      float64       `bun:"amount,notnull" json:"amount"`
	Status      ExpenseStatus `bun:"status,notnull,default:'pending'" json:"status"`
	Notes       string        `bun:"notes,nullzero" json:"notes,omitempty"`
	Category    string        `bun:"category,nullzero" json:"category,omitempty"`
	Vendor      string        `bun:"vendor,nullzero" json:"vendor,omitempty"`
	ExpenseDate time.Time     `bun:"expense_date,nullzero" json:"expenseDate"`
	Attachments []string      `bun:"attachments,type:text[]" json:"attachments,omitempty"`

	BudgetID int64   `bun:"budget_id,notnull" json:"budgetId"`
	Budget   *Budget `bun:"rel:belongs-to,join:budget_id=id" json:"budget,omitempty"`

	SubmittedByID int64      `bun:"submitted_by_user_id,notnull" json:"submittedById"`
	SubmittedBy   *User      `bun:"rel:belongs-to,join:submitted_by_user_id=id" json:"submittedBy,omitempty"`
	ApprovedByID  int64      `bun:"approved_by_user_id,nullzero" json:"approvedById,omitempty"`
	ApprovedBy    *User      `bun:"rel:belongs-to,join:approved_by_user_id=id" json:"approvedBy,omitempty"`
	ApprovedDate  *time.Time `bun:"approved_date,nullzero" json:"approvedDate,omitempty"`
	PaidDate      *time.Time `bun:"paid_date,nullzero" json:"paidDate,omitempty"`
}

// Join models for the many-to-many navigations. bun needs these registered
// before it can resolve the m2m relation tags.

type EventOrganizer struct {
	bun.BaseModel `bun:"table:event_organizers,alias:eo"`

	EventID int64  `bun:"event_id,pk"`
	Event   *Event `bun:"rel:belongs-to,join:event_id=id"`
	UserID  int64  `bun:"user_id,pk"`
	User    *User  `bun:"rel:belongs-to,join:user_id=id"`
}

type EventAttendee struct {
	bun.BaseModel `bun:"table:event_attendees,alias:ea"`

	EventID int64  `bun:"event_id,pk"`
	Event   *Event `bun:"rel:belongs-to,join:event_id=id"`
	UserID  int64  `bun:"user_id,pk"`
	User    *User  `bun:"rel:belongs-to,join:user_id=id"`
}

type ArtistMember struct {
	bun.BaseModel `bun:"table:artist_members,alias:am"`

	ArtistID int64   `bun:"artist_id,pk"`
	Artist   *Artist `bun:"rel:belongs-to,join:artist_id=id"`
	UserID   int64   `bun:"user_id,pk"`
	User     *User   `bun:"rel:belongs-to,join:user_id=id"`
}

type TourShow struct {
	bun.BaseModel `bun:"table:tour_shows,alias:ts"`

	TourID  int64  `bun:"tour_id,pk"`
	Tour    *Tour  `bun:"rel:belongs-to,join:tour_id=id"`
	EventID int64  `bun:"event_id,pk"`
	Event   *Event `bun:"rel:belongs-to,join:event_id=id"`
}

type TourArtist struct {
	bun.BaseModel `bun:"table:tour_artists,alias:ta"`

	TourID int64 `bun:"tour_id,pk"`
	Tour   *Tour `bun:"rel:belongs-to,join:tour_id=id"`
	UserID int64 `bun:"user_id,pk"`
	User   *User `bun:"rel:belongs-to,join:user_id=id"`
}

type SongRequiredInstrument struct {
	bun.BaseModel `bun:"table:song_required_instruments,alias:sri"`

	SongID       int64       `bun:"song_id,pk"`
	Song         *Song       `bun:"rel:belongs-to,join:song_id=id"`
	InstrumentID int64       `bun:"instrument_id,pk"`
	Instrument   *Instrument `bun:"rel:belongs-to,join:instrument_id=id"`
}

type SongOptionalInstrument struct {
	bun.BaseModel `bun:"table:song_optional_instruments,alias:soi"`

	SongID       int64       `bun:"song_id,pk"`
	Song         *Song       `bun:"rel:belongs-to,join:song_id=id"`
	InstrumentID int64       `bun:"instrument_id,pk"`
	Instrument   *Instrument `bun:"rel:belongs-to,join:instrument_id=id"`
}

// joinModels lists every m2m join model for bun registration.
func joinModels() []any {
	return []any{
		(*EventOrganizer)(nil),
		(*EventAttendee)(nil),
		(*ArtistMember)(nil),
		(*TourShow)(nil),
		(*TourArtist)(nil),
		(*SongRequiredInstrument)(nil),
		(*SongOptionalInstrument)(nil),
	}
}
