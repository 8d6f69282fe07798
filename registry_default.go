package stagekit

import "github.com/uptrace/bun"

// DefaultRegistry declares the built-in event management domain: every
// entity, its
// ownership rules, navigations (with link-only wiring and join-table sync)
// and search fields. Applications with their own schema build a Registry by
// hand the same way.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.DefineEntity("User").
		SearchField("name", "name", func(e any) string { return e.(*User).Name }).
		SearchField("username", "username", func(e any) string { return e.(*User).Username }).
		SearchField("email", "email", func(e any) string { return e.(*User).Email })

	r.DefineEntity("Venue").
		DirectOwnership(ResourceVenue).
		Collection("Events", "Event").
		SearchField("name", "name", func(e any) string { return e.(*Venue).Name }).
		SearchField("description", "description", func(e any) string { return e.(*Venue).Description }).
		SearchField("phone", "phone", func(e any) string { return e.(*Venue).Phone }).
		SearchField("website", "website", func(e any) string { return e.(*Venue).Website }).
		SearchField("email", "email", func(e any) string { return e.(*Venue).Email })

	r.DefineEntity("Event").
		DirectOwnership(ResourceEvent).
		Reference("Venue", "Venue",
			WithLink(LinkReference(
				func(e *Event) **Venue { return &e.Venue },
				func(e *Event, id int64) { e.VenueID = id },
			)),
			WithCarry(CarryFK(
				func(e *Event) **Venue { return &e.Venue },
				func(e *Event) int64 { return e.VenueID },
				func(e *Event, id int64) { e.VenueID = id },
			)),
		).
		Collection("Organizers", "User",
			WithLink(LinkCollection(func(e *Event) *[]*User { return &e.Organizers })),
			WithSync(SyncJoin(
				func(e *Event) []*User { return e.Organizers },
				func(e *Event, u *User) EventOrganizer { return EventOrganizer{EventID: e.ID, UserID: u.ID} },
				func(q *bun.DeleteQuery, e *Event) *bun.DeleteQuery { return q.Where("event_id = ?", e.ID) },
			)),
		).
		Collection("Attendees", "User",
			WithLink(LinkCollection(func(e *Event) *[]*User { return &e.Attendees })),
			WithSync(SyncJoin(
				func(e *Event) []*User { return e.Attendees },
				func(e *Event, u *User) EventAttendee { return EventAttendee{EventID: e.ID, UserID: u.ID} },
				func(q *bun.DeleteQuery, e *Event) *bun.DeleteQuery { return q.Where("event_id = ?", e.ID) },
			)),
		).
		CascadeFrom("Venue", "Venue", 10, OwnerColumn("events", "venue_id")).
		CascadeMembers("Organizers", 20, MemberJoin("event_organizers", "event_id", "user_id")).
		SearchField("name", "name", func(e any) string { return e.(*Event).Name }).
		SearchField("description", "description", func(e any) string { return e.(*Event).Description })

	r.DefineEntity("Artist").
		DirectOwnership(ResourceArtist).
		Collection("Members", "User",
			WithLink(LinkCollection(func(a *Artist) *[]*User { return &a.Members })),
			WithSync(SyncJoin(
				func(a *Artist) []*User { return a.Members },
				func(a *Artist, u *User) ArtistMember { return ArtistMember{ArtistID: a.ID, UserID: u.ID} },
				func(q *bun.DeleteQuery, a *Artist) *bun.DeleteQuery { return q.Where("artist_id = ?", a.ID) },
			)),
		).
		CascadeMembers("Members", 10, MemberJoin("artist_members", "artist_id", "user_id")).
		SearchField("name", "name", func(e any) string { return e.(*Artist).Name }).
		SearchField("description", "description", func(e any) string { return e.(*Artist).Description })

	r.DefineEntity("Tour").
		DirectOwnership(ResourceTour).
		Collection("Shows", "Event",
			WithLink(LinkCollection(func(t *Tour) *[]*Event { return &t.Shows })),
			WithSync(SyncJoin(
				func(t *Tour) []*Event { return t.Shows },
				func(t *Tour, e *Event) TourShow { return TourShow{TourID: t.ID, EventID: e.ID} },
				func(q *bun.DeleteQuery, t *Tour) *bun.DeleteQuery { return q.Where("tour_id = ?", t.ID) },
			)),
		).
		Collection("Artists", "User",
			WithLink(LinkCollection(func(t *Tour) *[]*User { return &t.Artists })),
			WithSync(SyncJoin(
				func(t *Tour) []*User { return t.Artists },
				func(t *Tour, u *User) TourArtist { return TourArtist{TourID: t.ID, UserID: u.ID} },
				func(q *bun.DeleteQuery, t *Tour) *bun.DeleteQuery { return q.Where("tour_id = ?", t.ID) },
			)),
		).
		CascadeMembers("Artists", 10, MemberJoin("tour_artists", "tour_id", "user_id")).
		SearchField("name", "name", func(e any) string { return e.(*Tour).Name }).
		SearchField("description", "description", func(e any) string { return e.(*Tour).Description }).
		SearchField("startcity", "start_city", func(e any) string { return e.(*Tour).StartCity }).
		SearchField("endcity", "end_city", func(e any) string { return e.(*Tour).EndCity }).
		SearchField("sponsor", "sponsor", func(e any) string { return e.(*Tour).Sponsor })

	r.DefineEntity("Song").
		Collection("RequiredInstruments", "Instrument",
			WithLink(LinkCollection(func(s *Song) *[]*Instrument { return &s.RequiredInstruments })),
			WithSync(SyncJoin(
				func(s *Song) []*Instrument { return s.RequiredInstruments },
				func(s *Song, i *Instrument) SongRequiredInstrument {
					return SongRequiredInstrument{SongID: s.ID, InstrumentID: i.ID}
				},
				func(q *bun.DeleteQuery, s *Song) *bun.DeleteQuery { return q.Where("song_id = ?", s.ID) },
			)),
		).
		Collection("OptionalInstruments", "Instrument",
			WithLink(LinkCollection(func(s *Song) *[]*Instrument { return &s.OptionalInstruments })),
			WithSync(SyncJoin(
				func(s *Song) []*Instrument { return s.OptionalInstruments },
				func(s *Song, i *Instrument) SongOptionalInstrument {
					return SongOptionalInstrument{SongID: s.ID, InstrumentID: i.ID}
				},
				func(q *bun.DeleteQuery, s *Song) *bun.DeleteQuery { return q.Where("song_id = ?", s.ID) },
			)),
		).
		SearchField("name", "name", func(e any) string { return e.(*Song).Name }).
		SearchField("artist", "artist", func(e any) string { return e.(*Song).Artist }).
		SearchField("album", "album", func(e any) string { return e.(*Song).Album })

	r.DefineEntity("InstrumentCategory").
		Collection("Instruments", "Instrument").
		SearchField("name", "name", func(e any) string { return e.(*InstrumentCategory).Name })

	r.DefineEntity("Instrument").
		Reference("Category", "InstrumentCategory",
			WithLink(LinkReference(
				func(i *Instrument) **InstrumentCategory { return &i.Category },
				func(i *Instrument, id int64) { i.CategoryID = id },
			)),
			WithCarry(CarryFK(
				func(i *Instrument) **InstrumentCategory { return &i.Category },
				func(i *Instrument) int64 { return i.CategoryID },
				func(i *Instrument, id int64) { i.CategoryID = id },
			)),
		).
		SearchField("name", "name", func(e any) string { return e.(*Instrument).Name })

	r.DefineEntity("Budget").
		Reference("Tour", "Tour",
			WithLink(LinkReference(
				func(b *Budget) **Tour { return &b.Tour },
				func(b *Budget, id int64) { b.TourID = id },
			)),
			WithCarry(CarryFK(
				func(b *Budget) **Tour { return &b.Tour },
				func(b *Budget) int64 { return b.TourID },
				func(b *Budget, id int64) { b.TourID = id },
			)),
		).
		Reference("Event", "Event",
			WithLink(LinkReference(
				func(b *Budget) **Event { return &b.Event },
				func(b *Budget, id int64) { b.EventID = id },
			)),
			WithCarry(CarryFK(
				func(b *Budget) **Event { return &b.Event },
				func(b *Budget) int64 { return b.EventID },
				func(b *Budget, id int64) { b.EventID = id },
			)),
		).
		Reference("Artist", "Artist",
			WithLink(LinkReference(
				func(b *Budget) **Artist { return &b.Artist },
				func(b *Budget, id int64) { b.ArtistID = id },
			)),
			WithCarry(CarryFK(
				func(b *Budget) **Artist { return &b.Artist },
				func(b *Budget) int64 { return b.ArtistID },
				func(b *Budget, id int64) { b.ArtistID = id },
			)),
		).
		Reference("Venue", "Venue",
			WithLink(LinkReference(
				func(b *Budget) **Venue { return &b.Venue },
				func(b *Budget, id int64) { b.VenueID = id },
			)),
			WithCarry(CarryFK(
				func(b *Budget) **Venue { return &b.Venue },
				func(b *Budget) int64 { return b.VenueID },
				func(b *Budget, id int64) { b.VenueID = id },
			)),
		).
		Collection("Expenses", "Expense").
		CascadeFrom("Artist", "Artist", 10, OwnerColumn("budgets", "artist_id")).
		CascadeFrom("Venue", "Venue", 20, OwnerColumn("budgets", "venue_id")).
		SearchField("name", "name", func(e any) string { return e.(*Budget).Name }).
		SearchField("description", "description", func(e any) string { return e.(*Budget).Description })

	r.DefineEntity("Expense").
		Reference("Budget", "Budget",
			WithLink(LinkReference(
				func(x *Expense) **Budget { return &x.Budget },
				func(x *Expense, id int64) { x.BudgetID = id },
			)),
			WithCarry(CarryFK(
				func(x *Expense) **Budget { return &x.Budget },
				func(x *Expense) int64 { return x.BudgetID },
				func(x *Expense, id int64) { x.BudgetID = id },
			)),
		).
		Reference("SubmittedBy", "User",
			WithLink(LinkReference(
				func(x *Expense) **User { return &x.SubmittedBy },
				func(x *Expense, id int64) { x.SubmittedByID = id },
			)),
			WithCarry(CarryFK(
				func(x *Expense) **User { return &x.SubmittedBy },
				func(x *Expense) int64 { return x.SubmittedByID },
				func(x *Expense, id int64) { x.SubmittedByID = id },
			)),
		).
		Reference("ApprovedBy", "User",
			WithLink(LinkReference(
				func(x *Expense) **User { return &x.ApprovedBy },
				func(x *Expense, id int64) { x.ApprovedByID = id },
			)),
			WithCarry(CarryFK(
				func(x *Expense) **User { return &x.ApprovedBy },
				func(x *Expense) int64 { return x.ApprovedByID },
				func(x *Expense, id int64) { x.ApprovedByID = id },
			)),
		).
		CascadeOwner("SubmittedBy", 10, OwnerColumn("expenses", "submitted_by_user_id"), CascadeRequired()).
		SearchField("name", "name", func(e any) string { return e.(*Expense).Name }).
		SearchField("description", "description", func(e any) string { return e.(*Expense).Description }).
		SearchField("category", "category", func(e any) string { return e.(*Expense).Category }).
		SearchField("vendor", "vendor", func(e any) string { return e.(*Expense).Vendor }).
		SearchField("status", "status", func(e any) string { return string(e.(*Expense).Status) })

	return r
}
