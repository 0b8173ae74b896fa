package model

// Cinema is a venue of the chain as returned by GET /cinemas/.  The
// storefront never mutates cinemas; they are read-only backend data.
//
// Fields:
//  ID       – backend identifier.
//  Name     – display name ("Galaxy Nguyen Du").
//  Address  – street address, may be empty.
//  Province – province or city used by the province filter.
type Cinema struct {
	ID       int64  `json:"id"`                 // cinemas.id
	Name     string `json:"name"`               // cinemas.name
	Address  string `json:"address,omitempty"`  // cinemas.address (nullable)
	Province string `json:"province,omitempty"` // cinemas.province (nullable)
}

// CinemaRef is the cinema fragment embedded in booking details.
type CinemaRef struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}
