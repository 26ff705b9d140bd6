package domain

// Anime is the single resource managed by the service.
type Anime struct {
	ID   int64  // Unique identifier, assigned by the store on creation
	Name string // Title, required
}
