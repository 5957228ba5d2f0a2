package domain

// Represents a named location users can pick instead of sharing GPS.
type Place struct {
	Name        string
	Country     string
	Coordinates Coordinates
}
