package model

import "time"

// Movie is a row of the read-mostly `movies` catalog table. Genres is
// stored as a comma-separated list; the repository filters on it with
// FIND_IN_SET so a movie can belong to several categories.
type Movie struct {
	ID        string    // movies.id
	Title     string    // movies.title
	Plot      string    // movies.plot
	Genres    string    // movies.genres (comma separated)
	Year      int       // movies.year
	Poster    string    // movies.poster (URL, may be empty)
	CreatedAt time.Time // movies.created_at
}
