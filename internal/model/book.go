package model

import "time"

type Book struct {
	ID              int64     `json:"id"`
	ISBN            string    `json:"isbn"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Publisher       *string   `json:"publisher"`
	PublishedDate   *string   `json:"publishedDate"`
	Genre           *string   `json:"genre"`
	Description     *string   `json:"description"`
	TotalCopies     int       `json:"totalCopies"`
	AvailableCopies int       `json:"availableCopies"`
	IsAvailable     bool      `json:"isAvailable"`
	Location        *string   `json:"location"`
	Version         int       `json:"version"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

const (
	BookFieldPublisher     = "publisher"
	BookFieldPublishedDate = "publishedDate"
	BookFieldGenre         = "genre"
	BookFieldDescription   = "description"
	BookFieldLocation      = "location"
)

// ClearableBookFields are the optional book fields an update may reset to null.
var ClearableBookFields = []string{
	BookFieldPublisher,
	BookFieldPublishedDate,
	BookFieldGenre,
	BookFieldDescription,
	BookFieldLocation,
}

// BookChanges is the set of columns an update writes. Nil fields are left untouched;
// the inventory fields are always written because they are recomputed on every update.
// Clear names optional fields to reset to null.
type BookChanges struct {
	ISBN            *string
	Title           *string
	Author          *string
	Publisher       *string
	PublishedDate   *string
	Genre           *string
	Description     *string
	Location        *string
	TotalCopies     int
	AvailableCopies int
	IsAvailable     bool
	UpdatedAt       time.Time
	Clear           []string
}

// Apply returns a copy of b with the changes written and the version bumped.
func (c BookChanges) Apply(b Book) Book {
	setIfPresent(&b.ISBN, c.ISBN)
	setIfPresent(&b.Title, c.Title)
	setIfPresent(&b.Author, c.Author)
	setOptional(&b.Publisher, c.Publisher)
	setOptional(&b.PublishedDate, c.PublishedDate)
	setOptional(&b.Genre, c.Genre)
	setOptional(&b.Description, c.Description)
	setOptional(&b.Location, c.Location)
	for _, field := range c.Clear {
		switch field {
		case BookFieldPublisher:
			b.Publisher = nil
		case BookFieldPublishedDate:
			b.PublishedDate = nil
		case BookFieldGenre:
			b.Genre = nil
		case BookFieldDescription:
			b.Description = nil
		case BookFieldLocation:
			b.Location = nil
		}
	}
	b.TotalCopies = c.TotalCopies
	b.AvailableCopies = c.AvailableCopies
	b.IsAvailable = c.IsAvailable
	b.UpdatedAt = c.UpdatedAt
	b.Version++
	return b
}

func setIfPresent(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setOptional(dst **string, src *string) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

type DeleteBookResponse struct {
	Message string `json:"message"`
}
