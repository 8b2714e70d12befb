package dto

import (
	"strings"
	"time"

	"bookhub/internal/microservices/http-api/models"
)

// CreateBookRequest used for POST /api/books and the admin add-book form.
// Author is an existing author id; AuthorName is looked up or created instead.
// Collection is an existing collection id; CollectionTitle is looked up or created.
type CreateBookRequest struct {
	ID              int64    `json:"id" validate:"required,gt=0"`
	Title           string   `json:"title" validate:"required,min=3"`
	Author          string   `json:"author" validate:"required_without=AuthorName"`
	AuthorName      string   `json:"authorName,omitempty"`
	Collection      string   `json:"collection,omitempty"`
	CollectionTitle string   `json:"collectionTitle,omitempty"`
	Genre           string   `json:"genre,omitempty"`
	Image           string   `json:"image" validate:"required"`
	Tags            []string `json:"tags,omitempty"`
	Release         string   `json:"release,omitempty"`
	Score           string   `json:"score" validate:"required"`
	Description     string   `json:"description,omitempty"`
	IsNewUpdate     bool     `json:"isNewUpdate"`
	IsBeingRead     bool     `json:"isBeingRead"`
	IsTrending      bool     `json:"isTrending"`
	IsPopular       bool     `json:"isPopular"`
}

// ToModel copies the plain fields; author and collection ids are resolved by the service.
func (d CreateBookRequest) ToModel() models.Book {
	return models.Book{
		ID:          d.ID,
		Title:       d.Title,
		Genre:       d.Genre,
		Image:       d.Image,
		Tags:        cleanTags(d.Tags),
		Release:     d.Release,
		Score:       d.Score,
		Description: d.Description,
		IsNewUpdate: d.IsNewUpdate,
		IsBeingRead: d.IsBeingRead,
		IsTrending:  d.IsTrending,
		IsPopular:   d.IsPopular,
	}
}

// UpdateBookRequest used for PUT /api/books/:id. An empty field keeps the stored value.
type UpdateBookRequest struct {
	Title       string `json:"title" validate:"omitempty,min=3"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
	Score       string `json:"score"`
	Release     string `json:"release"`
}

// ApplyTo merges the non-empty fields into b. Author is applied by the service after lookup.
func (d UpdateBookRequest) ApplyTo(b *models.Book) {
	if d.Title != "" {
		b.Title = d.Title
	}
	if d.Genre != "" {
		b.Genre = d.Genre
	}
	if d.Description != "" {
		b.Description = d.Description
	}
	if d.Score != "" {
		b.Score = d.Score
	}
	if d.Release != "" {
		b.Release = d.Release
	}
}

// ReplaceBookRequest is the admin edit form: every editable field is overwritten.
// An empty CollectionTitle detaches the book from its collection.
type ReplaceBookRequest struct {
	Title           string   `json:"title" validate:"required,min=3"`
	AuthorName      string   `json:"authorName" validate:"required"`
	CollectionTitle string   `json:"collectionTitle"`
	Genre           string   `json:"genre"`
	Image           string   `json:"image" validate:"required"`
	Tags            []string `json:"tags"`
	Release         string   `json:"release"`
	Score           string   `json:"score" validate:"required"`
	Description     string   `json:"description"`
	IsNewUpdate     bool     `json:"isNewUpdate"`
	IsBeingRead     bool     `json:"isBeingRead"`
	IsTrending      bool     `json:"isTrending"`
	IsPopular       bool     `json:"isPopular"`
}

// ApplyTo overwrites the plain fields of b.
func (d ReplaceBookRequest) ApplyTo(b *models.Book) {
	b.Title = d.Title
	b.Genre = d.Genre
	b.Image = d.Image
	b.Tags = cleanTags(d.Tags)
	b.Release = d.Release
	b.Score = d.Score
	b.Description = d.Description
	b.IsNewUpdate = d.IsNewUpdate
	b.IsBeingRead = d.IsBeingRead
	b.IsTrending = d.IsTrending
	b.IsPopular = d.IsPopular
}

// BookForm is the urlencoded admin form shared by add-book and edit-book.
// Tags arrive comma separated, flags as "true" when the checkbox is ticked.
type BookForm struct {
	ID              int64  `form:"id"`
	Title           string `form:"title"`
	AuthorName      string `form:"authorName"`
	CollectionTitle string `form:"collectionTitle"`
	Genre           string `form:"genre"`
	Image           string `form:"image"`
	Tags            string `form:"tags"`
	Release         string `form:"release"`
	Score           string `form:"score"`
	Description     string `form:"description"`
	IsNewUpdate     bool   `form:"isNewUpdate"`
	IsBeingRead     bool   `form:"isBeingRead"`
	IsTrending      bool   `form:"isTrending"`
	IsPopular       bool   `form:"isPopular"`
}

func (f BookForm) ToCreate() CreateBookRequest {
	return CreateBookRequest{
		ID:              f.ID,
		Title:           f.Title,
		AuthorName:      strings.TrimSpace(f.AuthorName),
		CollectionTitle: strings.TrimSpace(f.CollectionTitle),
		Genre:           f.Genre,
		Image:           f.Image,
		Tags:            SplitTags(f.Tags),
		Release:         f.Release,
		Score:           f.Score,
		Description:     f.Description,
		IsNewUpdate:     f.IsNewUpdate,
		IsBeingRead:     f.IsBeingRead,
		IsTrending:      f.IsTrending,
		IsPopular:       f.IsPopular,
	}
}

func (f BookForm) ToReplace() ReplaceBookRequest {
	return ReplaceBookRequest{
		Title:           f.Title,
		AuthorName:      strings.TrimSpace(f.AuthorName),
		CollectionTitle: strings.TrimSpace(f.CollectionTitle),
		Genre:           f.Genre,
		Image:           f.Image,
		Tags:            SplitTags(f.Tags),
		Release:         f.Release,
		Score:           f.Score,
		Description:     f.Description,
		IsNewUpdate:     f.IsNewUpdate,
		IsBeingRead:     f.IsBeingRead,
		IsTrending:      f.IsTrending,
		IsPopular:       f.IsPopular,
	}
}

// SplitTags turns "a, b,,c" into [a b c].
func SplitTags(s string) []string {
	return cleanTags(strings.Split(s, ","))
}

func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SaveBookRequest used for POST /save-book and POST /api/saved.
type SaveBookRequest struct {
	ID int64 `json:"id" form:"id" binding:"required"`
}

type AuthorView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Biography string `json:"biography,omitempty"`
	Photo     string `json:"photo,omitempty"`
}

type CollectionView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CoverImage  string `json:"cover_image,omitempty"`
}

// BookView is a book with its author and collection resolved.
// Author is nil only when the referenced author has since disappeared.
type BookView struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Author      *AuthorView     `json:"author"`
	Collection  *CollectionView `json:"collection,omitempty"`
	Genre       string          `json:"genre,omitempty"`
	Image       string          `json:"image"`
	Tags        []string        `json:"tags"`
	Release     string          `json:"release,omitempty"`
	Score       string          `json:"score"`
	Description string          `json:"description,omitempty"`
	IsNewUpdate bool            `json:"isNewUpdate"`
	IsBeingRead bool            `json:"isBeingRead"`
	IsTrending  bool            `json:"isTrending"`
	IsPopular   bool            `json:"isPopular"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BookDetail is a single book plus up to five books of the same genre.
type BookDetail struct {
	BookView
	Similar []BookView `json:"similar"`
}

type AuthorPage struct {
	Author AuthorView `json:"author"`
	Books  []BookView `json:"books"`
}

type CollectionPage struct {
	Collection CollectionView `json:"collection"`
	Books      []BookView     `json:"books"`
}

func FromAuthor(a models.Author) AuthorView {
	return AuthorView{ID: a.ID, Name: a.Name, Biography: a.Biography, Photo: a.Photo}
}

func FromCollection(c models.Collection) CollectionView {
	return CollectionView{ID: c.ID, Title: c.Title, Description: c.Description, CoverImage: c.CoverImage}
}

// NewBookView builds the view; author and collection may be nil.
func NewBookView(b models.Book, author *AuthorView, collection *CollectionView) BookView {
	return BookView{
		ID:          b.ID,
		Title:       b.Title,
		Author:      author,
		Collection:  collection,
		Genre:       b.Genre,
		Image:       b.Image,
		Tags:        append(make([]string, 0, len(b.Tags)), b.Tags...),
		Release:     b.Release,
		Score:       b.Score,
		Description: b.Description,
		IsNewUpdate: b.IsNewUpdate,
		IsBeingRead: b.IsBeingRead,
		IsTrending:  b.IsTrending,
		IsPopular:   b.IsPopular,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
