package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bookhub/internal/microservices/http-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memoryDB is an in-process backing store for development and tests. One mutex
// guards every table so each repository call is atomic.
type memoryDB struct {
	mu          sync.Mutex
	users       map[string]models.User
	authors     map[string]models.Author
	collections map[string]models.Collection
	books       map[int64]models.Book
	saved       map[string][]int64
	now         func() time.Time
}

// NewMemoryStore returns a Store whose repositories share one in-memory database.
func NewMemoryStore() *Store {
	db := &memoryDB{
		users:       map[string]models.User{},
		authors:     map[string]models.Author{},
		collections: map[string]models.Collection{},
		books:       map[int64]models.Book{},
		saved:       map[string][]int64{},
		now:         time.Now,
	}
	return &Store{
		Users:       memoryUsers{db},
		Authors:     memoryAuthors{db},
		Collections: memoryCollections{db},
		Books:       memoryBooks{db},
		Saved:       memorySaved{db},
	}
}

func notFound(entity string) error {
	return translate(gorm.ErrRecordNotFound, entity, "find")
}

func duplicate(entity string) error {
	return translate(gorm.ErrDuplicatedKey, entity, "create")
}

type memoryUsers struct{ db *memoryDB }

func (r memoryUsers) Create(ctx context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Login == user.Login || u.Email == user.Email {
			return duplicate("user")
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if _, ok := r.db.users[user.ID]; ok {
		return duplicate("user")
	}
	if user.Role == "" {
		user.Role = models.RoleReader
	}
	now := r.db.now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.db.users[user.ID] = *user
	return nil
}

func (r memoryUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &u, nil
}

func (r memoryUsers) find(match func(models.User) bool) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (r memoryUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r memoryUsers) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Login == login })
}

func (r memoryUsers) ExistsByEmailOrLogin(ctx context.Context, email, login string) (bool, error) {
	_, err := r.find(func(u models.User) bool { return u.Email == email || u.Login == login })
	return err == nil, nil
}

type memoryAuthors struct{ db *memoryDB }

func (r memoryAuthors) Create(ctx context.Context, a *models.Author) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.authors {
		if existing.Name == a.Name {
			return duplicate("author")
		}
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if _, ok := r.db.authors[a.ID]; ok {
		return duplicate("author")
	}
	a.CreatedAt = r.db.now()
	r.db.authors[a.ID] = *a
	return nil
}

func (r memoryAuthors) FindByID(ctx context.Context, id string) (*models.Author, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.authors[id]
	if !ok {
		return nil, notFound("author")
	}
	return &a, nil
}

func (r memoryAuthors) FindByName(ctx context.Context, name string) (*models.Author, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.authors {
		if a.Name == name {
			return &a, nil
		}
	}
	return nil, notFound("author")
}

func (r memoryAuthors) FindByIDs(ctx context.Context, ids []string) ([]models.Author, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var list []models.Author
	for _, id := range ids {
		if a, ok := r.db.authors[id]; ok {
			list = append(list, a)
		}
	}
	return list, nil
}

func (r memoryAuthors) List(ctx context.Context) ([]models.Author, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	list := make([]models.Author, 0, len(r.db.authors))
	for _, a := range r.db.authors {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

type memoryCollections struct{ db *memoryDB }

func (r memoryCollections) Create(ctx context.Context, c *models.Collection) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.collections {
		if existing.Title == c.Title {
			return duplicate("collection")
		}
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if _, ok := r.db.collections[c.ID]; ok {
		return duplicate("collection")
	}
	c.CreatedAt = r.db.now()
	r.db.collections[c.ID] = *c
	return nil
}

func (r memoryCollections) FindByID(ctx context.Context, id string) (*models.Collection, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.collections[id]
	if !ok {
		return nil, notFound("collection")
	}
	return &c, nil
}

func (r memoryCollections) FindByTitle(ctx context.Context, title string) (*models.Collection, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.collections {
		if c.Title == title {
			return &c, nil
		}
	}
	return nil, notFound("collection")
}

func (r memoryCollections) FindByIDs(ctx context.Context, ids []string) ([]models.Collection, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var list []models.Collection
	for _, id := range ids {
		if c, ok := r.db.collections[id]; ok {
			list = append(list, c)
		}
	}
	return list, nil
}

func (r memoryCollections) List(ctx context.Context) ([]models.Collection, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	list := make([]models.Collection, 0, len(r.db.collections))
	for _, c := range r.db.collections {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Title < list[j].Title })
	return list, nil
}

type memoryBooks struct{ db *memoryDB }

func (r memoryBooks) Create(ctx context.Context, b *models.Book) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.books[b.ID]; ok {
		return duplicate("book")
	}
	now := r.db.now()
	b.CreatedAt, b.UpdatedAt = now, now
	r.db.books[b.ID] = b.Clone()
	return nil
}

func (r memoryBooks) FindByID(ctx context.Context, id int64) (*models.Book, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b, ok := r.db.books[id]
	if !ok {
		return nil, notFound("book")
	}
	b = b.Clone()
	return &b, nil
}

// filter returns matching books ordered by id; limit <= 0 means no limit.
func (r memoryBooks) filter(match func(*models.Book) bool, limit int) []models.Book {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	list := make([]models.Book, 0)
	for _, b := range r.db.books {
		if match(&b) {
			list = append(list, b.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

func (r memoryBooks) FindByIDs(ctx context.Context, ids []int64) ([]models.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	return r.filter(func(b *models.Book) bool {
		_, ok := want[b.ID]
		return ok
	}, 0), nil
}

func (r memoryBooks) List(ctx context.Context, filter BookFilter) ([]models.Book, error) {
	return r.filter(func(b *models.Book) bool {
		return filter.Flag == "" || b.HasFlag(filter.Flag)
	}, filter.Limit), nil
}

func (r memoryBooks) ListByAuthor(ctx context.Context, authorID string) ([]models.Book, error) {
	return r.filter(func(b *models.Book) bool { return b.AuthorID == authorID }, 0), nil
}

func (r memoryBooks) ListByCollection(ctx context.Context, collectionID string) ([]models.Book, error) {
	return r.filter(func(b *models.Book) bool {
		return b.CollectionID != nil && *b.CollectionID == collectionID
	}, 0), nil
}

func (r memoryBooks) SearchByTitle(ctx context.Context, query string) ([]models.Book, error) {
	if query == "" {
		return []models.Book{}, nil
	}
	q := strings.ToLower(query)
	return r.filter(func(b *models.Book) bool {
		return strings.Contains(strings.ToLower(b.Title), q)
	}, 0), nil
}

func (r memoryBooks) FindSimilar(ctx context.Context, genre string, excludeID int64, limit int) ([]models.Book, error) {
	return r.filter(func(b *models.Book) bool {
		return b.Genre == genre && b.ID != excludeID
	}, limit), nil
}

func (r memoryBooks) Save(ctx context.Context, b *models.Book) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.books[b.ID]
	if !ok {
		return notFound("book")
	}
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = r.db.now()
	r.db.books[b.ID] = b.Clone()
	return nil
}

func (r memoryBooks) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.books[id]; !ok {
		return notFound("book")
	}
	delete(r.db.books, id)
	return nil
}

type memorySaved struct{ db *memoryDB }

func (r memorySaved) Add(ctx context.Context, userID string, bookID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range r.db.saved[userID] {
		if id == bookID {
			return nil
		}
	}
	r.db.saved[userID] = append(r.db.saved[userID], bookID)
	return nil
}

func (r memorySaved) Remove(ctx context.Context, userID string, bookID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ids := r.db.saved[userID]
	for i, id := range ids {
		if id == bookID {
			r.db.saved[userID] = append(ids[:i:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r memorySaved) ListBookIDs(ctx context.Context, userID string) ([]int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return append([]int64(nil), r.db.saved[userID]...), nil
}
