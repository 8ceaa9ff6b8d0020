// Package memory holds map-backed implementations of the repository contracts. They
// mirror the PostgreSQL repositories' error semantics and are used to exercise the
// services and HTTP layer without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-library-backend/internal/model"
)

type Store struct {
	mu       sync.Mutex
	students map[int64]model.Student
	staff    map[int64]model.Staff
	books    map[int64]model.Book
	audit    []model.AuditEntry
	nextID   map[string]int64
}

func NewStore() *Store {
	return &Store{
		students: map[int64]model.Student{},
		staff:    map[int64]model.Staff{},
		books:    map[int64]model.Book{},
		nextID:   map[string]int64{},
	}
}

func (s *Store) Students() *StudentRepository {
	return &StudentRepository{store: s}
}

func (s *Store) Staff() *StaffRepository {
	return &StaffRepository{store: s}
}

func (s *Store) Books() *BookRepository {
	return &BookRepository{store: s}
}

func (s *Store) Audit() *AuditRepository {
	return &AuditRepository{store: s}
}

// id hands out per-table sequences, like a serial column.
func (s *Store) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

func sameEmail(a string, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

type StudentRepository struct {
	store *Store
}

func (r *StudentRepository) FindActiveByEmail(_ context.Context, email string) (model.Student, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, id := range sortedKeys(r.store.students) {
		st := r.store.students[id]
		if st.IsActive && sameEmail(st.Email, email) {
			return st, nil
		}
	}
	return model.Student{}, model.ErrUserNotFound
}

func (r *StudentRepository) FindActiveByID(_ context.Context, id int64) (model.Student, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	st, ok := r.store.students[id]
	if !ok || !st.IsActive {
		return model.Student{}, model.ErrUserNotFound
	}
	return st, nil
}

func (r *StudentRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, st := range r.store.students {
		if sameEmail(st.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *StudentRepository) Create(_ context.Context, s *model.Student) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.students {
		if sameEmail(existing.Email, s.Email) {
			return model.ErrEmailTaken
		}
		if existing.StudentID == s.StudentID {
			return model.ErrExternalIDTaken
		}
	}

	now := time.Now().UTC()
	s.ID = r.store.id("students")
	s.CreatedAt = now
	s.UpdatedAt = now
	r.store.students[s.ID] = *s
	return nil
}

func (r *StudentRepository) SetActive(_ context.Context, email string, active bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, st := range r.store.students {
		if sameEmail(st.Email, email) {
			st.IsActive = active
			st.UpdatedAt = time.Now().UTC()
			r.store.students[id] = st
			return nil
		}
	}
	return model.ErrUserNotFound
}

type StaffRepository struct {
	store *Store
}

func (r *StaffRepository) FindActiveByEmail(_ context.Context, email string) (model.Staff, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, id := range sortedKeys(r.store.staff) {
		st := r.store.staff[id]
		if st.IsActive && sameEmail(st.Email, email) {
			return st, nil
		}
	}
	return model.Staff{}, model.ErrUserNotFound
}

func (r *StaffRepository) FindActiveByID(_ context.Context, id int64) (model.Staff, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	st, ok := r.store.staff[id]
	if !ok || !st.IsActive {
		return model.Staff{}, model.ErrUserNotFound
	}
	return st, nil
}

func (r *StaffRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, st := range r.store.staff {
		if sameEmail(st.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *StaffRepository) Create(_ context.Context, s *model.Staff) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.staff {
		if sameEmail(existing.Email, s.Email) {
			return model.ErrEmailTaken
		}
		if existing.StaffID == s.StaffID {
			return model.ErrExternalIDTaken
		}
	}

	now := time.Now().UTC()
	s.ID = r.store.id("staff")
	s.CreatedAt = now
	s.UpdatedAt = now
	r.store.staff[s.ID] = *s
	return nil
}

func (r *StaffRepository) SetActive(_ context.Context, email string, active bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, st := range r.store.staff {
		if sameEmail(st.Email, email) {
			st.IsActive = active
			st.UpdatedAt = time.Now().UTC()
			r.store.staff[id] = st
			return nil
		}
	}
	return model.ErrUserNotFound
}

type BookRepository struct {
	store *Store
}

func (r *BookRepository) List(_ context.Context) ([]model.Book, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	books := make([]model.Book, 0, len(r.store.books))
	for _, id := range sortedKeys(r.store.books) {
		books = append(books, r.store.books[id])
	}
	return books, nil
}

func (r *BookRepository) FindByID(_ context.Context, id int64) (model.Book, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.books[id]
	if !ok {
		return model.Book{}, model.ErrBookNotFound
	}
	return b, nil
}

func (r *BookRepository) ExistsByISBN(_ context.Context, isbn string, excludeID int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.isbnTakenLocked(isbn, excludeID), nil
}

func (r *BookRepository) Create(_ context.Context, b *model.Book) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.isbnTakenLocked(b.ISBN, 0) {
		return model.ErrDuplicateISBN
	}

	now := time.Now().UTC()
	b.ID = r.store.id("books")
	b.Version = 1
	b.CreatedAt = now
	b.UpdatedAt = now
	r.store.books[b.ID] = *b
	return nil
}

func (r *BookRepository) Update(_ context.Context, id int64, expectedVersion int, changes model.BookChanges) (model.Book, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.books[id]
	if !ok {
		return model.Book{}, model.ErrBookNotFound
	}
	if current.Version != expectedVersion {
		return model.Book{}, model.ErrVersionConflict
	}
	if changes.ISBN != nil && r.isbnTakenLocked(*changes.ISBN, id) {
		return model.Book{}, model.ErrDuplicateISBN
	}

	updated := changes.Apply(current)
	r.store.books[id] = updated
	return updated, nil
}

func (r *BookRepository) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.books[id]; !ok {
		return model.ErrBookNotFound
	}
	delete(r.store.books, id)
	return nil
}

func (r *BookRepository) isbnTakenLocked(isbn string, excludeID int64) bool {
	for id, b := range r.store.books {
		if id != excludeID && b.ISBN == isbn {
			return true
		}
	}
	return false
}

type AuditRepository struct {
	store *Store
}

func (r *AuditRepository) Log(_ context.Context, entry model.AuditEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	entry.ID = r.store.id("audit_entries")
	r.store.audit = append(r.store.audit, entry)
	return nil
}

// Query supports the same filters as the PostgreSQL repository except the time range.
func (r *AuditRepository) Query(_ context.Context, query model.AuditQuery) ([]model.AuditEntry, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	matched := make([]model.AuditEntry, 0)
	for i := len(r.store.audit) - 1; i >= 0; i-- {
		e := r.store.audit[i]
		if query.Action != "" && !strings.EqualFold(e.Action, query.Action) {
			continue
		}
		if query.ActorID != 0 && e.Actor.ID != query.ActorID {
			continue
		}
		if query.ActorType != "" && !strings.EqualFold(string(e.Actor.Type), query.ActorType) {
			continue
		}
		if query.Status != "" && !strings.EqualFold(e.Status, query.Status) {
			continue
		}
		if query.Resource != "" && !strings.Contains(strings.ToLower(e.Resource), strings.ToLower(query.Resource)) {
			continue
		}
		matched = append(matched, e)
	}

	total := len(matched)
	start := (query.Page - 1) * query.Limit
	if start > total {
		start = total
	}
	end := start + query.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
