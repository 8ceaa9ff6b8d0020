package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-library-backend/internal/model"
	"go-library-backend/pkg/apierror"
	"go-library-backend/pkg/validator"
)

const defaultTotalCopies = 1

type bookStore interface {
	List(ctx context.Context) ([]model.Book, error)
	FindByID(ctx context.Context, id int64) (model.Book, error)
	ExistsByISBN(ctx context.Context, isbn string, excludeID int64) (bool, error)
	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, id int64, expectedVersion int, changes model.BookChanges) (model.Book, error)
	Delete(ctx context.Context, id int64) error
}

type auditRecorder interface {
	Record(ctx context.Context, entry model.AuditEntry)
}

type BookService struct {
	books    bookStore
	audit    auditRecorder
	validate *validator.Validator
	now      func() time.Time
}

func NewBookService(books bookStore, audit auditRecorder) *BookService {
	return &BookService{
		books:    books,
		audit:    audit,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *BookService) List(ctx context.Context) ([]model.Book, error) {
	books, err := s.books.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (s *BookService) Get(ctx context.Context, id int64) (model.Book, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return model.Book{}, mapBookError(err, id, "")
	}
	return book, nil
}

// Create stores a new book with every copy on the shelf.
func (s *BookService) Create(ctx context.Context, actor model.AuditActor, req model.CreateBookRequest) (model.Book, error) {
	req.ISBN = strings.TrimSpace(req.ISBN)
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if err := s.validate.Struct(req); err != nil {
		return model.Book{}, err
	}

	resource := "isbn:" + req.ISBN

	taken, err := s.books.ExistsByISBN(ctx, req.ISBN, 0)
	if err != nil {
		return model.Book{}, fmt.Errorf("check isbn: %w", err)
	}
	if taken {
		err := duplicateISBN(req.ISBN)
		s.recordFailure(ctx, model.AuditActionBookCreate, actor, resource, err)
		return model.Book{}, err
	}

	total := defaultTotalCopies
	if req.TotalCopies != nil {
		total = *req.TotalCopies
	}

	book := model.Book{
		ISBN:            req.ISBN,
		Title:           req.Title,
		Author:          req.Author,
		Publisher:       req.Publisher,
		PublishedDate:   req.PublishedDate,
		Genre:           req.Genre,
		Description:     req.Description,
		TotalCopies:     total,
		AvailableCopies: total,
		IsAvailable:     true,
		Location:        req.Location,
	}

	if err := s.books.Create(ctx, &book); err != nil {
		err = mapBookError(err, 0, req.ISBN)
		s.recordFailure(ctx, model.AuditActionBookCreate, actor, resource, err)
		return model.Book{}, err
	}

	s.record(ctx, model.AuditEntry{
		Action:   model.AuditActionBookCreate,
		Actor:    actor,
		Status:   model.AuditStatusSuccess,
		Resource: bookResource(book.ID),
		After:    book,
	})

	return book, nil
}

// Update applies a partial patch. The write only lands if the row still carries the
// version read at the start, so a concurrent writer turns this call into a Conflict
// instead of being silently overwritten.
func (s *BookService) Update(ctx context.Context, actor model.AuditActor, id int64, req model.UpdateBookRequest) (model.Book, error) {
	req.ISBN = trimmed(req.ISBN)
	req.Title = trimmed(req.Title)
	req.Author = trimmed(req.Author)
	if err := s.validate.Struct(req); err != nil {
		return model.Book{}, err
	}

	resource := bookResource(id)

	current, err := s.books.FindByID(ctx, id)
	if err != nil {
		err = mapBookError(err, id, "")
		s.recordFailure(ctx, model.AuditActionBookUpdate, actor, resource, err)
		return model.Book{}, err
	}

	if req.Version != nil && *req.Version != current.Version {
		err := apierror.Conflict("book version mismatch",
			fmt.Sprintf("expected version %d, current version is %d", *req.Version, current.Version))
		s.recordFailure(ctx, model.AuditActionBookUpdate, actor, resource, err)
		return model.Book{}, err
	}

	if req.ISBN != nil {
		isbn := *req.ISBN
		if isbn != current.ISBN {
			taken, err := s.books.ExistsByISBN(ctx, isbn, id)
			if err != nil {
				return model.Book{}, fmt.Errorf("check isbn: %w", err)
			}
			if taken {
				err := duplicateISBN(isbn)
				s.recordFailure(ctx, model.AuditActionBookUpdate, actor, resource, err)
				return model.Book{}, err
			}
		}
	}

	changes, err := planInventory(current, req)
	if err != nil {
		s.recordFailure(ctx, model.AuditActionBookUpdate, actor, resource, err)
		return model.Book{}, err
	}
	changes.UpdatedAt = s.now()

	updated, err := s.books.Update(ctx, id, current.Version, changes)
	if err != nil {
		err = mapBookError(err, id, derefString(req.ISBN))
		s.recordFailure(ctx, model.AuditActionBookUpdate, actor, resource, err)
		return model.Book{}, err
	}

	s.record(ctx, model.AuditEntry{
		Action:   model.AuditActionBookUpdate,
		Actor:    actor,
		Status:   model.AuditStatusSuccess,
		Resource: resource,
		Before:   current,
		After:    updated,
	})

	return updated, nil
}

func (s *BookService) Remove(ctx context.Context, actor model.AuditActor, id int64) (model.DeleteBookResponse, error) {
	resource := bookResource(id)

	current, err := s.books.FindByID(ctx, id)
	if err == nil {
		err = s.books.Delete(ctx, id)
	}
	if err != nil {
		err = mapBookError(err, id, "")
		s.recordFailure(ctx, model.AuditActionBookDelete, actor, resource, err)
		return model.DeleteBookResponse{}, err
	}

	s.record(ctx, model.AuditEntry{
		Action:   model.AuditActionBookDelete,
		Actor:    actor,
		Status:   model.AuditStatusSuccess,
		Resource: resource,
		Before:   current,
	})

	return model.DeleteBookResponse{Message: fmt.Sprintf("Book with ID %d has been deleted", id)}, nil
}

// planInventory merges the patch with the current record and enforces the stock rules:
// available never exceeds total, and availability follows stock unless the patch pins it.
func planInventory(current model.Book, req model.UpdateBookRequest) (model.BookChanges, error) {
	total := current.TotalCopies
	if req.TotalCopies != nil {
		total = *req.TotalCopies
	}

	available := current.AvailableCopies
	if req.AvailableCopies != nil {
		available = *req.AvailableCopies
	}

	if available > total {
		return model.BookChanges{}, apierror.BadRequest("Available copies cannot exceed total copies",
			fmt.Sprintf("availableCopies %d > totalCopies %d", available, total))
	}

	isAvailable := available > 0
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	return model.BookChanges{
		ISBN:            req.ISBN,
		Title:           req.Title,
		Author:          req.Author,
		Publisher:       req.Publisher,
		PublishedDate:   req.PublishedDate,
		Genre:           req.Genre,
		Description:     req.Description,
		Location:        req.Location,
		TotalCopies:     total,
		AvailableCopies: available,
		IsAvailable:     isAvailable,
		Clear:           req.Cleared,
	}, nil
}

func (s *BookService) record(ctx context.Context, entry model.AuditEntry) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, entry)
}

func (s *BookService) recordFailure(ctx context.Context, action string, actor model.AuditActor, resource string, err error) {
	s.record(ctx, model.AuditEntry{
		Action:   action,
		Actor:    actor,
		Status:   model.AuditStatusFailed,
		Resource: resource,
		Error:    err.Error(),
	})
}

func mapBookError(err error, id int64, isbn string) error {
	switch {
	case errors.Is(err, model.ErrBookNotFound):
		return apierror.NotFound(fmt.Sprintf("Book with ID %d not found", id), "")
	case errors.Is(err, model.ErrDuplicateISBN):
		return duplicateISBN(isbn)
	case errors.Is(err, model.ErrVersionConflict):
		return apierror.Conflict("book was modified concurrently", bookResource(id))
	default:
		var apiErr *apierror.APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return fmt.Errorf("book store: %w", err)
	}
}

func duplicateISBN(isbn string) error {
	return apierror.Conflict(fmt.Sprintf("Book with ISBN %s already exists", isbn), "")
}

func bookResource(id int64) string {
	return fmt.Sprintf("book:%d", id)
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
