package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-library-backend/internal/model"
)

const bookColumns = `id, isbn, title, author, publisher, published_date, genre, description,
	total_copies, available_copies, is_available, location, version, created_at, updated_at`

type BookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

func (r *BookRepository) List(ctx context.Context) ([]model.Book, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *BookRepository) FindByID(ctx context.Context, id int64) (model.Book, error) {
	b, err := scanBook(r.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Book{}, model.ErrBookNotFound
	}
	if err != nil {
		return model.Book{}, fmt.Errorf("find book by id: %w", err)
	}
	return b, nil
}

// ExistsByISBN reports whether a book other than excludeID owns isbn. Pass 0 to check
// against every book.
func (r *BookRepository) ExistsByISBN(ctx context.Context, isbn string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM books WHERE isbn = $1 AND id <> $2)`,
		isbn, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check isbn exists: %w", err)
	}
	return exists, nil
}

func (r *BookRepository) Create(ctx context.Context, b *model.Book) error {
	published, err := dateParam(b.PublishedDate)
	if err != nil {
		return err
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO books (isbn, title, author, publisher, published_date, genre, description,
		                    total_copies, available_copies, is_available, location)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, version, created_at, updated_at`,
		b.ISBN, b.Title, b.Author, b.Publisher, published, b.Genre, b.Description,
		b.TotalCopies, b.AvailableCopies, b.IsAvailable, b.Location).
		Scan(&b.ID, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if _, ok := uniqueConstraint(err); ok {
		return model.ErrDuplicateISBN
	}
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

// Update writes changes only if the row is still at expectedVersion, and bumps the
// version. A missing row yields ErrBookNotFound; a moved version yields
// ErrVersionConflict.
func (r *BookRepository) Update(ctx context.Context, id int64, expectedVersion int, changes model.BookChanges) (model.Book, error) {
	set := make([]string, 0, 12)
	args := []any{id, expectedVersion}
	argIdx := 3

	add := func(column string, value any) {
		set = append(set, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if changes.ISBN != nil {
		add("isbn", *changes.ISBN)
	}
	if changes.Title != nil {
		add("title", *changes.Title)
	}
	if changes.Author != nil {
		add("author", *changes.Author)
	}
	if changes.Publisher != nil {
		add("publisher", *changes.Publisher)
	}
	if changes.PublishedDate != nil {
		published, err := dateParam(changes.PublishedDate)
		if err != nil {
			return model.Book{}, err
		}
		add("published_date", published)
	}
	if changes.Genre != nil {
		add("genre", *changes.Genre)
	}
	if changes.Description != nil {
		add("description", *changes.Description)
	}
	if changes.Location != nil {
		add("location", *changes.Location)
	}
	for _, field := range changes.Clear {
		if column, ok := clearableColumns[field]; ok {
			set = append(set, column+" = NULL")
		}
	}
	add("total_copies", changes.TotalCopies)
	add("available_copies", changes.AvailableCopies)
	add("is_available", changes.IsAvailable)
	add("updated_at", changes.UpdatedAt)
	set = append(set, "version = version + 1")

	query := fmt.Sprintf(
		`UPDATE books SET %s WHERE id = $1 AND version = $2 RETURNING %s`,
		strings.Join(set, ", "), bookColumns)

	b, err := scanBook(r.pool.QueryRow(ctx, query, args...))
	if _, ok := uniqueConstraint(err); ok {
		return model.Book{}, model.ErrDuplicateISBN
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return model.Book{}, findErr
		}
		return model.Book{}, model.ErrVersionConflict
	}
	if err != nil {
		return model.Book{}, fmt.Errorf("update book: %w", err)
	}
	return b, nil
}

var clearableColumns = map[string]string{
	model.BookFieldPublisher:     "publisher",
	model.BookFieldPublishedDate: "published_date",
	model.BookFieldGenre:         "genre",
	model.BookFieldDescription:   "description",
	model.BookFieldLocation:      "location",
}

func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func scanBook(row pgx.Row) (model.Book, error) {
	var b model.Book
	var published pgtype.Date
	err := row.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Publisher, &published, &b.Genre,
		&b.Description, &b.TotalCopies, &b.AvailableCopies, &b.IsAvailable, &b.Location,
		&b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Book{}, err
	}
	b.PublishedDate = dateString(published)
	return b, nil
}
