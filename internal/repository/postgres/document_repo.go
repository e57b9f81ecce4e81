package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"doctags/internal/domain"

	"github.com/lib/pq"
)

// Config carries repository options that vary per deployment.
type Config struct {
	// TagsColumn is the text[] column holding document tags. Defaults to
	// "tags". Deployments with a legacy column name set it here; the value
	// must be a plain identifier.
	TagsColumn string
}

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type documentRepository struct {
	DB *sql.DB
	// tagsCol is the quoted tags column identifier, safe to splice into SQL.
	tagsCol string
}

// NewDocumentRepository returns a domain.DocumentRepository implemented with
// Postgres. It fails when cfg names a tags column that is not a plain
// identifier.
func NewDocumentRepository(db *sql.DB, cfg Config) (domain.DocumentRepository, error) {
	col := cfg.TagsColumn
	if col == "" {
		col = "tags"
	}
	if !identPattern.MatchString(col) {
		return nil, fmt.Errorf("invalid tags column name %q", col)
	}
	return &documentRepository{
		DB:      db,
		tagsCol: pq.QuoteIdentifier(col),
	}, nil
}

func (r *documentRepository) Create(ctx context.Context, d *domain.Document) error {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	query := fmt.Sprintf(`
		INSERT INTO documents (owner_id, title, body, %s, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, r.tagsCol)
	return r.DB.QueryRowContext(ctx, query, d.OwnerID, d.Title, d.Body, pq.Array(tags), d.CreatedAt, d.UpdatedAt).Scan(&d.ID)
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, title, body, %s, created_at, updated_at
		FROM documents
		WHERE id = $1
	`, r.tagsCol)
	d := &domain.Document{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.OwnerID, &d.Title, &d.Body, pq.Array(&d.Tags), &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// AddTag appends tag to the stored sequence only if it is absent. The
// membership check and the append run inside one UPDATE, so the database
// serializes racing calls: exactly one of them changes the row.
func (r *documentRepository) AddTag(ctx context.Context, id, tag string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE documents
		SET %s = array_append(%s, $2), updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(%s))
	`, r.tagsCol, r.tagsCol, r.tagsCol)
	result, err := r.DB.ExecContext(ctx, query, id, tag)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return true, nil
	}
	// Zero rows means either the tag was already present or the document
	// does not exist; only the latter is an error.
	if err := r.exists(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// RemoveTag deletes tag from the stored sequence only if it is present, as a
// single conditional UPDATE. Counterpart of AddTag.
func (r *documentRepository) RemoveTag(ctx context.Context, id, tag string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE documents
		SET %s = array_remove(%s, $2), updated_at = NOW()
		WHERE id = $1 AND $2 = ANY(%s)
	`, r.tagsCol, r.tagsCol, r.tagsCol)
	result, err := r.DB.ExecContext(ctx, query, id, tag)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return true, nil
	}
	if err := r.exists(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *documentRepository) exists(ctx context.Context, id string) error {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *documentRepository) List(ctx context.Context, q domain.DocumentQuery) ([]*domain.Document, int, error) {
	conds := []string{}
	args := []interface{}{}
	n := 1
	if q.OwnerID != "" {
		conds = append(conds, fmt.Sprintf("owner_id = $%d", n))
		args = append(args, q.OwnerID)
		n++
	}
	// An empty filter adds no conditions: the query is exactly the unfiltered one.
	filter := q.Tags.Normalize()
	if len(filter.IncludeAll) > 0 {
		conds = append(conds, fmt.Sprintf("%s @> $%d", r.tagsCol, n))
		args = append(args, pq.Array(filter.IncludeAll))
		n++
	}
	if len(filter.ExcludeAll) > 0 {
		// Reject only rows containing every excluded tag. NOT of the array
		// containment operator, not a per-tag overlap check.
		conds = append(conds, fmt.Sprintf("NOT (%s @> $%d)", r.tagsCol, n))
		args = append(args, pq.Array(filter.ExcludeAll))
		n++
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM documents %s`, where)
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*domain.Document{}, 0, nil
	}

	query := fmt.Sprintf(`
		SELECT id, owner_id, title, body, %s, created_at, updated_at
		FROM documents %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, r.tagsCol, where, n, n+1)
	args = append(args, q.Pagination.PageSize, q.Pagination.Offset())
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		d := &domain.Document{}
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Title, &d.Body, pq.Array(&d.Tags), &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if docs == nil {
		docs = []*domain.Document{}
	}
	return docs, total, nil
}

func (r *documentRepository) Update(ctx context.Context, id string, title, body *string) (*domain.Document, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *title)
		n++
	}
	if body != nil {
		setClauses = append(setClauses, fmt.Sprintf("body = $%d", n))
		args = append(args, *body)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE documents SET %s
		WHERE id = $%d
		RETURNING id, owner_id, title, body, %s, created_at, updated_at
	`, strings.Join(setClauses, ", "), n, r.tagsCol)
	d := &domain.Document{}
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&d.ID, &d.OwnerID, &d.Title, &d.Body, pq.Array(&d.Tags), &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
