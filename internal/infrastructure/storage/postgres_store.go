package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"ArticleNormalizer/internal/domain"
	"ArticleNormalizer/internal/ports"
)

const articlesTable = "articles"

// PostgresStore implements ports.ContentStore against the articles table.
// Every nullable column is scanned through sql.Null* and defaulted, so an
// absent field reaches the pipeline as an empty string rather than a nil.
type PostgresStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.ContentStore = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *PostgresStore) selectArticles() sq.SelectBuilder {
	return s.sb.
		Select("id", "title", "slug", "content", "author", "category", "status", "updated_at").
		From(articlesTable)
}

// ListAll returns every article in the collection.
func (s *PostgresStore) ListAll(ctx context.Context) ([]domain.Article, error) {
	query, args, err := s.selectArticles().OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return articles, nil
}

// GetByID fetches a single article or ports.ErrNotFound.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (domain.Article, error) {
	query, args, err := s.selectArticles().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build get query: %w", err)
	}

	row := s.db.QueryRowContext(ctx, query, args...)
	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("get article: %w", err)
	}

	return article, nil
}

// UpdateContent writes the fixed body alongside the updated timestamp.
// Callers only invoke this when content actually changed.
func (s *PostgresStore) UpdateContent(ctx context.Context, id, content string, updatedAt time.Time) error {
	query, args, err := s.sb.
		Update(articlesTable).
		Set("content", content).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update article %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ports.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var (
		article   domain.Article
		title     sql.NullString
		slug      sql.NullString
		content   sql.NullString
		author    sql.NullString
		category  sql.NullString
		status    sql.NullString
		updatedAt sql.NullTime
	)

	if err := row.Scan(&article.ID, &title, &slug, &content, &author, &category, &status, &updatedAt); err != nil {
		return domain.Article{}, err
	}

	article.Title = title.String
	article.Slug = slug.String
	article.Content = content.String
	article.Author = author.String
	article.Category = category.String
	article.Status = status.String
	article.UpdatedAt = updatedAt.Time

	return article, nil
}
