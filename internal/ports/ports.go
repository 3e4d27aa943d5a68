package ports

import (
	"context"
	"errors"
	"time"

	"ArticleNormalizer/internal/domain"
)

// ErrNotFound reports a lookup against an id the store does not hold.
var ErrNotFound = errors.New("article not found")

// ContentStore is the narrow boundary to the article collection. Callers
// must only invoke UpdateContent for articles whose content actually
// changed; the store does not enforce that.
type ContentStore interface {
	ListAll(ctx context.Context) ([]domain.Article, error)
	GetByID(ctx context.Context, id string) (domain.Article, error)
	UpdateContent(ctx context.Context, id, content string, updatedAt time.Time) error
}

// Notifier streams analysis digests to an operator channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
