package service

import (
	"context"
	"iter"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-gin-gorm-microblog/internal/core/metrics"
	"go-gin-gorm-microblog/internal/domain"
	"go-gin-gorm-microblog/internal/validation"
)

const scanBatch = 100

type postForm struct {
	Content string `json:"content" validate:"nonblank,max=140"`
}

// ContentService stores microposts, always read back newest first.
type ContentService struct {
	store domain.Store
	now   func() time.Time
	log   *zap.Logger

	batch int
}

func NewContentService(store domain.Store, now func() time.Time, log *zap.Logger) *ContentService {
	return &ContentService{store: store, now: now, log: log, batch: scanBatch}
}

func (s *ContentService) Post(ctx context.Context, userID uint, content string) (*domain.Micropost, error) {
	content = strings.TrimSpace(content)
	if err := validation.Struct(postForm{Content: content}); err != nil {
		return nil, err
	}
	if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
		return nil, err
	}
	m := &domain.Micropost{UserID: userID, Content: content, CreatedAt: s.now()}
	if err := s.store.Microposts().Create(ctx, m); err != nil {
		return nil, err
	}
	metrics.MicropostsCreated.Inc()
	s.log.Info("micropost created", zap.Uint("user_id", userID), zap.Uint("micropost_id", m.ID))
	return m, nil
}

func (s *ContentService) MicropostsByUser(ctx context.Context, userID uint, p domain.Page) ([]domain.Micropost, error) {
	if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Microposts().ListByUser(ctx, userID, p)
}

// Stream yields the user's posts newest first, fetching in keyset batches as
// the consumer pulls. Each call starts a fresh scan. A store error is yielded
// once and ends the sequence.
func (s *ContentService) Stream(ctx context.Context, userID uint) iter.Seq2[domain.Micropost, error] {
	return func(yield func(domain.Micropost, error) bool) {
		var after *domain.Cursor
		for {
			batch, err := s.store.Microposts().ScanByUser(ctx, userID, after, s.batch)
			if err != nil {
				yield(domain.Micropost{}, err)
				return
			}
			for _, m := range batch {
				if !yield(m, nil) {
					return
				}
			}
			if len(batch) < s.batch {
				return
			}
			last := batch[len(batch)-1]
			after = &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
		}
	}
}

func (s *ContentService) Count(ctx context.Context, userID uint) (int64, error) {
	return s.store.Microposts().CountByUser(ctx, userID)
}

// Delete removes a post; only its author may do so.
func (s *ContentService) Delete(ctx context.Context, actorID, postID uint) error {
	return s.store.InTx(ctx, func(tx domain.Store) error {
		m, err := tx.Microposts().FindByID(ctx, postID)
		if err != nil {
			return err
		}
		if m.UserID != actorID {
			return &domain.AuthorizationError{Action: "delete micropost", Reason: "not the author"}
		}
		return tx.Microposts().Delete(ctx, postID)
	})
}

// DeleteAllByUser runs on the caller's transaction as part of user destruction.
func (s *ContentService) DeleteAllByUser(ctx context.Context, tx domain.Store, userID uint) error {
	return tx.Microposts().DeleteAllByUser(ctx, userID)
}
