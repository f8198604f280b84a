package job

import (
	"UniMarket/internal/api/config"
	"UniMarket/internal/pkg/logger"
	"UniMarket/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// ListingExpireJob 把超过保鲜期的在售商品批量置为 expired
type ListingExpireJob struct {
	listingRepo repository.ListingRepo
}

func NewListingExpireJob(listingRepo repository.ListingRepo) *ListingExpireJob {
	return &ListingExpireJob{listingRepo: listingRepo}
}

func (s *ListingExpireJob) Run() {
	traceID := "job-expire-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	expireDays := config.Cfg.Listing.ExpireDays
	if expireDays <= 0 {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -expireDays)
	affected, err := s.listingRepo.ExpireListingsBefore(ctx, cutoff)
	if err != nil {
		log.ErrorContext(ctx, "expire listings error", "err", err)
		return
	}

	log.InfoContext(ctx, "expire listings success",
		"cutoff", cutoff,
		"expired_count", affected)
}
