package service

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"golang.org/x/sync/errgroup"

	"hrcms/internal/models"
	"hrcms/internal/repository"
)

const statsMonths = 12

type StatsService interface {
	// PostStats computes the dashboard figures from fresh grouping queries.
	PostStats(ctx context.Context) (*models.PostStats, error)
}

type statsService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	now      func() time.Time
}

func NewStatsService(posts repository.PostRepository, comments repository.CommentRepository) StatsService {
	return &statsService{posts: posts, comments: comments, now: utcNow}
}

func (s *statsService) PostStats(ctx context.Context) (*models.PostStats, error) {
	var (
		stats   models.PostStats
		monthly []models.MonthlyCount
	)
	since := monthWindowStart(s.now(), statsMonths)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if stats.Posts, err = s.posts.StatusCounts(gctx); err != nil {
			return errors.Wrap(err, "post status counts")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if stats.Engagement, err = s.posts.Engagement(gctx); err != nil {
			return errors.Wrap(err, "engagement")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if stats.ByCategory, err = s.posts.CountsByCategory(gctx); err != nil {
			return errors.Wrap(err, "posts by category")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if stats.Comments, err = s.comments.StatusCounts(gctx); err != nil {
			return errors.Wrap(err, "comment status counts")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if monthly, err = s.posts.MonthlyCounts(gctx, since); err != nil {
			return errors.Wrap(err, "monthly counts")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if stats.ByCategory == nil {
		stats.ByCategory = []models.CategoryCount{}
	}
	stats.Monthly = fillMonths(since, statsMonths, monthly)
	return &stats, nil
}

// monthWindowStart is the first instant of the month n-1 months before now,
// so the window covers n calendar months including the current one.
func monthWindowStart(now time.Time, n int) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month()-time.Month(n-1), 1, 0, 0, 0, 0, time.UTC)
}

// fillMonths returns one bucket per month starting at since, with zero
// counts for months that had no posts.
func fillMonths(since time.Time, n int, counts []models.MonthlyCount) []models.MonthlyCount {
	byMonth := make(map[[2]int]int64, len(counts))
	for _, c := range counts {
		byMonth[[2]int{c.Year, c.Month}] = c.Count
	}

	out := make([]models.MonthlyCount, 0, n)
	for i := 0; i < n; i++ {
		m := since.AddDate(0, i, 0)
		key := [2]int{m.Year(), int(m.Month())}
		out = append(out, models.MonthlyCount{Year: key[0], Month: key[1], Count: byMonth[key]})
	}
	return out
}
