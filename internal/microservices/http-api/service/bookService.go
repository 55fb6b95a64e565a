package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"booklist/internal/metrics"
	"booklist/internal/microservices/http-api/dto"
	"booklist/internal/microservices/http-api/models"
	"booklist/internal/microservices/http-api/repository"
	"booklist/internal/openlibrary"
	"booklist/internal/workerpool"

	"golang.org/x/sync/semaphore"
)

const (
	defaultTrendingLimit = 15
	// catalog calls in flight per request
	maxCatalogWorkers = 4
)

type catalogSlotsKey struct{}

// withCatalogSlots attaches the per-request catalog call budget to ctx unless
// an outer call already did, so nested builds share one bound.
func withCatalogSlots(ctx context.Context) context.Context {
	if _, ok := ctx.Value(catalogSlotsKey{}).(*semaphore.Weighted); ok {
		return ctx
	}
	return context.WithValue(ctx, catalogSlotsKey{}, semaphore.NewWeighted(maxCatalogWorkers))
}

// acquireCatalogSlot blocks until a catalog call may start. Release is always non-nil.
func acquireCatalogSlot(ctx context.Context) (func(), error) {
	sem, ok := ctx.Value(catalogSlotsKey{}).(*semaphore.Weighted)
	if !ok {
		return func() {}, nil
	}
	if err := sem.Acquire(ctx, 1); err != nil {
		return func() {}, fmt.Errorf("wait for catalog slot: %w", errors.Join(openlibrary.ErrUnavailable, err))
	}
	return func() { sem.Release(1) }, nil
}

// CatalogClient is the subset of the Open Library client the book service needs.
type CatalogClient interface {
	FetchWork(ctx context.Context, key string) (*openlibrary.Work, error)
	FetchAuthor(ctx context.Context, authorKey string) (*openlibrary.Author, error)
	Trending(ctx context.Context, limit int) ([]openlibrary.Doc, error)
	Search(ctx context.Context, q openlibrary.SearchQuery) ([]openlibrary.Doc, error)
}

// UpstreamKind classifies a catalog failure.
type UpstreamKind int

const (
	UpstreamUnavailable UpstreamKind = iota
	UpstreamMalformed
	UpstreamNotFound
)

func (k UpstreamKind) String() string {
	switch k {
	case UpstreamMalformed:
		return "malformed"
	case UpstreamNotFound:
		return "not found"
	default:
		return "unavailable"
	}
}

// UpstreamError reports that the catalog could not supply a book.
type UpstreamError struct {
	Key  string
	Kind UpstreamKind
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("catalog %s for %q: %v", e.Kind, e.Key, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstreamError(key string, err error) error {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}

	kind := UpstreamUnavailable
	switch {
	case errors.Is(err, openlibrary.ErrNotFound):
		kind = UpstreamNotFound
	case errors.Is(err, openlibrary.ErrMalformed):
		kind = UpstreamMalformed
	}
	return &UpstreamError{Key: key, Kind: kind, Err: err}
}

type BookService interface {
	BuildBook(ctx context.Context, key string) (*dto.BookAggregate, error)
	BuildBooksFromLikes(ctx context.Context, likes []models.Like) []dto.BookResult
	BookDetails(ctx context.Context, key string) (*dto.BookAggregate, error)
	Trending(ctx context.Context, limit int) ([]dto.BookListing, error)
	Search(ctx context.Context, term, subject string) ([]dto.BookListing, error)
}

type bookService struct {
	catalog    CatalogClient
	reviewRepo repository.ReviewRepository
	logger     *slog.Logger
}

func NewBookService(catalog CatalogClient, reviewRepo repository.ReviewRepository, logger *slog.Logger) BookService {
	if logger == nil {
		logger = slog.Default()
	}
	return &bookService{
		catalog:    catalog,
		reviewRepo: reviewRepo,
		logger:     logger,
	}
}

// BuildBook fetches a work and its authors and normalizes them into an aggregate.
// Any failed author lookup fails the whole book.
func (s *bookService) BuildBook(ctx context.Context, key string) (*dto.BookAggregate, error) {
	bare := openlibrary.NormalizeWorkKey(key)
	ctx = withCatalogSlots(ctx)

	work, err := s.fetchWork(ctx, bare)
	if err != nil {
		return nil, upstreamError(bare, err)
	}

	authors, err := s.resolveAuthors(ctx, work.AuthorKeys())
	if err != nil {
		return nil, upstreamError(bare, err)
	}

	book := &dto.BookAggregate{
		Key:         bare,
		Title:       work.Title,
		Description: dto.NoDescription,
		Cover:       dto.NoImage,
		Published:   dto.NoDate,
		Authors:     authors,
	}
	if book.Title == "" {
		book.Title = dto.Untitled
	}
	if work.Description.Present() {
		book.Description = work.Description.Text
	}
	if len(work.Covers) > 0 {
		book.Cover = work.Covers[0].String()
	}
	if work.FirstPublishDate != "" {
		book.Published = work.FirstPublishDate
	}
	return book, nil
}

// resolveAuthors looks up every author concurrently and returns the names
// deduplicated in first-seen order. The first failure cancels the rest.
func (s *bookService) resolveAuthors(ctx context.Context, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return []string{}, nil
	}

	pool := workerpool.New(ctx, min(len(keys), maxCatalogWorkers), s.logger)
	names := make([]string, len(keys))
	var (
		once     sync.Once
		firstErr error
	)
	for i, key := range keys {
		pool.Submit(func(ctx context.Context) error {
			author, err := s.fetchAuthor(ctx, key)
			if err != nil {
				once.Do(func() {
					firstErr = err
					pool.Cancel()
				})
				return err
			}
			names[i] = author.Name
			return nil
		})
	}
	pool.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	for _, name := range names {
		if name == "" {
			// skipped because the request went away
			return nil, fmt.Errorf("resolve authors: %w", errors.Join(openlibrary.ErrUnavailable, ctx.Err()))
		}
	}
	return dedupe(names), nil
}

func (s *bookService) fetchWork(ctx context.Context, key string) (*openlibrary.Work, error) {
	release, err := acquireCatalogSlot(ctx)
	defer release()
	if err != nil {
		return nil, err
	}
	return s.catalog.FetchWork(ctx, key)
}

func (s *bookService) fetchAuthor(ctx context.Context, key string) (*openlibrary.Author, error) {
	release, err := acquireCatalogSlot(ctx)
	defer release()
	if err != nil {
		return nil, err
	}
	return s.catalog.FetchAuthor(ctx, key)
}

// BuildBooksFromLikes builds one result per like, in like order. A failed
// book is annotated with its error and the batch carries on.
func (s *bookService) BuildBooksFromLikes(ctx context.Context, likes []models.Like) []dto.BookResult {
	results := make([]dto.BookResult, len(likes))
	built := make([]bool, len(likes))
	if len(likes) == 0 {
		return results
	}

	ctx = withCatalogSlots(ctx)
	pool := workerpool.New(ctx, min(len(likes), maxCatalogWorkers), s.logger)
	for i, like := range likes {
		pool.Submit(func(ctx context.Context) error {
			book, err := s.BuildBook(ctx, like.BookKey)
			if err != nil {
				s.logger.Warn("skipping liked book",
					"like_id", like.ID,
					"book_key", like.BookKey,
					"error", err,
				)
				metrics.RecordSkippedBook()
			}
			results[i] = dto.BookResult{Key: like.BookKey, Book: book, Err: err, NotFound: isNotFound(err)}
			built[i] = true
			return err
		})
	}
	pool.Wait()

	for i, like := range likes {
		if !built[i] {
			results[i] = dto.BookResult{
				Key: like.BookKey,
				Err: &UpstreamError{Key: like.BookKey, Kind: UpstreamUnavailable, Err: ctx.Err()},
			}
		}
	}
	return results
}

func isNotFound(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Kind == UpstreamNotFound
}

// BookDetails is BuildBook plus the newest locally stored reviews for the key.
func (s *bookService) BookDetails(ctx context.Context, key string) (*dto.BookAggregate, error) {
	book, err := s.BuildBook(ctx, key)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.ListByBook(ctx, book.Key, repository.MaxReviewsPerBook)
	if err != nil {
		return nil, err
	}

	book.Reviews = make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		book.Reviews = append(book.Reviews, dto.FromModelToReviewResponse(&reviews[i]))
	}
	return book, nil
}

func (s *bookService) Trending(ctx context.Context, limit int) ([]dto.BookListing, error) {
	if limit <= 0 {
		limit = defaultTrendingLimit
	}
	docs, err := s.catalog.Trending(ctx, limit)
	if err != nil {
		return nil, upstreamError("trending", err)
	}
	return toListings(docs), nil
}

func (s *bookService) Search(ctx context.Context, term, subject string) ([]dto.BookListing, error) {
	docs, err := s.catalog.Search(ctx, openlibrary.SearchQuery{Term: term, Subject: subject, Limit: 25})
	if err != nil {
		return nil, upstreamError("search", err)
	}
	return toListings(docs), nil
}

func toListings(docs []openlibrary.Doc) []dto.BookListing {
	listings := make([]dto.BookListing, 0, len(docs))
	for _, doc := range docs {
		key := openlibrary.NormalizeWorkKey(doc.Key)
		if key == "" {
			continue
		}

		authors := dedupe(doc.AuthorName)
		if len(authors) == 0 {
			authors = []string{dto.NoAuthor}
		}

		listing := dto.BookListing{
			Key:     key,
			Title:   doc.Title,
			Authors: authors,
			Year:    doc.FirstPublishYear,
			Link:    "/books/book/" + key,
		}
		if listing.Title == "" {
			listing.Title = dto.Untitled
		}
		if doc.CoverID > 0 {
			listing.CoverURL = openlibrary.CoverURL(strconv.FormatInt(doc.CoverID, 10))
		}
		listings = append(listings, listing)
	}
	return listings
}

// dedupe drops empty and repeated names, keeping first-seen order.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
