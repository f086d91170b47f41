package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/NadavMozeson/typescript-discord-bot/internal/adapter"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
)

// ErrNavigationTimeout marks an attempt the renderer gave up on. Callers retry
// it quietly instead of reporting it.
var ErrNavigationTimeout = errors.New("navigation timeout")

// MaxLabelLength is the select menu option label limit
const MaxLabelLength = 100

// SearchResult is one row of a player search
type SearchResult struct {
	Name   string `json:"name"`
	Rating string `json:"rating"`
	Card   string `json:"card"`
	Price  string `json:"price"`
	URL    string `json:"url"`
}

// Label renders the picker option text, truncated to MaxLabelLength runes
func (r SearchResult) Label() string {
	label := fmt.Sprintf("%s(%s) %s | %s", r.Name, r.Rating, r.Price, r.Card)
	if utf8.RuneCountInString(label) <= MaxLabelLength {
		return label
	}
	runes := []rune(label)
	return string(runes[:MaxLabelLength-3]) + "..."
}

// Fetcher retrieves market snapshots. A nil snapshot with a nil error means
// the page rendered but held nothing usable.
//
//go:generate mockgen -source=fetcher.go -destination=../mocks/fetcher.go -package=mocks -mock_names=Fetcher=MockFetcher
type Fetcher interface {
	FetchByURL(ctx context.Context, pageURL string) (*domain.Snapshot, error)
	FetchByRatingAndVersion(ctx context.Context, rating int, kind domain.VersionKind) (*domain.Snapshot, error)
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// HTTPFetcher talks to the rendering sidecar that drives the headless browser
type HTTPFetcher struct {
	baseURL string
	http    adapter.HTTPClient
}

// NewHTTPFetcher creates a fetcher for the sidecar at baseURL
func NewHTTPFetcher(baseURL string, httpClient adapter.HTTPClient) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// FetchByURL renders a single player page
func (f *HTTPFetcher) FetchByURL(ctx context.Context, pageURL string) (*domain.Snapshot, error) {
	if strings.TrimSpace(pageURL) == "" {
		return nil, fmt.Errorf("empty page url")
	}
	return f.snapshot(ctx, "/player", url.Values{"url": {pageURL}})
}

// FetchByRatingAndVersion renders the cheapest listing for a rating
func (f *HTTPFetcher) FetchByRatingAndVersion(ctx context.Context, rating int, kind domain.VersionKind) (*domain.Snapshot, error) {
	q := url.Values{
		"rating":  {strconv.Itoa(rating)},
		"version": {string(kind)},
	}
	snap, err := f.snapshot(ctx, "/cheapest", q)
	if err != nil || snap == nil {
		return snap, err
	}
	return WithRatingIdentity(snap, rating, kind), nil
}

// Search lists players matching query
func (f *HTTPFetcher) Search(ctx context.Context, query string) ([]SearchResult, error) {
	var results []SearchResult
	if err := f.http.Get(ctx, f.endpoint("/search", url.Values{"q": {query}}), &results); err != nil {
		return nil, f.wrap("search", err)
	}

	out := results[:0]
	for _, r := range results {
		if r.URL != "" {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *HTTPFetcher) snapshot(ctx context.Context, path string, q url.Values) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	if err := f.http.Get(ctx, f.endpoint(path, q), &snap); err != nil {
		return nil, f.wrap(path, err)
	}
	return snap, nil
}

func (f *HTTPFetcher) endpoint(path string, q url.Values) string {
	return f.baseURL + path + "?" + q.Encode()
}

func (f *HTTPFetcher) wrap(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrNavigationTimeout, op, err)
	}
	var statusErr *adapter.StatusError
	if errors.As(err, &statusErr) && strings.Contains(strings.ToLower(statusErr.Body), "navigation timeout") {
		return fmt.Errorf("%w: %s: %v", ErrNavigationTimeout, op, err)
	}
	return fmt.Errorf("failed to fetch %s: %w", op, err)
}

// WithRatingIdentity fills the synthetic identity of a rating based listing
func WithRatingIdentity(snap *domain.Snapshot, rating int, kind domain.VersionKind) *domain.Snapshot {
	out := *snap
	switch kind {
	case domain.VersionTOTW:
		out.Name = fmt.Sprintf("%d Rated TOTW Players", rating)
		out.Country = domain.NationTOTW
	default:
		out.Name = fmt.Sprintf("%d Rated Players", rating)
		out.Country = domain.NationGoldFoder
	}
	out.Rating = ""
	out.Card = domain.FoderCard
	return &out
}

// RatingSource recovers the rating query of a rating based listing from its name
func RatingSource(name string) (rating int, kind domain.VersionKind, ok bool) {
	fields := strings.Fields(name)
	if len(fields) < 3 {
		return 0, "", false
	}
	rating, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, "", false
	}
	if strings.Contains(name, " TOTW ") {
		return rating, domain.VersionTOTW, true
	}
	return rating, domain.VersionGold, true
}
