package flags

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/adapter"
	"github.com/NadavMozeson/typescript-discord-bot/internal/cache"
	"github.com/NadavMozeson/typescript-discord-bot/internal/domain"
	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
)

// Unknown is shown when a nation cannot be resolved
const Unknown = "🏳️"

// nations whose restcountries lookup is ambiguous or has no flag emoji
var overrides = map[string]string{
	"england":        ":england:",
	"korea republic": ":flag_kr:",
	"saudi arabia":   ":flag_sa:",
}

type country struct {
	AltSpellings []string `json:"altSpellings"`
}

// Resolver turns nation names into flag emoji
type Resolver struct {
	http      adapter.HTTPClient
	cache     cache.Store
	baseURL   string
	ttl       time.Duration
	totwEmoji string
}

// NewResolver creates a resolver querying the restcountries API at baseURL
func NewResolver(httpClient adapter.HTTPClient, store cache.Store, baseURL string, ttl time.Duration, totwEmoji string) *Resolver {
	return &Resolver{
		http:      httpClient,
		cache:     store,
		baseURL:   strings.TrimRight(baseURL, "/"),
		ttl:       ttl,
		totwEmoji: totwEmoji,
	}
}

// Flag returns the emoji for nation, or Unknown
func (r *Resolver) Flag(ctx context.Context, nation string) string {
	nation = strings.TrimSpace(nation)
	switch nation {
	case "":
		return Unknown
	case domain.NationTOTW:
		return r.totwEmoji
	case domain.NationGoldFoder:
		return "✨"
	}

	key := strings.ToLower(nation)
	if flag, ok := overrides[key]; ok {
		return flag
	}

	if cached, found, err := r.cache.Get(ctx, "flag:"+key); err == nil && found {
		return string(cached)
	} else if err != nil {
		logger.WarnCtx(ctx, "Flag cache read failed", zap.String("nation", nation), zap.Error(err))
	}

	flag, err := r.lookup(ctx, nation)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to resolve flag", zap.String("nation", nation), zap.Error(err))
		return Unknown
	}

	if err := r.cache.Set(ctx, "flag:"+key, []byte(flag), r.ttl); err != nil {
		logger.WarnCtx(ctx, "Flag cache write failed", zap.String("nation", nation), zap.Error(err))
	}
	return flag
}

func (r *Resolver) lookup(ctx context.Context, nation string) (string, error) {
	var countries []country
	if err := r.http.Get(ctx, r.baseURL+"/"+url.PathEscape(nation), &countries); err != nil {
		return "", err
	}
	if len(countries) == 0 || len(countries[0].AltSpellings) == 0 {
		return "", fmt.Errorf("no country matches %q", nation)
	}
	return RegionalIndicators(countries[0].AltSpellings[0])
}

// RegionalIndicators converts a two letter ISO code into its flag emoji
func RegionalIndicators(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return "", fmt.Errorf("invalid country code %q", code)
	}
	var b strings.Builder
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return "", fmt.Errorf("invalid country code %q", code)
		}
		b.WriteRune(0x1F1E6 + c - 'A')
	}
	return b.String(), nil
}
