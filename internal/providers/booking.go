package providers

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

var lodgingRatingRegex = regexp.MustCompile(`(\d+\.?\d*)`)

// Booking.com property type filters.
var bookingTypeFilters = map[string]string{
	"hotel":     "ht_id%3D204",
	"hostel":    "ht_id%3D203",
	"apartment": "ht_id%3D201",
}

// Booking search wants a city name, not an airport code.
var bookingCityNames = map[string]string{
	"BCN": "Barcelona", "LIS": "Lisbon", "MAD": "Madrid", "FCO": "Rome",
	"CDG": "Paris", "LHR": "London", "DUB": "Dublin", "AMS": "Amsterdam",
	"BER": "Berlin", "PRG": "Prague", "ATH": "Athens", "VIE": "Vienna",
	"MEX": "Mexico City", "BOG": "Bogota", "LIM": "Lima",
}

// BookingLodgingProvider scrapes Booking.com result pages with a headless
// browser. When a scrape fails it falls back to the synthetic inventory, so
// callers always get the same call/absent contract.
type BookingLodgingProvider struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	fallback    *SyntheticLodgingProvider
	logger      *slog.Logger
}

// NewBookingLodgingProvider starts a shared browser allocator.
func NewBookingLodgingProvider(chromeBin string, logger *slog.Logger) *BookingLodgingProvider {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &BookingLodgingProvider{
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
		fallback:    NewSyntheticLodgingProvider(),
		logger:      logger,
	}
}

// Close releases the browser allocator.
func (p *BookingLodgingProvider) Close() {
	p.cancelAlloc()
}

type bookingCard struct {
	Name   string `json:"name"`
	Price  string `json:"price"`
	Rating string `json:"rating"`
	URL    string `json:"url"`
}

// QuoteLodgings scrapes the result page for the stay and returns offers
// within the nightly budget, best quality-per-price first.
func (p *BookingLodgingProvider) QuoteLodgings(ctx context.Context, q StayQuery) ([]LodgingQuote, error) {
	pageURL := p.searchURL(q)

	tabCtx, cancel := chromedp.NewContext(p.allocCtx)
	defer cancel()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		tabCtx, cancelDeadline = context.WithDeadline(tabCtx, deadline)
		defer cancelDeadline()
	}

	var cards []bookingCard
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(5*time.Second),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(`
			(function() {
				var results = [];
				var cards = document.querySelectorAll('[data-testid="property-card"]');
				for (var i = 0; i < cards.length && results.length < 15; i++) {
					var card = cards[i];
					var nameEl = card.querySelector('[data-testid="title"]');
					var priceEl = card.querySelector('[data-testid="price-and-discounted-price"]') ||
					              card.querySelector('.prco-valign-middle-helper');
					var ratingEl = card.querySelector('[data-testid="review-score"]');
					var linkEl = card.querySelector('a[data-testid="title-link"]');
					if (!nameEl || !priceEl) continue;
					results.push({
						name:   nameEl.innerText.trim(),
						price:  priceEl.innerText,
						rating: ratingEl ? ratingEl.innerText : '',
						url:    linkEl ? linkEl.href : ''
					});
				}
				return results;
			})()
		`, &cards),
	)
	if err != nil {
		// Degrade to the synthetic inventory rather than losing the
		// destination.
		p.logger.Warn("booking scrape failed, using synthetic fallback",
			"destination", q.Destination,
			"error", err)
		return p.fallback.QuoteLodgings(ctx, q)
	}

	quotes := make([]LodgingQuote, 0, len(cards))
	for _, card := range cards {
		quote, ok := p.parseCard(card, q)
		if !ok {
			continue
		}
		quotes = append(quotes, quote)
	}

	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].Rating/quotes[i].PricePerNight > quotes[j].Rating/quotes[j].PricePerNight
	})

	return quotes, nil
}

func (p *BookingLodgingProvider) searchURL(q StayQuery) string {
	city, ok := bookingCityNames[q.Destination]
	if !ok {
		city = q.Destination
	}

	pageURL := fmt.Sprintf(
		"https://www.booking.com/searchresults.html?ss=%s&checkin=%s&checkout=%s&group_adults=1&no_rooms=1",
		strings.ReplaceAll(city, " ", "+"),
		q.Checkin.Format("2006-01-02"),
		q.Checkout.Format("2006-01-02"),
	)
	if filter, ok := bookingTypeFilters[q.LodgingType]; ok {
		pageURL += "&nflt=" + filter
	}
	return pageURL
}

// parseCard converts one scraped property card into a quote, applying the
// query's ceiling and rating constraints. Booking rates on a /10 scale; the
// port contract is /5.
func (p *BookingLodgingProvider) parseCard(card bookingCard, q StayQuery) (LodgingQuote, bool) {
	total, ok := parseListedPrice(card.Price)
	if !ok {
		return LodgingQuote{}, false
	}
	perNight := total / float64(q.Nights)
	if perNight > q.NightlyBudget {
		return LodgingQuote{}, false
	}

	rating := 0.0
	if m := lodgingRatingRegex.FindStringSubmatch(card.Rating); m != nil {
		if r, err := strconv.ParseFloat(m[1], 64); err == nil {
			rating = r / 2
		}
	}
	if q.MinRating > 0 && rating < q.MinRating {
		return LodgingQuote{}, false
	}

	kind := "hotel"
	lower := strings.ToLower(card.Name)
	if strings.Contains(lower, "hostel") {
		kind = "hostel"
	} else if strings.Contains(lower, "apart") {
		kind = "apartment"
	}

	return LodgingQuote{
		Name:          card.Name,
		PricePerNight: float64(int(perNight*100)) / 100,
		Rating:        rating,
		Type:          kind,
		BookingURL:    card.URL,
	}, true
}

// parseListedPrice handles both "1.234,56" and "1,234.56" style amounts.
func parseListedPrice(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' || r == ',' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return 0, false
	}

	// A trailing comma group of 1-2 digits is a decimal comma; a group of
	// exactly 3 is a thousands separator.
	ci, di := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	if ci > di && len(s)-ci-1 != 3 {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	price, err := strconv.ParseFloat(s, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}
