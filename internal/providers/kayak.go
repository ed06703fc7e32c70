package providers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

var flightPriceRegex = regexp.MustCompile(`(?:C\$|\$)?\s?([0-9]{1,4}(?:,[0-9]{3})*)`)

// KayakFlightProvider obtains live flight quotes by driving a headless
// browser against Kayak result pages. Stop count, duration and baggage are
// derived heuristically from the page text, behind this port; the search core
// only ever sees the resulting FlightQuote.
type KayakFlightProvider struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
}

// NewKayakFlightProvider starts a shared browser allocator. chromeBin may be
// empty to use the default binary resolution.
func NewKayakFlightProvider(chromeBin string) *KayakFlightProvider {
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
	return &KayakFlightProvider{allocCtx: allocCtx, cancelAlloc: cancel}
}

// Close releases the browser allocator.
func (p *KayakFlightProvider) Close() {
	p.cancelAlloc()
}

// QuoteFlight loads the Kayak result page for one (origin, destination, date)
// probe and extracts the cheapest listed fare. No fare on the page maps to
// (nil, nil).
func (p *KayakFlightProvider) QuoteFlight(ctx context.Context, origin, destination string, date time.Time) (*FlightQuote, error) {
	pageURL := fmt.Sprintf("https://www.kayak.com/flights/%s-%s/%s?sort=price_a",
		origin, destination, date.Format("2006-01-02"))

	tabCtx, cancel := chromedp.NewContext(p.allocCtx)
	defer cancel()

	// Honor the caller's per-probe deadline.
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		tabCtx, cancelDeadline = context.WithDeadline(tabCtx, deadline)
		defer cancelDeadline()
	}

	var bodyText string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(5*time.Second),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(time.Second),
		chromedp.Text("body", &bodyText, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("kayak %s-%s: %w", origin, destination, err)
	}

	price, ok := cheapestListedPrice(bodyText)
	if !ok {
		return nil, nil
	}

	stops := 1
	if strings.Contains(bodyText, "Nonstop") || strings.Contains(bodyText, "Direct") {
		stops = 0
	}

	return &FlightQuote{
		Destination:   destination,
		Price:         price,
		Stops:         stops,
		DurationHours: estimateDuration(origin, destination),
		HasBaggage:    strings.Contains(strings.ToLower(bodyText), "baggage included"),
		BookingURL:    pageURL,
	}, nil
}

// cheapestListedPrice scans page text for plausible fare amounts and returns
// the lowest. Amounts outside the 50-5000 band are treated as noise.
func cheapestListedPrice(text string) (float64, bool) {
	var best float64
	found := false

	for _, match := range flightPriceRegex.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(strings.ReplaceAll(match[1], " ", ""), ",", "")
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 50 || price > 5000 {
			continue
		}
		if !found || price < best {
			best = price
			found = true
		}
	}
	return best, found
}
