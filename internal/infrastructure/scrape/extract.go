// Package scrape recovers a price and previous close from quote pages that
// offer no structured API. Every heuristic is an independent pure function
// over the raw markup, composed in priority order; when the page format
// drifts a probe is retired or added without touching the orchestration.
// Brittle by design: the contract is "no data" on any miss, never garbage.
package scrape

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// Extraction is the parsed result. PrevClose equals Price when the page
// carried no real previous close; downstream treats that as a placeholder.
type Extraction struct {
	Price     float64
	PrevClose float64
}

var (
	structuredBlockRe = regexp.MustCompile(`(?is)<script[^>]+type="application/ld\+json"[^>]*>(.*?)</script>`)

	priceAttrRe     = regexp.MustCompile(`(?i)data-last-price="([0-9][0-9.,]*)"`)
	metaPriceRe     = regexp.MustCompile(`(?i)<meta[^>]+itemprop="price"[^>]+content="([0-9][0-9.,]*)"`)
	priceElementRe  = regexp.MustCompile(`(?i)class="[^"]*\blast-price\b[^"]*"[^>]*>\s*(?:[^\d<]*)([0-9][0-9.,]*)`)
	jsonPrevRe      = regexp.MustCompile(`(?i)"previousClose"\s*:\s*"?([0-9][0-9.,]*)`)
	prevAttrRe      = regexp.MustCompile(`(?i)data-previous-close="([0-9][0-9.,]*)"`)
	prevLabelRe     = regexp.MustCompile(`(?i)previous\s+close[^0-9]{0,80}([0-9][0-9.,]*)`)
	nonNumericRunRe = regexp.MustCompile(`[^0-9.\-]`)
)

// structured-data paths probed inside an ld+json block, most specific first.
var structuredPricePaths = []string{"$.price", "$.offers.price", "$.mainEntity.price"}

// Parse applies the extraction heuristics to one HTML document. The boolean
// is false when no positive finite price could be recovered.
func Parse(html string) (Extraction, bool) {
	price, ok := extractPrice(html)
	if !ok {
		return Extraction{}, false
	}
	prev, ok := extractPrevClose(html)
	if !ok {
		// Explicit "no real previous close": mirror the price so the
		// reconciliation placeholder rule kicks in downstream.
		prev = price
	}
	return Extraction{Price: price, PrevClose: prev}, true
}

func extractPrice(html string) (float64, bool) {
	if v, ok := structuredDataPrice(html); ok {
		return v, true
	}
	for _, probe := range []func(string) (float64, bool){
		regexProbe(priceAttrRe),
		regexProbe(metaPriceRe),
		regexProbe(priceElementRe),
	} {
		if v, ok := probe(html); ok {
			return v, true
		}
	}
	return 0, false
}

func extractPrevClose(html string) (float64, bool) {
	for _, probe := range []func(string) (float64, bool){
		regexProbe(jsonPrevRe),
		regexProbe(prevAttrRe),
		regexProbe(prevLabelRe),
	} {
		if v, ok := probe(html); ok {
			return v, true
		}
	}
	return 0, false
}

// structuredDataPrice probes embedded ld+json metadata blocks for a
// price-like field.
func structuredDataPrice(html string) (float64, bool) {
	for _, m := range structuredBlockRe.FindAllStringSubmatch(html, -1) {
		var doc any
		if err := json.Unmarshal([]byte(m[1]), &doc); err != nil {
			continue
		}
		for _, path := range structuredPricePaths {
			v, err := jsonpath.Get(path, doc)
			if err != nil {
				continue
			}
			// jsonpath is ambiguous about list-vs-scalar results; keep the
			// first element when it hands back a list.
			if list, ok := v.([]any); ok {
				if len(list) == 0 {
					continue
				}
				v = list[0]
			}
			switch t := v.(type) {
			case float64:
				if validPrice(t) {
					return t, true
				}
			case string:
				if f, ok := ParseNumber(t); ok {
					return f, true
				}
			}
		}
	}
	return 0, false
}

func regexProbe(re *regexp.Regexp) func(string) (float64, bool) {
	return func(html string) (float64, bool) {
		m := re.FindStringSubmatch(html)
		if len(m) < 2 {
			return 0, false
		}
		return ParseNumber(m[1])
	}
}

// ParseNumber strips thousands separators, currency glyphs and any other
// non-numeric characters, then parses the remainder as a decimal. Anything
// that does not come out as a finite positive number is a miss.
func ParseNumber(raw string) (float64, bool) {
	s := nonNumericRunRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" || s == "-" || s == "." {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f := d.InexactFloat64()
	if !validPrice(f) {
		return 0, false
	}
	return f, true
}

func validPrice(f float64) bool {
	// decimal never yields NaN/Inf, but structured blocks hand us raw floats.
	return f > 0 && f < 1e15
}
