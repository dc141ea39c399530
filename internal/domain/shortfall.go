package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Shortfall records one product whose requested quantity exceeds the known
// available stock. Available and Requested are both zero on placeholder
// records parsed from detail-free backend rejections.
type Shortfall struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

// UnknownProductID marks a placeholder shortfall parsed from a rejection
// that carried no per-product detail.
const UnknownProductID = "unknown"

// IsPlaceholder reports whether the record signals "shortage occurred, no
// detail available" rather than an itemized shortfall.
func (s Shortfall) IsPlaceholder() bool {
	return s.ProductID == UnknownProductID
}

// CheckLocalShortfalls compares each line's quantity against its
// available-stock hint. Lines without a hint are skipped: absence of
// information is not a shortage. An empty result is the expected outcome for
// carts with no hint data.
func CheckLocalShortfalls(lines []Line) []Shortfall {
	var shortfalls []Shortfall
	for _, l := range lines {
		if l.AvailableStock == nil {
			continue
		}
		if l.Quantity > *l.AvailableStock {
			shortfalls = append(shortfalls, Shortfall{
				ProductID: l.ProductID,
				Name:      l.Name,
				Available: *l.AvailableStock,
				Requested: l.Quantity,
			})
		}
	}
	return shortfalls
}

// shortfallMatcher probes one known error-payload shape. It returns nil when
// the shape does not match.
type shortfallMatcher func(payload map[string]any) []Shortfall

// backendMatchers is the ordered list of shapes the ARCA core API has been
// observed to reject stock conflicts with, most structured first.
var backendMatchers = []shortfallMatcher{
	matchTopLevelItems,
	matchDetailItems,
	matchStockKeywords,
}

// ParseBackendShortfalls inspects an error response body for stock-shortfall
// information. It returns nil when the error is unrelated to stock, so
// callers can distinguish "no stock problem" from "stock problem with no
// detail" (which yields a single placeholder record).
func ParseBackendShortfalls(body []byte) []Shortfall {
	if len(body) == 0 {
		return nil
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		// Not JSON at all; fall back to keyword matching over the raw text.
		if containsStockKeyword(string(body)) {
			return []Shortfall{{ProductID: UnknownProductID}}
		}
		return nil
	}

	for _, match := range backendMatchers {
		if shortfalls := match(payload); shortfalls != nil {
			return shortfalls
		}
	}
	return nil
}

// matchTopLevelItems matches { "items": [ {...}, ... ] }.
func matchTopLevelItems(payload map[string]any) []Shortfall {
	return parseItemList(payload["items"])
}

// matchDetailItems matches the same list nested one level under a "detail"
// wrapper: { "detail": { "items": [...] } }.
func matchDetailItems(payload map[string]any) []Shortfall {
	detail, ok := payload["detail"].(map[string]any)
	if !ok {
		return nil
	}
	return parseItemList(detail["items"])
}

// matchStockKeywords matches error text against a small fixed vocabulary of
// stock phrases and yields a single placeholder record. It never fabricates
// quantities.
func matchStockKeywords(payload map[string]any) []Shortfall {
	var texts []string
	for _, key := range []string{"detail", "message"} {
		if s, ok := payload[key].(string); ok {
			texts = append(texts, s)
		}
	}
	for _, text := range texts {
		if containsStockKeyword(text) {
			return []Shortfall{{ProductID: UnknownProductID}}
		}
	}
	return nil
}

var stockKeywords = []string{"sem stock", "out of stock", "stock"}

func containsStockKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range stockKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// parseItemList converts a raw items array into shortfall records, probing
// the field aliases the backend has used across versions. Missing or
// malformed numbers default to zero rather than poisoning comparisons.
func parseItemList(raw any) []Shortfall {
	items, ok := raw.([]any)
	if !ok || len(items) == 0 {
		return nil
	}

	shortfalls := make([]Shortfall, 0, len(items))
	for _, it := range items {
		entry, ok := it.(map[string]any)
		if !ok {
			continue
		}
		id := firstString(entry, "product_id", "productId", "id")
		if id == "" {
			// Some backend versions send numeric product IDs.
			for _, key := range []string{"product_id", "productId", "id"} {
				if n, ok := coerceInt(entry[key]); ok {
					id = strconv.Itoa(n)
					break
				}
			}
		}
		if id == "" {
			id = UnknownProductID
		}
		shortfalls = append(shortfalls, Shortfall{
			ProductID: id,
			Name:      firstString(entry, "name", "product_name", "productName"),
			Available: firstInt(entry, "available", "stock"),
			Requested: firstInt(entry, "requested", "quantity"),
		})
	}
	if len(shortfalls) == 0 {
		return nil
	}
	return shortfalls
}

func firstString(entry map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := entry[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstInt(entry map[string]any, keys ...string) int {
	for _, key := range keys {
		if raw, ok := entry[key]; ok {
			if n, ok := coerceInt(raw); ok && n >= 0 {
				return n
			}
		}
	}
	return 0
}
