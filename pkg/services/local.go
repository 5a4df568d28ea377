package services

import "strings"

// DefaultRecommendation is returned when nothing better is known.
const DefaultRecommendation = "Try our Sourdough Bread! (Default Recommendation)"

// RecommendLocal picks the first product the shopper has not bought yet,
// without calling any model.
func RecommendLocal(products []ProductInfo, history []string) string {
	seen := make(map[string]struct{}, len(history))
	for _, h := range history {
		seen[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}
	for _, p := range products {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[strings.ToLower(name)]; !ok {
			return "Try our " + name + "! (Default Recommendation)"
		}
	}
	return DefaultRecommendation
}
