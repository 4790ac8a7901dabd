package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"bizops-analytics-api/pkg/models"
)

// customerPreference 購入履歴から導いた顧客の嗜好
type customerPreference struct {
	topCategories map[string]bool
	avgPrice      float64
}

// RecommendProducts 顧客の購入履歴とカタログから推薦商品を選ぶ
//
// 購入済み商品は除外し、カテゴリ一致(+0.4)・価格帯一致(+0.3)・人気度(+0.2*popularity)で
// スコアリングして上位 limit 件を返す。
func (s *AnalyticsService) RecommendProducts(
	customerID string,
	history []models.PurchaseHistoryItem,
	catalog []models.ProductCandidate,
	limit int,
) (*models.RecommendationResult, error) {
	const op = "RecommendProducts"
	if limit <= 0 {
		return nil, configError(op, "limit", "must be positive, got %d", limit)
	}
	if customerID == "" {
		return nil, invalidInput(op, "customer_id", "customer id is required")
	}
	for i, h := range history {
		if h.ProductID == "" {
			return nil, invalidInput(op, "history", "item %d has no product id", i)
		}
		if err := checkNonNegative(op, "history.price", h.Price); err != nil {
			return nil, err
		}
	}
	for i, p := range catalog {
		if p.ID == "" {
			return nil, invalidInput(op, "catalog", "product %d has no id", i)
		}
		if err := checkNonNegative(op, "catalog.price", p.Price); err != nil {
			return nil, err
		}
		if err := checkFinite(op, "catalog.popularity", p.Popularity); err != nil {
			return nil, err
		}
		if p.Popularity < 0 || p.Popularity > 1 {
			return nil, invalidInput(op, "catalog.popularity", "product %s: must be within [0, 1], got %v", p.ID, p.Popularity)
		}
	}

	purchased := make(map[string]bool, len(history))
	for _, h := range history {
		purchased[h.ProductID] = true
	}
	pref := derivePreference(history)

	seen := make(map[string]bool, len(catalog))
	var candidates []models.Recommendation
	popularity := make(map[string]float64, len(catalog))
	for _, p := range catalog {
		if purchased[p.ID] || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		popularity[p.ID] = p.Popularity
		score, reason := scoreCandidate(p, pref)
		candidates = append(candidates, models.Recommendation{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Price:     p.Price,
			Score:     score,
			Reason:    reason,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if popularity[a.ProductID] != popularity[b.ProductID] {
			return popularity[a.ProductID] > popularity[b.ProductID]
		}
		return a.ProductID < b.ProductID
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	if candidates == nil {
		candidates = []models.Recommendation{}
	}

	return &models.RecommendationResult{
		CustomerID:      customerID,
		Recommendations: candidates,
		DiversityScore:  diversityScore(candidates),
	}, nil
}

// derivePreference 購入頻度の高い上位3カテゴリと平均購入価格
func derivePreference(history []models.PurchaseHistoryItem) customerPreference {
	counts := make(map[string]int)
	prices := make([]float64, 0, len(history))
	for _, h := range history {
		if h.Category != "" {
			counts[h.Category]++
		}
		prices = append(prices, h.Price)
	}

	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if counts[categories[i]] != counts[categories[j]] {
			return counts[categories[i]] > counts[categories[j]]
		}
		return categories[i] < categories[j]
	})
	if len(categories) > preferredCategoryTop {
		categories = categories[:preferredCategoryTop]
	}

	top := make(map[string]bool, len(categories))
	for _, c := range categories {
		top[c] = true
	}
	return customerPreference{topCategories: top, avgPrice: calculateMean(prices)}
}

// scoreCandidate スコアと、どのルールが効いたかの説明文を返す
func scoreCandidate(p models.ProductCandidate, pref customerPreference) (float64, string) {
	var score float64
	var reasons []string

	if pref.topCategories[p.Category] {
		score += categoryMatchScore
		reasons = append(reasons, fmt.Sprintf("よく購入するカテゴリ「%s」の商品です", p.Category))
	}
	// 平均価格が0のときは価格帯ルールを適用しない
	if pref.avgPrice > 0 && math.Abs(p.Price-pref.avgPrice) <= pref.avgPrice*priceTolerance {
		score += priceMatchScore
		reasons = append(reasons, fmt.Sprintf("普段の購入価格帯（平均%.0f）に近い価格です", pref.avgPrice))
	}
	if p.Popularity > 0 {
		score += popularityWeight * p.Popularity
		reasons = append(reasons, fmt.Sprintf("人気商品です（人気度%.0f%%）", p.Popularity*100))
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "新しいジャンルのご提案です")
	}
	return math.Min(score, 1.0), strings.Join(reasons, "、")
}

// diversityScore 結果に含まれるカテゴリの種類数 / 件数
func diversityScore(recs []models.Recommendation) float64 {
	if len(recs) == 0 {
		return 0
	}
	categories := make(map[string]bool, len(recs))
	for _, r := range recs {
		categories[r.Category] = true
	}
	return float64(len(categories)) / float64(len(recs))
}
