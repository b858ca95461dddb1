// Cratedigger - Vinyl Marketplace Deal Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cratedigger

package recommend

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/cratedigger/internal/models"
)

// Scope says what a rule is evaluated against.
type Scope int

const (
	// ScopeListing rules run per listing; the first matching rule wins.
	ScopeListing Scope = iota
	// ScopeSeller rules run per seller; every matching rule fires.
	ScopeSeller
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case ScopeListing:
		return "listing"
	case ScopeSeller:
		return "seller"
	default:
		return "unknown"
	}
}

// Rule is a pure predicate and builder pair. Build may assume Applies
// returned true for the same subject. Builders leave ID, ScoreValue and
// DealScore to the engine.
type Rule struct {
	Type    models.RecommendationType
	Scope   Scope
	Applies func(f *Facts, s Subject) bool
	Build   func(f *Facts, s Subject) models.Recommendation
}

// DefaultRules returns the rule list in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{Type: models.RecMultiItem, Scope: ScopeListing, Applies: multiItemApplies, Build: buildMultiItem},
		{Type: models.RecBestPrice, Scope: ScopeListing, Applies: bestPriceApplies, Build: buildBestPrice},
		{Type: models.RecHighValue, Scope: ScopeListing, Applies: highValueApplies, Build: buildHighValue},
		{Type: models.RecConditionValue, Scope: ScopeListing, Applies: conditionValueApplies, Build: buildConditionValue},
		{Type: models.RecLocationPreference, Scope: ScopeSeller, Applies: locationPreferenceApplies, Build: buildLocationPreference},
		{Type: models.RecHighFeedback, Scope: ScopeSeller, Applies: highFeedbackApplies, Build: buildHighFeedback},
	}
}

func multiItemApplies(f *Facts, s Subject) bool {
	return len(f.SellerListings(s.Seller.SellerKey)) >= 2
}

func buildMultiItem(f *Facts, s Subject) models.Recommendation {
	listings := f.SellerListings(s.Seller.SellerKey)
	wanted := 0
	for _, l := range listings {
		if l.InWantlist {
			wanted++
		}
	}

	rec := models.Recommendation{
		Type:       models.RecMultiItem,
		SellerKey:  s.Seller.SellerKey,
		SellerName: s.Seller.SellerName,
		ListingIDs: listingIDs(listings),
		Title:      fmt.Sprintf("%d items from %s", len(listings), s.Seller.SellerName),
		TotalValue: models.MoneyPtr(s.Seller.TotalValue),
	}
	rec.Description = fmt.Sprintf("Bundle %d listings (%d on your want list) worth %s in one order.",
		len(listings), wanted, f.money(s.Seller.TotalValue))

	if s.Seller.ShippingCost == nil {
		rec.Reason = fmt.Sprintf("%s carries %d relevant listings.", s.Seller.SellerName, len(listings))
		return rec
	}

	rec.ShippingCost = models.MoneyPtr(*s.Seller.ShippingCost)
	rec.TotalCost = models.MoneyPtr(s.Seller.TotalValue.Add(*s.Seller.ShippingCost))

	if savings, ok := bundleSavings(f, s.Seller, listings); ok {
		rec.PotentialSavings = models.MoneyPtr(savings)
		rec.Reason = fmt.Sprintf("Combined shipping saves %s versus ordering separately.", f.money(savings))
	} else {
		rec.Reason = fmt.Sprintf("%s carries %d relevant listings.", s.Seller.SellerName, len(listings))
	}
	return rec
}

// bundleSavings compares shipping the bundle's focus items separately with
// the seller's combined shipping. Focus items are the wanted listings, or
// every listing when none is wanted. Each separate item ships at the
// cheapest single-item rate of another seller offering the same canonical
// item, falling back to this seller's single-item rate. Non-positive
// savings report false.
func bundleSavings(f *Facts, seller *models.SellerAnalysis, listings []*models.Listing) (decimal.Decimal, bool) {
	if seller.ShippingCost == nil {
		return decimal.Zero, false
	}

	focus := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.InWantlist {
			focus = append(focus, l)
		}
	}
	if len(focus) == 0 {
		focus = listings
	}

	separate := decimal.Zero
	for _, l := range focus {
		cost, ok := separateShipping(f, seller, l)
		if !ok {
			return decimal.Zero, false
		}
		separate = separate.Add(cost)
	}

	savings := separate.Sub(*seller.ShippingCost)
	if !savings.IsPositive() {
		return decimal.Zero, false
	}
	return savings, true
}

func separateShipping(f *Facts, seller *models.SellerAnalysis, l *models.Listing) (decimal.Decimal, bool) {
	var (
		best  decimal.Decimal
		found bool
	)
	if item, ok := f.ItemFor(l.Key()); ok {
		for _, other := range f.ItemListings(item.Fingerprint) {
			if other.SellerKey() == seller.SellerKey {
				continue
			}
			alt, ok := f.Seller(other.SellerKey())
			if !ok || alt.SingleItemShipping == nil {
				continue
			}
			if !found || alt.SingleItemShipping.LessThan(best) {
				best, found = *alt.SingleItemShipping, true
			}
		}
	}
	if found {
		return best, true
	}
	if seller.SingleItemShipping == nil {
		return decimal.Zero, false
	}
	return *seller.SingleItemShipping, true
}

func bestPriceApplies(f *Facts, s Subject) bool {
	l := s.Listing
	if !l.HasPrice() {
		return false
	}
	mean, ok := f.Stats.TierMean(l.RecordCondition.Tier())
	if !ok {
		return false
	}
	limit := mean.Mul(decimal.NewFromFloat(1 - f.Config.BestPriceMargin))
	return l.Price.LessThanOrEqual(limit)
}

func buildBestPrice(f *Facts, s Subject) models.Recommendation {
	l := s.Listing
	tier := l.RecordCondition.Tier()
	mean, _ := f.Stats.TierMean(tier)

	rec := singleListing(f, s, models.RecBestPrice)
	rec.Title = fmt.Sprintf("Best price: %s", listingLabel(l))
	rec.Description = fmt.Sprintf("%s for %s from %s.", f.money(l.Price), listingLabel(l), s.Seller.SellerName)
	below := decimal.NewFromInt(100).Mul(mean.Sub(l.Price)).Div(mean)
	rec.Reason = fmt.Sprintf("Priced %s%% below the %s-condition average of %s.",
		below.StringFixed(0), tier, f.money(mean))
	return rec
}

func highValueApplies(f *Facts, s Subject) bool {
	l := s.Listing
	if !l.InWantlist || l.InCollection {
		return false
	}
	if item, ok := f.ItemFor(l.Key()); ok && len(f.ItemListings(item.Fingerprint)) == 1 {
		return true
	}
	threshold, ok := f.Stats.Quantile(f.Config.HighValueQuantile)
	return ok && l.HasPrice() && l.Price.GreaterThanOrEqual(threshold)
}

func buildHighValue(f *Facts, s Subject) models.Recommendation {
	l := s.Listing
	rec := singleListing(f, s, models.RecHighValue)
	rec.Title = fmt.Sprintf("Want-list find: %s", listingLabel(l))
	rec.Description = fmt.Sprintf("%s is on your want list and not in your collection.", listingLabel(l))

	if item, ok := f.ItemFor(l.Key()); ok && len(f.ItemListings(item.Fingerprint)) == 1 {
		rec.Reason = "Only copy found in this search."
	} else {
		rec.Reason = fmt.Sprintf("High-value copy at %s.", f.money(l.Price))
	}
	return rec
}

func conditionValueApplies(f *Facts, s Subject) bool {
	l := s.Listing
	if l.RecordCondition.Tier() != models.TierTop || !l.HasPrice() {
		return false
	}
	mid, ok := f.Stats.TierMean(models.TierMid)
	return ok && l.Price.LessThanOrEqual(mid)
}

func buildConditionValue(f *Facts, s Subject) models.Recommendation {
	l := s.Listing
	mid, _ := f.Stats.TierMean(models.TierMid)
	rec := singleListing(f, s, models.RecConditionValue)
	rec.Title = fmt.Sprintf("%s copy at a VG price: %s", l.RecordCondition, listingLabel(l))
	rec.Description = fmt.Sprintf("%s graded %s for %s.", listingLabel(l), l.RecordCondition, f.money(l.Price))
	rec.Reason = fmt.Sprintf("Costs no more than the average mid-condition copy (%s).", f.money(mid))
	return rec
}

func locationPreferenceApplies(f *Facts, s Subject) bool {
	return !f.Preference.Worldwide && s.Seller.LocationScore >= 100 && s.Seller.WantlistCount > 0
}

func buildLocationPreference(f *Facts, s Subject) models.Recommendation {
	rec := wantedFromSeller(f, s, models.RecLocationPreference)
	rec.Title = fmt.Sprintf("Ships from your area: %s", s.Seller.SellerName)
	rec.Reason = "Seller is located in your preferred shipping area."
	return rec
}

func highFeedbackApplies(f *Facts, s Subject) bool {
	return s.Seller.ReputationScore >= f.Config.HighFeedbackMin && s.Seller.WantlistCount > 0
}

func buildHighFeedback(f *Facts, s Subject) models.Recommendation {
	rec := wantedFromSeller(f, s, models.RecHighFeedback)
	rec.Title = fmt.Sprintf("Trusted seller: %s", s.Seller.SellerName)
	rec.Reason = fmt.Sprintf("Reputation score %.0f out of 100.", s.Seller.ReputationScore)
	return rec
}

func singleListing(f *Facts, s Subject, t models.RecommendationType) models.Recommendation {
	l := s.Listing
	rec := models.Recommendation{
		Type:       t,
		SellerKey:  s.Seller.SellerKey,
		SellerName: s.Seller.SellerName,
		ListingIDs: []string{l.Key()},
	}
	if l.HasPrice() {
		rec.TotalValue = models.MoneyPtr(l.Price)
		if s.Seller.SingleItemShipping != nil {
			rec.ShippingCost = models.MoneyPtr(*s.Seller.SingleItemShipping)
			rec.TotalCost = models.MoneyPtr(l.Price.Add(*s.Seller.SingleItemShipping))
		}
	}
	return rec
}

func wantedFromSeller(f *Facts, s Subject, t models.RecommendationType) models.Recommendation {
	wanted := make([]*models.Listing, 0, s.Seller.WantlistCount)
	value := decimal.Zero
	for _, l := range f.SellerListings(s.Seller.SellerKey) {
		if l.InWantlist {
			wanted = append(wanted, l)
			if l.HasPrice() {
				value = value.Add(l.Price)
			}
		}
	}
	return models.Recommendation{
		Type:        t,
		SellerKey:   s.Seller.SellerKey,
		SellerName:  s.Seller.SellerName,
		ListingIDs:  listingIDs(wanted),
		TotalValue:  models.MoneyPtr(value),
		Description: fmt.Sprintf("%d want-list items from %s worth %s.", len(wanted), s.Seller.SellerName, f.money(value)),
	}
}

func listingIDs(listings []*models.Listing) []string {
	ids := make([]string, len(listings))
	for i, l := range listings {
		ids[i] = l.Key()
	}
	return ids
}

func listingLabel(l *models.Listing) string {
	switch {
	case l.Title != "" && l.Artist != "":
		return fmt.Sprintf("%s - %s", l.Artist, l.Title)
	case l.Title != "":
		return l.Title
	case l.Artist != "":
		return l.Artist
	default:
		return l.Key()
	}
}

func (f *Facts) money(d decimal.Decimal) string {
	if f.Currency == "" {
		return d.StringFixed(models.MoneyPlaces)
	}
	return d.StringFixed(models.MoneyPlaces) + " " + f.Currency
}
