package ai

// SummaryRequest is one article presented to the summarization service.
// Index is the position inside the current sub-batch and is echoed back
// as SummaryItem.ItemIndex.
type SummaryRequest struct {
	Index int
	Title string
}

// SummaryItem is one entry of the service's JSON reply. Field names follow
// the wire format; every field is optional on the wire.
type SummaryItem struct {
	ItemIndex         *int     `json:"item_index"`
	KoreanTitle       string   `json:"korean_title"`
	KoreanBody        string   `json:"korean_body"`
	ImpactScore       int      `json:"impact_score"`
	MarketSentiment   string   `json:"market_sentiment"`
	ActionableInsight string   `json:"actionable_insight"`
	RelatedAssets     []string `json:"related_assets"`
}

// Index returns the echoed item index and whether one was present.
func (s SummaryItem) Index() (int, bool) {
	if s.ItemIndex == nil {
		return 0, false
	}
	return *s.ItemIndex, true
}
