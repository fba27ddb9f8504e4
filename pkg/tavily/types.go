package tavily

// Depth 搜索深度
type Depth string

const (
	DepthBasic    Depth = "basic"
	DepthAdvanced Depth = "advanced"
)

// Result 单条搜索结果
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// SearchResult 搜索返回，失败时为空结果
type SearchResult struct {
	Results []Result `json:"results"`
	Answer  string   `json:"answer"`
}

// Empty 是否没有任何可用内容
func (r *SearchResult) Empty() bool {
	return r == nil || (len(r.Results) == 0 && r.Answer == "")
}

type searchRequest struct {
	APIKey            string `json:"api_key,omitempty"`
	Query             string `json:"query"`
	SearchDepth       Depth  `json:"search_depth"`
	MaxResults        int    `json:"max_results"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeImages     bool   `json:"include_images"`
	IncludeRawContent bool   `json:"include_raw_content"`
}
