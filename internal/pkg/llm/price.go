package llm

import (
	"UniMarket/internal/api/config"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/tmc/langchaingo/llms"
)

// PriceSuggestion 模型给出的建议价格区间，仅供参考
type PriceSuggestion struct {
	MinPrice  float64 `json:"min_price"`
	MaxPrice  float64 `json:"max_price"`
	Category  string  `json:"category"`
	Rationale string  `json:"rationale"`
}

// SuggestPrice 根据商品文本给出建议价格
// 调用方必须容忍失败：建议服务不可用不能阻塞商品创建。
func SuggestPrice(ctx context.Context, title, description, condition string) (*PriceSuggestion, error) {
	if llmClient == nil {
		return nil, errors.New("llm client is not initialized")
	}

	userPrompt := fmt.Sprintf("标题: %s\n描述: %s\n成色: %s", title, description, condition)

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, priceSuggestPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	resp, err := llmClient.GenerateContent(ctx, messages,
		llms.WithModel(config.Cfg.LLM.Model),
		llms.WithTemperature(0.2),
	)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty llm response")
	}

	content := strings.TrimSpace(resp.Choices[0].Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var suggestion PriceSuggestion
	if err := json.Unmarshal([]byte(content), &suggestion); err != nil {
		return nil, fmt.Errorf("unmarshal price suggestion: %w", err)
	}

	return &suggestion, nil
}
