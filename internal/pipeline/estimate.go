package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/0JaeminKim0/pipe-prpo/internal/config"
	"github.com/0JaeminKim0/pipe-prpo/internal/model"
	"github.com/0JaeminKim0/pipe-prpo/pkg/anthropic"
)

const estimateSystemPrompt = `당신은 조선/해양 산업의 구매 전문가입니다. 자재의 적정 입찰 예정가를 산정합니다. 반드시 유효한 JSON으로 응답하세요.`

// similarKeyPrefixLen is how many leading key characters two materials must
// share to count as similar for prompt context.
const similarKeyPrefixLen = 6

// maxSimilarMaterials caps the history rows included in a prompt.
const maxSimilarMaterials = 5

// maxPromptDescLen truncates history descriptions in the prompt.
const maxPromptDescLen = 40

// priceResult is the outcome of one estimation strategy.
type priceResult struct {
	Total  float64
	Recent float64 // reference unit price carried into the review stage
}

// priceStrategy is one tier of the estimation fallback chain.
type priceStrategy struct {
	Method model.PriceMethod
	Fn     func(ctx context.Context, rec *model.PRRecord) (*priceResult, bool)
}

// Estimator resolves the estimated bid price for each quotation record via
// an ordered strategy chain: exact composite-key match, material-group
// average, external estimation, fixed default. First success wins.
type Estimator struct {
	index   Index
	groups  UnitPriceGroups
	history []*model.PORecord

	client anthropic.Client // nil disables the external tier
	aiCfg  config.AnthropicConfig
	budget int
	deflt  float64

	calls int
	log   []model.PricingEntry
	now   func() time.Time

	printer *message.Printer
}

// NewEstimator builds an Estimator for one run. The client may be nil, in
// which case records reaching the external tier fall straight to the default
// price.
func NewEstimator(idx Index, groups UnitPriceGroups, history []*model.PORecord, client anthropic.Client, aiCfg config.AnthropicConfig, pcfg config.PipelineConfig) *Estimator {
	return &Estimator{
		index:   idx,
		groups:  groups,
		history: history,
		client:  client,
		aiCfg:   aiCfg,
		budget:  pcfg.LLMCallBudget,
		deflt:   pcfg.DefaultTotalPrice,
		now:     time.Now,
		printer: message.NewPrinter(language.Korean),
	}
}

// Calls returns how many external estimations succeeded this run.
func (e *Estimator) Calls() int { return e.calls }

// Log returns the pricing audit log accumulated this run.
func (e *Estimator) Log() []model.PricingEntry { return e.log }

// Run estimates prices for the quotation set in iteration order. External
// calls are strictly serial so the call budget is consumed in order.
func (e *Estimator) Run(ctx context.Context, quotations []*model.PRRecord) map[model.PriceMethod]int {
	strategies := []priceStrategy{
		{model.PriceMethodExactMatch, e.exactMatch},
		{model.PriceMethodGroupAverage, e.groupAverage},
		{model.PriceMethodLLM, func(c context.Context, r *model.PRRecord) (*priceResult, bool) { return e.llmEstimate(c, r) }},
	}

	hist := make(map[model.PriceMethod]int)
	for _, rec := range quotations {
		method := model.PriceMethodDefault
		res := &priceResult{Total: e.deflt}

		for _, s := range strategies {
			if r, ok := s.Fn(ctx, rec); ok {
				method = s.Method
				res = r
				break
			}
		}

		rec.EstimatedTotal = res.Total
		rec.PriceMethod = method
		rec.RecentUnitPrice = res.Recent
		hist[method]++
	}

	for method, count := range hist {
		zap.L().Info("estimate: price method",
			zap.String("method", string(method)),
			zap.Int("count", count),
		)
	}

	return hist
}

// exactMatch prices from the PO history record with the same composite key.
func (e *Estimator) exactMatch(_ context.Context, rec *model.PRRecord) (*priceResult, bool) {
	po, ok := e.index[CompositeKey(rec.MaterialKey, rec.Description)]
	if !ok {
		return nil, false
	}
	unit := po.UnitPrice()
	return &priceResult{
		Total:  math.Round(unit * rec.EffectiveQuantity()),
		Recent: unit,
	}, true
}

// groupAverage prices from the mean unit price of every history row sharing
// the material key, independent of description.
func (e *Estimator) groupAverage(_ context.Context, rec *model.PRRecord) (*priceResult, bool) {
	prices := e.groups[rec.MaterialKey]
	if len(prices) == 0 {
		return nil, false
	}
	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	avg := sum / float64(len(prices))
	return &priceResult{
		Total:  math.Round(avg * rec.EffectiveQuantity()),
		Recent: avg,
	}, true
}

// llmEstimate asks the pricing collaborator for an estimate. The budget
// counts successful estimates only: a failed call leaves the budget intact
// and the record falls through to the default price.
func (e *Estimator) llmEstimate(ctx context.Context, rec *model.PRRecord) (*priceResult, bool) {
	if e.client == nil || e.calls >= e.budget {
		return nil, false
	}

	zap.L().Info("estimate: external call",
		zap.String("requisition", rec.RequisitionID),
		zap.String("material", rec.MaterialNo),
	)

	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.aiCfg.Model,
		MaxTokens: e.aiCfg.MaxTokens,
		System:    anthropic.BuildCachedSystemBlocks(estimateSystemPrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: e.buildPrompt(rec)},
		},
	})
	if err != nil {
		zap.L().Warn("estimate: external call failed",
			zap.String("requisition", rec.RequisitionID),
			zap.Error(err),
		)
		return nil, false
	}

	resp.Usage.LogCost(e.aiCfg.Model, "estimate")

	est, ok := ParseEstimate(extractText(resp))
	if !ok || est.UnitPrice <= 0 {
		zap.L().Warn("estimate: unusable response",
			zap.String("requisition", rec.RequisitionID),
		)
		return nil, false
	}

	e.calls++
	e.log = append(e.log, model.PricingEntry{
		Timestamp:     e.now(),
		RequisitionID: rec.RequisitionID,
		MaterialNo:    rec.MaterialNo,
		Result:        est,
	})

	return &priceResult{
		Total: math.Round(est.UnitPrice * rec.EffectiveQuantity()),
	}, true
}

// buildPrompt assembles the estimation request: the target material plus up
// to five history rows whose material key shares the leading six characters.
func (e *Estimator) buildPrompt(rec *model.PRRecord) string {
	prefix := keyPrefix(rec.MaterialKey)

	var similar []*model.PORecord
	for _, po := range e.history {
		if keyPrefix(po.MaterialKey) == prefix {
			similar = append(similar, po)
			if len(similar) == maxSimilarMaterials {
				break
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("## 입찰 예정가 산정 요청\n\n### 대상 자재\n")
	fmt.Fprintf(&sb, "- 자재번호: %s\n", rec.MaterialNo)
	fmt.Fprintf(&sb, "- 자재내역: %s\n", rec.Description)
	fmt.Fprintf(&sb, "- 요청수량: %v %s\n", rec.Quantity, rec.Unit)
	fmt.Fprintf(&sb, "- 소싱그룹: %s\n", rec.SourcingGroup)

	sb.WriteString("\n### 유사 자재 발주실적\n")
	if len(similar) == 0 {
		sb.WriteString("(유사 자재 없음)\n")
	}
	for _, po := range similar {
		desc := po.Description
		if runes := []rune(desc); len(runes) > maxPromptDescLen {
			desc = string(runes[:maxPromptDescLen])
		}
		fmt.Fprintf(&sb, "- 자재: %s / 단가: %s원 / 발주수량: %v\n",
			desc,
			e.printer.Sprintf("%d", int64(math.Round(po.UnitPrice()))),
			po.Quantity,
		)
	}

	sb.WriteString("\n### 요청\n위 자재의 적정 입찰 예정가를 산정해주세요.\n\n응답 형식:\n")
	sb.WriteString("```json\n{\"estimated_unit_price\": <숫자>, \"rationale\": \"<설명>\", \"confidence\": \"<high|medium|low>\"}\n```")

	return sb.String()
}

func keyPrefix(key string) string {
	if len(key) > similarKeyPrefixLen {
		return key[:similarKeyPrefixLen]
	}
	return key
}

// extractText concatenates the text blocks of a response.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "" || b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// ParseEstimate parses a collaborator response. Two encodings are tolerated:
// a fenced json code block, or a bare brace-delimited object. Anything else
// yields no estimate.
func ParseEstimate(text string) (model.PriceEstimate, bool) {
	text = cleanJSON(text)
	if !strings.HasPrefix(text, "{") {
		return model.PriceEstimate{}, false
	}

	var est model.PriceEstimate
	if err := json.Unmarshal([]byte(text), &est); err != nil {
		return model.PriceEstimate{}, false
	}

	est.Confidence = normalizeConfidence(est.Confidence)
	return est, true
}

// normalizeConfidence folds the legacy 상/중/하 answers into the enum.
func normalizeConfidence(c string) string {
	switch strings.ToLower(strings.TrimSpace(c)) {
	case "high", "상":
		return "high"
	case "low", "하":
		return "low"
	case "medium", "중":
		return "medium"
	default:
		return c
	}
}

// cleanJSON strips markdown fences and extracts the JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
