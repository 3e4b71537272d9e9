package policy

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Policy holds the procurement policy texts and routing constants the
// pipeline stamps onto quotation records. The compiled-in defaults reproduce
// the documented policy; a YAML file can override individual values.
type Policy struct {
	// Canonical legal reason texts, selected by contract method.
	ReasonDesignatedBid string `yaml:"reason_designated_bid"`
	ReasonPrivate       string `yaml:"reason_private"`

	// Fixed non-approval reason stamped on every quotation record.
	NonApprovalCode string `yaml:"non_approval_code"`
	NonApprovalText string `yaml:"non_approval_text"`

	// Creation types that shorten the response window.
	UrgentCreationTypes []string `yaml:"urgent_creation_types"`
	ResponseWindowShort int      `yaml:"response_window_short"`
	ResponseWindowLong  int      `yaml:"response_window_long"`

	// Vendor-code prefix that triggers technical evaluation.
	TechEvalVendorPrefix string `yaml:"tech_eval_vendor_prefix"`
}

// Default returns the compiled-in policy.
func Default() *Policy {
	return &Policy{
		ReasonDesignatedBid: "AC002_2: 계약의 성질 또는 목적에 비추어 특수한 설비/자재/물품 또는 실적이 있는 자가 아니면 계약의 목적을 달성하기 곤란한 경우로서 입찰대상자가 10인 이내인 경우",
		ReasonPrivate:       "SV023_2: 계약 목적의 특성 상 경쟁입찰에 부칠 수 없거나 경쟁입찰에 부칠 경우 현저하게 불리하다고 인정 되는 경우",

		NonApprovalCode: "002_2",
		NonApprovalText: "BULK 재료로서 생산 BOM에 의거 구매요청 발행",

		UrgentCreationTypes: []string{"초긴급", "긴급"},
		ResponseWindowShort: 1,
		ResponseWindowLong:  3,

		TechEvalVendorPrefix: "2",
	}
}

// Load reads a policy YAML file and merges it over the defaults. Values left
// empty in the file keep their default.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "policy: read %s", path)
	}

	var override Policy
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrap(err, "policy: parse")
	}

	p := Default()
	if override.ReasonDesignatedBid != "" {
		p.ReasonDesignatedBid = override.ReasonDesignatedBid
	}
	if override.ReasonPrivate != "" {
		p.ReasonPrivate = override.ReasonPrivate
	}
	if override.NonApprovalCode != "" {
		p.NonApprovalCode = override.NonApprovalCode
	}
	if override.NonApprovalText != "" {
		p.NonApprovalText = override.NonApprovalText
	}
	if len(override.UrgentCreationTypes) > 0 {
		p.UrgentCreationTypes = override.UrgentCreationTypes
	}
	if override.ResponseWindowShort > 0 {
		p.ResponseWindowShort = override.ResponseWindowShort
	}
	if override.ResponseWindowLong > 0 {
		p.ResponseWindowLong = override.ResponseWindowLong
	}
	if override.TechEvalVendorPrefix != "" {
		p.TechEvalVendorPrefix = override.TechEvalVendorPrefix
	}

	return p, nil
}

// IsUrgentCreationType reports whether the requisition-creation type shortens
// the response window.
func (p *Policy) IsUrgentCreationType(creationType string) bool {
	for _, t := range p.UrgentCreationTypes {
		if t == creationType {
			return true
		}
	}
	return false
}
