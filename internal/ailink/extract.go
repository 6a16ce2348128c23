package ailink

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// CodeReview is the structured review of a local diff.
type CodeReview struct {
	Summary          string         `mapstructure:"summary" json:"summary"`
	Issues           []string       `mapstructure:"issues" json:"issues"`
	Suggestions      []string       `mapstructure:"suggestions" json:"suggestions"`
	SecurityConcerns []string       `mapstructure:"security_concerns" json:"security_concerns"`
	Rating           string         `mapstructure:"rating" json:"rating"`
	Recommendation   string         `mapstructure:"recommendation" json:"recommendation"`
	Error            string         `mapstructure:"error" json:"error,omitempty"`
	Extra            map[string]any `mapstructure:",remain" json:"extra,omitempty"`
}

// PullRequestReview is the structured review of a pull request.
type PullRequestReview struct {
	OverallAssessment string         `mapstructure:"overall_assessment" json:"overall_assessment,omitempty"`
	CodeQuality       string         `mapstructure:"code_quality" json:"code_quality,omitempty"`
	TestCoverage      string         `mapstructure:"test_coverage" json:"test_coverage,omitempty"`
	Documentation     string         `mapstructure:"documentation" json:"documentation,omitempty"`
	BreakingChanges   []string       `mapstructure:"breaking_changes" json:"breaking_changes,omitempty"`
	Issues            []string       `mapstructure:"issues" json:"issues,omitempty"`
	Suggestions       []string       `mapstructure:"suggestions" json:"suggestions,omitempty"`
	Recommendation    string         `mapstructure:"recommendation" json:"recommendation"`
	ReviewComment     string         `mapstructure:"review_comment" json:"review_comment"`
	Error             string         `mapstructure:"error" json:"error,omitempty"`
	Extra             map[string]any `mapstructure:",remain" json:"extra,omitempty"`
}

// IssueTriage is the triage analysis of an issue.
type IssueTriage struct {
	Priority                   string         `mapstructure:"priority" json:"priority,omitempty"`
	Category                   string         `mapstructure:"category" json:"category,omitempty"`
	Complexity                 string         `mapstructure:"complexity" json:"complexity,omitempty"`
	SuggestedLabels            []string       `mapstructure:"suggested_labels" json:"suggested_labels,omitempty"`
	RequiresImmediateAttention bool           `mapstructure:"requires_immediate_attention" json:"requires_immediate_attention"`
	Summary                    string         `mapstructure:"summary" json:"summary"`
	Error                      string         `mapstructure:"error" json:"error,omitempty"`
	Extra                      map[string]any `mapstructure:",remain" json:"extra,omitempty"`
}

// ExtractJSON finds a JSON object in model output. It tries a fenced code
// block first, then the span from the first '{' to the last '}'. found is
// false when the text holds no candidate at all; err is set when a candidate
// exists but does not parse.
func ExtractJSON(text string) (obj map[string]any, found bool, err error) {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		var fenced map[string]any
		if err := json.Unmarshal([]byte(m[1]), &fenced); err == nil {
			return fenced, true, nil
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false, nil
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err != nil {
		return nil, true, fmt.Errorf("parse response json: %w", err)
	}
	return obj, true, nil
}

// parseCodeReview decodes a review, falling back to the raw text as summary.
func parseCodeReview(text string) *CodeReview {
	fallback := func(errText string) *CodeReview {
		return &CodeReview{
			Summary:          text,
			Issues:           []string{},
			Suggestions:      []string{},
			SecurityConcerns: []string{},
			Rating:           "N/A",
			Recommendation:   "comment",
			Error:            errText,
		}
	}
	obj, found, err := ExtractJSON(text)
	if !found {
		return fallback("")
	}
	if err != nil {
		return fallback(err.Error())
	}
	var review CodeReview
	if err := decodeObject(obj, &review); err != nil {
		return fallback(err.Error())
	}
	return &review
}

func parsePullRequestReview(text string) *PullRequestReview {
	fallback := func(errText string) *PullRequestReview {
		return &PullRequestReview{ReviewComment: text, Recommendation: "comment", Error: errText}
	}
	obj, found, err := ExtractJSON(text)
	if !found {
		return fallback("")
	}
	if err != nil {
		return fallback(err.Error())
	}
	var review PullRequestReview
	if err := decodeObject(obj, &review); err != nil {
		return fallback(err.Error())
	}
	return &review
}

func parseIssueTriage(text string) *IssueTriage {
	fallback := func(errText string) *IssueTriage {
		return &IssueTriage{Summary: text, Error: errText}
	}
	obj, found, err := ExtractJSON(text)
	if !found {
		return fallback("")
	}
	if err != nil {
		return fallback(err.Error())
	}
	var triage IssueTriage
	if err := decodeObject(obj, &triage); err != nil {
		return fallback(err.Error())
	}
	return &triage
}

// parseLabels splits a comma-separated label list.
func parseLabels(text string) []string {
	parts := strings.Split(strings.TrimSpace(text), ",")
	labels := make([]string, 0, len(parts))
	for _, part := range parts {
		if label := strings.TrimSpace(part); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

func decodeObject(obj map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(stringifyHook, mapstructure.StringToSliceHookFunc(",")),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	return decoder.Decode(obj)
}

// stringifyHook renders nested objects as JSON when the target is a string.
// Models sometimes answer {"issues":[{"line":3,"text":"..."}]}.
func stringifyHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Map, reflect.Slice:
		encoded, err := json.Marshal(data)
		if err != nil {
			return data, nil
		}
		return string(encoded), nil
	}
	return data, nil
}
