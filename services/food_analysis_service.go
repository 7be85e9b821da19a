package services

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strconv"
	"strings"
)

// Analysis outcome tags. The service never raises parse failures as
// errors: the caller always gets a FoodAnalysis and decides what to show.
const (
	AnalysisParsed        = "parsed"
	AnalysisMalformed     = "malformed"
	AnalysisProviderError = "provider_error"
)

// AnalyzedFood is a draft entry the client can review and then POST to
// /temp-intake/add. Macros the model omitted stay zero.
type AnalyzedFood struct {
	Name        string  `json:"name"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	ServingSize string  `json:"serving_size,omitempty"`
	HealthScore *int    `json:"health_score,omitempty"`
}

// FoodAnalysis is the tagged result of one analysis call.
type FoodAnalysis struct {
	Status  string        `json:"status"` // parsed | malformed | provider_error
	Food    *AnalyzedFood `json:"food,omitempty"`
	Labels  []string      `json:"labels,omitempty"`   // Rekognition fallback hints
	RawText string        `json:"raw_text,omitempty"` // model output when not parsed
	Reason  string        `json:"reason,omitempty"`
}

// GenAIProvider abstracts the generative model. imageDataURI is empty for
// text-only analysis.
type GenAIProvider interface {
	GenerateContent(ctx context.Context, prompt, imageDataURI string) (string, error)
}

// FoodAnalysisService normalizes loosely structured model output into a
// draft food entry. Generative models wrap their JSON in prose or code
// fences more often than not, so extraction tries several shapes before
// giving up, and an unusable answer degrades to label detection instead of
// failing the request.
type FoodAnalysisService struct {
	provider GenAIProvider
	rek      *RekognitionService // optional
}

func NewFoodAnalysisService(provider GenAIProvider, rek *RekognitionService) *FoodAnalysisService {
	return &FoodAnalysisService{provider: provider, rek: rek}
}

const analysisPrompt = `Analyze this food and respond with ONLY a JSON object, no additional text:
{"foodName": string, "calories": number, "servingSize": string, "healthScore": integer 0-10,
 "nutritionFacts": {"protein": number, "carbs": number, "fat": number}}
All nutrition values are for the shown/named serving.`

// AnalyzeImage runs the generative model over a base64 data-URI image.
func (s *FoodAnalysisService) AnalyzeImage(ctx context.Context, imageDataURI string) *FoodAnalysis {
	text, err := s.provider.GenerateContent(ctx, analysisPrompt, imageDataURI)
	if err != nil {
		res := &FoodAnalysis{Status: AnalysisProviderError, Reason: err.Error()}
		s.labelFallback(ctx, imageDataURI, res)
		return res
	}
	res := normalizeAnalysis(text)
	if res.Status != AnalysisParsed {
		s.labelFallback(ctx, imageDataURI, res)
	}
	return res
}

// AnalyzeName analyzes a food by its free-text name.
func (s *FoodAnalysisService) AnalyzeName(ctx context.Context, name string) *FoodAnalysis {
	text, err := s.provider.GenerateContent(ctx, analysisPrompt+"\nFood: "+name, "")
	if err != nil {
		return &FoodAnalysis{Status: AnalysisProviderError, Reason: err.Error()}
	}
	return normalizeAnalysis(text)
}

func (s *FoodAnalysisService) labelFallback(ctx context.Context, imageDataURI string, res *FoodAnalysis) {
	if s.rek == nil || imageDataURI == "" {
		return
	}
	labels, err := s.rek.RecognizeLabels(ctx, imageDataURI)
	if err != nil {
		log.Printf("food analysis: label fallback failed: %v", err)
		return
	}
	res.Labels = labels
	if res.Food == nil && len(labels) > 0 {
		// Best-effort name only; macros stay zero for the user to fill in.
		res.Food = &AnalyzedFood{Name: labels[0]}
	}
}

// Model output is matched against several shapes: a ```json fence, a bare
// fence, then the widest brace-delimited blob.
var jsonPatterns = []*regexp.Regexp{
	regexp.MustCompile("```json\\s*(\\{[\\s\\S]*?\\})\\s*```"),
	regexp.MustCompile("```\\s*(\\{[\\s\\S]*?\\})\\s*```"),
	regexp.MustCompile(`(\{[\s\S]*\})`),
}

// normalizeAnalysis turns raw model text into a tagged result. Text with
// no parsable JSON, or JSON without a food name, is Malformed rather than
// an error.
func normalizeAnalysis(text string) *FoodAnalysis {
	var parsed map[string]any
	for _, pat := range jsonPatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		var candidate map[string]any
		if err := json.Unmarshal([]byte(m[1]), &candidate); err != nil {
			continue
		}
		parsed = candidate
		break
	}
	if parsed == nil {
		return &FoodAnalysis{Status: AnalysisMalformed, RawText: text, Reason: "no parsable JSON in model output"}
	}

	name := stringField(parsed, "foodName", "food_name", "name")
	if name == "" {
		return &FoodAnalysis{Status: AnalysisMalformed, RawText: text, Reason: "model output missing food name"}
	}

	food := &AnalyzedFood{
		Name:        name,
		Calories:    numberField(parsed, "calories"),
		ServingSize: stringField(parsed, "servingSize", "serving_size"),
	}
	if facts, ok := parsed["nutritionFacts"].(map[string]any); ok {
		food.Protein = numberField(facts, "protein")
		food.Carbs = numberField(facts, "carbs", "carbohydrates")
		food.Fat = numberField(facts, "fat")
	} else {
		// Some responses flatten the macros onto the top level.
		food.Protein = numberField(parsed, "protein")
		food.Carbs = numberField(parsed, "carbs", "carbohydrates")
		food.Fat = numberField(parsed, "fat")
	}
	if hs, ok := intField(parsed, "healthScore", "health_score"); ok && hs >= 0 && hs <= 10 {
		food.HealthScore = &hs
	}

	clampNonNegative(food)
	return &FoodAnalysis{Status: AnalysisParsed, Food: food}
}

func clampNonNegative(f *AnalyzedFood) {
	if f.Calories < 0 {
		f.Calories = 0
	}
	if f.Protein < 0 {
		f.Protein = 0
	}
	if f.Carbs < 0 {
		f.Carbs = 0
	}
	if f.Fat < 0 {
		f.Fat = 0
	}
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// numberField tolerates the model answering "95 kcal" or "12g" where a
// number was requested.
func numberField(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v
		case string:
			trimmed := strings.TrimSpace(v)
			if i := strings.IndexFunc(trimmed, func(r rune) bool {
				return (r < '0' || r > '9') && r != '.' && r != '-'
			}); i > 0 {
				trimmed = trimmed[:i]
			}
			if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func intField(m map[string]any, keys ...string) (int, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return int(v), true
		case string:
			if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return i, true
			}
		}
	}
	return 0, false
}
