package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fenway-events/eventhub-api/internal/models"
	appErrors "github.com/fenway-events/eventhub-api/pkg/errors"
)

type completionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type eventSearcher interface {
	Search(ctx context.Context, criteria models.FilterCriteria) ([]models.EventDetail, error)
}

const extractionPrompt = `You are an assistant that extracts event search filters from a user's message.
Respond with ONLY a JSON object. Include a field only when the message clearly implies it.

Fields:
  "types": array of event categories mentioned (e.g. ["music", "sports"])
  "operator": "or" if any category may match, "and" if all must match
  "location": a city or venue name
  "dateRange": one of "today", "tomorrow", "weekend", "next week", "next month", "last month", "next N days", "YYYY-MM-DD to YYYY-MM-DD"
  "price": the price phrase, e.g. "free", "under 50", "over 100"
  "organizer": an organizer or organization name
  "searchTerm": a keyword to match in event names and descriptions
  "attendance": an attendance phrase, e.g. "more than 100"
  "sort": one of "price_asc", "price_desc", "date_asc", "date_desc", "rating"
  "isReported": true only if the user asks for reported or flagged events

Examples:
  "free concerts this weekend" -> {"types":["music"],"operator":"or","dateRange":"weekend","price":"free"}
  "tech and networking events under $20" -> {"types":["tech","networking"],"operator":"and","price":"under 20"}
  "events by City Arts Collective next week" -> {"organizer":"City Arts Collective","dateRange":"next week"}

User message: %q`

// ChatbotService turns natural-language requests into filter criteria via an
// external completion service, then runs the resulting search.
type ChatbotService struct {
	client          completionClient
	events          eventSearcher
	logger          *zap.Logger
	defaultLocation string
}

// NewChatbotService constructs a ChatbotService.
func NewChatbotService(client completionClient, events eventSearcher, logger *zap.Logger, defaultLocation string) *ChatbotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatbotService{client: client, events: events, logger: logger, defaultLocation: defaultLocation}
}

// SuggestEvents extracts criteria from the message and returns matching
// events together with the criteria used. Extraction failures are never
// retried; the caller gets a single terminal error.
func (s *ChatbotService) SuggestEvents(ctx context.Context, message string) ([]models.EventDetail, *models.FilterCriteria, error) {
	// "near me" carries no location the completion service can use, so the
	// configured default city stands in before extraction.
	substituted := replaceNearMe(message, s.defaultLocation)

	raw, err := s.client.Complete(ctx, fmt.Sprintf(extractionPrompt, substituted))
	if err != nil {
		s.logger.Error("criteria extraction failed", zap.Error(err))
		return nil, nil, appErrors.Wrap(err, appErrors.ErrExtractionFailed.Code, appErrors.ErrExtractionFailed.Status, appErrors.ErrExtractionFailed.Message)
	}

	criteria, err := parseCriteria(raw)
	if err != nil {
		s.logger.Error("criteria parse failed", zap.Error(err), zap.String("raw", raw))
		return nil, nil, appErrors.Wrap(err, appErrors.ErrExtractionFailed.Code, appErrors.ErrExtractionFailed.Status, appErrors.ErrExtractionFailed.Message)
	}

	// The model sometimes echoes the phrase back instead of substituting.
	criteria.Location = replaceNearMe(criteria.Location, s.defaultLocation)

	events, err := s.events.Search(ctx, *criteria)
	if err != nil {
		s.logger.Error("criteria search failed", zap.Error(err))
		return nil, nil, appErrors.Wrap(err, appErrors.ErrQueryFailed.Code, appErrors.ErrQueryFailed.Status, appErrors.ErrQueryFailed.Message)
	}

	s.logger.Info("chatbot suggestion served",
		zap.Int("matches", len(events)),
		zap.Strings("types", criteria.Types))
	return events, criteria, nil
}

// parseCriteria decodes the completion output, tolerating surrounding prose
// or markdown fences around the JSON object.
func parseCriteria(raw string) (*models.FilterCriteria, error) {
	payload := extractJSONObject(raw)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object in completion output")
	}

	var criteria models.FilterCriteria
	if err := json.Unmarshal([]byte(payload), &criteria); err != nil {
		return nil, fmt.Errorf("decode criteria: %w", err)
	}
	return &criteria, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

// replaceNearMe substitutes every case-insensitive "near me" in a single pass
// over the input, so the substituted location is never re-scanned.
func replaceNearMe(text, location string) string {
	if location == "" {
		return text
	}
	const phrase = "near me"
	lower := strings.ToLower(text)

	var b strings.Builder
	pos := 0
	for {
		idx := strings.Index(lower[pos:], phrase)
		if idx < 0 {
			b.WriteString(text[pos:])
			return b.String()
		}
		idx += pos
		b.WriteString(text[pos:idx])
		b.WriteString(location)
		pos = idx + len(phrase)
	}
}
