package insight

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a reply that parsed but does not have the Insights shape.
var ErrMalformedResponse = errors.New("malformed insights response")

// Parse decodes raw JSON and accepts it only if summary is a string and both
// actionItems and talkingPoints are arrays of strings.
func Parse(raw []byte) (*Insights, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse insights: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedResponse)
	}

	summary, ok := doc["summary"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: summary is not a string", ErrMalformedResponse)
	}

	actionItems, err := stringList(doc, "actionItems")
	if err != nil {
		return nil, err
	}
	talkingPoints, err := stringList(doc, "talkingPoints")
	if err != nil {
		return nil, err
	}

	return &Insights{
		Summary:       summary,
		ActionItems:   actionItems,
		TalkingPoints: talkingPoints,
	}, nil
}

func stringList(doc map[string]interface{}, key string) ([]string, error) {
	raw, ok := doc[key].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an array", ErrMalformedResponse, key)
	}

	out := make([]string, 0, len(raw))
	for i, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is not a string", ErrMalformedResponse, key, i)
		}
		out = append(out, s)
	}
	return out, nil
}
