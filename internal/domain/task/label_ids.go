package task

import (
	"bytes"
	"encoding/json"
)

// LabelIDs records how the label_ids key appeared in a request body.
// An absent key or a JSON null leaves Present false.
type LabelIDs struct {
	Present bool
	IsList  bool
	// BadItems is set when the list carried something other than strings.
	BadItems bool
	IDs      []string
}

func (l *LabelIDs) UnmarshalJSON(data []byte) error {
	*l = LabelIDs{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	l.Present = true

	if trimmed[0] != '[' {
		return nil
	}
	l.IsList = true

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		l.BadItems = true
		return nil
	}

	l.IDs = make([]string, 0, len(items))
	for _, item := range items {
		var id string
		if err := json.Unmarshal(item, &id); err != nil {
			l.BadItems = true
			l.IDs = nil
			return nil
		}
		l.IDs = append(l.IDs, id)
	}

	return nil
}

func Of(ids ...string) LabelIDs {
	return LabelIDs{Present: true, IsList: true, IDs: ids}
}
