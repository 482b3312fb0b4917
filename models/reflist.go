package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RefList is an ordered list of referenced document ids (game.events,
// game.userInfos, user.gameInfos). Stored as a jsonb array.
type RefList []string

// Contains reports whether id is already referenced.
func (l RefList) Contains(id string) bool {
	for _, ref := range l {
		if ref == id {
			return true
		}
	}
	return false
}

// Append adds id to the end of the list unless it is already present.
func (l RefList) Append(id string) RefList {
	if l.Contains(id) {
		return l
	}
	return append(l, id)
}

// Value implements driver.Valuer.
func (l RefList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *RefList) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("reflist: unsupported scan type %T", value)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*l = ids
	return nil
}

// refOrDoc renders a reference field as the full document or its summary,
// whichever was populated, otherwise as the bare id.
func refOrDoc[T, S any](id string, doc *T, summary *S) any {
	if doc != nil {
		return doc
	}
	if summary != nil {
		return summary
	}
	return id
}

func refsOrDocs[T any](ids RefList, docs []T) any {
	if docs != nil {
		return docs
	}
	if ids == nil {
		return []string{}
	}
	return ids
}
