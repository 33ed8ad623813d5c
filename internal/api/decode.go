package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"

	"github.com/idilsaglam/tada-remote/internal/model"
)

// pageShape tags the two list encodings the store may answer with.
type pageShape int

const (
	shapeBare    pageShape = iota // [todo, ...]
	shapeWrapped                  // {"todos": [...], "total": n}
	shapeOther                    // null, a scalar or no body at all
)

type wrappedPage struct {
	Todos []model.Todo `json:"todos"`
	Total *int         `json:"total"`
}

func sniffShape(b []byte) (pageShape, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return shapeOther, nil
	}
	switch b[0] {
	case '[':
		return shapeBare, nil
	case '{':
		return shapeWrapped, nil
	}
	if !json.Valid(b) {
		return 0, fmt.Errorf("invalid list body starting with %q", b[0])
	}
	return shapeOther, nil
}

// decodePage normalises either shape into {items, totalCount}. A missing
// total defaults to the number of items received. Well-formed JSON of any
// other shape is an empty page.
func decodePage(b []byte) (model.Page, error) {
	shape, err := sniffShape(b)
	if err != nil {
		return model.Page{}, err
	}
	switch shape {
	case shapeOther:
		log.Printf("list todos: unexpected body %.40q, showing an empty page", b)
		return model.Page{Items: []model.Todo{}}, nil
	case shapeBare:
		var items []model.Todo
		if err := json.Unmarshal(b, &items); err != nil {
			return model.Page{}, fmt.Errorf("bare list: %w", err)
		}
		return model.Page{Items: nonNil(items), TotalCount: len(items)}, nil
	default:
		var w wrappedPage
		if err := json.Unmarshal(b, &w); err != nil {
			return model.Page{}, fmt.Errorf("wrapped list: %w", err)
		}
		total := len(w.Todos)
		if w.Total != nil {
			total = *w.Total
		}
		return model.Page{Items: nonNil(w.Todos), TotalCount: total}, nil
	}
}

func nonNil(items []model.Todo) []model.Todo {
	if items == nil {
		return []model.Todo{}
	}
	return items
}
