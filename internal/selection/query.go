package selection

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/nerrad567/gray-logic-studio/internal/scene"
)

// SelectMatching replaces the selection with every node of the bound scene
// for which the boolean expression holds, and returns how many matched.
//
// The expression sees these variables:
//
//	id       node id
//	kind     "item" or "folder"
//	name     folder name, or the name of the item's source
//	source   source type of an item, "" for folders
//	visible  item visibility, true for folders
//	locked   item lock state, false for folders
//	parent   id of the containing folder, "" at the scene root
//	depth    number of folders above the node
//
// Example: `kind == "item" && source == "image_source" && !visible`.
func (s *Selection) SelectMatching(query string) (int, error) {
	program, err := compileQuery(query)
	if err != nil {
		return 0, err
	}
	nodes, err := s.store.GetNodes(s.sceneID)
	if err != nil {
		return 0, err
	}

	var matched []string
	for _, n := range nodes {
		out, err := exprlang.Run(program, s.env(n))
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
		if ok, _ := out.(bool); ok {
			matched = append(matched, n.Info().ID)
		}
	}
	s.clear()
	s.add(matched)
	return len(matched), nil
}

func compileQuery(query string) (*exprvm.Program, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidQuery)
	}
	program, err := exprlang.Compile(query,
		exprlang.Env(emptyEnv()),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return program, nil
}

// emptyEnv is the variable set a query is compiled against. Unknown
// variables are compile errors.
func emptyEnv() map[string]any {
	return map[string]any{
		"id":      "",
		"kind":    "",
		"name":    "",
		"source":  "",
		"visible": false,
		"locked":  false,
		"parent":  "",
		"depth":   0,
	}
}

func (s *Selection) env(n scene.Node) map[string]any {
	info := n.Info()
	env := emptyEnv()
	env["id"] = info.ID
	env["kind"] = string(n.Kind())
	env["parent"] = info.ParentID
	if ancestors, err := s.store.Ancestors(info.ID); err == nil {
		env["depth"] = len(ancestors)
	}
	switch v := n.(type) {
	case *scene.Item:
		env["visible"] = v.Visible
		env["locked"] = v.Locked
		if src, err := s.store.Sources().Get(v.SourceID); err == nil {
			env["name"] = src.Name
			env["source"] = string(src.Type)
		}
	case *scene.Folder:
		env["name"] = v.Name
		env["visible"] = true
	}
	return env
}
