package scene

// Scene is a named root container. Its id equals the id of the scene-type
// source that lets other scenes embed it.
type Scene struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Top-level node ids in read order (index 0 is top-most).
	ChildIDs []string `json:"child_ids"`
}

// DeepCopy creates an independent copy of the Scene.
func (s *Scene) DeepCopy() *Scene {
	if s == nil {
		return nil
	}
	cpy := *s
	cpy.ChildIDs = cloneIDs(s.ChildIDs)
	return &cpy
}

// NodeKind distinguishes the two node variants.
type NodeKind string

const (
	KindItem   NodeKind = "item"
	KindFolder NodeKind = "folder"
)

// Valid reports whether k is a known node kind.
func (k NodeKind) Valid() bool {
	return k == KindItem || k == KindFolder
}

// NodeInfo holds the fields shared by every node.
type NodeInfo struct {
	ID      string `json:"id"`
	SceneID string `json:"scene_id"`

	// ParentID is the containing folder, or "" for the scene root.
	ParentID string `json:"parent_id,omitempty"`
}

// Node is a member of a scene tree: either *Item or *Folder.
//
// The interface is sealed; callers switch on the concrete type:
//
//	switch n := node.(type) {
//	case *scene.Item:
//	    ...
//	case *scene.Folder:
//	    ...
//	}
type Node interface {
	Kind() NodeKind
	Info() NodeInfo
	sealed()
}

// Item places a source in a scene.
type Item struct {
	NodeInfo
	SourceID  string    `json:"source_id"`
	Transform Transform `json:"transform"`
	Visible   bool      `json:"visible"`
	Locked    bool      `json:"locked"`
}

// Kind returns KindItem.
func (i *Item) Kind() NodeKind { return KindItem }

// Info returns the shared node fields.
func (i *Item) Info() NodeInfo { return i.NodeInfo }

func (*Item) sealed() {}

// DeepCopy creates an independent copy of the Item.
func (i *Item) DeepCopy() *Item {
	if i == nil {
		return nil
	}
	cpy := *i
	return &cpy
}

// Folder groups other nodes of the same scene.
type Folder struct {
	NodeInfo
	Name string `json:"name"`

	// Child node ids in read order.
	ChildIDs []string `json:"child_ids"`
}

// Kind returns KindFolder.
func (f *Folder) Kind() NodeKind { return KindFolder }

// Info returns the shared node fields.
func (f *Folder) Info() NodeInfo { return f.NodeInfo }

func (*Folder) sealed() {}

// DeepCopy creates an independent copy of the Folder.
func (f *Folder) DeepCopy() *Folder {
	if f == nil {
		return nil
	}
	cpy := *f
	cpy.ChildIDs = cloneIDs(f.ChildIDs)
	return &cpy
}

// copyNode returns a deep copy of any node.
func copyNode(n Node) Node {
	switch v := n.(type) {
	case *Item:
		return v.DeepCopy()
	case *Folder:
		return v.DeepCopy()
	default:
		return nil
	}
}

// infoOf returns a pointer to the shared fields of a stored node.
func infoOf(n Node) *NodeInfo {
	switch v := n.(type) {
	case *Item:
		return &v.NodeInfo
	case *Folder:
		return &v.NodeInfo
	default:
		return nil
	}
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	cpy := make([]string, len(ids))
	copy(cpy, ids)
	return cpy
}
