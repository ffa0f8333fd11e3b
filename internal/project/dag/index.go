package dag

// AspectID is the position of an aspect in declaration order.
type AspectID uint32

type AspectIndex struct {
	NameToID map[string]AspectID
	IDToName []string
}

// BuildIndex раздаёт ID в порядке объявления; повторные имена получают
// ID первого вхождения.
func BuildIndex(nodes []AspectNode) AspectIndex {
	idx := AspectIndex{NameToID: make(map[string]AspectID, len(nodes))}
	for _, n := range nodes {
		if n.Name == "" {
			continue
		}
		if _, ok := idx.NameToID[n.Name]; ok {
			continue
		}
		idx.NameToID[n.Name] = AspectID(len(idx.IDToName)) //nolint:gosec // bounded by node count
		idx.IDToName = append(idx.IDToName, n.Name)
	}
	return idx
}
