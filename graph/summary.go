package graph

import "sort"

// Summary is the lightweight node projection handed to agents as linking
// context. Title falls back to the node id, summary to the empty string and
// module to DefaultModule.
type Summary struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
	Module  string   `json:"module"`
}

// NodeSummaries projects every node into its Summary form, sorted by id.
// A non-empty excludeID drops that node from the result; status is not
// filtered, so shadow nodes appear alongside committed ones.
func (s *Store) NodeSummaries(excludeID string) []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]Summary, 0, len(s.nodes))
	for id, node := range s.nodes {
		if excludeID != "" && id == excludeID {
			continue
		}
		tags := node.Tags()
		if tags == nil {
			tags = []string{}
		}
		summaries = append(summaries, Summary{
			ID:      id,
			Title:   node.Title(),
			Summary: node.Summary(),
			Tags:    tags,
			Module:  node.Module(),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries
}
