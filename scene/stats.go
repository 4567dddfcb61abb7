package scene

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
)

// Build a tabular representation of the per-mesh hierarchy statistics.
func (s *Scene) Stats() string {
	if s.blas == nil {
		return "scene has not been built yet\n"
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Mesh", "Triangles", "BVH nodes", "BVH leafs", "Max depth", "Build time"})

	var totalTris, totalNodes int
	for i, m := range s.meshes {
		stats := s.blas[i].Stats()
		totalTris += m.NumTriangles()
		totalNodes += stats.Nodes
		table.Append([]string{
			m.Name,
			fmt.Sprintf("%d", m.NumTriangles()),
			fmt.Sprintf("%d", stats.Nodes),
			fmt.Sprintf("%d", stats.Leafs),
			fmt.Sprintf("%d", stats.MaxDepth),
			fmt.Sprintf("%s", stats.BuildTime),
		})
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d instances", len(s.instances)),
		fmt.Sprintf("%d", totalTris),
		fmt.Sprintf("%d", totalNodes),
		"", "", "",
	})

	table.Render()
	return buf.String()
}
