package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/fishbone/pkg/diagram"
	"github.com/matzehuels/fishbone/pkg/render/nodelink"
)

func ExampleToDOT() {
	d := &diagram.Diagram{
		Title: "Slow checkout",
		Causes: []diagram.Cause{
			{Name: "Database", Children: []diagram.Cause{{Name: "Missing index"}}},
			{Name: "Network"},
		},
	}

	dot := nodelink.ToDOT(d, nodelink.Options{})
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, "->") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// "c0" -> "effect";
	// "c0_0" -> "c0";
	// "c1" -> "effect";
}
