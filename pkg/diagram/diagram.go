package diagram

import (
	"fmt"

	"github.com/matzehuels/fishbone/pkg/errors"
)

// MaxDrawnDepth is the number of cause levels the fishbone drawing shows.
const MaxDrawnDepth = 3

// Diagram is an effect and the causes that contribute to it.
type Diagram struct {
	Title  string  `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty" bson:"title,omitempty"`
	Causes []Cause `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty" bson:"children,omitempty"`
}

// Cause is one node of the cause tree.
type Cause struct {
	Name     string  `json:"name" yaml:"name" toml:"name" bson:"name"`
	Children []Cause `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty" bson:"children,omitempty"`
}

// Split returns the causes drawn above and below the spine.
func (d *Diagram) Split() (top, bottom []Cause) {
	mid := len(d.Causes) / 2
	return d.Causes[:mid], d.Causes[mid:]
}

// CauseCount returns the number of nodes in the cause tree.
func (d *Diagram) CauseCount() int {
	return countCauses(d.Causes)
}

func countCauses(cs []Cause) int {
	n := len(cs)
	for _, c := range cs {
		n += countCauses(c.Children)
	}
	return n
}

// Depth returns the number of cause levels, 0 for an empty diagram.
func (d *Diagram) Depth() int {
	return depth(d.Causes)
}

func depth(cs []Cause) int {
	best := 0
	for _, c := range cs {
		if d := depth(c.Children); d > best {
			best = d
		}
	}
	if len(cs) == 0 {
		return 0
	}
	return best + 1
}

// Validate checks that the title and every cause name are usable labels.
// A diagram without a title is valid.
func (d *Diagram) Validate() error {
	if d.Title != "" {
		if err := errors.ValidateLabel(d.Title); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDiagram, err, "title")
		}
	}
	return validateCauses(d.Causes, "")
}

func validateCauses(cs []Cause, path string) error {
	for i, c := range cs {
		p := fmt.Sprintf("%s/%d", path, i)
		if err := errors.ValidateLabel(c.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDiagram, err, "cause %s", p)
		}
		if err := validateCauses(c.Children, p); err != nil {
			return err
		}
	}
	return nil
}
