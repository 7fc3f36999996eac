package layout

import "math"

// AnchorTitle centers the title block and the fish tail on the lower edge
// of the top branch group. Without a measurable top group it does nothing.
// Each target is optional; the inner title is only moved along with its
// title block.
func (p *Pass) AnchorTitle() {
	group, ok := p.measure(p.refs.TopGroup)
	if !ok {
		p.engine.logger.Debug("top branch group not found, skipping title anchor")
		return
	}
	gh := group.Height

	if title, ok := p.measure(p.refs.Title); ok {
		p.write(p.refs.Title, Patch{}.SetTop(math.Floor(gh-title.Height/2)))
		// The inner title lives inside the title block.
		if inner, ok := p.measure(p.refs.InnerTitle); ok {
			p.write(p.refs.InnerTitle, Patch{}.
				SetLeft(p.engine.innerTitleShift).
				SetTop(-math.Floor(inner.Height)))
		}
	}
	if tail, ok := p.measure(p.refs.FishTail); ok {
		p.write(p.refs.FishTail, Patch{}.SetTop(math.Floor(gh-tail.Height/2)+p.engine.tailPadding))
	}
}
