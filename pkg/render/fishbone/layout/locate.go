package layout

// LocateBranches returns the branch items of side in source order. Items
// without a handle are dropped; an empty result is recorded as a warning
// and the side is skipped by later stages.
func (p *Pass) LocateBranches(side Side) []Branch {
	located := p.locate(side)
	out := make([]Branch, len(located))
	for i, lb := range located {
		out[i] = lb.branch
	}
	return out
}

func (p *Pass) locate(side Side) []locatedBranch {
	var found []locatedBranch
	for i, b := range p.refs.Branches(side) {
		if !b.Item.Valid() {
			continue
		}
		found = append(found, locatedBranch{index: i, branch: b})
	}
	if len(found) == 0 {
		p.warnSide(StageLocate, side, "no branch items found")
	}
	return found
}

func (p *Pass) locateAll() {
	p.located = make(map[Side][]locatedBranch, len(Sides))
	for _, side := range Sides {
		p.located[side] = p.locate(side)
	}
}

// branches returns the branches found by the locate stage, locating them on
// demand when a stage method is called on its own.
func (p *Pass) branches(side Side) []locatedBranch {
	if p.located == nil {
		p.locateAll()
	}
	return p.located[side]
}
