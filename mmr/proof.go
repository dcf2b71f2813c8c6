package mmr

// Proof carries everything needed to verify, without a Store, that a leaf
// at a given position is included under a claimed root: the sibling
// digests along the path from the leaf to its enclosing peak, followed by
// the digests of every other peak (needed to re-bag the root).
type Proof struct {
	// LeafPos is the 0-indexed storage position of the leaf being proven.
	LeafPos uint64
	// MMRSize is the tree size (total stored nodes) the proof was
	// generated against.
	MMRSize uint64
	// PathItems are the sibling digests from the leaf up to its peak.
	PathItems []Digest
	// OtherPeaks are the digests of every peak other than the one
	// containing the leaf, left to right.
	OtherPeaks []Digest
}

// GenerateProof builds a Proof for the leaf at leafPos against store's
// current contents.
func GenerateProof(store Store, leafPos uint64) (Proof, error) {
	mmrSize := store.Len()
	peaks := getPeaks(mmrSize)

	pos := leafPos
	height := uint64(0)
	var pathItems []Digest

	peakPos := pos
	for !isPeak(peakPos, peaks) {
		var siblingPos uint64
		if posHeightInTree(peakPos+1) > height {
			// peakPos is a right child; its sibling is to the left.
			siblingPos = peakPos - siblingOffset(height)
			peakPos = peakPos + 1
		} else {
			// peakPos is a left child; its sibling is to the right.
			siblingPos = peakPos + siblingOffset(height)
			peakPos = peakPos + parentOffset(height)
		}
		sib, err := store.Get(siblingPos)
		if err != nil {
			return Proof{}, err
		}
		pathItems = append(pathItems, sib)
		height++
	}

	var otherPeaks []Digest
	for _, p := range peaks {
		if p == peakPos {
			continue
		}
		d, err := store.Get(p)
		if err != nil {
			return Proof{}, err
		}
		otherPeaks = append(otherPeaks, d)
	}

	return Proof{
		LeafPos:    leafPos,
		MMRSize:    mmrSize,
		PathItems:  pathItems,
		OtherPeaks: otherPeaks,
	}, nil
}

// CalcRoot walks leaf up through proof.PathItems to its enclosing peak, then
// bags that peak together with proof.OtherPeaks to reconstruct the tree
// root. It does not consult a Store.
func CalcRoot(leaf Digest, proof Proof) (Digest, error) {
	pos := proof.LeafPos
	height := uint64(0)
	elem := leaf
	peaks := getPeaks(proof.MMRSize)

	idx := 0
	for !isPeak(pos, peaks) {
		if idx >= len(proof.PathItems) {
			return Digest{}, ErrLeafNotInSubtree
		}
		sib := proof.PathItems[idx]
		idx++

		var merged Digest
		var err error
		if posHeightInTree(pos+1) > height {
			merged, err = Merge(sib, elem)
			pos = pos + 1
		} else {
			merged, err = Merge(elem, sib)
			pos = pos + parentOffset(height)
		}
		if err != nil {
			return Digest{}, err
		}
		elem = merged
		height++
	}

	// elem is now the digest of the peak containing the leaf; bag it with
	// the supplied remaining peaks, reinserting it at its rightful
	// position among them (peaks are ordered left to right by subtree
	// size, which is also position order).
	allPeaks := make([]Digest, 0, len(proof.OtherPeaks)+1)
	inserted := false
	oi := 0
	for _, p := range peaks {
		if p == pos {
			allPeaks = append(allPeaks, elem)
			inserted = true
			continue
		}
		if oi < len(proof.OtherPeaks) {
			allPeaks = append(allPeaks, proof.OtherPeaks[oi])
			oi++
		}
	}
	if !inserted {
		return Digest{}, ErrLeafNotInSubtree
	}

	return bagPeaks(allPeaks)
}

// VerifyMembership reports whether leaf, at proof.LeafPos, is consistent
// with expectedRoot.
func VerifyMembership(expectedRoot Digest, leaf Digest, proof Proof) (bool, error) {
	computed, err := CalcRoot(leaf, proof)
	if err != nil {
		return false, err
	}
	return computed.MinHeight == expectedRoot.MinHeight &&
		computed.MaxHeight == expectedRoot.MaxHeight &&
		computed.ChildrenHash == expectedRoot.ChildrenHash &&
		computed.PartialChainWork.Cmp(expectedRoot.PartialChainWork) == 0, nil
}
