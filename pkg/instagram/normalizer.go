package instagram

// ExtractMedias flattens a search response into a uniform media-item list.
// The API serves one of four envelope shapes; the first container that is
// structurally present wins:
//
//  1. media_grid.sections[].layout_content.medias
//  2. sections[].layout_content.medias
//  3. top-level medias
//  4. top-level items
//
// An unknown shape yields an empty list. Presence of the container key is
// the only check; absent leaf fields resolve to zero values downstream.
func ExtractMedias(resp *SearchResponse) []MediaItem {
	if resp == nil {
		return nil
	}

	if resp.MediaGrid != nil {
		return collectSectionMedias(resp.MediaGrid.Sections)
	}
	if resp.Sections != nil {
		return collectSectionMedias(resp.Sections)
	}
	if resp.Medias != nil {
		return resp.Medias
	}
	if resp.Items != nil {
		return resp.Items
	}

	return nil
}

func collectSectionMedias(sections []Section) []MediaItem {
	var medias []MediaItem
	for _, section := range sections {
		medias = append(medias, section.LayoutContent.Medias...)
	}
	return medias
}
