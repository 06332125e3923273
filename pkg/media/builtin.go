package media

func init() {
	mustRegister(Descriptor{
		Type:        Image,
		Title:       "Image Search",
		Endpoint:    "/search_images",
		Placeholder: "Search for images...",
		NoResults:   "No image results found for your search.",
		Filters: []FilterDescriptor{
			{Name: "license", Label: "License", Kind: Select, Options: []string{"cc0", "by", "by-sa"}},
			{Name: "source", Label: "Source", Kind: Text, Placeholder: "e.g. stocksnap"},
			{Name: "filetype", Label: "File Type", Kind: Select, Options: []string{"jpg", "png", "svg"}},
		},
	})

	mustRegister(Descriptor{
		Type:        Audio,
		Title:       "Audio Search",
		Endpoint:    "/search_audio",
		Placeholder: "Search for audios...",
		NoResults:   "No audio results found for your search.",
		Filters: []FilterDescriptor{
			{Name: "category", Label: "Category", Kind: Select, Options: []string{"music", "sound_effect"}},
			{Name: "license", Label: "License", Kind: Select, Options: []string{"by", "cc0", "by-nc"}},
			{Name: "source", Label: "Source", Kind: Text, Placeholder: "e.g. wikimedia_audio"},
		},
	})
}

func mustRegister(d Descriptor) {
	if err := Register(d); err != nil {
		panic(err)
	}
}
