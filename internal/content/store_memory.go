// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package content

import (
	"github.com/johnmave126/filmsoc-website-backend/internal/resource"
)

// In-memory stores for tests. The editorial entities are flat value
// types, so a shallow copy is a full clone.

func NewNewsMemoryStore() *resource.MemoryStore[News] {
	return resource.NewMemoryStore[News](NewsCodec{}, func(n *News) *News {
		copied := *n
		return &copied
	})
}

func NewDocumentMemoryStore() *resource.MemoryStore[Document] {
	return resource.NewMemoryStore[Document](DocumentCodec{}, func(d *Document) *Document {
		copied := *d
		return &copied
	})
}

func NewPublicationMemoryStore() *resource.MemoryStore[Publication] {
	return resource.NewMemoryStore[Publication](PublicationCodec{}, func(p *Publication) *Publication {
		copied := *p
		return &copied
	})
}

func NewSponsorMemoryStore() *resource.MemoryStore[Sponsor] {
	return resource.NewMemoryStore[Sponsor](SponsorCodec{}, func(s *Sponsor) *Sponsor {
		copied := *s
		return &copied
	})
}

func NewOneSentenceMemoryStore() *resource.MemoryStore[OneSentence] {
	return resource.NewMemoryStore[OneSentence](OneSentenceCodec{}, func(o *OneSentence) *OneSentence {
		copied := *o
		return &copied
	})
}

func NewFileMemoryStore() *resource.MemoryStore[File] {
	return resource.NewMemoryStore[File](FileCodec{}, func(f *File) *File {
		copied := *f
		return &copied
	})
}
