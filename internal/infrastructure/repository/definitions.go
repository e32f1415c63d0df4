package repository

import (
	"expopanel/internal/domain/agenda"
	"expopanel/internal/domain/banner"
	"expopanel/internal/domain/exhibitor"
	"expopanel/internal/domain/exhibitoruser"
	"expopanel/internal/shared/config"
)

func ExhibitorDefinition(ep config.EntityEndpoints) Definition[exhibitor.Exhibitor] {
	return Definition[exhibitor.Exhibitor]{
		Name:           "exhibitor",
		List:           ep.List,
		Mutation:       ep.Mutation,
		ID:             func(e exhibitor.Exhibitor) int64 { return e.ID.Int64() },
		Payload:        exhibitor.Exhibitor.Payload,
		FileField:      exhibitor.LogoField,
		DeleteFallback: true,
	}
}

func ExhibitorUserDefinition(ep config.EntityEndpoints) Definition[exhibitoruser.User] {
	return Definition[exhibitoruser.User]{
		Name:           "exhibitor user",
		List:           ep.List,
		Mutation:       ep.Mutation,
		ID:             func(u exhibitoruser.User) int64 { return u.ID.Int64() },
		Payload:        exhibitoruser.User.Payload,
		DeleteFallback: true,
	}
}

func AgendaDefinition(ep config.EntityEndpoints) Definition[agenda.Item] {
	return Definition[agenda.Item]{
		Name:           "agenda item",
		List:           ep.List,
		Mutation:       ep.Mutation,
		ID:             func(it agenda.Item) int64 { return it.ID.Int64() },
		Payload:        agenda.Item.Payload,
		DeleteFallback: true,
	}
}

// BannerDefinition deletes through banners/ID/<id> with no fallback.
func BannerDefinition(ep config.EntityEndpoints) Definition[banner.Banner] {
	return Definition[banner.Banner]{
		Name:             "banner",
		List:             ep.List,
		Mutation:         ep.Mutation,
		ID:               func(b banner.Banner) int64 { return b.ID.Int64() },
		Payload:          banner.Banner.Payload,
		FileField:        banner.ImageField,
		MultipartPayload: banner.Banner.MultipartPayload,
		DeletePath:       banner.DeletePath,
	}
}
