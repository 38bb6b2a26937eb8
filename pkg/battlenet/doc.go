// Package battlenet is a client for the Battle.net World of Warcraft
// profile API.
//
// This package includes:
//   - Client, which obtains a client-credentials access token on first use
//     and issues authenticated GETs (Fetch for API paths, FetchURL for
//     hypermedia links)
//   - Resolver, which follows collection summary links to item details and
//     icon media
//   - response models, including LocalizedString for names that may arrive
//     as a plain string or a locale map
//
// Every failed request is an *errors.Error. Callers branch on its Type or
// use errors.HasStatus to tell "the API said no" from transport failures:
//
//	client := battlenet.NewClient(battlenet.Options{
//	    ClientID:     id,
//	    ClientSecret: secret,
//	    Region:       battlenet.RegionEU,
//	})
//	var mounts battlenet.MountCollection
//	err := client.Fetch(ctx,
//	    battlenet.CharacterPath("area-52", "thrall", battlenet.ResourceMounts),
//	    battlenet.LocaleQuery(), client.ProfileHeaders(), &mounts)
package battlenet
