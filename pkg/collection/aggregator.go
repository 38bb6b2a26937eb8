package collection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"wowprofile/internal/workpool"
	"wowprofile/pkg/battlenet"
	errs "wowprofile/pkg/errors"
	"wowprofile/pkg/logger"
	"wowprofile/pkg/models"
	"wowprofile/pkg/profile"
	"wowprofile/pkg/ratelimit"
	"wowprofile/pkg/wowhead"
)

// Kind names one collection pipeline in logs and progress reports.
const (
	KindMounts    = "mounts"
	KindToys      = "toys"
	KindPets      = "pets"
	KindTitles    = "titles"
	KindSeasons   = "mythic_seasons"
	KindCharacter = "character"
)

// Resolver follows summary entries to their details.
type Resolver interface {
	ResolveMount(ctx context.Context, ref battlenet.MountRef) (battlenet.MountDetail, string, error)
	ResolveToy(ctx context.Context, ref battlenet.ToyRef) (battlenet.ToyDetail, string, error)
	ResolvePet(ctx context.Context, ref battlenet.PetRef) (battlenet.PetDetail, error)
}

// RarityScraper looks up how common an entity is.
type RarityScraper interface {
	Scrape(ctx context.Context, kind wowhead.Kind, id int) wowhead.Rarity
}

// ProgressFunc is told how many of total entries of kind are done. It may
// be called from several goroutines at once.
type ProgressFunc func(kind string, done, total int)

// Options configures an Aggregator.
type Options struct {
	Fetcher  battlenet.Fetcher
	Resolver Resolver
	// Rarity may be nil, in which case every rarity is unknown.
	Rarity RarityScraper
	// Pacer spaces out fanned-out tasks. Defaults to a 250ms stagger.
	Pacer ratelimit.Pacer
	// SequentialDelay is waited before each pet and season request.
	SequentialDelay time.Duration
	Region          battlenet.Region
	Realm           string
	Character       string
	// MaxConcurrency bounds fanned-out tasks; 0 means unbounded.
	MaxConcurrency int
	Progress       ProgressFunc
	Logger         logger.Logger
}

// Aggregator collects every kind for one character.
type Aggregator struct {
	fetcher   battlenet.Fetcher
	resolver  Resolver
	rarity    RarityScraper
	pacer     ratelimit.Pacer
	sequence  ratelimit.Pacer
	pool      *workpool.Pool
	headers   map[string]string
	realm     string
	character string
	progress  ProgressFunc
	logger    logger.Logger
}

func New(opts Options) (*Aggregator, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("collection: fetcher is required")
	}
	if strings.TrimSpace(opts.Realm) == "" || strings.TrimSpace(opts.Character) == "" {
		return nil, errors.New("collection: realm and character are required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = battlenet.NewResolver(opts.Fetcher, log)
	}
	rarity := opts.Rarity
	if rarity == nil {
		rarity = noRarity{}
	}
	pacer := opts.Pacer
	if pacer == nil {
		pacer = ratelimit.Staggered{Step: 250 * time.Millisecond}
	}
	region := opts.Region
	if region == "" {
		region = battlenet.RegionUS
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(string, int, int) {}
	}

	realm := battlenet.Slug(opts.Realm)
	character := battlenet.Slug(opts.Character)
	log = log.WithFields(map[string]interface{}{
		"realm":     realm,
		"character": character,
	})

	return &Aggregator{
		fetcher:   opts.Fetcher,
		resolver:  resolver,
		rarity:    rarity,
		pacer:     pacer,
		sequence:  ratelimit.Fixed{Delay: opts.SequentialDelay},
		pool:      workpool.New(opts.MaxConcurrency, log),
		headers:   map[string]string{"Battlenet-Namespace": region.ProfileNamespace()},
		realm:     realm,
		character: character,
		progress:  progress,
		logger:    log,
	}, nil
}

// Profile runs every pipeline in order and assembles the result. Any
// failure aborts the whole profile.
func (a *Aggregator) Profile(ctx context.Context, now time.Time) (models.Profile, error) {
	mounts, err := a.Mounts(ctx)
	if err != nil {
		return models.Profile{}, err
	}
	toys, err := a.Toys(ctx)
	if err != nil {
		return models.Profile{}, err
	}
	pets, err := a.Pets(ctx)
	if err != nil {
		return models.Profile{}, err
	}
	titles, err := a.Titles(ctx)
	if err != nil {
		return models.Profile{}, err
	}
	seasons, err := a.MythicSeasons(ctx, now)
	if err != nil {
		return models.Profile{}, err
	}
	character, err := a.CharacterMedia(ctx)
	if err != nil {
		return models.Profile{}, err
	}

	return profile.Assemble(titles, mounts, pets, toys, seasons, character), nil
}

// Mounts returns the collected mounts in summary order.
func (a *Aggregator) Mounts(ctx context.Context) ([]models.Mount, error) {
	start := time.Now()

	var summary battlenet.MountCollection
	if err := a.fetch(ctx, battlenet.ResourceMounts, &summary); err != nil {
		return nil, fmt.Errorf("fetch mount collection: %w", err)
	}

	done := a.counter(KindMounts, len(summary.Mounts))
	pacer := ratelimit.Batch(a.pacer)
	mounts, err := workpool.Run(ctx, a.pool, KindMounts, len(summary.Mounts), func(ctx context.Context, i int) (models.Mount, error) {
		if err := pacer.Wait(ctx, i); err != nil {
			return models.Mount{}, err
		}

		ref := summary.Mounts[i]
		detail, icon, err := a.resolver.ResolveMount(ctx, ref)
		if err != nil {
			return models.Mount{}, err
		}

		mount := models.Mount{
			Name:        Sanitize(detail.Name),
			Description: Sanitize(detail.Description),
			ID:          detail.ID,
			Icon:        icon,
			Rarity:      a.rarity.Scrape(ctx, wowhead.KindMount, ref.Mount.ID),
		}
		if detail.Source != nil {
			mount.Source = detail.Source.Name
		}
		done()
		return mount, nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect mounts: %w", err)
	}

	logger.LogPipeline(a.logger, KindMounts, len(mounts), time.Since(start))
	return mounts, nil
}

// Toys returns the collected toys in summary order.
func (a *Aggregator) Toys(ctx context.Context) ([]models.Toy, error) {
	start := time.Now()

	var summary battlenet.ToyCollection
	if err := a.fetch(ctx, battlenet.ResourceToys, &summary); err != nil {
		return nil, fmt.Errorf("fetch toy collection: %w", err)
	}

	done := a.counter(KindToys, len(summary.Toys))
	pacer := ratelimit.Batch(a.pacer)
	toys, err := workpool.Run(ctx, a.pool, KindToys, len(summary.Toys), func(ctx context.Context, i int) (models.Toy, error) {
		if err := pacer.Wait(ctx, i); err != nil {
			return models.Toy{}, err
		}

		detail, icon, err := a.resolver.ResolveToy(ctx, summary.Toys[i])
		if err != nil {
			return models.Toy{}, err
		}

		toy := models.Toy{
			Name:   Sanitize(detail.Item.Name.String()),
			ID:     detail.ID,
			Icon:   icon,
			Rarity: a.rarity.Scrape(ctx, wowhead.KindItem, detail.Item.ID),
		}
		if detail.Source != nil {
			toy.Source = detail.Source.Name
		}
		done()
		return toy, nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect toys: %w", err)
	}

	logger.LogPipeline(a.logger, KindToys, len(toys), time.Since(start))
	return toys, nil
}

// Pets returns one pet per species, first occurrence first. Species are
// resolved one at a time.
func (a *Aggregator) Pets(ctx context.Context) ([]models.Pet, error) {
	start := time.Now()

	var summary battlenet.PetCollection
	if err := a.fetch(ctx, battlenet.ResourcePets, &summary); err != nil {
		return nil, fmt.Errorf("fetch pet collection: %w", err)
	}

	done := a.counter(KindPets, len(summary.Pets))
	seen := make(map[int]struct{}, len(summary.Pets))
	pets := make([]models.Pet, 0, len(summary.Pets))
	for i, ref := range summary.Pets {
		if err := a.sequence.Wait(ctx, i); err != nil {
			return nil, fmt.Errorf("collect pets: %w", err)
		}

		detail, err := a.resolver.ResolvePet(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("collect pets: %w", err)
		}
		done()

		if _, dup := seen[detail.ID]; dup {
			continue
		}
		seen[detail.ID] = struct{}{}

		pet := models.Pet{
			Name:        Sanitize(detail.Name),
			Description: Sanitize(detail.Description),
			ID:          detail.ID,
			Icon:        detail.Icon,
			Type:        detail.BattlePetType.Name,
			Rarity:      a.rarity.Scrape(ctx, wowhead.KindBattlePet, detail.ID),
		}
		if detail.Source != nil {
			pet.Source = detail.Source.Name
		}
		pets = append(pets, pet)
	}

	a.logger.DebugWithFields("Pets deduplicated", map[string]interface{}{
		"owned":   len(summary.Pets),
		"species": len(pets),
	})
	logger.LogPipeline(a.logger, KindPets, len(pets), time.Since(start))
	return pets, nil
}

// Titles returns the active title and every earned title in summary order.
func (a *Aggregator) Titles(ctx context.Context) (models.Titles, error) {
	start := time.Now()

	var summary battlenet.TitleCollection
	if err := a.fetch(ctx, battlenet.ResourceTitles, &summary); err != nil {
		return models.Titles{}, fmt.Errorf("fetch titles: %w", err)
	}

	done := a.counter(KindTitles, len(summary.Titles))
	pacer := ratelimit.Batch(a.pacer)
	entries, err := workpool.Run(ctx, a.pool, KindTitles, len(summary.Titles), func(ctx context.Context, i int) (models.TitleEntry, error) {
		if err := pacer.Wait(ctx, i); err != nil {
			return models.TitleEntry{}, err
		}

		ref := summary.Titles[i]
		entry := models.TitleEntry{
			ID:     ref.ID,
			Name:   Sanitize(ref.Name.String()),
			Rarity: a.rarity.Scrape(ctx, wowhead.KindTitle, ref.ID),
		}
		done()
		return entry, nil
	})
	if err != nil {
		return models.Titles{}, fmt.Errorf("collect titles: %w", err)
	}

	logger.LogPipeline(a.logger, KindTitles, len(entries), time.Since(start))
	return models.Titles{
		Active: models.ActiveTitle{
			Name:          summary.ActiveTitle.Name.String(),
			DisplayString: summary.ActiveTitle.DisplayString.String(),
		},
		Titles: entries,
	}, nil
}

// MythicSeasons probes every season id that may exist at now and returns
// those the character has a record for. A season the API answers with an
// error status is skipped; any other failure aborts.
func (a *Aggregator) MythicSeasons(ctx context.Context, now time.Time) ([]models.MythicSeason, error) {
	start := time.Now()
	n := EstimateSeasonCount(now, SeasonOneEpoch, SeasonCadenceMonths)
	done := a.counter(KindSeasons, n)

	seasons := make([]models.MythicSeason, 0, n)
	for i := 0; i < n; i++ {
		if err := a.sequence.Wait(ctx, i); err != nil {
			return nil, fmt.Errorf("collect mythic seasons: %w", err)
		}

		var doc battlenet.MythicSeasonProfile
		err := a.fetch(ctx, battlenet.MythicSeasonResource(i), &doc)
		done()
		if err != nil {
			if skippableSeason(err) {
				a.logger.DebugWithFields("Season skipped", map[string]interface{}{
					"season": i,
					"error":  err.Error(),
				})
				continue
			}
			return nil, fmt.Errorf("fetch mythic season %d: %w", i, err)
		}

		seasons = append(seasons, projectSeason(doc))
	}

	logger.LogPipeline(a.logger, KindSeasons, len(seasons), time.Since(start))
	return seasons, nil
}

// CharacterMedia returns the character's name, realm and render URLs.
func (a *Aggregator) CharacterMedia(ctx context.Context) (models.Character, error) {
	var doc battlenet.CharacterMedia
	if err := a.fetch(ctx, battlenet.ResourceCharacterMedia, &doc); err != nil {
		return models.Character{}, fmt.Errorf("fetch character media: %w", err)
	}

	media := battlenet.Media{Assets: doc.Assets}
	return models.Character{
		Name:   doc.Character.Name,
		Realm:  doc.Character.Realm.Name.String(),
		Main:   media.Find("main-raw"),
		Avatar: media.Find("avatar"),
		Inset:  media.Find("inset"),
	}, nil
}

// Sanitize replaces double quotes with single quotes.
func Sanitize(s string) string {
	return strings.ReplaceAll(s, `"`, "'")
}

func (a *Aggregator) fetch(ctx context.Context, resource string, target any) error {
	path := battlenet.CharacterPath(a.realm, a.character, resource)
	return a.fetcher.Fetch(ctx, path, battlenet.LocaleQuery(), a.headers, target)
}

// counter returns a func that reports one more finished entry of kind.
func (a *Aggregator) counter(kind string, total int) func() {
	var (
		mu   sync.Mutex
		done int
	)
	a.progress(kind, 0, total)
	return func() {
		mu.Lock()
		done++
		n := done
		mu.Unlock()
		a.progress(kind, n, total)
	}
}

// skippableSeason reports whether err means the season does not exist for
// the character, as opposed to a failure of the run itself.
func skippableSeason(err error) bool {
	if errors.Is(err, battlenet.ErrTokenUnavailable) {
		return false
	}
	return errs.HasStatus(err)
}

func projectSeason(doc battlenet.MythicSeasonProfile) models.MythicSeason {
	runs := make([]models.BestRun, 0, len(doc.BestRuns))
	for _, run := range doc.BestRuns {
		affixes := make([]string, 0, len(run.KeystoneAffixes))
		for _, affix := range run.KeystoneAffixes {
			affixes = append(affixes, affix.Name.String())
		}
		runs = append(runs, models.BestRun{
			CompletedTimestamp:    run.CompletedTimestamp,
			DungeonName:           run.Dungeon.Name.String(),
			Duration:              run.Duration,
			IsCompletedWithinTime: run.IsCompletedWithinTime,
			Affixes:               affixes,
			Level:                 run.KeystoneLevel,
			Rating:                run.MythicRating,
		})
	}
	return models.MythicSeason{
		ID:       doc.Season.ID,
		IO:       doc.MythicRating,
		BestRuns: runs,
	}
}

type noRarity struct{}

func (noRarity) Scrape(context.Context, wowhead.Kind, int) wowhead.Rarity { return nil }
