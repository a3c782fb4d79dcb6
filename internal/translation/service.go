package translation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/i18nexus"
	"github.com/edoomio/studio/internal/logger"
	"github.com/edoomio/studio/internal/metrics"
)

var (
	// ErrNoNamespace means the course was never pushed to the translation service.
	ErrNoNamespace = errors.New("course has not been pushed for translation yet")
	// ErrSourceUnavailable means the translation service could not be reached for any language.
	ErrSourceUnavailable = errors.New("translation service unavailable")
)

// Source is the external translation service.
type Source interface {
	Namespaces(ctx context.Context) ([]i18nexus.Namespace, error)
	CreateNamespace(ctx context.Context, title string) error
	ImportStrings(ctx context.Context, namespace string, languages map[string]map[string]string, overwrite, confirm bool) error
	CreateString(ctx context.Context, key, value, namespace, aiInstructions string) error
	Languages(ctx context.Context) ([]i18nexus.Language, error)
	Translations(ctx context.Context, languageCode, namespace string) (map[string]string, error)
}

// CourseStore persists translation state on courses.
type CourseStore interface {
	SetNamespace(courseID, namespace string) error
	SetTranslations(courseID string, bundles map[string]Bundle, translatedAt time.Time) error
}

type Options struct {
	BaseLanguage     string
	StringsPerSecond float64
	PullConcurrency  int
}

// Service pushes course strings to the translation source and pulls translated bundles back.
type Service struct {
	source  Source
	courses CourseStore
	opts    Options
	log     *logger.Logger
	now     func() time.Time
}

func NewService(source Source, courses CourseStore, opts Options, log *logger.Logger) *Service {
	if opts.BaseLanguage == "" {
		opts.BaseLanguage = "de"
	}
	if opts.StringsPerSecond <= 0 {
		opts.StringsPerSecond = 8
	}
	if opts.PullConcurrency <= 0 {
		opts.PullConcurrency = 4
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		source:  source,
		courses: courses,
		opts:    opts,
		log:     log.With("component", "translation"),
		now:     time.Now,
	}
}

type PushResult struct {
	Namespace   string `json:"namespace,omitempty"`
	StringCount int    `json:"stringCount"`
	Created     int    `json:"newStrings"`
	Failed      int    `json:"failed"`
}

type SkippedLanguage struct {
	Language string `json:"language"`
	Reason   string `json:"reason"`
}

type PullResult struct {
	Languages    []string          `json:"languages"`
	Skipped      []SkippedLanguage `json:"skipped,omitempty"`
	TranslatedAt time.Time         `json:"translatedAt"`
}

type Status struct {
	HasTranslations bool       `json:"hasTranslations"`
	Languages       []string   `json:"languages"`
	TranslatedAt    *time.Time `json:"translatedAt"`
	StringCount     int        `json:"stringCount"`
	Namespace       *string    `json:"namespace"`
}

// NamespaceFor returns the namespace a course is pushed to.
func NamespaceFor(c *entities.Course) string {
	if c.I18nNamespace != nil && *c.I18nNamespace != "" {
		return *c.I18nNamespace
	}
	if c.Slug != "" {
		return c.Slug
	}
	return "course-" + c.ID
}

// Push uploads the course's base language strings. New keys are created one by
// one so the source machine translates them; a failing key is counted, not fatal.
func (s *Service) Push(ctx context.Context, c *entities.Course) (*PushResult, error) {
	doc, err := FromCourse(c)
	if err != nil {
		return nil, err
	}
	strs := Extract(doc)
	if strs.Len() == 0 {
		return &PushResult{}, nil
	}

	namespace := NamespaceFor(c)
	if c.I18nNamespace == nil || *c.I18nNamespace == "" {
		if err := s.ensureNamespace(ctx, namespace); err != nil {
			return nil, err
		}
		if err := s.courses.SetNamespace(c.ID, namespace); err != nil {
			return nil, fmt.Errorf("save namespace: %w", err)
		}
		c.I18nNamespace = &namespace
	}

	base := map[string]map[string]string{s.opts.BaseLanguage: strs.Values}
	if err := s.source.ImportStrings(ctx, namespace, base, true, false); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	limiter := rate.NewLimiter(rate.Limit(s.opts.StringsPerSecond), 1)
	result := &PushResult{Namespace: namespace, StringCount: strs.Len()}
	for _, key := range strs.Keys {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		value := strs.Values[key]
		if err := s.source.CreateString(ctx, key, value, namespace, AIInstructions(key, value)); err != nil {
			// Existing keys are rejected here; the import above already updated them.
			result.Failed++
			metrics.TranslationStrings.WithLabelValues("failed").Inc()
			s.log.Debug("create string skipped", "namespace", namespace, "key", key, "error", err)
			continue
		}
		result.Created++
		metrics.TranslationStrings.WithLabelValues("created").Inc()
	}

	s.log.Info("pushed course strings",
		"course_id", c.ID, "namespace", namespace,
		"strings", result.StringCount, "created", result.Created, "failed", result.Failed)
	return result, nil
}

func (s *Service) ensureNamespace(ctx context.Context, namespace string) error {
	existing, err := s.source.Namespaces(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	for _, ns := range existing {
		if ns.Title == namespace {
			return nil
		}
	}
	if err := s.source.CreateNamespace(ctx, namespace); err != nil {
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return nil
}

// Pull fetches every non-base language concurrently and replaces the course's
// bundle map. Languages without data or with errors are skipped. When every
// language failed to reach the source nothing is stored.
func (s *Service) Pull(ctx context.Context, c *entities.Course) (*PullResult, error) {
	if c.I18nNamespace == nil || *c.I18nNamespace == "" {
		return nil, ErrNoNamespace
	}
	namespace := *c.I18nNamespace

	doc, err := FromCourse(c)
	if err != nil {
		return nil, err
	}

	languages, err := s.source.Languages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	var targets []string
	for _, l := range languages {
		if !l.BaseLanguage {
			targets = append(targets, l.FullCode)
		}
	}

	var (
		mu          sync.Mutex
		bundles     = make(map[string]Bundle)
		skipped     []SkippedLanguage
		unreachable int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.PullConcurrency)
	for _, lang := range targets {
		g.Go(func() error {
			mapping, err := s.source.Translations(gctx, lang, namespace)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, i18nexus.ErrNoTranslations), err == nil && len(mapping) == 0:
				skipped = append(skipped, SkippedLanguage{Language: lang, Reason: "no translations"})
				metrics.TranslationPulls.WithLabelValues("empty").Inc()
			case err != nil:
				if i18nexus.IsUnavailable(err) {
					unreachable++
				}
				skipped = append(skipped, SkippedLanguage{Language: lang, Reason: err.Error()})
				s.log.Warn("translation fetch failed", "language", lang, "namespace", namespace, "error", err)
				metrics.TranslationPulls.WithLabelValues("failed").Inc()
			default:
				bundles[lang] = Apply(doc, mapping)
				metrics.TranslationPulls.WithLabelValues("applied").Inc()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(targets) > 0 && unreachable == len(targets) {
		return nil, fmt.Errorf("%w: no language could be fetched", ErrSourceUnavailable)
	}

	translatedAt := s.now().UTC()
	if err := s.courses.SetTranslations(c.ID, bundles, translatedAt); err != nil {
		return nil, fmt.Errorf("save translations: %w", err)
	}

	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Language < skipped[j].Language })
	result := &PullResult{
		Languages:    Languages(bundles),
		Skipped:      skipped,
		TranslatedAt: translatedAt,
	}
	s.log.Info("pulled course translations",
		"course_id", c.ID, "namespace", namespace,
		"languages", result.Languages, "skipped", len(result.Skipped))
	return result, nil
}

// Status summarizes the translation state of a course without calling the source.
func (s *Service) Status(c *entities.Course) (*Status, error) {
	doc, err := FromCourse(c)
	if err != nil {
		return nil, err
	}
	bundles, err := DecodeBundles(c.Translations)
	if err != nil {
		return nil, err
	}
	return &Status{
		HasTranslations: len(bundles) > 0,
		Languages:       Languages(bundles),
		TranslatedAt:    c.TranslatedAt,
		StringCount:     Extract(doc).Len(),
		Namespace:       c.I18nNamespace,
	}, nil
}
