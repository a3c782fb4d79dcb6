package translation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/i18nexus"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	mu           sync.Mutex
	namespaces   []i18nexus.Namespace
	created      []string
	imported     map[string]map[string]string
	strings      []string
	rejectKeys   map[string]bool
	languages    []i18nexus.Language
	languagesErr error
	translations map[string]map[string]string
	langErrs     map[string]error
}

func (f *fakeSource) Namespaces(context.Context) ([]i18nexus.Namespace, error) {
	return f.namespaces, nil
}

func (f *fakeSource) CreateNamespace(_ context.Context, title string) error {
	f.created = append(f.created, title)
	return nil
}

func (f *fakeSource) ImportStrings(_ context.Context, _ string, langs map[string]map[string]string, _, _ bool) error {
	f.imported = langs
	return nil
}

func (f *fakeSource) CreateString(_ context.Context, key, _, _, _ string) error {
	if f.rejectKeys[key] {
		return errors.New("already exists")
	}
	f.strings = append(f.strings, key)
	return nil
}

func (f *fakeSource) Languages(context.Context) ([]i18nexus.Language, error) {
	return f.languages, f.languagesErr
}

func (f *fakeSource) Translations(_ context.Context, lang, _ string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.langErrs[lang]; err != nil {
		return nil, err
	}
	m, ok := f.translations[lang]
	if !ok {
		return nil, i18nexus.ErrNoTranslations
	}
	return m, nil
}

type fakeCourses struct {
	namespace    string
	bundles      map[string]Bundle
	translatedAt time.Time
	saved        bool
}

func (f *fakeCourses) SetNamespace(_ string, ns string) error {
	f.namespace = ns
	return nil
}

func (f *fakeCourses) SetTranslations(_ string, bundles map[string]Bundle, at time.Time) error {
	f.bundles = bundles
	f.translatedAt = at
	f.saved = true
	return nil
}

func testCourse() *entities.Course {
	return &entities.Course{
		ID:            "c-1",
		Slug:          "abcdefghij",
		Structure:     []byte(sampleStructure),
		CoverSettings: []byte(`{"title":"Deutsch A1"}`),
		Settings:      []byte(`{"description":"Ein Kurs"}`),
	}
}

func languages(codes ...string) []i18nexus.Language {
	out := []i18nexus.Language{{FullCode: "de", LanguageCode: "de", BaseLanguage: true}}
	for _, c := range codes {
		out = append(out, i18nexus.Language{FullCode: c, LanguageCode: c})
	}
	return out
}

func newTestService(src Source, store CourseStore) *Service {
	return NewService(src, store, Options{StringsPerSecond: 1000, PullConcurrency: 2}, nil)
}

func TestService_Push(t *testing.T) {
	src := &fakeSource{rejectKeys: map[string]bool{"cover.title": true}}
	store := &fakeCourses{}
	c := testCourse()

	res, err := newTestService(src, store).Push(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, "abcdefghij", res.Namespace)
	assert.Equal(t, []string{"abcdefghij"}, src.created)
	assert.Equal(t, "abcdefghij", store.namespace)
	require.NotNil(t, c.I18nNamespace)

	assert.Equal(t, res.StringCount, len(src.imported["de"]))
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, res.StringCount-1, res.Created)
	assert.Equal(t, "module.m1.title", src.strings[1])
}

func TestService_Push_ExistingNamespace(t *testing.T) {
	src := &fakeSource{namespaces: []i18nexus.Namespace{{Title: "abcdefghij"}}}
	store := &fakeCourses{}

	_, err := newTestService(src, store).Push(context.Background(), testCourse())
	require.NoError(t, err)
	assert.Empty(t, src.created)
}

func TestService_Push_NothingToTranslate(t *testing.T) {
	src := &fakeSource{}
	c := &entities.Course{ID: "c-2", Slug: "empty"}

	res, err := newTestService(src, &fakeCourses{}).Push(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, 0, res.StringCount)
	assert.Nil(t, src.imported)
	assert.Nil(t, c.I18nNamespace)
}

func TestService_Pull(t *testing.T) {
	src := &fakeSource{
		languages: languages("en", "uk", "fr", "es"),
		translations: map[string]map[string]string{
			"en": {"module.m1.title": "Basics"},
			"uk": {"module.m1.title": "Основи"},
		},
		langErrs: map[string]error{
			"es": &i18nexus.ServerError{StatusCode: 503},
		},
	}
	store := &fakeCourses{}
	c := testCourse()
	ns := "abcdefghij"
	c.I18nNamespace = &ns

	res, err := newTestService(src, store).Pull(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "uk"}, res.Languages)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "es", res.Skipped[0].Language)
	assert.Equal(t, "fr", res.Skipped[1].Language)

	require.True(t, store.saved)
	assert.Equal(t, "Basics", store.bundles["en"].Structure[0].Title)
	assert.Equal(t, "Begrüßung", store.bundles["en"].Structure[0].Topics[0].Title)
	assert.NotContains(t, store.bundles, "fr")
}

func TestService_Pull_EmptyMappingIsSkipped(t *testing.T) {
	src := &fakeSource{
		languages: languages("en", "fr"),
		translations: map[string]map[string]string{
			"en": {"module.m1.title": "Basics"},
			"fr": {},
		},
	}
	store := &fakeCourses{}
	c := testCourse()
	ns := "abcdefghij"
	c.I18nNamespace = &ns

	res, err := newTestService(src, store).Pull(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, []string{"en"}, res.Languages)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SkippedLanguage{Language: "fr", Reason: "no translations"}, res.Skipped[0])
	assert.NotContains(t, store.bundles, "fr")
}

func TestService_Pull_AllUnreachable(t *testing.T) {
	src := &fakeSource{
		languages: languages("en", "uk"),
		langErrs: map[string]error{
			"en": &i18nexus.ServerError{StatusCode: 502},
			"uk": i18nexus.ErrRateLimited,
		},
	}
	store := &fakeCourses{}
	c := testCourse()
	ns := "ns"
	c.I18nNamespace = &ns

	_, err := newTestService(src, store).Pull(context.Background(), c)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.False(t, store.saved)
}

func TestService_Pull_LanguagesUnavailable(t *testing.T) {
	src := &fakeSource{languagesErr: &i18nexus.ServerError{StatusCode: 500}}
	c := testCourse()
	ns := "ns"
	c.I18nNamespace = &ns

	_, err := newTestService(src, &fakeCourses{}).Pull(context.Background(), c)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestService_Pull_NoNamespace(t *testing.T) {
	_, err := newTestService(&fakeSource{}, &fakeCourses{}).Pull(context.Background(), testCourse())
	assert.ErrorIs(t, err, ErrNoNamespace)
}

func TestService_Status(t *testing.T) {
	c := testCourse()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c.TranslatedAt = &now
	c.Translations = []byte(`{"uk":{"structure":[]},"en":{"structure":[]}}`)

	st, err := newTestService(&fakeSource{}, &fakeCourses{}).Status(c)
	require.NoError(t, err)
	assert.True(t, st.HasTranslations)
	assert.Equal(t, []string{"en", "uk"}, st.Languages)
	assert.Equal(t, 15, st.StringCount)
	assert.Nil(t, st.Namespace)
}

func TestNamespaceFor(t *testing.T) {
	ns := "custom"
	assert.Equal(t, "custom", NamespaceFor(&entities.Course{I18nNamespace: &ns, Slug: "s"}))
	assert.Equal(t, "s", NamespaceFor(&entities.Course{Slug: "s"}))
	assert.Equal(t, "course-42", NamespaceFor(&entities.Course{ID: "42"}))
}
